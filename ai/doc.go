// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai defines the capability interfaces the pipeline depends on
// for item analysis and text embedding, along with the error taxonomy
// that separates transient service failures from permanent response
// defects.
//
// The interfaces are implemented by the openai subpackage for any
// OpenAI-compatible API (Ollama, LocalAI, vLLM, OpenAI itself) and by
// the mock subpackage for testing.
//
// Errors returned by implementations fall into two categories:
//
//   - TransientError: timeouts, rate limits, connection failures.
//     Callers may retry these.
//   - ValidationError: the service answered but the response violates
//     the output contract. Retrying is pointless; callers should record
//     the failure and move on.
package ai
