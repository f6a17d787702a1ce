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


package pipeline

import "time"

// Config holds configuration for a pipeline run.
type Config struct {
	// MaxAttempts is the maximum number of attempts per external call.
	MaxAttempts int

	// BaseDelay is the base delay for exponential backoff between retries.
	BaseDelay time.Duration

	// PaceDelay is the fixed delay after each processed item, serializing
	// load on the external services.
	PaceDelay time.Duration

	// FlushEvery is how many completed items may accumulate before the
	// checkpoint is flushed to storage.
	FlushEvery int

	// ReportInterval is how often to report progress (number of items).
	ReportInterval int

	// Limit caps how many candidate items each stage processes.
	// Zero means no limit.
	Limit int

	// MaxErrorChars bounds the error text persisted for a failed item.
	MaxErrorChars int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:    3,
		BaseDelay:      2 * time.Second,
		PaceDelay:      250 * time.Millisecond,
		FlushEvery:     10,
		ReportInterval: 25,
		Limit:          0,
		MaxErrorChars:  500,
	}
}

// normalize fills in zero values so a partially built Config behaves.
func (c *Config) normalize() {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = d.BaseDelay
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = d.FlushEvery
	}
	if c.ReportInterval <= 0 {
		c.ReportInterval = d.ReportInterval
	}
	if c.MaxErrorChars <= 0 {
		c.MaxErrorChars = d.MaxErrorChars
	}
	if c.Limit < 0 {
		c.Limit = 0
	}
	if c.PaceDelay < 0 {
		c.PaceDelay = 0
	}
}
