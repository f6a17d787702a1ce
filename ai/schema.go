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


package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// AnalysisSchema is the JSON Schema an analysis response must satisfy
// before it is accepted. Models occasionally return structurally valid
// JSON with missing or mistyped fields; the schema catches those before
// they reach storage.
const AnalysisSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "purpose": {
      "type": "string",
      "minLength": 1
    },
    "questions": {
      "type": "array",
      "items": {"type": "string"},
      "minItems": 1
    },
    "key_concepts": {
      "type": "array",
      "items": {"type": "string"},
      "minItems": 1
    },
    "packages": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "required": ["purpose", "questions", "key_concepts"]
}`

var (
	analysisSchemaOnce sync.Once
	analysisSchema     *jsonschema.Schema
	analysisSchemaErr  error
)

func compiledAnalysisSchema() (*jsonschema.Schema, error) {
	analysisSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("analysis.json", bytes.NewReader([]byte(AnalysisSchema))); err != nil {
			analysisSchemaErr = fmt.Errorf("adding analysis schema: %w", err)
			return
		}
		analysisSchema, analysisSchemaErr = compiler.Compile("analysis.json")
	})
	return analysisSchema, analysisSchemaErr
}

// ValidateAnalysisJSON checks raw model output against AnalysisSchema.
// A schema violation is returned as a ValidationError since retrying the
// same prompt rarely fixes a model that ignores the output contract.
func ValidateAnalysisJSON(data []byte) error {
	schema, err := compiledAnalysisSchema()
	if err != nil {
		return err
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return Validation(fmt.Errorf("analysis response is not valid JSON: %w", err))
	}
	if err := schema.Validate(v); err != nil {
		return Validation(fmt.Errorf("analysis response violates schema: %w", err))
	}
	return nil
}
