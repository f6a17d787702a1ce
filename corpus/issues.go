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


package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/poiesic/aquakb/core"
)

// issueExport matches one line of a JSONL issue export.
type issueExport struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`
}

// maxIssueLineBytes bounds a single JSONL line. Issue bodies with large
// pasted logs run long but should never approach this.
const maxIssueLineBytes = 4 * 1024 * 1024

// loadIssues reads a JSONL issue export and converts each issue into a
// corpus item. Blank lines are skipped; a malformed line fails the load
// so a truncated export is noticed rather than silently shortened.
func loadIssues(path string) ([]*core.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var items []*core.Item

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxIssueLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var issue issueExport
		if err := json.Unmarshal([]byte(line), &issue); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedIssue, lineNo, err)
		}
		if issue.Number <= 0 {
			return nil, fmt.Errorf("%w: line %d: missing issue number", ErrMalformedIssue, lineNo)
		}

		contents := issue.Title
		if issue.Body != "" {
			contents = issue.Title + "\n\n" + issue.Body
		}

		itemPath := fmt.Sprintf("issues/%d", issue.Number)
		items = append(items, &core.Item{
			Id:           core.IDFromContent(itemPath),
			Path:         itemPath,
			Source:       core.SourceIssue,
			Title:        issue.Title,
			Fingerprint:  core.FingerprintFromContent([]byte(contents)),
			LastModified: issue.UpdatedAt,
			Contents:     contents,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
