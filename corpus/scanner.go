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
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/aquakb/core"
)

// Scanner enumerates corpus items from a library checkout.
// It walks source modules and tutorial files on disk and reads exported
// issues from a JSONL file, producing items in a deterministic order.
type Scanner struct {
	config *Config
	logger *slog.Logger
}

// Config describes where the corpus lives on disk.
type Config struct {
	// ModulesDir is the root of the library's source tree. Optional.
	ModulesDir string

	// TutorialsDir holds tutorial scripts and notebooks. Optional.
	TutorialsDir string

	// IssuesFile is a JSONL export of repository issues. Optional.
	IssuesFile string

	// Workers is the fingerprinting pool size.
	// Default is runtime.NumCPU() / 2, with a minimum of 1.
	Workers int
}

// NewScanner creates a scanner for the configured corpus locations.
// At least one location must be set.
func NewScanner(config *Config) (*Scanner, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}
	if config.ModulesDir == "" && config.TutorialsDir == "" && config.IssuesFile == "" {
		return nil, ErrNoSources
	}
	if config.Workers < 1 {
		config.Workers = runtime.NumCPU() / 2
		if config.Workers < 1 {
			config.Workers = 1
		}
	}

	return &Scanner{
		config: config,
		logger: slog.Default().With("component", "corpus-scanner"),
	}, nil
}

// Scan enumerates every corpus item, reads its contents, and computes
// its fingerprint. Items are returned sorted by path so repeated scans
// of an unchanged corpus produce identical sequences.
func (s *Scanner) Scan(ctx context.Context) ([]*core.Item, error) {
	type candidate struct {
		path   string
		key    string
		source core.SourceType
	}

	var candidates []candidate
	if s.config.ModulesDir != "" {
		paths, err := collectSourceFiles(s.config.ModulesDir, moduleExtensions)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			candidates = append(candidates, candidate{path: p.abs, key: p.rel, source: core.SourceModule})
		}
	}
	if s.config.TutorialsDir != "" {
		paths, err := collectSourceFiles(s.config.TutorialsDir, tutorialExtensions)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			candidates = append(candidates, candidate{path: p.abs, key: p.rel, source: core.SourceTutorial})
		}
	}

	pool, err := ants.NewPool(s.config.Workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		items    []*core.Item
		firstErr error
	)

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c := c
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			item, err := loadFileItem(c.path, c.key, c.source)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			items = append(items, item)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	if s.config.IssuesFile != "" {
		issueItems, err := loadIssues(s.config.IssuesFile)
		if err != nil {
			return nil, err
		}
		items = append(items, issueItems...)
	}

	slices.SortFunc(items, func(a, b *core.Item) int {
		return strings.Compare(a.Path, b.Path)
	})

	s.logger.Info("scanned corpus", "items", len(items))
	return items, nil
}

var moduleExtensions = map[string]bool{".py": true}
var tutorialExtensions = map[string]bool{".py": true, ".ipynb": true, ".md": true}

type sourcePath struct {
	abs string
	rel string
}

// collectSourceFiles walks root and returns the files worth indexing.
// Test files, caches, and build scaffolding are skipped.
func collectSourceFiles(root string, extensions map[string]bool) ([]sourcePath, error) {
	var paths []sourcePath

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if name == "__pycache__" || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !extensions[filepath.Ext(name)] {
			return nil
		}
		if skipFile(name) {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, sourcePath{abs: path, rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func skipFile(name string) bool {
	if strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test.py") {
		return true
	}
	switch name {
	case "setup.py", "conftest.py":
		return true
	}
	return false
}

// loadFileItem reads a source file and builds a corpus item from it.
// The item ID derives from the corpus-relative path so items keep their
// identity across checkouts at different filesystem locations.
func loadFileItem(absPath, relPath string, source core.SourceType) (*core.Item, error) {
	contents, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}

	return &core.Item{
		Id:           core.IDFromContent(relPath),
		Path:         relPath,
		Source:       source,
		Title:        itemTitle(relPath),
		Fingerprint:  core.FingerprintFromContent(contents),
		LastModified: info.ModTime().UTC(),
		Contents:     string(contents),
	}, nil
}

func itemTitle(relPath string) string {
	base := filepath.Base(relPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
