package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/aquakb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestNewScannerRequiresSources(t *testing.T) {
	_, err := NewScanner(nil)
	assert.ErrorIs(t, err, ErrConfigRequired)

	_, err = NewScanner(&Config{})
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestScanModules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mbase.py", "class BaseModel: pass\n")
	writeFile(t, dir, "mf6/mfmodel.py", "class MFModel: pass\n")
	writeFile(t, dir, "test_mbase.py", "def test(): pass\n")
	writeFile(t, dir, "setup.py", "from setuptools import setup\n")
	writeFile(t, dir, "__pycache__/mbase.cpython-312.pyc", "binary")
	writeFile(t, dir, "README.rst", "docs")

	scanner, err := NewScanner(&Config{ModulesDir: dir})
	require.NoError(t, err)

	items, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "mbase.py", items[0].Path)
	assert.Equal(t, "mf6/mfmodel.py", items[1].Path)
	for _, item := range items {
		assert.Equal(t, core.SourceModule, item.Source)
		assert.NotZero(t, item.Id)
		assert.NotEmpty(t, item.Fingerprint)
		assert.NotEmpty(t, item.Contents)
	}
}

func TestScanDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zeta.py", "z = 1\n")
	writeFile(t, dir, "alpha.py", "a = 1\n")
	writeFile(t, dir, "mid/beta.py", "b = 1\n")

	scanner, err := NewScanner(&Config{ModulesDir: dir, Workers: 4})
	require.NoError(t, err)

	first, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	second, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Path, second[i].Path)
		assert.Equal(t, first[i].Id, second[i].Id)
		assert.Equal(t, first[i].Fingerprint, second[i].Fingerprint)
	}
}

func TestScanFingerprintChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mbase.py", "version = 1\n")

	scanner, err := NewScanner(&Config{ModulesDir: dir})
	require.NoError(t, err)

	before, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	writeFile(t, dir, "mbase.py", "version = 2\n")

	after, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, before, 1)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].Id, after[0].Id)
	assert.NotEqual(t, before[0].Fingerprint, after[0].Fingerprint)
}

func TestScanTutorialsAndIssues(t *testing.T) {
	tutorials := t.TempDir()
	writeFile(t, tutorials, "ex01_basic.py", "# Basic model\n")
	writeFile(t, tutorials, "ex02_grid.ipynb", `{"cells": []}`)

	issuesDir := t.TempDir()
	issuesFile := filepath.Join(issuesDir, "issues.jsonl")
	lines := `{"number": 42, "title": "DIS package crash", "body": "Traceback ...", "state": "closed"}
{"number": 7, "title": "Docs typo", "body": ""}
`
	require.NoError(t, os.WriteFile(issuesFile, []byte(lines), 0o644))

	scanner, err := NewScanner(&Config{TutorialsDir: tutorials, IssuesFile: issuesFile})
	require.NoError(t, err)

	items, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 4)

	byPath := map[string]*core.Item{}
	for _, item := range items {
		byPath[item.Path] = item
	}

	require.Contains(t, byPath, "issues/42")
	assert.Equal(t, core.SourceIssue, byPath["issues/42"].Source)
	assert.Equal(t, "DIS package crash", byPath["issues/42"].Title)
	assert.Contains(t, byPath["issues/42"].Contents, "Traceback")

	require.Contains(t, byPath, "issues/7")
	assert.Equal(t, "Docs typo", byPath["issues/7"].Contents)

	assert.Equal(t, core.SourceTutorial, byPath["ex01_basic.py"].Source)
	assert.Equal(t, core.SourceTutorial, byPath["ex02_grid.ipynb"].Source)
}

func TestScanRejectsMalformedIssues(t *testing.T) {
	dir := t.TempDir()
	issuesFile := filepath.Join(dir, "issues.jsonl")
	require.NoError(t, os.WriteFile(issuesFile, []byte("{not json}\n"), 0o644))

	scanner, err := NewScanner(&Config{IssuesFile: issuesFile})
	require.NoError(t, err)

	_, err = scanner.Scan(context.Background())
	assert.ErrorIs(t, err, ErrMalformedIssue)
}
