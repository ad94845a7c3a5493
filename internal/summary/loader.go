package summary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// summaryFile is the on-disk envelope an extractor writes. A bare array of
// summaries (no envelope) is also accepted.
type summaryFile struct {
	Files []FileSummary `json:"files" yaml:"files"`
}

// LoadFile reads extractor output from a single .json, .yaml or .yml file.
// Summaries keep the order they appear in on disk; downstream tie-breaking
// depends on that order being stable.
func LoadFile(path string) ([]FileSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read summaries: %w", err)
	}

	var out []FileSummary
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		out, err = decodeJSON(data)
	case ".yaml", ".yml":
		out, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("load summaries %s: unsupported format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("load summaries %s: %w", path, err)
	}

	for i := range out {
		backfillComplexity(&out[i])
	}
	return out, nil
}

// LoadDir reads every summary file in a directory, in lexical file-name
// order, and concatenates the results.
func LoadDir(dir string) ([]FileSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read summaries dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var all []FileSummary
	for _, name := range names {
		batch, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

// Load reads summaries from a file or a directory of files.
func Load(path string) ([]FileSummary, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat summaries path: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

func decodeJSON(data []byte) ([]FileSummary, error) {
	var envelope summaryFile
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Files) > 0 {
		return envelope.Files, nil
	}
	var bare []FileSummary
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, err
	}
	return bare, nil
}

func decodeYAML(data []byte) ([]FileSummary, error) {
	var envelope summaryFile
	if err := yaml.Unmarshal(data, &envelope); err == nil && len(envelope.Files) > 0 {
		return envelope.Files, nil
	}
	var bare []FileSummary
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return nil, err
	}
	return bare, nil
}
