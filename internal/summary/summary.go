// Package summary defines the symbolic per-file summaries the workflow
// engine consumes. Summaries are produced by an external symbol extractor
// and loaded from JSON or YAML dumps; this package never reads source code.
package summary

import (
	"path"
	"strings"
)

// FunctionInfo describes a single function or method.
type FunctionInfo struct {
	Name       string   `json:"name" yaml:"name"`
	Params     []string `json:"params,omitempty" yaml:"params,omitempty"`
	ReturnType string   `json:"returnType,omitempty" yaml:"returnType,omitempty"`
	StartLine  int      `json:"startLine,omitempty" yaml:"startLine,omitempty"`
	EndLine    int      `json:"endLine,omitempty" yaml:"endLine,omitempty"`

	// Complexity is the cyclomatic complexity reported by the extractor.
	// Loaders backfill it from Body when the extractor omits it.
	Complexity int `json:"complexity,omitempty" yaml:"complexity,omitempty"`

	// Body is the raw function body, kept only so that complexity can be
	// recomputed when the extractor did not score it.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`
}

// ClassInfo describes a class or type declaration with members.
type ClassInfo struct {
	Name       string         `json:"name" yaml:"name"`
	Methods    []FunctionInfo `json:"methods,omitempty" yaml:"methods,omitempty"`
	Properties []string       `json:"properties,omitempty" yaml:"properties,omitempty"`
	Extends    string         `json:"extends,omitempty" yaml:"extends,omitempty"`
	Implements []string       `json:"implements,omitempty" yaml:"implements,omitempty"`
}

// ImportInfo is one import statement: the raw module specifier plus the
// symbols it pulls in.
type ImportInfo struct {
	Source     string   `json:"source" yaml:"source"`
	Specifiers []string `json:"specifiers,omitempty" yaml:"specifiers,omitempty"`
}

// FileSummary is the symbolic summary of one source file. Immutable once
// produced; the engine treats it as read-only input.
type FileSummary struct {
	Path      string         `json:"path" yaml:"path"`
	Functions []FunctionInfo `json:"functions,omitempty" yaml:"functions,omitempty"`
	Classes   []ClassInfo    `json:"classes,omitempty" yaml:"classes,omitempty"`
	Imports   []ImportInfo   `json:"imports,omitempty" yaml:"imports,omitempty"`
	Exports   []string       `json:"exports,omitempty" yaml:"exports,omitempty"`
	Variables []string       `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// FileMeta is the file-tree metadata derived from a summary's path.
type FileMeta struct {
	Path string // repo-relative path, e.g. "src/components/App.tsx"
	Name string // base name with extension, e.g. "App.tsx"
	Stem string // base name without extension, e.g. "App"
	Ext  string // extension including the dot, e.g. ".tsx"
}

// Meta derives file-tree metadata from the summary path. The ".d.ts"
// double extension is kept whole so type-declaration files stay
// distinguishable from plain ".ts" files.
func (s FileSummary) Meta() FileMeta {
	name := path.Base(s.Path)
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if ext == ".ts" && strings.HasSuffix(stem, ".d") {
		stem = strings.TrimSuffix(stem, ".d")
		ext = ".d.ts"
	}
	return FileMeta{
		Path: s.Path,
		Name: name,
		Stem: stem,
		Ext:  ext,
	}
}
