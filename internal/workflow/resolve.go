package workflow

import (
	"log/slog"
	"path"
	"sort"
	"strings"
)

// sourceExts are the extension probes tried when an import specifier omits
// the file extension, plus index-file conventions.
var sourceExts = []string{
	".ts", ".tsx", ".js", ".jsx", ".go", ".py",
	"/index.ts", "/index.tsx", "/index.js",
}

// Resolver maps raw import specifiers to concrete node ids using an
// ordered list of strategies; the first strategy that produces a candidate
// wins, with no backtracking. Nodes are held in insertion order so that
// ties always resolve to the first-inserted node, independent of map
// iteration order.
type Resolver struct {
	nodes      []*WorkflowNode
	ids        map[string]bool
	aliases    []aliasRule
	strategies []strategy
	log        *slog.Logger
}

// aliasRule rewrites a scoped import prefix to a source root.
type aliasRule struct {
	prefix string
	root   string
}

// strategy is one tagged resolution variant. Each is a pure function of
// the resolver state, independently unit-testable.
type strategy struct {
	name string
	fn   func(r *Resolver, spec, importerID string) (string, bool)
}

// NewResolver builds a Resolver over the given nodes. aliasPrefixes maps
// scoped prefixes like "@/" to source roots like "src/"; it may be nil.
func NewResolver(nodes []*WorkflowNode, aliasPrefixes map[string]string, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	r := &Resolver{
		nodes: nodes,
		ids:   make(map[string]bool, len(nodes)),
		log:   log,
	}
	for _, n := range nodes {
		r.ids[n.ID] = true
	}

	prefixes := make([]string, 0, len(aliasPrefixes))
	for p := range aliasPrefixes {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		r.aliases = append(r.aliases, aliasRule{prefix: p, root: aliasPrefixes[p]})
	}

	r.strategies = []strategy{
		{"direct", (*Resolver).resolveDirect},
		{"relative", (*Resolver).resolveRelative},
		{"filename", (*Resolver).resolveFilename},
		{"partial", (*Resolver).resolvePartial},
		{"alias", (*Resolver).resolveAlias},
	}
	return r
}

// Resolve tries each strategy in priority order and returns the chosen
// node id. A miss is logged, never an error: the import simply contributes
// no edge.
func (r *Resolver) Resolve(spec, importerID string) (string, bool) {
	if spec == "" {
		return "", false
	}
	for _, s := range r.strategies {
		if id, ok := s.fn(r, spec, importerID); ok {
			return id, true
		}
	}
	r.log.Debug("import unresolved", "specifier", spec, "importer", importerID)
	return "", false
}

// resolveDirect matches the specifier verbatim against known node ids.
func (r *Resolver) resolveDirect(spec, _ string) (string, bool) {
	if r.ids[spec] {
		return spec, true
	}
	return "", false
}

// resolveRelative collapses ./ and ../ segments against the importer's
// directory, then repeats the direct check with extension and index-file
// probing on the resolved path.
func (r *Resolver) resolveRelative(spec, importerID string) (string, bool) {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
		return "", false
	}
	base := path.Clean(path.Join(path.Dir(importerID), spec))
	return r.probe(base)
}

// resolveFilename takes the last path segment of the specifier and tests
// it, with extension and index-file variants, against every node's file
// name and path suffix. Nodes are scanned in insertion order.
func (r *Resolver) resolveFilename(spec, _ string) (string, bool) {
	last := spec
	if idx := strings.LastIndex(spec, "/"); idx >= 0 {
		last = spec[idx+1:]
	}
	if last == "" {
		return "", false
	}

	candidates := make([]string, 0, len(sourceExts)+1)
	candidates = append(candidates, last)
	for _, ext := range sourceExts {
		candidates = append(candidates, last+ext)
	}

	for _, n := range r.nodes {
		for _, cand := range candidates {
			if n.Name == cand || n.ID == cand || strings.HasSuffix(n.ID, "/"+cand) {
				return n.ID, true
			}
		}
	}
	return "", false
}

// resolvePartial accepts a node whose path contains the specifier, or
// whose base name (extension stripped) is contained in the specifier.
func (r *Resolver) resolvePartial(spec, _ string) (string, bool) {
	for _, n := range r.nodes {
		if strings.Contains(n.ID, spec) {
			return n.ID, true
		}
		stem := strings.TrimSuffix(n.Name, path.Ext(n.Name))
		if stem != "" && strings.Contains(spec, stem) {
			return n.ID, true
		}
	}
	return "", false
}

// resolveAlias rewrites a configured scoped prefix (e.g. "@/" -> "src/")
// and retries the direct and substring checks on the rewritten specifier.
func (r *Resolver) resolveAlias(spec, _ string) (string, bool) {
	for _, rule := range r.aliases {
		if !strings.HasPrefix(spec, rule.prefix) {
			continue
		}
		rewritten := rule.root + strings.TrimPrefix(spec, rule.prefix)
		if id, ok := r.probe(rewritten); ok {
			return id, true
		}
		for _, n := range r.nodes {
			if strings.Contains(n.ID, rewritten) {
				return n.ID, true
			}
		}
	}
	return "", false
}

// probe checks basePath verbatim, then with each extension and index-file
// suffix, against the known node-id set. Pure in-memory lookup.
func (r *Resolver) probe(basePath string) (string, bool) {
	if r.ids[basePath] {
		return basePath, true
	}
	for _, ext := range sourceExts {
		if cand := basePath + ext; r.ids[cand] {
			return cand, true
		}
	}
	return "", false
}
