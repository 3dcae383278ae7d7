// Package graph builds the module import graph and finds import cycles.
package graph

import (
	"sort"
	"strings"

	dg "github.com/dominikbraun/graph"

	"github.com/phobologic/treemap/internal/model"
)

// Module is one source file's contribution to the import graph.
type Module struct {
	Key     string   // synthesized module key, e.g. pkg.sub.mod
	File    string   // repo-relative path
	Imports []string // raw module spellings, possibly relative or external
}

// BuildImportGraph collects modules into an import graph. Every module is
// registered even when it imports nothing, so it can be an import target.
func BuildImportGraph(modules []Module) *model.ImportGraph {
	ig := model.NewImportGraph()
	for _, m := range modules {
		if m.Key == "" {
			continue
		}
		ig.AddModule(m.Key, m.File)
		for _, spelling := range m.Imports {
			ig.AddImport(m.Key, spelling)
		}
	}
	return ig
}

// DetectCycles reports each distinct import cycle once as CIRCULAR_IMPORT.
// Spellings that resolve to no known module are ignored. Two cycles with the
// same member set are the same cycle regardless of rotation.
func DetectCycles(ig *model.ImportGraph) []model.Finding {
	if ig == nil || len(ig.Imports) == 0 {
		return nil
	}

	adj := resolveEdges(ig)
	keys := sortedKeys(ig.Imports)

	var (
		cycles   [][]string
		visited  = make(map[string]bool, len(keys))
		onStack  = make(map[string]bool)
		stack    []string
		dfs      func(module string)
		children = func(module string) []string {
			next := make([]string, 0, len(adj[module]))
			for target := range adj[module] {
				next = append(next, target)
			}
			sort.Strings(next)
			return next
		}
	)

	dfs = func(module string) {
		visited[module] = true
		onStack[module] = true
		stack = append(stack, module)

		for _, target := range children(module) {
			switch {
			case onStack[target]:
				start := indexOf(stack, target)
				cycle := append(append([]string(nil), stack[start:]...), target)
				cycles = append(cycles, cycle)
			case !visited[target]:
				dfs(target)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[module] = false
	}

	for _, key := range keys {
		if !visited[key] {
			dfs(key)
		}
	}

	seen := make(map[string]struct{}, len(cycles))
	var findings []model.Finding
	for _, cycle := range cycles {
		members := append([]string(nil), cycle[:len(cycle)-1]...)
		sort.Strings(members)
		id := strings.Join(members, " -> ")
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		findings = append(findings, model.NewFinding(
			model.CircularImport,
			ig.Files[cycle[0]],
			0,
			strings.Join(cycle, " -> "),
		))
	}
	return findings
}

// resolveEdges maps every import spelling onto a known module and returns
// the resulting adjacency.
func resolveEdges(ig *model.ImportGraph) map[string]map[string]dg.Edge[string] {
	keys := sortedKeys(ig.Imports)
	g := dg.New(dg.StringHash, dg.Directed())
	for _, key := range keys {
		_ = g.AddVertex(key)
	}
	for _, key := range keys {
		for _, spelling := range sortedKeys(ig.Imports[key]) {
			target, ok := resolve(key, spelling, keys, ig.Imports)
			if !ok {
				continue
			}
			// Several spellings may resolve to the same target.
			_ = g.AddEdge(key, target)
		}
	}
	adj, err := g.AdjacencyMap()
	if err != nil {
		return nil
	}
	return adj
}

// resolve matches an import spelling against the known module keys:
// exact match first, then a relative import against the importing module's
// package, then the first key (in sorted order) ending in "."+spelling.
func resolve(from, spelling string, keys []string, known map[string]map[string]struct{}) (string, bool) {
	if _, ok := known[spelling]; ok {
		return spelling, true
	}

	if strings.HasPrefix(spelling, ".") {
		rest := strings.TrimLeft(spelling, ".")
		depth := len(spelling) - len(rest)
		parts := strings.Split(from, ".")
		if depth > len(parts) {
			return "", false
		}
		base := parts[:len(parts)-depth]
		if rest != "" {
			base = append(append([]string(nil), base...), rest)
		}
		candidate := strings.Join(base, ".")
		if _, ok := known[candidate]; ok && candidate != "" {
			return candidate, true
		}
		return "", false
	}

	suffix := "." + spelling
	for _, key := range keys {
		if strings.HasSuffix(key, suffix) {
			return key, true
		}
	}
	return "", false
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
