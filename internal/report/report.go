// Package report renders an analysis report as Markdown.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/phobologic/treemap/internal/model"
)

const (
	maxFunctions = 20
	maxImports   = 15
	maxPerKind   = 15
)

var severityLabels = map[model.Severity]string{
	model.High:   "High Priority",
	model.Medium: "Medium Priority",
	model.Low:    "Low Priority",
}

// importKeywords introduce the module name in a displayed import statement.
var importKeywords = map[string]struct{}{
	"import":           {},
	"from":             {},
	"use":              {},
	"require":          {},
	"require_relative": {},
	"load":             {},
}

// Options controls rendering.
type Options struct {
	// Skip removes findings of these kinds before counting and capping.
	Skip map[model.Kind]struct{}
	// Head is the "hash subject" of the current commit; empty omits the line.
	Head string
}

// Format renders the structural map followed by the findings report.
func Format(r *model.Report, opts Options) string {
	findings := filter(r.Findings, opts.Skip)

	var lines []string
	if opts.Head != "" {
		lines = append(lines, "# Git HEAD at analysis: "+opts.Head, "")
	}
	lines = append(lines, fmt.Sprintf("# Codebase Structure (%d files parsed)", len(r.Files)), "")
	lines = append(lines, summary(r.Files, findings)...)
	lines = append(lines, structure(r.Files)...)
	lines = append(lines, smells(findings)...)
	return strings.Join(lines, "\n")
}

func filter(findings []model.Finding, skip map[model.Kind]struct{}) []model.Finding {
	if len(skip) == 0 {
		return findings
	}
	var kept []model.Finding
	for _, f := range findings {
		if _, ok := skip[f.Kind]; !ok {
			kept = append(kept, f)
		}
	}
	return kept
}

func summary(files []model.FileRecord, findings []model.Finding) []string {
	byLang := make(map[string]int)
	var totalLines, classes, functions int
	for i := range files {
		f := &files[i]
		byLang[f.Language]++
		totalLines += f.LineCount
		classes += len(f.Classes)
		functions += len(f.Functions)
	}

	langs := make([]string, 0, len(byLang))
	for name := range byLang {
		langs = append(langs, name)
	}
	sort.Strings(langs)
	var perLang []string
	for _, name := range langs {
		perLang = append(perLang, fmt.Sprintf("%s: %d", name, byLang[name]))
	}

	tally := make(map[model.Severity]int)
	for _, f := range findings {
		tally[f.Severity]++
	}

	filesLine := fmt.Sprintf("- Files: %d", len(files))
	if len(perLang) > 0 {
		filesLine += " (" + strings.Join(perLang, ", ") + ")"
	}
	return []string{
		"## Summary",
		"",
		filesLine,
		fmt.Sprintf("- Lines: %d", totalLines),
		fmt.Sprintf("- Classes: %d", classes),
		fmt.Sprintf("- Functions: %d", functions),
		fmt.Sprintf("- Findings: %d high, %d medium, %d low", tally[model.High], tally[model.Medium], tally[model.Low]),
		"",
	}
}

func structure(files []model.FileRecord) []string {
	sorted := make([]model.FileRecord, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	byDir := make(map[string][]model.FileRecord)
	var dirs []string
	for _, f := range sorted {
		dir := topDir(f.Path)
		if _, ok := byDir[dir]; !ok {
			dirs = append(dirs, dir)
		}
		byDir[dir] = append(byDir[dir], f)
	}
	sort.Strings(dirs)

	var lines []string
	for _, dir := range dirs {
		lines = append(lines, "## "+dir+"/", "")
		for _, f := range byDir[dir] {
			lines = append(lines, fmt.Sprintf("**%s** (%s, %d lines)", f.Path, f.Language, f.LineCount))
			if len(f.Classes) > 0 {
				lines = append(lines, "  - classes: "+strings.Join(f.Classes, ", "))
			}
			if len(f.Interfaces) > 0 {
				lines = append(lines, "  - interfaces: "+strings.Join(f.Interfaces, ", "))
			}
			if len(f.TypeAliases) > 0 {
				lines = append(lines, "  - types: "+strings.Join(f.TypeAliases, ", "))
			}
			if len(f.Functions) > 0 {
				lines = append(lines, "  - functions: "+capList(f.Functions, maxFunctions))
			}
			if mods := importNames(f.Imports); len(mods) > 0 {
				lines = append(lines, "  - imports: "+capList(mods, maxImports))
			}
			lines = append(lines, "")
		}
	}
	return lines
}

// topDir returns the first path segment, or "." for files at the root.
func topDir(p string) string {
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return "."
}

func capList(items []string, limit int) string {
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(items[:limit], ", "), len(items)-limit)
}

// importNames extracts the unique module names from displayed import
// statements, in first-seen order.
func importNames(imports []string) []string {
	seen := make(map[string]struct{}, len(imports))
	var names []string
	for _, imp := range imports {
		parts := strings.Fields(imp)
		if len(parts) < 2 {
			continue
		}
		mod := parts[0]
		if _, ok := importKeywords[parts[0]]; ok {
			mod = parts[1]
			if (mod == "(" || mod == "{") && len(parts) > 2 {
				mod = parts[2]
			}
		}
		if from := esModule(parts); from != "" {
			mod = from
		}
		mod = strings.Trim(mod, `"'`+"`,;(")
		if mod == "" {
			continue
		}
		if _, dup := seen[mod]; dup {
			continue
		}
		seen[mod] = struct{}{}
		names = append(names, mod)
	}
	return names
}

// esModule returns the module of an ECMAScript `import ... from "mod"`
// statement, or "" for anything else.
func esModule(parts []string) string {
	if parts[0] != "import" {
		return ""
	}
	for i := len(parts) - 2; i > 1; i-- {
		if parts[i] == "from" {
			return parts[i+1]
		}
	}
	return ""
}

func smells(findings []model.Finding) []string {
	if len(findings) == 0 {
		return []string{"# Code Smells (0 issues found)", "", "No code smells detected.", ""}
	}

	lines := []string{fmt.Sprintf("# Code Smells (%d issues found)", len(findings)), ""}

	bySeverity := make(map[model.Severity][]model.Finding)
	for _, f := range findings {
		bySeverity[f.Severity] = append(bySeverity[f.Severity], f)
	}

	for _, sev := range model.Severities {
		items := bySeverity[sev]
		if len(items) == 0 {
			continue
		}
		lines = append(lines, "## "+severityLabels[sev], "")

		sort.SliceStable(items, func(i, j int) bool {
			if items[i].File != items[j].File {
				return items[i].File < items[j].File
			}
			return items[i].Line < items[j].Line
		})

		byKind := make(map[model.Kind][]model.Finding)
		var kinds []model.Kind
		for _, f := range items {
			if _, ok := byKind[f.Kind]; !ok {
				kinds = append(kinds, f.Kind)
			}
			byKind[f.Kind] = append(byKind[f.Kind], f)
		}

		for _, kind := range kinds {
			group := byKind[kind]
			for i, f := range group {
				if i == maxPerKind {
					lines = append(lines, fmt.Sprintf("  ... and %d more %s issues", len(group)-maxPerKind, kind))
					break
				}
				lines = append(lines, findingLine(f))
			}
		}
		lines = append(lines, "")
	}
	return lines
}

func findingLine(f model.Finding) string {
	loc := f.File
	if f.Line > 0 {
		loc += ":" + strconv.Itoa(f.Line)
	}
	return fmt.Sprintf("- [%s] %s — %s", f.Kind, loc, f.Detail)
}
