package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "agora"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists what one package tree inside a bounded context may import.
// Layers are paths relative to the context root; the longest match wins. An
// allowed entry ending in "/..." admits the whole tree below it.
type layerRule struct {
	layer      string
	allowed    []string
	contracts  bool
	platform   bool
	thirdParty bool
}

var layerRules = []layerRule{
	{layer: "domain", allowed: []string{"domain/..."}},
	{layer: "ports", allowed: []string{"domain/..."}, contracts: true},
	{layer: "transport", allowed: []string{"domain/...", "transport/..."}},
	{layer: "application", allowed: []string{"domain/...", "ports"}},
	{layer: "application/queries", allowed: []string{"application", "domain/...", "ports"}},
	{layer: "application/commands", allowed: []string{"application", "application/queries", "domain/...", "ports"}, contracts: true},
	{layer: "application/booth", allowed: []string{"application", "application/commands", "domain/...", "ports"}},
	{layer: "application/workers", allowed: []string{"application", "domain/...", "ports"}, contracts: true},
	{layer: "adapters/memory", allowed: []string{"domain/...", "ports"}, thirdParty: true},
	{layer: "adapters/postgres", allowed: []string{"domain/...", "ports"}, platform: true, thirdParty: true},
	{layer: "adapters/remote", allowed: []string{"domain/...", "ports", "transport/..."}},
	{layer: "adapters/http", allowed: []string{"application/commands", "application/queries", "domain/...", "transport/..."}},
	{layer: "", allowed: []string{"..."}, contracts: true, thirdParty: true},
}

func main() {
	violations := collectViolations(".")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

// collectViolations checks every non-test file under root/contexts. Files are
// reported relative to root.
func collectViolations(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(filepath.Join(root, "contexts"), func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		normalized := filepath.ToSlash(rel)
		parts := strings.Split(normalized, "/")
		if len(parts) < 4 {
			return nil
		}

		contextRoot := modulePath + "/" + strings.Join(parts[:3], "/")
		layer := strings.Join(parts[3:len(parts)-1], "/")
		violations = append(violations, validateFile(path, normalized, layer, contextRoot)...)
		return nil
	})

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			if violations[i].Line == violations[j].Line {
				return violations[i].Import < violations[j].Import
			}
			return violations[i].Line < violations[j].Line
		}
		return violations[i].File < violations[j].File
	})
	return violations
}

func validateFile(path string, normalizedPath string, layer string, contextRoot string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalizedPath, Line: 1, Rule: "file must parse"}}
	}

	rule := ruleFor(layer)
	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		if broken := checkImport(rule, layer, importPath, contextRoot); broken != "" {
			violations = append(violations, violation{
				File:   normalizedPath,
				Line:   fset.Position(imp.Pos()).Line,
				Import: importPath,
				Rule:   broken,
			})
		}
	}
	return violations
}

func ruleFor(layer string) layerRule {
	best := layerRules[len(layerRules)-1]
	for _, rule := range layerRules {
		if rule.layer != "" && hasPrefix(layer, rule.layer) && len(rule.layer) > len(best.layer) {
			best = rule
		}
	}
	return best
}

// checkImport returns the broken rule, or "" when the import is allowed.
func checkImport(rule layerRule, layer string, importPath string, contextRoot string) string {
	name := layer
	if name == "" {
		name = "module root"
	}
	switch {
	case isStdlib(importPath):
		return ""
	case hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, contextRoot):
		return "cross-context imports are forbidden"
	case hasPrefix(importPath, modulePath+"/cmd"):
		return "contexts must not import process mains"
	case hasPrefix(importPath, modulePath+"/contracts"):
		if !rule.contracts {
			return name + " must not import event contracts"
		}
		return ""
	case hasPrefix(importPath, modulePath+"/internal"):
		if !rule.platform {
			return name + " must not import runtime infrastructure"
		}
		return ""
	case hasPrefix(importPath, contextRoot):
		target := strings.TrimPrefix(strings.TrimPrefix(importPath, contextRoot), "/")
		for _, allowed := range rule.allowed {
			if allowsTarget(allowed, target) {
				return ""
			}
		}
		return name + " import is outside explicit allowlist"
	case !rule.thirdParty:
		return name + " must stay free of third-party packages"
	}
	return ""
}

func allowsTarget(allowed string, target string) bool {
	if allowed == "..." {
		return true
	}
	if tree, ok := strings.CutSuffix(allowed, "/..."); ok {
		return hasPrefix(target, tree)
	}
	return target == allowed
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isStdlib(importPath string) bool {
	if hasPrefix(importPath, modulePath) {
		return false
	}
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".")
}
