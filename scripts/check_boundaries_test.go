package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, root string, rel string, imports ...string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("package p\n\nimport (\n")
	for _, imp := range imports {
		b.WriteString("\t_ \"" + imp + "\"\n")
	}
	b.WriteString(")\n")
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestRepositoryHasNoBoundaryViolations(t *testing.T) {
	for _, v := range collectViolations("..") {
		t.Errorf("%s:%d imports %q (%s)", v.File, v.Line, v.Import, v.Rule)
	}
}

func TestBoundaryRulesCatchLayerLeaks(t *testing.T) {
	root := t.TempDir()
	const booth = "agora/contexts/governance/voting-booth"
	writeSource(t, root, "contexts/governance/voting-booth/domain/entities/bad.go",
		booth+"/domain/errors", booth+"/application", "github.com/google/uuid")
	writeSource(t, root, "contexts/governance/voting-booth/application/booth/bad.go",
		booth+"/application/commands", booth+"/application/workers", "agora/internal/platform/db")
	writeSource(t, root, "contexts/governance/voting-booth/adapters/remote/bad.go",
		booth+"/transport/http", "agora/contexts/finance/ledger/ports", "agora/cmd/booth")
	writeSource(t, root, "contexts/governance/voting-booth/adapters/postgres/ok.go",
		booth+"/ports", "agora/internal/platform/db", "gorm.io/gorm")
	writeSource(t, root, "contexts/governance/voting-booth/module.go",
		booth+"/adapters/memory", booth+"/application/workers", "agora/contracts/gen/events/v1")
	writeSource(t, root, "contexts/governance/voting-booth/application/commands/bad_test.go",
		booth+"/adapters/memory")

	got := map[string]string{}
	for _, v := range collectViolations(root) {
		got[v.File+" "+v.Import] = v.Rule
	}

	const dir = "contexts/governance/voting-booth/"
	want := []struct {
		file, imp, rule string
	}{
		{dir + "domain/entities/bad.go", booth + "/application", "domain/entities import is outside explicit allowlist"},
		{dir + "domain/entities/bad.go", "github.com/google/uuid", "domain/entities must stay free of third-party packages"},
		{dir + "application/booth/bad.go", booth + "/application/workers", "application/booth import is outside explicit allowlist"},
		{dir + "application/booth/bad.go", "agora/internal/platform/db", "application/booth must not import runtime infrastructure"},
		{dir + "adapters/remote/bad.go", "agora/contexts/finance/ledger/ports", "cross-context imports are forbidden"},
		{dir + "adapters/remote/bad.go", "agora/cmd/booth", "contexts must not import process mains"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d violations, got %d: %v", len(want), len(got), got)
	}
	for _, w := range want {
		if rule := got[w.file+" "+w.imp]; rule != w.rule {
			t.Fatalf("%s imports %s: expected rule %q, got %q", w.file, w.imp, w.rule, rule)
		}
	}
}
