package internal_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEventImportRestrictions keeps the event bus at the bottom of the
// stack: it may log, nothing else.
func TestEventImportRestrictions(t *testing.T) {
	allowedPrefixes := []string{
		"github.com/thexant/galaxygame/internal/log",
	}

	checkImports(t, "./event", allowedPrefixes, nil)
}

// TestEntityImportRestrictions ensures entity plumbing knows nothing
// about concrete game types or persistence.
func TestEntityImportRestrictions(t *testing.T) {
	allowedPrefixes := []string{
		"github.com/thexant/galaxygame/internal/event",
		"github.com/thexant/galaxygame/internal/log",
	}

	checkImports(t, "./entity", allowedPrefixes, nil)
}

// TestGameImportRestrictions ensures the core state never reaches into
// persistence or generation. Saving is something done TO game state,
// never BY it.
func TestGameImportRestrictions(t *testing.T) {
	forbiddenPrefixes := []string{
		"github.com/thexant/galaxygame/internal/storage",
		"github.com/thexant/galaxygame/internal/galaxy",
		"github.com/thexant/galaxygame/internal/config",
	}

	checkImports(t, "./game", nil, forbiddenPrefixes)
}

// TestStorageImportRestrictions ensures storage sits below generation.
func TestStorageImportRestrictions(t *testing.T) {
	forbiddenPrefixes := []string{
		"github.com/thexant/galaxygame/internal/galaxy",
		"github.com/thexant/galaxygame/internal/config",
	}

	checkImports(t, "./storage", nil, forbiddenPrefixes)
}

func checkImports(t *testing.T, packageDir string, allowedPrefixes, forbiddenPrefixes []string) {
	err := filepath.Walk(packageDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		fset := token.NewFileSet()
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			return nil
		}

		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)

			// Only police imports of our own internal packages
			if !strings.Contains(importPath, "galaxygame/internal") {
				continue
			}

			for _, forbidden := range forbiddenPrefixes {
				if strings.HasPrefix(importPath, forbidden) {
					t.Errorf("FORBIDDEN import in %s: %s", path, importPath)
				}
			}

			if len(allowedPrefixes) > 0 {
				allowed := false
				for _, prefix := range allowedPrefixes {
					if strings.HasPrefix(importPath, prefix) {
						allowed = true
						break
					}
				}
				if !allowed {
					t.Errorf("DISALLOWED import in %s: %s (not in allowed list)", path, importPath)
				}
			}
		}

		return nil
	})

	if err != nil {
		t.Errorf("Failed to walk directory %s: %v", packageDir, err)
	}
}
