package guest_test

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGuestHasNoHostDependencies verifies that the packages compiled into
// guest modules do not import host-side packages.
func TestGuestHasNoHostDependencies(t *testing.T) {
	forbidden := []string{
		"github.com/superfaceai/one-sdk-sub004/infrastructure",
		"github.com/superfaceai/one-sdk-sub004/host",
		"github.com/superfaceai/one-sdk-sub004/application",
		"github.com/tetratelabs/wazero",
		"net/http",
	}

	for _, dir := range []string{".", "../textcoder", "../bytebuf", "../wireformat", "../log"} {
		files, err := filepath.Glob(filepath.Join(dir, "*.go"))
		require.NoError(t, err)
		require.NotEmpty(t, files, "no Go files in %s", dir)

		for _, file := range files {
			if strings.HasSuffix(file, "_test.go") {
				continue
			}
			checkImports(t, file, forbidden)
		}
	}
}

func checkImports(t *testing.T, filename string, forbidden []string) {
	t.Helper()

	f, err := parser.ParseFile(token.NewFileSet(), filename, nil, parser.ImportsOnly)
	require.NoError(t, err, "failed to parse %s", filename)

	for _, imp := range f.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)
		for _, bad := range forbidden {
			assert.False(t, importPath == bad || strings.HasPrefix(importPath, bad+"/"),
				"%s imports %s", filename, importPath)
		}
	}
}
