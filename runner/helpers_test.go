package runner

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
)

// writeAnalyzer writes an executable /bin/sh script that stands in for the analyzer.
func writeAnalyzer(t *testing.T, dir string, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake analyzer scripts require a POSIX shell")
	}
	path := filepath.Join(dir, "llta")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// writeFixture creates an empty fixture file and returns its path.
func writeFixture(t *testing.T, dir string, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("; llvm ir\n"), 0o644))
	return path
}

func discardLogger() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}
