package integration

import (
	"fmt"
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	root, err := FindProjectRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "biblio-test-*")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	buildErr = buildBinaries(root, tmpDir)

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}
