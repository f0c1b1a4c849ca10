// Package integration runs the built biblio and biblio-api binaries against
// each other.
package integration

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

var (
	// biblioBin and apiBin are the paths to the built binaries.
	biblioBin string
	apiBin    string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// buildBinaries compiles both commands into dir.
func buildBinaries(root, dir string) error {
	for name, pkg := range map[string]string{"biblio": "./cmd/biblio", "biblio-api": "./cmd/biblio-api"} {
		out := filepath.Join(dir, name)
		cmd := exec.Command("go", "build", "-o", out, pkg)
		cmd.Dir = root
		if output, err := cmd.CombinedOutput(); err != nil {
			return &BuildError{Err: err, Output: string(output)}
		}
	}
	biblioBin = filepath.Join(dir, "biblio")
	apiBin = filepath.Join(dir, "biblio-api")
	return nil
}

// TestEnv provides an isolated environment: CLI config and data
// directories, and a port reserved for the API.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	DataDir string
	Addr    string

	api *exec.Cmd
}

// NewTestEnv creates the directories and a config.yaml pointing the CLI at
// the environment's API address.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	require.NoError(t, buildErr, "failed to build binaries")

	tempDir := t.TempDir()
	env := &TestEnv{
		t:       t,
		TempDir: tempDir,
		Config:  filepath.Join(tempDir, "config"),
		DataDir: filepath.Join(tempDir, "data"),
		Addr:    freeAddr(t),
	}

	require.NoError(t, os.MkdirAll(env.Config, 0o755))
	config := fmt.Sprintf("store: file\napi_base: http://%s/api\nremote: true\nprobe_interval: 1s\nremote_timeout: 2s\n", env.Addr)
	require.NoError(t, os.WriteFile(filepath.Join(env.Config, "config.yaml"), []byte(config), 0o644))

	t.Cleanup(env.StopAPI)
	return env
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

// StartAPI runs biblio-api on the environment's address and waits until
// the health endpoint answers.
func (e *TestEnv) StartAPI() {
	e.t.Helper()

	apiConfig := filepath.Join(e.TempDir, "api-config")
	cmd := exec.Command(apiBin,
		"--config-dir", apiConfig,
		"--data-dir", filepath.Join(e.TempDir, "api-data"),
		"--listen", e.Addr,
	)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	require.NoError(e.t, cmd.Start())
	e.api = cmd

	require.Eventually(e.t, func() bool {
		resp, err := http.Get("http://" + e.Addr + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond, "biblio-api did not become healthy")
}

// StopAPI interrupts biblio-api and waits for it to exit.
func (e *TestEnv) StopAPI() {
	if e.api == nil {
		return
	}
	_ = e.api.Process.Signal(os.Interrupt)
	_ = e.api.Wait()
	e.api = nil
}

// CmdResult holds the result of a biblio command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunBiblio executes the biblio CLI with the given arguments.
func (e *TestEnv) RunBiblio(args ...string) CmdResult {
	e.t.Helper()

	allArgs := append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...)
	cmd := exec.Command(biblioBin, allArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			e.t.Fatalf("failed to run biblio: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}
}

// MustRunBiblio executes the biblio CLI and fails the test on a non-zero exit.
func (e *TestEnv) MustRunBiblio(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunBiblio(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("biblio %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var result T
	require.NoError(t, gojson.Unmarshal([]byte(s), &result), "parse JSON %q", s)
	return result
}
