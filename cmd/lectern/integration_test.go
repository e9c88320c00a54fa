package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/csheth/lectern/internal/tuitest"
)

func TestLecternOpensDocumentAndQuits(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	fixture := filepath.Join(cmdDir, "testdata", "minimal.pdf")
	if _, err := os.Stat(fixture); err != nil {
		t.Fatalf("fixture missing: %v", err)
	}

	binary := buildBinary(t, cmdDir)
	session := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()
	rec, err := tuitest.Run(ctx, tuitest.Config{
		Command: []string{binary, "-no-alt-screen", "-session", session, fixture},
		Dir:     cmdDir,
		Width:   120,
		Height:  40,
		Steps: []tuitest.Step{
			{Delay: 2 * time.Second},
			{Input: []byte("?")},
			{Delay: time.Second},
			{Input: tuitest.KeyCtrlC},
		},
		Timeout:        10 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	frame, ok := rec.FinalFrame()
	if !ok {
		t.Fatalf("no frames captured")
	}
	if !strings.Contains(frame.Plain, "minimal") {
		t.Fatalf("document name missing from final frame:\n%s", frame.Plain)
	}
	if !strings.Contains(frame.Plain, "Page 1/1") {
		t.Fatalf("page indicator missing from final frame:\n%s", frame.Plain)
	}
	if !rec.AnyFrameContains("Study Guide") {
		t.Fatalf("guide overlay never rendered")
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	tmp := t.TempDir()
	name := "lectern-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(tmp, name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
