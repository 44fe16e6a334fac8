package ptyproc

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestWrite_Success(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	go func() {
		buf := make([]byte, 1024)
		for {
			if _, err := r.Read(buf); err != nil {
				return
			}
		}
	}()
	defer r.Close()

	p := &Process{Ptm: w}
	n, err := p.Write([]byte("hello"), time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected n=5, got %d", n)
	}
}

func TestWrite_Timeout(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	// Fill the pipe buffer so subsequent writes block.
	chunk := make([]byte, 4096)
	for {
		_ = w.SetWriteDeadline(time.Now().Add(50 * time.Millisecond))
		if _, err := w.Write(chunk); err != nil {
			break
		}
	}
	_ = w.SetWriteDeadline(time.Time{})

	p := &Process{Ptm: w}
	start := time.Now()
	_, err = p.Write([]byte("x"), 100*time.Millisecond)
	elapsed := time.Since(start)

	if err != ErrWriteTimeout {
		t.Fatalf("expected ErrWriteTimeout, got %v", err)
	}
	if elapsed < 50*time.Millisecond {
		t.Fatalf("returned too fast (%v), timeout may not be working", elapsed)
	}
}

func TestWrite_WriteError(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	r.Close() // reader gone: writes fail with a broken-pipe error

	p := &Process{Ptm: w}
	_, err = p.Write([]byte("hello"), time.Second)
	w.Close()

	if err == nil {
		t.Fatal("expected an error from writing to a broken pipe")
	}
	if err == ErrWriteTimeout {
		t.Fatal("expected a pipe error, not a timeout")
	}
}

func TestMergeEnv_OverridesTakePrecedence(t *testing.T) {
	base := []string{"PATH=/usr/bin", "TERM=xterm"}
	got := mergeEnv(base, map[string]string{"TERM": "weave"})

	var sawTerm, sawPath bool
	for _, e := range got {
		switch e {
		case "TERM=weave":
			sawTerm = true
		case "PATH=/usr/bin":
			sawPath = true
		case "TERM=xterm":
			t.Fatal("original TERM entry should have been replaced")
		}
	}
	if !sawTerm {
		t.Error("expected overridden TERM=weave in merged env")
	}
	if !sawPath {
		t.Error("expected untouched PATH entry preserved in merged env")
	}
}

func TestSpawnReadLoopAndExit(t *testing.T) {
	p, err := Spawn("/bin/sh", []string{"-c", "echo hi; exit 0"}, 24, 80, nil)
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	defer p.Close()

	var output strings.Builder
	done := make(chan error, 1)
	go p.ReadLoop(func(b []byte) {
		output.Write(b)
	}, func(exitErr error) {
		done <- exitErr
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ReadLoop did not observe exit within timeout")
	}

	if !strings.Contains(output.String(), "hi") {
		t.Errorf("output = %q, want it to contain %q", output.String(), "hi")
	}
	exited, _ := p.Exited()
	if !exited {
		t.Error("Exited() = false after ReadLoop returned")
	}
}

func TestIsIdle(t *testing.T) {
	p := &Process{}
	if p.IsIdle(time.Millisecond) {
		t.Error("IsIdle() should be false before any output has ever arrived")
	}
	p.lastOutput = time.Now().Add(-time.Second)
	if !p.IsIdle(10 * time.Millisecond) {
		t.Error("IsIdle() should be true once lastOutput is older than the threshold")
	}
}

func TestKillWithNoProcessIsNoop(t *testing.T) {
	p := &Process{}
	if err := p.Kill(); err != nil {
		t.Errorf("Kill() on an unspawned Process should be a no-op, got %v", err)
	}
}
