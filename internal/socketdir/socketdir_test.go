package socketdir

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"scratch", "scratch.sock"},
		{"deploy-2", "deploy-2.sock"},
		{"a", "a.sock"},
	}
	for _, tt := range tests {
		got := Format(tt.name)
		if got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		filename string
		wantName string
		wantOK   bool
	}{
		{"scratch.sock", "scratch", true},
		{"deploy-2.sock", "deploy-2", true},
		{"notasocket.txt", "", false},
		{".sock", "", false},
	}
	for _, tt := range tests {
		entry, ok := Parse(tt.filename)
		if ok != tt.wantOK {
			t.Errorf("Parse(%q) ok = %v, want %v", tt.filename, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if entry.Name != tt.wantName {
			t.Errorf("Parse(%q).Name = %q, want %q", tt.filename, entry.Name, tt.wantName)
		}
	}
}

func TestPath(t *testing.T) {
	got := Path("scratch")
	want := filepath.Join(Dir(), "scratch.sock")
	if got != want {
		t.Errorf("Path(scratch) = %q, want %q", got, want)
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()

	os.WriteFile(filepath.Join(dir, "scratch.sock"), nil, 0o600)
	os.WriteFile(filepath.Join(dir, "deploy.sock"), nil, 0o600)

	t.Run("match", func(t *testing.T) {
		path, err := FindIn(dir, "scratch")
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(dir, "scratch.sock")
		if path != want {
			t.Errorf("Find(scratch) = %q, want %q", path, want)
		}
	})

	t.Run("no match", func(t *testing.T) {
		_, err := FindIn(dir, "nonexistent")
		if err == nil {
			t.Fatal("expected error for no match")
		}
	})
}

func TestList(t *testing.T) {
	dir := t.TempDir()

	os.WriteFile(filepath.Join(dir, "scratch.sock"), nil, 0o600)
	os.WriteFile(filepath.Join(dir, "deploy.sock"), nil, 0o600)
	os.WriteFile(filepath.Join(dir, "random.txt"), nil, 0o600) // ignored
	os.WriteFile(filepath.Join(dir, ".sock"), nil, 0o600)      // ignored, empty name

	entries, err := ListIn(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
		if e.Path == "" {
			t.Error("entry has empty Path")
		}
	}
	if !names["scratch"] || !names["deploy"] {
		t.Errorf("expected scratch and deploy entries, got %+v", entries)
	}
}

func TestListIn_EmptyDir(t *testing.T) {
	entries, err := ListIn(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

func TestListIn_NonexistentDir(t *testing.T) {
	entries, err := ListIn("/nonexistent/path")
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Errorf("expected nil, got %v", entries)
	}
}

func TestDir_EndsInSockets(t *testing.T) {
	ResetDirCache()
	defer ResetDirCache()

	dir := Dir()
	if !strings.HasSuffix(dir, "sockets") && !strings.HasPrefix(filepath.Base(dir), "weave-") {
		t.Errorf("Dir() = %q, expected to end with 'sockets' or be a resolved weave- symlink", dir)
	}
}

func TestDir_Caches(t *testing.T) {
	ResetDirCache()
	defer ResetDirCache()

	first := Dir()
	second := Dir()
	if first != second {
		t.Errorf("Dir() returned different values across calls without ResetDirCache: %q vs %q", first, second)
	}
}

func TestResolveSocketDir_ShortPathPassesThrough(t *testing.T) {
	real := filepath.Join(t.TempDir(), "sockets")
	got := resolveSocketDir(real)
	if got != real {
		t.Errorf("resolveSocketDir(%q) = %q, want the real path unchanged (well under sun_path limit)", real, got)
	}
}

func TestResolveSocketDir_LongPathUsesSymlink(t *testing.T) {
	base := t.TempDir()
	// Build an artificially long real path to force the symlink fallback.
	real := filepath.Join(base, strings.Repeat("x", maxSunPathLen))

	got := resolveSocketDir(real)
	if got == real {
		t.Fatalf("resolveSocketDir(%q) returned the long path unchanged, expected a short symlink", real)
	}
	target, err := os.Readlink(got)
	if err != nil {
		t.Fatalf("expected %q to be a symlink: %v", got, err)
	}
	if target != real {
		t.Errorf("symlink target = %q, want %q", target, real)
	}
}

func TestResolveSocketDir_LongPathIsStableAcrossCalls(t *testing.T) {
	base := t.TempDir()
	real := filepath.Join(base, strings.Repeat("y", maxSunPathLen))

	first := resolveSocketDir(real)
	second := resolveSocketDir(real)
	if first != second {
		t.Errorf("resolveSocketDir(%q) is unstable: %q vs %q", real, first, second)
	}
}
