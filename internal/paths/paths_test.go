package paths

import (
	"path/filepath"
	"testing"
)

func TestResolveConfigDir_FlagWins(t *testing.T) {
	t.Setenv(EnvConfigDir, "/env/config")

	got, err := ResolveConfigDir("/flag/config")
	if err != nil {
		t.Fatalf("ResolveConfigDir failed: %v", err)
	}
	if got != "/flag/config" {
		t.Errorf("expected flag value, got %s", got)
	}
}

func TestResolveConfigDir_EnvFallback(t *testing.T) {
	t.Setenv(EnvConfigDir, "/env/config")

	got, err := ResolveConfigDir("")
	if err != nil {
		t.Fatalf("ResolveConfigDir failed: %v", err)
	}
	if got != "/env/config" {
		t.Errorf("expected env value, got %s", got)
	}
}

func TestResolveDataDir_Precedence(t *testing.T) {
	t.Setenv(EnvDataDir, "/env/data")

	got, err := ResolveDataDir("/flag/data", "/yaml/data")
	if err != nil {
		t.Fatalf("ResolveDataDir failed: %v", err)
	}
	if got != "/flag/data" {
		t.Errorf("flag should win, got %s", got)
	}

	got, err = ResolveDataDir("", "/yaml/data")
	if err != nil {
		t.Fatalf("ResolveDataDir failed: %v", err)
	}
	if got != "/yaml/data" {
		t.Errorf("config value should win over env, got %s", got)
	}

	got, err = ResolveDataDir("", "")
	if err != nil {
		t.Fatalf("ResolveDataDir failed: %v", err)
	}
	if got != "/env/data" {
		t.Errorf("env should win over default, got %s", got)
	}
}

func TestStoreAndLockPaths(t *testing.T) {
	if got := StorePath("/data"); got != filepath.Join("/data", StoreFileName) {
		t.Errorf("unexpected store path %s", got)
	}
	if got := LockPath("/data"); got != filepath.Join("/data", LockFileName) {
		t.Errorf("unexpected lock path %s", got)
	}
	if got := MarkerPath("/w/cadence.db"); got != "/w/cadence.db"+MarkerSuffix {
		t.Errorf("unexpected marker path %s", got)
	}
}

func TestCandidateDirs(t *testing.T) {
	dirs := CandidateDirs("/a/b/c", 2)

	want := []string{"/a/b/c", filepath.Join("/a/b/c", LegacyDirName), "/a/b", "/a"}
	if len(dirs) != len(want) {
		t.Fatalf("expected %d dirs, got %d: %v", len(want), len(dirs), dirs)
	}
	for i, d := range want {
		if dirs[i] != d {
			t.Errorf("dirs[%d] = %s, want %s", i, dirs[i], d)
		}
	}
}

func TestCandidateDirs_StopsAtRoot(t *testing.T) {
	dirs := CandidateDirs("/a", 5)

	// /a, /a/.cadence, then / and no further.
	if len(dirs) != 3 {
		t.Errorf("expected walk to stop at root, got %v", dirs)
	}
}
