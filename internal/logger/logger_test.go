package logger

import (
	"bytes"
	"os"
	"testing"
)

// captureStdout redirects stdout for the duration of fn and returns what was
// written. Output content is environment-dependent (colors), so tests only
// check for substrings and absence of panics.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestLevels(t *testing.T) {
	out := captureStdout(t, func() {
		Info("ROUTE", "planning")
		Success("ROUTE", "done")
		Warn("INDEX", "stale")
		Error("STARMAP", "missing")
	})
	for _, want := range []string{"ROUTE", "INDEX", "STARMAP", "planning", "stale"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestBanner(t *testing.T) {
	out := captureStdout(t, func() {
		Banner("v1.2.3")
		Banner("")
	})
	if !bytes.Contains([]byte(out), []byte("v1.2.3")) {
		t.Errorf("banner missing version")
	}
	if !bytes.Contains([]byte(out), []byte("dev")) {
		t.Errorf("empty version should fall back to dev")
	}
}

func TestSectionAndStats(t *testing.T) {
	out := captureStdout(t, func() {
		Section("Route")
		Stats("hops", 42)
	})
	if !bytes.Contains([]byte(out), []byte("Route")) || !bytes.Contains([]byte(out), []byte("42")) {
		t.Errorf("section/stats output incomplete: %q", out)
	}
}
