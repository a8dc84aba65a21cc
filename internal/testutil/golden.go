package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// UpdateEnv names the environment variable that rewrites golden files.
const UpdateEnv = "TICK_UPDATE_GOLDEN"

var ansi = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Golden compares got with testdata/<name>.golden. Colour escapes are
// stripped first so files stay readable whether or not colour is enabled.
// With TICK_UPDATE_GOLDEN set the file is written instead.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	got = ansi.ReplaceAll(got, nil)
	path := filepath.Join("testdata", name+".golden")

	if os.Getenv(UpdateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("create testdata: %v", err)
		}
		if err := os.WriteFile(path, got, 0644); err != nil {
			t.Fatalf("update %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v (set %s=1 to create it)\ngot:\n%s", path, err, UpdateEnv, got)
	}
	want = bytes.ReplaceAll(want, []byte("\r\n"), []byte("\n"))

	if !bytes.Equal(got, want) {
		line, w, g := firstDiff(want, got)
		t.Errorf("%s differs at line %d\nwant: %q\ngot:  %q\n\nfull output:\n%s", name, line, w, g, got)
	}
}

// GoldenString is Golden for string output.
func GoldenString(t *testing.T, name, got string) {
	t.Helper()
	Golden(t, name, []byte(got))
}

func firstDiff(want, got []byte) (int, []byte, []byte) {
	wl := bytes.Split(want, []byte("\n"))
	gl := bytes.Split(got, []byte("\n"))
	for i := 0; i < len(wl) || i < len(gl); i++ {
		var w, g []byte
		if i < len(wl) {
			w = wl[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if !bytes.Equal(w, g) {
			return i + 1, w, g
		}
	}
	return 0, nil, nil
}
