package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brownzinoart/weready/internal/detect"
)

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		lang detect.Language
		ok   bool
	}{
		{"main.py", detect.LangPython, true},
		{"src/app.js", detect.LangJavaScript, true},
		{"lib/util.mjs", detect.LangJavaScript, true},
		{"lib/util.cjs", detect.LangJavaScript, true},
		{"main.go", "", false},
		{"README.md", "", false},
	}

	for _, tt := range tests {
		lang, ok := LanguageForPath(tt.path)
		if ok != tt.ok || lang != tt.lang {
			t.Errorf("LanguageForPath(%s) = (%s, %v), expected (%s, %v)", tt.path, lang, ok, tt.lang, tt.ok)
		}
	}
}

func TestWatcher_DebouncesAndFilters(t *testing.T) {
	dir := t.TempDir()

	changes := make(chan []string, 1)
	w, err := NewWatcher(50*time.Millisecond, []string{"ignored*"}, func(paths []string) {
		changes <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{dir}); err != nil {
		t.Fatal(err)
	}

	// One relevant file, one wrong extension, one excluded by glob.
	os.WriteFile(filepath.Join(dir, "app.py"), []byte("import os\n"), 0644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "ignored.py"), []byte("import os\n"), 0644)

	select {
	case paths := <-changes:
		if len(paths) != 1 {
			t.Fatalf("expected 1 path, got %v", paths)
		}
		if filepath.Base(paths[0]) != "app.py" {
			t.Errorf("unexpected path: %s", paths[0])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestNewWatcher_RequiresCallback(t *testing.T) {
	if _, err := NewWatcher(time.Millisecond, nil, nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}

func TestNewWatcher_RejectsBadGlob(t *testing.T) {
	if _, err := NewWatcher(time.Millisecond, []string{"[unclosed"}, func([]string) {}); err == nil {
		t.Fatal("expected error for invalid glob pattern")
	}
}
