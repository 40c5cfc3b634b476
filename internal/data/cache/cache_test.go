package cache

import (
	"context"
	"testing"

	"github.com/brownzinoart/weready/internal/detect"
)

func TestKey_Deterministic(t *testing.T) {
	k1 := Key(detect.LangPython, "import os\n")
	k2 := Key(detect.LangPython, "import os\n")
	if k1 != k2 {
		t.Error("expected identical keys for identical input")
	}
}

func TestKey_DistinguishesLanguage(t *testing.T) {
	k1 := Key(detect.LangPython, "import os")
	k2 := Key(detect.LangJavaScript, "import os")
	if k1 == k2 {
		t.Error("expected different keys for different languages")
	}
}

func TestNilCache_IsNoop(t *testing.T) {
	var c *Cache

	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Error("expected miss on nil cache")
	}
	// Must not panic.
	c.Set(context.Background(), "k", &detect.Result{})
	if err := c.Close(); err != nil {
		t.Errorf("expected nil error from Close, got %v", err)
	}
}
