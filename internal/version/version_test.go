package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String(1)
	if !strings.HasPrefix(s, "costream "+VERSION) || !strings.HasSuffix(s, "wire v1") {
		t.Fatalf("unexpected version string: %q", s)
	}
}
