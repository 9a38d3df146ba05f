package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	old := out
	out = &buf
	t.Cleanup(func() { out = old })
	fn()
	return buf.String()
}

func TestStatus(t *testing.T) {
	got := capture(t, func() { Status("Flushing", "demo v%s", "0.1.0") })
	assert.Contains(t, got, "Flushing")
	assert.Contains(t, got, "demo v0.1.0")
}

func TestPrefixes(t *testing.T) {
	assert.Contains(t, capture(t, func() { Warn("w %d", 1) }), "w 1")
	assert.Contains(t, capture(t, func() { Note("n") }), "n")
	assert.Contains(t, capture(t, func() { Error("e") }), "e")
}
