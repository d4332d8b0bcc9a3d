package fieldmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPreservesInsertionOrder(t *testing.T) {
	m := New()
	m.Set("zebra", []byte("1"))
	m.Set("alpha", []byte("2"))
	m.Set("mike", []byte("3"))

	assert.Equal(t, []string{"zebra", "alpha", "mike"}, m.Names())
	assert.Equal(t, 3, m.Len())
}

func TestSetOverwriteKeepsPosition(t *testing.T) {
	m := New()
	m.Set("a", []byte("1"))
	m.Set("b", []byte("2"))
	m.Set("a", []byte("updated"))

	assert.Equal(t, []string{"a", "b"}, m.Names())
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("updated"), v)
}

func TestGetMissing(t *testing.T) {
	m := New()
	_, ok := m.Get("absent")
	assert.False(t, ok)
}

func TestBytes(t *testing.T) {
	m := New()
	m.Set("user", []byte("admin"))
	m.Set("pass", []byte("x"))

	assert.Equal(t, map[string][]byte{
		"user": []byte("admin"),
		"pass": []byte("x"),
	}, m.Bytes())
}
