package name_test

import (
	"testing"

	"github.com/gmofishsauce/hplc/internal/name"
	"github.com/stretchr/testify/assert"
)

func TestNew_EqualBytesAreEqual(t *testing.T) {
	a := name.New("foo")
	b := name.New("foo")
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash, b.Hash)
}

func TestNew_DifferentBytesAreNotEqual(t *testing.T) {
	a := name.New("foo")
	b := name.New("bar")
	assert.False(t, a.Equal(b))
}

func TestEmpty_IsEmpty(t *testing.T) {
	assert.True(t, name.Empty.IsEmpty())
	assert.False(t, name.New("x").IsEmpty())
}

func TestString_ReturnsBytes(t *testing.T) {
	assert.Equal(t, "hello", name.New("hello").String())
}
