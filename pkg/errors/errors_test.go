package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	e1 := New("cause1")
	e2 := New("cause2").Wrap(e1)
	e := New("dummy").Wrap(e2)
	e3 := e.Unwrap()
	assert.True(t, Is(e, e1))
	assert.True(t, Is(e, e2))
	assert.True(t, e3 == e2)
}

func TestErrorSentinelUntouched(t *testing.T) {
	sentinel := New("sentinel")
	wrapped := sentinel.Wrap(fmt.Errorf("io failure"))
	assert.Nil(t, sentinel.Unwrap())
	assert.True(t, Is(wrapped, sentinel))
	assert.EqualError(t, wrapped, "sentinel")
}

func TestErrorAs(t *testing.T) {
	inner := New("inner")
	outer := fmt.Errorf("outer: %w", inner.Wrap(fmt.Errorf("root")))
	var target *Error
	assert.True(t, As(outer, &target))
	assert.EqualError(t, target, "inner")
}
