package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(KindValidation, "source must not carry a port")
	assert.Equal(t, "source must not carry a port", err.Error())

	wrapped := Wrap(err, KindPrecondition, "startup check")
	assert.Equal(t, "startup check: source must not carry a port", wrapped.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, KindInternal, "nothing"))
	assert.Nil(t, Wrapf(nil, KindInternal, "nothing %d", 1))
}

func TestGetKind(t *testing.T) {
	err := Errorf(KindValidation, "bad address %q", "10.0.0")
	assert.Equal(t, KindValidation, GetKind(err))

	outer := fmt.Errorf("driver: %w", Wrap(err, KindPrecondition, "sanity"))
	assert.Equal(t, KindPrecondition, GetKind(outer))
	assert.Equal(t, KindUnknown, GetKind(errors.New("plain")))
}

func TestIsKind(t *testing.T) {
	inner := New(KindUnavailable, "no perf map")
	outer := Wrap(inner, KindInternal, "open collector")

	assert.True(t, IsKind(outer, KindUnavailable))
	assert.True(t, IsKind(outer, KindInternal))
	assert.False(t, IsKind(outer, KindTrial))
	assert.False(t, IsKind(errors.New("plain"), KindInternal))
	assert.ErrorIs(t, outer, inner)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "trial", KindTrial.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
