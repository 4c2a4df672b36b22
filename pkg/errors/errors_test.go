package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBagErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := New(ErrorStorage, "write", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "storage")
	assert.Contains(t, err.Error(), "write")
	assert.False(t, err.Timestamp.IsZero())
}

func TestCategoryPredicates(t *testing.T) {
	storageErr := New(ErrorStorage, "write", fmt.Errorf("io"))
	assert.True(t, IsStorage(storageErr))
	assert.False(t, IsConfiguration(storageErr))
	assert.False(t, IsNotOpen(storageErr))
	assert.False(t, IsCompression(storageErr))

	// Predicates see through additional wrapping layers.
	wrapped := fmt.Errorf("outer : %w", New(ErrorNotOpen, "write", fmt.Errorf("closed")))
	assert.True(t, IsNotOpen(wrapped))

	assert.False(t, IsStorage(fmt.Errorf("plain")))
	assert.False(t, IsStorage(nil))
}

func TestIsRetryAble(t *testing.T) {
	assert.True(t, New(ErrorStorage, "write", fmt.Errorf("io")).IsRetryAble())
	assert.False(t, New(ErrorConfiguration, "open", fmt.Errorf("bad")).IsRetryAble())
	assert.False(t, New(ErrorNotOpen, "write", fmt.Errorf("closed")).IsRetryAble())
	assert.False(t, New(ErrorCompression, "close", fmt.Errorf("task")).IsRetryAble())
}

func TestValidationError(t *testing.T) {
	cause := fmt.Errorf("must not be empty")
	err := NewValidationError("uri", "", cause)

	require.True(t, IsValidationError(err))
	assert.ErrorIs(t, err, cause)

	validation := AsValidationError(fmt.Errorf("open : %w", err))
	require.NotNil(t, validation)
	assert.Equal(t, "uri", validation.Field)

	assert.Nil(t, AsValidationError(fmt.Errorf("plain")))
	assert.False(t, IsValidationError(nil))
}
