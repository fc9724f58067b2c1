package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsCustomError(t *testing.T) {
	base := NewError(fiber.StatusNotFound, "gone")

	ce, ok := AsCustomError(base)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusNotFound, ce.Code)

	wrapped := fmt.Errorf("loading comment: %w", base)
	ce, ok = AsCustomError(wrapped)
	require.True(t, ok, "unwrapping must see through fmt.Errorf chains")
	assert.Equal(t, "gone", ce.Message)

	_, ok = AsCustomError(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, fiber.StatusForbidden, ErrorCode(NewError(fiber.StatusForbidden, "nope")))
	assert.Equal(t, fiber.StatusInternalServerError, ErrorCode(errors.New("plain")))
}

func TestWrapErrorCarriesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(cause, fiber.StatusInternalServerError, "db down")
	assert.Equal(t, "connection refused", err.Details)
	assert.Contains(t, err.Error(), "db down")
}
