package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Unauthenticated, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{InvalidArgument, http.StatusBadRequest},
		{Conflict, http.StatusBadRequest},
		{Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Status())
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	base := NotFoundf("Order not found")
	err := fmt.Errorf("loading order: %w", base)

	assert.Equal(t, NotFound, KindOf(err))
	assert.True(t, Is(err, NotFound))
	assert.True(t, errors.Is(err, NotFoundf("Order not found")))
	assert.False(t, errors.Is(err, NotFoundf("Product not found")))
	assert.Equal(t, "Order not found", MessageOf(err))
}

func TestKindOf_Untyped(t *testing.T) {
	err := errors.New("connection reset")

	assert.Equal(t, Internal, KindOf(err))
	assert.Equal(t, "Internal server error", MessageOf(err))
}

func TestWrap_HidesCauseFromMessage(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(Internal, "Failed to send OTP", cause)

	assert.Equal(t, "Failed to send OTP", MessageOf(err))
	assert.Contains(t, err.Error(), "dial tcp")
	assert.ErrorIs(t, err, cause)
}
