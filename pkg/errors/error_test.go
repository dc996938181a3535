package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(ErrCodeSymbolNotFound, "symbol not loaded")
	assert.Equal(t, "[200] symbol not loaded", err.Error())

	wrapped := Wrap(ErrCodeDataLoadFailed, "load failed", err)
	assert.Contains(t, wrapped.Error(), "[204] load failed")
	assert.Contains(t, wrapped.Error(), "symbol not loaded")
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "typed error", err: New(ErrCodePriceUnavailable, "no quote"), want: ErrCodePriceUnavailable},
		{name: "formatted error", err: Newf(ErrCodeNoOpenTrade, "no trade for %s", "BTCUSDT"), want: ErrCodeNoOpenTrade},
		{name: "plain error", err: fmt.Errorf("plain"), want: ErrCodeUnknown},
		{name: "wrapped plain error", err: Wrap(ErrCodeSinkWriteFailed, "write", fmt.Errorf("io")), want: ErrCodeSinkWriteFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetCode(tc.err))
		})
	}
}

func TestHasCodeThroughWrapping(t *testing.T) {
	inner := New(ErrCodePriceUnavailable, "no quote")
	outer := fmt.Errorf("tick failed: %w", inner)

	assert.True(t, HasCode(outer, ErrCodePriceUnavailable))
	assert.False(t, HasCode(outer, ErrCodeNoOpenTrade))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("io error")
	err := Wrapf(ErrCodeDataLoadFailed, cause, "failed to read %s", "bars.csv")

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, Is(err, cause))
}
