package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionErrorKinds(t *testing.T) {
	tests := []struct {
		name      string
		err       *ConversionError
		exception string
		isType    bool
		isOver    bool
	}{
		{"type", NewTypeError(CodeNotInteger, "'float' object cannot be interpreted as an integer"), "TypeError", true, false},
		{"overflow", NewOverflowError(CodeTooLarge, TooLarge, "int too large"), "OverflowError", false, true},
		{"value", NewValueError(CodeInvalidLiteral, "invalid literal"), "ValueError", false, false},
		{"system", NewSystemError(CodeSentinelCorrupted, "sentinel value corrupted"), "SystemError", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exception, tt.err.ExceptionName())
			assert.Equal(t, tt.isType, IsTypeError(tt.err))
			assert.Equal(t, tt.isOver, IsOverflow(tt.err))
		})
	}
}

func TestOverflowDirectionSurvivesWrapping(t *testing.T) {
	err := NewOverflowError(CodeNegative, TooSmall, "can't convert negative value to unsigned int")
	wrapped := fmt.Errorf("converting argument 1: %w", err)

	assert.True(t, IsOverflow(wrapped))
	assert.Equal(t, TooSmall, DirectionOf(wrapped))
	assert.Equal(t, InRange, DirectionOf(stderrors.New("plain")))
}

func TestIsMatchesCodeAndKind(t *testing.T) {
	err := NewOverflowError(CodeTooLarge, TooLarge, "too large")

	assert.True(t, stderrors.Is(err, &ConversionError{Kind: KindOverflow, Code: CodeTooLarge}))
	assert.False(t, stderrors.Is(err, &ConversionError{Kind: KindOverflow, Code: CodeTooSmall}))
	assert.False(t, stderrors.Is(err, ErrType))
}

func TestTranslate(t *testing.T) {
	err := NewOverflowError(CodeTooLarge, TooLarge, "Python int too large to convert to C long",
		WithContextOption("width", "long"))

	report := Translate(err)
	assert.Equal(t, "OverflowError", report.Exception)
	assert.Equal(t, 1, report.Overflow)
	assert.Equal(t, "long", report.Context["width"])
	assert.Equal(t, "OverflowError: Python int too large to convert to C long", report.String())

	plain := Translate(stderrors.New("boom"))
	assert.Equal(t, "SystemError", plain.Exception)
	assert.Equal(t, Report{}, Translate(nil))
}

func TestWrapAndChain(t *testing.T) {
	cause := stderrors.New("bad digit")
	err := WrapError(cause, KindValue, CodeInvalidLiteral, "invalid literal")

	require.Len(t, GetErrorChain(err), 2)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "[VALUE][VALUE_INVALID_LITERAL] invalid literal: bad digit")

	withCause := NewTypeError(CodeBadIndexResult, "bad index", WithCauseOption(cause))
	assert.Same(t, cause, withCause.Unwrap())
}
