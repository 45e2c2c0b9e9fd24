package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/hypocal-explain/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"unknown feature", errors.ErrCodeUnknownFeature, "feature \"sodium\" is not part of the catalog"},
		{"invalid param", errors.CodeInvalidParam, "sample count must be positive"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestNew_StackIsPopulated(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeInternal, "test")
	require.NotNil(t, ae)
	assert.Contains(t, ae.Stack, "errors_test.go")
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeUnknownVariant, "variant %q is not supported", "gbm")
	assert.Equal(t, `variant "gbm" is not supported`, ae.Message)
	assert.Equal(t, errors.ErrCodeUnknownVariant, ae.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("redis: connection refused")
	wrapped := errors.Wrap(root, errors.CodeCacheError, "failed to read stability report")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.CodeCacheError, wrapped.Code)
	assert.True(t, stderrors.Is(wrapped, root))
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
}

func TestWrap_UnknownCodePreservesOriginal(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeUnknownVariant, "bad variant")
	outer := errors.Wrap(inner, errors.CodeUnknown, "decode request")

	assert.Equal(t, errors.ErrCodeUnknownVariant, outer.Code)
}

func TestWrap_ExplicitCodeOverrides(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeUnknownVariant, "bad variant")
	outer := errors.Wrap(inner, errors.CodeInternal, "unexpected")

	assert.Equal(t, errors.CodeInternal, outer.Code)
	assert.True(t, errors.IsCode(outer, errors.ErrCodeUnknownVariant))
}

// ─────────────────────────────────────────────────────────────────────────────
// Error() / builders
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeTargetRiskInvalid, "target risk out of range")
	assert.Equal(t, "[HYP_003] target risk out of range", ae.Error())

	withDetail := ae.WithDetail("target=1.5")
	assert.Equal(t, "[HYP_003] target risk out of range: target=1.5", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

func TestWithCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("kafka: leader not available")
	ae := errors.New(errors.ErrCodeMessagingError, "publish failed").WithCause(cause)
	assert.ErrorIs(t, ae, cause)
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusNotFound, errors.New(errors.ErrCodeNotFound, "x").HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, errors.New(errors.ErrCodeBadRequest, "x").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, errors.New(errors.ErrCodeInternal, "x").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, errors.New(errors.ErrCodePresetNotFound, "x").HTTPStatus())
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"generic not found", errors.New(errors.CodeNotFound, "x"), true},
		{"unknown feature", errors.New(errors.ErrCodeUnknownFeature, "x"), true},
		{"preset", errors.New(errors.ErrCodePresetNotFound, "x"), true},
		{"wrapped", fmt.Errorf("ctx: %w", errors.New(errors.ErrCodeUnknownFeature, "x")), true},
		{"invalid param", errors.New(errors.CodeInvalidParam, "x"), false},
		{"plain", stderrors.New("x"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, errors.IsNotFound(tc.err))
		})
	}
}

func TestIsValidation(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsValidation(errors.New(errors.CodeInvalidParam, "x")))
	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeTargetRiskInvalid, "x")))
	assert.False(t, errors.IsValidation(errors.New(errors.CodeInternal, "x")))
	assert.False(t, errors.IsValidation(stderrors.New("x")))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeUnknownVariant,
		errors.GetCode(fmt.Errorf("wrap: %w", errors.New(errors.ErrCodeUnknownVariant, "x"))))
}

func TestStack_DoesNotLeakIntoMessage(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeInternal, "boom")
	assert.False(t, strings.Contains(ae.Error(), ".go:"))
}

func TestIsAs(t *testing.T) {
	base := errors.New(errors.ErrCodeUnknownVariant, "bad variant")
	wrapped := fmt.Errorf("resolve: %w", base)

	assert.True(t, errors.Is(wrapped, base))
	var ae *errors.AppError
	require.True(t, errors.As(wrapped, &ae))
	assert.Equal(t, errors.ErrCodeUnknownVariant, ae.Code)
	assert.False(t, errors.As(stderrors.New("plain"), &ae))
}

//Personal.AI order the ending
