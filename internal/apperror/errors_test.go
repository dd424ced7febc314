package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesSentinelThroughWrapping(t *testing.T) {
	err := fmt.Errorf("dispatch: %w", Precondition(ReasonPaymentIncomplete, "payment not completed"))

	assert.ErrorIs(t, err, ErrPrecondition)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.True(t, HasReason(err, ReasonPaymentIncomplete))
	assert.False(t, HasReason(err, ReasonAlreadySent))
	assert.ErrorIs(t, err, &Error{Kind: KindPrecondition, Reason: ReasonPaymentIncomplete})
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad tier"), http.StatusBadRequest},
		{Forbidden("not yours"), http.StatusForbidden},
		{NotFound("alert", "a1"), http.StatusNotFound},
		{Precondition(ReasonPaymentIncomplete, ""), http.StatusBadRequest},
		{Precondition(ReasonAlreadySent, ""), http.StatusBadRequest},
		{Precondition(ReasonNoHospitalsFound, ""), http.StatusNotFound},
		{Precondition(ReasonDispatchInProgress, ""), http.StatusConflict},
		{Unavailable("payment processor", errors.New("dial tcp")), http.StatusBadGateway},
		{VerificationFailed("bad signature"), http.StatusBadRequest},
		{Internal("boom", nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.HTTPStatus(), tc.err.Error())
	}
}

func TestCodePrefersReason(t *testing.T) {
	assert.Equal(t, "ALREADY_SENT", Precondition(ReasonAlreadySent, "x").Code())
	assert.Equal(t, "NOT_FOUND", NotFound("alert", "1").Code())
}

func TestUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("payment processor", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "payment processor unavailable: connection refused", err.Error())
}
