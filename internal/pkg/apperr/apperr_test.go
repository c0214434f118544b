package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	er "github.com/RoyceAzure/rj/util/rj_error"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	base := errors.New("connection refused")

	testCases := []struct {
		name string
		err  error
		kind Kind
	}{
		{name: "plain error", err: base, kind: KindInternal},
		{name: "direct", err: New(KindNotFound, "product not found"), kind: KindNotFound},
		{name: "wrapped by fmt", err: fmt.Errorf("decrement: %w", Wrap(KindUpstreamUnavailable, base, "catalog unavailable")), kind: KindUpstreamUnavailable},
		{name: "outermost wins", err: Wrap(KindPartialBatchFailure, New(KindInsufficientStock, "stock"), "batch failed"), kind: KindPartialBatchFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.kind, KindOf(tc.err))
			require.True(t, Is(tc.err, tc.kind))
		})
	}

	require.False(t, Is(nil, KindInternal))
}

func TestWrapKeepsCause(t *testing.T) {
	base := errors.New("timeout")
	err := Wrap(KindUpstreamUnavailable, base, "catalog unavailable")

	require.ErrorIs(t, err, base)
	require.Equal(t, "catalog unavailable: timeout", err.Error())
	require.Equal(t, "catalog unavailable", Message(err))
	require.Equal(t, "timeout", Message(base))
}

func TestHTTPStatus(t *testing.T) {
	require.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	require.Equal(t, http.StatusBadRequest, HTTPStatus(KindValidation))
	require.Equal(t, http.StatusConflict, HTTPStatus(KindInsufficientStock))
	require.Equal(t, http.StatusConflict, HTTPStatus(KindCheckoutInProgress))
	require.Equal(t, http.StatusBadGateway, HTTPStatus(KindPartialBatchFailure))
	require.Equal(t, http.StatusTooManyRequests, HTTPStatus(KindTooManyRequests))
	require.Equal(t, http.StatusInternalServerError, HTTPStatus(Kind("whatever")))
}

func TestAnaErrorInterop(t *testing.T) {
	ana := New(KindNotFound, "product not found").AnaError()
	require.Equal(t, er.NotFoundCode, ana.Code)
	require.Equal(t, "data not found, product not found", ana.Error())
	require.ErrorIs(t, ana, er.NotFoundError)

	// shared library errors keep their class when they reach the http layer
	wrapped := fmt.Errorf("load: %w", er.New(er.TooManyRequestsCode, "slow down"))
	require.Equal(t, KindTooManyRequests, KindOf(wrapped))
	require.Equal(t, "slow down", Message(wrapped))
	require.Equal(t, KindUpstreamUnavailable, KindFromCode(er.UnavailableCode))
	require.Equal(t, KindInternal, KindFromCode(er.ErrCode(999)))
}
