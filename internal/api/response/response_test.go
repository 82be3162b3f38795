package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/shopcore/internal/infra/remote"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "not buyer", err: service.ErrNotBuyer, expected: http.StatusForbidden},
		{name: "blocked wrapped", err: fmt.Errorf("%w: [Latte]", service.ErrCheckoutBlocked), expected: http.StatusConflict},
		{name: "empty cart", err: service.ErrEmptyCart, expected: http.StatusBadRequest},
		{name: "missing notification", err: service.ErrNotificationNotFound, expected: http.StatusNotFound},
		{name: "remote conflict", err: &remote.RemoteError{Operation: "add", Status: 409, Message: "Insufficient stock"}, expected: http.StatusConflict},
		{name: "remote 500", err: &remote.RemoteError{Operation: "add", Status: 500}, expected: http.StatusBadGateway},
		{name: "unreachable", err: &remote.ConnectivityError{Operation: "cart", Err: errors.New("dial tcp")}, expected: http.StatusServiceUnavailable},
		{name: "unknown", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, StatusOf(tc.err))
		})
	}
}

func TestWriteErrorUsesRemoteMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, &remote.RemoteError{Operation: "add", Status: 409, Message: "Insufficient stock"})

	require.Equal(t, http.StatusConflict, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "Insufficient stock", body.Message)
}

func TestWriteErrorCancelled(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, context.Canceled)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "The request was cancelled.", body.Message)
}

func TestSuccessJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	SuccessJSON(rec, map[string]int{"unread": 2})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"success":true,"data":{"unread":2}}`, rec.Body.String())
}
