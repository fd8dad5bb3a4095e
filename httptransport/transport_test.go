package httptransport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crashkit/delivery"
)

func TestNewValidation(t *testing.T) {
	_, err := New("")
	require.ErrorIs(t, err, ErrEndpointRequired)

	_, err = New("not a url")
	require.Error(t, err)
}

func TestSendSuccess(t *testing.T) {
	var gotPath, gotBody, gotAuth, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	transport, err := New(server.URL, WithHeader("Authorization", "Bearer key"))
	require.NoError(t, err)

	err = transport.Send(context.Background(), delivery.Payload{
		Resource: delivery.ResourceErrors,
		Body:     []byte(`{"message":"boom"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "/errors", gotPath)
	assert.Equal(t, `{"message":"boom"}`, gotBody)
	assert.Equal(t, "Bearer key", gotAuth)
	assert.Equal(t, "application/json", gotType)
}

func TestSendRetryableStatuses(t *testing.T) {
	for _, code := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusTooManyRequests, http.StatusRequestTimeout} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
		}))

		transport, err := New(server.URL)
		require.NoError(t, err)

		err = transport.Send(context.Background(), delivery.Payload{Resource: delivery.ResourceErrors, Body: []byte("x")})
		require.Error(t, err, "status %d", code)
		assert.NotErrorIs(t, err, delivery.ErrPermanentDelivery, "status %d must stay retryable", code)

		server.Close()
	}
}

func TestSendPermanentStatuses(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestEntityTooLarge} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
		}))

		transport, err := New(server.URL)
		require.NoError(t, err)

		err = transport.Send(context.Background(), delivery.Payload{Resource: delivery.ResourceErrors, Body: []byte("x")})
		assert.ErrorIs(t, err, delivery.ErrPermanentDelivery, "status %d must be permanent", code)

		server.Close()
	}
}

func TestSendNetworkFailureRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	transport, err := New(server.URL)
	require.NoError(t, err)

	err = transport.Send(context.Background(), delivery.Payload{Resource: delivery.ResourceErrors, Body: []byte("x")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, delivery.ErrPermanentDelivery)
}

func TestSendTrailingSlashEndpoint(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer server.Close()

	transport, err := New(server.URL + "/")
	require.NoError(t, err)

	require.NoError(t, transport.Send(context.Background(), delivery.Payload{Resource: delivery.ResourceSessions, Body: []byte("x")}))
	assert.Equal(t, "/sessions", gotPath)
}
