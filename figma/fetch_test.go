package figma

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchJSONDecodesSuccessfulResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("X-Figma-Token"))
		w.Write([]byte(`{"name":"hello"}`))
	}))
	defer srv.Close()

	f := NewRetryingFetcher()
	got, err := f.FetchJSON(context.Background(), srv.URL, map[string]string{"X-Figma-Token": "tok"})
	require.NoError(t, err)
	assert.Equal(t, "hello", got["name"])
}

func TestFetchJSONSurfacesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("nope"))
	}))
	defer srv.Close()

	f := NewRetryingFetcher()
	_, err := f.FetchJSON(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var figErr *Error
	require.ErrorAs(t, err, &figErr)
	assert.Equal(t, KindUpstreamHTTP, figErr.Kind)
	assert.Equal(t, http.StatusForbidden, figErr.Status)
}

func TestFetchJSONMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	f := NewRetryingFetcher()
	_, err := f.FetchJSON(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var figErr *Error
	require.ErrorAs(t, err, &figErr)
	assert.Equal(t, KindMalformed, figErr.Kind)
}

func TestContainsFailureMarker(t *testing.T) {
	assert.True(t, containsFailureMarker("curl: (6) Could not resolve host"))
	assert.True(t, containsFailureMarker("Failed to connect"))
	assert.False(t, containsFailureMarker(""))
	assert.False(t, containsFailureMarker("  100  1234    0  1234    0     0   1234      0 --:--:-- --:--:-- --:--:--  1234"))
}

func TestErrorUnwrap(t *testing.T) {
	cause := assert.AnError
	err := transportError(cause)
	assert.ErrorIs(t, err, cause)
}

func TestFetchJSONWrapsTotalConnectionFailureAsTransportFailure(t *testing.T) {
	f := NewRetryingFetcher()
	_, err := f.FetchJSON(context.Background(), "http://127.0.0.1:1/no-such-port", nil)
	require.Error(t, err)

	var figErr *Error
	require.ErrorAs(t, err, &figErr)
	assert.Equal(t, KindTransportFailure, figErr.Kind)
}
