package figma

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireDepthBuffersAndCaps(t *testing.T) {
	assert.Equal(t, 2, wireDepth(0))
	assert.Equal(t, 5, wireDepth(3))
	assert.Equal(t, maxWireDepth, wireDepth(50))
}

func TestAuthHeadersSwitchOnOAuth(t *testing.T) {
	pat := NewClient("pat-token")
	assert.Equal(t, map[string]string{"X-Figma-Token": "pat-token"}, pat.authHeaders())

	oauth := NewOAuthClient("bearer-token")
	assert.Equal(t, map[string]string{"Authorization": "Bearer bearer-token"}, oauth.authHeaders())
}

func TestGetFileSimplifiesUpstreamDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/abc123", r.URL.Path)
		assert.Equal(t, "pat-token", r.Header.Get("X-Figma-Token"))
		w.Write([]byte(`{"name":"My File","document":{"id":"0:0","name":"root","type":"DOCUMENT","children":[{"id":"1:1","name":"frame","type":"FRAME"}]}}`))
	}))
	defer srv.Close()

	client := NewClient("pat-token").WithBaseURL(srv.URL)
	design, err := client.GetFile(context.Background(), "abc123", nil)
	require.NoError(t, err)
	assert.Equal(t, "My File", design.Name)
	require.Len(t, design.Nodes, 1)
	assert.Equal(t, "frame", design.Nodes[0].Name)
}

func TestGetRawFileBuildsNodeEndpointURL(t *testing.T) {
	depth := 2
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient("tok").WithBaseURL(srv.URL)
	_, err := client.GetRawFile(context.Background(), "abc123", "1:1", &depth)
	require.NoError(t, err)
	assert.Equal(t, "/files/abc123/nodes", gotPath)
	assert.Contains(t, gotQuery, "ids=1%3A1")
	assert.Contains(t, gotQuery, "depth=4")
}
