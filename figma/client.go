package figma

import (
	"context"
	"fmt"
	"net/url"

	"figma-simplify-mcp/simplify"
)

const defaultBaseURL = "https://api.figma.com/v1"

// maxWireDepth is the ceiling applied to the depth query parameter sent to
// Figma, independent of the caller's requested depth.
const maxWireDepth = 10

// wireDepthBuffer is how many extra layers are requested beyond the
// caller-visible depth so wrapper elision still has a grandchild to look at.
const wireDepthBuffer = 2

// Client talks to the two Figma REST endpoints the engine needs and hands
// the raw response to the simplifier. Exactly one auth mode is active,
// resolved once at construction.
type Client struct {
	baseURL string
	token   string
	oauth   bool
	fetcher *RetryingFetcher
}

// NewClient builds a Client authenticated with a personal access token.
func NewClient(token string) *Client {
	return &Client{baseURL: defaultBaseURL, token: token, fetcher: NewRetryingFetcher()}
}

// NewOAuthClient builds a Client authenticated with an OAuth bearer token.
func NewOAuthClient(token string) *Client {
	return &Client{baseURL: defaultBaseURL, token: token, oauth: true, fetcher: NewRetryingFetcher()}
}

// WithBaseURL overrides the API base URL (tests point this at a local
// server instead of https://api.figma.com/v1).
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

func (c *Client) authHeaders() map[string]string {
	if c.oauth {
		return map[string]string{"Authorization": "Bearer " + c.token}
	}
	return map[string]string{"X-Figma-Token": c.token}
}

// wireDepth computes the depth query parameter actually sent to Figma: a
// buffer over the caller's requested depth, capped at 10. The caller-visible
// truncation at exactly the requested depth is the simplifier's job.
func wireDepth(depth int) int {
	d := depth + wireDepthBuffer
	if d > maxWireDepth {
		return maxWireDepth
	}
	return d
}

// GetRawFile fetches the raw Figma document tree, either the whole file or
// a single node, with no simplification applied. Used directly by the
// depth analyzer.
func (c *Client) GetRawFile(ctx context.Context, fileKey, nodeID string, depth *int) (map[string]any, error) {
	u := c.baseURL + "/files/" + url.PathEscape(fileKey)
	q := url.Values{}
	if nodeID != "" {
		u += "/nodes"
		q.Set("ids", nodeID)
	}
	if depth != nil {
		q.Set("depth", fmt.Sprintf("%d", wireDepth(*depth)))
	}
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}

	return c.fetcher.FetchJSON(ctx, u, c.authHeaders())
}

// GetFile fetches and simplifies an entire file.
func (c *Client) GetFile(ctx context.Context, fileKey string, depth *int) (*simplify.SimplifiedDesign, error) {
	raw, err := c.GetRawFile(ctx, fileKey, "", depth)
	if err != nil {
		return nil, err
	}
	design, err := simplify.ParseResponse(raw, depth)
	if err != nil {
		return nil, malformedError(err.Error())
	}
	return design, nil
}

// GetNode fetches and simplifies a single node subtree.
func (c *Client) GetNode(ctx context.Context, fileKey, nodeID string, depth *int) (*simplify.SimplifiedDesign, error) {
	raw, err := c.GetRawFile(ctx, fileKey, nodeID, depth)
	if err != nil {
		return nil, err
	}
	design, err := simplify.ParseResponse(raw, depth)
	if err != nil {
		return nil, malformedError(err.Error())
	}
	return design, nil
}

// GetImageFills resolves a file's embedded IMAGE fill references to
// downloadable URLs, used by the images package.
func (c *Client) GetImageFills(ctx context.Context, fileKey string) (map[string]string, error) {
	u := c.baseURL + "/files/" + url.PathEscape(fileKey) + "/images"
	raw, err := c.fetcher.FetchJSON(ctx, u, c.authHeaders())
	if err != nil {
		return nil, err
	}
	meta, _ := raw["meta"].(map[string]any)
	images, _ := meta["images"].(map[string]any)
	out := make(map[string]string, len(images))
	for ref, v := range images {
		if s, ok := v.(string); ok {
			out[ref] = s
		}
	}
	return out, nil
}

// GetRenderedImages renders a set of nodes to image URLs via the Figma
// render API.
func (c *Client) GetRenderedImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale float64) (map[string]string, error) {
	q := url.Values{}
	q.Set("format", format)
	if scale > 0 {
		q.Set("scale", fmt.Sprintf("%g", scale))
	}
	ids := ""
	for i, id := range nodeIDs {
		if i > 0 {
			ids += ","
		}
		ids += id
	}
	q.Set("ids", ids)

	u := c.baseURL + "/images/" + url.PathEscape(fileKey) + "?" + q.Encode()
	raw, err := c.fetcher.FetchJSON(ctx, u, c.authHeaders())
	if err != nil {
		return nil, err
	}
	images, _ := raw["images"].(map[string]any)
	out := make(map[string]string, len(images))
	for id, v := range images {
		if s, ok := v.(string); ok {
			out[id] = s
		}
	}
	return out, nil
}

// FetchImageBytes downloads a single rendered or fill image URL.
func (c *Client) FetchImageBytes(ctx context.Context, imageURL string) ([]byte, error) {
	return c.fetcher.FetchBytes(ctx, imageURL, nil)
}
