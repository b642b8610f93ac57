// Package images implements download_figma_images: resolving a set of node
// requests to URLs and writing the downloaded bytes to a local directory.
package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const maxParallelDownloads = 5

// figmaClient is the subset of *figma.Client this package depends on. Kept
// as a narrow interface so tests can supply a fake without touching the
// network.
type figmaClient interface {
	GetImageFills(ctx context.Context, fileKey string) (map[string]string, error)
	GetRenderedImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale float64) (map[string]string, error)
	FetchImageBytes(ctx context.Context, imageURL string) ([]byte, error)
}

// NodeRequest is one entry of the download_figma_images tool's nodes[]
// argument: a node to render, or an image-fill reference to resolve, named
// by the local filename it should be written to.
type NodeRequest struct {
	NodeID   string
	ImageRef string // non-empty means "resolve this IMAGE fill", not a render
	FileName string
}

// Options configures one download_figma_images call.
type Options struct {
	LocalPath  string
	PNGScale   float64
	SVGOptions SVGOptions
}

// SVGOptions mirrors the subset of Figma's svg render flags the tool
// surfaces. Download accepts them but does not pass them to the render
// request, so SVG exports always use Figma's own defaults.
type SVGOptions struct {
	OutlineText bool
	IncludeID   bool
	Simplify    bool
}

// Result is the outcome of one Download call.
type Result struct {
	Written []string
	Errors  []error
}

// Download partitions requests into image-fill lookups and render requests,
// resolves URLs, and writes the bytes under opts.LocalPath.
func Download(ctx context.Context, client figmaClient, fileKey string, requests []NodeRequest, opts Options) (*Result, error) {
	if err := os.MkdirAll(opts.LocalPath, 0o755); err != nil {
		return nil, fmt.Errorf("images: create output dir %q: %w", opts.LocalPath, err)
	}

	urls := make(map[string]string, len(requests)) // FileName -> source URL
	var fillRefs, renderPNG, renderSVG []NodeRequest

	for _, r := range requests {
		switch {
		case r.ImageRef != "":
			fillRefs = append(fillRefs, r)
		case strings.HasSuffix(strings.ToLower(r.FileName), ".svg"):
			renderSVG = append(renderSVG, r)
		default:
			renderPNG = append(renderPNG, r)
		}
	}

	if len(fillRefs) > 0 {
		fills, err := client.GetImageFills(ctx, fileKey)
		if err != nil {
			return nil, fmt.Errorf("images: resolve fills: %w", err)
		}
		for _, r := range fillRefs {
			if u, ok := fills[r.ImageRef]; ok {
				urls[r.FileName] = u
			}
		}
	}

	scale := opts.PNGScale
	if scale <= 0 {
		scale = 1
	}
	if err := resolveRenders(ctx, client, fileKey, renderPNG, "png", scale, urls); err != nil {
		return nil, err
	}
	if err := resolveRenders(ctx, client, fileKey, renderSVG, "svg", 1, urls); err != nil {
		return nil, err
	}

	return downloadAll(ctx, client, opts.LocalPath, requests, urls), nil
}

func resolveRenders(ctx context.Context, client figmaClient, fileKey string, reqs []NodeRequest, format string, scale float64, urls map[string]string) error {
	if len(reqs) == 0 {
		return nil
	}
	ids := make([]string, len(reqs))
	byID := make(map[string]NodeRequest, len(reqs))
	for i, r := range reqs {
		ids[i] = r.NodeID
		byID[r.NodeID] = r
	}
	rendered, err := client.GetRenderedImages(ctx, fileKey, ids, format, scale)
	if err != nil {
		return fmt.Errorf("images: render %s: %w", format, err)
	}
	for nodeID, u := range rendered {
		if r, ok := byID[nodeID]; ok {
			urls[r.FileName] = u
		}
	}
	return nil
}

func downloadAll(ctx context.Context, client figmaClient, localPath string, requests []NodeRequest, urls map[string]string) *Result {
	result := &Result{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxParallelDownloads)

	for _, r := range requests {
		u, ok := urls[r.FileName]
		if !ok {
			mu.Lock()
			result.Errors = append(result.Errors, fmt.Errorf("no URL resolved for %s", r.FileName))
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(req NodeRequest, url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			body, err := client.FetchImageBytes(ctx, url)
			if err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Errorf("download %s: %w", req.FileName, err))
				mu.Unlock()
				return
			}

			destPath := filepath.Join(localPath, req.FileName)
			if err := os.WriteFile(destPath, body, 0o644); err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Errorf("write %s: %w", destPath, err))
				mu.Unlock()
				return
			}

			mu.Lock()
			result.Written = append(result.Written, destPath)
			mu.Unlock()
		}(r, u)
	}

	wg.Wait()
	return result
}
