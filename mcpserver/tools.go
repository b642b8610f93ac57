// Package mcpserver registers the three tools this server exposes and
// adapts engine output to the MCP transport.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"figma-simplify-mcp/config"
	"figma-simplify-mcp/depth"
	"figma-simplify-mcp/images"
	"figma-simplify-mcp/output"
	"figma-simplify-mcp/simplify"
)

// FigmaHandler abstracts the engine calls a tool invocation needs. Backed
// by *figma.Client in production; fakeable in tests.
type FigmaHandler interface {
	GetFile(ctx context.Context, fileKey string, depth *int) (*simplify.SimplifiedDesign, error)
	GetNode(ctx context.Context, fileKey, nodeID string, depth *int) (*simplify.SimplifiedDesign, error)
	GetRawFile(ctx context.Context, fileKey, nodeID string, depth *int) (map[string]any, error)
	GetImageFills(ctx context.Context, fileKey string) (map[string]string, error)
	GetRenderedImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale float64) (map[string]string, error)
	FetchImageBytes(ctx context.Context, imageURL string) ([]byte, error)
}

// Tools holds the dependencies shared by every tool handler.
type Tools struct {
	Handler FigmaHandler
	Format  config.OutputFormat
	Notify  func(toolName string, payload any) // nil when no debug broadcaster is attached
}

// Summary is the shape of one debug-broadcaster notification.
type Summary struct {
	Tool      string `json:"tool"`
	Nodes     int    `json:"nodes,omitempty"`
	Styles    int    `json:"styles,omitempty"`
	DurationMS int64  `json:"durationMs"`
}

// Register adds the three tools to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_figma_data",
		Description: "Fetch and simplify a Figma file or node into a compact, CSS-flavored design graph",
	}, t.handleGetFigmaData)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_figma_depth",
		Description: "Estimate the node count and serialized size contributed by each depth level of a Figma file, to choose a sane depth cutoff",
	}, t.handleAnalyzeDepth)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "download_figma_images",
		Description: "Download image fills and rendered node exports from a Figma file to a local directory",
	}, t.handleDownloadImages)
}

type getFigmaDataArgs struct {
	FileKey string `json:"fileKey" jsonschema:"the Figma file key"`
	NodeID  string `json:"nodeId,omitempty" jsonschema:"optional node ID to fetch a single subtree instead of the whole file"`
	Depth   int    `json:"depth,omitempty" jsonschema:"maximum traversal depth, unlimited if omitted"`
}

type analyzeDepthArgs struct {
	FileKey string `json:"fileKey" jsonschema:"the Figma file key"`
	NodeID  string `json:"nodeId,omitempty" jsonschema:"optional node ID to scope the analysis to a single subtree"`
}

type downloadNodeArg struct {
	NodeID   string `json:"nodeId,omitempty" jsonschema:"node ID to render (for png/svg exports)"`
	ImageRef string `json:"imageRef,omitempty" jsonschema:"image fill reference to resolve instead of rendering a node"`
	FileName string `json:"fileName" jsonschema:"local file name to write this asset to, extension selects png vs svg rendering"`
}

type downloadImagesArgs struct {
	FileKey    string            `json:"fileKey" jsonschema:"the Figma file key"`
	Nodes      []downloadNodeArg `json:"nodes" jsonschema:"the assets to download"`
	LocalPath  string            `json:"localPath" jsonschema:"local directory to write downloaded assets to"`
	PNGScale   float64           `json:"pngScale,omitempty" jsonschema:"raster export scale, default 1"`
	OutlineText bool             `json:"svgOutlineText,omitempty" jsonschema:"outline text on SVG export (accepted, not sent to Figma)"`
	IncludeID   bool             `json:"svgIncludeId,omitempty" jsonschema:"include node ids in SVG export (accepted, not sent to Figma)"`
	Simplify    bool             `json:"svgSimplify,omitempty" jsonschema:"simplify stroke geometry on SVG export (accepted, not sent to Figma)"`
}

func (t *Tools) handleGetFigmaData(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	args getFigmaDataArgs,
) (*mcp.CallToolResult, any, error) {
	var depthPtr *int
	if args.Depth > 0 {
		depthPtr = &args.Depth
	}

	var design *simplify.SimplifiedDesign
	var err error
	if args.NodeID != "" {
		design, err = t.Handler.GetNode(ctx, args.FileKey, args.NodeID, depthPtr)
	} else {
		design, err = t.Handler.GetFile(ctx, args.FileKey, depthPtr)
	}
	if err != nil {
		return renderError(err), nil, nil
	}

	payload := map[string]any{
		"metadata": map[string]any{
			"name":         design.Name,
			"lastModified": design.LastModified,
			"thumbnailUrl": design.ThumbnailURL,
			"components":   design.Components,
			"componentSets": design.ComponentSets,
		},
		"nodes":      design.Nodes,
		"globalVars": design.GlobalVars,
	}

	styles := 0
	if design.GlobalVars != nil {
		styles = len(design.GlobalVars.Styles)
	}
	t.notify("get_figma_data", Summary{Nodes: len(design.Nodes), Styles: styles})

	return renderDesign(payload, t.Format)
}

func (t *Tools) handleAnalyzeDepth(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	args analyzeDepthArgs,
) (*mcp.CallToolResult, any, error) {
	raw, err := t.Handler.GetRawFile(ctx, args.FileKey, args.NodeID, nil)
	if err != nil {
		return renderError(err), nil, nil
	}

	report, err := depth.Analyze(raw)
	if err != nil {
		return renderError(err), nil, nil
	}

	t.notify("analyze_figma_depth", Summary{Nodes: report.TotalNodes})

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: report.String()}},
	}, nil, nil
}

func (t *Tools) handleDownloadImages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	args downloadImagesArgs,
) (*mcp.CallToolResult, any, error) {
	reqs := make([]images.NodeRequest, len(args.Nodes))
	for i, n := range args.Nodes {
		reqs[i] = images.NodeRequest{NodeID: n.NodeID, ImageRef: n.ImageRef, FileName: n.FileName}
	}

	result, err := images.Download(ctx, t.Handler, args.FileKey, reqs, images.Options{
		LocalPath: args.LocalPath,
		PNGScale:  args.PNGScale,
		SVGOptions: images.SVGOptions{
			OutlineText: args.OutlineText,
			IncludeID:   args.IncludeID,
			Simplify:    args.Simplify,
		},
	})
	if err != nil {
		return renderError(err), nil, nil
	}

	t.notify("download_figma_images", Summary{Nodes: len(result.Written)})

	return renderDesign(map[string]any{
		"written": result.Written,
		"errors":  errorStrings(result.Errors),
	}, t.Format)
}

func (t *Tools) notify(tool string, s Summary) {
	if t.Notify == nil {
		return
	}
	s.Tool = tool
	t.Notify(tool, s)
}

func renderError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

func renderDesign(payload any, format config.OutputFormat) (*mcp.CallToolResult, any, error) {
	text, err := output.Render(payload, format)
	if err != nil {
		return renderError(fmt.Errorf("rendering result: %w", err)), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
