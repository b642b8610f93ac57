package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"figma-simplify-mcp/config"
	"figma-simplify-mcp/debugbroadcast"
	"figma-simplify-mcp/figma"
	"figma-simplify-mcp/mcpserver"
)

const serverVersion = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "figma-simplify-mcp",
		Short: "MCP server that fetches and simplifies Figma design files",
		RunE:  run,
	}
	flags := config.Register(root.Flags())
	root.SetContext(context.WithValue(context.Background(), flagsKey{}, flags))

	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flagsKey struct{}

func run(cmd *cobra.Command, args []string) error {
	flags := cmd.Context().Value(flagsKey{}).(*config.Flags)
	cfg, err := config.Resolve(flags)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Println("figma-simplify-mcp starting")

	var client *figma.Client
	if cfg.OAuth {
		client = figma.NewOAuthClient(cfg.Token)
	} else {
		client = figma.NewClient(cfg.Token)
	}

	tools := &mcpserver.Tools{Handler: client, Format: cfg.OutputFormat}

	var broadcaster *debugbroadcast.Broadcaster
	if cfg.DebugAddr != "" {
		broadcaster = debugbroadcast.New(cfg.DebugAddr)
		tools.Notify = func(toolName string, payload any) { broadcaster.Notify(payload) }
		go func() {
			if err := broadcaster.Start(); err != nil {
				log.Printf("debug broadcaster stopped: %v", err)
			}
		}()
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "figma-simplify-mcp",
		Version: serverVersion,
	}, nil)
	tools.Register(server)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutting down")
		if broadcaster != nil {
			_ = broadcaster.Stop()
		}
		cancel()
	}()

	if cfg.Port == 0 {
		color.New(color.FgGreen).Println("transport: stdio")
		return server.Run(ctx, &mcp.StdioTransport{})
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	color.New(color.FgGreen).Printf("transport: streamable-http on %s\n", addr)
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	httpServer := &http.Server{Addr: addr, Handler: handler}
	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
