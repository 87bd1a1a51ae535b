package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/hackmix/internal/api"
	"github.com/kalambet/hackmix/internal/config"
	"github.com/kalambet/hackmix/internal/engine"
	"github.com/kalambet/hackmix/internal/profile"
	"github.com/kalambet/hackmix/internal/search"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")
		return runServer(host)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server and collaborator status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

func init() {
	serveCmd.Flags().String("host", "127.0.0.1", "interface to listen on")
}

func runServer(host string) error {
	banner()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewHandler(a.apiDeps()),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "hackmix listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	stdio := server.NewStdioServer(api.NewMCPServer(a.apiDeps(), version))
	slog.Info("MCP server started (stdio transport)")
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp stdio server: %w", err)
	}
	return nil
}

func showStatus() error {
	cfg, err := loadConfig()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port))
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	for _, line := range statusLines(cfg) {
		printStatus(line[0], "%s", line[1])
	}
	return nil
}

// statusLines reports which collaborators cfg enables.
func statusLines(cfg config.Config) [][2]string {
	enabled := func(ok bool) string {
		if ok {
			return "configured"
		}
		return "not configured"
	}

	model := cfg.LLM.Model
	if model == "" {
		model = engine.DefaultModel(cfg.LLM.Provider)
	}
	llm := "disabled"
	switch {
	case cfg.LLM.Provider == engine.ProviderOllama:
		llm = fmt.Sprintf("%s (%s)", cfg.LLM.Provider, model)
	case cfg.LLM.Provider != engine.ProviderNone && cfg.LLM.APIKey != "":
		llm = fmt.Sprintf("%s (%s)", cfg.LLM.Provider, model)
	case cfg.LLM.Provider != engine.ProviderNone:
		llm = fmt.Sprintf("%s (no api key)", cfg.LLM.Provider)
	}

	return [][2]string{
		{"Web search", enabled(search.NewClient(cfg.Search.APIKey, cfg.Search.BaseURL).Configured())},
		{"LinkedIn API", enabled(profile.NewLinkedInClient(cfg.LinkedIn.AccessToken, cfg.LinkedIn.BaseURL) != nil)},
		{"Text generation", llm},
		{"Search limit", fmt.Sprintf("%d per %s", cfg.Search.MaxRequests, cfg.Search.Window)},
	}
}
