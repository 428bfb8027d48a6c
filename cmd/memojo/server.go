package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/memojo/memojo/internal/api"
	"github.com/memojo/memojo/internal/config"
	"github.com/memojo/memojo/internal/content"
	"github.com/memojo/memojo/internal/feed"
	"github.com/memojo/memojo/internal/genai"
	"github.com/memojo/memojo/internal/handoff"
	"github.com/memojo/memojo/internal/intent"
	"github.com/memojo/memojo/internal/preferences"
	"github.com/memojo/memojo/internal/profile"
	"github.com/memojo/memojo/internal/storage"
	"github.com/memojo/memojo/internal/voice"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the memojo daemon (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running memojo daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show memojo status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "memojo.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func setupLogging(level string) {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// services is everything the API and MCP surfaces share.
type services struct {
	profile     *profile.Manager
	router      *intent.Router
	feed        *feed.Feed
	content     *content.Generator
	assistant   *voice.Assistant
	recorder    *voice.Recorder
	handoff     *handoff.Store
	preferences *preferences.Log
}

func buildServices(cfg config.Config, store *storage.Store, gen *genai.Client) services {
	profileMgr := profile.NewManager(store)
	router := intent.NewRouter(gen)
	contentGen := content.NewGenerator(gen)
	handoffStore := handoff.New(store)

	return services{
		profile:     profileMgr,
		router:      router,
		feed:        feed.New(feed.NewGenerator(gen, gen), feed.NewCache(cfg.FeedTTL())),
		content:     contentGen,
		assistant:   voice.NewAssistant(gen, router, contentGen, handoffStore, store),
		recorder:    &voice.Recorder{},
		handoff:     handoffStore,
		preferences: preferences.New(store),
	}
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "memojo version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log.Level)

	apiToken, err := config.GetAPIToken(config.NewKeychain())
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}
	slog.Info("API bearer token available")

	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("memojo is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("memojo is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen, err := genai.New(genai.Config{
		APIKey:          cfg.GenAI.APIKey,
		BaseURL:         cfg.GenAI.BaseURL,
		TextModel:       cfg.GenAI.TextModel,
		TranscribeModel: cfg.GenAI.TranscribeModel,
		ImageSize:       cfg.GenAI.ImageSize,
		Timeout:         cfg.GenAITimeout(),
	})
	if err != nil {
		return fmt.Errorf("configuring generation service: %w", err)
	}
	slog.Info("generation service configured", "base_url", cfg.GenAI.BaseURL, "text_model", cfg.GenAI.TextModel)

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	svc := buildServices(cfg, store, gen)

	appHandler := api.NewAppHandler(api.AppDeps{
		Store:       store,
		Profile:     svc.profile,
		Token:       apiToken,
		Router:      svc.router,
		Feed:        svc.feed,
		Content:     svc.content,
		Assistant:   svc.assistant,
		Recorder:    svc.recorder,
		Handoff:     svc.handoff,
		Preferences: svc.preferences,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           appHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Server.MCPEnabled {
		mcpSrv := api.NewMCPServer(api.MCPDeps{
			Store:       store,
			Profile:     svc.profile,
			Router:      svc.router,
			Feed:        svc.feed,
			Content:     svc.content,
			Handoff:     svc.handoff,
			Preferences: svc.preferences,
		})
		stdioSrv := server.NewStdioServer(mcpSrv)
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
		}()
		slog.Info("MCP server started (stdio transport)")
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "memojo listening on %s\n", addr)
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

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("memojo is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop memojo (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to memojo (PID %d)", pid)
	return nil
}

func showStatus(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		// Still report what we can without a config.
		printError("config error: %v", err)
		return nil
	}

	client := &apiClient{
		baseURL:    fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port),
		httpClient: &http.Client{Timeout: 2 * time.Second},
	}

	running := false
	resp, err := client.get(ctx, "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Generation API", "%s", cfg.GenAI.BaseURL)
	printStatus("Text model", "%s", cfg.GenAI.TextModel)
	printStatus("Transcribe model", "%s", cfg.GenAI.TranscribeModel)
	printStatus("MCP (stdio)", "%t", cfg.Server.MCPEnabled)

	if token, err := config.GetAPIToken(config.NewKeychain()); err == nil && running {
		client.token = token
		reportCounts(ctx, client)
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

// reportCounts prints journal and love totals from a running daemon.
func reportCounts(ctx context.Context, client *apiClient) {
	if resp, err := client.get(ctx, "/journal?limit=1"); err == nil {
		var page struct {
			Total int `json:"total"`
		}
		if decodeJSON(resp, &page) == nil {
			printStatus("Journal entries", "%d", page.Total)
		}
	}
	if resp, err := client.get(ctx, "/loves/stats"); err == nil {
		var st preferences.Stats
		if decodeJSON(resp, &st) == nil {
			printStatus("Loved items", "%d", st.TotalLoved)
		}
	}
}
