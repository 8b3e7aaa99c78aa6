package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/notes"
	"github.com/sagarc03/notes/config"
	"github.com/sagarc03/notes/database"
	noteshttp "github.com/sagarc03/notes/http"
	"github.com/sagarc03/notes/keybackend"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the notesd HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port")
	serveCmd.Flags().String("error-status", "uniform", "error status policy (uniform, typed)")
	serveCmd.Flags().String("auth-mode", "sigv4", "caller identity mode (none, sigv4, header)")
	serveCmd.Flags().Bool("auto-migrate", false, "create the notes table before serving")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err = db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if autoMigrate, _ := cmd.Flags().GetBool("auto-migrate"); autoMigrate {
		if err = db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		slog.Info("database migration complete")
	}

	if err = db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}

	slog.Info("connected to database", "type", cfg.Database.Type, "table", cfg.Database.Tables.Notes)

	service, err := notes.NewNoteService(db.GetStore())
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	resolver, err := buildResolver(cfg.Auth, cfg.Server.MaxBodyBytes)
	if err != nil {
		return fmt.Errorf("configure auth: %w", err)
	}

	handlerConfig := noteshttp.HandlerConfig{
		ErrorStatus:  cfg.Server.ErrorStatus,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Resolver:     resolver,
		Logger:       slog.Default(),
	}

	handler := noteshttp.NewHandler(&handlerConfig, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"auth", cfg.Auth.Mode,
		"error_status", cfg.Server.ErrorStatus,
		"version", version,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// buildResolver returns the identity resolver for the configured auth mode.
// Mode none yields a nil resolver.
func buildResolver(cfg config.AuthConfig, maxBodyBytes int64) (noteshttp.IdentityResolver, error) {
	switch cfg.Mode {
	case config.AuthModeNone:
		slog.Warn("authentication disabled; requests without an owner will fail")
		return nil, nil
	case config.AuthModeHeader:
		return noteshttp.HeaderResolver{Header: cfg.Header}, nil
	case config.AuthModeSigV4:
		store, err := keybackend.NewCredentialStore(cfg.Keys)
		if err != nil {
			return nil, fmt.Errorf("load access keys: %w", err)
		}
		return notes.NewSignatureVerifier(notes.AuthConfig{
			Region:       cfg.Region,
			Service:      cfg.Service,
			ClockSkew:    cfg.ClockSkew,
			MaxBodyBytes: maxBodyBytes,
		}, store), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}
}
