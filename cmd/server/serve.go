package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yukikurage/goal-boards-api/internal/database"
	"github.com/yukikurage/goal-boards-api/internal/handlers"
	"github.com/yukikurage/goal-boards-api/internal/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if !skipMigrate {
				if err := database.Migrate(a.db, a.log); err != nil {
					return err
				}
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run migrations on startup")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	gin.SetMode(a.cfg.Server.GinMode)

	store, err := redisStore.NewStore(
		10,    // Redis pool size
		"tcp", // network type
		a.cfg.Redis.Addr(),
		"", // username (empty for default user)
		a.cfg.Redis.Password,
		[]byte(a.cfg.Server.SessionSecret),
	)
	if err != nil {
		return fmt.Errorf("failed to create Redis session store: %w", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   a.cfg.Server.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})

	publisher, closePublisher := a.newPublisher()
	defer closePublisher()

	var notifier services.ChatNotifier
	if client := a.newTelegramClient(); client != nil {
		notifier = client
	}

	router := handlers.NewRouter(a.buildServices(publisher, notifier), store, a.db, a.log)
	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
