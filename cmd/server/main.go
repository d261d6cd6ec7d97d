package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codeclash/battle-backend/internal/auth"
	"github.com/codeclash/battle-backend/internal/config"
	"github.com/codeclash/battle-backend/internal/httpapi"
	"github.com/codeclash/battle-backend/internal/matchmaking"
	"github.com/codeclash/battle-backend/internal/room"
	"github.com/codeclash/battle-backend/internal/store"
	"github.com/codeclash/battle-backend/internal/ws"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()

	users, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("opening user store", zap.Error(err))
	}

	svc := auth.NewService(users, cfg.AccessSecret, cfg.RefreshSecret, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := ws.NewRegistry()
	gateway := &ws.Gateway{
		Log:      log,
		Verify:   svc,
		Registry: registry,
		Engine:   matchmaking.NewEngine(),
		Coord:    room.NewCoordinator(ctx, ws.RoomNotifier{Registry: registry}, log),
		Origins:  []string{originPattern(cfg.AllowedOrigin)},
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(svc, gateway.Handler(), cfg.AllowedOrigin, log),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

// originPattern reduces a CORS origin URL to the host pattern the websocket
// origin check expects.
func originPattern(origin string) string {
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		return u.Host
	}
	return origin
}
