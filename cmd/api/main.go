package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emilythestrangee/forum/backend/internal/cache"
	"github.com/emilythestrangee/forum/backend/internal/comments"
	"github.com/emilythestrangee/forum/backend/internal/communities"
	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/database"
	"github.com/emilythestrangee/forum/backend/internal/feed"
	"github.com/emilythestrangee/forum/backend/internal/handlers"
	"github.com/emilythestrangee/forum/backend/internal/logger"
	"github.com/emilythestrangee/forum/backend/internal/posts"
	"github.com/emilythestrangee/forum/backend/internal/server"
	"github.com/emilythestrangee/forum/backend/internal/votes"
)

func main() {
	cfg := config.Load()

	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Error("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	c, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Warn("Cache disabled: %v", err)
		c = cache.Noop{}
	}
	defer c.Close()

	gdb := db.GetDB()
	h := handlers.NewHandler(handlers.Services{
		Posts:       posts.NewService(posts.NewGormRepository(gdb)),
		Comments:    comments.NewService(comments.NewGormRepository(gdb)),
		Communities: communities.NewService(communities.NewGormRepository(gdb)),
		Feed:        feed.NewService(feed.NewGormRepository(gdb), feed.WithCache(c, cfg.Cache.TTL)),
		Votes:       votes.NewService(votes.NewGormRepository(gdb)),
		DB:          db,
	})

	srv := server.New(cfg, h).HTTPServer()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}
	logger.Info("👋 Server stopped")
}
