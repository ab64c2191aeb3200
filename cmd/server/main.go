package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/oddlyprompt/ExitorDie/internal/api"
	"github.com/oddlyprompt/ExitorDie/internal/config"
	"github.com/oddlyprompt/ExitorDie/internal/content"
	"github.com/oddlyprompt/ExitorDie/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.LUTC)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	db, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		logger.Fatalf("migrate store: %v", err)
	}

	if cfg.ContentPackFile != "" {
		pack, err := content.LoadFile(cfg.ContentPackFile)
		if err != nil {
			db.Close()
			logger.Fatalf("load content pack: %v", err)
		}
		pack.Active = true
		pack.CreatedAt = time.Now().UTC()
		if err := db.ReplaceContentPack(ctx, pack); err != nil {
			db.Close()
			logger.Fatalf("install content pack: %v", err)
		}
		logger.Printf("content pack installed version=%s file=%s", pack.Version, cfg.ContentPackFile)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(db, cfg).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s db=%s", cfg.Addr, cfg.DBPath)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-serveErr:
		db.Close()
		logger.Fatalf("ListenAndServe: %v", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	err = multierr.Combine(srv.Shutdown(shutdownCtx), db.Close())
	if err != nil {
		logger.Fatalf("shutdown: %v", err)
	}
	logger.Printf("shutdown complete")
}

// openStore opens the SQLite database, retrying briefly so a restart does not
// lose the race against a previous instance still releasing its WAL lock.
func openStore(ctx context.Context, path string) (*store.SQLiteDB, error) {
	var db *store.SQLiteDB

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(100*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		db, err = store.NewSQLiteDB(path)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	return db, err
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
