package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svgslice/internal/server"
	"github.com/matzehuels/svgslice/pkg/cache"
	"github.com/matzehuels/svgslice/pkg/pipeline"
	"github.com/matzehuels/svgslice/pkg/store"
)

// shutdownTimeout bounds graceful shutdown after the context is cancelled.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command: run the preview HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		pf          profileFlags
		addr        string
		redisAddr   string
		redisDB     int
		mongoURI    string
		mongoDB     string
		cachePrefix string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the slicing preview server",
		Long: `Serve starts an HTTP server that slices posted documents and keeps a
run history.

By default results are cached on disk and runs are kept in memory.
Point --redis at a Redis instance to share the result cache, and
--mongo at a MongoDB instance to persist run history.

Examples:
  svgslice serve
  svgslice serve --addr :9000 -p warehouse.toml
  svgslice serve --redis localhost:6379 --mongo mongodb://localhost:27017`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(pf)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			ca, err := serveCache(ctx, redisAddr, redisDB)
			if err != nil {
				return err
			}
			defer ca.Close()

			st, err := serveStore(ctx, mongoURI, mongoDB)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			runner := pipeline.NewRunner(ca, serveKeyer(cachePrefix), c.Logger)
			srv := &http.Server{
				Addr:    addr,
				Handler: server.New(runner, st, p, c.Logger).Router(),
			}

			errCh := make(chan error, 1)
			go func() {
				c.Logger.Info("serving", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			c.Logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	registerProfileFlags(cmd, &pf)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for the shared result cache")
	cmd.Flags().StringVar(&cachePrefix, "cache-prefix", "", "prefix for cache keys when instances share a backend")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB URI for persistent run history")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", "svgslice", "MongoDB database name")

	return cmd
}

// serveKeyer builds the runner's cache keyer. A non-empty prefix scopes
// keys so several server instances can share one Redis database.
func serveKeyer(prefix string) cache.Keyer {
	if prefix == "" {
		return nil
	}
	return cache.NewScopedKeyer(nil, prefix)
}

// serveCache picks the server's result cache backend: Redis when
// configured, the local file cache otherwise.
func serveCache(ctx context.Context, redisAddr string, redisDB int) (cache.Cache, error) {
	if redisAddr != "" {
		return cache.NewRedisCache(ctx, redisAddr, "", redisDB)
	}
	return newCache(false)
}

// serveStore picks the run history backend: MongoDB when configured, an
// in-memory store otherwise.
func serveStore(ctx context.Context, mongoURI, mongoDB string) (store.Store, error) {
	if mongoURI != "" {
		return store.NewMongoStore(ctx, mongoURI, mongoDB)
	}
	return store.NewMemoryStore(), nil
}
