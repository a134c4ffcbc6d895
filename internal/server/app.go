// Package server assembles the bookmark backend from its configuration and
// runs the HTTP API and the gRPC health endpoint until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophmarks/internal/dbx"
	"github.com/dmitrijs2005/gophmarks/internal/logging"
	"github.com/dmitrijs2005/gophmarks/internal/server/auth"
	"github.com/dmitrijs2005/gophmarks/internal/server/config"
	"github.com/dmitrijs2005/gophmarks/internal/server/objectstore"
	"github.com/dmitrijs2005/gophmarks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophmarks/internal/server/rest"
	"github.com/dmitrijs2005/gophmarks/internal/server/services"

	gs "github.com/dmitrijs2005/gophmarks/internal/server/grpc"
)

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	httpServer  *rest.Server
	grpcServer  *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var store services.ObjectStore
	if c.ExportEnabled() {
		s3, err := objectstore.NewS3Store(ctx, objectstore.Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("object storage init error: %w", err)
		}
		store = s3
	} else {
		logger.Info(ctx, "S3 bucket not configured, bookmark export disabled")
	}

	rm := repomanager.NewPostgresRepositoryManager()
	runner := dbx.NewSQLRunner(db, dbx.WithTxOptions(&sql.TxOptions{Isolation: sql.LevelReadCommitted}))
	issuer := auth.NewTokenIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	hasher := auth.NewPasswordHasher(auth.DefaultArgon2Params)

	httpServer := rest.NewServer(c.EndpointAddrHTTP, logger, rest.Deps{
		Auth:               services.NewAuthService(runner, rm, hasher, issuer),
		Users:              services.NewUserService(runner, rm),
		Bookmarks:          services.NewBookmarkService(runner, rm, store),
		Tokens:             issuer,
		DB:                 db,
		CORSAllowedOrigins: c.CORSAllowedOrigins,
	})

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		httpServer:  httpServer,
		grpcServer:  gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Received signal", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run migrates the schema, then serves HTTP and gRPC until ctx is cancelled,
// a shutdown signal arrives, or either server fails.
func (app *App) Run(ctx context.Context) error {
	defer app.db.Close()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		app.logger.Error(ctx, "migrations failed", "error", err)
		return fmt.Errorf("migrations: %w", err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	run := func(name string, fn func(context.Context) error) {
		defer wg.Done()
		if err := fn(ctx); err != nil {
			app.logger.Error(ctx, name+" server failed", "error", err)
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			cancelFunc()
		}
	}

	wg.Add(2)
	go run("http", app.httpServer.Run)
	go run("grpc", app.grpcServer.Run)
	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return firstErr
}
