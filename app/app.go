package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"trader-storefront/app/controller"
	"trader-storefront/app/router"
	"trader-storefront/config"
	"trader-storefront/db"
	"trader-storefront/repository"
	"trader-storefront/service"
	"trader-storefront/state"
)

// App holds the wired application
type App struct {
	Config    *config.Config
	Store     *state.Store
	Loader    *service.CatalogLoader
	Submitter *service.OrderSubmitter
	Handler   http.Handler
	logger    *zap.Logger
}

// Initialize wires the storefront from cfg
func Initialize(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store := state.NewStore()

	endpoint := service.NewEndpointClient(cfg.Endpoint.URL,
		service.WithTimeout(cfg.Endpoint.Timeout),
		service.WithLogger(logger.Named("endpoint")),
	)

	source, err := NewCatalogSource(ctx, cfg, endpoint)
	if err != nil {
		return nil, err
	}

	receipts, err := newReceiptRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	loader := service.NewCatalogLoader(store, source, cfg.Catalog.Fallback, logger.Named("catalog"))
	submitter := service.NewOrderSubmitter(store, endpoint, receipts, cfg.Endpoint.SourceTag, logger.Named("orders"))
	exporter := service.NewReceiptExporter(cfg.Server.BaseURL, cfg.Receipt.ChromePath, cfg.Receipt.PNGWidth, logger.Named("export"))

	controllers := &router.Controllers{
		Storefront: controller.NewStorefrontController(store, loader, submitter, logger.Named("http")),
		Receipt:    controller.NewReceiptController(receipts, exporter, logger.Named("http")),
	}

	mux := http.NewServeMux()
	router.SetupRoutes(mux, controllers)

	return &App{
		Config:    cfg,
		Store:     store,
		Loader:    loader,
		Submitter: submitter,
		Handler:   mux,
		logger:    logger,
	}, nil
}

// NewCatalogSource picks the catalog source named in cfg
func NewCatalogSource(ctx context.Context, cfg *config.Config, endpoint *service.EndpointClient) (service.CatalogSource, error) {
	switch cfg.Catalog.Source {
	case config.SourceSheets:
		source, err := service.NewSheetsCatalogSource(ctx, cfg.Catalog.Credentials, cfg.Catalog.SheetID, cfg.Catalog.SheetRange)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sheets catalog source: %w", err)
		}
		return source, nil
	default:
		return endpoint, nil
	}
}

func newReceiptRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.ReceiptRepositoryInterface, error) {
	if cfg.Database.URL == "" {
		logger.Info("no DATABASE_URL set, keeping receipts in memory")
		return repository.NewMemoryReceiptRepository(), nil
	}

	if err := db.InitDB(ctx, cfg.Database.URL); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	repo := repository.NewReceiptRepository(db.DB)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	logger.Info("✓ database connection established, receipts stored in PostgreSQL")
	return repo, nil
}

// Serve loads the catalog once and serves HTTP until ctx is cancelled
func (a *App) Serve(ctx context.Context) error {
	a.Loader.Load(ctx)

	addr := "0.0.0.0:" + a.Config.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Close releases resources held by the app
func (a *App) Close() error {
	return db.CloseDB()
}
