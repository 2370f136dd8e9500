package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"inventory/providers"
	firebaseprovider "inventory/providers/firebaseProvider"
	"inventory/providers/loggerProvider"
	"inventory/providers/middlewareprovider"
	storeprovider "inventory/providers/storeProvider"
	"inventory/serviceprovider/auth"
	assetservice "inventory/services/asset"
	authservice "inventory/services/auth"
	sheetsservice "inventory/services/sheets"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Server struct {
	Config     providers.ConfigProvider
	Logger     providers.ZapLoggerProvider
	Store      providers.KVStore
	Middleware providers.AuthMiddlewareService

	Assets assetservice.AssetService
	Auth   authservice.AuthService
	Sheets sheetsservice.SyncService

	AssetHandler  *assetservice.AssetHandler
	AuthHandler   *authservice.AuthHandler
	SheetsHandler *sheetsservice.SheetsHandler

	httpServer *http.Server
}

// SrvInit wires every service on top of the configured store. cfg must
// already be loaded.
func SrvInit(ctx context.Context, cfg providers.ConfigProvider) (*Server, error) {
	logger := loggerProvider.NewLogProvider(cfg.IsProduction())
	logger.InitLogger()

	store, err := storeprovider.NewStoreProvider(ctx, cfg, logger.GetLogger())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open store")
	}

	// services
	assets, err := assetservice.NewAssetService(ctx, assetservice.NewAssetRepository(store), logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if cfg.ShouldSeedSampleData() {
		seeded, err := assets.SeedSampleData(ctx)
		if err != nil {
			_ = store.Close()
			return nil, errors.Wrap(err, "failed to seed sample data")
		}
		if seeded {
			logger.GetLogger().Info("sample inventory inserted")
		}
	}

	secret := cfg.GetSecretKey()
	if secret == "" {
		if cfg.IsProduction() {
			_ = store.Close()
			return nil, errors.New("SECRET_KEY is required in production")
		}
		secret, err = randomSecret()
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		logger.GetLogger().Warn("SECRET_KEY not set, sessions will not survive a restart")
	}

	var authOpts []authservice.Option
	if path := cfg.GetFirebaseCredentials(); path != "" {
		credentials, err := os.ReadFile(path)
		if err != nil {
			_ = store.Close()
			return nil, errors.Wrap(err, "failed to read firebase credentials")
		}
		fb, err := firebaseprovider.NewFirebaseProvider(ctx, credentials)
		if err != nil {
			_ = store.Close()
			return nil, errors.Wrap(err, "failed to init firebase")
		}
		authOpts = append(authOpts, authservice.WithFirebase(fb))
	}
	authSvc := authservice.NewAuthService(authservice.NewAuthRepository(store), auth.NewJWTService(secret),
		logger, cfg.GetAllowedDomain(), cfg.GetSessionTTL(), authOpts...)

	middleware := middlewareprovider.NewAuthMiddlewareService(authSvc, logger)

	sheetsClient := sheetsservice.NewRESTClient(cfg.GetSheetsEndpoint(), cfg.GetSheetsRetryMax(), logger.GetLogger())
	sheets := sheetsservice.NewSyncService(sheetsservice.NewConfigRepository(store), sheetsClient, logger, cfg.GetSheetName())

	srv := &Server{
		Config:        cfg,
		Logger:        logger,
		Store:         store,
		Middleware:    middleware,
		Assets:        assets,
		Auth:          authSvc,
		Sheets:        sheets,
		AssetHandler:  assetservice.NewAssetHandler(assets, middleware, logger),
		AuthHandler:   authservice.NewAuthHandler(authSvc, middleware, logger),
		SheetsHandler: sheetsservice.NewSheetsHandler(sheets, assets, middleware, logger),
	}
	srv.httpServer = &http.Server{
		Addr:         ":" + cfg.GetServerPort(),
		Handler:      srv.InjectRoutes(),
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}
	return srv, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "failed to generate session secret")
	}
	return hex.EncodeToString(b), nil
}

// Start blocks until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.Logger.GetLogger().Info("server running", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server error")
	}
	return nil
}

// Stop shuts the listener down and closes the store. It is safe to call on a
// server that was never started.
func (s *Server) Stop() error {
	s.Logger.GetLogger().Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result *multierror.Error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "error shutting down server"))
	}
	if err := s.Store.Close(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "error closing store"))
	}
	s.Logger.SyncLogger()
	return result.ErrorOrNil()
}
