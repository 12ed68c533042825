package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gameshelf-sync-api/internal/cache"
	"gameshelf-sync-api/internal/client"
	"gameshelf-sync-api/internal/config"
	"gameshelf-sync-api/internal/handler"
	"gameshelf-sync-api/internal/middleware"
	"gameshelf-sync-api/internal/repository"
	"gameshelf-sync-api/internal/router"
	"gameshelf-sync-api/internal/service"
)

const usage = `Usage: gameshelf-sync <command>

Commands:
  serve           Run the admin HTTP API (default)
  export          Export the vendor cache to the interchange file
  integrate       Reconcile the interchange file into the target store
  sync            Export then integrate, the full vendor pipeline
  refresh-images  Refresh image columns of stored games from the vendor cache
  store-sync      Pull the store API library into the target store
`

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg := config.MustLoad()
	log.Printf("Starting %s (%s)", cfg.App.Name, cfg.App.Environment)

	gameRepo := mustOpenGameRepository(cfg)
	defer gameRepo.Close()

	switch command {
	case "serve":
		runServer(cfg, gameRepo)
	case "export":
		vendorCache := mustOpenVendorCache(cfg)
		defer vendorCache.Close()
		export := service.NewExportService(vendorCache, cfg.Sync)
		if _, err := export.Export(context.Background()); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
	case "integrate":
		reconcile := service.NewReconcileService(gameRepo)
		if _, err := reconcile.ReconcileFile(context.Background(), cfg.Sync.InterchangePath); err != nil {
			log.Fatalf("Integrate failed: %v", err)
		}
	case "sync":
		vendorCache := mustOpenVendorCache(cfg)
		defer vendorCache.Close()
		export := service.NewExportService(vendorCache, cfg.Sync)
		if _, err := export.Export(context.Background()); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		reconcile := service.NewReconcileService(gameRepo)
		if _, err := reconcile.ReconcileFile(context.Background(), cfg.Sync.InterchangePath); err != nil {
			log.Fatalf("Integrate failed: %v", err)
		}
	case "refresh-images":
		vendorCache := mustOpenVendorCache(cfg)
		defer vendorCache.Close()
		images := service.NewImageService(vendorCache, gameRepo, cfg.Sync)
		if _, err := images.RefreshImages(context.Background()); err != nil {
			log.Fatalf("Image refresh failed: %v", err)
		}
	case "store-sync":
		storeSync, err := buildStoreSync(cfg, gameRepo)
		if err != nil {
			log.Fatalf("Store client setup failed: %v", err)
		}
		if _, err := storeSync.SyncStore(context.Background()); err != nil {
			log.Fatalf("Store sync failed: %v", err)
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

// mustOpenGameRepository opens the target store selected by TARGET_DB_TYPE.
func mustOpenGameRepository(cfg *config.Config) repository.GameRepository {
	switch cfg.TargetDB.Type {
	case "mysql":
		repo, err := repository.NewMySQLGameRepository(cfg.TargetDB.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to initialize MySQL: %v", err)
		}
		log.Println("MySQL game repository initialized")
		return repo
	case "postgres", "postgresql":
		repo, err := repository.NewPostgresGameRepository(cfg.TargetDB.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		log.Println("PostgreSQL game repository initialized")
		return repo
	default: // sqlite
		repo, err := repository.NewSQLiteGameRepository(cfg.TargetDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		log.Println("SQLite game repository initialized")
		return repo
	}
}

// mustOpenVendorCache opens the vendor client's local database read-only.
func mustOpenVendorCache(cfg *config.Config) repository.VendorCacheRepository {
	repo, err := repository.NewSQLiteVendorCache(cfg.VendorCache.ResolvePath())
	if err != nil {
		log.Fatalf("Failed to open vendor cache: %v", err)
	}
	return repo
}

// buildCache selects the store-API response cache backend.
func buildCache(cfg *config.Config) cache.Cache {
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, using memory cache: %v", err)
		} else {
			return redisCache
		}
	}
	return cache.NewMemoryCache()
}

// buildStoreSync wires the store API client and its sync service.
func buildStoreSync(cfg *config.Config, gameRepo repository.GameRepository) (*service.StoreSyncService, error) {
	storeClient, err := client.NewStoreClient(cfg.StoreAPI, buildCache(cfg), cfg.Cache.TTL)
	if err != nil {
		return nil, err
	}
	reconcile := service.NewReconcileService(gameRepo)
	return service.NewStoreSyncService(storeClient, reconcile, cfg.StoreAPI), nil
}

// runServer starts the admin HTTP API with graceful shutdown.
func runServer(cfg *config.Config, gameRepo repository.GameRepository) {
	vendorCache := mustOpenVendorCache(cfg)
	defer vendorCache.Close()

	export := service.NewExportService(vendorCache, cfg.Sync)
	reconcile := service.NewReconcileService(gameRepo)
	images := service.NewImageService(vendorCache, gameRepo, cfg.Sync)

	// Store sync is optional; without an API key the route reports 503.
	storeSync, err := buildStoreSync(cfg, gameRepo)
	if err != nil {
		if !errors.Is(err, client.ErrMissingAPIKey) {
			log.Fatalf("Store client setup failed: %v", err)
		}
		log.Println("Store API key not set, store sync disabled")
		storeSync = nil
	}

	healthHandler := handler.New(cfg.App.Version, gameRepo)
	syncHandler := handler.NewSyncHandler(export, reconcile, images, storeSync, gameRepo, cfg.Sync.InterchangePath)
	gamesHandler := handler.NewGamesHandler(gameRepo)

	r := router.New(router.Config{
		Handler:            healthHandler,
		SyncHandler:        syncHandler,
		GamesHandler:       gamesHandler,
		AdminKeyMiddleware: middleware.NewAdminKeyMiddleware(cfg.App.AdminKey),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
