package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"treasure_hunt_backend/internal/catalog"
	"treasure_hunt_backend/internal/config"
	"treasure_hunt_backend/internal/controller"
	"treasure_hunt_backend/internal/repository"
	"treasure_hunt_backend/internal/service"
	"treasure_hunt_backend/internal/util"
	"treasure_hunt_backend/pkg/configwatcher"
	"treasure_hunt_backend/pkg/database"
	"treasure_hunt_backend/pkg/logger"
	"treasure_hunt_backend/pkg/monitoring"
	"treasure_hunt_backend/pkg/supabase"
	"treasure_hunt_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const configDir = "configs"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	Redis           *redis.Client
	services        *services
	ctx             context.Context
	cancel          context.CancelFunc
	closers         []func()
	configCallbacks []func(*config.Config)
}

type services struct {
	store    repository.ParticipantStore
	storage  *service.StorageService
	progress *service.ProgressService
	tracker  *service.TrackerService
	board    *service.Board
}

type controllers struct {
	tracker *controller.TrackerController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// initStore opens the participant store selected by store.driver. The hosted
// backend needs no connection; the self-hosted drivers migrate on start.
func (a *App) initStore(cfg *config.Config, client *supabase.Client) (repository.ParticipantStore, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		if err := database.RunMigrations(cfg.Postgres.URL); err != nil {
			return nil, err
		}
		pool, err := database.NewPool(a.ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		a.onClose(pool.Close)
		return repository.NewPostgresStore(pool), nil

	case config.StoreDriverMySQL:
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
		if err != nil {
			return nil, err
		}
		store := repository.NewMySQLStore(db)
		if err := store.Migrate(); err != nil {
			return nil, err
		}
		a.onClose(func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		})
		return store, nil

	default:
		return repository.NewPostgRESTStore(client), nil
	}
}

func (a *App) initServices(cfg *config.Config) (*services, error) {
	hunt, err := catalog.Load(cfg.Tracker.CatalogPath)
	if err != nil {
		return nil, err
	}
	if shared := hunt.SharedTaskIDs(); len(shared) > 0 {
		// rows recorded without a quest id count toward every quest using the task id
		logger.Log.Warn("Task ids are shared between quests", zap.Ints("task_ids", shared))
	}

	client := supabase.NewClient(cfg.Backend.URL, cfg.Backend.APIKey, cfg.Backend.Timeout)

	store, err := a.initStore(cfg, client)
	if err != nil {
		return nil, err
	}

	storage, err := service.NewStorageService(cfg, client)
	if err != nil {
		return nil, err
	}

	var guard service.SubmissionGuard
	if a.Redis != nil {
		guard = service.NewRedisSubmissionGuard(a.Redis)
	}

	var prober util.VideoProber
	if cfg.Media.ProbeVideo {
		prober = util.NewFFmpegProber()
	}

	var notifier service.Notifier
	if cfg.Notify.TelegramToken != "" {
		tg, err := service.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			return nil, err
		}
		notifier = tg
	}

	progress := service.NewProgressService(hunt)
	tracker := service.NewTrackerService(cfg.Tracker, store, storage, progress, guard, prober, notifier)

	return &services{
		store:    store,
		storage:  storage,
		progress: progress,
		tracker:  tracker,
		board:    service.NewBoard(tracker),
	}, nil
}

func (a *App) initControllers(s *services, cfg *config.Config) *controllers {
	return &controllers{
		tracker: controller.NewTrackerController(s.board, s.tracker, cfg.Tracker.MaxUploadMB<<20),
		health:  controller.NewHealthController(s.store),
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully",
		zap.String("store", cfg.Store.Driver),
		zap.String("storage", cfg.Storage.Type))

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
		app.onClose(func() { rdb.Close() })
	}

	services, err := app.initServices(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, cfg)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("treasure-hunt", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.onClose(func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		})
	}

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
	})

	// the board starts with whatever the store has; a failure here only fills
	// the error slot and the next refresh tries again
	loadCtx, loadCancel := context.WithTimeout(ctx, cfg.Backend.Timeout+5*time.Second)
	defer loadCancel()
	if err := services.board.Load(loadCtx); err != nil {
		logger.Log.Warn("Initial participant load failed", zap.Error(err))
	}

	return app
}

func ginMode(mode string) string {
	switch mode {
	case gin.ReleaseMode, gin.TestMode:
		return mode
	default:
		return gin.DebugMode
	}
}

func (a *App) watchConfig() {
	err := configwatcher.WatchConfig(a.ctx, configDir, func(cfg *config.Config) {
		for _, cb := range a.configCallbacks {
			cb(cfg)
		}
	})
	if err != nil {
		logger.Log.Warn("Config watcher stopped", zap.Error(err))
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go a.watchConfig()

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// wait for an interrupt, then give in-flight requests 5 seconds
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}

	logger.Log.Info("Server exiting")
}
