package app

import (
	"context"
	"fmt"
	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/controller"
	"lingua_edu_backend/internal/repository"
	"lingua_edu_backend/internal/service"
	"lingua_edu_backend/pkg/configwatcher"
	"lingua_edu_backend/pkg/database"
	"lingua_edu_backend/pkg/logger"
	"lingua_edu_backend/pkg/monitoring"
	"lingua_edu_backend/pkg/security"
	"lingua_edu_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Policies        *service.PolicyStore
	tracerProvider  *sdktrace.TracerProvider
	stopWatcher     context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	pointAward *repository.PointAwardRepository
	content    *repository.ContentRepository
}

type services struct {
	point    *service.PointService
	progress *service.ProgressService
}

type controllers struct {
	gamification *controller.GamificationController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		pointAward: repository.NewPointAwardRepository(db),
		content:    repository.NewContentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, rdb *redis.Client) *services {
	// 未启用 Redis 时必须传入 nil 接口，而不是值为 nil 的 *RedisAwardGuard
	var guard service.AwardGuard
	if rdb != nil {
		guard = service.NewRedisAwardGuard(rdb)
	}

	return &services{
		point:    service.NewPointService(repos.pointAward, repos.content, a.Policies, guard),
		progress: service.NewProgressService(repos.user, repos.pointAward, repos.content, a.Policies),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		gamification: controller.NewGamificationController(s.point, s.progress),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) error {
	limiter, err := security.RateLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}

	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())
	router.Use(limiter)

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
	return nil
}

// reloadPolicy 热更新积分策略；未启用 Redis 时拒绝切换到 cooldown
func (a *App) reloadPolicy(cfg *config.Config) {
	if cfg.Gamification.DuplicatePolicy == config.DuplicateCooldown && a.Redis == nil {
		logger.Log.Error("cooldown duplicate policy requires redis, keeping current policy")
		return
	}
	if err := a.Policies.Reload(cfg.Gamification); err != nil {
		logger.Log.Error("Failed to reload point policy", zap.Error(err))
		return
	}
	logger.Log.Info("Point policy reloaded",
		zap.String("duplicate_policy", cfg.Gamification.DuplicatePolicy),
		zap.Int("level_step", cfg.Gamification.LevelStep),
	)
}

// build 组装路由与依赖；db 与 rdb 由调用方建立，rdb 可为 nil
func build(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	if cfg.Gamification.DuplicatePolicy == config.DuplicateCooldown && rdb == nil {
		return nil, fmt.Errorf("duplicate_policy %q requires redis.enabled", config.DuplicateCooldown)
	}

	policy, err := service.NewPointPolicy(cfg.Gamification)
	if err != nil {
		return nil, fmt.Errorf("load point policy: %w", err)
	}

	app := &App{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Policies: service.NewPolicyStore(policy),
	}
	app.RegisterConfigCallback(app.reloadPolicy)

	repos := app.initRepositories(db)
	services := app.initServices(repos, rdb)
	controllers := app.initControllers(services, db, rdb)

	router := gin.Default()
	app.Router = router

	if err := app.setupMiddlewares(router, cfg); err != nil {
		return nil, fmt.Errorf("setup middlewares: %w", err)
	}
	app.registerRoutes(router, controllers, repos, cfg)

	return app, nil
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode == "debug" {
		if err := database.Migrate(db, cfg.Database.MigrateCatalog); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	}

	// 监控初始化
	monitoring.Init()

	app, err := build(cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to build application", zap.Error(err))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("lingua-gamification", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	app.stopWatcher = cancel
	go func() {
		if err := configwatcher.WatchConfig(watchCtx, cfg.Path, app.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.stopWatcher != nil {
		a.stopWatcher()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
