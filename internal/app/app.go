package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/controller"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/pkg/database"
	"exam_proctor_backend/pkg/logger"
	"exam_proctor_backend/pkg/monitoring"
	"exam_proctor_backend/pkg/security"
	"exam_proctor_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

// sweepInterval is how often the background sweeper looks for sessions
// that ran past their time limit.
const sweepInterval = time.Minute

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
	stopSweeper     chan struct{}
	tracerProvider  *sdktrace.TracerProvider
}

type repositories struct {
	user       *repository.UserRepository
	test       *repository.TestRepository
	question   *repository.QuestionRepository
	session    *repository.SessionRepository
	violation  *repository.ViolationRepository
	permission *repository.PermissionRepository
	proctoring *repository.ProctoringRepository
	face       *repository.FaceVerificationRepository
}

type services struct {
	auth             *service.AuthService
	storage          service.StorageProvider
	generator        *service.QuestionGenerator
	test             *service.TestService
	question         *service.QuestionService
	session          *service.SessionService
	violation        *service.ViolationService
	monitor          *service.MonitorService
	permission       *service.PermissionService
	proctoring       *service.ProctoringService
	faceEngine       *service.FaceEngine
	faceVerification *service.FaceVerificationService
	analytics        *service.AnalyticsService
}

type controllers struct {
	auth       *controller.AuthController
	test       *controller.TestController
	question   *controller.QuestionController
	session    *controller.SessionController
	violation  *controller.ViolationController
	monitor    *controller.MonitorController
	permission *controller.PermissionController
	proctoring *controller.ProctoringController
	face       *controller.FaceVerificationController
	analytics  *controller.AnalyticsController
	media      *controller.MediaController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig fans a reloaded config out to the registered callbacks.
// Server port and database settings still require a restart.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		test:       repository.NewTestRepository(db),
		question:   repository.NewQuestionRepository(db),
		session:    repository.NewSessionRepository(db, rdb),
		violation:  repository.NewViolationRepository(db),
		permission: repository.NewPermissionRepository(db),
		proctoring: repository.NewProctoringRepository(db),
		face:       repository.NewFaceVerificationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageProvider(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	s.auth = service.NewAuthService(repos.user, cfg)
	s.generator = service.NewQuestionGenerator(cfg)
	s.test = service.NewTestService(repos.test, repos.question, s.generator)
	s.question = service.NewQuestionService(repos.question, repos.test)
	s.session = service.NewSessionService(repos.session, repos.test, repos.question, repos.user, cfg)
	s.violation = service.NewViolationService(repos.violation, repos.session)
	s.monitor = service.NewMonitorService(s.violation, repos.session, repos.violation)
	s.permission = service.NewPermissionService(repos.permission, repos.session, s.violation, cfg)
	s.faceEngine = service.NewFaceEngine(cfg)
	s.proctoring = service.NewProctoringService(repos.proctoring, repos.session, s.violation, s.storage, s.faceEngine)
	s.faceVerification = service.NewFaceVerificationService(repos.face, s.storage, s.faceEngine, cfg)
	s.analytics = service.NewAnalyticsService(repos.session, repos.violation, repos.test, repos.user, rdb)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		test:       controller.NewTestController(s.test),
		question:   controller.NewQuestionController(s.question),
		session:    controller.NewSessionController(s.session),
		violation:  controller.NewViolationController(s.violation),
		monitor:    controller.NewMonitorController(s.monitor),
		permission: controller.NewPermissionController(s.permission),
		proctoring: controller.NewProctoringController(s.proctoring),
		face:       controller.NewFaceVerificationController(s.faceVerification),
		analytics:  controller.NewAnalyticsController(s.analytics),
		media:      controller.NewMediaController(s.proctoring),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests == 0 {
		maxRequests = 1000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes == 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	a.stopSweeper = make(chan struct{})
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.session.SweepExpired()
			case <-a.stopSweeper:
				return
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Release deployments migrate only when asked to.
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
			log.Fatalf("Failed to migrate database: %v", err)
		}
		logger.Log.Info("Database migration completed")
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Redis is a cache here, not a hard dependency.
		logger.Log.Warn("Redis unavailable, caching disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services, err := app.initServices(repos, cfg, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
		log.Fatalf("Failed to initialize services: %v", err)
	}
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("exam-proctor", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, os.ModePerm)
		}
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.stopSweeper != nil {
		close(a.stopSweeper)
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

	log.Println("Server exiting")
}
