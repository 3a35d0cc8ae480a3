package app

import (
	"exam_proctor_backend/docs"
	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/middleware"
	"exam_proctor_backend/internal/model"

	"exam_proctor_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// proctoredFeatures maps each monitored feature group to the violation
// type its routes operate on.
var proctoredFeatures = map[string]model.ViolationType{
	"tab":        model.ViolationTabSwitch,
	"focus":      model.ViolationWindowBlur,
	"fullscreen": model.ViolationFullscreenExit,
	"keyboard":   model.ViolationKeyboardShortcut,
	"camera":     model.ViolationCameraPermission,
	"microphone": model.ViolationMicrophonePermission,
	"browser":    model.ViolationBrowserCompatibility,
	"lighting":   model.ViolationLightingIssue,
	"gaze":       model.ViolationGazeAway,
	"faces":      model.ViolationMultipleFaces,
	"audio":      model.ViolationAudioSuspicious,
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c, cfg)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerCandidateRoutes(authGroup, c)
		a.registerProctoringRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/health", c.health.Health)

	// Public routes still pick up the caller's identity when a token is
	// sent, without requiring one.
	public := router.Group("/api")
	public.Use(middleware.TryAuthMiddleware(cfg))
	{
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		public.GET("/violations/types", c.violation.Types)
	}
}

func (a *App) registerCandidateRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/auth/me", c.auth.Me)

	// Taking tests
	rg.GET("/tests", c.test.List)
	rg.GET("/tests/:id", c.test.Get)
	rg.GET("/tests/:id/full", c.test.GetWithQuestions)
	rg.GET("/tests/:id/questions/draw", c.test.Draw)

	// Sessions
	rg.POST("/sessions", c.session.Start)
	rg.GET("/sessions/:id", c.session.Get)
	rg.POST("/sessions/:id/submit", c.session.Submit)
	rg.POST("/sessions/:id/terminate", c.session.Terminate)
	rg.GET("/sessions/:id/validate", c.session.Validate)
	rg.GET("/sessions/:id/violations", c.violation.ListBySession)
	rg.GET("/sessions/:id/violations/summary", c.violation.Summary)
	rg.GET("/sessions/:id/permissions", c.permission.ListBySession)

	// Direct logging, outside the per-feature groups
	rg.POST("/violations", c.violation.Log)
	rg.POST("/permissions", c.permission.Log)

	// Identity verification
	rg.POST("/face/id-photo", c.face.UploadIDPhoto)
	rg.POST("/face/verify", c.face.Verify)
	rg.GET("/face/status", c.face.Status)
}

// registerProctoringRoutes builds one route group per monitored feature.
// Every group carries the same violation, status and summary routes; a
// few features add their specialized endpoints on top.
func (a *App) registerProctoringRoutes(rg *gin.RouterGroup, c *controllers) {
	for feature, vt := range proctoredFeatures {
		group := rg.Group("/proctoring/" + feature)
		{
			group.POST("/violation", c.violation.LogTyped(vt))
			group.GET("/session/:id/violations", c.violation.ListTyped(vt))
			group.GET("/session/:id/status", c.monitor.Status(feature, vt))
			group.GET("/session/:id/summary", c.monitor.Summary(feature, vt))
		}
	}

	// Analyzer endpoints: the client ships raw samples, classification
	// happens server side.
	rg.POST("/proctoring/lighting/report", c.monitor.ReportLighting)
	rg.POST("/proctoring/gaze/report", c.monitor.ReportGaze)
	rg.POST("/proctoring/audio/report", c.monitor.ReportAudio)
	rg.POST("/proctoring/audio/session/:id/evidence", c.proctoring.UploadAudioEvidence)

	// Media uploads
	screen := rg.Group("/proctoring/screen")
	{
		screen.POST("/session/:id/capture", c.proctoring.UploadCapture)
		screen.GET("/session/:id/captures", c.proctoring.ListCaptures)
	}
	rg.POST("/proctoring/webcam/session/:id/check", c.proctoring.WebcamCheck)

	// Behavioral anomalies
	behavior := rg.Group("/proctoring/behavior")
	{
		behavior.POST("/session/:id/anomaly", c.proctoring.RecordAnomaly)
		behavior.GET("/session/:id/anomalies", c.proctoring.ListAnomalies)
	}

	rg.GET("/proctoring/keyboard/shortcuts", c.proctoring.Shortcuts)
	rg.POST("/proctoring/keyboard/report", c.proctoring.KeyboardReport)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		// User administration
		admin.GET("/auth/users", c.auth.ListUsers)
		admin.POST("/auth/set-role", c.auth.SetRole)
		admin.GET("/auth/check-role", c.auth.CheckRole)

		// Test authoring
		admin.POST("/tests", c.test.Create)
		admin.POST("/tests/generate", c.test.GenerateFromDocument)
		admin.PUT("/tests/:id", c.test.Update)
		admin.DELETE("/tests/:id", c.test.Delete)
		admin.DELETE("/tests", c.test.DeleteAll)
		admin.GET("/tests/:id/questions", c.question.ListByTest)

		admin.POST("/questions", c.question.Create)
		admin.POST("/questions/batch", c.question.BatchCreate)
		admin.GET("/questions/:id", c.question.Get)
		admin.PUT("/questions/:id", c.question.Update)
		admin.DELETE("/questions/:id", c.question.Delete)
		admin.POST("/questions/:id/options", c.question.AddOption)

		// Session administration
		admin.GET("/sessions", c.session.List)
		admin.DELETE("/sessions/:id", c.session.Delete)
		admin.DELETE("/sessions", c.session.DeleteAll)

		// Review and reporting
		admin.GET("/analytics/users/:id", c.analytics.UserSummary)
		admin.GET("/analytics/tests/:id", c.analytics.TestSummary)
		admin.GET("/analytics/violations", c.analytics.ViolationSummary)
		admin.GET("/analytics/violations/export", c.analytics.ExportViolations)
		admin.GET("/media", c.media.Get)
	}
}
