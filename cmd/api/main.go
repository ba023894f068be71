package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/board-result-api/api/swagger"
	"github.com/noah-isme/board-result-api/internal/handler"
	"github.com/noah-isme/board-result-api/internal/middleware"
	"github.com/noah-isme/board-result-api/internal/models"
	"github.com/noah-isme/board-result-api/internal/notifier"
	"github.com/noah-isme/board-result-api/internal/repository"
	"github.com/noah-isme/board-result-api/internal/service"
	"github.com/noah-isme/board-result-api/internal/userclient"
	"github.com/noah-isme/board-result-api/pkg/cache"
	"github.com/noah-isme/board-result-api/pkg/config"
	"github.com/noah-isme/board-result-api/pkg/database"
	"github.com/noah-isme/board-result-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/board-result-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/board-result-api/pkg/middleware/requestid"
)

// @title Board Result API
// @version 1.0.0
// @description Academic result recording, grading and publication service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching and notifications degraded", "error", err)
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			redisClient.Close() //nolint:errcheck
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	academicYearRepo := repository.NewAcademicYearRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classLevelRepo := repository.NewClassLevelRepository(db)
	streamRepo := repository.NewStreamRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	yearSubjectRepo := repository.NewAcademicYearSubjectRepository(db)
	examinationRepo := repository.NewExaminationRepository(db)
	resultRepo := repository.NewStudentResultRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Outbound result notifications.
	metricsSvc := service.NewMetricsService()
	emitter := notifier.New(
		notifier.NewRedisPublisher(redisClient),
		notificationRepo,
		metricsSvc,
		notifier.Config{
			Enabled:        cfg.Notifications.Enabled && redisClient != nil,
			ChannelPrefix:  cfg.Notifications.ChannelPrefix,
			PublishTimeout: cfg.Notifications.PublishTimeout,
			Workers:        cfg.Notifications.Workers,
			BufferSize:     cfg.Notifications.BufferSize,
		},
		logr,
	)
	emitter.Start(ctx)
	defer emitter.Stop()

	userDirectory := userclient.New(userclient.Config{
		BaseURL: cfg.UserDirectory.BaseURL,
		APIKey:  cfg.UserDirectory.APIKey,
		Timeout: cfg.UserDirectory.Timeout,
	}, logr)

	// Services.
	validate := validator.New()
	authSvc := service.NewAuthService(service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "board-result-api",
	}, logr)
	academicYearSvc := service.NewAcademicYearService(academicYearRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	classLevelSvc := service.NewClassLevelService(classLevelRepo, validate, logr)
	streamSvc := service.NewStreamService(streamRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, userDirectory, validate, logr)
	yearSubjectSvc := service.NewAcademicYearSubjectService(yearSubjectRepo, validate, logr)
	examinationSvc := service.NewExaminationService(examinationRepo, validate, logr)
	resultSvc := service.NewStudentResultService(
		resultRepo,
		examinationRepo,
		studentRepo,
		yearSubjectRepo,
		emitter,
		cacheRepo,
		cfg.Statistics.CacheTTL,
		validate,
		logr,
	)
	exportSvc := service.NewExportService(resultRepo, examinationRepo, logr)

	// Handlers.
	academicYearHandler := handler.NewAcademicYearHandler(academicYearSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	classLevelHandler := handler.NewClassLevelHandler(classLevelSvc)
	streamHandler := handler.NewStreamHandler(streamSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	yearSubjectHandler := handler.NewAcademicYearSubjectHandler(yearSubjectSvc)
	examinationHandler := handler.NewExaminationHandler(examinationSvc)
	resultHandler := handler.NewStudentResultHandler(resultSvc, studentSvc, exportSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient, emitter)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg, authSvc, auditRepo,
		academicYearHandler, subjectHandler, classLevelHandler, streamHandler,
		studentHandler, yearSubjectHandler, examinationHandler, resultHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func registerRoutes(
	r *gin.Engine,
	cfg *config.Config,
	authSvc *service.AuthService,
	auditRepo *repository.AuditRepository,
	academicYears *handler.AcademicYearHandler,
	subjects *handler.SubjectHandler,
	classLevels *handler.ClassLevelHandler,
	streams *handler.StreamHandler,
	students *handler.StudentHandler,
	yearSubjects *handler.AcademicYearSubjectHandler,
	examinations *handler.ExaminationHandler,
	results *handler.StudentResultHandler,
) {
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	api.Use(middleware.Activity(auditRepo))

	years := api.Group("/academic-years")
	{
		years.GET("", academicYears.List)
		years.GET("/current", academicYears.Current)
		years.GET("/:id", academicYears.Get)
		years.POST("", adminOnly, middleware.Audit(auditRepo, "CREATE", "academic_year"), academicYears.Create)
		years.PUT("/:id", adminOnly, middleware.Audit(auditRepo, "UPDATE", "academic_year"), academicYears.Update)
		years.POST("/:id/set-current", adminOnly, middleware.Audit(auditRepo, "SET_CURRENT", "academic_year"), academicYears.SetCurrent)
		years.DELETE("/:id", adminOnly, middleware.Audit(auditRepo, "DELETE", "academic_year"), academicYears.Delete)
	}

	subj := api.Group("/subjects")
	{
		subj.GET("", subjects.List)
		subj.GET("/:id", subjects.Get)
		subj.POST("", adminOnly, middleware.Audit(auditRepo, "CREATE", "subject"), subjects.Create)
		subj.PUT("/:id", adminOnly, middleware.Audit(auditRepo, "UPDATE", "subject"), subjects.Update)
		subj.DELETE("/:id", adminOnly, middleware.Audit(auditRepo, "DELETE", "subject"), subjects.Delete)
	}

	levels := api.Group("/class-levels")
	{
		levels.GET("", classLevels.List)
		levels.GET("/:id", classLevels.Get)
		levels.POST("", adminOnly, middleware.Audit(auditRepo, "CREATE", "class_level"), classLevels.Create)
		levels.PUT("/:id", adminOnly, middleware.Audit(auditRepo, "UPDATE", "class_level"), classLevels.Update)
		levels.DELETE("/:id", adminOnly, middleware.Audit(auditRepo, "DELETE", "class_level"), classLevels.Delete)
	}

	str := api.Group("/streams")
	{
		str.GET("", streams.List)
		str.GET("/:id", streams.Get)
		str.POST("", adminOnly, middleware.Audit(auditRepo, "CREATE", "stream"), streams.Create)
		str.PUT("/:id", adminOnly, middleware.Audit(auditRepo, "UPDATE", "stream"), streams.Update)
		str.DELETE("/:id", adminOnly, middleware.Audit(auditRepo, "DELETE", "stream"), streams.Delete)
	}

	stu := api.Group("/students")
	{
		stu.GET("", staff, students.List)
		stu.GET("/user/:userId", middleware.RolesOrSelf("userId", models.RoleAdmin, models.RoleTeacher), students.GetByUser)
		stu.GET("/:id", staff, students.Get)
		stu.POST("", staff, middleware.Audit(auditRepo, "CREATE", "student"), students.Create)
		stu.PUT("/:id", staff, middleware.Audit(auditRepo, "UPDATE", "student"), students.Update)
		stu.DELETE("/:id", adminOnly, middleware.Audit(auditRepo, "DELETE", "student"), students.Delete)
	}

	ys := api.Group("/academic-year-subjects")
	{
		ys.GET("", yearSubjects.List)
		ys.GET("/:id", yearSubjects.Get)
		ys.POST("", adminOnly, middleware.Audit(auditRepo, "CREATE", "academic_year_subject"), yearSubjects.Create)
		ys.PUT("/:id", adminOnly, middleware.Audit(auditRepo, "UPDATE", "academic_year_subject"), yearSubjects.Update)
		ys.DELETE("/:id", adminOnly, middleware.Audit(auditRepo, "DELETE", "academic_year_subject"), yearSubjects.Delete)
	}

	exams := api.Group("/examinations")
	{
		exams.GET("", examinations.List)
		exams.GET("/:id", examinations.Get)
		exams.POST("", staff, middleware.Audit(auditRepo, "CREATE", "examination"), examinations.Create)
		exams.PUT("/:id", staff, middleware.Audit(auditRepo, "UPDATE", "examination"), examinations.Update)
		exams.DELETE("/:id", adminOnly, middleware.Audit(auditRepo, "DELETE", "examination"), examinations.Delete)
	}

	res := api.Group("/student-results")
	{
		res.GET("", results.List)
		res.GET("/statistics", staff, results.Statistics)
		res.GET("/:id", results.Get)
		res.GET("/student/:studentId/examination/:examinationId", results.GetByStudentAndExam)
		res.POST("", staff, middleware.Audit(auditRepo, "CREATE", "student_result"), results.Create)
		res.PUT("/:id", staff, middleware.Audit(auditRepo, "UPDATE", "student_result"), results.Update)
		res.DELETE("/:id", adminOnly, middleware.Audit(auditRepo, "DELETE", "student_result"), results.Delete)
		res.PATCH("/:id/publish", staff, middleware.Audit(auditRepo, "PUBLISH", "student_result"), results.Publish)
		res.PATCH("/:id/unpublish", staff, middleware.Audit(auditRepo, "UNPUBLISH", "student_result"), results.Unpublish)
		res.PATCH("/examination/:examinationId/publish", adminOnly, middleware.Audit(auditRepo, "PUBLISH_BATCH", "examination"), results.PublishBatch)
		res.GET("/examination/:examinationId/export", staff, results.Export)
	}
}
