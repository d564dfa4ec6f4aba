package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/timetable-solver/api/swagger"
	internalhandler "github.com/noah-isme/timetable-solver/internal/handler"
	internalmiddleware "github.com/noah-isme/timetable-solver/internal/middleware"
	"github.com/noah-isme/timetable-solver/internal/models"
	"github.com/noah-isme/timetable-solver/internal/repository"
	"github.com/noah-isme/timetable-solver/internal/service"
	"github.com/noah-isme/timetable-solver/pkg/cache"
	"github.com/noah-isme/timetable-solver/pkg/config"
	"github.com/noah-isme/timetable-solver/pkg/database"
	"github.com/noah-isme/timetable-solver/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-solver/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-solver/pkg/middleware/requestid"
	"github.com/noah-isme/timetable-solver/pkg/storage"
)

// @title Timetable Solver API
// @version 0.1.0
// @description Block-based constraint solver for university course timetabling
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

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, falling back to in-process proposal cache and run lock", "error", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Auth: a single operator role gates the catalog-authoring and
	// schedule-generation endpoints (SPEC_FULL.md §5).
	userRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "timetable-solver",
		Audience:           []string{"timetable-solver-clients"},
	})
	authHandler := internalhandler.NewAuthHandler(authSvc)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	protectedAuth := authRoutes.Group("")
	protectedAuth.Use(internalmiddleware.JWT(authSvc))
	protectedAuth.POST("/logout", authHandler.Logout)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))
	operatorOnly := internalmiddleware.RBAC(string(models.RoleOperator))

	// Catalog: the authoring CRUD surface the snapshot loader reads from
	// (SPEC_FULL.md §5, supplemented features).
	catalogHandler := internalhandler.NewCatalogHandler(
		repository.NewBuildingRepository(db),
		repository.NewRoomRepository(db),
		repository.NewLevelRepository(db),
		repository.NewGroupRepository(db),
		repository.NewSectionRepository(db),
		repository.NewCourseRepository(db),
		repository.NewInstructorRepository(db),
		repository.NewTARepository(db),
	)
	registerCatalogRoutes(secured, catalogHandler, operatorOnly, userRepo)

	// Schedule generation: the two-phase generate/save flow (spec §4) plus
	// the read-only browse endpoint over the persisted result.
	snapshotRepo := repository.NewSnapshotRepository(db)
	resultRepo := repository.NewScheduleResultRepository(db)
	browseRepo := repository.NewScheduleBrowseRepository(db)

	var schedulerSvc *service.ScheduleGeneratorService
	schedulerCfg := service.ScheduleGeneratorConfig{
		ProposalTTL:    cfg.Scheduler.ProposalTTL,
		DefaultTimeout: cfg.Scheduler.DefaultTimeout,
		LockTTL:        cfg.Scheduler.LockTTL,
	}
	if redisClient != nil {
		schedulerSvc = service.NewScheduleGeneratorService(
			snapshotRepo, resultRepo,
			service.NewRedisProposalCache(redisClient),
			service.NewRedisRunLocker(redisClient),
			nil, logr, schedulerCfg, metricsSvc,
		)
	} else {
		schedulerSvc = service.NewScheduleGeneratorService(
			snapshotRepo, resultRepo, nil, nil, nil, logr, schedulerCfg, metricsSvc,
		)
	}
	schedulerHandler := internalhandler.NewScheduleGeneratorHandler(schedulerSvc)
	browseHandler := internalhandler.NewScheduleBrowseHandler(browseRepo)

	secured.POST("/schedule/generate", operatorOnly, schedulerHandler.Generate)
	secured.POST("/schedule/save", operatorOnly, internalmiddleware.Audit(userRepo, "schedule.save", "schedule"), schedulerHandler.Save)
	secured.GET("/schedule", internalmiddleware.WithResponseMeta(), browseHandler.List)

	// Export: renders the persisted timetable to CSV/PDF behind a signed
	// download link (spec §4, ScheduleExportService).
	exportStore, err := storage.NewLocalStorage(cfg.Export.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	exportSigner := storage.NewSignedURLSigner(cfg.Export.SignedURLSecret, cfg.Export.SignedURLTTL)
	exportCtx, cancelExport := context.WithCancel(context.Background())
	defer cancelExport()
	exportSvc := service.NewScheduleExportService(exportCtx, browseRepo, exportStore, exportSigner, service.ExportConfig{
		APIPrefix:  cfg.APIPrefix,
		ResultTTL:  cfg.Export.SignedURLTTL,
		Workers:    cfg.Export.WorkerConcurrency,
		MaxRetries: cfg.Export.WorkerRetries,
	}, logr, nil, nil)
	exportHandler := internalhandler.NewExportHandler(exportSvc)

	secured.POST("/schedule/export", operatorOnly, internalmiddleware.Audit(userRepo, "schedule.export", "schedule"), exportHandler.Submit)
	secured.GET("/schedule/export/:id", operatorOnly, exportHandler.Status)
	secured.GET("/schedule/export/download/:token", exportHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func registerCatalogRoutes(group *gin.RouterGroup, h *internalhandler.CatalogHandler, guard gin.HandlerFunc, userRepo *repository.UserRepository) {
	audit := func(action, resource string) gin.HandlerFunc {
		return internalmiddleware.Audit(userRepo, action, resource)
	}

	buildings := group.Group("/buildings")
	buildings.GET("", h.ListBuildings)
	buildings.POST("", guard, audit("building.create", "building"), h.CreateBuilding)

	rooms := group.Group("/rooms")
	rooms.GET("", h.ListRooms)
	rooms.POST("", guard, audit("room.create", "room"), h.CreateRoom)
	rooms.DELETE("/:id", guard, audit("room.delete", "room"), h.DeleteRoom)

	levels := group.Group("/levels")
	levels.GET("", h.ListLevels)
	levels.POST("", guard, audit("level.create", "level"), h.CreateLevel)

	groups := group.Group("/groups")
	groups.GET("", h.ListGroups)
	groups.POST("", guard, audit("group.create", "group"), h.CreateGroup)

	sections := group.Group("/sections")
	sections.GET("", h.ListSections)
	sections.POST("", guard, audit("section.create", "section"), h.CreateSection)

	courses := group.Group("/courses")
	courses.GET("", h.ListCourses)
	courses.POST("", guard, audit("course.create", "course"), h.CreateCourse)
	courses.POST("/qualify-instructor", guard, audit("course.qualify_instructor", "course"), h.QualifyInstructor)
	courses.POST("/qualify-ta", guard, audit("course.qualify_ta", "course"), h.QualifyTA)

	instructors := group.Group("/instructors")
	instructors.GET("", h.ListInstructors)
	instructors.POST("", guard, audit("instructor.create", "instructor"), h.CreateInstructor)

	tas := group.Group("/tas")
	tas.GET("", h.ListTAs)
	tas.POST("", guard, audit("ta.create", "ta"), h.CreateTA)
}
