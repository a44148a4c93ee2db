package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"lcms-backend/internal/export"
	"lcms-backend/internal/queue"
	"lcms-backend/internal/rawfiles"
	"lcms-backend/internal/samples"
	"lcms-backend/internal/services/health"
	"lcms-backend/internal/shared/config"
	"lcms-backend/internal/shared/server"
	"lcms-backend/internal/shared/storage/db"
	"lcms-backend/internal/shared/storage/object"
	localstore "lcms-backend/internal/shared/storage/object/local"
	s3store "lcms-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Queue           queue.Client
	RawFilesRepo    rawfiles.Repo
	SamplesRepo     samples.Repo
	RawFilesService *rawfiles.Service
	SamplesService  *samples.Service
	RawFilesHandler *rawfiles.Handler
	SamplesHandler  *samples.Handler
	ExportHandler   *export.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Health:          health.NewService(app.DB),
		RawFilesHandler: app.RawFilesHandler,
		SamplesHandler:  app.SamplesHandler,
		ExportHandler:   app.ExportHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("LC_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var fileRepo rawfiles.Repo
	var sampleRepo samples.Repo

	if app.DB != nil {
		fileRepo = &rawfiles.PGRepo{DB: app.DB}
		sampleRepo = &samples.PGRepo{DB: app.DB}
	} else {
		fileRepo = rawfiles.NewMemoryRepo()
		sampleRepo = samples.NewMemoryRepo()
	}

	fileSvc := &rawfiles.Service{
		Store: app.Store,
		Repo:  fileRepo,
	}

	sampleSvc := &samples.Service{
		Repo:  sampleRepo,
		Files: fileRepo,
		Store: app.Store,
		Queue: app.Queue,
		Orchestration: samples.OrchestratorConfig{
			MassTolerance:   app.Config.MassTolerance,
			PurityWindowMin: app.Config.PurityWindowMin,
			PurityWindowMax: app.Config.PurityWindowMax,
		},
	}

	app.RawFilesRepo = fileRepo
	app.SamplesRepo = sampleRepo
	app.RawFilesService = fileSvc
	app.SamplesService = sampleSvc
	app.RawFilesHandler = rawfiles.NewHandler(fileSvc)
	app.SamplesHandler = samples.NewHandler(sampleSvc)
	app.ExportHandler = export.NewHandler(sampleSvc)
}
