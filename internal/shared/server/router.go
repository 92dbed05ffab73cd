package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	googleauth "sitecopy-backend/internal/auth"
	"sitecopy-backend/internal/content"
	"sitecopy-backend/internal/generate"
	"sitecopy-backend/internal/generate/openai"
	"sitecopy-backend/internal/ingest"
	"sitecopy-backend/internal/refine"
	"sitecopy-backend/internal/rules"
	"sitecopy-backend/internal/runs"
	"sitecopy-backend/internal/scoring"
	"sitecopy-backend/internal/services/health"
	"sitecopy-backend/internal/shared/config"
	"sitecopy-backend/internal/shared/metrics"
	"sitecopy-backend/internal/shared/server/middleware"
	"sitecopy-backend/internal/shared/server/respond"
	"sitecopy-backend/internal/shared/storage/db"
	"sitecopy-backend/internal/shared/storage/object"
	localstore "sitecopy-backend/internal/shared/storage/object/local"
	s3store "sitecopy-backend/internal/shared/storage/object/s3"
	"sitecopy-backend/internal/users"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
	)

	// Rule pack and scoring engine.
	rs, err := rules.LoadFromEnv(cfg.RulesPath)
	if err != nil {
		log.Fatalf("load rules: %v", err)
	}
	assessor := scoring.NewAssessor(rs)

	// Content generator: OpenAI when configured, placeholder otherwise.
	// The placeholder fails every call, which exercises the fallback paths.
	var gen generate.Generator = generate.PlaceholderGenerator{}
	if os.Getenv("OPENAI_API_KEY") != "" {
		client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.LLMModel)
		if err != nil {
			log.Printf("openai client unavailable, using placeholder: %v", err)
		} else {
			gen = client
		}
	}

	// Storage.
	var store object.ObjectStore
	if cfg.ObjectStoreType == "s3" {
		s3, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			log.Printf("s3 store unavailable, falling back to local: %v", err)
		} else {
			store = s3
		}
	}
	if store == nil {
		store = localstore.New(cfg.LocalStoreDir)
	}

	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var userRepo users.Repo
	var runRepo runs.Repo
	if sqlDB != nil {
		userRepo = &users.PGRepo{DB: sqlDB}
		runRepo = &runs.PGRepo{DB: sqlDB}
	} else {
		userRepo = users.NewMemoryRepo()
		runRepo = runs.NewMemoryRepo()
	}

	userSvc := users.NewService(userRepo)
	userHandler := users.NewHandler(userSvc)

	runSvc := &runs.Service{
		Repo:     runRepo,
		Gen:      gen,
		Assessor: assessor,
		Rules:    rs,
		Fallback: content.NewFallbackGenerator(time.Now().UnixNano()),
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		Defaults: refine.Params{
			QualityThreshold:  cfg.QualityThreshold,
			MaxPasses:         cfg.MaxPasses,
			MaxRetriesPerPass: cfg.MaxRetriesPerPass,
		},
		VariantCount: cfg.VariantCount,
	}
	runHandler := runs.NewHandler(runSvc)

	ingestSvc := &ingest.Service{Store: store}
	ingestHandler := ingest.NewHandler(ingestSvc)

	googleAuthSvc := googleauth.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL, userSvc)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, health.NewService().Status())
	})
	googleAuthSvc.RegisterRoutes(api)
	userHandler.RegisterRoutes(api)
	runHandler.RegisterRoutes(api)
	ingestHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
