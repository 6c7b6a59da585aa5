package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/events"
	"resume-matcher/internal/llm"
	"resume-matcher/internal/llm/gemini"
	"resume-matcher/internal/llm/openai"
	"resume-matcher/internal/report"
	"resume-matcher/internal/runlog"
	"resume-matcher/internal/services/health"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/server"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/storage/db"
	"resume-matcher/internal/shared/storage/object"
	localstore "resume-matcher/internal/shared/storage/object/local"
	s3store "resume-matcher/internal/shared/storage/object/s3"
	"resume-matcher/internal/web"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Dialect         db.Dialect
	Charts          object.ObjectStore
	LLM             llm.Client
	Links           *report.LinkCatalog
	Runs            runlog.Repo
	Events          events.Publisher
	Health          *health.Service
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	RunsHandler     *runlog.Handler
	WebHandler      *web.Handler
}

// Build prepares every dependency and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	app := &App{Config: cfg, Health: health.NewService()}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close()
		}
	}()

	if err := app.buildRunlog(ctx); err != nil {
		return nil, err
	}

	charts, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Charts = charts

	llmClient, err := BuildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.LLM = llmClient

	links, err := BuildLinks(cfg)
	if err != nil {
		return nil, err
	}
	app.Links = links

	publisher, err := buildPublisher(cfg)
	if err != nil {
		return nil, err
	}
	app.Events = publisher

	app.AnalysesService = &analyses.Service{
		LLM:           app.LLM,
		Charts:        app.Charts,
		Links:         app.Links,
		Runs:          app.Runs,
		Events:        app.Events,
		Provider:      cfg.LLMProvider,
		Model:         cfg.LLMModel,
		PromptVersion: cfg.PromptVersion,
		LLMTimeout:    cfg.LLMTimeout,
	}
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService, app.Charts, cfg.MaxUploadBytes)
	app.RunsHandler = runlog.NewHandler(app.Runs)
	app.WebHandler = web.NewHandler(app.AnalysesService, cfg.MaxUploadBytes, analyses.PoweredBy(cfg.LLMProvider, cfg.LLMModel))

	app.Router = server.NewRouter(cfg, server.Deps{
		Analyses: app.AnalysisHandler,
		Runs:     app.RunsHandler,
		Web:      app.WebHandler,
		Health:   app.Health,
		Limiter:  middleware.NewRateLimiter(nil),
	})

	ok = true
	return app, nil
}

// Close releases the database and broker connections.
func (a *App) Close() error {
	var errs []error
	if a.Events != nil {
		errs = append(errs, a.Events.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func (a *App) buildRunlog(ctx context.Context) error {
	sqlDB, dialect, err := buildDB(ctx, a.Config)
	if err != nil {
		return err
	}
	if sqlDB == nil {
		a.Runs = runlog.NewMemoryRepo()
		return nil
	}
	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		_ = sqlDB.Close()
		if isDevLike(a.Config.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory run log: %v", err)
			a.Runs = runlog.NewMemoryRepo()
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}

	a.DB = sqlDB
	a.Dialect = dialect
	a.Runs = &runlog.SQLRepo{DB: sqlDB, Dialect: dialect}
	a.Health.Register("runlog", sqlDB.PingContext)
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, db.Dialect, error) {
	var (
		sqlDB   *sql.DB
		dialect db.Dialect
		err     error
	)
	switch {
	case strings.TrimSpace(cfg.DatabaseURL) != "":
		dialect = db.DialectPostgres
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	case strings.TrimSpace(cfg.RunlogSQLitePath) != "":
		dialect = db.DialectSQLite
		sqlDB, err = db.ConnectSQLite(ctx, cfg.RunlogSQLitePath, db.DefaultServerOptions())
	default:
		log.Printf("bootstrap: no DATABASE_URL or RUNLOG_SQLITE_PATH; using in-memory run log")
		return nil, "", nil
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory run log: %v", err)
			return nil, "", nil
		}
		return nil, "", err
	}
	return sqlDB, dialect, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.ChartStoreDir), nil
	}
}

// BuildLLM constructs the model client for the configured provider.
func BuildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return openai.NewClient(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	case config.ProviderGemini:
		return gemini.NewClient(ctx, cfg.LLMAPIKey, cfg.LLMModel)
	default:
		return nil, &config.ConfigError{Key: "LLM_PROVIDER", Reason: "unsupported provider " + cfg.LLMProvider}
	}
}

// BuildLinks loads the learning link catalog, falling back to the embedded default.
func BuildLinks(cfg config.Config) (*report.LinkCatalog, error) {
	if strings.TrimSpace(cfg.LinksFile) == "" {
		return report.DefaultLinkCatalog(), nil
	}
	catalog, err := report.LoadLinkCatalog(cfg.LinksFile)
	if err != nil {
		return nil, fmt.Errorf("load links file: %w", err)
	}
	return catalog, nil
}

func buildPublisher(cfg config.Config) (events.Publisher, error) {
	if strings.TrimSpace(cfg.AMQPURL) == "" {
		return events.NoopPublisher{}, nil
	}
	publisher, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: amqp dial failed; events disabled: %v", err)
			return events.NoopPublisher{}, nil
		}
		return nil, err
	}
	return publisher, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
