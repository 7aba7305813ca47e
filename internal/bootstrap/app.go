package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"hr-analytics/internal/auth"
	openai "hr-analytics/internal/llm/openai"
	"hr-analytics/internal/pages"
	"hr-analytics/internal/retention"
	"hr-analytics/internal/session"
	"hr-analytics/internal/shared/config"
	"hr-analytics/internal/shared/server"
	"hr-analytics/internal/shared/server/middleware"
	"hr-analytics/internal/shared/storage/db"
	"hr-analytics/internal/shared/telemetry"
	"hr-analytics/internal/survey"
	"hr-analytics/internal/users"
)

// App holds the web app and the connections it owns.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	Users    *users.Service
	Sessions *session.Manager
	closers  []func(context.Context) error
}

// Build wires stores, services and handlers into a router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close(context.Background())
		}
	}()

	userRepo, err := app.buildUserRepo(ctx)
	if err != nil {
		return nil, err
	}
	app.Users = users.NewService(userRepo)

	store, err := app.buildSessionStore(ctx)
	if err != nil {
		return nil, err
	}
	app.Sessions = session.NewManager(store, cfg.SecretKey, session.Options{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Env == "production",
	})

	predictor, err := buildPredictor(cfg)
	if err != nil {
		return nil, err
	}

	mailer, err := survey.NewSMTPMailer(survey.SMTPConfig{
		Host:     cfg.Mail.Server,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
	})
	if err != nil {
		return nil, err
	}

	templates, err := pages.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:    cfg,
		Templates: templates,
		Session:   app.Sessions.Middleware(),
		Limiter:   middleware.NewRateLimiter(nil),
		Routes: []server.Routes{
			pages.NewHandler(cfg.StaticDir),
			auth.NewHandler(app.Users, app.Sessions, auth.NewFirebaseVerifier(cfg.Auth.FirebaseProjectID)),
			auth.NewGoogleService(cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret, cfg.Auth.GoogleRedirectURL, app.Sessions),
			retention.NewHandler(predictor),
			survey.NewHandler(mailer, cfg.Mail.SurveyFormURL),
		},
	})

	ok = true
	return app, nil
}

// Close releases database, Mongo and Redis connections in reverse order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

func closeWith(c io.Closer) func(context.Context) error {
	return func(context.Context) error { return c.Close() }
}

func (a *App) buildUserRepo(ctx context.Context) (users.Repo, error) {
	cfg := a.Config.Users
	switch cfg.Store {
	case "postgres":
		sqlDB, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if !db.IsLambdaRuntime() {
			a.onClose(closeWith(sqlDB))
		}
		// Deployed environments migrate through cmd/migrate.
		if a.Config.IsDevLike() {
			if err := db.RunMigrations(ctx, sqlDB); err != nil {
				return nil, err
			}
		}
		return &users.PGRepo{DB: sqlDB}, nil
	case "mongo":
		client, err := users.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		a.onClose(client.Disconnect)
		return users.NewMongoRepo(ctx, mongoCollection(client, cfg))
	case "", "memory":
		if !a.Config.IsDevLike() {
			telemetry.Warn("bootstrap.memory_users", map[string]any{"env": a.Config.Env})
		}
		return users.NewMemoryRepo(), nil
	default:
		return nil, fmt.Errorf("unknown USER_STORE %q", cfg.Store)
	}
}

func mongoCollection(client *mongo.Client, cfg config.UsersConfig) *mongo.Collection {
	return client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
}

func connectDB(ctx context.Context, url string) (*sql.DB, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("DATABASE_URL is required when USER_STORE=postgres")
	}
	if db.IsLambdaRuntime() {
		return db.GetSingleton(ctx, url, db.DefaultOptions())
	}
	return db.Connect(ctx, url, db.DefaultOptions())
}

func (a *App) buildSessionStore(ctx context.Context) (session.Store, error) {
	cfg := a.Config.Session
	switch cfg.Store {
	case "redis":
		store, err := session.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			if a.Config.IsDevLike() {
				telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"error": err.Error()})
				return session.NewMemoryStore(), nil
			}
			return nil, err
		}
		a.onClose(closeWith(store))
		return store, nil
	case "", "memory":
		return session.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.Store)
	}
}

func buildPredictor(cfg config.Config) (*retention.Predictor, error) {
	model, err := retention.LoadModel(cfg.Predict.ArtifactsPath)
	if err != nil {
		return nil, err
	}
	var chat retention.ChatClient
	client, err := openai.NewClient(cfg.Predict.OpenAIAPIKey, cfg.Predict.OpenAIModel)
	if err != nil {
		telemetry.Warn("bootstrap.openai_unavailable", map[string]any{"error": err.Error()})
		chat = unavailableChat{err: err}
	} else {
		chat = client
	}
	return retention.NewPredictor(model, retention.ChatAdvisor{Client: chat}), nil
}

// unavailableChat lets predictions succeed while recommendations report the setup error.
type unavailableChat struct {
	err error
}

func (u unavailableChat) Chat(context.Context, []openai.Message, openai.Options) (string, error) {
	return "", u.err
}

// ShutdownTimeout bounds graceful HTTP shutdown and connection cleanup.
const ShutdownTimeout = 10 * time.Second
