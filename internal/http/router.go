package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/soladu1/Q-A-By-SOL/internal/auth"
	"github.com/soladu1/Q-A-By-SOL/internal/cache"
	"github.com/soladu1/Q-A-By-SOL/internal/config"
	"github.com/soladu1/Q-A-By-SOL/internal/http/handlers"
	"github.com/soladu1/Q-A-By-SOL/internal/http/middlewares"
	"github.com/soladu1/Q-A-By-SOL/internal/observability"
	"github.com/soladu1/Q-A-By-SOL/internal/repo/postgres"
)

const maxBodyBytes = 1 << 20 // 1 MiB request bodies are plenty for forms

// NewRouter wires middlewares, repositories and handlers. It fails when the
// signing secret is absent: the service must not start if it would issue
// unverifiable tokens.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, cfg config.Config) (*gin.Engine, error) {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	jwtManager, err := auth.NewManager(cfg.JWTSecret, cfg.RegisterTokenTTL(), cfg.LoginTokenTTL())

	if err != nil {
		return nil, err
	}

	r := gin.New()

	// metrics registry stays local so tests can build routers repeatedly
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(prom.GinHandleMiddleware())
	r.Use(otelgin.Middleware("qna-api"))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	questionsRepo := postgres.NewQuestionsRepo(pool, prom)

	listCache := cache.NewQuestionCache(rdb, time.Duration(cfg.QuestionCacheTTLSeconds)*time.Second)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager)
	questionsHandler := handlers.NewQuestionsHandler(questionsRepo, listCache)

	authRequired := middlewares.NewAuthMiddleware(jwtManager).RequireAuth()

	// user routes
	r.POST("/users/register", authHandler.Register)
	r.POST("/users/login", authHandler.Login)
	r.GET("/users/check", authRequired, authHandler.Check)

	// question routes; listing is public, posting needs an identity
	r.GET("/questions", questionsHandler.ListQuestions)
	r.POST("/questions", authRequired, questionsHandler.PostQuestion)

	return r, nil
}
