// Package bootstrap wires configuration, infrastructure, and services into
// the running application.
package bootstrap

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	"mailpilot/adapter/out/llm"
	"mailpilot/adapter/out/persistence"
	"mailpilot/adapter/out/provider"
	"mailpilot/adapter/out/state"
	"mailpilot/config"
	"mailpilot/core/port/out"
	"mailpilot/core/service/ai"
	"mailpilot/core/service/auth"
	"mailpilot/core/service/calendar"
	mailsvc "mailpilot/core/service/mail"
	"mailpilot/infra/database"
	"mailpilot/pkg/logger"
)

// Dependencies holds every constructed component.
type Dependencies struct {
	Pool  *pgxpool.Pool
	DB    *sqlx.DB
	Redis *redis.Client

	OAuthConfig *oauth2.Config

	UserRepo        *persistence.UserAdapter
	GmailProvider   *provider.GmailAdapter
	CalendarAdapter *provider.CalendarAdapter
	StateStore      out.LoginStateStore

	AuthService     *auth.Service
	Orchestrator    *ai.Orchestrator
	CalendarService *calendar.Service
	Extractor       *mailsvc.Extractor
}

// NewDependencies constructs the dependency graph. The returned cleanup
// closes every connection; it is safe to call after a partial failure has
// already been returned as an error.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{}

	cleanup := func() {
		if deps.Redis != nil {
			_ = deps.Redis.Close()
		}
		if deps.DB != nil {
			_ = deps.DB.Close()
		}
		if deps.Pool != nil {
			deps.Pool.Close()
		}
	}

	pool, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, cleanup, err
	}
	deps.Pool = pool

	db, err := database.NewSQLX(cfg.DatabaseURL)
	if err != nil {
		return nil, cleanup, err
	}
	deps.DB = db

	deps.UserRepo = persistence.NewUserAdapter(db)
	if err := deps.UserRepo.EnsureSchema(context.Background()); err != nil {
		return nil, cleanup, err
	}

	// Redis is optional: without it login state validation is disabled.
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, cleanup, err
		}
		deps.Redis = redisClient
		deps.StateStore = state.NewRedisStore(redisClient)
	} else {
		logger.Warn("REDIS_URL not set, OAuth login state validation is disabled")
	}

	deps.OAuthConfig = provider.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	deps.GmailProvider = provider.NewGmailAdapter(deps.OAuthConfig)
	deps.CalendarAdapter = provider.NewCalendarAdapter(deps.OAuthConfig)

	// The model client is optional: without a key every AI operation fails
	// fast with a typed unavailable error instead of a nil dereference.
	var completer out.Completer
	if cfg.OpenAIAPIKey != "" {
		completer = llm.NewClientWithConfig(llm.ClientConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.LLMModel,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
		})
	} else {
		logger.Warn("OPENAI_API_KEY not set, AI operations are unavailable")
	}

	deps.AuthService = auth.NewService(deps.UserRepo, cfg.JWTSecret, cfg.TokenTTL)
	deps.Orchestrator = ai.New(completer)
	deps.CalendarService = calendar.NewService(deps.CalendarAdapter)
	deps.Extractor = mailsvc.NewExtractor(cfg.OCRMinTextLen)

	return deps, cleanup, nil
}
