// Package newslettercms собирает приложение: хранилище, миграции,
// кэш отозванных токенов, очередь уведомлений, сервисы и HTTP-сервер.
package newslettercms

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/newsletter-cms/internal/cache"
	"github.com/magabrotheeeer/newsletter-cms/internal/config"
	jwtlib "github.com/magabrotheeeer/newsletter-cms/internal/lib/jwt"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter-cms/internal/migrations"
	authservice "github.com/magabrotheeeer/newsletter-cms/internal/services/auth"
	contentservice "github.com/magabrotheeeer/newsletter-cms/internal/services/content"
	feedbackservice "github.com/magabrotheeeer/newsletter-cms/internal/services/feedback"
	statsservice "github.com/magabrotheeeer/newsletter-cms/internal/services/stats"
	subscriptionservice "github.com/magabrotheeeer/newsletter-cms/internal/services/subscription"
	"github.com/magabrotheeeer/newsletter-cms/internal/storage/repository"
)

// App агрегирует долгоживущие зависимости приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	rabbit *amqp.Connection
}

// New инициализирует приложение: подключает PostgreSQL, накатывает
// миграции, поднимает Redis и RabbitMQ, собирает сервисы и маршруты.
// RabbitMQ необязателен: без него продления просто не публикуют событий.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	denylist, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var rabbitConn *amqp.Connection
	var publisher *rabbitmq.Publisher
	if cfg.RabbitConnectionString != "" {
		rabbitConn, err = rabbitmq.Connect(cfg.RabbitConnectionString, 5, 3*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(rabbitConn)
		if err != nil {
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(ch)
	} else {
		logger.Warn("rabbitmq is not configured, renewal notifications disabled")
	}

	jwtMaker := jwtlib.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker, denylist)
	contentService := contentservice.NewContentService(db, db, logger)
	feedbackService := feedbackservice.NewFeedbackService(db, db, logger)
	var eventPublisher subscriptionservice.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}
	subscriptionService := subscriptionservice.NewSubscriptionService(db, eventPublisher, logger)
	statsService := statsservice.NewStatsService(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:         authService,
		Content:      contentService,
		Feedback:     feedbackService,
		Subscription: subscriptionService,
		Stats:        statsService,
	}, jwtMaker, denylist, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		rabbit: rabbitConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		if a.rabbit != nil {
			if closeErr := a.rabbit.Close(); closeErr != nil {
				a.logger.Error("failed to close rabbitmq connection", sl.Err(closeErr))
			}
		}
		return err
	}
}
