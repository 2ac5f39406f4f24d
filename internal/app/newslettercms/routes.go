// Package newslettercms предоставляет маршруты для основного приложения.
package newslettercms

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	feedbackremovehandler "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/admin/feedbackremove"

	dashboardhandler "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/admin/dashboard"
	feedbacklisthandler "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/admin/feedbacklist"
	usersupdatehandler "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/admin/userupdate"
	usershandler "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/admin/users"
	articlecreate "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/article/create"
	articlelist "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/article/list"
	articleread "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/article/read"
	articleremove "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/article/remove"
	articleupdate "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/article/update"
	"github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/auth/register"
	feedbacksubmit "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/feedback/submit"
	issuecreate "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/issue/create"
	issuelist "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/issue/list"
	issueread "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/issue/read"
	issueremove "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/issue/remove"
	issueupdate "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/issue/update"
	profileread "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/profile/read"
	profileupdate "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/profile/update"
	"github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/public/health"
	"github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/public/preview"
	ratingtop "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/rating/top"
	subscriptionhistory "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/subscription/history"
	subscriptionrenew "github.com/magabrotheeeer/newsletter-cms/internal/http/handlers/subscription/renew"
	"github.com/magabrotheeeer/newsletter-cms/internal/http/middlewarectx"
	jwtlib "github.com/magabrotheeeer/newsletter-cms/internal/lib/jwt"
	"github.com/magabrotheeeer/newsletter-cms/internal/lib/roles"
	authservice "github.com/magabrotheeeer/newsletter-cms/internal/services/auth"
	contentservice "github.com/magabrotheeeer/newsletter-cms/internal/services/content"
	feedbackservice "github.com/magabrotheeeer/newsletter-cms/internal/services/feedback"
	statsservice "github.com/magabrotheeeer/newsletter-cms/internal/services/stats"
	subscriptionservice "github.com/magabrotheeeer/newsletter-cms/internal/services/subscription"
	"github.com/magabrotheeeer/newsletter-cms/internal/storage/repository"
)

// Services собирает сервисы, которые нужны маршрутам.
type Services struct {
	Auth         *authservice.AuthService
	Content      *contentservice.ContentService
	Feedback     *feedbackservice.FeedbackService
	Subscription *subscriptionservice.SubscriptionService
	Stats        *statsservice.StatsService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *Services, jwtMaker jwtlib.Maker, revoker middlewarectx.Revoker, storage *repository.Storage) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/preview", preview.New(logger, svc.Content, svc.Feedback).ServeHTTP)
		r.Get("/health", health.New(logger, storage).ServeHTTP)

		// Группа с JWT аутентификацией: доступно любой роли
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, revoker, logger))
			r.Use(middlewarectx.RequireRole(logger, roles.Subscriber))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/auth/logout", logout.New(logger, svc.Auth).ServeHTTP)
			r.Get("/profile", profileread.New(logger, svc.Auth).ServeHTTP)
			r.Put("/profile", profileupdate.New(logger, svc.Auth).ServeHTTP)

			r.Get("/articles", articlelist.New(logger, svc.Content).ServeHTTP)
			r.Get("/articles/top", ratingtop.New(logger, svc.Feedback).ServeHTTP)
			r.Get("/articles/{id}", articleread.New(logger, svc.Content).ServeHTTP)
			r.Post("/articles/{id}/feedback", feedbacksubmit.New(logger, svc.Feedback).ServeHTTP)
			r.Get("/issues", issuelist.New(logger, svc.Content).ServeHTTP)
			r.Get("/issues/{id}", issueread.New(logger, svc.Content).ServeHTTP)

			r.Post("/subscription/renew", subscriptionrenew.New(logger, svc.Subscription).ServeHTTP)
			r.Get("/subscription/history", subscriptionhistory.New(logger, svc.Subscription).ServeHTTP)

			// Редакция: создание и правка контента
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, roles.Editor))

				r.Post("/articles", articlecreate.New(logger, svc.Content).ServeHTTP)
				r.Put("/articles/{id}", articleupdate.New(logger, svc.Content).ServeHTTP)
				r.Delete("/articles/{id}", articleremove.New(logger, svc.Content).ServeHTTP)
				r.Post("/issues", issuecreate.New(logger, svc.Content).ServeHTTP)
				r.Put("/issues/{id}", issueupdate.New(logger, svc.Content).ServeHTTP)
			})

			// Администрирование
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, roles.Admin))

				r.Get("/admin/users", usershandler.New(logger, svc.Auth).ServeHTTP)
				r.Put("/admin/users/{id}", usersupdatehandler.New(logger, svc.Auth).ServeHTTP)
				r.Get("/admin/dashboard", dashboardhandler.New(logger, svc.Stats).ServeHTTP)
				r.Get("/admin/feedback", feedbacklisthandler.New(logger, svc.Feedback).ServeHTTP)
				r.Delete("/admin/feedback/{id}", feedbackremovehandler.New(logger, svc.Feedback).ServeHTTP)
				r.Delete("/issues/{id}", issueremove.New(logger, svc.Content).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
