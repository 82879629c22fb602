package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/marketbill-backend/api/controllers"
	subscriptioncontrollers "github.com/angelmondragon/marketbill-backend/api/controllers/subscriptions"
	webhookcontrollers "github.com/angelmondragon/marketbill-backend/api/controllers/webhooks"
	"github.com/angelmondragon/marketbill-backend/api/middleware"
	"github.com/angelmondragon/marketbill-backend/pkg/config"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
)

// RedisStore is the subset of the redis client the HTTP layer uses.
type RedisStore interface {
	middleware.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

// RouterParams collects what the API router wires together.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    RedisStore
	Sellers  subscriptioncontrollers.Service
	Shoppers subscriptioncontrollers.Service
	Webhooks webhookcontrollers.AsaasWebhookService
	Metrics  http.Handler
}

func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	deps := map[string]controllers.Pinger{"db": p.DB}
	if p.Redis != nil {
		deps["redis"] = p.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics)
	}

	var (
		idempotent  = middleware.Idempotency(nil, 0, logg)
		createLimit = middleware.RateLimit(middleware.RateLimitPolicy{}, nil, logg)
	)
	if p.Redis != nil {
		idempotent = middleware.Idempotency(p.Redis, cfg.Subscriptions.IdempotencyTTL, logg)
		createLimit = middleware.RateLimit(
			middleware.NewRateLimitPolicy("subscription_create", cfg.HTTP.RateLimitWindow, cfg.HTTP.CreateRateLimit),
			p.Redis,
			logg,
		)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/asaas", webhookcontrollers.AsaasWebhook(p.Webhooks, cfg.Asaas.WebhookToken, logg))

		r.Route("/sellers/{sellerId}/subscriptions", func(r chi.Router) {
			r.With(createLimit, idempotent).Post("/", subscriptioncontrollers.Create(p.Sellers, "sellerId", logg))
			r.Get("/", subscriptioncontrollers.ListByOwner(p.Sellers, "sellerId", logg))
		})

		r.Route("/orders/{orderId}/subscription", func(r chi.Router) {
			r.With(createLimit, idempotent).Post("/", subscriptioncontrollers.Create(p.Shoppers, "orderId", logg))
			r.Get("/", subscriptioncontrollers.GetByOrder(p.Shoppers, logg))
		})

		r.Get("/shoppers/{shopperId}/subscriptions", subscriptioncontrollers.ListByOwner(p.Shoppers, "shopperId", logg))

		r.Route("/seller-subscriptions", subscriptionResource(p.Sellers, logg))
		r.Route("/shopper-subscriptions", subscriptionResource(p.Shoppers, logg))
	})

	return r
}

func subscriptionResource(svc subscriptioncontrollers.Service, logg *logger.Logger) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", subscriptioncontrollers.List(svc, logg))
		r.Get("/external/{externalId}", subscriptioncontrollers.GetByExternal(svc, logg))
		r.Get("/{id}", subscriptioncontrollers.Get(svc, logg))
		r.Patch("/{id}", subscriptioncontrollers.Update(svc, logg))
		r.Delete("/{id}", subscriptioncontrollers.Delete(svc, logg))
		r.Put("/{id}/status", subscriptioncontrollers.UpdateStatus(svc, logg))
	}
}
