package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/gearmarket-web/api/controllers"
	"github.com/angelmondragon/gearmarket-web/api/middleware"
	"github.com/angelmondragon/gearmarket-web/internal/auth"
	"github.com/angelmondragon/gearmarket-web/internal/drafts"
	"github.com/angelmondragon/gearmarket-web/internal/gears"
	"github.com/angelmondragon/gearmarket-web/pkg/auth/session"
	"github.com/angelmondragon/gearmarket-web/pkg/config"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
	"github.com/angelmondragon/gearmarket-web/pkg/metrics"
)

// Redis is what the router needs from the redis client: readiness and rate limiting.
type Redis interface {
	Ping(ctx context.Context) error
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type sessionReader interface {
	Get(ctx context.Context, sessionID string) (*session.Session, error)
}

type Params struct {
	Config         *config.Config
	Logger         *logger.Logger
	Redis          Redis
	Sessions       sessionReader
	AuthService    auth.Service
	GearService    gears.Service
	DraftService   drafts.Service
	Gatherer       prometheus.Gatherer
	HTTPMetrics    *metrics.HTTPMetrics
	GalleryMetrics *metrics.GalleryMetrics
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	cookie := middleware.NewSessionCookie(cfg.Session)
	corsCfg := cfg.CORS
	if len(corsCfg.AllowedOrigins) == 0 && cfg.App.IsDev() {
		corsCfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(corsCfg),
		middleware.Session(cookie, logg),
	)

	requireSession := middleware.RequireSession(p.Sessions, cookie, logg)
	loginLimit := middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), p.Redis, logg)
	registerLimit := middleware.AuthRateLimit(middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit), p.Redis, logg)

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, p.Redis, logg))
	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	authHandlers := controllers.NewAuthHandlers(p.AuthService, cookie, logg)
	draftHandlers := controllers.NewDraftHandlers(p.DraftService, cfg.Uploads, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/taxonomy", controllers.Taxonomy(p.GearService))

		r.Route("/markup", func(r chi.Router) {
			r.Post("/markdown", controllers.MarkupToMarkdown(p.GalleryMetrics, logg))
			r.Post("/html", controllers.MarkupToHTML(p.GalleryMetrics, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimit).Post("/login", authHandlers.Login)
			r.With(registerLimit).Post("/register", authHandlers.Register)
			r.Post("/logout", authHandlers.Logout)
			r.Post("/refresh", authHandlers.Refresh)
			r.Post("/login-with-token", authHandlers.LoginWithToken)
			r.Post("/check-email", authHandlers.CheckEmail)
			r.Post("/check-nickname", authHandlers.CheckNickname)
			r.Post("/verification-info", authHandlers.VerificationInfo)
			r.Post("/resend-verification", authHandlers.ResendVerification)
			r.Post("/forgot-password", authHandlers.ForgotPassword)
			r.Post("/verify-reset-token", authHandlers.VerifyResetToken)
			r.Post("/reset-password", authHandlers.ResetPassword)
			r.Get("/verify-email", authHandlers.VerifyEmail)
			r.Get("/me", authHandlers.Me)
		})

		r.Route("/gears", func(r chi.Router) {
			r.Get("/", controllers.GearsList(p.GearService, logg))
			r.Get("/{gearId}", controllers.GearDetail(p.GearService, p.AuthService, logg))
			r.With(requireSession).Delete("/{gearId}", controllers.GearDelete(p.GearService, p.AuthService, logg))
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Use(requireSession)
			r.Post("/", draftHandlers.Open)
			r.Route("/{draftId}", func(r chi.Router) {
				r.Get("/", draftHandlers.Get)
				r.Delete("/", draftHandlers.Discard)
				r.Post("/images", draftHandlers.Attach)
				r.Get("/images/{itemId}/preview", draftHandlers.Preview)
				r.Delete("/images/{itemId}", draftHandlers.Remove)
				r.Put("/representative", draftHandlers.SetRepresentative)
				r.Post("/reorder", draftHandlers.Reorder)
				r.Post("/drag/start", draftHandlers.DragStart)
				r.Post("/drag/move", draftHandlers.DragMove)
				r.Post("/drag/end", draftHandlers.DragEnd)
				r.Post("/drag/cancel", draftHandlers.DragCancel)
				r.Post("/submit", draftHandlers.Submit)
			})
		})
	})

	return r
}
