package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/13x54n/thamelbar/internal/application/booking"
	"github.com/13x54n/thamelbar/internal/application/identity"
	"github.com/13x54n/thamelbar/internal/application/reward"
	"github.com/13x54n/thamelbar/internal/config"
	"github.com/13x54n/thamelbar/internal/infrastructure/dynamo"
	jwtinfra "github.com/13x54n/thamelbar/internal/infrastructure/jwt"
	"github.com/13x54n/thamelbar/internal/infrastructure/smtp"
	"github.com/13x54n/thamelbar/internal/infrastructure/sns"
	"github.com/13x54n/thamelbar/internal/transport/http/handler"
	appmiddleware "github.com/13x54n/thamelbar/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Accounts    *dynamo.AccountRepo
	Credentials *dynamo.CredentialRepo
	Bookings    *dynamo.BookingRepo
	Points      *dynamo.PointsRepo
	Mailer      smtp.Mailer
	Push        sns.PushSender
	JWTProvider *jwtinfra.Provider
	Verifier    identity.FederatedVerifier // nil when GOOGLE_CLIENT_ID unset
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Staff-Secret"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to credential-issuing and
	// credential-guessing endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	identitySvc := identity.NewService(identity.ServiceDeps{
		Accounts:      deps.Accounts,
		Credentials:   deps.Credentials,
		Mailer:        deps.Mailer,
		Signer:        deps.JWTProvider,
		Verifier:      deps.Verifier,
		CodeExpiry:    cfg.CodeExpiry,
		HandoffExpiry: cfg.HandoffExpiry,
	})
	bookingSvc := booking.NewService(deps.Bookings)
	rewardSvc := reward.NewService(deps.Accounts, deps.Points, deps.Push, cfg.PointsPer100)

	healthH := handler.NewHealthHandler()
	identityH := handler.NewIdentityHandler(identitySvc)
	bookingH := handler.NewBookingHandler(bookingSvc)
	rewardH := handler.NewRewardHandler(rewardSvc)

	authMw := appmiddleware.Auth(deps.JWTProvider)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/identity/code", identityH.RequestCode)
		r.With(sensitiveRL.Limit).Post("/identity/verify", identityH.Verify)
		r.With(sensitiveRL.Limit).Post("/identity/login", identityH.Login)
		r.With(sensitiveRL.Limit).Post("/identity/reset-password", identityH.ResetPassword)
		r.Post("/identity/federated", identityH.Federated)
		r.Post("/identity/mobile/code", identityH.MobileCode)
		r.Post("/identity/mobile/exchange", identityH.MobileExchange)
		r.Get("/bookings/slots", bookingH.Slots)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/identity/me", identityH.Me)
			r.Post("/identity/push-token", identityH.PushToken)
			r.Post("/bookings", bookingH.Create)
			r.Get("/bookings/mine", bookingH.Mine)
			r.Get("/rewards/transactions", rewardH.Transactions)
		})

		// ── Staff-only routes ────────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireStaff(cfg.StaffSecret))

			r.Post("/rewards/earn", rewardH.Earn)
		})
	})

	return r
}
