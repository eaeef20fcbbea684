package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/internal/auth/store"
	"github.com/aussiebroadwan/accounts/internal/auth/tokenstore"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"

	_ "github.com/aussiebroadwan/accounts/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store  store.Store
	tokens tokenstore.Store

	AuthService    *service.AuthService
	AccountService *service.AccountService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	tokens tokenstore.Store,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		tokens:       tokens,
		logger:       logger,
	}
}

// ApplyRoutes registers every route. The services must be set first.
func (r *Router) ApplyRoutes() {
	// Request logging first, so authentication logs carry the request id.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Authenticate(r.AuthService),
	}

	r.registerAuth()
	r.registerAccounts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Accounts Service API
//	@version		0.1.0
//	@description	Account registration, activation and credential management with JWT access and refresh tokens.
//	@description
//	@description				Every /auth and /accounts response is wrapped in an envelope {status, message, data, errors}.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/accounts
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:    r.AuthService,
		AccountService: r.AccountService,
	}
	authenticated := httpx.RequireAuthenticated()

	r.Mux.HandleFunc("POST /auth/register", h.HandleRegister)
	r.Mux.HandleFunc("GET /auth/activate", h.HandleActivate)
	r.Mux.HandleFunc("POST /auth/access-token", h.HandleAccessToken)
	r.Mux.HandleFunc("POST /auth/refresh-token", h.HandleRefreshToken)
	r.Mux.HandleFunc("POST /auth/forgot-password", h.HandleForgotPassword)
	r.Mux.HandleFunc("POST /auth/reset-password", h.HandleResetPassword)

	r.Mux.Handle("POST /auth/logout", httpx.Chain(http.HandlerFunc(h.HandleLogout), authenticated))
	r.Mux.Handle("POST /auth/change-password", httpx.Chain(http.HandlerFunc(h.HandleChangePassword), authenticated))
	r.Mux.Handle("GET /auth/me", httpx.Chain(http.HandlerFunc(h.HandleMe), authenticated))
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{AccountService: r.AccountService}
	admin := httpx.RequireRole(domain.RoleAdmin)

	r.Mux.Handle("GET /accounts", httpx.Chain(http.HandlerFunc(h.HandleList), admin))
	r.Mux.Handle("POST /accounts", httpx.Chain(http.HandlerFunc(h.HandleCreate), admin))
	r.Mux.Handle("GET /accounts/{id}", httpx.Chain(http.HandlerFunc(h.HandleGet), admin))
	r.Mux.Handle("PUT /accounts/{id}", httpx.Chain(http.HandlerFunc(h.HandleUpdate), admin))
	r.Mux.Handle("PATCH /accounts/{id}/status", httpx.Chain(http.HandlerFunc(h.HandleSetStatus), admin))
	r.Mux.Handle("DELETE /accounts/{id}", httpx.Chain(http.HandlerFunc(h.HandleDelete), admin))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.tokens))
}
