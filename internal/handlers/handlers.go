package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/tokenwallet/docs"
	adminhandlers "github.com/GlebRadaev/tokenwallet/internal/handlers/admin"
	authhandlers "github.com/GlebRadaev/tokenwallet/internal/handlers/auth"
	dashboardhandlers "github.com/GlebRadaev/tokenwallet/internal/handlers/dashboard"
	importhandlers "github.com/GlebRadaev/tokenwallet/internal/handlers/importer"
	managerhandlers "github.com/GlebRadaev/tokenwallet/internal/handlers/manager"
	wallethandlers "github.com/GlebRadaev/tokenwallet/internal/handlers/wallet"
	"github.com/GlebRadaev/tokenwallet/internal/metrics"
	"github.com/GlebRadaev/tokenwallet/internal/service"
	"github.com/GlebRadaev/tokenwallet/pkg/auth"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	GetTransactions(w http.ResponseWriter, r *http.Request)
	GetBadge(w http.ResponseWriter, r *http.Request)
}

type DashboardHandler interface {
	Show(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	SetBalance(w http.ResponseWriter, r *http.Request)
	SetRole(w http.ResponseWriter, r *http.Request)
	ListUsers(w http.ResponseWriter, r *http.Request)
}

type ManagerHandler interface {
	AdjustBalance(w http.ResponseWriter, r *http.Request)
}

type ImportHandler interface {
	Preview(w http.ResponseWriter, r *http.Request)
	Confirm(w http.ResponseWriter, r *http.Request)
}

// Options carry what the router needs besides the handlers themselves.
type Options struct {
	Tokens           auth.JWTServiceInterface
	Metrics          *metrics.Metrics
	LoginRate        float64
	LoginBurst       int
	ManagerMaxAmount int64
	AllowedOrigins   []string
}

type Handlers struct {
	AuthHandler      AuthHandler
	WalletHandler    WalletHandler
	DashboardHandler DashboardHandler
	AdminHandler     AdminHandler
	ManagerHandler   ManagerHandler
	ImportHandler    ImportHandler

	users UserFinder
	opts  Options
}

func New(s *service.Services, opts Options) *Handlers {
	return &Handlers{
		AuthHandler:      authhandlers.New(s.AuthService),
		WalletHandler:    wallethandlers.New(s.LedgerService, s.BadgeService),
		DashboardHandler: dashboardhandlers.New(s.LedgerService, s.UserService, opts.ManagerMaxAmount),
		AdminHandler:     adminhandlers.New(s.LedgerService, s.UserService),
		ManagerHandler:   managerhandlers.New(s.LedgerService),
		ImportHandler:    importhandlers.New(s.ProvisionService),
		users:            s.AuthService,
		opts:             opts,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	origins := h.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders: []string{"Authorization"},
			MaxAge:         300,
		}),
		h.opts.Metrics.Middleware,
	)
	r.Handle("/metrics", h.opts.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))

	authenticated := func(r chi.Router) {
		r.Use(auth.Middleware(h.opts.Tokens), LoadActor(h.users))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.AuthHandler.Register)
			r.With(RateLimit(h.opts.LoginRate, h.opts.LoginBurst)).Post("/login", h.AuthHandler.Login)
			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Post("/logout", h.AuthHandler.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			authenticated(r)
			r.Get("/dashboard", h.DashboardHandler.Show)
			r.Route("/wallet", func(r chi.Router) {
				r.Get("/balance", h.WalletHandler.GetBalance)
				r.Get("/transactions", h.WalletHandler.GetTransactions)
				r.Get("/badge", h.WalletHandler.GetBadge)
			})
			r.Route("/admin", func(r chi.Router) {
				r.Post("/balance", h.AdminHandler.SetBalance)
				r.Post("/role", h.AdminHandler.SetRole)
				r.Get("/users", h.AdminHandler.ListUsers)
				r.Post("/import/preview", h.ImportHandler.Preview)
				r.Post("/import/confirm", h.ImportHandler.Confirm)
			})
			r.Post("/manager/balance", h.ManagerHandler.AdjustBalance)
		})
	})

	return r
}
