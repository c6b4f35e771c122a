package api

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/userdesk/user-portal/internal/api/handler"
	"github.com/userdesk/user-portal/internal/api/middleware"
	"github.com/userdesk/user-portal/internal/api/session"
	"github.com/userdesk/user-portal/internal/api/view"
	"github.com/userdesk/user-portal/internal/core/service"
	mongodb "github.com/userdesk/user-portal/internal/infrastructure/db/mongo"
)

// NewRouter builds and returns the Echo instance with all routes registered.
//
// The access rules live in middleware.DefaultPolicy. The CSRF exemption for
// the console family and the absence of an X-Frame-Options header are both
// deliberate: the embedded DB console must accept forwarded requests and be
// frameable. Neither is an omission; see DESIGN.md.
func NewRouter(db *mongo.Database, sessions *session.Manager, consolePath, consoleTarget string, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("userportal"))
	e.Use(middleware.Session(sessions))
	e.Use(csrfMiddleware(consolePath))
	e.Use(middleware.Enforce(middleware.DefaultPolicy(activeConsolePath(consolePath, consoleTarget))))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	accountService := service.NewAccountService(userRepo, log)
	loginService := service.NewLoginService(userRepo, log)
	authHandler := handler.NewAuthHandler(loginService, sessions, log)
	userHandler := handler.NewUserHandler(accountService, log)

	// --- Auth routes ---
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)
	e.GET("/logout", authHandler.Logout)
	e.POST("/logout", authHandler.Logout)
	e.GET("/perform_logout", authHandler.Logout)
	e.POST("/perform_logout", authHandler.Logout)

	// --- Registration ---
	e.GET("/register", userHandler.RegisterForm)
	e.POST("/register", userHandler.Register)

	// --- Authenticated pages ---
	e.GET("/homepage", userHandler.Homepage)

	// --- Admin pages (role gate enforced by the access policy) ---
	e.GET("/admin", userHandler.AdminPage)
	e.GET("/users", userHandler.UsersPage)
	e.GET("/delete", userHandler.DeleteForm)
	e.POST("/delete", userHandler.Delete)
	e.GET("/delete_success", userHandler.DeleteSuccess)
	e.GET("/delete-error", userHandler.DeleteError)

	// --- DB console (optional reverse proxy, frameable by design) ---
	if consoleTarget != "" {
		target, err := url.Parse(consoleTarget)
		if err != nil {
			return nil, fmt.Errorf("parse console target: %w", err)
		}
		console := e.Group(consolePath)
		console.Use(echomiddleware.Proxy(echomiddleware.NewRoundRobinBalancer(
			[]*echomiddleware.ProxyTarget{{URL: target}},
		)))
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}

// csrfMiddleware protects every state-changing form submission; only the DB
// console family is exempt.
func csrfMiddleware(consolePath string) echo.MiddlewareFunc {
	return echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup: "form:_csrf",
		Skipper: func(c echo.Context) bool {
			if consolePath == "" {
				return false
			}
			path := c.Request().URL.Path
			return path == consolePath || strings.HasPrefix(path, consolePath+"/")
		},
	})
}

// activeConsolePath returns the console prefix for the access policy, or ""
// when no console is configured so the path family stays protected.
func activeConsolePath(consolePath, consoleTarget string) string {
	if consoleTarget == "" {
		return ""
	}
	return consolePath
}
