package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/userdesk/user-portal/internal/core/domain"
)

// RequirementKind classifies what a path demands from the caller.
type RequirementKind int

const (
	Permit RequirementKind = iota
	RequireAuthenticated
	RequireRole
)

// Requirement is the outcome of evaluating the access policy for a path.
type Requirement struct {
	Kind RequirementKind
	Role string // set when Kind == RequireRole
}

// Rule binds a path pattern to a requirement. A pattern is either an exact
// path or a prefix pattern ending in "/**", which matches the prefix itself
// and everything below it.
type Rule struct {
	Pattern     string
	Requirement Requirement
}

// Policy is an ordered rule list: the first matching rule wins, so more
// specific rules must precede broader ones.
type Policy struct {
	rules    []Rule
	fallback Requirement
}

func NewPolicy(rules []Rule, fallback Requirement) *Policy {
	return &Policy{rules: rules, fallback: fallback}
}

// DefaultPolicy mirrors the portal's access rules:
//  1. login, logout, registration, the static deletion-outcome pages, the
//     operational probes, and the DB console family are open to everyone.
//  2. the admin area plus the user-listing and deletion paths require the
//     admin role.
//  3. every other path requires an authenticated session, any role.
func DefaultPolicy(consolePrefix string) *Policy {
	permit := Requirement{Kind: Permit}
	admin := Requirement{Kind: RequireRole, Role: domain.RoleAdmin}

	rules := []Rule{
		{Pattern: "/login", Requirement: permit},
		{Pattern: "/logout", Requirement: permit},
		{Pattern: "/perform_logout", Requirement: permit},
		{Pattern: "/register", Requirement: permit},
		{Pattern: "/delete_success", Requirement: permit},
		{Pattern: "/delete-error", Requirement: permit},
		{Pattern: "/health/**", Requirement: permit},
		{Pattern: "/metrics", Requirement: permit},
		{Pattern: "/admin/**", Requirement: admin},
		{Pattern: "/users", Requirement: admin},
		{Pattern: "/delete", Requirement: admin},
	}
	if consolePrefix != "" {
		rules = append([]Rule{{Pattern: consolePrefix + "/**", Requirement: permit}}, rules...)
	}

	return NewPolicy(rules, Requirement{Kind: RequireAuthenticated})
}

// Evaluate returns the requirement for a request path. It is a pure function
// of the path: session state plays no part in which rule applies.
func (p *Policy) Evaluate(path string) Requirement {
	for _, r := range p.rules {
		if matches(r.Pattern, path) {
			return r.Requirement
		}
	}
	return p.fallback
}

func matches(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == pattern
}

// Enforce applies the policy to every request before it reaches a handler.
// Unauthenticated requests to protected paths are redirected to the login
// page; authenticated requests lacking the required role get 403.
func Enforce(policy *Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := policy.Evaluate(c.Request().URL.Path)

			switch req.Kind {
			case Permit:
				return next(c)

			case RequireAuthenticated:
				if role, _ := c.Get("role").(string); role == "" {
					return c.Redirect(http.StatusFound, "/login")
				}
				return next(c)

			case RequireRole:
				role, _ := c.Get("role").(string)
				if role == "" {
					return c.Redirect(http.StatusFound, "/login")
				}
				if role != req.Role {
					return echo.NewHTTPError(http.StatusForbidden, "forbidden")
				}
				return next(c)
			}

			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}
}
