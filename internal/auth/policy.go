package auth

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
)

const (
	SignInPath       = "/auth/sign-in"
	UnauthorizedPath = "/unauthorized"
)

type Decision int

const (
	DecisionAllow Decision = iota
	DecisionNoSession
	DecisionForbidden
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionNoSession:
		return "no_session"
	case DecisionForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Authorize is the single capability check used by every enforcement point.
// A nil or inactive principal has no session; an empty allow-list only
// requires authentication.
func Authorize(p *Principal, required ...models.UserRole) Decision {
	if p == nil || p.Status != models.StatusActive {
		return DecisionNoSession
	}
	if len(required) == 0 {
		return DecisionAllow
	}
	for _, r := range required {
		if p.Role == r {
			return DecisionAllow
		}
	}
	return DecisionForbidden
}

// Rule restricts every path under Prefix to Roles.
type Rule struct {
	Prefix string
	Roles  []models.UserRole
}

// Policy maps request paths to guard requirements.
type Policy struct {
	Public    []string
	Protected []string
	Rules     []Rule
}

var DefaultPublicPaths = []string{
	"/auth/sign-in",
	"/auth/sign-up",
	"/auth/forgot-password",
	"/auth/reset-password",
	UnauthorizedPath,
}

var DefaultProtectedPaths = []string{
	"/dashboard",
	"/admin",
	"/profile",
	"/account",
	"/controls",
	"/reports",
	"/maps",
}

// NewPolicy builds the dashboard policy. A non-empty protected list replaces
// the default matcher.
func NewPolicy(protected []string) *Policy {
	if len(protected) == 0 {
		protected = DefaultProtectedPaths
	}
	lowered := make([]string, len(protected))
	for i, prefix := range protected {
		lowered[i] = strings.ToLower(prefix)
	}
	return &Policy{
		Public:    DefaultPublicPaths,
		Protected: lowered,
		Rules: []Rule{
			{Prefix: "/admin/alerts", Roles: []models.UserRole{models.RoleAdmin, models.RoleSuperUser, models.RoleStandardUser}},
			{Prefix: "/admin", Roles: []models.UserRole{models.RoleAdmin}},
		},
	}
}

func (p *Policy) IsPublic(path string) bool {
	return matchAny(p.Public, path)
}

// Guarded reports whether the guard applies to path at all.
func (p *Policy) Guarded(path string) bool {
	return !p.IsPublic(path) && matchAny(p.Protected, path)
}

// RequiredRoles returns the allow-list of the longest matching rule, or nil
// when any authenticated principal may pass.
func (p *Policy) RequiredRoles(path string) []models.UserRole {
	best := -1
	var roles []models.UserRole
	for _, r := range p.Rules {
		if hasPathPrefix(path, r.Prefix) && len(r.Prefix) > best {
			best = len(r.Prefix)
			roles = r.Roles
		}
	}
	return roles
}

// Evaluate decides a navigation to path by principal.
func (p *Policy) Evaluate(path string, principal *Principal) Decision {
	if !p.Guarded(path) {
		return DecisionAllow
	}
	return Authorize(principal, p.RequiredRoles(path)...)
}

// Redirect returns where a denied navigation is sent, or "" when allowed.
func Redirect(d Decision) string {
	switch d {
	case DecisionNoSession:
		return SignInPath
	case DecisionForbidden:
		return UnauthorizedPath
	}
	return ""
}

func matchAny(prefixes []string, path string) bool {
	for _, prefix := range prefixes {
		if hasPathPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// hasPathPrefix matches whole path segments, so "/admin" covers
// "/admin/users" but not "/administrator".
func hasPathPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
