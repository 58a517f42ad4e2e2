package services

import (
	"net/url"
	"strings"

	"github.com/hometaste/hometaste-api/models"
)

// AccessDecision is the outcome of a role check. Redirect is set when access is denied.
type AccessDecision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

// CheckAccess decides whether principal may open a page or endpoint reserved for required.
// A nil principal means the user is signed in but has no profile yet; access is denied.
func CheckAccess(principal *Principal, required models.Role, path string) AccessDecision {
	if principal == nil {
		return AccessDecision{Redirect: SignInPath(path)}
	}
	if principal.Role != required {
		return AccessDecision{Redirect: "/"}
	}
	return AccessDecision{Allowed: true}
}

// SignInPath is the sign-in page that sends the user back to path afterwards
func SignInPath(path string) string {
	if path == "" {
		return "/auth"
	}
	return "/auth?redirect=" + strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}

// HomePath is where a user lands after signing in
func HomePath(role models.Role) string {
	switch role {
	case models.RoleCook:
		return "/cook/dashboard"
	case models.RoleCustomer:
		return "/customer/feed"
	case models.RoleDelivery:
		return "/delivery/dashboard"
	}
	return "/"
}
