package httpadapter

import (
	"net/http"
	"strings"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

// The upstream gateway authenticates callers and forwards their identity.
const (
	userIDHeader   = "X-User-Id"
	userRoleHeader = "X-User-Role"
	adminRole      = "admin"
)

func principalFromRequest(r *http.Request) (domain.Principal, bool) {
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))
	if userID == "" {
		return domain.Principal{}, false
	}
	role := strings.TrimSpace(r.Header.Get(userRoleHeader))
	return domain.Principal{
		UserID:  userID,
		IsAdmin: strings.EqualFold(role, adminRole),
	}, true
}

// requirePrincipal writes 401 and returns false when no identity was forwarded.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	principal, ok := principalFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return domain.Principal{}, false
	}
	return principal, true
}
