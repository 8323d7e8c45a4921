package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/dmitrymomot/publishkit/pkg/tenant"
)

const (
	headerUserID    = "X-User-ID"
	headerSuperuser = "X-User-Superuser"
)

// principalFromHeaders installs the caller identity asserted by the
// authenticating proxy. Requests without a valid user id stay anonymous.
func principalFromHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(headerUserID))
		if err != nil || id == uuid.Nil {
			next.ServeHTTP(w, r)
			return
		}
		super, _ := strconv.ParseBool(r.Header.Get(headerSuperuser))
		ctx := tenant.WithPrincipal(r.Context(), tenant.Principal{UserID: id, Superuser: super})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
