package http

import (
	"net"
	"net/http"
	"strconv"

	"github.com/worklens/timeledger-backend-go/internal/domain/session"
	"github.com/worklens/timeledger-backend-go/internal/handler/http/middleware"
)

// principal pulls the authenticated caller resolved by the auth middleware.
func principal(r *http.Request) (session.Principal, bool) {
	return middleware.PrincipalFromContext(r.Context())
}

// clientMeta captures the audit fields recorded on every ledger event.
func clientMeta(r *http.Request) session.ClientMeta {
	var meta session.ClientMeta

	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}
	if ip != "" {
		meta.IPAddress = &ip
	}

	if ua := r.UserAgent(); ua != "" {
		meta.DeviceInfo = &ua
	}

	return meta
}

// pagination reads page/limit query params with service-wide defaults.
func pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func optionalQuery(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}
