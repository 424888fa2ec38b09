// Package middleware holds the HTTP middleware mounted by the REST router:
// request ids, panic recovery, CORS, bearer auth, access logs and the
// per-user limiter guarding the AI endpoints.
package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler
