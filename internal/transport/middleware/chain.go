package middleware

import (
	"net/http"
	"slices"
)

// Middleware decorates a handler.
type Middleware func(http.Handler) http.Handler

// Chain composes mws into one Middleware. The first element sees the
// request first and the response last.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for _, mw := range slices.Backward(mws) {
			h = mw(h)
		}
		return h
	}
}
