package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// The API is an internal tool, so any origin may call it. Only the
// methods the routes actually serve are advertised.
const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "GET, PUT, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, Accept, Origin"
	corsMaxAge       = "86400"
)

func setCORSHeaders(set func(name, value string)) {
	set("Access-Control-Allow-Origin", corsAllowOrigin)
	set("Access-Control-Allow-Methods", corsAllowMethods)
	set("Access-Control-Allow-Headers", corsAllowHeaders)
	set("Access-Control-Max-Age", corsMaxAge)
}

// corsMiddleware decorates every API response with CORS headers.
func corsMiddleware(ctx huma.Context, next func(huma.Context)) {
	setCORSHeaders(ctx.SetHeader)
	next(ctx)
}

// registerPreflight answers OPTIONS at the mux level; huma middleware
// never sees methods its routes do not declare.
func registerPreflight(mux *http.ServeMux) {
	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, _ *http.Request) {
		setCORSHeaders(w.Header().Set)
		w.WriteHeader(http.StatusNoContent)
	})
}
