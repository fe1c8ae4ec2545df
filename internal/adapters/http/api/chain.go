package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
)

// ChainOptions configures the middleware wrapped around the mux.
type ChainOptions struct {
	ServiceName    string
	AllowedOrigins []string
	LogLevel       slog.Level
	JSON           bool
}

// Chain wraps next with request logging and CORS handling for browser clients.
func Chain(next http.Handler, o ChainOptions) http.Handler {
	if o.ServiceName == "" {
		o.ServiceName = "langvote"
	}

	reqLogger := httplog.NewLogger(o.ServiceName, httplog.Options{
		JSON:             o.JSON,
		LogLevel:         o.LogLevel,
		Concise:          true,
		MessageFieldName: "msg",
		Tags: map[string]string{
			"component": "http",
		},
	})

	withCORS := cors.Handler(cors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})(next)

	return httplog.RequestLogger(reqLogger)(withCORS)
}
