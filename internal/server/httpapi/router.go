package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/agencyhub/internal/logging"
	"github.com/dmitrijs2005/agencyhub/internal/server/auth"
)

// NewRouter assembles the HTTP surface: the /rpc/ operations, a liveness
// probe and the Prometheus scrape endpoint.
func NewRouter(svc AuthProvider, codec *auth.Codec, logger logging.Logger) http.Handler {
	h := &handlers{svc: svc, logger: logger.With("module", "httpapi")}

	r := chi.NewRouter()
	r.Use(recoverer(h.logger))
	r.Use(requestLogger(h.logger))
	r.Use(metricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/rpc", func(r chi.Router) {
		r.Use(bearerAuth(codec))

		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/verifyLocalToken", h.verifyLocalToken)
		r.Post("/requestPasswordReset", h.requestPasswordReset)
		r.Post("/resetPassword", h.resetPassword)
		r.Post("/me", h.me)
		r.Post("/listAllUsers", h.listAllUsers)
		r.Post("/adminLoginAs", h.adminLoginAs)
		r.Post("/getEmailTemplates", h.getEmailTemplates)
	})

	return r
}
