package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"pessoas/metrics"
)

// NewRouter wires the pessoas API. The health check is registered bare so
// that it stays cheap and independent of everything else. /metrics is only
// served when gatherer is not nil.
func NewRouter(h *Handler, log zerolog.Logger, gatherer prometheus.Gatherer) http.Handler {
	router := httprouter.New()

	handle := func(method, route string, next httprouter.Handle) {
		router.Handle(method, route, chain(next,
			withRequestID(log),
			withAccessLog(route, h.metrics),
			withRecovery(),
		))
	}

	router.GET("/health-check", h.HealthCheck)

	handle(http.MethodPost, "/pessoas", h.CreatePessoa)
	handle(http.MethodGet, "/pessoas", h.GetPessoas)
	handle(http.MethodGet, "/pessoas/:id", h.GetPessoa)
	handle(http.MethodGet, "/contagem-pessoas", h.GetPessoaCount)

	if gatherer != nil {
		router.Handler(http.MethodGet, "/metrics", metrics.Handler(gatherer))
	}

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeProblem(w, http.StatusNotFound, "")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeProblem(w, http.StatusMethodNotAllowed, "")
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, rec interface{}) {
		log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("panic recovered")
		writeInternalError(w)
	}

	return router
}
