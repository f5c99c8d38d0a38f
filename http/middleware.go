package handler

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"pessoas/metrics"
)

const HeaderRequestID = "X-Request-Id"

type middleware func(httprouter.Handle) httprouter.Handle

// chain applies middlewares so that the first one listed runs first.
func chain(h httprouter.Handle, mws ...middleware) httprouter.Handle {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// withRequestID reuses an incoming X-Request-Id or generates one, echoes
// it back and attaches a request-scoped logger carrying it to the context.
func withRequestID(log zerolog.Logger) middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			requestID := r.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set(HeaderRequestID, requestID)

			reqLog := log.With().Str("req_id", requestID).Logger()
			next(w, r.WithContext(reqLog.WithContext(r.Context())), ps)
		}
	}
}

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// withAccessLog logs one line per request and reports it to the recorder.
// Only method, route, path, status and duration are logged; headers such as
// Authorization or Cookie never are.
func withAccessLog(route string, recorder metrics.Recorder) middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next(rec, r, ps)

			duration := time.Since(start)
			recorder.RecordRequest(route, r.Method, rec.statusCode, duration)

			log := zerolog.Ctx(r.Context())
			event := log.Info()
			if rec.statusCode >= 500 {
				event = log.Error()
			} else if rec.statusCode >= 400 {
				event = log.Warn()
			}

			event.
				Str("method", r.Method).
				Str("route", route).
				Str("path", r.URL.Path).
				Int("status", rec.statusCode).
				Dur("duration", duration).
				Msg("http_request")
		}
	}
}

// withRecovery turns a panic into a 500 so the access log still sees it.
func withRecovery() middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			defer func() {
				if rec := recover(); rec != nil {
					zerolog.Ctx(r.Context()).Error().
						Interface("panic", rec).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("stack", string(debug.Stack())).
						Msg("panic recovered")
					writeInternalError(w)
				}
			}()
			next(w, r, ps)
		}
	}
}
