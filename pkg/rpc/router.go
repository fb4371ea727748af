// Package rpc exposes the tracker's Session Manager and File Index over the
// HTTP RPC surface: POST /rpc/<operation> with a JSON request body and a
// bare JSON array response.
package rpc

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/nilsio/trackerd/internal/logger"
	"github.com/nilsio/trackerd/pkg/trackerstore"
)

// NewRouter builds the chi router serving both the tracker RPCs and the
// unauthenticated health endpoints.
func NewRouter(srv *Server, store trackerstore.Store, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			writeHealth(w, http.StatusOK, "healthy", "")
		})
		r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
			if !store.IsHealthy() {
				writeHealth(w, http.StatusServiceUnavailable, "unhealthy", "storage unreachable")
				return
			}
			writeHealth(w, http.StatusOK, "healthy", "")
		})
	})

	r.Route("/rpc", func(r chi.Router) {
		r.Post("/connectToServer", srv.ConnectToServer)
		r.Post("/resumeSession", srv.ResumeSession)
		r.Post("/disconnectFromServer", srv.DisconnectFromServer)
		r.Post("/sendHeartBeat", srv.SendHeartBeat)
		r.Post("/registerFile", srv.RegisterFile)
		r.Post("/deregisterFile", srv.DeregisterFile)
		r.Post("/getUserFiles", srv.GetUserFiles)
		r.Post("/searchFile", srv.SearchFile)
		r.Post("/getFileHostInfo", srv.GetFileHostInfo)
	})

	return r
}

// requestID assigns a UUID to each request, following the teacher's
// createWithID convention of minting a uuid.NewString() for every new
// resource rather than relying on a non-unique sequential counter. The
// value is stored under chi's own RequestIDKey so middleware.GetReqID and
// the rest of chi's middleware chain keep working unchanged.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.InfoCtx(r.Context(), "rpc request completed",
			logger.RequestID(requestID),
			logger.Operation(r.URL.Path),
			logger.DurationMsAttr(float64(time.Since(start).Microseconds())/1000.0),
		)
	})
}
