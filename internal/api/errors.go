package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/oddlyprompt/ExitorDie/internal/score"
)

// writeError writes a structured error response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string, context map[string]interface{}) {
	requestID := middleware.GetReqID(r.Context())

	w.Header().Set("X-Error-Type", errType)
	s.writeJSON(w, status, APIError{
		Type:      errType,
		Message:   message,
		Context:   context,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeSubmissionError maps a pipeline error onto the wire: rejections are
// the client's fault and come back as 400 with the rejection kind as the
// error type; anything else is an opaque 500.
func (s *Server) writeSubmissionError(w http.ResponseWriter, r *http.Request, err error) {
	var rej *score.Rejection
	if !errors.As(err, &rej) {
		s.writeInternalError(w, r, err)
		return
	}

	var context map[string]interface{}
	switch rej.Kind {
	case score.KindUniquenessViolation:
		context = map[string]interface{}{"hash": rej.Hash}
	case score.KindItemValidationFailed:
		context = map[string]interface{}{"index": rej.Index}
	}

	s.writeError(w, r, http.StatusBadRequest, string(rej.Kind), rej.Error(), context)
}

// writeInternalError logs the cause and returns an opaque 500. Internal
// detail never reaches the client.
func (s *Server) writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Printf(
		"internal_error request_id=%s method=%s path=%s error=%q",
		middleware.GetReqID(r.Context()), r.Method, r.URL.Path, err.Error(),
	)
	s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "internal server error", nil)
}

// RecoveryHandler provides panic recovery with structured error logging.
func (s *Server) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				requestID := middleware.GetReqID(r.Context())
				s.logger.Printf(
					"panic_recovered request_id=%s path=%s method=%s panic=%v",
					requestID, r.URL.Path, r.Method, rvr,
				)
				s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal,
					"internal server error",
					map[string]interface{}{"panic": fmt.Sprintf("%v", rvr)})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
