package apperror

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// WriteJSON serializes data to JSON and writes it with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

// WriteError writes err as a standardized error response.
// Internal failures are logged with the request id and answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := FromError(err)
	if appErr.IsInternal() {
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(appErr),
		)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

// Recoverer turns panics raised further down the chain into a 500 response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				zap.L().Error("panic recovered",
					zap.Any("panic", rvr),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Stack("stack"),
				)
				WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Msg: internalMessage})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// MessageResponse is the body of plain success responses.
type MessageResponse struct {
	Msg string `json:"msg" example:"Owner deleted!"`
}
