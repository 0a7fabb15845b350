package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Responder writes JSON bodies and maps domain errors to HTTP statuses.
// Error details reach the client only when exposeDetails is set.
type Responder struct {
	exposeDetails bool
}

func NewResponder(exposeDetails bool) *Responder {
	return &Responder{exposeDetails: exposeDetails}
}

// JSON writes a JSON response
func (rs *Responder) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Can't change response at this point, just log
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Success writes a 200 response
func (rs *Responder) Success(w http.ResponseWriter, data any) {
	rs.JSON(w, http.StatusOK, data)
}

// Created writes a 201 Created response
func (rs *Responder) Created(w http.ResponseWriter, data any) {
	rs.JSON(w, http.StatusCreated, data)
}

// Error logs err with the request logger and writes {error, details?}.
func (rs *Responder) Error(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	body := entity.ErrorResponse{Error: message}

	if err != nil {
		if status >= http.StatusInternalServerError {
			ctxzap.Error(ctx, message, zap.Int("status", status), zap.Error(err))
		} else {
			ctxzap.Warn(ctx, message, zap.Int("status", status), zap.Error(err))
		}
		if rs.exposeDetails {
			body.Details = err.Error()
		}
	} else {
		ctxzap.Warn(ctx, message, zap.Int("status", status))
	}

	rs.JSON(w, status, body)
}

// FromError picks the status and generic message for a domain error.
func (rs *Responder) FromError(ctx context.Context, w http.ResponseWriter, err error) {
	status, message := Classify(err)
	rs.Error(ctx, w, status, message, err)
}

// Classify maps the error taxonomy onto an HTTP status and a client-safe message.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, entity.ErrInvalidExtension),
		errors.Is(err, entity.ErrUnsupportedFormat):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, entity.ErrNoFile):
		return http.StatusBadRequest, "no file provided"
	case errors.Is(err, entity.ErrSpeechNotRecognized):
		return http.StatusBadRequest, "speech not recognized"
	case errors.Is(err, entity.ErrUnauthorized), errors.Is(err, entity.ErrInvalidCredentials):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, entity.ErrDocumentNotFound), errors.Is(err, entity.ErrConversationNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, entity.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload too large"
	case errors.Is(err, entity.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage unavailable"
	case errors.Is(err, entity.ErrUpstreamFailure), errors.Is(err, entity.ErrRetrievalFailure):
		return http.StatusInternalServerError, "upstream service failure"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
