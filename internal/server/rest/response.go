package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/staticstore/internal/common"
	"github.com/dmitrijs2005/staticstore/internal/server/storage"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, statusCode int, code, message string) {
	sendJSON(w, statusCode, errorResponse{Code: code, Message: message})
}

// statusFor maps a service error to its HTTP status and public code.
func statusFor(err error) (int, string) {
	var ve *common.ValidationError
	var re *storage.RemoteError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Code
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.As(err, &re):
		return http.StatusBadGateway, "remote_storage_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
