package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/shopcore/internal/infra/remote"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
	"github.com/rs/zerolog/log"
)

// Response 所有 API 回應的外層，與遠端服務格式一致
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func SuccessJSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func CreatedJSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: data})
}

// ErrorJSON message 直接顯示給使用者
func ErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Message: message})
}

// WriteError 依錯誤類型決定 HTTP 狀態碼，訊息使用 service.UserMessage
func WriteError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	}
	ErrorJSON(w, status, service.UserMessage(err))
}

func StatusOf(err error) int {
	var remoteErr *remote.RemoteError
	var connErr *remote.ConnectivityError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrNotBuyer):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidIdentity), errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrCheckoutBlocked), errors.Is(err, service.ErrStoreClosed):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.As(err, &remoteErr):
		if remoteErr.Status >= http.StatusInternalServerError || remoteErr.Status < http.StatusBadRequest {
			return http.StatusBadGateway
		}
		return remoteErr.Status
	case errors.As(err, &connErr), errors.Is(err, remote.ErrMalformedResponse):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("encode response failed")
	}
}
