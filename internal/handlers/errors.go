package handlers

import (
	"net/http"
	"taskboard/internal/logger"
	"taskboard/internal/service"

	"go.uber.org/zap"
)

// handleServiceError переводит ошибку сервиса в HTTP-ответ.
// Бизнес-ошибки уходят клиенту как есть, всё остальное - 500
// с общим сообщением, детали остаются в серверных логах
func handleServiceError(w http.ResponseWriter, err error, operation string) {
	if busErr, ok := service.AsBusinessError(err); ok {
		statusCode := mapBusinessErrorToHTTP(busErr.Code)

		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("operation", operation),
			zap.String("error_code", busErr.Code),
			zap.Int("http_status", statusCode))

		fields := []Payload{toPayload("message", busErr.Message)}
		for key, detail := range busErr.Details {
			fields = append(fields, toPayload(key, detail))
		}
		responseWithFields(w, statusCode, fields...)
		return
	}

	logger.Error("HTTP: Ошибка Service", err, zap.String("operation", operation))
	responseWithError(w, http.StatusInternalServerError, "Server error")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation, service.CodeTitleConflict, service.CodeNoUsers, service.CodeUserExists:
		return http.StatusBadRequest
	case service.CodeVersionConflict:
		return http.StatusConflict
	case service.CodeInvalidCredentials, service.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
