// Пакет errors — конструкторы стандартных ошибок File Link Gateway.
// Единый формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors //nolint:revive // TODO: переименовать пакет errors, конфликт со stdlib

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Машиночитаемые коды ошибок API.
const (
	CodeInvalidIdentifier = "INVALID_IDENTIFIER"
	CodeNotFound          = "NOT_FOUND"
	CodeFileTooLarge      = "FILE_TOO_LARGE"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeUpstreamError     = "UPSTREAM_ERROR"
	CodeInternalError     = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// InvalidIdentifier — 400 некорректный идентификатор файла.
func InvalidIdentifier(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeInvalidIdentifier, message)
}

// NotFound — 404 файл не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// FileTooLarge — 400 размер файла превышает лимит раздачи.
func FileTooLarge(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeFileTooLarge, message)
}

// UnsatisfiableRange — 416 запрошенный диапазон вне пределов файла.
// По RFC 9110 ответ несёт Content-Range с полным размером ресурса
// и не несёт тела: это терминальный протокольный ответ, а не ошибка API.
func UnsatisfiableRange(w http.ResponseWriter, totalSize int64) {
	w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", totalSize))
	w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
}

// Unauthorized — 401 требуется действительный токен доступа.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// UpstreamError — 500 ошибка обращения к хранилищу.
func UpstreamError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeUpstreamError, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
