// requestid.go — middleware назначения идентификатора запроса.
// Идентификатор попадает в контекст, в логи и в заголовок X-Request-Id ответа.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const (
	// ContextKeyRequestID — идентификатор запроса в контексте.
	ContextKeyRequestID contextKey = "request_id"
)

// headerRequestID — заголовок для передачи идентификатора запроса.
const headerRequestID = "X-Request-Id"

// RequestID возвращает middleware, назначающий каждому запросу уникальный
// идентификатор. Если клиент прислал X-Request-Id, используется он.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(headerRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			w.Header().Set(headerRequestID, requestID)

			ctx := context.WithValue(r.Context(), ContextKeyRequestID, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext извлекает идентификатор запроса из контекста.
// Возвращает пустую строку, если идентификатор не назначен.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(ContextKeyRequestID).(string)
	return requestID
}
