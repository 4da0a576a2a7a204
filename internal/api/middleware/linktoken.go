// linktoken.go — middleware проверки подписанных ссылок.
// Токен — HS256 JWT в query-параметре token; claim sub привязывает токен
// к конкретному идентификатору файла. Middleware включается только при
// заданном секрете подписи (по умолчанию ссылки публичные).
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/bigkaa/gofilelink/internal/api/errors"
)

// LinkAuth — middleware проверки токенов доступа к файлам.
type LinkAuth struct {
	secret []byte
	leeway time.Duration
	logger *slog.Logger
}

// NewLinkAuth создаёт middleware проверки подписанных ссылок.
// secret — общий секрет подписи HS256.
// leeway — допустимое отклонение времени при проверке срока действия.
func NewLinkAuth(secret string, leeway time.Duration, logger *slog.Logger) *LinkAuth {
	return &LinkAuth{
		secret: []byte(secret),
		leeway: leeway,
		logger: logger.With(slog.String("component", "link_auth")),
	}
}

// Middleware возвращает HTTP middleware, требующий действительный токен
// в query-параметре token. Токен принимается только для того файла,
// на который он выписан (sub == file_id из пути запроса).
func (l *LinkAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.URL.Query().Get("token")
			if tokenString == "" {
				apierrors.Unauthorized(w, "Отсутствует токен доступа")
				return
			}

			claims := &jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims,
				func(*jwt.Token) (interface{}, error) { return l.secret, nil },
				jwt.WithValidMethods([]string{"HS256"}),
				jwt.WithExpirationRequired(),
				jwt.WithLeeway(l.leeway),
			)
			if err != nil {
				l.logger.Debug("Проверка токена не пройдена",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Невалидный или просроченный токен")
				return
			}

			if !token.Valid {
				apierrors.Unauthorized(w, "Невалидный токен")
				return
			}

			// Токен действителен только для запрошенного файла
			fileID := chi.URLParam(r, "fileID")
			if claims.Subject == "" || claims.Subject != fileID {
				apierrors.Unauthorized(w, "Токен выписан для другого файла")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
