// Пакет links — построение публичных ссылок на файлы.
// Чистое форматирование строк без I/O: набор URL для одного файла,
// короткий хэш для ETag и подпись ссылок ограниченного срока действия.
package links

import (
	"crypto/md5" //nolint:gosec // G501: не криптографический, только для ETag
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/gofilelink/internal/media"
)

// URLSet — набор публичных ссылок на один файл.
// Ключи JSON совпадают с форматом ответа /info/{file_id}.
type URLSet struct {
	Download      string `json:"download"`
	DownloadNamed string `json:"download_named"`
	Stream        string `json:"stream"`
	StreamNamed   string `json:"stream_named"`
	Direct        string `json:"direct"`
	Info          string `json:"info"`
}

// BuildURLs формирует набор ссылок на файл относительно baseURL.
// Имя файла санитизируется и кодируется для сегмента пути.
// Чистая функция: одинаковые аргументы всегда дают одинаковый набор.
func BuildURLs(fileID, filename, baseURL string) URLSet {
	base := strings.TrimRight(baseURL, "/")
	encoded := EncodeName(media.SafeFilename(filename))

	return URLSet{
		Download:      fmt.Sprintf("%s/download/%s", base, fileID),
		DownloadNamed: fmt.Sprintf("%s/download/%s/%s", base, fileID, encoded),
		Stream:        fmt.Sprintf("%s/stream/%s", base, fileID),
		StreamNamed:   fmt.Sprintf("%s/stream/%s/%s", base, fileID, encoded),
		Direct:        fmt.Sprintf("%s/direct/%s/%s", base, fileID, encoded),
		Info:          fmt.Sprintf("%s/info/%s", base, fileID),
	}
}

// EncodeName кодирует имя файла для сегмента URL-пути.
// Кодируются все байты, кроме незарезервированных символов RFC 3986,
// поэтому имя однозначно декодируется любым HTTP-клиентом.
func EncodeName(name string) string {
	const upperhex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
		}
	}
	return b.String()
}

// FileHash вычисляет короткий хэш ссылки для слабого ETag.
// Зависит только от идентификатора и размера: содержимое файла
// в хранилище неизменно после загрузки.
func FileHash(fileID string, size int64) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%d", fileID, size))) //nolint:gosec // G401: не криптографический
	return hex.EncodeToString(sum[:])[:16]
}

// Signer выписывает токены доступа к файлам для подписанных ссылок.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner создаёт подписанта ссылок.
// secret — общий секрет HS256, ttl — срок действия токена.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Sign выписывает токен доступа к указанному файлу.
// Токен добавляется к ссылке query-параметром token.
func (s *Signer) Sign(fileID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   fileID,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("подпись токена доступа: %w", err)
	}
	return signed, nil
}
