// Пакет botapi — HTTP-клиент шлюза хранилища (bot API gateway).
// Реализует upstream.Store: поиск элемента по (container, item) и
// последовательное чтение содержимого блоками. Поддерживает TLS
// с кастомным CA (FG_UPSTREAM_CA_CERT) и Bearer-авторизацию.
//
// Контракт шлюза:
//
//	GET /api/v1/messages/{container_id}/{item_id} — метаданные вложения (JSON)
//	GET /api/v1/files/{file_id}/content           — содержимое файла (поток)
//
// Шлюз отдаёт содержимое только последовательно с нулевого смещения,
// Range-заголовки им не поддерживаются.
package botapi

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gofilelink/internal/domain/model"
	"github.com/bigkaa/gofilelink/internal/upstream"
)

// Prometheus-метрики клиента шлюза.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fg_upstream_requests_total",
		Help: "Общее количество запросов к шлюзу хранилища (по операции и статусу).",
	}, []string{"operation", "status"})
)

// itemResponse — ответ шлюза на запрос метаданных вложения.
type itemResponse struct {
	// Kind — вид вложения: document, video, audio, photo
	Kind string `json:"kind"`
	// FileID — идентификатор файла на стороне шлюза
	FileID string `json:"file_id"`
	// FileName — имя файла (может отсутствовать)
	FileName string `json:"file_name,omitempty"`
	// FileSize — размер файла в байтах
	FileSize int64 `json:"file_size"`
	// MimeType — MIME-тип (может отсутствовать)
	MimeType string `json:"mime_type,omitempty"`
}

// supportedKinds — виды вложений, которые шлюз умеет отдавать.
var supportedKinds = map[string]model.MediaKind{
	"document": model.KindDocument,
	"video":    model.KindVideo,
	"audio":    model.KindAudio,
	"photo":    model.KindPhoto,
}

// Client — HTTP-клиент шлюза хранилища.
type Client struct {
	// lookupClient — запросы метаданных (с таймаутом)
	lookupClient *http.Client
	// streamClient — чтение содержимого (без общего таймаута:
	// длительность потока не ограничивается, отмена — через контекст запроса)
	streamClient *http.Client
	baseURL      string
	token        string
	logger       *slog.Logger
}

// New создаёт клиент шлюза хранилища.
// baseURL — базовый URL шлюза (например, http://bot-gateway:8081).
// token — Bearer-токен авторизации (пустая строка — без авторизации).
// caCertPath — путь к CA-сертификату для TLS (пустая строка — стандартный пул).
// lookupTimeout — таймаут запросов метаданных (FG_UPSTREAM_TIMEOUT).
func New(baseURL, token, caCertPath string, lookupTimeout time.Duration, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("не задан URL шлюза хранилища")
	}

	transport := &http.Transport{
		// Пул idle-соединений для переиспользования между запросами
		MaxIdleConnsPerHost: 10,
	}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата шлюза: %w", err)
		}
		transport.TLSClientConfig = tlsConfig
		logger.Info("CA-сертификат шлюза добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	return &Client{
		lookupClient: &http.Client{Timeout: lookupTimeout, Transport: transport},
		streamClient: &http.Client{Transport: transport},
		baseURL:      normalizeURL(baseURL),
		token:        token,
		logger:       logger.With(slog.String("component", "botapi_client")),
	}, nil
}

// Resolve ищет вложение сообщения item в контейнере container.
// Возвращает upstream.ErrNotFound при 404 от шлюза или неподдерживаемом
// виде вложения.
func (c *Client) Resolve(ctx context.Context, containerID, itemID int64) (*upstream.Item, error) {
	reqURL := fmt.Sprintf("%s/api/v1/messages/%d/%d", c.baseURL, containerID, itemID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("создание запроса Resolve: %w", err)
	}
	c.setAuth(req)

	resp, err := c.lookupClient.Do(req)
	if err != nil {
		upstreamRequestsTotal.WithLabelValues("resolve", "error").Inc()
		return nil, fmt.Errorf("запрос метаданных к шлюзу: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// продолжаем разбор
	case http.StatusNotFound:
		upstreamRequestsTotal.WithLabelValues("resolve", "not_found").Inc()
		return nil, upstream.ErrNotFound
	default:
		upstreamRequestsTotal.WithLabelValues("resolve", "error").Inc()
		return nil, fmt.Errorf("шлюз вернул статус %d для %d/%d", resp.StatusCode, containerID, itemID)
	}

	var item itemResponse
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		upstreamRequestsTotal.WithLabelValues("resolve", "error").Inc()
		return nil, fmt.Errorf("разбор ответа шлюза: %w", err)
	}

	kind, ok := supportedKinds[item.Kind]
	if !ok {
		// Сообщение есть, но вложение неподдерживаемого вида
		upstreamRequestsTotal.WithLabelValues("resolve", "not_found").Inc()
		return nil, upstream.ErrNotFound
	}

	upstreamRequestsTotal.WithLabelValues("resolve", "success").Inc()

	c.logger.Debug("Элемент найден в хранилище",
		slog.Int64("container_id", containerID),
		slog.Int64("item_id", itemID),
		slog.String("kind", string(kind)),
		slog.Int64("size", item.FileSize),
	)

	return &upstream.Item{
		Kind:     kind,
		Name:     item.FileName,
		Size:     item.FileSize,
		MimeType: item.MimeType,
		Locator: model.Locator{
			ContainerID: containerID,
			ItemID:      itemID,
			RemoteID:    item.FileID,
		},
	}, nil
}

// OpenBlocks открывает последовательное чтение содержимого файла.
// Возвращаемый BlockReader обязан быть закрыт вызывающим кодом.
func (c *Client) OpenBlocks(ctx context.Context, locator model.Locator, blockSize int64) (upstream.BlockReader, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("некорректный размер блока: %d", blockSize)
	}

	reqURL := fmt.Sprintf("%s/api/v1/files/%s/content", c.baseURL, locator.RemoteID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("создание запроса содержимого: %w", err)
	}
	c.setAuth(req)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		upstreamRequestsTotal.WithLabelValues("open_blocks", "error").Inc()
		return nil, fmt.Errorf("запрос содержимого к шлюзу: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// продолжаем чтение
	case http.StatusNotFound:
		resp.Body.Close()
		upstreamRequestsTotal.WithLabelValues("open_blocks", "not_found").Inc()
		return nil, upstream.ErrNotFound
	default:
		resp.Body.Close()
		upstreamRequestsTotal.WithLabelValues("open_blocks", "error").Inc()
		return nil, fmt.Errorf("шлюз вернул статус %d для содержимого %s", resp.StatusCode, locator.RemoteID)
	}

	upstreamRequestsTotal.WithLabelValues("open_blocks", "success").Inc()

	return &blockReader{
		body: resp.Body,
		buf:  make([]byte, blockSize),
	}, nil
}

// blockReader — чтение тела ответа шлюза блоками фиксированного размера.
// Буфер переиспользуется между вызовами Next.
type blockReader struct {
	body io.ReadCloser
	buf  []byte
}

// Next возвращает следующий блок содержимого или io.EOF после последнего.
// Последний блок может быть короче blockSize.
func (r *blockReader) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n, err := io.ReadFull(r.body, r.buf)
	if n > 0 {
		// Неполный последний блок — отдаём то, что прочитано,
		// EOF вернётся на следующем вызове
		return r.buf[:n], nil
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, io.EOF
	}
	return nil, fmt.Errorf("чтение блока из шлюза: %w", err)
}

// Close закрывает соединение с шлюзом.
func (r *blockReader) Close() error {
	return r.body.Close()
}

// setAuth добавляет Bearer-токен, если он задан.
func (c *Client) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA-сертификатом.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &tls.Config{
		RootCAs: caCertPool,
	}, nil
}

// normalizeURL убирает trailing slash из URL.
func normalizeURL(rawURL string) string {
	return strings.TrimRight(rawURL, "/")
}
