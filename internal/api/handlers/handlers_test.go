package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/gofilelink/internal/domain/model"
	"github.com/bigkaa/gofilelink/internal/links"
	"github.com/bigkaa/gofilelink/internal/service"
	"github.com/bigkaa/gofilelink/internal/upstream"
)

// --- Mock-хранилище ---

// mockStore — реализация upstream.Store поверх содержимого в памяти.
type mockStore struct {
	item       *upstream.Item
	resolveErr error
	content    []byte
	openErr    error
	openCalls  atomic.Int32
}

func (m *mockStore) Resolve(_ context.Context, _, _ int64) (*upstream.Item, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return m.item, nil
}

func (m *mockStore) OpenBlocks(_ context.Context, _ model.Locator, blockSize int64) (upstream.BlockReader, error) {
	m.openCalls.Add(1)
	if m.openErr != nil {
		return nil, m.openErr
	}
	return &memBlocks{content: m.content, blockSize: blockSize}, nil
}

// memBlocks — BlockReader поверх среза в памяти.
type memBlocks struct {
	content   []byte
	blockSize int64
	pos       int64
}

func (b *memBlocks) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.pos >= int64(len(b.content)) {
		return nil, io.EOF
	}
	end := b.pos + b.blockSize
	if end > int64(len(b.content)) {
		end = int64(len(b.content))
	}
	block := b.content[b.pos:end]
	b.pos = end
	return block, nil
}

func (b *memBlocks) Close() error { return nil }

// --- Вспомогательные функции ---

// testContent генерирует неповторяющийся по блокам паттерн содержимого.
func testContent(size int64) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte((i*7 + i/251) % 256)
	}
	return buf
}

const testFileID = "-1001234567890_42"

// testItem — стандартный видеофайл в mock-хранилище.
func testItem(size int64) *upstream.Item {
	return &upstream.Item{
		Kind:     model.KindVideo,
		Name:     "movie.mp4",
		Size:     size,
		MimeType: "video/mp4",
		Locator:  model.Locator{ContainerID: -1001234567890, ItemID: 42, RemoteID: "BQACAgIAAx0"},
	}
}

// newTestRouter собирает chi-router с маршрутами раздачи поверх mock-хранилища.
// Повторяет таблицу маршрутов сервера без middleware.
func newTestRouter(store upstream.Store, maxFileSize int64, signer *links.Signer) http.Handler {
	logger := slog.Default()
	cache := service.NewCacheService(16, time.Minute)
	resolver := service.NewResolverService(store, cache, logger)
	streamer := service.NewStreamService(store, 65536, logger)
	health := NewHealthHandler(cache, nil)
	h := NewAPIHandler(resolver, streamer, signer, health, "http://localhost:8080", maxFileSize, logger)

	r := chi.NewRouter()
	r.Get("/", h.Health)
	r.Get("/health", h.Health)
	r.Get("/info/{fileID}", h.FileInfo)
	r.Get("/stream/{fileID}", h.StreamRedirect)
	r.Head("/stream/{fileID}", h.StreamRedirect)
	r.Get("/stream/{fileID}/{filename}", h.StreamFile)
	r.Head("/stream/{fileID}/{filename}", h.StreamFile)
	r.Get("/download/{fileID}", h.DownloadRedirect)
	r.Head("/download/{fileID}", h.DownloadRedirect)
	r.Get("/download/{fileID}/{filename}", h.DownloadFile)
	r.Head("/download/{fileID}/{filename}", h.DownloadFile)
	r.Get("/direct/{fileID}/{filename}", h.DirectLink)
	r.Head("/direct/{fileID}/{filename}", h.DirectLink)
	return r
}

// doRequest выполняет запрос через router и возвращает recorder.
func doRequest(router http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeErrorCode извлекает код ошибки из JSON-ответа.
func decodeErrorCode(t *testing.T, body *bytes.Buffer) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("Ошибка декодирования JSON-ошибки: %v", err)
	}
	return resp.Error.Code
}

// --- Раздача содержимого ---

// TestStreamFile_FullContent — запрос без Range отдаёт файл целиком со
// всеми заголовками раздачи.
func TestStreamFile_FullContent(t *testing.T) {
	const size = 10000000
	content := testContent(size)
	store := &mockStore{item: testItem(size), content: content}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/stream/"+testFileID+"/movie.mp4", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Ожидался статус 200, получен %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Length"); got != "10000000" {
		t.Errorf("Content-Length: ожидалось 10000000, получено %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Content-Type: ожидалось video/mp4, получено %q", got)
	}
	if got := rec.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges: ожидалось bytes, получено %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `inline; filename="movie.mp4"` {
		t.Errorf("Content-Disposition: получено %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("Cache-Control: получено %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin: получено %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Range, Content-Type" {
		t.Errorf("Access-Control-Allow-Headers: получено %q", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options: получено %q", got)
	}
	etag := rec.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"`) || !strings.HasSuffix(etag, `"`) {
		t.Errorf("ETag: ожидался слабый валидатор, получено %q", etag)
	}
	if rec.Header().Get("Content-Range") != "" {
		t.Errorf("Content-Range не должен присутствовать при полном ответе")
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Errorf("Тело ответа не совпадает с содержимым файла")
	}
}

// TestStreamFile_RangeScenarios — частичные запросы по файлу 10 МБ.
func TestStreamFile_RangeScenarios(t *testing.T) {
	const size = 10000000
	content := testContent(size)

	tests := []struct {
		name         string
		rangeHeader  string
		wantStart    int64
		wantEnd      int64
		contentRange string
	}{
		{
			name:         "первый мегабайт",
			rangeHeader:  "bytes=0-1048575",
			wantStart:    0,
			wantEnd:      1048575,
			contentRange: "bytes 0-1048575/10000000",
		},
		{
			name:         "хвост файла",
			rangeHeader:  "bytes=9999000-",
			wantStart:    9999000,
			wantEnd:      9999999,
			contentRange: "bytes 9999000-9999999/10000000",
		},
		{
			name:         "без начала",
			rangeHeader:  "bytes=-1000",
			wantStart:    0,
			wantEnd:      1000,
			contentRange: "bytes 0-1000/10000000",
		},
		{
			name:         "середина",
			rangeHeader:  "bytes=5000000-5000999",
			wantStart:    5000000,
			wantEnd:      5000999,
			contentRange: "bytes 5000000-5000999/10000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{item: testItem(size), content: content}
			router := newTestRouter(store, 0, nil)

			rec := doRequest(router, http.MethodGet, "/stream/"+testFileID+"/movie.mp4",
				map[string]string{"Range": tt.rangeHeader})

			if rec.Code != http.StatusPartialContent {
				t.Fatalf("Ожидался статус 206, получен %d", rec.Code)
			}
			if got := rec.Header().Get("Content-Range"); got != tt.contentRange {
				t.Errorf("Content-Range: ожидалось %q, получено %q", tt.contentRange, got)
			}
			wantLen := tt.wantEnd - tt.wantStart + 1
			if got := rec.Header().Get("Content-Length"); got != fmt.Sprintf("%d", wantLen) {
				t.Errorf("Content-Length: ожидалось %d, получено %q", wantLen, got)
			}
			if !bytes.Equal(rec.Body.Bytes(), content[tt.wantStart:tt.wantEnd+1]) {
				t.Errorf("Тело ответа не совпадает со срезом [%d:%d]", tt.wantStart, tt.wantEnd+1)
			}
		})
	}
}

// TestStreamFile_RangeUnsatisfiable — диапазон за пределами файла.
func TestStreamFile_RangeUnsatisfiable(t *testing.T) {
	const size = 10000000
	store := &mockStore{item: testItem(size), content: testContent(size)}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/stream/"+testFileID+"/movie.mp4",
		map[string]string{"Range": "bytes=20000000-30000000"})

	if rec.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("Ожидался статус 416, получен %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes */10000000" {
		t.Errorf("Content-Range: ожидалось %q, получено %q", "bytes */10000000", got)
	}
	// Терминальный протокольный ответ — без тела
	if rec.Body.Len() != 0 {
		t.Errorf("416 не должен нести тело, получено %d байт", rec.Body.Len())
	}
	// Содержимое при 416 не читается
	if store.openCalls.Load() != 0 {
		t.Errorf("OpenBlocks не должен вызываться при 416")
	}
}

// TestStreamFile_MalformedRange — некорректный Range игнорируется,
// файл отдаётся целиком.
func TestStreamFile_MalformedRange(t *testing.T) {
	const size = 2000
	content := testContent(size)
	store := &mockStore{item: testItem(size), content: content}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/stream/"+testFileID+"/movie.mp4",
		map[string]string{"Range": "bytes=abc-def"})

	if rec.Code != http.StatusOK {
		t.Fatalf("Ожидался статус 200, получен %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Errorf("Ожидалось полное содержимое файла")
	}
}

// TestStreamFile_Head — HEAD отдаёт заголовки без тела и без чтения
// содержимого из хранилища.
func TestStreamFile_Head(t *testing.T) {
	const size = 10000000
	store := &mockStore{item: testItem(size), content: testContent(size)}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodHead, "/stream/"+testFileID+"/movie.mp4", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Ожидался статус 200, получен %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Length"); got != "10000000" {
		t.Errorf("Content-Length: ожидалось 10000000, получено %q", got)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD не должен возвращать тело, получено %d байт", rec.Body.Len())
	}
	if store.openCalls.Load() != 0 {
		t.Errorf("HEAD не должен открывать чтение содержимого")
	}
}

// TestStreamFile_HeadRange — HEAD с Range отдаёт заголовки 206.
func TestStreamFile_HeadRange(t *testing.T) {
	const size = 10000000
	store := &mockStore{item: testItem(size), content: testContent(size)}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodHead, "/stream/"+testFileID+"/movie.mp4",
		map[string]string{"Range": "bytes=0-1048575"})

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("Ожидался статус 206, получен %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 0-1048575/10000000" {
		t.Errorf("Content-Range: получено %q", got)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD не должен возвращать тело")
	}
}

// --- Ошибки резолва ---

func TestStreamFile_NotFound(t *testing.T) {
	store := &mockStore{resolveErr: upstream.ErrNotFound}
	router := newTestRouter(store, 0, nil)

	for _, target := range []string{
		"/stream/" + testFileID + "/movie.mp4",
		"/download/" + testFileID,
	} {
		rec := doRequest(router, http.MethodGet, target, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: ожидался статус 404, получен %d", target, rec.Code)
			continue
		}
		if code := decodeErrorCode(t, rec.Body); code != "NOT_FOUND" {
			t.Errorf("%s: код ошибки %q", target, code)
		}
	}
}

func TestStreamFile_InvalidIdentifier(t *testing.T) {
	store := &mockStore{item: testItem(100), content: testContent(100)}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/stream/abc", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Ожидался статус 400, получен %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec.Body); code != "INVALID_IDENTIFIER" {
		t.Errorf("Код ошибки: ожидалось INVALID_IDENTIFIER, получено %q", code)
	}
}

func TestStreamFile_UpstreamError(t *testing.T) {
	store := &mockStore{resolveErr: fmt.Errorf("хранилище недоступно")}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/stream/"+testFileID+"/movie.mp4", nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Ожидался статус 500, получен %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec.Body); code != "UPSTREAM_ERROR" {
		t.Errorf("Код ошибки: ожидалось UPSTREAM_ERROR, получено %q", code)
	}
}

// TestStreamFile_TooLarge — файл больше лимита раздачи отклоняется до
// чтения содержимого.
func TestStreamFile_TooLarge(t *testing.T) {
	const size = 10000000
	store := &mockStore{item: testItem(size), content: testContent(size)}
	router := newTestRouter(store, 1000, nil)

	rec := doRequest(router, http.MethodGet, "/stream/"+testFileID+"/movie.mp4", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Ожидался статус 400, получен %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec.Body); code != "FILE_TOO_LARGE" {
		t.Errorf("Код ошибки: ожидалось FILE_TOO_LARGE, получено %q", code)
	}
	if store.openCalls.Load() != 0 {
		t.Errorf("Содержимое не должно читаться при превышении лимита")
	}
}

// --- Загрузка (download) ---

// TestDownloadFile_Disposition — download отдаёт attachment.
func TestDownloadFile_Disposition(t *testing.T) {
	const size = 500
	content := testContent(size)
	store := &mockStore{item: testItem(size), content: content}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/download/"+testFileID+"/movie.mp4", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Ожидался статус 200, получен %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="movie.mp4"` {
		t.Errorf("Content-Disposition: получено %q", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Errorf("Тело ответа не совпадает с содержимым файла")
	}
}

// --- Канонизация ссылок (redirect) ---

// TestStreamRedirect_Canonicalize — запрос без имени файла
// перенаправляется на канонический URL с именем.
func TestStreamRedirect_Canonicalize(t *testing.T) {
	store := &mockStore{item: testItem(1000), content: testContent(1000)}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/stream/"+testFileID, nil)

	if rec.Code != http.StatusFound {
		t.Fatalf("Ожидался статус 302, получен %d", rec.Code)
	}
	want := "/stream/" + testFileID + "/movie.mp4"
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location: ожидалось %q, получено %q", want, got)
	}
}

// TestStreamRedirect_PreservesQuery — query-параметры (токен доступа)
// сохраняются при перенаправлении.
func TestStreamRedirect_PreservesQuery(t *testing.T) {
	store := &mockStore{item: testItem(1000), content: testContent(1000)}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/stream/"+testFileID+"?token=abc123", nil)

	if rec.Code != http.StatusFound {
		t.Fatalf("Ожидался статус 302, получен %d", rec.Code)
	}
	want := "/stream/" + testFileID + "/movie.mp4?token=abc123"
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location: ожидалось %q, получено %q", want, got)
	}
}

// TestDownloadRedirect_Canonicalize — download без имени файла.
func TestDownloadRedirect_Canonicalize(t *testing.T) {
	store := &mockStore{item: testItem(1000), content: testContent(1000)}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/download/"+testFileID, nil)

	if rec.Code != http.StatusFound {
		t.Fatalf("Ожидался статус 302, получен %d", rec.Code)
	}
	want := "/download/" + testFileID + "/movie.mp4"
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location: ожидалось %q, получено %q", want, got)
	}
}

// TestDirectLink_Redirect — direct перенаправляет на stream.
func TestDirectLink_Redirect(t *testing.T) {
	store := &mockStore{item: testItem(1000), content: testContent(1000)}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/direct/"+testFileID+"/anything.bin", nil)

	if rec.Code != http.StatusFound {
		t.Fatalf("Ожидался статус 302, получен %d", rec.Code)
	}
	// Имя в Location — каноническое из метаданных, а не из запроса
	want := "/stream/" + testFileID + "/movie.mp4"
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location: ожидалось %q, получено %q", want, got)
	}
}

// TestStreamFile_IgnoresRequestFilename — имя в URL декоративное,
// содержимое определяется только идентификатором.
func TestStreamFile_IgnoresRequestFilename(t *testing.T) {
	const size = 300
	content := testContent(size)
	store := &mockStore{item: testItem(size), content: content}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/stream/"+testFileID+"/other-name.bin", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Ожидался статус 200, получен %d", rec.Code)
	}
	// Content-Disposition — каноническое имя из метаданных
	if got := rec.Header().Get("Content-Disposition"); got != `inline; filename="movie.mp4"` {
		t.Errorf("Content-Disposition: получено %q", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Errorf("Тело ответа не совпадает с содержимым файла")
	}
}

// --- Метаданные (/info) ---

func TestFileInfo(t *testing.T) {
	const size = 10000000
	store := &mockStore{item: testItem(size), content: testContent(size)}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/info/"+testFileID, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Ожидался статус 200, получен %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type: ожидалось application/json, получено %q", got)
	}

	var info fileInfoResponse
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("Ошибка декодирования ответа: %v", err)
	}

	if info.FileID != testFileID {
		t.Errorf("file_id: ожидалось %q, получено %q", testFileID, info.FileID)
	}
	if info.Name != "movie.mp4" {
		t.Errorf("name: получено %q", info.Name)
	}
	if info.Size != size {
		t.Errorf("size: ожидалось %d, получено %d", size, info.Size)
	}
	if info.SizeFormatted != "9.5 MiB" {
		t.Errorf("size_formatted: ожидалось 9.5 MiB, получено %q", info.SizeFormatted)
	}
	if info.MimeType != "video/mp4" {
		t.Errorf("mime_type: получено %q", info.MimeType)
	}
	if info.Category != model.CategoryVideo {
		t.Errorf("category: получено %q", info.Category)
	}
	if !info.Streamable {
		t.Errorf("streamable: ожидалось true")
	}

	wantStream := "http://localhost:8080/stream/" + testFileID
	if info.URLs.Stream != wantStream {
		t.Errorf("urls.stream: ожидалось %q, получено %q", wantStream, info.URLs.Stream)
	}
	wantStreamNamed := "http://localhost:8080/stream/" + testFileID + "/movie.mp4"
	if info.URLs.StreamNamed != wantStreamNamed {
		t.Errorf("urls.stream_named: ожидалось %q, получено %q", wantStreamNamed, info.URLs.StreamNamed)
	}
	wantDownload := "http://localhost:8080/download/" + testFileID + "/movie.mp4"
	if info.URLs.DownloadNamed != wantDownload {
		t.Errorf("urls.download_named: ожидалось %q, получено %q", wantDownload, info.URLs.DownloadNamed)
	}
	wantInfo := "http://localhost:8080/info/" + testFileID
	if info.URLs.Info != wantInfo {
		t.Errorf("urls.info: ожидалось %q, получено %q", wantInfo, info.URLs.Info)
	}
}

// TestFileInfo_WithSigner — при включённой подписи ссылки содержимого
// получают токен доступа, а info остаётся без токена.
func TestFileInfo_WithSigner(t *testing.T) {
	const size = 1000
	store := &mockStore{item: testItem(size), content: testContent(size)}
	signer := links.NewSigner("test-secret-for-info", time.Hour)
	router := newTestRouter(store, 0, signer)

	rec := doRequest(router, http.MethodGet, "/info/"+testFileID, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Ожидался статус 200, получен %d", rec.Code)
	}

	var info fileInfoResponse
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("Ошибка декодирования ответа: %v", err)
	}

	for name, u := range map[string]string{
		"stream":         info.URLs.Stream,
		"stream_named":   info.URLs.StreamNamed,
		"download":       info.URLs.Download,
		"download_named": info.URLs.DownloadNamed,
		"direct":         info.URLs.Direct,
	} {
		if !strings.Contains(u, "?token=") {
			t.Errorf("urls.%s: ожидался токен доступа, получено %q", name, u)
		}
	}
	if strings.Contains(info.URLs.Info, "?token=") {
		t.Errorf("urls.info не должен содержать токен, получено %q", info.URLs.Info)
	}
}

func TestFileInfo_NotFound(t *testing.T) {
	store := &mockStore{resolveErr: upstream.ErrNotFound}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/info/"+testFileID, nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Ожидался статус 404, получен %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec.Body); code != "NOT_FOUND" {
		t.Errorf("Код ошибки: получено %q", code)
	}
}

// --- Health ---

func TestHealth(t *testing.T) {
	store := &mockStore{item: testItem(100), content: testContent(100)}
	router := newTestRouter(store, 0, nil)

	rec := doRequest(router, http.MethodGet, "/health", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Ожидался статус 200, получен %d", rec.Code)
	}

	var health struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("Ошибка декодирования ответа: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("status: ожидалось healthy, получено %q", health.Status)
	}
	if health.Service != "file-gateway" {
		t.Errorf("service: получено %q", health.Service)
	}
}
