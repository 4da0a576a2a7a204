// stream.go — обработчики раздачи содержимого файлов.
// GET|HEAD /stream/{file_id}[/{filename}] — просмотр в браузере/плеере
// GET|HEAD /download/{file_id}[/{filename}] — принудительное скачивание
// GET /direct/{file_id}/{filename} — перенаправление на потоковую ссылку
//
// Маршруты без имени файла перенаправляют на каноническую ссылку с именем,
// чтобы плееры и менеджеры закачек показывали осмысленное имя файла.
// Сегмент {filename} — отображаемый, содержимое определяется только {file_id}.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/gofilelink/internal/api/errors"
	"github.com/bigkaa/gofilelink/internal/domain/model"
	"github.com/bigkaa/gofilelink/internal/links"
	"github.com/bigkaa/gofilelink/internal/media"
	"github.com/bigkaa/gofilelink/internal/service"
)

// StreamRedirect — GET /stream/{file_id}.
// Перенаправляет на каноническую ссылку с именем файла.
func (h *APIHandler) StreamRedirect(w http.ResponseWriter, r *http.Request) {
	desc := h.resolveFile(w, r)
	if desc == nil {
		return
	}
	h.redirectNamed(w, r, "stream", desc)
}

// StreamFile — GET|HEAD /stream/{file_id}/{filename}.
// Отдаёт содержимое с Content-Disposition: inline и MIME-типом дескриптора.
func (h *APIHandler) StreamFile(w http.ResponseWriter, r *http.Request) {
	desc := h.resolveFile(w, r)
	if desc == nil {
		return
	}
	h.serveFile(w, r, desc, false)
}

// DownloadRedirect — GET /download/{file_id}.
// Перенаправляет на каноническую ссылку с именем файла.
func (h *APIHandler) DownloadRedirect(w http.ResponseWriter, r *http.Request) {
	desc := h.resolveFile(w, r)
	if desc == nil {
		return
	}
	h.redirectNamed(w, r, "download", desc)
}

// DownloadFile — GET|HEAD /download/{file_id}/{filename}.
// Отдаёт содержимое с Content-Disposition: attachment и типом octet-stream,
// чтобы браузер сохранял файл вместо открытия.
func (h *APIHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	desc := h.resolveFile(w, r)
	if desc == nil {
		return
	}
	h.serveFile(w, r, desc, true)
}

// DirectLink — GET /direct/{file_id}/{filename}.
// Перенаправляет на потоковую ссылку. Используется плеерами,
// которым нужен одношаговый URL без собственной логики выбора.
func (h *APIHandler) DirectLink(w http.ResponseWriter, r *http.Request) {
	desc := h.resolveFile(w, r)
	if desc == nil {
		return
	}
	h.redirectNamed(w, r, "stream", desc)
}

// resolveFile разрешает идентификатор файла из пути запроса и применяет
// лимит размера. При ошибке пишет ответ и возвращает nil.
func (h *APIHandler) resolveFile(w http.ResponseWriter, r *http.Request) *model.FileDescriptor {
	fileID := chi.URLParam(r, "fileID")

	desc, err := h.resolver.Resolve(r.Context(), fileID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidIdentifier):
			apierrors.InvalidIdentifier(w, fmt.Sprintf("Некорректный идентификатор файла: %s", fileID))
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, fmt.Sprintf("Файл %s не найден", fileID))
		default:
			h.logger.Error("Ошибка разрешения файла",
				slog.String("file_id", fileID),
				slog.String("error", err.Error()),
			)
			apierrors.UpstreamError(w, "Ошибка обращения к хранилищу")
		}
		return nil
	}

	if h.maxFileSize > 0 && desc.Size > h.maxFileSize {
		apierrors.FileTooLarge(w, fmt.Sprintf("Размер файла %s превышает лимит раздачи %s",
			humanize.IBytes(uint64(desc.Size)), humanize.IBytes(uint64(h.maxFileSize))))
		return nil
	}

	return desc
}

// redirectNamed перенаправляет на каноническую ссылку с именем файла,
// сохраняя query-параметры (в том числе токен доступа).
func (h *APIHandler) redirectNamed(w http.ResponseWriter, r *http.Request, op string, desc *model.FileDescriptor) {
	target := fmt.Sprintf("/%s/%s/%s", op, desc.FileID, links.EncodeName(media.SafeFilename(desc.Name)))
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// serveFile отдаёт содержимое файла с поддержкой Range-запросов.
// asAttachment переключает Content-Disposition и Content-Type:
// attachment отдаётся как application/octet-stream, inline — с MIME-типом
// дескриптора. Для HEAD отправляются только заголовки, без обращения
// к хранилищу.
func (h *APIHandler) serveFile(w http.ResponseWriter, r *http.Request, desc *model.FileDescriptor, asAttachment bool) {
	// 1. Разбираем Range-заголовок
	plan, err := service.PlanRange(r.Header.Get("Range"), desc.Size)
	if err != nil {
		apierrors.UnsatisfiableRange(w, desc.Size)
		return
	}

	// 2. Заголовки ответа
	contentType := desc.MimeType
	dispositionType := "inline"
	if asAttachment {
		contentType = "application/octet-stream"
		dispositionType = "attachment"
	}
	safeName := media.SafeFilename(desc.Name)

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=\"%s\"", dispositionType, safeName))
	w.Header().Set("Content-Length", strconv.FormatInt(plan.Length(), 10))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Range, Content-Type")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("ETag", fmt.Sprintf("W/\"%s\"", links.FileHash(desc.FileID, desc.Size)))
	if plan.Partial {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", plan.Start, plan.End, desc.Size))
	}

	status := http.StatusOK
	if plan.Partial {
		status = http.StatusPartialContent
	}

	// 3. HEAD — только заголовки, содержимое у хранилища не запрашивается
	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}

	// 4. Стриминг тела
	w.WriteHeader(status)

	written, err := h.streamer.Stream(r.Context(), desc.Locator, plan, w)
	if err != nil {
		// Заголовки уже отправлены — статус не изменить, соединение рвётся
		h.logger.Warn("Стриминг прерван",
			slog.String("file_id", desc.FileID),
			slog.Int64("written", written),
			slog.Int64("expected", plan.Length()),
			slog.String("error", err.Error()),
		)
		return
	}

	h.logger.Debug("Файл отдан",
		slog.String("file_id", desc.FileID),
		slog.String("filename", desc.Name),
		slog.Int64("bytes", written),
		slog.Bool("partial", plan.Partial),
	)
}
