// info.go — обработчик GET /info/{file_id}.
// Метаданные файла и набор ссылок без обращения к содержимому.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	apierrors "github.com/bigkaa/gofilelink/internal/api/errors"
	"github.com/bigkaa/gofilelink/internal/domain/model"
	"github.com/bigkaa/gofilelink/internal/links"
)

// fileInfoResponse — ответ /info/{file_id}.
// Локатор хранилища наружу не отдаётся.
type fileInfoResponse struct {
	FileID        string         `json:"file_id"`
	Name          string         `json:"name"`
	Size          int64          `json:"size"`
	SizeFormatted string         `json:"size_formatted"`
	MimeType      string         `json:"mime_type"`
	Category      model.Category `json:"category"`
	Streamable    bool           `json:"streamable"`
	URLs          links.URLSet   `json:"urls"`
}

// FileInfo — реализация GET /info/{file_id}.
// При включённой подписи ссылок к ссылкам на содержимое добавляется
// токен доступа; сама ссылка info остаётся публичной.
func (h *APIHandler) FileInfo(w http.ResponseWriter, r *http.Request) {
	desc := h.resolveFile(w, r)
	if desc == nil {
		return
	}

	urls := links.BuildURLs(desc.FileID, desc.Name, h.baseURL)
	if h.signer != nil {
		token, err := h.signer.Sign(desc.FileID)
		if err != nil {
			h.logger.Error("Ошибка подписи ссылок",
				slog.String("file_id", desc.FileID),
				slog.String("error", err.Error()),
			)
			apierrors.InternalError(w, "Внутренняя ошибка при формировании ссылок")
			return
		}
		urls = withToken(urls, token)
	}

	resp := fileInfoResponse{
		FileID:        desc.FileID,
		Name:          desc.Name,
		Size:          desc.Size,
		SizeFormatted: humanize.IBytes(uint64(desc.Size)),
		MimeType:      desc.MimeType,
		Category:      desc.Category,
		Streamable:    desc.Streamable,
		URLs:          urls,
	}

	writeJSON(w, http.StatusOK, resp)
}

// withToken добавляет токен доступа к ссылкам на содержимое.
func withToken(u links.URLSet, token string) links.URLSet {
	suffix := "?token=" + token
	u.Download += suffix
	u.DownloadNamed += suffix
	u.Stream += suffix
	u.StreamNamed += suffix
	u.Direct += suffix
	return u
}
