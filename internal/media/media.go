// Пакет media — классификация файлов хранилища.
// Категория определяется по расширению имени файла, затем по MIME-типу.
// Для video/audio известное расширение переопределяет хранимый MIME-тип,
// чтобы плееры получали корректный Content-Type вместо octet-stream.
package media

import (
	"path/filepath"
	"strings"

	"github.com/bigkaa/gofilelink/internal/domain/model"
)

// extCategory — категория по расширению файла (первичный признак).
// Архивы и исполняемые пакеты относятся к категории document.
var extCategory = map[string]model.Category{
	// video
	".mp4": model.CategoryVideo, ".mkv": model.CategoryVideo, ".avi": model.CategoryVideo,
	".mov": model.CategoryVideo, ".webm": model.CategoryVideo, ".flv": model.CategoryVideo,
	".wmv": model.CategoryVideo, ".m4v": model.CategoryVideo,
	// audio
	".mp3": model.CategoryAudio, ".wav": model.CategoryAudio, ".flac": model.CategoryAudio,
	".aac": model.CategoryAudio, ".ogg": model.CategoryAudio, ".m4a": model.CategoryAudio,
	".wma": model.CategoryAudio,
	// document
	".pdf": model.CategoryDocument, ".doc": model.CategoryDocument, ".docx": model.CategoryDocument,
	".txt": model.CategoryDocument, ".rtf": model.CategoryDocument, ".odt": model.CategoryDocument,
	// архивы
	".zip": model.CategoryDocument, ".rar": model.CategoryDocument, ".7z": model.CategoryDocument,
	".tar": model.CategoryDocument, ".gz": model.CategoryDocument, ".bz2": model.CategoryDocument,
	// пакеты приложений
	".apk": model.CategoryDocument, ".exe": model.CategoryDocument, ".dmg": model.CategoryDocument,
	".deb": model.CategoryDocument, ".rpm": model.CategoryDocument,
	// image
	".jpg": model.CategoryImage, ".jpeg": model.CategoryImage, ".png": model.CategoryImage,
	".gif": model.CategoryImage, ".bmp": model.CategoryImage, ".webp": model.CategoryImage,
	".svg": model.CategoryImage,
}

// mimeCategory — категория по MIME-типу (вторичный признак,
// применяется когда расширение не распознано).
var mimeCategory = map[string]model.Category{
	"video/mp4": model.CategoryVideo, "video/x-matroska": model.CategoryVideo,
	"video/x-msvideo": model.CategoryVideo, "video/quicktime": model.CategoryVideo,
	"video/webm": model.CategoryVideo, "video/x-flv": model.CategoryVideo,
	"video/x-ms-wmv": model.CategoryVideo,

	"audio/mpeg": model.CategoryAudio, "audio/wav": model.CategoryAudio,
	"audio/flac": model.CategoryAudio, "audio/aac": model.CategoryAudio,
	"audio/ogg": model.CategoryAudio, "audio/mp4": model.CategoryAudio,
	"audio/x-ms-wma": model.CategoryAudio,

	"application/pdf": model.CategoryDocument, "application/msword": model.CategoryDocument,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": model.CategoryDocument,
	"text/plain": model.CategoryDocument, "application/rtf": model.CategoryDocument,
	"application/vnd.oasis.opendocument.text": model.CategoryDocument,
	"application/zip":                         model.CategoryDocument,
	"application/x-rar-compressed":            model.CategoryDocument,
	"application/x-7z-compressed":             model.CategoryDocument,
	"application/x-tar":                       model.CategoryDocument,
	"application/gzip":                        model.CategoryDocument,
	"application/x-bzip2":                     model.CategoryDocument,
	"application/vnd.android.package-archive": model.CategoryDocument,
	"application/x-msdownload":                model.CategoryDocument,
	"application/x-apple-diskimage":           model.CategoryDocument,
	"application/x-debian-package":            model.CategoryDocument,
	"application/x-rpm":                       model.CategoryDocument,

	"image/jpeg": model.CategoryImage, "image/png": model.CategoryImage,
	"image/gif": model.CategoryImage, "image/bmp": model.CategoryImage,
	"image/webp": model.CategoryImage, "image/svg+xml": model.CategoryImage,
}

// streamMime — MIME-тип по расширению для video/audio.
// Переопределяет хранимый MIME-тип (часто generic octet-stream).
var streamMime = map[string]string{
	".mp4": "video/mp4", ".mkv": "video/x-matroska", ".avi": "video/x-msvideo",
	".mov": "video/quicktime", ".webm": "video/webm", ".flv": "video/x-flv",
	".wmv": "video/x-ms-wmv", ".m4v": "video/x-m4v",

	".mp3": "audio/mpeg", ".wav": "audio/wav", ".flac": "audio/flac",
	".aac": "audio/aac", ".ogg": "audio/ogg", ".m4a": "audio/mp4",
	".wma": "audio/x-ms-wma",
}

// Attributes — итог классификации вложения: окончательные имя,
// MIME-тип и категория после применения fallback-правил.
type Attributes struct {
	// Name — отображаемое имя (или синтезированное при его отсутствии)
	Name string
	// MimeType — итоговый MIME-тип
	MimeType string
	// Category — категория файла
	Category model.Category
	// Streamable — true для video и audio
	Streamable bool
}

// Classify вычисляет итоговые атрибуты вложения.
// rawName и rawMime могут быть пустыми — тогда применяются fallback-правила
// по виду вложения: синтезированное имя <вид>_<первые 8 символов remoteID>
// и MIME-тип по умолчанию (octet-stream, video/mp4, audio/mpeg, image/jpeg).
func Classify(kind model.MediaKind, rawName, rawMime, remoteID string) Attributes {
	name := rawName
	if name == "" {
		name = fallbackName(kind, remoteID)
	}

	mimeType := rawMime
	if mimeType == "" {
		mimeType = fallbackMime(kind)
	}

	category := DetectCategory(name, mimeType)

	// Для стримимых категорий расширение имеет приоритет над хранимым MIME
	if category == model.CategoryVideo || category == model.CategoryAudio {
		if m, ok := streamMime[lowerExt(name)]; ok {
			mimeType = m
		}
	}

	return Attributes{
		Name:       name,
		MimeType:   mimeType,
		Category:   category,
		Streamable: category == model.CategoryVideo || category == model.CategoryAudio,
	}
}

// DetectCategory определяет категорию файла.
// Сначала по расширению имени, затем по точному совпадению MIME-типа.
func DetectCategory(filename, mimeType string) model.Category {
	if c, ok := extCategory[lowerExt(filename)]; ok {
		return c
	}
	if c, ok := mimeCategory[mimeType]; ok {
		return c
	}
	return model.CategoryUnknown
}

// SafeFilename приводит имя файла к безопасному для URL и заголовков виду.
// Недопустимые символы заменяются на '_', повторные '_' и пробелы
// схлопываются, обрамляющие '_', '.' и пробелы удаляются.
// Пустой результат заменяется на "unnamed_file".
func SafeFilename(filename string) string {
	var b strings.Builder
	b.Grow(len(filename))
	for _, r := range filename {
		if isSafeRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	safe := b.String()
	for strings.Contains(safe, "__") {
		safe = strings.ReplaceAll(safe, "__", "_")
	}
	for strings.Contains(safe, "  ") {
		safe = strings.ReplaceAll(safe, "  ", " ")
	}

	safe = strings.Trim(safe, "_. ")
	if safe == "" {
		return "unnamed_file"
	}
	return safe
}

// isSafeRune — символ из безопасного набора: латиница, цифры, "-_.() ".
func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_' || r == '.' || r == '(' || r == ')' || r == ' ':
		return true
	}
	return false
}

// fallbackName синтезирует имя файла при его отсутствии у вложения.
func fallbackName(kind model.MediaKind, remoteID string) string {
	short := remoteID
	if len(short) > 8 {
		short = short[:8]
	}
	switch kind {
	case model.KindVideo:
		return "video_" + short + ".mp4"
	case model.KindAudio:
		return "audio_" + short + ".mp3"
	case model.KindPhoto:
		return "photo_" + short + ".jpg"
	default:
		return "document_" + short
	}
}

// fallbackMime — MIME-тип по умолчанию для вида вложения.
func fallbackMime(kind model.MediaKind) string {
	switch kind {
	case model.KindVideo:
		return "video/mp4"
	case model.KindAudio:
		return "audio/mpeg"
	case model.KindPhoto:
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// lowerExt возвращает расширение имени файла в нижнем регистре (с точкой).
func lowerExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
