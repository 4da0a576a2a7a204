// Пакет model — доменные модели File Link Gateway.
// FileDescriptor — разрешённые метаданные одного файла хранилища,
// FileIdentifier — составной идентификатор вида <container_id>_<item_id>.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Ошибки доменного слоя.
var (
	// ErrInvalidIdentifier — идентификатор файла не соответствует формату
	// <container_id>_<item_id> (два целых числа через один символ '_').
	ErrInvalidIdentifier = errors.New("некорректный идентификатор файла")
)

// Category — категория файла, определяет режим отдачи (inline/attachment).
type Category string

// Категории файлов.
const (
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryDocument Category = "document"
	CategoryImage    Category = "image"
	CategoryUnknown  Category = "unknown"
)

// MediaKind — вид медиа-вложения в сообщении хранилища.
// Присваивается один раз при классификации ответа upstream
// и не вычисляется повторно в обработчиках.
type MediaKind string

// Виды медиа-вложений, поддерживаемые шлюзом.
const (
	KindDocument MediaKind = "document"
	KindVideo    MediaKind = "video"
	KindAudio    MediaKind = "audio"
	KindPhoto    MediaKind = "photo"
)

// Locator — непрозрачная ссылка на содержимое элемента в хранилище.
// Заполняется резолвером и передаётся стримеру без изменений;
// обработчики не интерпретируют её поля.
type Locator struct {
	// ContainerID — идентификатор контейнера (чата) в хранилище
	ContainerID int64
	// ItemID — идентификатор элемента (сообщения) внутри контейнера
	ItemID int64
	// RemoteID — идентификатор файла на стороне шлюза хранилища
	RemoteID string
}

// FileDescriptor — разрешённые, кэшируемые метаданные одного файла.
// Для одного идентификатора Size и MimeType стабильны на время жизни
// одного разрешения (элемент хранилища неизменяем).
type FileDescriptor struct {
	// FileID — составной идентификатор <container_id>_<item_id>
	FileID string
	// Name — отображаемое имя файла (после fallback-правил)
	Name string
	// Size — размер файла в байтах, авторитетен для range-математики
	Size int64
	// MimeType — MIME-тип содержимого (после fallback-правил)
	MimeType string
	// Category — категория файла (video, audio, document, image, unknown)
	Category Category
	// Streamable — true только для video и audio
	Streamable bool
	// Locator — ссылка на содержимое для стримера
	Locator Locator
}

// ParseFileID разбирает составной идентификатор <container_id>_<item_id>.
// Возвращает ErrInvalidIdentifier, если строка не состоит ровно из двух
// целочисленных частей, разделённых одним символом '_'.
// Отрицательный container_id допустим (идентификаторы групповых чатов).
func ParseFileID(fileID string) (containerID, itemID int64, err error) {
	parts := strings.Split(fileID, "_")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, fileID)
	}

	containerID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, fileID)
	}

	itemID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, fileID)
	}

	return containerID, itemID, nil
}
