// Пакет upstream — абстракция удалённого хранилища файлов.
// Две операции: поиск элемента по (container, item) и последовательное
// чтение содержимого фиксированными блоками. Источник не поддерживает
// произвольный доступ — блоки выдаются строго с нулевого смещения.
package upstream

import (
	"context"
	"errors"

	"github.com/bigkaa/gofilelink/internal/domain/model"
)

// Ошибки слоя upstream.
var (
	// ErrNotFound — элемент отсутствует в хранилище или не содержит
	// поддерживаемого медиа-вложения.
	ErrNotFound = errors.New("элемент не найден в хранилище")
)

// Item — результат поиска элемента до классификации.
// Name и MimeType могут быть пустыми — fallback-правила применяет резолвер.
type Item struct {
	// Kind — вид медиа-вложения (document, video, audio, photo)
	Kind model.MediaKind
	// Name — имя файла из хранилища (может отсутствовать)
	Name string
	// Size — размер файла в байтах
	Size int64
	// MimeType — MIME-тип из хранилища (может отсутствовать)
	MimeType string
	// Locator — ссылка на содержимое для последующего чтения блоков
	Locator model.Locator
}

// BlockReader — конечная последовательность байтовых блоков содержимого.
// Последовательность не перезапускаема: чтение блока — единственный способ
// продвинуть позицию чтения. Возвращаемый Next срез действителен только
// до следующего вызова Next.
type BlockReader interface {
	// Next возвращает следующий блок или io.EOF после последнего.
	// Все блоки, кроме последнего, имеют размер blockSize из OpenBlocks.
	Next(ctx context.Context) ([]byte, error)
	// Close освобождает соединение с хранилищем.
	// Обязателен к вызову, в том числе при досрочном прекращении чтения.
	Close() error
}

// Store — доступ к удалённому хранилищу файлов.
type Store interface {
	// Resolve ищет элемент item в контейнере container.
	// Возвращает ErrNotFound, если элемента нет или он не содержит
	// поддерживаемого медиа-вложения.
	Resolve(ctx context.Context, containerID, itemID int64) (*Item, error)
	// OpenBlocks открывает последовательное чтение содержимого блоками
	// размера blockSize начиная с нулевого смещения.
	OpenBlocks(ctx context.Context, locator model.Locator, blockSize int64) (BlockReader, error)
}
