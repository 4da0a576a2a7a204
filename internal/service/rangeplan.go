// rangeplan.go — разбор HTTP Range-заголовка в байтовый интервал.
// Нераспознанный заголовок трактуется как запрос полного содержимого,
// распознанный, но выходящий за пределы файла — как 416.
package service

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Ошибки планировщика диапазонов.
var (
	// ErrUnsatisfiableRange — диапазон вне пределов файла.
	// Ответ: 416 с заголовком Content-Range: bytes */<size>.
	ErrUnsatisfiableRange = errors.New("запрошенный диапазон вне пределов файла")
)

// rangePattern — единственная поддерживаемая форма: bytes=<start>?-<end>?.
// Всё прочее (несколько диапазонов, единицы кроме bytes) трактуется
// как отсутствие заголовка.
var rangePattern = regexp.MustCompile(`^bytes=(\d*)-(\d*)$`)

// RangePlan — спланированный интервал отдачи [Start, End], границы включительно.
type RangePlan struct {
	// Partial — true, если клиент запросил диапазон (ответ 206)
	Partial bool
	// Start — первый байт интервала
	Start int64
	// End — последний байт интервала
	End int64
}

// Length возвращает количество байт интервала.
func (p RangePlan) Length() int64 {
	return p.End - p.Start + 1
}

// PlanRange разбирает Range-заголовок против известного размера файла.
//
// Правила:
//   - пустой или нераспознанный заголовок → полное содержимое [0, size-1]
//   - пропущенный start → 0, пропущенный end → size-1
//   - start ≥ size, end ≥ size или start > end → ErrUnsatisfiableRange
func PlanRange(rangeHeader string, totalSize int64) (RangePlan, error) {
	full := RangePlan{Start: 0, End: totalSize - 1}

	if rangeHeader == "" {
		return full, nil
	}

	m := rangePattern.FindStringSubmatch(strings.TrimSpace(rangeHeader))
	if m == nil {
		return full, nil
	}

	start := int64(0)
	if m[1] != "" {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			// Переполнение int64 — запрошенное смещение заведомо за пределами файла
			return RangePlan{}, ErrUnsatisfiableRange
		}
		start = v
	}

	end := totalSize - 1
	if m[2] != "" {
		v, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return RangePlan{}, ErrUnsatisfiableRange
		}
		end = v
	}

	if start >= totalSize || end >= totalSize || start > end {
		return RangePlan{}, ErrUnsatisfiableRange
	}

	return RangePlan{Partial: true, Start: start, End: end}, nil
}
