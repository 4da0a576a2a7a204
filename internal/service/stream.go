// stream.go — потоковая отдача интервала содержимого из шлюза хранилища.
// Шлюз выдаёт блоки только последовательно с нулевого смещения, поэтому
// блоки до начала интервала пропускаются, блок на границе обрезается,
// после конца интервала чтение прекращается досрочно.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gofilelink/internal/domain/model"
	"github.com/bigkaa/gofilelink/internal/upstream"
)

// Prometheus-метрики стриминга.
var (
	streamsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fg_streams_total",
		Help: "Общее количество потоковых отдач (по результату).",
	}, []string{"status"})

	streamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fg_stream_duration_seconds",
		Help:    "Длительность потоковой отдачи (от первого блока до завершения).",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})

	streamBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fg_stream_bytes_total",
		Help: "Общее количество байт, отданных клиентам.",
	})

	activeStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fg_active_streams",
		Help: "Количество активных (in-progress) потоковых отдач.",
	})
)

// StreamService — отдача интервалов содержимого файлов клиентам.
type StreamService struct {
	store     upstream.Store
	blockSize int64
	logger    *slog.Logger
}

// NewStreamService создаёт сервис потоковой отдачи.
// blockSize — размер блока чтения из хранилища (FG_CHUNK_SIZE).
func NewStreamService(store upstream.Store, blockSize int64, logger *slog.Logger) *StreamService {
	return &StreamService{
		store:     store,
		blockSize: blockSize,
		logger:    logger.With(slog.String("component", "stream_service")),
	}
}

// Stream пишет в w байты интервала plan, читая содержимое блоками
// из хранилища. Возвращает количество записанных байт.
//
// Инвариант: при успехе записано ровно plan.Length() байт независимо
// от выравнивания границ интервала по границам блоков.
//
// Ошибка после первых записанных байт означает, что заголовки ответа
// уже отправлены: вызывающий код не может изменить статус и должен
// просто прервать соединение.
func (ss *StreamService) Stream(ctx context.Context, loc model.Locator, plan RangePlan, w io.Writer) (int64, error) {
	start := time.Now()
	activeStreams.Inc()
	defer activeStreams.Dec()

	br, err := ss.store.OpenBlocks(ctx, loc, ss.blockSize)
	if err != nil {
		streamsTotal.WithLabelValues("open_error").Inc()
		return 0, fmt.Errorf("открытие потока содержимого: %w", err)
	}
	defer br.Close()

	// Flush после каждого блока, чтобы плееры получали байты сразу.
	// Через ResponseController срабатывает и для обёрнутых writer'ов
	// middleware (у них определён Unwrap).
	var flush func()
	if rw, ok := w.(http.ResponseWriter); ok {
		rc := http.NewResponseController(rw)
		flush = func() { _ = rc.Flush() }
	}

	var pos, written int64
	for {
		block, err := br.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			streamsTotal.WithLabelValues(abortStatus(err)).Inc()
			return written, fmt.Errorf("чтение блока на смещении %d: %w", pos, err)
		}

		blockLen := int64(len(block))

		// Блок целиком до начала интервала — пропускаем без записи
		if pos+blockLen <= plan.Start {
			pos += blockLen
			continue
		}

		// Пересечение [pos, pos+blockLen) с [plan.Start, plan.End]
		lo := int64(0)
		if plan.Start > pos {
			lo = plan.Start - pos
		}
		hi := blockLen
		if rem := plan.End - pos + 1; rem < hi {
			hi = rem
		}

		n, werr := w.Write(block[lo:hi])
		written += int64(n)
		if werr != nil {
			streamsTotal.WithLabelValues("client_abort").Inc()
			return written, fmt.Errorf("запись в ответ на смещении %d: %w", pos+lo, werr)
		}
		if flush != nil {
			flush()
		}

		pos += blockLen

		// Интервал отдан полностью — дальше блоки не запрашиваем
		if pos > plan.End {
			break
		}
	}

	if written != plan.Length() {
		// Хранилище отдало меньше байт, чем заявлено в метаданных
		streamsTotal.WithLabelValues("short_read").Inc()
		return written, fmt.Errorf("неполное содержимое: записано %d байт из %d", written, plan.Length())
	}

	duration := time.Since(start)
	streamsTotal.WithLabelValues("success").Inc()
	streamDuration.Observe(duration.Seconds())
	streamBytesTotal.Add(float64(written))

	ss.logger.Debug("Отдача завершена",
		slog.Int64("start", plan.Start),
		slog.Int64("end", plan.End),
		slog.Int64("bytes", written),
		slog.Duration("duration", duration),
	)

	return written, nil
}

// abortStatus классифицирует ошибку чтения блока для метрик:
// отмена контекста — отключение клиента, прочее — сбой хранилища.
func abortStatus(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "client_abort"
	}
	return "upstream_error"
}
