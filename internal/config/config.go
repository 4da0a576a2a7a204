// Пакет config — загрузка и валидация конфигурации File Link Gateway
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации File Link Gateway.
type Config struct {
	// --- Сервер ---

	// Адрес прослушивания HTTP-сервера
	Host string
	// Порт HTTP-сервера
	Port int
	// Публичный базовый URL для формирования ссылок на файлы
	BaseURL string
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Шлюз хранилища ---

	// URL шлюза хранилища
	UpstreamURL string
	// Токен авторизации запросов к шлюзу
	UpstreamToken string
	// Путь к CA-сертификату шлюза (опционально)
	UpstreamCACert string
	// Таймаут запросов метаданных к шлюзу
	UpstreamTimeout time.Duration

	// --- Раздача содержимого ---

	// Размер блока чтения из хранилища (байты)
	ChunkSize int64
	// Максимальный размер раздаваемого файла (байты, 0 — без лимита)
	MaxFileSize int64

	// --- Кэш метаданных ---

	// Время жизни записи кэша метаданных
	CacheTTL time.Duration
	// Максимальное количество записей кэша
	CacheMaxEntries int

	// --- Подписанные ссылки ---

	// Секрет подписи ссылок (пусто — ссылки публичные)
	LinkSecret string
	// Срок действия токена доступа к файлу
	LinkTokenTTL time.Duration

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 0 — стриминг не ограничен)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 10s)
	ShutdownTimeout time.Duration

	// --- Мониторинг зависимостей ---

	// Включение topologymetrics
	DephealthEnabled bool
	// Имя группы в метриках topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration
	// Лейбл isentry=yes для входной вершины графа
	DephealthIsEntry bool
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	// .env — для локальной разработки, в проде переменные задаёт окружение
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	// --- Сервер ---

	// FG_HTTP_HOST — адрес прослушивания (по умолчанию 0.0.0.0)
	cfg.Host = getEnvDefault("FG_HTTP_HOST", "0.0.0.0")

	// FG_HTTP_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("FG_HTTP_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("FG_HTTP_PORT: %w", err)
	}

	// FG_BASE_URL — публичный базовый URL для ссылок (по умолчанию локальный)
	cfg.BaseURL = strings.TrimRight(
		getEnvDefault("FG_BASE_URL", fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")

	// FG_LOG_LEVEL — уровень логирования (по умолчанию info)
	logLevel := getEnvDefault("FG_LOG_LEVEL", "info")
	cfg.LogLevel, err = parseLogLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("FG_LOG_LEVEL: %w", err)
	}

	// FG_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("FG_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("FG_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Шлюз хранилища ---

	// FG_UPSTREAM_URL — обязательный
	cfg.UpstreamURL, err = getEnvRequired("FG_UPSTREAM_URL")
	if err != nil {
		return nil, err
	}
	cfg.UpstreamURL = strings.TrimRight(cfg.UpstreamURL, "/")

	// FG_UPSTREAM_TOKEN — токен авторизации (опционально)
	cfg.UpstreamToken = getEnvDefault("FG_UPSTREAM_TOKEN", "")

	// FG_UPSTREAM_CA_CERT — путь к CA-сертификату шлюза (опционально)
	cfg.UpstreamCACert = getEnvDefault("FG_UPSTREAM_CA_CERT", "")

	// FG_UPSTREAM_TIMEOUT — таймаут запросов метаданных (по умолчанию 30s)
	cfg.UpstreamTimeout, err = getEnvDuration("FG_UPSTREAM_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FG_UPSTREAM_TIMEOUT: %w", err)
	}

	// --- Раздача содержимого ---

	// FG_CHUNK_SIZE — размер блока чтения (по умолчанию 1 MiB)
	cfg.ChunkSize, err = getEnvInt64("FG_CHUNK_SIZE", 1024*1024)
	if err != nil {
		return nil, fmt.Errorf("FG_CHUNK_SIZE: %w", err)
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("FG_CHUNK_SIZE: значение должно быть > 0")
	}

	// FG_MAX_FILE_SIZE — лимит размера файла (по умолчанию 4 GiB, 0 — без лимита)
	cfg.MaxFileSize, err = getEnvInt64("FG_MAX_FILE_SIZE", 4*1024*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("FG_MAX_FILE_SIZE: %w", err)
	}
	if cfg.MaxFileSize < 0 {
		return nil, fmt.Errorf("FG_MAX_FILE_SIZE: значение должно быть >= 0")
	}

	// --- Кэш метаданных ---

	// FG_CACHE_TTL — время жизни записи кэша (по умолчанию 600s)
	cfg.CacheTTL, err = getEnvDuration("FG_CACHE_TTL", 600*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FG_CACHE_TTL: %w", err)
	}

	// FG_CACHE_MAX_ENTRIES — ёмкость кэша (по умолчанию 1024)
	cfg.CacheMaxEntries, err = getEnvInt("FG_CACHE_MAX_ENTRIES", 1024)
	if err != nil {
		return nil, fmt.Errorf("FG_CACHE_MAX_ENTRIES: %w", err)
	}
	if cfg.CacheMaxEntries <= 0 {
		return nil, fmt.Errorf("FG_CACHE_MAX_ENTRIES: значение должно быть > 0")
	}

	// --- Подписанные ссылки ---

	// FG_LINK_SECRET — секрет подписи ссылок (пусто — ссылки публичные)
	cfg.LinkSecret = getEnvDefault("FG_LINK_SECRET", "")

	// FG_LINK_TOKEN_TTL — срок действия токена доступа (по умолчанию 6h)
	cfg.LinkTokenTTL, err = getEnvDuration("FG_LINK_TOKEN_TTL", 6*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("FG_LINK_TOKEN_TTL: %w", err)
	}

	// --- HTTP Server Timeouts ---

	// FG_HTTP_READ_TIMEOUT — таймаут чтения (по умолчанию 30s)
	cfg.HTTPReadTimeout, err = getEnvDuration("FG_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FG_HTTP_READ_TIMEOUT: %w", err)
	}

	// FG_HTTP_WRITE_TIMEOUT — таймаут записи (по умолчанию 0).
	// Стриминг больших файлов может занимать часы, ограничение не ставится.
	cfg.HTTPWriteTimeout, err = getEnvDuration("FG_HTTP_WRITE_TIMEOUT", 0)
	if err != nil {
		return nil, fmt.Errorf("FG_HTTP_WRITE_TIMEOUT: %w", err)
	}

	// FG_HTTP_IDLE_TIMEOUT — таймаут простоя (по умолчанию 120s)
	cfg.HTTPIdleTimeout, err = getEnvDuration("FG_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FG_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Graceful shutdown ---

	// FG_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 10s)
	cfg.ShutdownTimeout, err = getEnvDuration("FG_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FG_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- Мониторинг зависимостей ---

	// FG_DEPHEALTH_ENABLED — включение topologymetrics (по умолчанию true)
	cfg.DephealthEnabled, err = getEnvBool("FG_DEPHEALTH_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("FG_DEPHEALTH_ENABLED: %w", err)
	}

	// FG_DEPHEALTH_GROUP — имя группы в метриках (по умолчанию filelink)
	cfg.DephealthGroup = getEnvDefault("FG_DEPHEALTH_GROUP", "filelink")

	// FG_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("FG_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FG_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// DEPHEALTH_ISENTRY — лейбл входной вершины графа (по умолчанию false)
	cfg.DephealthIsEntry, err = getEnvBool("DEPHEALTH_ISENTRY", false)
	if err != nil {
		return nil, fmt.Errorf("DEPHEALTH_ISENTRY: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64-значение переменной окружения или значение по умолчанию.
// Используется для размеров в байтах, выходящих за пределы int32.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
