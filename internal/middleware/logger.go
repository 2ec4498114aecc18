package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bilgisen/khobor/internal/logger"
	"github.com/bilgisen/khobor/internal/metrics"
)

// LoggerConfig defines the config for the logger middleware
type LoggerConfig struct {
	// Next defines a function to skip middleware.
	// Optional. Default: skips /health and /metrics
	Next func(c *fiber.Ctx) bool

	// Logger is the zerolog logger instance to use.
	// If not provided, the default logger will be used.
	Logger *zerolog.Logger

	// App labels the request metrics ("portal" or "cms").
	App string

	// Fields to include in the logs
	Fields []string
}

// DefaultLoggerConfig is the default config
var DefaultLoggerConfig = LoggerConfig{
	Next:   skipProbes,
	Fields: []string{"latency", "status", "method", "path", "ip", "user_agent"},
}

func skipProbes(c *fiber.Ctx) bool {
	p := c.Path()
	return p == "/health" || p == "/metrics"
}

// NewLogger logs every request and records it in the HTTP metrics.
func NewLogger(config ...LoggerConfig) fiber.Handler {
	cfg := DefaultLoggerConfig

	if len(config) > 0 {
		cfg = config[0]

		if cfg.Next == nil {
			cfg.Next = DefaultLoggerConfig.Next
		}
		if len(cfg.Fields) == 0 {
			cfg.Fields = DefaultLoggerConfig.Fields
		}
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}

	fields := make(map[string]bool)
	for _, f := range cfg.Fields {
		fields[f] = true
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler runs after us; report the status it will use.
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		route := c.Route().Path
		metrics.HTTPRequestsTotal.WithLabelValues(cfg.App, c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(cfg.App, c.Method(), route).Observe(latency.Seconds())

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = cfg.Logger.Error()
		case status >= 400:
			event = cfg.Logger.Warn()
		default:
			event = cfg.Logger.Info()
		}

		if fields["method"] {
			event = event.Str("method", c.Method())
		}
		if fields["path"] {
			event = event.Str("path", c.Path())
		}
		if fields["status"] {
			event = event.Int("status", status)
		}
		if fields["ip"] {
			event = event.Str("ip", c.IP())
		}
		if fields["user_agent"] {
			event = event.Str("user_agent", c.Get(fiber.HeaderUserAgent))
		}
		if fields["latency"] {
			event = event.Dur("latency", latency)
		}
		if err != nil {
			event = event.Err(err)
		}

		event.Msg("request")
		return err
	}
}

// RequestLogger is the logger middleware used by both apps.
func RequestLogger(app string) fiber.Handler {
	return NewLogger(LoggerConfig{
		App:    app,
		Fields: []string{"latency", "status", "method", "path", "ip"},
	})
}
