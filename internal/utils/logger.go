package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/config"
	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/utils/logfile"
)

// fileWriter is the rotating log file, nil when file logging is disabled
var fileWriter *logfile.DailyWriter

// InitLogger initializes the application logger with the given configuration.
//
// Console output is human readable in development when the format is
// "console", JSON otherwise. When logging.file_path is set every event is
// also written to a daily rotating file with the configured retention.
func InitLogger(cfg *config.AppConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var console io.Writer = os.Stdout
	if strings.ToLower(cfg.Logging.Format) == "console" && !cfg.App.IsProduction() {
		console = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	output := console
	if cfg.Logging.FilePath != "" {
		w, err := logfile.New(logfile.Options{
			Dir:           cfg.Logging.FilePath,
			RetentionDays: cfg.Logging.RetentionDays,
			Compress:      true,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize log file: %v\n", err)
		} else {
			fileWriter = w
			output = zerolog.MultiLevelWriter(console, w)
			w.StartRetentionWorker(context.Background())
		}
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("app", cfg.App.Name).
		Str("version", cfg.App.Version).
		Str("env", cfg.App.Environment).
		Logger()

	log.Info().Bool("file_logging", fileWriter != nil).Msg("Logger initialized")
}

// CloseLogger flushes and closes the log file, if one is open
func CloseLogger() {
	if fileWriter != nil {
		if err := fileWriter.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close log file: %v\n", err)
		}
		fileWriter = nil
	}
}

// LogHTTPRequest logs an HTTP request with request details
func LogHTTPRequest(requestID, method, path, remoteAddr, userAgent string, statusCode int, latency time.Duration) {
	// Health checks are only interesting when debugging
	if path == constants.HealthPath && zerolog.GlobalLevel() != zerolog.DebugLevel {
		return
	}

	event := log.Info()
	if statusCode >= 400 && statusCode < 500 {
		event = log.Warn()
	} else if statusCode >= 500 {
		event = log.Error()
	}

	event.
		Str(constants.LogFieldRequestID, requestID).
		Str("method", method).
		Str("path", path).
		Str("remote_addr", remoteAddr).
		Str("user_agent", userAgent).
		Int("status", statusCode).
		Dur("latency", latency).
		Msg("HTTP Request")
}

// LogError logs an error with context information
func LogError(err error, context map[string]interface{}) {
	event := log.Error().Err(err)

	for key, value := range context {
		switch v := value.(type) {
		case string:
			event = event.Str(key, v)
		case int:
			event = event.Int(key, v)
		case int64:
			event = event.Int64(key, v)
		case float64:
			event = event.Float64(key, v)
		case bool:
			event = event.Bool(key, v)
		default:
			event = event.Interface(key, v)
		}
	}

	event.Msg("Error occurred")
}

// LogPanic logs a recovered panic value with the request it happened in
func LogPanic(requestID string, recovered interface{}, stack []byte) {
	log.Error().
		Str(constants.LogFieldRequestID, requestID).
		Interface("panic", recovered).
		Str("stack", string(stack)).
		Msg("Panic recovered")
}

// maxLoggedQueryLength caps the query text written to the log
const maxLoggedQueryLength = 512

// LogDBQuery logs a database query for debugging.
// String arguments of queries touching password hashes or tokens are redacted.
func LogDBQuery(query string, args []interface{}, duration time.Duration, err error) {
	lowered := strings.ToLower(query)
	sensitive := strings.Contains(lowered, constants.ColumnPasswordHash) ||
		strings.Contains(lowered, constants.ColumnSalt) ||
		strings.Contains(lowered, constants.ColumnToken)

	safeArgs := make([]interface{}, len(args))
	for i, arg := range args {
		if _, ok := arg.(string); ok && sensitive {
			safeArgs[i] = constants.LogRedactedValue
			continue
		}
		safeArgs[i] = arg
	}

	event := log.Debug()
	if err != nil {
		event = log.Error().Err(err)
	}

	event.
		Str("query", TruncateString(strings.Join(strings.Fields(query), " "), maxLoggedQueryLength)).
		Interface("args", safeArgs).
		Dur("duration", duration).
		Msg("Database query executed")
}

// LogAuth logs authentication events
func LogAuth(event string, userID, email string, success bool, reason string) {
	logEvent := log.Info()
	if !success {
		logEvent = log.Warn()
	}

	logEvent = logEvent.
		Str("category", constants.LogCategoryAuth).
		Str("event", event).
		Str(constants.LogFieldUserID, userID).
		Str("email", MaskEmail(email)).
		Bool("success", success)

	if reason != "" {
		logEvent = logEvent.Str("reason", reason)
	}

	logEvent.Msg("Authentication event")
}
