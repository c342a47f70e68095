package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the shared line-oriented logger used across the service.
// Every line written through it is a single JSON object.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// Log emits a structured JSON log line with the given level and message.
// Extra fields are merged in; ts/level/msg always win on conflict.
func Log(level, msg string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		entry[k] = v
	}
	entry["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level
	entry["msg"] = msg

	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"log marshal failed"}`)
		return
	}
	Logger().Println(string(data))
}

// Info logs at info level.
func Info(msg string, fields map[string]any) { Log("info", msg, fields) }

// Warn logs at warn level.
func Warn(msg string, fields map[string]any) { Log("warn", msg, fields) }

// Error logs at error level.
func Error(msg string, fields map[string]any) { Log("error", msg, fields) }
