package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/k0kubun/pp"
)

var (
	mu      sync.Mutex
	logFile *os.File
	debug   bool
)

// Init routes the standard logger to logPath. The terminal belongs to the
// TUI, so an empty path discards log output instead of writing to stdout.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	if logPath == "" {
		log.SetOutput(io.Discard)
		return nil
	}
	if dir := filepath.Dir(logPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logFile = file
	log.SetOutput(logFile)
	return nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	return err
}

// SetDebug enables full payload dumps in LogDebug.
func SetDebug(on bool) {
	mu.Lock()
	defer mu.Unlock()
	debug = on
	pp.ColoringEnabled = false
}

func LogEvent(format string, args ...any) {
	log.Println(fmt.Sprintf(format, args...))
}

// LogRequest records one backend exchange; direction is "out" or "in".
func LogRequest(direction, endpoint string, payload any) {
	log.Println(buildRequestMessage(direction, endpoint, payload))
}

// LogDebug pretty-prints v when debug logging is on.
func LogDebug(label string, v any) {
	mu.Lock()
	on := debug
	mu.Unlock()
	if !on {
		return
	}
	log.Printf("%s: %s", label, pp.Sprint(v))
}

func buildRequestMessage(direction, endpoint string, payload any) string {
	dir := strings.ToUpper(strings.TrimSpace(direction))
	ep := strings.TrimSpace(endpoint)
	if ep == "" {
		ep = "unknown"
	}
	return fmt.Sprintf("[%s] endpoint=%s payload=%s", dir, ep, formatPayload(payload))
}

// formatPayload keeps log lines short; document texts can be megabytes.
func formatPayload(payload any) string {
	var s string
	switch v := payload.(type) {
	case nil:
		return "null"
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		s = v
	case []byte:
		if len(v) == 0 {
			return "[]"
		}
		s = string(v)
	case fmt.Stringer:
		s = v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			s = fmt.Sprintf("%v", v)
		} else {
			s = string(data)
		}
	}
	return truncate(s, maxPayloadLen)
}

const maxPayloadLen = 512

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + fmt.Sprintf("...(%d more)", len(r)-n)
}
