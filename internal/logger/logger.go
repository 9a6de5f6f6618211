package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	OffLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case OffLevel:
		return "off"
	default:
		return "unknown"
	}
}

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "off", "none":
		return OffLevel, nil
	default:
		return OffLevel, fmt.Errorf("invalid log level: %q", s)
	}
}

var (
	std = &Logger{
		logger: log.New(os.Stderr, "", log.LstdFlags),
		level:  WarnLevel,
	}

	debugSprintf = color.New(color.FgCyan).SprintfFunc()
	infoSprintf  = color.New(color.FgGreen).SprintfFunc()
	warnSprintf  = color.New(color.FgYellow).SprintfFunc()
	errorSprintf = color.New(color.FgRed).SprintfFunc()
)

type Logger struct {
	mu     sync.Mutex
	logger *log.Logger
	level  Level
}

func SetLevel(level Level) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.level = level
}

func GetLevel() Level {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.level
}

// SetOutput redirects log lines. Colors are dropped unless w is a terminal stream.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.logger = log.New(w, "", log.LstdFlags)

	if f, ok := w.(*os.File); !ok || (f != os.Stdout && f != os.Stderr) {
		color.NoColor = true
	}
}

func (l *Logger) printf(level Level, sprintf func(string, ...interface{}) string, tag, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level > level {
		return
	}
	l.logger.Print(sprintf(tag+" "+format, v...))
}

func Debug(format string, v ...interface{}) {
	std.printf(DebugLevel, debugSprintf, "[DEBUG]", format, v...)
}

func Info(format string, v ...interface{}) {
	std.printf(InfoLevel, infoSprintf, "[INFO]", format, v...)
}

func Warn(format string, v ...interface{}) {
	std.printf(WarnLevel, warnSprintf, "[WARN]", format, v...)
}

func Error(format string, v ...interface{}) {
	std.printf(ErrorLevel, errorSprintf, "[ERROR]", format, v...)
}
