package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) tag() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	}
	return "ERROR"
}

var (
	mu       sync.Mutex
	level    = Info
	buf      = make([]string, 0, 500)
	maxLines = 500
	// off by default so the TUI is not painted over; TABSENSE_LOG_STDERR=1 enables it
	sink io.Writer
)

func SetLevel(l Level) { mu.Lock(); level = l; mu.Unlock() }

// SetOutput echoes every retained line to w; nil disables the echo.
func SetOutput(w io.Writer) { mu.Lock(); sink = w; mu.Unlock() }

// ParseLevel maps debug/info/warn/error to a Level.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, true
	case "info":
		return Info, true
	case "warn", "warning":
		return Warn, true
	case "error":
		return Error, true
	}
	return Info, false
}

func SetLevelFromEnv() {
	if l, ok := ParseLevel(os.Getenv("TABSENSE_LOG_LEVEL")); ok {
		SetLevel(l)
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("TABSENSE_LOG_STDERR"))); v != "" {
		if v != "0" && v != "false" && v != "no" {
			SetOutput(os.Stderr)
		} else {
			SetOutput(nil)
		}
	}
}

func Debugf(format string, a ...any) { logf(Debug, format, a...) }
func Infof(format string, a ...any)  { logf(Info, format, a...) }
func Warnf(format string, a ...any)  { logf(Warn, format, a...) }
func Errorf(format string, a ...any) { logf(Error, format, a...) }

// Logger prefixes every line with a component name, e.g. "detect: ...".
type Logger struct{ component string }

func Named(component string) Logger { return Logger{component: component} }

func (l Logger) Debugf(format string, a ...any) { logf(Debug, l.component+": "+format, a...) }
func (l Logger) Infof(format string, a ...any)  { logf(Info, l.component+": "+format, a...) }
func (l Logger) Warnf(format string, a ...any)  { logf(Warn, l.component+": "+format, a...) }
func (l Logger) Errorf(format string, a ...any) { logf(Error, l.component+": "+format, a...) }

func logf(l Level, format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	ts := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	line := fmt.Sprintf("%s %-5s %s", ts, l.tag(), fmt.Sprintf(format, a...))
	if len(buf) >= maxLines {
		// drop oldest
		copy(buf[0:], buf[1:])
		buf = buf[:len(buf)-1]
	}
	buf = append(buf, line)
	if sink != nil {
		fmt.Fprintln(sink, line)
	}
}

func Dump() string {
	mu.Lock()
	defer mu.Unlock()
	return strings.Join(buf, "\n")
}

func Lines() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, len(buf))
	copy(out, buf)
	return out
}

// Reset drops retained lines.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	buf = buf[:0]
}
