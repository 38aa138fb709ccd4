package clifmt

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"golang.org/x/term"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

var colorEnabled atomic.Bool

func init() {
	colorEnabled.Store(detectColor())
}

func detectColor() bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// SetColor overrides terminal detection.
func SetColor(enabled bool) {
	colorEnabled.Store(enabled)
}

func ColorEnabled() bool {
	return colorEnabled.Load()
}

func paint(code, s string) string {
	if !colorEnabled.Load() || s == "" {
		return s
	}
	return code + s + ansiReset
}

func Headerf(format string, args ...any) string {
	return paint(ansiBold+ansiCyan, fmt.Sprintf(format, args...))
}

func Key(s string) string     { return paint(ansiBold, s) }
func Dim(s string) string     { return paint(ansiDim, s) }
func Success(s string) string { return paint(ansiGreen, s) }
func Warn(s string) string    { return paint(ansiYellow, s) }
func Fail(s string) string    { return paint(ansiRed, s) }
