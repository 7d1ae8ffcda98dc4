// Package logging routes the application's log output to stdout and an
// optional log file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
)

var (
	mu      sync.Mutex
	logFile *os.File
	debug   bool

	warnOut   io.Writer = os.Stderr
	warnLabel           = color.New(color.FgYellow, color.Bold)
)

// Init sends log output to stdout and, when logPath is set, appends it to
// that file as well.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writers []io.Writer
	writers = append(writers, os.Stdout)

	if logPath != "" {
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
		writers = append(writers, logFile)
	}

	log.SetOutput(io.MultiWriter(writers...))
	return nil
}

// Close restores stderr logging and closes the log file.
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

// SetDebug toggles Debugf output.
func SetDebug(enabled bool) {
	mu.Lock()
	debug = enabled
	mu.Unlock()
}

func debugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debug
}

func LogEvent(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println(msg)
}

// Debugf logs only when debug output is enabled.
func Debugf(format string, args ...any) {
	if !debugEnabled() {
		return
	}
	log.Println("[DEBUG] " + fmt.Sprintf(format, args...))
}

// Warnf logs the message and echoes it to stderr with a highlighted label.
func Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println("[WARN] " + msg)
	mu.Lock()
	out := warnOut
	mu.Unlock()
	warnLabel.Fprint(out, "WARN:")
	fmt.Fprintln(out, " "+msg)
}

// LogRender records one renderer invocation.
func LogRender(script string, exitCode int, err error) {
	log.Println(buildRenderMessage(script, exitCode, err))
}

func buildRenderMessage(script string, exitCode int, err error) string {
	if script == "" {
		script = "unknown"
	}
	status := "ok"
	if err != nil {
		status = fmt.Sprintf("failed exit=%d err=%v", exitCode, err)
	}
	return fmt.Sprintf("[RENDER] script=%s status=%s", script, status)
}
