package logger

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// CallerHook adds the application name and the calling source location to log entries
type CallerHook struct {
	App    string
	levels []logrus.Level
}

// NewCallerHook creates hook for the given levels; all levels when none given
func NewCallerHook(app string, levels ...logrus.Level) *CallerHook {
	if len(levels) == 0 {
		levels = logrus.AllLevels
	}
	return &CallerHook{App: app, levels: levels}
}

// Levels returns hook levels
func (h *CallerHook) Levels() []logrus.Level {
	return h.levels
}

// Fire sets app, source and function fields
func (h *CallerHook) Fire(entry *logrus.Entry) error {
	entry.Data["app"] = h.App
	if frame, ok := callerFrame(); ok {
		entry.Data["source"] = shortFile(frame.File) + ":" + strconv.Itoa(frame.Line)
		entry.Data["function"] = frame.Function
	}
	return nil
}

// callerFrame finds the first frame outside logrus and the hook itself
func callerFrame() (runtime.Frame, bool) {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.Function, "sirupsen/logrus") && !strings.Contains(frame.Function, "logger.(*CallerHook)") {
			return frame, frame.PC != 0
		}
		if !more {
			return runtime.Frame{}, false
		}
	}
}

// shortFile keeps the last directory and the file name
func shortFile(file string) string {
	n := 0
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			n++
			if n >= 2 {
				return file[i+1:]
			}
		}
	}
	return file
}
