// Package logrusstackhook attaches the caller's stack to log entries at
// selected levels, one field per frame.
package logrusstackhook

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// FrameFilter reports whether a frame should be kept.
type FrameFilter func(frame runtime.Frame) bool

// SkipPackages drops frames whose file path contains any of the given
// fragments.
func SkipPackages(fragments ...string) FrameFilter {
	return func(frame runtime.Frame) bool {
		for _, e := range fragments {
			if strings.Contains(frame.File, e) {
				return false
			}
		}

		return true
	}
}

var DefaultFilter = SkipPackages("github.com/sirupsen/logrus")

type StackHook struct {
	levels []logrus.Level
	filter FrameFilter
	depth  int
}

// New returns a hook that fires on levels. With no levels given it fires on
// debug and trace entries.
func New(levels []logrus.Level, filter FrameFilter) *StackHook {
	if len(levels) == 0 {
		levels = []logrus.Level{logrus.DebugLevel, logrus.TraceLevel}
	}

	if filter == nil {
		filter = DefaultFilter
	}

	return &StackHook{levels: levels, filter: filter, depth: 25}
}

func (h *StackHook) Levels() []logrus.Level { return h.levels }

func (h *StackHook) Fire(e *logrus.Entry) error {
	for i, frame := range h.stack() {
		e.Data[fmt.Sprintf("stack.%02d", i)] = FormatFrame(frame)
	}

	return nil
}

func (h *StackHook) stack() []runtime.Frame {
	pc := make([]uintptr, h.depth)

	// skip runtime.Callers, stack and Fire
	n := runtime.Callers(3, pc)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pc[:n])

	var a []runtime.Frame
	for {
		frame, more := frames.Next()

		if strings.HasPrefix(frame.Function, "runtime.") {
			if !more {
				break
			}
			continue
		}

		if h.filter(frame) {
			a = append(a, frame)
		}

		if !more {
			break
		}
	}

	return a
}

func FormatFrame(f runtime.Frame) string {
	return fmt.Sprintf("%s:%d: %s", f.File, f.Line, f.Function)
}
