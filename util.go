package vkpool

import (
	"fmt"
	"runtime"
	"strings"
)

// safeString null-terminates s for handoff to the Vulkan C side.
func safeString(s string) string {
	if len(s) == 0 {
		return "\x00"
	}
	if s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}

// checkExisting keeps the required names present in actual and reports
// how many are missing.
func checkExisting(actual, required []string) (existing []string, missing int) {
	for _, want := range required {
		found := false
		for _, have := range actual {
			if strings.TrimRight(want, "\x00") == strings.TrimRight(have, "\x00") {
				found = true
				break
			}
		}
		if found {
			existing = append(existing, safeString(want))
		} else {
			missing++
		}
	}
	return existing, missing
}

func orPanic(err error) {
	if err != nil {
		panic(err)
	}
}

type stackFrame struct {
	function string
	file     string
	line     int
}

func newStackFrame(pc uintptr) stackFrame {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return stackFrame{function: "unknown"}
	}
	file, line := fn.FileLine(pc)
	return stackFrame{
		function: fn.Name(),
		file:     file,
		line:     line,
	}
}

func (f stackFrame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.function, f.file, f.line)
}
