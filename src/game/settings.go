package game

import (
	"fmt"
	"strings"
)

// JavaHeapSize is a JVM heap size in megabytes. HeapNotUsed leaves the
// choice to the JVM.
type JavaHeapSize int

const (
	HeapNotUsed JavaHeapSize = 0
	Heap256M    JavaHeapSize = 256
	Heap512M    JavaHeapSize = 512
	Heap768M    JavaHeapSize = 768
	Heap1G      JavaHeapSize = 1024
	Heap1536M   JavaHeapSize = 1536
	Heap2G      JavaHeapSize = 2 * 1024
	Heap2560M   JavaHeapSize = 2560
	Heap3G      JavaHeapSize = 3 * 1024
	Heap4G      JavaHeapSize = 4 * 1024
	Heap5G      JavaHeapSize = 5 * 1024
	Heap6G      JavaHeapSize = 6 * 1024
	Heap7G      JavaHeapSize = 7 * 1024
	Heap8G      JavaHeapSize = 8 * 1024
	Heap9G      JavaHeapSize = 9 * 1024
	Heap10G     JavaHeapSize = 10 * 1024
	Heap11G     JavaHeapSize = 11 * 1024
	Heap12G     JavaHeapSize = 12 * 1024
	Heap13G     JavaHeapSize = 13 * 1024
	Heap14G     JavaHeapSize = 14 * 1024
	Heap15G     JavaHeapSize = 15 * 1024
	Heap16G     JavaHeapSize = 16 * 1024
)

// max32BitHeap is the largest heap a 32 bit JVM can address reliably.
const max32BitHeap = Heap1G

var heapSizes = []JavaHeapSize{
	HeapNotUsed, Heap256M, Heap512M, Heap768M, Heap1G, Heap1536M, Heap2G, Heap2560M,
	Heap3G, Heap4G, Heap5G, Heap6G, Heap7G, Heap8G, Heap9G, Heap10G, Heap11G,
	Heap12G, Heap13G, Heap14G, Heap15G, Heap16G,
}

func (h JavaHeapSize) Used() bool {
	return h != HeapNotUsed
}

// String returns the JVM size parameter, e.g. "512m" or "2g".
func (h JavaHeapSize) String() string {
	switch {
	case h == HeapNotUsed:
		return "NOT_USED"
	case h%1024 == 0:
		return fmt.Sprintf("%dg", h/1024)
	default:
		return fmt.Sprintf("%dm", h)
	}
}

// ParseJavaHeapSize accepts the JVM spelling of a supported size, or
// NOT_USED / "" for none.
func ParseJavaHeapSize(s string) (JavaHeapSize, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "not_used" {
		return HeapNotUsed, nil
	}
	for _, h := range heapSizes {
		if h.String() == s {
			return h, nil
		}
	}
	return HeapNotUsed, fmt.Errorf("unsupported heap size %q", s)
}

// HeapSizes lists the sizes that fit into totalMB of physical memory. A 32 bit
// runtime is limited to 1g.
func HeapSizes(totalMB int, bit64 bool) []JavaHeapSize {
	var out []JavaHeapSize
	for _, h := range heapSizes {
		if int(h) <= totalMB && (bit64 || h <= max32BitHeap) {
			out = append(out, h)
		}
	}
	return out
}

// LogLevel overrides the game's own minimum log level.
type LogLevel string

const (
	LogDefault LogLevel = "DEFAULT"
	LogError   LogLevel = "ERROR"
	LogWarn    LogLevel = "WARN"
	LogInfo    LogLevel = "INFO"
	LogDebug   LogLevel = "DEBUG"
	LogTrace   LogLevel = "TRACE"
)

var logLevels = []LogLevel{LogDefault, LogError, LogWarn, LogInfo, LogDebug, LogTrace}

func ParseLogLevel(s string) (LogLevel, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return LogDefault, nil
	}
	for _, l := range logLevels {
		if string(l) == s {
			return l, nil
		}
	}
	return LogDefault, fmt.Errorf("unknown log level %q", s)
}

// override is the value passed as logOverrideLevel. The start confirmation
// is logged at INFO, so DEFAULT resolves to INFO.
func (l LogLevel) override() string {
	if l == LogDefault || l == "" {
		return string(LogInfo)
	}
	return string(l)
}

// Settings are the user's choices for one game start.
type Settings struct {
	JavaPath    string // runtime executable, "java" when empty
	InitialHeap JavaHeapSize
	MaxHeap     JavaHeapSize
	LogLevel    LogLevel
	JavaParams  []string
	GameParams  []string
	GameDataDir string
	Platform    string // GOOS value, runtime.GOOS when empty
}
