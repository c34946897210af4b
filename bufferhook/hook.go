// Package bufferhook provides a logrus hook collecting all log lines of a
// single run into a buffer so the run's reporters can deliver the full log
// afterwards. The hook is safe for concurrent use: the supervisor logs
// workload output from two stream-reader goroutines at once.
package bufferhook

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var quotingRequired = regexp.MustCompile(`[^a-zA-Z0-9_/@^+.-]`)

// Hook buffers formatted log lines for later reporting.
type Hook struct {
	levels []logrus.Level

	mu  sync.Mutex
	buf bytes.Buffer
}

// New creates a Hook capturing all messages up to and including level.
func New(level logrus.Level) *Hook {
	h := &Hook{}

	for _, l := range logrus.AllLevels {
		if l <= level {
			h.levels = append(h.levels, l)
		}
	}

	return h
}

// Levels returns the enabled levels for this hook (interface logrus.Hook)
func (h *Hook) Levels() []logrus.Level { return h.levels }

// Fire retrieves the event and buffers the log line (interface logrus.Hook)
func (h *Hook) Fire(e *logrus.Entry) error {
	line := formatLine(e)

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.buf.Write(line)
	return err
}

// String returns everything captured so far.
func (h *Hook) String() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.buf.String()
}

func formatLine(entry *logrus.Entry) []byte {
	buf := new(bytes.Buffer)

	levelText := strings.ToUpper(entry.Level.String())[0:4]
	fmt.Fprintf(buf, "%s[%s] %-44s ", levelText, entry.Time.Format(time.RFC3339), entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(buf, " %s=%s", k, formatValue(entry.Data[k]))
	}

	buf.WriteByte('\n')
	return buf.Bytes()
}

func formatValue(value interface{}) string {
	stringVal, ok := value.(string)
	if !ok {
		stringVal = fmt.Sprint(value)
	}

	if len(stringVal) == 0 || quotingRequired.MatchString(stringVal) {
		return fmt.Sprintf("%q", stringVal)
	}

	return stringVal
}
