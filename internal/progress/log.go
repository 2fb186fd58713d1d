package progress

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// LogManager implements Manager with line-based output for non-TTY
// environments (cron jobs, CI). Prints one status line per stage change
// instead of interactive bars.
type LogManager struct {
	mu sync.Mutex
}

// NewLogManager creates a new log-based progress manager.
func NewLogManager() *LogManager {
	return &LogManager{}
}

func (m *LogManager) NewTracker(index, total int, filename string) Tracker {
	return &logTracker{
		mgr:   m,
		index: index,
		total: total,
		name:  filename,
		start: time.Now(),
	}
}

func (m *LogManager) Wait() {}

type logTracker struct {
	mgr   *LogManager
	index int
	total int
	name  string
	start time.Time
}

func (t *logTracker) log(msg string) {
	t.mgr.mu.Lock()
	defer t.mgr.mu.Unlock()
	ts := time.Now().Format("15:04:05")
	fmt.Fprintf(os.Stderr, "%s [%d/%d] %s  %s\n", ts, t.index+1, t.total, t.name, msg)
}

func (t *logTracker) SetStage(stage string) {
	t.log(stage)
}

func (t *logTracker) Done() {
	t.log(fmt.Sprintf("Finished in %s", time.Since(t.start).Truncate(time.Millisecond)))
}
