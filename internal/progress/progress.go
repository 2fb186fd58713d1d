// Package progress reports per-file parse status: interactive bars on TTYs,
// timestamped stderr lines elsewhere, or nothing at all.
package progress

import (
	"fmt"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Tracker tracks one input file through its parse stages.
type Tracker interface {
	SetStage(stage string)
	Done()
}

// Manager creates trackers for individual files.
type Manager interface {
	NewTracker(index, total int, filename string) Tracker
	Wait()
}

// MPBManager implements Manager using the mpb multi-progress-bar library.
type MPBManager struct {
	container *mpb.Progress
}

// NewMPBManager creates a new mpb-based progress manager.
func NewMPBManager() *MPBManager {
	return &MPBManager{container: mpb.New(mpb.WithWidth(60))}
}

func (m *MPBManager) NewTracker(index, total int, filename string) Tracker {
	stage := &atomic.Value{}
	stage.Store("")
	bar := m.container.AddBar(1,
		mpb.PrependDecorators(
			decor.Name(fmt.Sprintf("[%d/%d] %s ", index+1, total, filename), decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.Any(func(s decor.Statistics) string {
				return stage.Load().(string)
			}),
		),
	)
	return &mpbTracker{bar: bar, stage: stage}
}

// Wait waits for all progress bars to finish.
func (m *MPBManager) Wait() {
	m.container.Wait()
}

type mpbTracker struct {
	bar   *mpb.Bar
	stage *atomic.Value
}

func (t *mpbTracker) SetStage(stage string) {
	t.stage.Store(stage)
}

func (t *mpbTracker) Done() {
	t.bar.SetTotal(1, true)
}

// NoopManager is a no-op progress manager for quiet runs.
type NoopManager struct{}

func (m *NoopManager) NewTracker(index, total int, filename string) Tracker {
	return noopTracker{}
}

func (m *NoopManager) Wait() {}

type noopTracker struct{}

func (noopTracker) SetStage(string) {}
func (noopTracker) Done()           {}
