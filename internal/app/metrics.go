package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks frame and event counters for the event loop.
type Metrics struct {
	frameCount   atomic.Uint64
	frameTotalNs atomic.Int64
	frameMaxNs   atomic.Int64
	skipped      atomic.Uint64
	eventCount   atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordFrame records the time spent drawing and presenting one frame.
func (m *Metrics) RecordFrame(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.frameCount.Add(1)
	m.frameTotalNs.Add(ns)

	for {
		old := m.frameMaxNs.Load()
		if ns <= old {
			break
		}
		if m.frameMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordSkippedFrame records a frame not drawn because the screen was hidden.
func (m *Metrics) RecordSkippedFrame() {
	m.skipped.Add(1)
}

// RecordEvent records one handled event.
func (m *Metrics) RecordEvent() {
	m.eventCount.Add(1)
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	FrameCount     uint64
	SkippedFrames  uint64
	EventCount     uint64
	AvgFrameTimeNs int64
	MaxFrameTimeNs int64
	Uptime         time.Duration
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	frames := m.frameCount.Load()

	var avg int64
	if frames > 0 {
		avg = m.frameTotalNs.Load() / int64(frames)
	}

	return MetricsSnapshot{
		FrameCount:     frames,
		SkippedFrames:  m.skipped.Load(),
		EventCount:     m.eventCount.Load(),
		AvgFrameTimeNs: avg,
		MaxFrameTimeNs: m.frameMaxNs.Load(),
		Uptime:         time.Since(m.startTime),
	}
}
