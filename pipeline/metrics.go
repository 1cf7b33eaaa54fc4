// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"sync"
	"sync/atomic"
	"time"
)

// PipelineMetrics tracks metrics for the entire pipeline.
// Counters are atomic; queue depth and timing are mutex protected.
type PipelineMetrics struct {
	txSubmitted  atomic.Uint64
	txDecoded    atomic.Uint64
	txVerified   atomic.Uint64
	txApplied    atomic.Uint64
	decodeErrors atomic.Uint64
	verifyErrors atomic.Uint64
	applyErrors  atomic.Uint64

	mu                sync.RWMutex
	currentQueueDepth int
	peakQueueDepth    int
	lastApplyTime     time.Time
	startTime         time.Time
}

// NewPipelineMetrics creates a new PipelineMetrics.
func NewPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		startTime: time.Now(),
	}
}

// RecordSubmit increments the submitted counter.
func (m *PipelineMetrics) RecordSubmit() {
	m.txSubmitted.Add(1)
}

// RecordDecode records a decode result.
func (m *PipelineMetrics) RecordDecode(_ time.Duration, err error) {
	if err != nil {
		m.decodeErrors.Add(1)
	} else {
		m.txDecoded.Add(1)
	}
}

// RecordVerify records a verification result.
func (m *PipelineMetrics) RecordVerify(_ time.Duration, err error) {
	if err != nil {
		m.verifyErrors.Add(1)
	} else {
		m.txVerified.Add(1)
	}
}

// RecordApply records an apply result.
func (m *PipelineMetrics) RecordApply(_ time.Duration, err error) {
	if err != nil {
		m.applyErrors.Add(1)
		return
	}
	m.txApplied.Add(1)
	m.mu.Lock()
	m.lastApplyTime = time.Now()
	m.mu.Unlock()
}

// UpdateQueueDepth updates the queue depth tracking.
func (m *PipelineMetrics) UpdateQueueDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentQueueDepth = depth
	if depth > m.peakQueueDepth {
		m.peakQueueDepth = depth
	}
}

// Stats returns a snapshot of the current metrics.
func (m *PipelineMetrics) Stats() PipelineStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return PipelineStats{
		TxSubmitted:       m.txSubmitted.Load(),
		TxDecoded:         m.txDecoded.Load(),
		TxVerified:        m.txVerified.Load(),
		TxApplied:         m.txApplied.Load(),
		DecodeErrors:      m.decodeErrors.Load(),
		VerifyErrors:      m.verifyErrors.Load(),
		ApplyErrors:       m.applyErrors.Load(),
		CurrentQueueDepth: m.currentQueueDepth,
		PeakQueueDepth:    m.peakQueueDepth,
		LastApplyTime:     m.lastApplyTime,
		StartTime:         m.startTime,
	}
}

// Reset resets all metrics.
func (m *PipelineMetrics) Reset() {
	m.txSubmitted.Store(0)
	m.txDecoded.Store(0)
	m.txVerified.Store(0)
	m.txApplied.Store(0)
	m.decodeErrors.Store(0)
	m.verifyErrors.Store(0)
	m.applyErrors.Store(0)

	m.mu.Lock()
	m.currentQueueDepth = 0
	m.peakQueueDepth = 0
	m.lastApplyTime = time.Time{}
	m.startTime = time.Now()
	m.mu.Unlock()
}
