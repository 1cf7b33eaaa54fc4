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
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrPipelineStopped is returned when trying to submit to a stopped pipeline.
var ErrPipelineStopped = errors.New("pipeline is stopped")

// ErrPipelineNotStarted is returned when trying to use a pipeline that hasn't been started.
var ErrPipelineNotStarted = errors.New("pipeline not started")

// closedResultsChan is returned by Results() before Start() so callers never
// block on a nil channel.
var closedResultsChan = func() <-chan *TxItem {
	ch := make(chan *TxItem)
	close(ch)
	return ch
}()

// newNotStartedErrorsChan creates a fresh channel that yields ErrPipelineNotStarted once.
func newNotStartedErrorsChan() <-chan error {
	ch := make(chan error, 1)
	ch <- ErrPipelineNotStarted
	close(ch)
	return ch
}

// TxPipeline orchestrates the transaction processing pipeline.
type TxPipeline struct {
	config PipelineConfig

	decodeStage *DecodeStage
	verifyStage *VerifyStage
	applyStage  *ApplyStage

	decodePool  *StageWorkerPool
	verifyPool  *StageWorkerPool
	applyRunner *ApplyStageRunner

	submitChan   chan *TxItem
	decodedChan  chan *TxItem
	verifiedChan chan *TxItem
	resultsChan  chan *TxItem
	errorsChan   chan error

	metrics *PipelineMetrics

	sequenceCounter uint64
	ctx             context.Context
	cancel          context.CancelFunc
	started         atomic.Bool
	stopped         atomic.Bool
	wg              sync.WaitGroup
	mu              sync.Mutex   // protects Start/Stop
	submitMu        sync.RWMutex // protects Submit against concurrent Stop
}

// NewTxPipeline creates a new TxPipeline using functional options.
//
// Example:
//
//	p := NewTxPipeline(
//	    WithVerifyWorkers(8),
//	    WithApplyFunc(myApplyFunc),
//	)
func NewTxPipeline(opts ...PipelineOption) *TxPipeline {
	config := DefaultPipelineConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &TxPipeline{
		config:  config,
		metrics: NewPipelineMetrics(),
	}
}

// Start starts the pipeline processing.
func (p *TxPipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped.Load() {
		return ErrPipelineStopped
	}
	if p.started.Load() {
		return nil
	}

	p.ctx, p.cancel = context.WithCancel(ctx)

	bufSize := p.config.PrefetchBufferSize
	p.submitChan = make(chan *TxItem, bufSize)
	p.decodedChan = make(chan *TxItem, bufSize)
	p.resultsChan = make(chan *TxItem, bufSize)
	p.errorsChan = make(chan error, bufSize)

	p.decodeStage = NewDecodeStage()
	p.applyStage = NewApplyStage(p.config.ApplyFunc, p.config.MaxPendingTxs)

	p.decodePool = NewStageWorkerPool(StageWorkerPoolConfig{
		Stage:         p.decodeStage,
		NumWorkers:    p.config.DecodeWorkers,
		Input:         p.submitChan,
		Output:        p.decodedChan,
		Errors:        p.errorsChan,
		RecordMetrics: DecodeMetricsRecorder(p.metrics),
	})

	applyInput := p.decodedChan
	verifyEnabled := p.config.VerifyWorkers > 0
	if verifyEnabled {
		p.verifiedChan = make(chan *TxItem, bufSize)
		p.verifyStage = NewVerifyStage()
		p.verifyPool = NewStageWorkerPool(StageWorkerPoolConfig{
			Stage:         p.verifyStage,
			NumWorkers:    p.config.VerifyWorkers,
			Input:         p.decodedChan,
			Output:        p.verifiedChan,
			Errors:        p.errorsChan,
			RecordMetrics: VerifyMetricsRecorder(p.metrics),
			ShouldRecord:  RecordIfDecoded,
		})
		applyInput = p.verifiedChan
	}

	p.applyRunner = NewApplyStageRunner(
		p.applyStage,
		applyInput,
		p.resultsChan,
		p.errorsChan,
	)
	p.applyRunner.SetMetrics(p.metrics)

	p.decodePool.Start(p.ctx) //nolint:contextcheck
	if verifyEnabled {
		p.verifyPool.Start(p.ctx) //nolint:contextcheck
	}
	p.applyRunner.Start(p.ctx) //nolint:contextcheck

	p.wg.Add(1)
	go p.metricsCollector()

	p.started.Store(true)
	return nil
}

// Submit submits a transaction blob for processing. It is safe to call
// concurrently with Stop().
func (p *TxPipeline) Submit(ctx context.Context, rawCbor []byte) error {
	if !p.started.Load() {
		return ErrPipelineNotStarted
	}

	// Stop() takes the write lock before closing submitChan
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.stopped.Load() {
		return ErrPipelineStopped
	}

	item := NewTxItem(rawCbor, atomic.AddUint64(&p.sequenceCounter, 1)-1)

	select {
	case p.submitChan <- item:
		p.metrics.RecordSubmit()
		return nil
	case <-ctx.Done():
		// A sequence gap here stalls the apply stage, which only happens on shutdown
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPipelineStopped
	}
}

// Results returns a channel of processed items in submission order.
// If the pipeline has not been started, returns a closed channel.
func (p *TxPipeline) Results() <-chan *TxItem {
	if !p.started.Load() {
		return closedResultsChan
	}
	return p.resultsChan
}

// Errors returns a channel of processing errors.
// If the pipeline has not been started, returns a channel that yields
// ErrPipelineNotStarted once and then closes.
func (p *TxPipeline) Errors() <-chan error {
	if !p.started.Load() {
		return newNotStartedErrorsChan()
	}
	return p.errorsChan
}

// Stop gracefully stops the pipeline.
func (p *TxPipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started.Load() || p.stopped.Load() {
		return nil
	}

	// Cancel first so a Submit blocked on a full channel releases its read lock
	p.cancel()

	p.submitMu.Lock()
	p.stopped.Store(true)
	close(p.submitChan)
	p.submitMu.Unlock()

	p.decodePool.Stop()
	close(p.decodedChan)

	if p.verifyPool != nil {
		p.verifyPool.Stop()
		close(p.verifiedChan)
	}

	p.applyRunner.Stop()

	close(p.resultsChan)
	close(p.errorsChan)

	p.wg.Wait()
	return nil
}

// Stats returns the current pipeline statistics.
func (p *TxPipeline) Stats() PipelineStats {
	return p.metrics.Stats()
}

// PendingCount returns the approximate number of items still being processed.
func (p *TxPipeline) PendingCount() int {
	if !p.started.Load() {
		return 0
	}
	channelDepth := len(p.submitChan) + len(p.decodedChan) + len(p.verifiedChan)
	applyPending := 0
	if p.applyStage != nil {
		applyPending = p.applyStage.PendingCount()
	}
	return channelDepth + applyPending
}

// WaitForDrain blocks until all currently submitted items have left the
// processing stages or the context is cancelled.
func (p *TxPipeline) WaitForDrain(ctx context.Context) error {
	if !p.started.Load() {
		return ErrPipelineNotStarted
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if p.PendingCount() == 0 {
				return nil
			}
		}
	}
}

func (p *TxPipeline) metricsCollector() {
	defer p.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			depth := len(p.submitChan) + len(p.decodedChan) + len(p.verifiedChan)
			p.metrics.UpdateQueueDepth(depth)
		}
	}
}

// Process runs blobs through a fresh pipeline and returns the processed items
// in submission order. It returns once every blob has been applied or rejected,
// or when ctx is done.
func Process(ctx context.Context, blobs [][]byte, opts ...PipelineOption) ([]*TxItem, error) {
	p := NewTxPipeline(opts...)
	if err := p.Start(ctx); err != nil {
		return nil, err
	}

	// Per-item errors are recorded on the items themselves
	errsDone := make(chan struct{})
	go func() {
		defer close(errsDone)
		for range p.Errors() {
		}
	}()

	submitDone := make(chan error, 1)
	go func() {
		for _, blob := range blobs {
			if err := p.Submit(ctx, blob); err != nil {
				submitDone <- err
				return
			}
		}
		submitDone <- nil
	}()

	results := make([]*TxItem, 0, len(blobs))
	pendingSubmit := submitDone
	var err error
	for len(results) < len(blobs) && err == nil {
		select {
		case item := <-p.Results():
			results = append(results, item)
		case err = <-pendingSubmit:
			// Keep collecting after a clean submission run
			pendingSubmit = nil
		case <-ctx.Done():
			err = ctx.Err()
		}
	}
	_ = p.Stop()
	<-errsDone
	return results, err
}
