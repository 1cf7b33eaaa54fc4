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

// Package pipeline provides a concurrent processing pipeline for transaction
// blobs. Decoding and stateless verification run in parallel worker pools while
// application to account state happens strictly in submission order.
package pipeline

import (
	"context"
	"time"
)

// Stage represents a processing stage in the pipeline.
type Stage interface {
	// Name returns the name of the stage for logging and metrics.
	Name() string
	// Process processes a single item. Returns an error if processing fails.
	Process(ctx context.Context, item *TxItem) error
}

// StageFunc is an adapter that allows using ordinary functions as Stage implementations.
type StageFunc struct {
	name string
	fn   func(ctx context.Context, item *TxItem) error
}

// NewStageFunc creates a new StageFunc with the given name and processing function.
func NewStageFunc(name string, fn func(ctx context.Context, item *TxItem) error) *StageFunc {
	return &StageFunc{
		name: name,
		fn:   fn,
	}
}

// Name returns the name of the stage.
func (s *StageFunc) Name() string {
	return s.name
}

// Process calls the underlying function.
func (s *StageFunc) Process(ctx context.Context, item *TxItem) error {
	return s.fn(ctx, item)
}

// Pipeline represents a transaction processing pipeline.
type Pipeline interface {
	// Start starts the pipeline processing.
	Start(ctx context.Context) error
	// Submit submits a transaction blob for processing. The context allows
	// callers to give up while the pipeline applies backpressure.
	Submit(ctx context.Context, rawCbor []byte) error
	// Results returns a channel of processed items, in submission order.
	Results() <-chan *TxItem
	// Errors returns a channel of processing errors.
	Errors() <-chan error
	// Stop gracefully stops the pipeline.
	Stop() error
	// WaitForDrain waits for all submitted items to be processed.
	WaitForDrain(ctx context.Context) error
	// Stats returns the current pipeline statistics.
	Stats() PipelineStats
}

// PipelineStats contains statistics about pipeline performance.
type PipelineStats struct {
	TxSubmitted  uint64
	TxDecoded    uint64
	TxVerified   uint64
	TxApplied    uint64
	DecodeErrors uint64
	VerifyErrors uint64
	ApplyErrors  uint64

	// CurrentQueueDepth is the current number of items in the inter-stage channels.
	CurrentQueueDepth int
	// PeakQueueDepth is the maximum queue depth observed.
	PeakQueueDepth int

	// LastApplyTime is the time the last transaction was applied.
	LastApplyTime time.Time
	// StartTime is when the pipeline was started.
	StartTime time.Time
}
