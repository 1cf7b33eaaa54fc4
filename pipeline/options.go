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
	"runtime"
)

// DefaultMaxPendingTxs is the default limit for out-of-order items buffered in
// the apply stage.
const DefaultMaxPendingTxs = 4096

// PipelineConfig holds configuration for a TxPipeline.
type PipelineConfig struct {
	// DecodeWorkers is the number of parallel decode workers.
	DecodeWorkers int
	// VerifyWorkers is the number of parallel verification workers.
	// Zero disables stateless verification, leaving it to ApplyFunc.
	VerifyWorkers int
	// PrefetchBufferSize is the buffer size for inter-stage channels.
	PrefetchBufferSize int
	// MaxPendingTxs limits out-of-order items buffered in the apply stage.
	MaxPendingTxs int
	// ApplyFunc is called to apply transactions in order.
	ApplyFunc ApplyFunc
}

// DefaultPipelineConfig returns a PipelineConfig with defaults scaled to the
// number of CPUs. Signature verification dominates, so it gets more workers.
func DefaultPipelineConfig() PipelineConfig {
	numCPU := runtime.NumCPU()
	return PipelineConfig{
		DecodeWorkers:      max(numCPU/4, 2),
		VerifyWorkers:      max(numCPU/2, 2),
		PrefetchBufferSize: 256,
		MaxPendingTxs:      DefaultMaxPendingTxs,
	}
}

// PipelineOption is a functional option for configuring a TxPipeline.
type PipelineOption func(*PipelineConfig)

// WithConfig applies a complete PipelineConfig, replacing all default values.
// Options applied after WithConfig still override the config values.
func WithConfig(config PipelineConfig) PipelineOption {
	return func(c *PipelineConfig) {
		*c = config
	}
}

// WithDecodeWorkers sets the number of decode workers.
func WithDecodeWorkers(n int) PipelineOption {
	return func(c *PipelineConfig) {
		if n > 0 {
			c.DecodeWorkers = n
		}
	}
}

// WithVerifyWorkers sets the number of verification workers.
// Set to 0 to skip the stateless verification stage.
func WithVerifyWorkers(n int) PipelineOption {
	return func(c *PipelineConfig) {
		if n >= 0 {
			c.VerifyWorkers = n
		}
	}
}

// WithPrefetchBufferSize sets the buffer size for inter-stage channels.
func WithPrefetchBufferSize(size int) PipelineOption {
	return func(c *PipelineConfig) {
		if size > 0 {
			c.PrefetchBufferSize = size
		}
	}
}

// WithMaxPendingTxs sets the limit for out-of-order items in the apply stage.
func WithMaxPendingTxs(n int) PipelineOption {
	return func(c *PipelineConfig) {
		if n > 0 {
			c.MaxPendingTxs = n
		}
	}
}

// WithApplyFunc sets the apply function. A nil function is ignored.
func WithApplyFunc(fn ApplyFunc) PipelineOption {
	return func(c *PipelineConfig) {
		if fn != nil {
			c.ApplyFunc = fn
		}
	}
}
