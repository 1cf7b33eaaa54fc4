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

package pipeline_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/blinklabs-io/prism/internal/test"
	"github.com/blinklabs-io/prism/keys"
	"github.com/blinklabs-io/prism/ledger"
	"github.com/blinklabs-io/prism/pipeline"
)

func benchmarkBlobs(b *testing.B, count int) [][]byte {
	b.Helper()
	blobs := make([][]byte, count)
	for i := range blobs {
		var sk *keys.SigningKey
		if i%2 == 0 {
			sk = test.Ed25519Key(byte(i%200 + 1))
		} else {
			sk = test.Secp256k1Key(byte(i%200 + 1))
		}
		id := fmt.Sprintf("account-%d", i)
		tx, err := ledger.NewUnsignedTransaction(
			id,
			ledger.NewCreateAccountOperation(id, sk.VerifyingKey()),
			0,
		).Sign(sk)
		if err != nil {
			b.Fatalf("sign: %v", err)
		}
		blobs[i], err = tx.Encode()
		if err != nil {
			b.Fatalf("encode: %v", err)
		}
	}
	return blobs
}

// BenchmarkDecodeStage benchmarks transaction decode throughput.
func BenchmarkDecodeStage(b *testing.B) {
	blobs := benchmarkBlobs(b, 16)
	stage := pipeline.NewDecodeStage()
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		item := pipeline.NewTxItem(blobs[i%len(blobs)], 0)
		if err := stage.Process(ctx, item); err != nil {
			b.Fatalf("decode error: %v", err)
		}
	}
}

// BenchmarkVerifyStage benchmarks signature verification over both curves.
func BenchmarkVerifyStage(b *testing.B) {
	blobs := benchmarkBlobs(b, 16)
	decode := pipeline.NewDecodeStage()
	stage := pipeline.NewVerifyStage()
	ctx := context.Background()
	items := make([]*pipeline.TxItem, len(blobs))
	for i, blob := range blobs {
		items[i] = pipeline.NewTxItem(blob, uint64(i))
		if err := decode.Process(ctx, items[i]); err != nil {
			b.Fatalf("decode error: %v", err)
		}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		if err := stage.Process(ctx, items[i%len(items)]); err != nil {
			b.Fatalf("verify error: %v", err)
		}
	}
}

// BenchmarkProcess benchmarks a full epoch with different verifier counts.
func BenchmarkProcess(b *testing.B) {
	blobs := benchmarkBlobs(b, 256)
	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("%dVerifyWorkers", workers), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				items, err := pipeline.Process(
					context.Background(),
					blobs,
					pipeline.WithVerifyWorkers(workers),
				)
				if err != nil {
					b.Fatalf("process error: %v", err)
				}
				if len(items) != len(blobs) {
					b.Fatalf("expected %d items, got %d", len(blobs), len(items))
				}
			}
		})
	}
}
