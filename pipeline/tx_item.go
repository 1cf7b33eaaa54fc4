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
	"time"

	"github.com/blinklabs-io/prism/ledger"
)

// TxItem represents a transaction blob as it moves through the pipeline.
// It is thread-safe and tracks the processing state at each stage.
type TxItem struct {
	// Immutable fields, set at construction
	rawCbor        []byte
	sequenceNumber uint64
	receivedAt     time.Time

	mu sync.RWMutex

	// Decode stage results
	tx             *ledger.Transaction
	decodeError    error
	decodeDuration time.Duration

	// Verify stage results
	verified       bool
	verifyError    error
	verifyDuration time.Duration

	// Apply stage results
	applied       bool
	applyError    error
	applyDuration time.Duration
}

// NewTxItem creates a new TxItem. The rawCbor slice is copied so the item owns
// its data while workers process it concurrently.
func NewTxItem(rawCbor []byte, seq uint64) *TxItem {
	data := make([]byte, len(rawCbor))
	copy(data, rawCbor)
	return &TxItem{
		rawCbor:        data,
		sequenceNumber: seq,
		receivedAt:     time.Now(),
	}
}

// RawCbor returns the raw CBOR bytes of the transaction.
// The returned slice should not be modified.
func (i *TxItem) RawCbor() []byte {
	return i.rawCbor
}

// SequenceNumber returns the submission order of the item.
func (i *TxItem) SequenceNumber() uint64 {
	return i.sequenceNumber
}

// ReceivedAt returns the time when the item was submitted.
func (i *TxItem) ReceivedAt() time.Time {
	return i.receivedAt
}

// Transaction returns the decoded transaction, or nil if not decoded.
func (i *TxItem) Transaction() *ledger.Transaction {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.tx
}

// SetTransaction sets the decoded transaction and clears any decode error.
func (i *TxItem) SetTransaction(tx *ledger.Transaction, duration time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.tx = tx
	i.decodeError = nil
	i.decodeDuration = duration
}

// DecodeError returns the decode error, if any.
func (i *TxItem) DecodeError() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.decodeError
}

// SetDecodeError sets the decode error and clears any decoded transaction.
func (i *TxItem) SetDecodeError(err error, duration time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.tx = nil
	i.decodeError = err
	i.decodeDuration = duration
}

// DecodeDuration returns the time spent in the decode stage.
func (i *TxItem) DecodeDuration() time.Duration {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.decodeDuration
}

// IsDecoded returns true if the transaction has been successfully decoded.
func (i *TxItem) IsDecoded() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.tx != nil
}

// SetVerification sets the result of stateless verification.
func (i *TxItem) SetVerification(verified bool, err error, duration time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.verified = verified
	i.verifyError = err
	i.verifyDuration = duration
}

// IsVerified returns true if the transaction passed stateless verification.
func (i *TxItem) IsVerified() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.verified
}

// VerifyError returns the verification error, if any.
func (i *TxItem) VerifyError() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.verifyError
}

// VerifyDuration returns the time spent in the verify stage.
func (i *TxItem) VerifyDuration() time.Duration {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.verifyDuration
}

// SetApplied sets the apply result.
func (i *TxItem) SetApplied(applied bool, err error, duration time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.applied = applied
	i.applyError = err
	i.applyDuration = duration
}

// IsApplied returns true if the transaction has been applied.
func (i *TxItem) IsApplied() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.applied
}

// ApplyError returns the apply error, if any.
func (i *TxItem) ApplyError() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.applyError
}

// ApplyDuration returns the time spent in the apply stage.
func (i *TxItem) ApplyDuration() time.Duration {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.applyDuration
}

// Err returns the first error recorded for the item across all stages.
func (i *TxItem) Err() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	switch {
	case i.decodeError != nil:
		return i.decodeError
	case i.verifyError != nil:
		return i.verifyError
	default:
		return i.applyError
	}
}

// readyToApply reports whether earlier stages succeeded
func (i *TxItem) readyToApply() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.tx != nil && i.decodeError == nil && i.verifyError == nil
}

// TotalDuration returns the total processing time from receipt to now.
func (i *TxItem) TotalDuration() time.Duration {
	return time.Since(i.receivedAt)
}
