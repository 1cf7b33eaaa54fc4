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

// Package node provides an in-memory implementation of the submission capability.
// Submitted transactions are checked statelessly and queued; each epoch drains the
// queue through the transaction pipeline and applies the results in submission
// order.
package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/prism/api"
	"github.com/blinklabs-io/prism/digest"
	"github.com/blinklabs-io/prism/ledger"
	"github.com/blinklabs-io/prism/pipeline"
)

var ErrRateLimited = errors.New("rate limited")

// Compile-time check that Node implements PrismApi
var _ api.PrismApi = (*Node)(nil)

// LogEntry records an applied transaction
type LogEntry struct {
	Epoch     uint64        `json:"epoch"`
	ID        string        `json:"id"`
	Nonce     uint64        `json:"nonce"`
	Operation string        `json:"operation"`
	Hash      digest.Digest `json:"hash"`
	// CID references the signed interop record of CreateDID transactions
	CID string `json:"cid,omitempty"`
}

// EpochResult summarizes a finalized epoch
type EpochResult struct {
	Epoch      uint64        `json:"epoch"`
	Applied    int           `json:"applied"`
	Failed     int           `json:"failed"`
	Commitment digest.Digest `json:"commitment"`
}

type Node struct {
	logger        *slog.Logger
	epochInterval time.Duration
	rateLimit     float64
	rateBurst     int
	pipelineOpts  []pipeline.PipelineOption
	registerer    prometheus.Registerer
	limiter       *accountLimiter
	metrics       *nodeMetrics

	mu         sync.RWMutex
	accounts   map[string]*ledger.Account
	commitment digest.Digest
	epoch      uint64
	log        []LogEntry

	queueMu sync.Mutex
	queue   [][]byte

	// Serializes epoch finalization
	epochMu sync.Mutex

	loopMu     sync.Mutex
	loopCancel context.CancelFunc
	loopDone   chan struct{}

	// Test hook run after each apply attempt
	afterApply func(*pipeline.TxItem)
}

func New(opts ...NodeOptionFunc) (*Node, error) {
	n := &Node{
		epochInterval: DefaultEpochInterval,
		rateLimit:     DefaultRateLimit,
		rateBurst:     DefaultRateBurst,
		accounts:      make(map[string]*ledger.Account),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	n.limiter = newAccountLimiter(n.rateLimit, n.rateBurst)
	n.metrics = newNodeMetrics(n.registerer)
	c, err := commitment(n.accounts)
	if err != nil {
		return nil, err
	}
	n.commitment = c
	return n, nil
}

// GetAccount returns a copy of the account, or a nil account with an empty
// proof when it does not exist
func (n *Node) GetAccount(
	ctx context.Context,
	id string,
) (*api.AccountResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	account, ok := n.accounts[id]
	if !ok {
		return &api.AccountResponse{Proof: api.EmptyProof()}, nil
	}
	ret, err := account.Clone()
	if err != nil {
		return nil, api.RequestError{Request: "get_account", Err: err}
	}
	leaf, err := leafHash(account)
	if err != nil {
		return nil, api.RequestError{Request: "get_account", Err: err}
	}
	proof := api.EmptyProof()
	proof.Leaf = &leaf
	return &api.AccountResponse{Account: ret, Proof: proof}, nil
}

// GetDidDocument returns the account with its rendered identity document
func (n *Node) GetDidDocument(
	ctx context.Context,
	id string,
) (*api.AccountDidResponse, error) {
	resp, err := n.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp.Account == nil {
		return nil, api.RequestError{Request: "get_did_document", Err: api.ErrAccountNotFound}
	}
	return &api.AccountDidResponse{
		Account:     resp.Account,
		Proof:       resp.Proof,
		DidDocument: resp.Account.DidDocument(),
	}, nil
}

func (n *Node) GetCommitment(ctx context.Context) (*api.CommitmentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	return &api.CommitmentResponse{Commitment: n.commitment}, nil
}

// PostTransaction checks tx statelessly and queues it for the next epoch.
// State checks happen when the epoch is finalized.
func (n *Node) PostTransaction(
	ctx context.Context,
	tx *ledger.Transaction,
) (*api.PendingTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !n.limiter.Allow(tx.ID, time.Now()) {
		n.reject(tx, "rate_limited", ErrRateLimited)
		return nil, api.RequestError{Request: "post_transaction", Err: ErrRateLimited}
	}
	if err := tx.ValidateBasic(); err != nil {
		n.reject(tx, "invalid", err)
		return nil, api.RequestError{Request: "post_transaction", Err: err}
	}
	if err := tx.Verify(); err != nil {
		n.reject(tx, "signature", err)
		return nil, api.RequestError{Request: "post_transaction", Err: err}
	}
	data, err := tx.Encode()
	if err != nil {
		n.reject(tx, "encoding", err)
		return nil, api.RequestError{Request: "post_transaction", Err: err}
	}
	n.queueMu.Lock()
	n.queue = append(n.queue, data)
	n.metrics.queued.Set(float64(len(n.queue)))
	n.queueMu.Unlock()
	n.metrics.submitted.Inc()
	n.logger.Debug(
		"queued transaction",
		"id", tx.ID,
		"nonce", tx.Nonce,
		"operation", ledger.OperationTypeName(tx.Operation.Type()),
	)
	return api.NewPendingTransaction(n, tx), nil
}

func (n *Node) reject(tx *ledger.Transaction, reason string, err error) {
	n.metrics.rejected.WithLabelValues(reason).Inc()
	n.logger.Warn(
		"rejected transaction",
		"id", tx.ID,
		"nonce", tx.Nonce,
		"reason", reason,
		"error", err,
	)
}

// PendingCount returns the number of transactions waiting for the next epoch
func (n *Node) PendingCount() int {
	n.queueMu.Lock()
	defer n.queueMu.Unlock()
	return len(n.queue)
}

// Epoch returns the number of finalized epochs
func (n *Node) Epoch() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.epoch
}

// Log returns the applied transactions in application order
func (n *Node) Log() []LogEntry {
	n.mu.RLock()
	defer n.mu.RUnlock()
	ret := make([]LogEntry, len(n.log))
	copy(ret, n.log)
	return ret
}

// FinalizeEpoch applies all queued transactions in submission order and updates
// the commitment. Transactions failing decoding, verification or state
// validation are dropped. When ctx is done before the queue is drained, the
// transactions that never reached the account state are queued again. If some
// were applied by then the epoch is still finalized and its result is returned
// along with the context error.
func (n *Node) FinalizeEpoch(ctx context.Context) (*EpochResult, error) {
	n.epochMu.Lock()
	defer n.epochMu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("finalize epoch: %w", err)
	}

	n.queueMu.Lock()
	blobs := n.queue
	n.queue = nil
	n.queueMu.Unlock()

	n.mu.RLock()
	epoch := n.epoch + 1
	n.mu.RUnlock()

	// Apply outcomes by sequence number, recorded as they happen
	var outcomesMu sync.Mutex
	outcomes := make(map[uint64]error, len(blobs))
	opts := append(
		append([]pipeline.PipelineOption{}, n.pipelineOpts...),
		pipeline.WithApplyFunc(func(item *pipeline.TxItem) error {
			err := n.apply(epoch, item.Transaction())
			outcomesMu.Lock()
			outcomes[item.SequenceNumber()] = err
			outcomesMu.Unlock()
			if n.afterApply != nil {
				n.afterApply(item)
			}
			return err
		}),
	)
	items, procErr := pipeline.Process(ctx, blobs, opts...)
	collected := make(map[uint64]*pipeline.TxItem, len(items))
	for _, item := range items {
		collected[item.SequenceNumber()] = item
	}

	outcomesMu.Lock()
	defer outcomesMu.Unlock()
	result := &EpochResult{Epoch: epoch}
	var remainder [][]byte
	for i, blob := range blobs {
		seq := uint64(i) // #nosec G115
		if applyErr, ok := outcomes[seq]; ok {
			if applyErr == nil {
				result.Applied++
				continue
			}
			result.Failed++
			n.logDropped(epoch, collected[seq], applyErr)
			continue
		}
		item, ok := collected[seq]
		if ok && !isContextError(item.Err()) {
			result.Failed++
			n.logDropped(epoch, item, item.Err())
			continue
		}
		remainder = append(remainder, blob)
	}
	n.requeue(remainder)
	n.metrics.applied.Add(float64(result.Applied))
	n.metrics.failed.Add(float64(result.Failed))

	if procErr != nil && result.Applied == 0 {
		return nil, fmt.Errorf("finalize epoch %d: %w", epoch, procErr)
	}

	n.mu.Lock()
	c, err := commitment(n.accounts)
	if err != nil {
		n.mu.Unlock()
		return nil, fmt.Errorf("finalize epoch %d: %w", epoch, err)
	}
	n.commitment = c
	n.epoch = epoch
	n.mu.Unlock()

	n.metrics.epochs.Inc()
	n.metrics.queued.Set(float64(n.PendingCount()))
	result.Commitment = c
	n.logger.Info(
		"finalized epoch",
		"epoch", epoch,
		"applied", result.Applied,
		"failed", result.Failed,
		"requeued", len(remainder),
		"commitment", c.String(),
	)
	if procErr != nil {
		return result, fmt.Errorf("finalize epoch %d: %w", epoch, procErr)
	}
	return result, nil
}

func (n *Node) logDropped(epoch uint64, item *pipeline.TxItem, err error) {
	id := ""
	if item != nil && item.Transaction() != nil {
		id = item.Transaction().ID
	}
	n.logger.Info(
		"dropped transaction",
		"epoch", epoch,
		"id", id,
		"error", err,
	)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (n *Node) requeue(blobs [][]byte) {
	if len(blobs) == 0 {
		return
	}
	n.queueMu.Lock()
	defer n.queueMu.Unlock()
	n.queue = append(append([][]byte{}, blobs...), n.queue...)
	n.metrics.queued.Set(float64(len(n.queue)))
}

// apply runs from the single apply goroutine of the epoch pipeline
func (n *Node) apply(epoch uint64, tx *ledger.Transaction) error {
	entry, err := newLogEntry(epoch, tx)
	if err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	account, ok := n.accounts[tx.ID]
	if !ok {
		account = &ledger.Account{}
	}
	if err := account.ProcessTransaction(tx); err != nil {
		return err
	}
	n.accounts[tx.ID] = account
	n.log = append(n.log, entry)
	return nil
}

func newLogEntry(epoch uint64, tx *ledger.Transaction) (LogEntry, error) {
	hash, err := tx.Hash()
	if err != nil {
		return LogEntry{}, err
	}
	entry := LogEntry{
		Epoch:     epoch,
		ID:        tx.ID,
		Nonce:     tx.Nonce,
		Operation: ledger.OperationTypeName(tx.Operation.Type()),
		Hash:      hash,
	}
	if op, ok := tx.Operation.(*ledger.CreateDIDOperation); ok {
		signed, err := ledger.NewSignedPLCOp(op, tx.Signature)
		if err != nil {
			return LogEntry{}, err
		}
		id, err := signed.CID()
		if err != nil {
			return LogEntry{}, err
		}
		entry.CID = id.String()
	}
	return entry, nil
}

// Start runs FinalizeEpoch every epoch interval until Stop is called or ctx is done
func (n *Node) Start(ctx context.Context) {
	n.loopMu.Lock()
	defer n.loopMu.Unlock()
	if n.loopCancel != nil {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	n.loopCancel = cancel
	n.loopDone = make(chan struct{})
	go n.epochLoop(loopCtx, n.loopDone)
}

// Stop stops the epoch loop and waits for it to exit. Queued transactions stay queued.
func (n *Node) Stop() {
	n.loopMu.Lock()
	cancel, done := n.loopCancel, n.loopDone
	n.loopCancel, n.loopDone = nil, nil
	n.loopMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (n *Node) epochLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(n.epochInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := n.FinalizeEpoch(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				n.logger.Error("failed to finalize epoch", "error", err)
			}
		}
	}
}
