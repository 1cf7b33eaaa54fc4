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

package api_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/prism/api"
	"github.com/blinklabs-io/prism/internal/test"
	test_api "github.com/blinklabs-io/prism/internal/test/api"
	"github.com/blinklabs-io/prism/ledger"
)

func testTransaction(t *testing.T, nonce uint64) *ledger.Transaction {
	t.Helper()
	sk := test.Ed25519Key(1)
	tx, err := ledger.NewUnsignedTransaction(
		"alice",
		ledger.NewAddKeyOperation(test.Ed25519Key(2).VerifyingKey()),
		nonce,
	).Sign(sk)
	require.NoError(t, err)
	return tx
}

func TestPendingTransactionWait(t *testing.T) {
	defer goleak.VerifyNone(t)
	var nonce atomic.Uint64
	nonce.Store(3)
	mock := &test_api.MockPrismApi{
		GetAccountFunc: func(_ context.Context, id string) (*api.AccountResponse, error) {
			// Applied on the third poll
			n := nonce.Load()
			if n < 5 {
				nonce.Add(1)
			}
			return &api.AccountResponse{
				Account: &ledger.Account{ID: id, Nonce: n},
				Proof:   api.EmptyProof(),
			}, nil
		},
	}
	pending, err := mock.PostTransaction(context.Background(), testTransaction(t, 4))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	account, err := pending.WaitWithInterval(ctx, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), account.Nonce)
	assert.Equal(t, 3, mock.AccountCalls())
	assert.Len(t, mock.Posted(), 1)
}

func TestPendingTransactionWaitMissingAccount(t *testing.T) {
	defer goleak.VerifyNone(t)
	mock := &test_api.MockPrismApi{}
	pending := api.NewPendingTransaction(mock, testTransaction(t, 0))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := pending.WaitWithInterval(ctx, time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, mock.AccountCalls(), 1)
}

func TestPendingTransactionWaitCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)
	mock := &test_api.MockPrismApi{}
	pending := api.NewPendingTransaction(mock, testTransaction(t, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// The default interval never elapses before cancellation is noticed
	_, err := pending.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.AccountCalls())
}

func TestPendingTransactionWaitLookupError(t *testing.T) {
	defer goleak.VerifyNone(t)
	lookupErr := errors.New("connection refused")
	mock := &test_api.MockPrismApi{
		GetAccountFunc: func(context.Context, string) (*api.AccountResponse, error) {
			return nil, api.RequestError{Request: "get-account", Err: lookupErr}
		},
	}
	pending := api.NewPendingTransaction(mock, testTransaction(t, 0))
	_, err := pending.WaitWithInterval(context.Background(), time.Millisecond)
	assert.ErrorIs(t, err, lookupErr)
	assert.ErrorAs(t, err, &api.RequestError{})
}

func TestEmptyProof(t *testing.T) {
	proof := api.EmptyProof()
	assert.Nil(t, proof.Leaf)
	assert.NotNil(t, proof.Siblings)
	assert.Empty(t, proof.Siblings)
}
