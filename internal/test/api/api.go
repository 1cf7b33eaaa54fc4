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

package test_api

import (
	"context"
	"errors"
	"sync"

	"github.com/blinklabs-io/prism/api"
	"github.com/blinklabs-io/prism/ledger"
)

// Compile-time check that MockPrismApi implements PrismApi
var _ api.PrismApi = (*MockPrismApi)(nil)

// MockPrismApi is the internal mock of the submission capability used by tests.
// Tests configure the Func fields to control behavior. Posted transactions are
// recorded in order.
type MockPrismApi struct {
	GetAccountFunc      func(context.Context, string) (*api.AccountResponse, error)
	GetCommitmentFunc   func(context.Context) (*api.CommitmentResponse, error)
	PostTransactionFunc func(context.Context, *ledger.Transaction) error

	mu           sync.Mutex
	posted       []*ledger.Transaction
	accountCalls int
}

func (m *MockPrismApi) GetAccount(
	ctx context.Context,
	id string,
) (*api.AccountResponse, error) {
	m.mu.Lock()
	m.accountCalls++
	m.mu.Unlock()
	if m.GetAccountFunc != nil {
		return m.GetAccountFunc(ctx, id)
	}
	return &api.AccountResponse{Proof: api.EmptyProof()}, nil
}

func (m *MockPrismApi) GetCommitment(
	ctx context.Context,
) (*api.CommitmentResponse, error) {
	if m.GetCommitmentFunc != nil {
		return m.GetCommitmentFunc(ctx)
	}
	return nil, errors.New("mock commitment not configured")
}

func (m *MockPrismApi) PostTransaction(
	ctx context.Context,
	tx *ledger.Transaction,
) (*api.PendingTransaction, error) {
	if m.PostTransactionFunc != nil {
		if err := m.PostTransactionFunc(ctx, tx); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	m.posted = append(m.posted, tx)
	m.mu.Unlock()
	return api.NewPendingTransaction(m, tx), nil
}

// Posted returns the transactions accepted so far
func (m *MockPrismApi) Posted() []*ledger.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]*ledger.Transaction, len(m.posted))
	copy(ret, m.posted)
	return ret
}

// AccountCalls returns the number of GetAccount calls so far
func (m *MockPrismApi) AccountCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accountCalls
}
