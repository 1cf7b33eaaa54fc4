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

package api

import (
	"context"
	"time"

	"github.com/blinklabs-io/prism/ledger"
)

const DefaultPollingInterval = 5 * time.Second

// PendingTransaction is a submitted transaction whose effect can be awaited
type PendingTransaction struct {
	prism       PrismApi
	transaction *ledger.Transaction
}

func NewPendingTransaction(
	prism PrismApi,
	tx *ledger.Transaction,
) *PendingTransaction {
	return &PendingTransaction{
		prism:       prism,
		transaction: tx,
	}
}

func (p *PendingTransaction) Transaction() *ledger.Transaction {
	return p.transaction
}

// Wait polls at the default interval until the transaction has been applied
func (p *PendingTransaction) Wait(ctx context.Context) (*ledger.Account, error) {
	return p.WaitWithInterval(ctx, DefaultPollingInterval)
}

// WaitWithInterval re-fetches the target account every interval until its nonce
// has moved past the transaction nonce. It only returns early when ctx is done or
// a lookup fails.
func (p *PendingTransaction) WaitWithInterval(
	ctx context.Context,
	interval time.Duration,
) (*ledger.Account, error) {
	if interval <= 0 {
		interval = DefaultPollingInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		resp, err := p.prism.GetAccount(ctx, p.transaction.ID)
		if err != nil {
			return nil, err
		}
		if resp != nil && resp.Account != nil &&
			resp.Account.Nonce > p.transaction.Nonce {
			return resp.Account, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
