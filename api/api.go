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

// Package api defines the submission capability consumed by the request builders:
// account lookups with proofs, the state commitment and transaction submission.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/prism/ledger"
)

var ErrAccountNotFound = errors.New("account not found")

// PrismApi is implemented by anything that accepts transactions and serves account state
type PrismApi interface {
	// GetAccount returns the account, or a nil account when it does not exist, with its proof
	GetAccount(ctx context.Context, id string) (*AccountResponse, error)
	GetCommitment(ctx context.Context) (*CommitmentResponse, error)
	PostTransaction(
		ctx context.Context,
		tx *ledger.Transaction,
	) (*PendingTransaction, error)
}

// RequestError indicates a failed request against the submission capability
type RequestError struct {
	Request string
	Err     error
}

func (e RequestError) Error() string {
	return fmt.Sprintf("request %s failed: %v", e.Request, e.Err)
}

func (e RequestError) Unwrap() error { return e.Err }
