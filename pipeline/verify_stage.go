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
	"time"
)

// VerifyStage runs the stateless checks of a decoded transaction: basic validity
// and the signature against the carried verifying key. Account state is not
// consulted, so items can be verified in any order.
type VerifyStage struct{}

// NewVerifyStage creates a new VerifyStage.
func NewVerifyStage() *VerifyStage {
	return &VerifyStage{}
}

// Name returns the stage name.
func (s *VerifyStage) Name() string {
	return "verify"
}

// Process verifies the transaction in the item.
func (s *VerifyStage) Process(ctx context.Context, item *TxItem) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// The decode stage already reported the failure
	if !item.IsDecoded() {
		return nil
	}

	start := time.Now()
	tx := item.Transaction()
	err := tx.ValidateBasic()
	if err == nil {
		err = tx.Verify()
	}
	duration := time.Since(start)

	if err != nil {
		item.SetVerification(false, err, duration)
		return err
	}
	item.SetVerification(true, nil, duration)
	return nil
}
