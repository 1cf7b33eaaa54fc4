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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/prism/api"
	"github.com/blinklabs-io/prism/builder"
	"github.com/blinklabs-io/prism/keys"
	"github.com/blinklabs-io/prism/ledger"
	"github.com/blinklabs-io/prism/node"
	"github.com/blinklabs-io/prism/pipeline"
)

const (
	demoAccountId = "alice"
	demoServiceId = "demo-service"
	demoAlias     = "at://alice.test"
	demoPDS       = "https://pds.alice.test"
)

func demoCmd(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run an in-process node and walk through the account and DID flows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runDemo(ctx, a, cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall time limit for the demo")
	return cmd
}

func runDemo(ctx context.Context, a *app, w io.Writer) error {
	n, err := node.New(
		node.WithLogger(a.logger),
		node.WithEpochInterval(a.config.Node.EpochInterval),
		node.WithRateLimit(a.config.Node.RateLimit, a.config.Node.RateBurst),
		node.WithPipelineOptions(
			pipeline.WithDecodeWorkers(a.config.Node.DecodeWorkers),
			pipeline.WithVerifyWorkers(a.config.Node.VerifyWorkers),
		),
	)
	if err != nil {
		return err
	}
	n.Start(ctx)
	defer n.Stop()

	interval := a.config.Client.PollingInterval
	wait := func(pending *api.PendingTransaction) (*ledger.Account, error) {
		return pending.WaitWithInterval(ctx, interval)
	}

	serviceKey, err := keys.NewSigningKey(keys.CryptoAlgorithmEd25519)
	if err != nil {
		return err
	}
	accountKey, err := keys.NewSigningKey(keys.CryptoAlgorithmEd25519)
	if err != nil {
		return err
	}
	extraKey, err := keys.NewSigningKey(keys.CryptoAlgorithmSecp256k1)
	if err != nil {
		return err
	}

	pending, err := builder.CreateAccount(ctx, n, demoAccountId, demoServiceId, serviceKey, accountKey)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	account, err := wait(pending)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	a.logger.Info("account created", "id", account.ID, "nonce", account.Nonce)

	pending, err = builder.AddKey(ctx, n, account, extraKey.VerifyingKey(), accountKey)
	if err != nil {
		return fmt.Errorf("add key: %w", err)
	}
	account, err = wait(pending)
	if err != nil {
		return fmt.Errorf("add key: %w", err)
	}
	a.logger.Info("key added", "id", account.ID, "keys", len(account.ValidKeys()))

	rotationKeys := []keys.VerifyingKey{accountKey.VerifyingKey(), extraKey.VerifyingKey()}
	pending, err = builder.CreateDID(
		ctx,
		n,
		extraKey.VerifyingKey(),
		rotationKeys,
		demoAlias,
		demoPDS,
		accountKey,
	)
	if err != nil {
		return fmt.Errorf("create did: %w", err)
	}
	did := pending.Transaction().ID
	if _, err := wait(pending); err != nil {
		return fmt.Errorf("create did: %w", err)
	}
	a.logger.Info("did created", "did", did)

	resp, err := n.GetDidDocument(ctx, did)
	if err != nil {
		return err
	}
	commitment, err := n.GetCommitment(ctx)
	if err != nil {
		return err
	}
	out := struct {
		Epoch       uint64              `json:"epoch"`
		Commitment  string              `json:"commitment"`
		Account     *ledger.Account     `json:"account"`
		DidDocument *ledger.DidDocument `json:"did_document"`
		Log         []node.LogEntry     `json:"log"`
	}{
		Epoch:       n.Epoch(),
		Commitment:  commitment.Commitment.String(),
		Account:     account,
		DidDocument: resp.DidDocument,
		Log:         n.Log(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
