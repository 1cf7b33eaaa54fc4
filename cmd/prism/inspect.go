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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/blinklabs-io/prism/cbor"
	"github.com/blinklabs-io/prism/ledger"
)

func deriveDidCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "derive-did <file>",
		Short: "Derive the DID and CID of a signed interop record (YAML or JSON)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			// YAML is a superset of JSON
			var op ledger.SignedPLCOp
			if err := yaml.Unmarshal(data, &op); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			did, err := op.DeriveDID()
			if err != nil {
				return err
			}
			id, err := op.CID()
			if err != nil {
				return err
			}
			a.logger.Debug("derived DID", "file", args[0], "did", did)
			fmt.Fprintf(cmd.OutOrStdout(), "DID: %s\nCID: %s\n", did, id)
			return nil
		},
	}
}

func decodeTxCmd(a *app) *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "decode-tx <hex>",
		Short: "Decode a native transaction blob and check its signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hex.DecodeString(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid hex: %w", err)
			}
			w := cmd.OutOrStdout()
			if dump {
				structure, err := cbor.Dump(data)
				if err != nil {
					return err
				}
				fmt.Fprint(w, structure)
			}
			tx, err := ledger.DecodeTransaction(data)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(tx, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(out))
			if err := tx.ValidateBasic(); err != nil {
				fmt.Fprintf(w, "basic validity: %s\n", err)
			}
			if err := tx.Verify(); err != nil {
				a.logger.Debug("signature verification failed", "error", err)
				fmt.Fprintf(w, "signature: invalid (%s)\n", err)
				return nil
			}
			fmt.Fprintln(w, "signature: valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "print the raw CBOR item structure before decoding")
	return cmd
}
