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
	"bytes"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/prism/keys"
	"github.com/blinklabs-io/prism/ledger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testPLCRecord = `{
  "type": "plc_operation",
  "rotationKeys": [
    "did:key:zQ3shuXBv8RBGxALdFPNtLsKzZRBpjVRVFMTXtqKP3tyfgews",
    "did:key:zQ3shpPtUdBEycBmidYtoCJ1KBa8bEiAMHoy3GLG2ynAKsagq"
  ],
  "verificationMethods": {
    "atproto": "did:key:zQ3shkZNfhseu7MbfkkDHKshErD9t7UNRFBiuQGSUnj7cBvns"
  },
  "alsoKnownAs": ["at://mod-authority.test"],
  "services": {
    "atproto_pds": {
      "type": "AtprotoPersonalDataServer",
      "endpoint": "http://localhost:61369"
    }
  },
  "prev": null,
  "sig": "Fvpus8sZ_4byIBoah6HoTiCQ4RCZ-cuvAQUGGXUmGl0ZZJMoxM8gjBR3RTLdrxYCc7qKvi_TPeOz16dT8EHdSw"
}`

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), err
}

func TestDeriveDidJson(t *testing.T) {
	out, err := runCmd(t, "derive-did", writeFile(t, "op.json", testPLCRecord))
	require.NoError(t, err)
	assert.Contains(t, out, "DID: did:prism:rx5azbjjhsbmhqv3kwrtn7vl")
	assert.Contains(t, out, "CID: bafyrei")
}

func TestDeriveDidYaml(t *testing.T) {
	record := `
type: plc_operation
rotationKeys:
  - did:key:zQ3shuXBv8RBGxALdFPNtLsKzZRBpjVRVFMTXtqKP3tyfgews
  - did:key:zQ3shpPtUdBEycBmidYtoCJ1KBa8bEiAMHoy3GLG2ynAKsagq
verificationMethods:
  atproto: did:key:zQ3shkZNfhseu7MbfkkDHKshErD9t7UNRFBiuQGSUnj7cBvns
alsoKnownAs:
  - at://mod-authority.test
services:
  atproto_pds:
    type: AtprotoPersonalDataServer
    endpoint: http://localhost:61369
prev: null
sig: Fvpus8sZ_4byIBoah6HoTiCQ4RCZ-cuvAQUGGXUmGl0ZZJMoxM8gjBR3RTLdrxYCc7qKvi_TPeOz16dT8EHdSw
`
	out, err := runCmd(t, "derive-did", writeFile(t, "op.yaml", record))
	require.NoError(t, err)
	assert.Contains(t, out, "DID: did:prism:rx5azbjjhsbmhqv3kwrtn7vl")
}

func TestDeriveDidErrors(t *testing.T) {
	_, err := runCmd(t, "derive-did")
	require.Error(t, err)
	_, err = runCmd(t, "derive-did", "/nonexistent/op.json")
	require.Error(t, err)
	_, err = runCmd(t, "derive-did", writeFile(t, "op.json", "{"))
	require.Error(t, err)
}

func testTxHex(t *testing.T, tamper bool) string {
	t.Helper()
	key, err := keys.NewEd25519SigningKeyFromSeed(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)
	op := ledger.NewCreateAccountOperation("alice", key.VerifyingKey())
	tx, err := ledger.NewUnsignedTransaction("alice", op, 0).Sign(key)
	require.NoError(t, err)
	if tamper {
		tx.Nonce = 3
	}
	data, err := tx.Encode()
	require.NoError(t, err)
	return hex.EncodeToString(data)
}

func TestDecodeTx(t *testing.T) {
	out, err := runCmd(t, "decode-tx", testTxHex(t, false))
	require.NoError(t, err)
	assert.Contains(t, out, `"alice"`)
	assert.Contains(t, out, "signature: valid")

	out, err = runCmd(t, "decode-tx", "--dump", testTxHex(t, false))
	require.NoError(t, err)
	assert.Contains(t, out, "[ (5 items)")
	assert.Contains(t, out, `"alice"`)

	out, err = runCmd(t, "decode-tx", testTxHex(t, true))
	require.NoError(t, err)
	assert.Contains(t, out, "signature: invalid")
}

func TestDecodeTxErrors(t *testing.T) {
	_, err := runCmd(t, "decode-tx", "zz")
	require.ErrorContains(t, err, "invalid hex")
	_, err = runCmd(t, "decode-tx", "85000102")
	require.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := runCmd(t, "--log-level", "loud", "decode-tx", testTxHex(t, false))
	require.Error(t, err)
}

func TestDemo(t *testing.T) {
	config := writeFile(t, "prism.yaml", `
node:
  epochInterval: 20ms
client:
  pollingInterval: 5ms
`)
	out, err := runCmd(t, "--config", config, "--log-level", "error", "demo", "--timeout", "10s")
	require.NoError(t, err)

	var result struct {
		Epoch   uint64 `json:"epoch"`
		Account struct {
			ID    string `json:"id"`
			Nonce uint64 `json:"nonce"`
		} `json:"account"`
		DidDocument struct {
			ID          string   `json:"id"`
			AlsoKnownAs []string `json:"alsoKnownAs"`
		} `json:"did_document"`
		Log []struct {
			Operation string `json:"operation"`
		} `json:"log"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "alice", result.Account.ID)
	assert.Equal(t, uint64(2), result.Account.Nonce)
	assert.Contains(t, result.DidDocument.ID, ledger.DIDPrefix)
	assert.Equal(t, []string{demoAlias}, result.DidDocument.AlsoKnownAs)
	require.Len(t, result.Log, 3)
	assert.Equal(t, "CreateDID", result.Log[2].Operation)
	assert.GreaterOrEqual(t, result.Epoch, uint64(3))
}
