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

package ledger_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/prism/cbor"
	"github.com/blinklabs-io/prism/internal/test"
	"github.com/blinklabs-io/prism/keys"
	"github.com/blinklabs-io/prism/ledger"
)

func signTx(
	t *testing.T,
	id string,
	op ledger.Operation,
	nonce uint64,
	signer keys.Signer,
) *ledger.Transaction {
	t.Helper()
	tx, err := ledger.NewUnsignedTransaction(id, op, nonce).Sign(signer)
	require.NoError(t, err)
	return tx
}

func TestTransactionSignVerify(t *testing.T) {
	sk := test.Ed25519Key(1)
	tx := signTx(
		t,
		"alice",
		ledger.NewCreateAccountOperation("alice", sk.VerifyingKey()),
		0,
		sk,
	)
	require.NoError(t, tx.VerifySignature())
	require.NoError(t, tx.Verify())
	// Any change to the signed portion invalidates the signature
	tx.Nonce = 1
	assert.ErrorIs(t, tx.Verify(), ledger.ErrSignature)
	tx.Nonce = 0
	tx.ID = "bob"
	assert.ErrorIs(t, tx.Verify(), ledger.ErrSignature)
}

func TestTransactionExternallySigned(t *testing.T) {
	sk := test.Secp256k1Key(2)
	utx := ledger.NewUnsignedTransaction(
		"alice",
		ledger.NewAddKeyOperation(test.Ed25519Key(3).VerifyingKey()),
		4,
	)
	payload, err := utx.SigningPayload()
	require.NoError(t, err)
	sig, err := sk.Sign(payload)
	require.NoError(t, err)
	tx := utx.ExternallySigned(ledger.NewSignatureBundle(sk.VerifyingKey(), sig))
	require.NoError(t, tx.Verify())
	signed, err := utx.Sign(sk)
	require.NoError(t, err)
	assert.Equal(t, signed.Unsigned(), tx.Unsigned())
}

func TestTransactionEncodeDecode(t *testing.T) {
	sk := test.Ed25519Key(1)
	ops := []ledger.Operation{
		ledger.NewCreateAccountOperation("alice", sk.VerifyingKey()),
		ledger.NewAddKeyOperation(test.Secp256k1Key(1).VerifyingKey()),
		ledger.NewRevokeKeyOperation(test.Secp256k1Key(1).VerifyingKey()),
		plcVectors[0].nativeOp(plcVectors[0].did),
	}
	for _, op := range ops {
		t.Run(ledger.OperationTypeName(op.Type()), func(t *testing.T) {
			tx := signTx(t, "alice", op, 7, sk)
			data, err := tx.Encode()
			require.NoError(t, err)
			decoded, err := ledger.DecodeTransaction(data)
			require.NoError(t, err)
			assert.Equal(t, tx, decoded)
			require.NoError(t, decoded.Verify())
			// Re-encoding is byte identical
			again, err := decoded.Encode()
			require.NoError(t, err)
			assert.Equal(t, data, again)
		})
	}
}

func TestOperationEncodingLeadsWithType(t *testing.T) {
	key := test.Secp256k1Key(1).VerifyingKey()
	ops := []ledger.Operation{
		ledger.NewCreateAccountOperation("alice", key),
		ledger.NewAddKeyOperation(key),
		ledger.NewRevokeKeyOperation(key),
		plcVectors[0].nativeOp(plcVectors[0].did),
	}
	for _, op := range ops {
		t.Run(ledger.OperationTypeName(op.Type()), func(t *testing.T) {
			data, err := cbor.Encode(op)
			require.NoError(t, err)
			opType, err := cbor.DecodeIdFromList(data)
			require.NoError(t, err)
			assert.Equal(t, op.Type(), uint(opType)) // #nosec G115
			decoded, err := ledger.NewOperationFromCbor(data)
			require.NoError(t, err)
			assert.Equal(t, op, decoded)
		})
	}
}

// signatureBindingOps returns one operation of each kind, all carrying the same key
func signatureBindingOps(key keys.VerifyingKey) []ledger.Operation {
	return []ledger.Operation{
		ledger.NewCreateAccountOperation("alice", key),
		ledger.NewAddKeyOperation(key),
		ledger.NewRevokeKeyOperation(key),
		ledger.NewCreateDIDOperation(
			"",
			map[string]keys.VerifyingKey{"atproto": key},
			[]keys.VerifyingKey{key},
			[]string{"at://alice.test"},
			"https://pds.alice.test",
		),
	}
}

func TestSignatureBoundToOperation(t *testing.T) {
	sk := test.Secp256k1Key(3)
	ops := signatureBindingOps(sk.VerifyingKey())
	for _, signed := range ops {
		for _, swapped := range ops {
			if signed.Type() == swapped.Type() {
				continue
			}
			name := ledger.OperationTypeName(signed.Type()) + "As" +
				ledger.OperationTypeName(swapped.Type())
			t.Run(name, func(t *testing.T) {
				signedPayload, err := ledger.NewUnsignedTransaction("alice", signed, 1).
					SigningPayload()
				require.NoError(t, err)
				swappedPayload, err := ledger.NewUnsignedTransaction("alice", swapped, 1).
					SigningPayload()
				require.NoError(t, err)
				assert.NotEqual(t, signedPayload, swappedPayload)

				tx := signTx(t, "alice", signed, 1, sk)
				require.NoError(t, tx.Verify())
				tx.Operation = swapped
				assert.ErrorIs(t, tx.Verify(), ledger.ErrSignature)
			})
		}
	}
}

func TestAddKeySignatureCannotRevoke(t *testing.T) {
	sk := test.Ed25519Key(1)
	key := test.Secp256k1Key(2).VerifyingKey()
	account := &ledger.Account{}
	require.NoError(t, account.ProcessTransaction(
		signTx(t, "alice", ledger.NewCreateAccountOperation("alice", sk.VerifyingKey()), 0, sk),
	))
	require.NoError(t, account.ProcessTransaction(
		signTx(t, "alice", ledger.NewAddKeyOperation(key), 1, sk),
	))

	// Same key and nonce as a revocation, but signed as an addition
	tx := signTx(t, "alice", ledger.NewAddKeyOperation(sk.VerifyingKey()), 2, sk)
	tx.Operation = ledger.NewRevokeKeyOperation(sk.VerifyingKey())
	assert.ErrorIs(t, account.ProcessTransaction(tx), ledger.ErrSignature)
	assert.Len(t, account.RotationKeys, 2)
	assert.Equal(t, uint64(2), account.Nonce)
}

func TestDecodeTransactionInvalid(t *testing.T) {
	sk := test.Ed25519Key(1)
	tx := signTx(
		t,
		"alice",
		ledger.NewCreateAccountOperation("alice", sk.VerifyingKey()),
		0,
		sk,
	)
	data, err := tx.Encode()
	require.NoError(t, err)
	unknownOp, err := cbor.Encode(
		[]any{"alice", []any{uint(9), "x"}, uint64(0), tx.Signature, tx.VerifyingKey},
	)
	require.NoError(t, err)
	testDefs := map[string][]byte{
		"Empty":          {},
		"Garbage":        {0xff, 0x00},
		"TrailingData":   append(append([]byte{}, data...), 0x00),
		"Truncated":      data[:len(data)-1],
		"UnknownOpType":  unknownOp,
		"NotAnArray":     {0xa0},
		"WrongArraySize": {0x82, 0x01, 0x02},
	}
	for name, blob := range testDefs {
		t.Run(name, func(t *testing.T) {
			_, err := ledger.DecodeTransaction(blob)
			assert.ErrorIs(t, err, ledger.ErrDecode)
			assert.NotErrorIs(t, err, ledger.ErrStateValidation)
		})
	}
}

func TestVerifyCborSignatureRequiresCreateDID(t *testing.T) {
	sk := test.Ed25519Key(1)
	tx := signTx(
		t,
		"alice",
		ledger.NewAddKeyOperation(test.Ed25519Key(2).VerifyingKey()),
		1,
		sk,
	)
	assert.ErrorAs(t, tx.VerifyCborSignature(), &ledger.PLCConversionError{})
}

func TestDidTransactionVector(t *testing.T) {
	didTx := didTransaction()
	tx, err := didTx.Transaction()
	require.NoError(t, err)
	assert.Equal(t, plcVectors[1].did, tx.ID)
	assert.Equal(t, keys.CryptoAlgorithmSecp256k1, tx.Signature.Algorithm)
	op, ok := tx.Operation.(*ledger.CreateDIDOperation)
	require.True(t, ok)
	assert.Equal(t, plcVectors[1].nativeOp(plcVectors[1].did), op)
	// The interop encoding is authoritative for CreateDID
	require.NoError(t, tx.VerifyCborSignature())
	require.NoError(t, tx.Verify())
	assert.ErrorIs(t, tx.VerifySignature(), ledger.ErrSignature)
	// Back to the interop form without loss
	back, err := ledger.NewDidTransaction(tx)
	require.NoError(t, err)
	assert.Equal(t, didTx, back)
	// The vector applies to an empty account
	var account ledger.Account
	require.NoError(t, account.ProcessTransaction(tx))
	assert.Equal(t, plcVectors[1].did, account.ID)
	assert.Equal(t, uint64(1), account.Nonce)
	assert.Len(t, account.RotationKeys, 2)
	assert.Equal(
		t,
		ledger.NewPDSService(plcVectors[1].pds),
		account.Services[ledger.ServiceNameAtprotoPDS],
	)
}

func TestDidTransactionEncoding(t *testing.T) {
	didTx := didTransaction()
	data, err := didTx.Encode()
	require.NoError(t, err)
	decoded, err := ledger.DecodeDidTransaction(data)
	require.NoError(t, err)
	assert.Equal(t, didTx, decoded)
	_, err = ledger.DecodeDidTransaction(data[:len(data)-2])
	assert.ErrorIs(t, err, ledger.ErrDecode)
}

func TestDidTransactionInvalid(t *testing.T) {
	testDefs := []struct {
		name   string
		modify func(*ledger.DidTransaction)
	}{
		{
			name:   "BadVerifyingKey",
			modify: func(d *ledger.DidTransaction) { d.VK = "did:key:invalid" },
		},
		{
			name:   "BadSignature",
			modify: func(d *ledger.DidTransaction) { d.Signature = "AAAA" },
		},
		{
			name: "SignatureMismatch",
			modify: func(d *ledger.DidTransaction) {
				d.Signature = plcVectors[0].sig
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			didTx := didTransaction()
			testDef.modify(didTx)
			_, err := didTx.Transaction()
			assert.ErrorAs(t, err, &ledger.PLCConversionError{})
		})
	}
}

func TestNewDidTransactionRequiresCreateDID(t *testing.T) {
	sk := test.Ed25519Key(1)
	tx := signTx(
		t,
		"alice",
		ledger.NewCreateAccountOperation("alice", sk.VerifyingKey()),
		0,
		sk,
	)
	_, err := ledger.NewDidTransaction(tx)
	assert.ErrorAs(t, err, &ledger.PLCConversionError{})
}

func TestBindDerivedDID(t *testing.T) {
	sk := test.Secp256k1Key(5)
	op := ledger.NewCreateDIDOperation(
		"",
		map[string]keys.VerifyingKey{"atproto": test.Secp256k1Key(6).VerifyingKey()},
		[]keys.VerifyingKey{sk.VerifyingKey()},
		[]string{"at://alice.test"},
		"https://pds.example.com",
	)
	tx := signTx(t, "", op, 0, sk)
	require.NoError(t, tx.BindDerivedDID())
	require.NoError(t, ledger.ValidateDID(tx.ID))
	bound, ok := tx.Operation.(*ledger.CreateDIDOperation)
	require.True(t, ok)
	assert.Equal(t, tx.ID, bound.DID)
	// Binding does not change the signing payload
	require.NoError(t, tx.Verify())
	require.NoError(t, tx.ValidateBasic())
	var account ledger.Account
	require.NoError(t, account.ProcessTransaction(tx))
	assert.Equal(t, tx.ID, account.ID)
}

func TestTransactionJSON(t *testing.T) {
	sk := test.Ed25519Key(1)
	tx := signTx(
		t,
		"alice",
		ledger.NewCreateAccountOperation("alice", sk.VerifyingKey()),
		0,
		sk,
	)
	data, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"CreateAccount"`)
	var decoded ledger.Transaction
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, tx, &decoded)
	require.NoError(t, decoded.Verify())
}
