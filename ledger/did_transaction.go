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

package ledger

import (
	"github.com/blinklabs-io/prism/cbor"
	"github.com/blinklabs-io/prism/keys"
)

// DidTransaction is the interop wire form of a CreateDID transaction. Keys are
// did:key strings and signatures are unpadded base64url strings.
type DidTransaction struct {
	DID       string      `cbor:"did"       json:"did"       yaml:"did"`
	Operation SignedPLCOp `cbor:"operation" json:"operation" yaml:"operation"`
	Nonce     uint64      `cbor:"nonce"     json:"nonce"     yaml:"nonce"`
	Signature string      `cbor:"signature" json:"signature" yaml:"signature"`
	VK        string      `cbor:"vk"        json:"vk"        yaml:"vk"`
}

// NewDidTransaction converts a CreateDID transaction to its interop wire form
func NewDidTransaction(tx *Transaction) (*DidTransaction, error) {
	op, ok := tx.Operation.(*CreateDIDOperation)
	if !ok {
		return nil, PLCConversionError{
			Reason: "only CreateDID transactions have an interop form",
		}
	}
	signed, err := NewSignedPLCOp(op, tx.Signature)
	if err != nil {
		return nil, err
	}
	vk, err := tx.VerifyingKey.ToDID()
	if err != nil {
		return nil, PLCConversionError{Reason: "verifying key", Err: err}
	}
	return &DidTransaction{
		DID:       op.DID,
		Operation: signed,
		Nonce:     tx.Nonce,
		Signature: signed.Sig,
		VK:        vk,
	}, nil
}

// DecodeDidTransaction decodes the canonical interop encoding of a DID transaction
func DecodeDidTransaction(data []byte) (*DidTransaction, error) {
	var tx DidTransaction
	if err := cbor.DecodeExact(data, &tx); err != nil {
		return nil, DecodeError{Err: err}
	}
	return &tx, nil
}

// Encode returns the canonical interop encoding
func (d *DidTransaction) Encode() ([]byte, error) {
	data, err := cbor.EncodeCanonical(d)
	if err != nil {
		return nil, EncodingError{Err: err}
	}
	return data, nil
}

// Transaction converts the interop wire form back to a native transaction. The
// signature algorithm is taken from the verifying key and the signature is
// checked to be well formed for it.
func (d *DidTransaction) Transaction() (*Transaction, error) {
	vk, err := keys.VerifyingKeyFromDID(d.VK)
	if err != nil {
		return nil, PLCConversionError{Reason: "verifying key", Err: err}
	}
	sig, err := keys.SignatureFromPLC(vk.Algorithm, d.Signature)
	if err != nil {
		return nil, PLCConversionError{Reason: "signature", Err: err}
	}
	if d.Operation.Sig != d.Signature {
		return nil, PLCConversionError{
			Reason: "operation signature does not match transaction signature",
		}
	}
	op, err := d.Operation.UnsignedPLCOp.Operation(d.DID)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		ID:           d.DID,
		Operation:    op,
		Nonce:        d.Nonce,
		Signature:    sig,
		VerifyingKey: vk,
	}, nil
}
