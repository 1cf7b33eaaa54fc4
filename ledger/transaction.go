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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/prism/cbor"
	"github.com/blinklabs-io/prism/digest"
	"github.com/blinklabs-io/prism/keys"
)

// UnsignedTransaction is the payload of a transaction before it is signed
type UnsignedTransaction struct {
	ID        string
	Operation Operation
	Nonce     uint64
}

type unsignedTransactionCbor struct {
	cbor.StructAsArray
	ID        string
	Operation OperationWrapper
	Nonce     uint64
}

func NewUnsignedTransaction(
	id string,
	op Operation,
	nonce uint64,
) UnsignedTransaction {
	return UnsignedTransaction{
		ID:        id,
		Operation: op,
		Nonce:     nonce,
	}
}

func (u UnsignedTransaction) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(unsignedTransactionCbor{
		ID:        u.ID,
		Operation: NewOperationWrapper(u.Operation),
		Nonce:     u.Nonce,
	})
}

func (u *UnsignedTransaction) UnmarshalCBOR(data []byte) error {
	var tmp unsignedTransactionCbor
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	u.ID = tmp.ID
	u.Operation = tmp.Operation.Operation
	u.Nonce = tmp.Nonce
	return nil
}

// Encode returns the native canonical encoding of the unsigned transaction
func (u UnsignedTransaction) Encode() ([]byte, error) {
	if u.Operation == nil {
		return nil, EncodingError{Err: errors.New("missing operation")}
	}
	data, err := cbor.Encode(u)
	if err != nil {
		return nil, EncodingError{Err: err}
	}
	return data, nil
}

// SigningPayload returns the bytes a signer must sign. CreateDID transactions are
// authoritative under the interop encoding of the unsigned record, every other
// operation under the native encoding of the unsigned transaction.
func (u UnsignedTransaction) SigningPayload() ([]byte, error) {
	if op, ok := u.Operation.(*CreateDIDOperation); ok {
		plcOp, err := NewUnsignedPLCOp(op)
		if err != nil {
			return nil, err
		}
		return plcOp.Encode()
	}
	return u.Encode()
}

// Sign signs the signing payload and returns the full transaction
func (u UnsignedTransaction) Sign(signer keys.Signer) (*Transaction, error) {
	payload, err := u.SigningPayload()
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(payload)
	if err != nil {
		return nil, SigningError{Err: err}
	}
	return &Transaction{
		ID:           u.ID,
		Operation:    u.Operation,
		Nonce:        u.Nonce,
		Signature:    sig,
		VerifyingKey: signer.VerifyingKey(),
	}, nil
}

// ExternallySigned attaches a signature produced elsewhere. The bundle is trusted
// to sign the signing payload.
func (u UnsignedTransaction) ExternallySigned(bundle SignatureBundle) *Transaction {
	return &Transaction{
		ID:           u.ID,
		Operation:    u.Operation,
		Nonce:        u.Nonce,
		Signature:    bundle.Signature,
		VerifyingKey: bundle.VerifyingKey,
	}
}

func (u UnsignedTransaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(unsignedTransactionJson{
		ID:        u.ID,
		Operation: NewOperationWrapper(u.Operation),
		Nonce:     u.Nonce,
	})
}

type unsignedTransactionJson struct {
	ID        string           `json:"id"`
	Operation OperationWrapper `json:"operation"`
	Nonce     uint64           `json:"nonce"`
}

// Transaction is a signed operation against the account ID at the given nonce
type Transaction struct {
	ID           string
	Operation    Operation
	Nonce        uint64
	Signature    keys.Signature
	VerifyingKey keys.VerifyingKey
}

type transactionCbor struct {
	cbor.StructAsArray
	ID           string
	Operation    OperationWrapper
	Nonce        uint64
	Signature    keys.Signature
	VerifyingKey keys.VerifyingKey
}

// DecodeTransaction decodes a native transaction blob
func DecodeTransaction(data []byte) (*Transaction, error) {
	var tx Transaction
	if err := cbor.DecodeExact(data, &tx); err != nil {
		return nil, DecodeError{Err: err}
	}
	return &tx, nil
}

func (t Transaction) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(transactionCbor{
		ID:           t.ID,
		Operation:    NewOperationWrapper(t.Operation),
		Nonce:        t.Nonce,
		Signature:    t.Signature,
		VerifyingKey: t.VerifyingKey,
	})
}

func (t *Transaction) UnmarshalCBOR(data []byte) error {
	var tmp transactionCbor
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	t.ID = tmp.ID
	t.Operation = tmp.Operation.Operation
	t.Nonce = tmp.Nonce
	t.Signature = tmp.Signature
	t.VerifyingKey = tmp.VerifyingKey
	return nil
}

type transactionJson struct {
	ID           string            `json:"id"`
	Operation    OperationWrapper  `json:"operation"`
	Nonce        uint64            `json:"nonce"`
	Signature    keys.Signature    `json:"signature"`
	VerifyingKey keys.VerifyingKey `json:"vk"`
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJson{
		ID:           t.ID,
		Operation:    NewOperationWrapper(t.Operation),
		Nonce:        t.Nonce,
		Signature:    t.Signature,
		VerifyingKey: t.VerifyingKey,
	})
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var tmp transactionJson
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	t.ID = tmp.ID
	t.Operation = tmp.Operation.Operation
	t.Nonce = tmp.Nonce
	t.Signature = tmp.Signature
	t.VerifyingKey = tmp.VerifyingKey
	return nil
}

// Encode returns the native canonical encoding used for transport
func (t *Transaction) Encode() ([]byte, error) {
	if t.Operation == nil {
		return nil, EncodingError{Err: errors.New("missing operation")}
	}
	data, err := cbor.Encode(t)
	if err != nil {
		return nil, EncodingError{Err: err}
	}
	return data, nil
}

// Hash returns the content hash of the native encoding
func (t *Transaction) Hash() (digest.Digest, error) {
	data, err := t.Encode()
	if err != nil {
		return digest.Digest{}, err
	}
	return digest.Hash(data), nil
}

// Unsigned returns the signed portion of the transaction
func (t *Transaction) Unsigned() UnsignedTransaction {
	return UnsignedTransaction{
		ID:        t.ID,
		Operation: t.Operation,
		Nonce:     t.Nonce,
	}
}

// ValidateBasic runs the context free checks of the operation
func (t *Transaction) ValidateBasic() error {
	if t.Operation == nil {
		return BasicValidityError{Err: errors.New("missing operation")}
	}
	return t.Operation.ValidateBasic()
}

// VerifySignature verifies the signature over the native encoding of the unsigned transaction
func (t *Transaction) VerifySignature() error {
	message, err := t.Unsigned().Encode()
	if err != nil {
		return err
	}
	if err := t.VerifyingKey.VerifySignature(message, t.Signature); err != nil {
		return SignatureError{Err: err}
	}
	return nil
}

// VerifyCborSignature verifies the signature of a CreateDID transaction over the
// interop encoding of its unsigned record
func (t *Transaction) VerifyCborSignature() error {
	op, ok := t.Operation.(*CreateDIDOperation)
	if !ok {
		return PLCConversionError{
			Reason: fmt.Sprintf(
				"operation %s has no interop record",
				OperationTypeName(t.operationType()),
			),
		}
	}
	plcOp, err := NewUnsignedPLCOp(op)
	if err != nil {
		return err
	}
	message, err := plcOp.Encode()
	if err != nil {
		return err
	}
	if err := t.VerifyingKey.VerifySignature(message, t.Signature); err != nil {
		return SignatureError{Err: err}
	}
	return nil
}

// Verify checks the signature under the encoding that is authoritative for the operation
func (t *Transaction) Verify() error {
	if _, ok := t.Operation.(*CreateDIDOperation); ok {
		return t.VerifyCborSignature()
	}
	return t.VerifySignature()
}

// BindDerivedDID derives the DID of a signed CreateDID transaction and sets it on
// the operation and as the transaction id. Other operations are left unchanged.
func (t *Transaction) BindDerivedDID() error {
	op, ok := t.Operation.(*CreateDIDOperation)
	if !ok {
		return nil
	}
	did, err := DeriveDID(op, t.Signature)
	if err != nil {
		return err
	}
	t.Operation = op.WithDID(did)
	t.ID = did
	return nil
}

func (t *Transaction) operationType() uint {
	if t.Operation == nil {
		return 0
	}
	return t.Operation.Type()
}
