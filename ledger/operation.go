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
	"maps"
	"slices"

	"github.com/blinklabs-io/prism/cbor"
	"github.com/blinklabs-io/prism/keys"
)

const (
	OperationTypeCreateAccount = 0
	OperationTypeCreateDID     = 1
	OperationTypeAddKey        = 2
	OperationTypeRevokeKey     = 3
)

// MaxVerificationMethods is the largest verification method set a CreateDID operation may carry
const MaxVerificationMethods = 10

var operationTypeNames = map[uint]string{
	OperationTypeCreateAccount: "CreateAccount",
	OperationTypeCreateDID:     "CreateDID",
	OperationTypeAddKey:        "AddKey",
	OperationTypeRevokeKey:     "RevokeKey",
}

func OperationTypeName(opType uint) string {
	if name, ok := operationTypeNames[opType]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", opType)
}

// Operation is a state transition intent against a single account
type Operation interface {
	isOperation()
	Type() uint
	// ValidateBasic checks the operation without any account context
	ValidateBasic() error
	// PublicKey returns the key carried by the operation, if any
	PublicKey() *keys.VerifyingKey
}

// NewOperationFromCbor decodes the operation variant identified by the leading type field
func NewOperationFromCbor(data []byte) (Operation, error) {
	opType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return nil, err
	}
	var tmpOp Operation
	switch opType {
	case OperationTypeCreateAccount:
		tmpOp = &CreateAccountOperation{}
	case OperationTypeCreateDID:
		tmpOp = &CreateDIDOperation{}
	case OperationTypeAddKey:
		tmpOp = &AddKeyOperation{}
	case OperationTypeRevokeKey:
		tmpOp = &RevokeKeyOperation{}
	default:
		return nil, fmt.Errorf("unknown operation type: %d", opType)
	}
	if _, err := cbor.Decode(data, tmpOp); err != nil {
		return nil, err
	}
	if tmpOp.Type() != uint(opType) { // #nosec G115
		return nil, fmt.Errorf(
			"operation type mismatch: expected %d, got %d",
			opType,
			tmpOp.Type(),
		)
	}
	return tmpOp, nil
}

// OperationWrapper carries an Operation through CBOR and JSON encoding
type OperationWrapper struct {
	Type      uint
	Operation Operation
}

func NewOperationWrapper(op Operation) OperationWrapper {
	if op == nil {
		return OperationWrapper{}
	}
	return OperationWrapper{Type: op.Type(), Operation: op}
}

func (w *OperationWrapper) UnmarshalCBOR(data []byte) error {
	op, err := NewOperationFromCbor(data)
	if err != nil {
		return err
	}
	w.Type = op.Type()
	w.Operation = op
	return nil
}

func (w OperationWrapper) MarshalCBOR() ([]byte, error) {
	if w.Operation == nil {
		return nil, errors.New("missing operation")
	}
	return cbor.Encode(w.Operation)
}

type operationJson struct {
	Type      string          `json:"type"`
	Operation json.RawMessage `json:"operation"`
}

func (w OperationWrapper) MarshalJSON() ([]byte, error) {
	if w.Operation == nil {
		return nil, errors.New("missing operation")
	}
	opJson, err := json.Marshal(w.Operation)
	if err != nil {
		return nil, err
	}
	return json.Marshal(operationJson{
		Type:      OperationTypeName(w.Operation.Type()),
		Operation: opJson,
	})
}

func (w *OperationWrapper) UnmarshalJSON(data []byte) error {
	var tmp operationJson
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	var op Operation
	switch tmp.Type {
	case "CreateAccount":
		op = &CreateAccountOperation{OpType: OperationTypeCreateAccount}
	case "CreateDID":
		op = &CreateDIDOperation{OpType: OperationTypeCreateDID}
	case "AddKey":
		op = &AddKeyOperation{OpType: OperationTypeAddKey}
	case "RevokeKey":
		op = &RevokeKeyOperation{OpType: OperationTypeRevokeKey}
	default:
		return fmt.Errorf("unknown operation type: %q", tmp.Type)
	}
	if err := json.Unmarshal(tmp.Operation, op); err != nil {
		return err
	}
	w.Type = op.Type()
	w.Operation = op
	return nil
}

// CreateAccountOperation bootstraps an account with a single rotation key
type CreateAccountOperation struct {
	cbor.StructAsArray
	OpType uint              `cbor:"type" json:"-"`
	Id     string            `json:"id"`
	Key    keys.VerifyingKey `json:"key"`
}

func NewCreateAccountOperation(
	id string,
	key keys.VerifyingKey,
) *CreateAccountOperation {
	return &CreateAccountOperation{
		OpType: OperationTypeCreateAccount,
		Id:     id,
		Key:    key,
	}
}

func (CreateAccountOperation) isOperation() {}

func (o *CreateAccountOperation) Type() uint {
	return o.OpType
}

func (o *CreateAccountOperation) ValidateBasic() error {
	if o.Id == "" {
		return ErrEmptyAccountId
	}
	return nil
}

func (o *CreateAccountOperation) PublicKey() *keys.VerifyingKey {
	return &o.Key
}

func (o *CreateAccountOperation) String() string {
	return fmt.Sprintf("CreateAccount{id: %s, key: %s}", o.Id, o.Key)
}

// CreateDIDOperation bootstraps an identity document style account. The DID is
// derived from the signed interop record and is empty until derivation runs.
type CreateDIDOperation struct {
	cbor.StructAsArray
	OpType              uint                         `cbor:"type" json:"-"`
	DID                 string                       `json:"did"`
	VerificationMethods map[string]keys.VerifyingKey `json:"verificationMethods"`
	RotationKeys        []keys.VerifyingKey          `json:"rotationKeys"`
	AlsoKnownAs         []string                     `json:"alsoKnownAs"`
	AtprotoPDS          string                       `json:"atprotoPds"`
}

func NewCreateDIDOperation(
	did string,
	verificationMethods map[string]keys.VerifyingKey,
	rotationKeys []keys.VerifyingKey,
	alsoKnownAs []string,
	atprotoPDS string,
) *CreateDIDOperation {
	return &CreateDIDOperation{
		OpType:              OperationTypeCreateDID,
		DID:                 did,
		VerificationMethods: maps.Clone(verificationMethods),
		RotationKeys:        slices.Clone(rotationKeys),
		AlsoKnownAs:         slices.Clone(alsoKnownAs),
		AtprotoPDS:          atprotoPDS,
	}
}

func (CreateDIDOperation) isOperation() {}

func (o *CreateDIDOperation) Type() uint {
	return o.OpType
}

func (o *CreateDIDOperation) ValidateBasic() error {
	if len(o.VerificationMethods) > MaxVerificationMethods {
		return DataTooLargeError{
			Field: "verification methods",
			Limit: MaxVerificationMethods,
			Size:  len(o.VerificationMethods),
		}
	}
	if len(o.RotationKeys) == 0 {
		return ErrEmptyRotationKeys
	}
	// The DID is only known after signing
	if o.DID != "" {
		if err := ValidateDID(o.DID); err != nil {
			return err
		}
	}
	return nil
}

func (o *CreateDIDOperation) PublicKey() *keys.VerifyingKey {
	return nil
}

// WithDID returns a copy of the operation carrying the given DID
func (o *CreateDIDOperation) WithDID(did string) *CreateDIDOperation {
	return NewCreateDIDOperation(
		did,
		o.VerificationMethods,
		o.RotationKeys,
		o.AlsoKnownAs,
		o.AtprotoPDS,
	)
}

func (o *CreateDIDOperation) String() string {
	return fmt.Sprintf(
		"CreateDID{did: %s, rotationKeys: %d, verificationMethods: %d, pds: %s}",
		o.DID,
		len(o.RotationKeys),
		len(o.VerificationMethods),
		o.AtprotoPDS,
	)
}

type AddKeyOperation struct {
	cbor.StructAsArray
	OpType uint              `cbor:"type" json:"-"`
	Key    keys.VerifyingKey `json:"key"`
}

func NewAddKeyOperation(key keys.VerifyingKey) *AddKeyOperation {
	return &AddKeyOperation{
		OpType: OperationTypeAddKey,
		Key:    key,
	}
}

func (AddKeyOperation) isOperation() {}

func (o *AddKeyOperation) Type() uint {
	return o.OpType
}

func (o *AddKeyOperation) ValidateBasic() error {
	return nil
}

func (o *AddKeyOperation) PublicKey() *keys.VerifyingKey {
	return &o.Key
}

func (o *AddKeyOperation) String() string {
	return fmt.Sprintf("AddKey{key: %s}", o.Key)
}

type RevokeKeyOperation struct {
	cbor.StructAsArray
	OpType uint              `cbor:"type" json:"-"`
	Key    keys.VerifyingKey `json:"key"`
}

func NewRevokeKeyOperation(key keys.VerifyingKey) *RevokeKeyOperation {
	return &RevokeKeyOperation{
		OpType: OperationTypeRevokeKey,
		Key:    key,
	}
}

func (RevokeKeyOperation) isOperation() {}

func (o *RevokeKeyOperation) Type() uint {
	return o.OpType
}

func (o *RevokeKeyOperation) ValidateBasic() error {
	return nil
}

func (o *RevokeKeyOperation) PublicKey() *keys.VerifyingKey {
	return &o.Key
}

func (o *RevokeKeyOperation) String() string {
	return fmt.Sprintf("RevokeKey{key: %s}", o.Key)
}

// SignatureBundle is an externally produced signature with the key that verifies it
type SignatureBundle struct {
	VerifyingKey keys.VerifyingKey `json:"verifyingKey"`
	Signature    keys.Signature    `json:"signature"`
}

func NewSignatureBundle(
	vk keys.VerifyingKey,
	sig keys.Signature,
) SignatureBundle {
	return SignatureBundle{
		VerifyingKey: vk,
		Signature:    sig,
	}
}
