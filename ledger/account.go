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
	"fmt"
	"maps"
	"slices"

	"github.com/jinzhu/copier"

	"github.com/blinklabs-io/prism/cbor"
	"github.com/blinklabs-io/prism/keys"
)

// Account is the ledger entity: an identifier with its authorized keys, aliases
// and service endpoints. An account with a zero nonce has not been created yet.
//
// Accounts are only mutated by ProcessTransaction. Concurrent transactions against
// the same account must be serialized by the caller.
type Account struct {
	ID string `cbor:"id" json:"id"`
	// Nonce is the number of transactions applied to the account
	Nonce               uint64                       `cbor:"nonce"               json:"nonce"`
	VerificationMethods map[string]keys.VerifyingKey `cbor:"verificationMethods" json:"verificationMethods"`
	// RotationKeys are the keys that may sign transactions for the account
	RotationKeys []keys.VerifyingKey `cbor:"rotationKeys" json:"rotationKeys"`
	AlsoKnownAs  []string            `cbor:"alsoKnownAs"  json:"alsoKnownAs"`
	Services     map[string]Service  `cbor:"services"     json:"services"`
}

// IsEmpty reports whether no creation operation has been applied to the account
func (a *Account) IsEmpty() bool {
	return a.Nonce == 0
}

// ValidKeys returns the keys currently authorized to sign for the account
func (a *Account) ValidKeys() []keys.VerifyingKey {
	return a.RotationKeys
}

func (a *Account) hasKey(key keys.VerifyingKey) bool {
	return slices.ContainsFunc(a.RotationKeys, key.Equal)
}

// Clone returns a deep copy of the account
func (a *Account) Clone() (*Account, error) {
	var ret Account
	if err := copier.CopyWithOption(&ret, a, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("failed to copy account: %w", err)
	}
	return &ret, nil
}

// Encode returns the native canonical encoding of the account
func (a *Account) Encode() ([]byte, error) {
	data, err := cbor.Encode(a)
	if err != nil {
		return nil, EncodingError{Err: err}
	}
	return data, nil
}

// ProcessTransaction validates tx against the account and applies it, incrementing
// the nonce by one. The account is left unchanged if validation fails.
func (a *Account) ProcessTransaction(tx *Transaction) error {
	if err := a.ValidateTransaction(tx); err != nil {
		return err
	}
	if err := a.ValidateOperation(tx.Operation); err != nil {
		return err
	}
	a.processOperation(tx.Operation)
	a.Nonce++
	return nil
}

// ValidateTransaction checks tx against the current account state without
// modifying it: nonce, target id, signing key authorization and signature.
func (a *Account) ValidateTransaction(tx *Transaction) error {
	if tx.Nonce != a.Nonce {
		return NonceError{Expected: a.Nonce, Actual: tx.Nonce}
	}
	if err := tx.ValidateBasic(); err != nil {
		return err
	}
	switch op := tx.Operation.(type) {
	case *CreateAccountOperation:
		if tx.ID != op.Id {
			return AccountIdError{TransactionId: tx.ID, OperationId: op.Id}
		}
		if !tx.VerifyingKey.Equal(op.Key) {
			return AccountKeyError{
				TransactionKey: tx.VerifyingKey.String(),
				OperationKey:   op.Key.String(),
			}
		}
	case *CreateDIDOperation:
		if tx.ID != op.DID {
			return AccountIdError{TransactionId: tx.ID, OperationId: op.DID}
		}
		derived, err := DeriveDID(op, tx.Signature)
		if err != nil {
			return err
		}
		if derived != op.DID {
			return DIDMismatchError{Expected: derived, Actual: op.DID}
		}
		if !slices.ContainsFunc(op.RotationKeys, tx.VerifyingKey.Equal) {
			return AccountKeyError{
				TransactionKey: tx.VerifyingKey.String(),
				OperationKey:   "rotation keys of " + op.DID,
			}
		}
	default:
		if tx.ID != a.ID {
			return TransactionIdError{TransactionId: tx.ID, AccountId: a.ID}
		}
		if !a.hasKey(tx.VerifyingKey) {
			return InvalidKeyError{Key: tx.VerifyingKey.String()}
		}
	}
	return tx.Verify()
}

// ValidateOperation checks the operation preconditions against the current account state
func (a *Account) ValidateOperation(op Operation) error {
	switch op := op.(type) {
	case *AddKeyOperation:
		if a.hasKey(op.Key) {
			return KeyExistsError{Key: op.Key.String()}
		}
	case *RevokeKeyOperation:
		if !a.hasKey(op.Key) {
			return KeyNotFoundError{Key: op.Key.String()}
		}
	case *CreateAccountOperation, *CreateDIDOperation:
		if !a.IsEmpty() {
			return AccountExistsError{Id: a.ID}
		}
	default:
		return fmt.Errorf("unsupported operation type %T", op)
	}
	return nil
}

func (a *Account) processOperation(op Operation) {
	switch op := op.(type) {
	case *AddKeyOperation:
		a.RotationKeys = append(a.RotationKeys, op.Key)
	case *RevokeKeyOperation:
		a.RotationKeys = slices.DeleteFunc(
			slices.Clone(a.RotationKeys),
			op.Key.Equal,
		)
	case *CreateAccountOperation:
		a.ID = op.Id
		a.RotationKeys = append(a.RotationKeys, op.Key)
	case *CreateDIDOperation:
		a.ID = op.DID
		a.AlsoKnownAs = slices.Clone(op.AlsoKnownAs)
		a.RotationKeys = slices.Clone(op.RotationKeys)
		a.VerificationMethods = maps.Clone(op.VerificationMethods)
		if a.Services == nil {
			a.Services = make(map[string]Service)
		}
		a.Services[ServiceNameAtprotoPDS] = NewPDSService(op.AtprotoPDS)
	}
}
