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
	"errors"
	"fmt"
)

// Error categories. Every typed error below reports its category through Is so
// callers can branch with errors.Is.
var (
	// ErrStateValidation covers transactions rejected against the current account state.
	// The caller may re-fetch the account and issue a corrected transaction.
	ErrStateValidation = errors.New("state validation failed")
	// ErrBasicValidity covers operations that are malformed regardless of account state
	ErrBasicValidity = errors.New("operation is not basically valid")
	// ErrSignature covers signature verification failures under either encoding
	ErrSignature = errors.New("signature verification failed")
	// ErrDecode covers malformed canonical encodings
	ErrDecode = errors.New("decode failed")
)

// BasicValidityError wraps a basic validity failure so it matches ErrBasicValidity
type BasicValidityError struct {
	Err error
}

func (e BasicValidityError) Error() string { return e.Err.Error() }

func (e BasicValidityError) Unwrap() error { return e.Err }

func (BasicValidityError) Is(target error) bool {
	return target == ErrBasicValidity
}

var (
	ErrEmptyAccountId error = BasicValidityError{
		Err: errors.New("account id must not be empty"),
	}
	ErrEmptyRotationKeys error = BasicValidityError{
		Err: errors.New("rotation keys must not be empty"),
	}
)

// NonceError indicates a transaction nonce that does not match the account nonce
type NonceError struct {
	Expected uint64
	Actual   uint64
}

func (e NonceError) Error() string {
	return fmt.Sprintf(
		"nonce mismatch: expected %d, got %d",
		e.Expected,
		e.Actual,
	)
}

func (NonceError) Is(target error) bool {
	return target == ErrStateValidation
}

// AccountIdError indicates a creation transaction whose id differs from the operation id
type AccountIdError struct {
	TransactionId string
	OperationId   string
}

func (e AccountIdError) Error() string {
	return fmt.Sprintf(
		"transaction id %q does not match operation id %q",
		e.TransactionId,
		e.OperationId,
	)
}

func (AccountIdError) Is(target error) bool {
	return target == ErrStateValidation
}

// AccountKeyError indicates a creation transaction signed by a key the operation does not authorize
type AccountKeyError struct {
	TransactionKey string
	OperationKey   string
}

func (e AccountKeyError) Error() string {
	return fmt.Sprintf(
		"transaction key %s is not authorized by operation key %s",
		e.TransactionKey,
		e.OperationKey,
	)
}

func (AccountKeyError) Is(target error) bool {
	return target == ErrStateValidation
}

// TransactionIdError indicates a transaction targeting a different account
type TransactionIdError struct {
	TransactionId string
	AccountId     string
}

func (e TransactionIdError) Error() string {
	return fmt.Sprintf(
		"transaction id %q does not match account id %q",
		e.TransactionId,
		e.AccountId,
	)
}

func (TransactionIdError) Is(target error) bool {
	return target == ErrStateValidation
}

// InvalidKeyError indicates a transaction signed by a key outside the account rotation keys
type InvalidKeyError struct {
	Key string
}

func (e InvalidKeyError) Error() string {
	return "key is not a rotation key of the account: " + e.Key
}

func (InvalidKeyError) Is(target error) bool {
	return target == ErrStateValidation
}

type KeyExistsError struct {
	Key string
}

func (e KeyExistsError) Error() string {
	return "key already exists: " + e.Key
}

func (KeyExistsError) Is(target error) bool {
	return target == ErrStateValidation
}

type KeyNotFoundError struct {
	Key string
}

func (e KeyNotFoundError) Error() string {
	return "key does not exist: " + e.Key
}

func (KeyNotFoundError) Is(target error) bool {
	return target == ErrStateValidation
}

// AccountExistsError indicates a creation operation against an account that is not empty
type AccountExistsError struct {
	Id string
}

func (e AccountExistsError) Error() string {
	return fmt.Sprintf("account already exists: %q", e.Id)
}

func (AccountExistsError) Is(target error) bool {
	return target == ErrStateValidation
}

// DIDMismatchError indicates a CreateDID operation whose DID differs from the derived one
type DIDMismatchError struct {
	Expected string
	Actual   string
}

func (e DIDMismatchError) Error() string {
	return fmt.Sprintf(
		"DID mismatch: derived %s, operation carries %q",
		e.Expected,
		e.Actual,
	)
}

func (DIDMismatchError) Is(target error) bool {
	return target == ErrStateValidation
}

// DataTooLargeError indicates a collection over its allowed size
type DataTooLargeError struct {
	Field string
	Limit int
	Size  int
}

func (e DataTooLargeError) Error() string {
	return fmt.Sprintf(
		"%s has %d entries, limit is %d",
		e.Field,
		e.Size,
		e.Limit,
	)
}

func (DataTooLargeError) Is(target error) bool {
	return target == ErrBasicValidity
}

// InvalidDIDError indicates a DID string that does not have the derived identifier format
type InvalidDIDError struct {
	DID string
}

func (e InvalidDIDError) Error() string {
	return fmt.Sprintf("invalid DID: %q", e.DID)
}

func (InvalidDIDError) Is(target error) bool {
	return target == ErrBasicValidity
}

// SignatureError indicates a signature that does not verify over the signing payload
type SignatureError struct {
	Err error
}

func (e SignatureError) Error() string {
	return fmt.Sprintf("invalid transaction signature: %v", e.Err)
}

func (e SignatureError) Unwrap() error { return e.Err }

func (SignatureError) Is(target error) bool {
	return target == ErrSignature
}

// DecodeError indicates a transaction blob that is not a valid canonical encoding
type DecodeError struct {
	Err error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("failed to decode transaction: %v", e.Err)
}

func (e DecodeError) Unwrap() error { return e.Err }

func (DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// EncodingError indicates a failure producing a canonical encoding
type EncodingError struct {
	Err error
}

func (e EncodingError) Error() string {
	return fmt.Sprintf("encoding failed: %v", e.Err)
}

func (e EncodingError) Unwrap() error { return e.Err }

// SigningError indicates a failure of the signer
type SigningError struct {
	Err error
}

func (e SigningError) Error() string {
	return fmt.Sprintf("signing failed: %v", e.Err)
}

func (e SigningError) Unwrap() error { return e.Err }

// PLCConversionError indicates a value with no interop record representation
type PLCConversionError struct {
	Reason string
	Err    error
}

func (e PLCConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("interop conversion failed: %s: %v", e.Reason, e.Err)
	}
	return "interop conversion failed: " + e.Reason
}

func (e PLCConversionError) Unwrap() error { return e.Err }
