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

// Package builder provides the staged request builders that construct, sign and
// submit transactions. Each stage is a distinct type that only exposes the steps
// legal at that point:
//
//	RequestBuilder
//	  -> CreateAccountRequestBuilder | CreateDIDRequestBuilder | ModifyAccountRequestBuilder
//	  -> SigningTransactionRequestBuilder
//	  -> SendingTransactionRequestBuilder
package builder

import (
	"context"
	"maps"
	"slices"

	"github.com/blinklabs-io/prism/api"
	"github.com/blinklabs-io/prism/digest"
	"github.com/blinklabs-io/prism/keys"
	"github.com/blinklabs-io/prism/ledger"
)

// MinAccountIdLength is the shortest account id a modification may target
const MinAccountIdLength = 3

type RequestBuilder struct {
	prism api.PrismApi
}

// New returns a request builder without a submission capability. Transactions it
// builds can be inspected and signed but not sent.
func New() *RequestBuilder {
	return &RequestBuilder{}
}

// NewWithApi returns a request builder that submits through prism
func NewWithApi(prism api.PrismApi) *RequestBuilder {
	return &RequestBuilder{prism: prism}
}

func (b *RequestBuilder) CreateAccount() *CreateAccountRequestBuilder {
	return &CreateAccountRequestBuilder{prism: b.prism}
}

func (b *RequestBuilder) CreateDID() *CreateDIDRequestBuilder {
	return &CreateDIDRequestBuilder{
		prism:               b.prism,
		verificationMethods: make(map[string]keys.VerifyingKey),
	}
}

// ModifyAccount starts a modification of the given account snapshot. A nil
// account fails at build time with InvalidIdError.
func (b *RequestBuilder) ModifyAccount(
	account *ledger.Account,
) *ModifyAccountRequestBuilder {
	if account == nil {
		return &ModifyAccountRequestBuilder{prism: b.prism}
	}
	return &ModifyAccountRequestBuilder{
		prism: b.prism,
		id:    account.ID,
		nonce: account.Nonce,
	}
}

// ContinueTransaction resumes at the signing stage with an already built transaction
func (b *RequestBuilder) ContinueTransaction(
	utx ledger.UnsignedTransaction,
) *SigningTransactionRequestBuilder {
	return newSigningTransactionRequestBuilder(b.prism, utx)
}

type CreateAccountRequestBuilder struct {
	prism     api.PrismApi
	id        string
	serviceId string
	key       *keys.VerifyingKey
}

func (b *CreateAccountRequestBuilder) WithID(id string) *CreateAccountRequestBuilder {
	b.id = id
	return b
}

func (b *CreateAccountRequestBuilder) WithKey(
	key keys.VerifyingKey,
) *CreateAccountRequestBuilder {
	b.key = &key
	return b
}

func (b *CreateAccountRequestBuilder) ForServiceWithID(
	serviceId string,
) *CreateAccountRequestBuilder {
	b.serviceId = serviceId
	return b
}

// MeetingSignedChallenge has the service key sign the account creation challenge
// and emits the CreateAccount operation. The challenge signature is an admission
// check made out of band and is not part of the operation.
func (b *CreateAccountRequestBuilder) MeetingSignedChallenge(
	serviceKey keys.Signer,
) (*SigningTransactionRequestBuilder, error) {
	if b.key == nil || serviceKey == nil {
		return nil, ErrMissingKey
	}
	challenge := digest.HashItems(
		[]byte(b.id),
		[]byte(b.serviceId),
		b.key.Bytes,
	)
	if _, err := serviceKey.Sign(challenge.Bytes()); err != nil {
		return nil, ledger.SigningError{Err: err}
	}
	op := ledger.NewCreateAccountOperation(b.id, *b.key)
	if err := op.ValidateBasic(); err != nil {
		return nil, InvalidOpError{Err: err}
	}
	return newSigningTransactionRequestBuilder(
		b.prism,
		ledger.NewUnsignedTransaction(b.id, op, 0),
	), nil
}

type CreateDIDRequestBuilder struct {
	prism               api.PrismApi
	verificationMethods map[string]keys.VerifyingKey
	rotationKeys        []keys.VerifyingKey
	alsoKnownAs         []string
	atprotoPDS          string
}

func (b *CreateDIDRequestBuilder) WithVerificationMethod(
	name string,
	key keys.VerifyingKey,
) *CreateDIDRequestBuilder {
	b.verificationMethods[name] = key
	return b
}

func (b *CreateDIDRequestBuilder) WithRotationKeys(
	rotationKeys []keys.VerifyingKey,
) *CreateDIDRequestBuilder {
	b.rotationKeys = slices.Clone(rotationKeys)
	return b
}

func (b *CreateDIDRequestBuilder) WithAlsoKnownAs(alias string) *CreateDIDRequestBuilder {
	b.alsoKnownAs = append(b.alsoKnownAs, alias)
	return b
}

func (b *CreateDIDRequestBuilder) WithAtprotoPDS(pds string) *CreateDIDRequestBuilder {
	b.atprotoPDS = pds
	return b
}

// Build emits the provisional CreateDID operation. Its DID is derived from the signed
// record, so it is bound by the signing stage.
func (b *CreateDIDRequestBuilder) Build() (*SigningTransactionRequestBuilder, error) {
	op := ledger.NewCreateDIDOperation(
		"",
		maps.Clone(b.verificationMethods),
		b.rotationKeys,
		b.alsoKnownAs,
		b.atprotoPDS,
	)
	if err := op.ValidateBasic(); err != nil {
		return nil, InvalidOpError{Err: err}
	}
	return newSigningTransactionRequestBuilder(
		b.prism,
		ledger.NewUnsignedTransaction("", op, 0),
	), nil
}

type ModifyAccountRequestBuilder struct {
	prism api.PrismApi
	id    string
	nonce uint64
}

func (b *ModifyAccountRequestBuilder) AddKey(
	key keys.VerifyingKey,
) (*SigningTransactionRequestBuilder, error) {
	return b.build(ledger.NewAddKeyOperation(key))
}

func (b *ModifyAccountRequestBuilder) RevokeKey(
	key keys.VerifyingKey,
) (*SigningTransactionRequestBuilder, error) {
	return b.build(ledger.NewRevokeKeyOperation(key))
}

func (b *ModifyAccountRequestBuilder) build(
	op ledger.Operation,
) (*SigningTransactionRequestBuilder, error) {
	if len(b.id) < MinAccountIdLength {
		return nil, InvalidIdError{Id: b.id}
	}
	if b.nonce == 0 {
		return nil, InvalidNonceError{Nonce: b.nonce}
	}
	if err := op.ValidateBasic(); err != nil {
		return nil, InvalidOpError{Err: err}
	}
	return newSigningTransactionRequestBuilder(
		b.prism,
		ledger.NewUnsignedTransaction(b.id, op, b.nonce),
	), nil
}

type SigningTransactionRequestBuilder struct {
	prism               api.PrismApi
	unsignedTransaction ledger.UnsignedTransaction
}

func newSigningTransactionRequestBuilder(
	prism api.PrismApi,
	utx ledger.UnsignedTransaction,
) *SigningTransactionRequestBuilder {
	return &SigningTransactionRequestBuilder{
		prism:               prism,
		unsignedTransaction: utx,
	}
}

// Sign signs the transaction with an in-process signer
func (b *SigningTransactionRequestBuilder) Sign(
	signer keys.Signer,
) (*SendingTransactionRequestBuilder, error) {
	if signer == nil {
		return nil, ErrMissingKey
	}
	tx, err := b.unsignedTransaction.Sign(signer)
	if err != nil {
		return nil, err
	}
	return b.finish(tx)
}

// WithExternalSignature attaches a signature produced elsewhere over the signing
// payload of Transaction()
func (b *SigningTransactionRequestBuilder) WithExternalSignature(
	bundle ledger.SignatureBundle,
) (*SendingTransactionRequestBuilder, error) {
	return b.finish(b.unsignedTransaction.ExternallySigned(bundle))
}

// Transaction returns the unsigned transaction awaiting a signature
func (b *SigningTransactionRequestBuilder) Transaction() ledger.UnsignedTransaction {
	return b.unsignedTransaction
}

func (b *SigningTransactionRequestBuilder) finish(
	tx *ledger.Transaction,
) (*SendingTransactionRequestBuilder, error) {
	if err := tx.BindDerivedDID(); err != nil {
		return nil, err
	}
	if err := tx.ValidateBasic(); err != nil {
		return nil, InvalidOpError{Err: err}
	}
	return &SendingTransactionRequestBuilder{
		prism:       b.prism,
		transaction: tx,
	}, nil
}

type SendingTransactionRequestBuilder struct {
	prism       api.PrismApi
	transaction *ledger.Transaction
}

// Send submits the transaction through the bound submission capability
func (b *SendingTransactionRequestBuilder) Send(
	ctx context.Context,
) (*api.PendingTransaction, error) {
	if b.prism == nil {
		return nil, ErrMissingSender
	}
	return b.prism.PostTransaction(ctx, b.transaction)
}

func (b *SendingTransactionRequestBuilder) Transaction() *ledger.Transaction {
	return b.transaction
}
