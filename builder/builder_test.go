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

package builder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/prism/builder"
	"github.com/blinklabs-io/prism/internal/test"
	test_api "github.com/blinklabs-io/prism/internal/test/api"
	"github.com/blinklabs-io/prism/keys"
	"github.com/blinklabs-io/prism/ledger"
)

// failingSigner is a Signer whose signing always fails
type failingSigner struct {
	vk keys.VerifyingKey
}

func (f failingSigner) Sign([]byte) (keys.Signature, error) {
	return keys.Signature{}, errors.New("device unavailable")
}

func (f failingSigner) VerifyingKey() keys.VerifyingKey { return f.vk }

func TestCreateAccountBuilder(t *testing.T) {
	sk := test.Ed25519Key(1)
	service := test.Ed25519Key(2)
	sending := signedCreateAccount(t, sk, service)
	tx := sending.Transaction()
	assert.Equal(t, "alice", tx.ID)
	assert.Equal(t, uint64(0), tx.Nonce)
	op, ok := tx.Operation.(*ledger.CreateAccountOperation)
	require.True(t, ok)
	assert.Equal(t, "alice", op.Id)
	assert.True(t, op.Key.Equal(sk.VerifyingKey()))
	require.NoError(t, tx.Verify())
	var account ledger.Account
	require.NoError(t, account.ProcessTransaction(tx))
}

func signedCreateAccount(
	t *testing.T,
	sk *keys.SigningKey,
	service keys.Signer,
) *builder.SendingTransactionRequestBuilder {
	t.Helper()
	signing, err := builder.New().
		CreateAccount().
		WithID("alice").
		ForServiceWithID("service").
		WithKey(sk.VerifyingKey()).
		MeetingSignedChallenge(service)
	require.NoError(t, err)
	sending, err := signing.Sign(sk)
	require.NoError(t, err)
	return sending
}

func TestCreateAccountBuilderErrors(t *testing.T) {
	service := test.Ed25519Key(2)
	_, err := builder.New().
		CreateAccount().
		WithID("alice").
		MeetingSignedChallenge(service)
	assert.ErrorIs(t, err, builder.ErrMissingKey)

	_, err = builder.New().
		CreateAccount().
		WithKey(test.Ed25519Key(1).VerifyingKey()).
		MeetingSignedChallenge(service)
	assert.ErrorAs(t, err, &builder.InvalidOpError{})
	assert.ErrorIs(t, err, ledger.ErrEmptyAccountId)

	_, err = builder.New().
		CreateAccount().
		WithID("alice").
		WithKey(test.Ed25519Key(1).VerifyingKey()).
		MeetingSignedChallenge(failingSigner{vk: service.VerifyingKey()})
	assert.ErrorAs(t, err, &ledger.SigningError{})

	_, err = builder.New().
		CreateAccount().
		WithID("alice").
		WithKey(test.Ed25519Key(1).VerifyingKey()).
		MeetingSignedChallenge(nil)
	assert.ErrorIs(t, err, builder.ErrMissingKey)
}

func TestCreateDIDBuilder(t *testing.T) {
	rotation := test.Secp256k1Key(1)
	signing, err := builder.New().
		CreateDID().
		WithVerificationMethod("atproto", test.Secp256k1Key(2).VerifyingKey()).
		WithRotationKeys([]keys.VerifyingKey{rotation.VerifyingKey(), test.Secp256k1Key(3).VerifyingKey()}).
		WithAlsoKnownAs("at://alice.test").
		WithAtprotoPDS("https://pds.example.com").
		Build()
	require.NoError(t, err)
	// The DID is unknown until signed
	utx := signing.Transaction()
	assert.Empty(t, utx.ID)
	provisional, ok := utx.Operation.(*ledger.CreateDIDOperation)
	require.True(t, ok)
	assert.Empty(t, provisional.DID)

	sending, err := signing.Sign(rotation)
	require.NoError(t, err)
	tx := sending.Transaction()
	require.NoError(t, ledger.ValidateDID(tx.ID))
	op, ok := tx.Operation.(*ledger.CreateDIDOperation)
	require.True(t, ok)
	assert.Equal(t, tx.ID, op.DID)
	signed, err := ledger.NewSignedPLCOp(op, tx.Signature)
	require.NoError(t, err)
	did, err := signed.DeriveDID()
	require.NoError(t, err)
	assert.Equal(t, did, tx.ID)

	var account ledger.Account
	require.NoError(t, account.ProcessTransaction(tx))
	assert.Equal(t, tx.ID, account.ID)
	assert.Len(t, account.RotationKeys, 2)
}

func TestCreateDIDBuilderBasicValidity(t *testing.T) {
	_, err := builder.New().
		CreateDID().
		WithVerificationMethod("atproto", test.Secp256k1Key(2).VerifyingKey()).
		Build()
	assert.ErrorIs(t, err, ledger.ErrEmptyRotationKeys)

	b := builder.New().
		CreateDID().
		WithRotationKeys([]keys.VerifyingKey{test.Secp256k1Key(1).VerifyingKey()})
	for i := range ledger.MaxVerificationMethods + 1 {
		b.WithVerificationMethod(
			string(rune('a'+i)),
			test.Ed25519Key(byte(i)).VerifyingKey(),
		)
	}
	_, err = b.Build()
	assert.ErrorAs(t, err, &ledger.DataTooLargeError{})
	assert.ErrorIs(t, err, ledger.ErrBasicValidity)
}

func TestCreateDIDExternalSignature(t *testing.T) {
	rotation := test.Secp256k1Key(1)
	signing, err := builder.New().
		CreateDID().
		WithVerificationMethod("atproto", test.Secp256k1Key(2).VerifyingKey()).
		WithRotationKeys([]keys.VerifyingKey{rotation.VerifyingKey()}).
		WithAtprotoPDS("https://pds.example.com").
		Build()
	require.NoError(t, err)
	payload, err := signing.Transaction().SigningPayload()
	require.NoError(t, err)
	sig, err := rotation.Sign(payload)
	require.NoError(t, err)
	sending, err := signing.WithExternalSignature(
		ledger.NewSignatureBundle(rotation.VerifyingKey(), sig),
	)
	require.NoError(t, err)
	tx := sending.Transaction()
	require.NoError(t, ledger.ValidateDID(tx.ID))
	require.NoError(t, tx.Verify())
}

func TestModifyAccountBuilder(t *testing.T) {
	sk := test.Ed25519Key(1)
	account := &ledger.Account{}
	require.NoError(t, account.ProcessTransaction(signedCreateAccount(t, sk, test.Ed25519Key(2)).Transaction()))

	newKey := test.Secp256k1Key(4).VerifyingKey()
	signing, err := builder.New().ModifyAccount(account).AddKey(newKey)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), signing.Transaction().Nonce)
	sending, err := signing.Sign(sk)
	require.NoError(t, err)
	require.NoError(t, account.ProcessTransaction(sending.Transaction()))

	signing, err = builder.New().ModifyAccount(account).RevokeKey(newKey)
	require.NoError(t, err)
	sending, err = signing.Sign(sk)
	require.NoError(t, err)
	require.NoError(t, account.ProcessTransaction(sending.Transaction()))
	assert.Len(t, account.RotationKeys, 1)
	assert.Equal(t, uint64(3), account.Nonce)
}

func TestModifyAccountBuilderErrors(t *testing.T) {
	key := test.Ed25519Key(1).VerifyingKey()
	_, err := builder.New().
		ModifyAccount(&ledger.Account{ID: "al", Nonce: 1}).
		AddKey(key)
	assert.Equal(t, builder.InvalidIdError{Id: "al"}, err)
	_, err = builder.New().
		ModifyAccount(&ledger.Account{ID: "alice"}).
		RevokeKey(key)
	assert.Equal(t, builder.InvalidNonceError{Nonce: 0}, err)
	_, err = builder.New().ModifyAccount(nil).AddKey(key)
	assert.Equal(t, builder.InvalidIdError{Id: ""}, err)

	signing, err := builder.New().
		ModifyAccount(&ledger.Account{ID: "alice", Nonce: 1}).
		AddKey(key)
	require.NoError(t, err)
	_, err = signing.Sign(nil)
	assert.ErrorIs(t, err, builder.ErrMissingKey)
}

func TestUnauthorizedSignerFailsAccountValidation(t *testing.T) {
	sk := test.Ed25519Key(1)
	account := &ledger.Account{}
	require.NoError(t, account.ProcessTransaction(signedCreateAccount(t, sk, test.Ed25519Key(2)).Transaction()))
	intruder := test.Ed25519Key(9)
	signing, err := builder.New().ModifyAccount(account).AddKey(intruder.VerifyingKey())
	require.NoError(t, err)
	sending, err := signing.Sign(intruder)
	require.NoError(t, err)
	tx := sending.Transaction()
	// Internally consistent, but not authorized
	require.NoError(t, tx.Verify())
	assert.ErrorAs(t, account.ProcessTransaction(tx), &ledger.InvalidKeyError{})
}

func TestContinueTransaction(t *testing.T) {
	sk := test.Ed25519Key(1)
	utx := ledger.NewUnsignedTransaction(
		"alice",
		ledger.NewAddKeyOperation(test.Ed25519Key(2).VerifyingKey()),
		1,
	)
	sending, err := builder.New().ContinueTransaction(utx).Sign(sk)
	require.NoError(t, err)
	assert.Equal(t, utx, sending.Transaction().Unsigned())
}

func TestSendWithoutSender(t *testing.T) {
	sending := signedCreateAccount(t, test.Ed25519Key(1), test.Ed25519Key(2))
	_, err := sending.Send(context.Background())
	assert.ErrorIs(t, err, builder.ErrMissingSender)
}

func TestSendWithApi(t *testing.T) {
	mock := &test_api.MockPrismApi{}
	sk := test.Ed25519Key(1)
	signing, err := builder.NewWithApi(mock).
		CreateAccount().
		WithID("alice").
		WithKey(sk.VerifyingKey()).
		MeetingSignedChallenge(test.Ed25519Key(2))
	require.NoError(t, err)
	sending, err := signing.Sign(sk)
	require.NoError(t, err)
	pending, err := sending.Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sending.Transaction(), pending.Transaction())
	require.Len(t, mock.Posted(), 1)
	assert.Equal(t, sending.Transaction(), mock.Posted()[0])
}
