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

func TestFlows(t *testing.T) {
	ctx := context.Background()
	mock := &test_api.MockPrismApi{}
	sk := test.Ed25519Key(1)
	_, err := builder.CreateAccount(ctx, mock, "alice", "service", test.Ed25519Key(2), sk)
	require.NoError(t, err)

	account := &ledger.Account{}
	require.NoError(t, account.ProcessTransaction(mock.Posted()[0]))

	newKey := test.Ed25519Key(3)
	_, err = builder.AddKey(ctx, mock, account, newKey.VerifyingKey(), sk)
	require.NoError(t, err)
	require.NoError(t, account.ProcessTransaction(mock.Posted()[1]))

	_, err = builder.RevokeKey(ctx, mock, account, sk.VerifyingKey(), newKey)
	require.NoError(t, err)
	require.NoError(t, account.ProcessTransaction(mock.Posted()[2]))
	require.Len(t, account.RotationKeys, 1)
	assert.True(t, account.RotationKeys[0].Equal(newKey.VerifyingKey()))

	rotation := test.Secp256k1Key(4)
	_, err = builder.CreateDID(
		ctx,
		mock,
		test.Secp256k1Key(5).VerifyingKey(),
		[]keys.VerifyingKey{rotation.VerifyingKey()},
		"at://alice.test",
		"https://pds.example.com",
		rotation,
	)
	require.NoError(t, err)
	didTx := mock.Posted()[3]
	var didAccount ledger.Account
	require.NoError(t, didAccount.ProcessTransaction(didTx))
	doc := didAccount.DidDocument()
	assert.Equal(t, didTx.ID, doc.ID)
	require.Len(t, doc.VerificationMethod, 1)
	assert.Equal(t, didTx.ID+"#atproto", doc.VerificationMethod[0].ID)
}

func TestCreateDIDFlowSignerNotRotationKey(t *testing.T) {
	mock := &test_api.MockPrismApi{}
	_, err := builder.CreateDID(
		context.Background(),
		mock,
		test.Secp256k1Key(5).VerifyingKey(),
		[]keys.VerifyingKey{test.Secp256k1Key(4).VerifyingKey()},
		"at://alice.test",
		"https://pds.example.com",
		test.Secp256k1Key(6),
	)
	assert.ErrorIs(t, err, builder.ErrSignerNotRotationKey)
	assert.Empty(t, mock.Posted())
}

func TestFlowSubmissionError(t *testing.T) {
	submitErr := errors.New("rejected")
	mock := &test_api.MockPrismApi{
		PostTransactionFunc: func(context.Context, *ledger.Transaction) error {
			return submitErr
		},
	}
	_, err := builder.CreateAccount(
		context.Background(),
		mock,
		"alice",
		"service",
		test.Ed25519Key(2),
		test.Ed25519Key(1),
	)
	assert.ErrorIs(t, err, submitErr)
	assert.Empty(t, mock.Posted())
}

func TestFlowModifyUnbornAccount(t *testing.T) {
	mock := &test_api.MockPrismApi{}
	_, err := builder.AddKey(
		context.Background(),
		mock,
		&ledger.Account{ID: "alice"},
		test.Ed25519Key(3).VerifyingKey(),
		test.Ed25519Key(1),
	)
	assert.ErrorAs(t, err, &builder.InvalidNonceError{})
}

func TestFlowsMissingInputs(t *testing.T) {
	mock := &test_api.MockPrismApi{}
	ctx := context.Background()
	_, err := builder.AddKey(ctx, mock, nil, test.Ed25519Key(3).VerifyingKey(), test.Ed25519Key(1))
	assert.ErrorAs(t, err, &builder.InvalidIdError{})
	_, err = builder.RevokeKey(ctx, mock, nil, test.Ed25519Key(3).VerifyingKey(), test.Ed25519Key(1))
	assert.ErrorAs(t, err, &builder.InvalidIdError{})
	_, err = builder.CreateAccount(ctx, mock, "alice", "service", nil, test.Ed25519Key(1))
	assert.ErrorIs(t, err, builder.ErrMissingKey)
	_, err = builder.CreateAccount(ctx, mock, "alice", "service", test.Ed25519Key(2), nil)
	assert.ErrorIs(t, err, builder.ErrMissingKey)
	_, err = builder.CreateDID(
		ctx,
		mock,
		test.Secp256k1Key(5).VerifyingKey(),
		[]keys.VerifyingKey{test.Secp256k1Key(4).VerifyingKey()},
		"at://alice.test",
		"https://pds.example.com",
		nil,
	)
	assert.ErrorIs(t, err, builder.ErrMissingKey)
	assert.Empty(t, mock.Posted())
}
