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

package builder

import (
	"context"
	"slices"

	"github.com/blinklabs-io/prism/api"
	"github.com/blinklabs-io/prism/keys"
	"github.com/blinklabs-io/prism/ledger"
)

// AtprotoVerificationMethod is the verification method name used by CreateDID
const AtprotoVerificationMethod = "atproto"

// CreateAccount creates the account id admitted by the service with the signing key as its first rotation key
func CreateAccount(
	ctx context.Context,
	prism api.PrismApi,
	id string,
	serviceId string,
	serviceKey keys.Signer,
	signingKey keys.Signer,
) (*api.PendingTransaction, error) {
	if signingKey == nil {
		return nil, ErrMissingKey
	}
	signing, err := NewWithApi(prism).
		CreateAccount().
		WithID(id).
		ForServiceWithID(serviceId).
		WithKey(signingKey.VerifyingKey()).
		MeetingSignedChallenge(serviceKey)
	if err != nil {
		return nil, err
	}
	sending, err := signing.Sign(signingKey)
	if err != nil {
		return nil, err
	}
	return sending.Send(ctx)
}

// AddKey adds key to the account, signed by one of its rotation keys
func AddKey(
	ctx context.Context,
	prism api.PrismApi,
	account *ledger.Account,
	key keys.VerifyingKey,
	signingKey keys.Signer,
) (*api.PendingTransaction, error) {
	signing, err := NewWithApi(prism).ModifyAccount(account).AddKey(key)
	if err != nil {
		return nil, err
	}
	sending, err := signing.Sign(signingKey)
	if err != nil {
		return nil, err
	}
	return sending.Send(ctx)
}

// RevokeKey revokes key from the account, signed by one of its rotation keys
func RevokeKey(
	ctx context.Context,
	prism api.PrismApi,
	account *ledger.Account,
	key keys.VerifyingKey,
	signingKey keys.Signer,
) (*api.PendingTransaction, error) {
	signing, err := NewWithApi(prism).ModifyAccount(account).RevokeKey(key)
	if err != nil {
		return nil, err
	}
	sending, err := signing.Sign(signingKey)
	if err != nil {
		return nil, err
	}
	return sending.Send(ctx)
}

// CreateDID creates an identity document style account. The signing key must be
// one of the rotation keys.
func CreateDID(
	ctx context.Context,
	prism api.PrismApi,
	verificationMethod keys.VerifyingKey,
	rotationKeys []keys.VerifyingKey,
	alsoKnownAs string,
	atprotoPDS string,
	signingKey keys.Signer,
) (*api.PendingTransaction, error) {
	if signingKey == nil {
		return nil, ErrMissingKey
	}
	if !slices.ContainsFunc(rotationKeys, signingKey.VerifyingKey().Equal) {
		return nil, ErrSignerNotRotationKey
	}
	signing, err := NewWithApi(prism).
		CreateDID().
		WithAlsoKnownAs(alsoKnownAs).
		WithVerificationMethod(AtprotoVerificationMethod, verificationMethod).
		WithAtprotoPDS(atprotoPDS).
		WithRotationKeys(rotationKeys).
		Build()
	if err != nil {
		return nil, err
	}
	sending, err := signing.Sign(signingKey)
	if err != nil {
		return nil, err
	}
	return sending.Send(ctx)
}
