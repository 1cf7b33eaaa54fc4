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

package keys

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var cryptoRandReader = rand.Reader

// Signer produces signatures that verify against its verifying key
type Signer interface {
	Sign(message []byte) (Signature, error)
	VerifyingKey() VerifyingKey
}

// SigningKey is an in-process private key for one of the supported algorithms
type SigningKey struct {
	algorithm    CryptoAlgorithm
	ed25519Key   ed25519.PrivateKey
	secp256k1Key *secp256k1.PrivateKey
	secp256r1Key *ecdsa.PrivateKey
	verifyingKey VerifyingKey
}

// NewSigningKey generates a random key for the algorithm
func NewSigningKey(algorithm CryptoAlgorithm) (*SigningKey, error) {
	switch algorithm {
	case CryptoAlgorithmEd25519:
		_, priv, err := ed25519.GenerateKey(cryptoRandReader)
		if err != nil {
			return nil, err
		}
		return newEd25519SigningKey(priv)
	case CryptoAlgorithmSecp256k1:
		priv, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return nil, err
		}
		return newSecp256k1SigningKey(priv)
	case CryptoAlgorithmSecp256r1:
		priv, err := ecdsa.GenerateKey(elliptic.P256(), cryptoRandReader)
		if err != nil {
			return nil, err
		}
		return newSecp256r1SigningKey(priv)
	default:
		return nil, UnsupportedAlgorithmError{Algorithm: algorithm}
	}
}

// NewEd25519SigningKeyFromSeed derives an Ed25519 key from a 32 byte seed
func NewEd25519SigningKeyFromSeed(seed []byte) (*SigningKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, InvalidKeyError{
			Algorithm: CryptoAlgorithmEd25519,
			Err: fmt.Errorf(
				"expected %d byte seed, got %d",
				ed25519.SeedSize,
				len(seed),
			),
		}
	}
	return newEd25519SigningKey(ed25519.NewKeyFromSeed(seed))
}

// NewSecp256k1SigningKeyFromBytes builds a secp256k1 key from a 32 byte big-endian scalar
func NewSecp256k1SigningKeyFromBytes(keyBytes []byte) (*SigningKey, error) {
	if len(keyBytes) != ecdsaScalarSize {
		return nil, InvalidKeyError{
			Algorithm: CryptoAlgorithmSecp256k1,
			Err: fmt.Errorf(
				"expected %d bytes, got %d",
				ecdsaScalarSize,
				len(keyBytes),
			),
		}
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(keyBytes); overflow || scalar.IsZero() {
		return nil, InvalidKeyError{
			Algorithm: CryptoAlgorithmSecp256k1,
			Err:       errors.New("scalar out of range"),
		}
	}
	return newSecp256k1SigningKey(secp256k1.NewPrivateKey(&scalar))
}

func newEd25519SigningKey(priv ed25519.PrivateKey) (*SigningKey, error) {
	pub, _ := priv.Public().(ed25519.PublicKey)
	vk, err := NewVerifyingKey(CryptoAlgorithmEd25519, pub)
	if err != nil {
		return nil, err
	}
	return &SigningKey{
		algorithm:    CryptoAlgorithmEd25519,
		ed25519Key:   priv,
		verifyingKey: vk,
	}, nil
}

func newSecp256k1SigningKey(priv *secp256k1.PrivateKey) (*SigningKey, error) {
	vk, err := NewVerifyingKey(
		CryptoAlgorithmSecp256k1,
		priv.PubKey().SerializeCompressed(),
	)
	if err != nil {
		return nil, err
	}
	return &SigningKey{
		algorithm:    CryptoAlgorithmSecp256k1,
		secp256k1Key: priv,
		verifyingKey: vk,
	}, nil
}

func newSecp256r1SigningKey(priv *ecdsa.PrivateKey) (*SigningKey, error) {
	vk, err := NewVerifyingKey(
		CryptoAlgorithmSecp256r1,
		elliptic.MarshalCompressed(elliptic.P256(), priv.X, priv.Y),
	)
	if err != nil {
		return nil, err
	}
	return &SigningKey{
		algorithm:    CryptoAlgorithmSecp256r1,
		secp256r1Key: priv,
		verifyingKey: vk,
	}, nil
}

func (k *SigningKey) Algorithm() CryptoAlgorithm {
	return k.algorithm
}

func (k *SigningKey) VerifyingKey() VerifyingKey {
	return k.verifyingKey
}

func (k *SigningKey) Sign(message []byte) (Signature, error) {
	var sigBytes []byte
	switch k.algorithm {
	case CryptoAlgorithmEd25519:
		sigBytes = ed25519.Sign(k.ed25519Key, message)
	case CryptoAlgorithmSecp256k1:
		sigBytes = signSecp256k1(k.secp256k1Key, message)
	case CryptoAlgorithmSecp256r1:
		var err error
		sigBytes, err = signSecp256r1(k.secp256r1Key, message)
		if err != nil {
			return Signature{}, err
		}
	default:
		return Signature{}, UnsupportedAlgorithmError{Algorithm: k.algorithm}
	}
	return Signature{Algorithm: k.algorithm, Bytes: sigBytes}, nil
}
