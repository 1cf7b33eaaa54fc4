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
	"crypto/elliptic"
	"crypto/sha256"
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const ecdsaScalarSize = 32

var p256HalfOrder = new(big.Int).Rsh(elliptic.P256().Params().N, 1)

func verifySecp256k1(keyBytes []byte, message []byte, sig []byte) error {
	pub, err := secp256k1.ParsePubKey(keyBytes)
	if err != nil {
		return InvalidKeyError{Algorithm: CryptoAlgorithmSecp256k1, Err: err}
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:ecdsaScalarSize]); overflow || r.IsZero() {
		return ErrInvalidSignature
	}
	if overflow := s.SetByteSlice(sig[ecdsaScalarSize:]); overflow || s.IsZero() {
		return ErrInvalidSignature
	}
	// A high S signature is a malleated copy of its low S twin
	if s.IsOverHalfOrder() {
		return ErrHighS
	}
	hash := sha256.Sum256(message)
	if !secpecdsa.NewSignature(&r, &s).Verify(hash[:], pub) {
		return ErrInvalidSignature
	}
	return nil
}

func signSecp256k1(key *secp256k1.PrivateKey, message []byte) []byte {
	hash := sha256.Sum256(message)
	// Signatures from this package are already normalized to low S
	sig := secpecdsa.Sign(key, hash[:])
	r := sig.R()
	s := sig.S()
	rBytes := r.Bytes()
	sBytes := s.Bytes()
	out := make([]byte, 0, 2*ecdsaScalarSize)
	out = append(out, rBytes[:]...)
	out = append(out, sBytes[:]...)
	return out
}

func verifySecp256r1(keyBytes []byte, message []byte, sig []byte) error {
	x, y := elliptic.UnmarshalCompressed(elliptic.P256(), keyBytes)
	if x == nil {
		return InvalidKeyError{
			Algorithm: CryptoAlgorithmSecp256r1,
			Err:       errors.New("not a compressed P-256 point"),
		}
	}
	pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
	r := new(big.Int).SetBytes(sig[:ecdsaScalarSize])
	s := new(big.Int).SetBytes(sig[ecdsaScalarSize:])
	if s.Cmp(p256HalfOrder) > 0 {
		return ErrHighS
	}
	hash := sha256.Sum256(message)
	if !ecdsa.Verify(pub, hash[:], r, s) {
		return ErrInvalidSignature
	}
	return nil
}

func signSecp256r1(key *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	hash := sha256.Sum256(message)
	r, s, err := ecdsa.Sign(cryptoRandReader, key, hash[:])
	if err != nil {
		return nil, err
	}
	// Normalize to low S
	n := key.Curve.Params().N
	halfN := new(big.Int).Rsh(n, 1)
	if s.Cmp(halfN) > 0 {
		s.Sub(n, s)
	}
	out := make([]byte, 2*ecdsaScalarSize)
	r.FillBytes(out[:ecdsaScalarSize])
	s.FillBytes(out[ecdsaScalarSize:])
	return out, nil
}
