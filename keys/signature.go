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
	"bytes"
	"encoding/base64"

	"github.com/blinklabs-io/prism/cbor"
)

// Signature is an algorithm-tagged raw signature
type Signature struct {
	cbor.StructAsArray
	Algorithm CryptoAlgorithm `json:"algorithm"`
	Bytes     []byte          `json:"bytes"`
}

func NewSignature(algorithm CryptoAlgorithm, sigBytes []byte) (Signature, error) {
	sig := Signature{
		Algorithm: algorithm,
		Bytes:     bytes.Clone(sigBytes),
	}
	if err := sig.validateLength(); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

// SignatureFromPLC decodes the unpadded base64url signature string used by the
// external DID method
func SignatureFromPLC(algorithm CryptoAlgorithm, encoded string) (Signature, error) {
	sigBytes, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Signature{}, err
	}
	return NewSignature(algorithm, sigBytes)
}

// ToPLCSignature returns the unpadded base64url form of the raw signature bytes
func (s Signature) ToPLCSignature() string {
	return base64.RawURLEncoding.EncodeToString(s.Bytes)
}

func (s Signature) Equal(other Signature) bool {
	return s.Algorithm == other.Algorithm && bytes.Equal(s.Bytes, other.Bytes)
}

func (s Signature) IsZero() bool {
	return s.Algorithm == CryptoAlgorithmInvalid && len(s.Bytes) == 0
}

func (s Signature) validateLength() error {
	expected := s.Algorithm.signatureSize()
	if expected == 0 {
		return UnsupportedAlgorithmError{Algorithm: s.Algorithm}
	}
	if len(s.Bytes) != expected {
		return SignatureLengthError{
			Algorithm: s.Algorithm,
			Expected:  expected,
			Actual:    len(s.Bytes),
		}
	}
	return nil
}
