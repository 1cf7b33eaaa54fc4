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
	"crypto/ed25519"
	"crypto/elliptic"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-varint"

	"github.com/blinklabs-io/prism/cbor"
)

const DIDKeyPrefix = "did:key:"

// VerifyingKey is an algorithm-tagged public key. ECDSA keys are always held in
// compressed SEC1 form.
type VerifyingKey struct {
	cbor.StructAsArray
	Algorithm CryptoAlgorithm
	Bytes     []byte
}

// NewVerifyingKey validates the key material for the algorithm and returns the key
func NewVerifyingKey(
	algorithm CryptoAlgorithm,
	keyBytes []byte,
) (VerifyingKey, error) {
	switch algorithm {
	case CryptoAlgorithmEd25519:
		if len(keyBytes) != ed25519.PublicKeySize {
			return VerifyingKey{}, InvalidKeyError{
				Algorithm: algorithm,
				Err: fmt.Errorf(
					"expected %d bytes, got %d",
					ed25519.PublicKeySize,
					len(keyBytes),
				),
			}
		}
		if _, err := new(edwards25519.Point).SetBytes(keyBytes); err != nil {
			return VerifyingKey{}, InvalidKeyError{
				Algorithm: algorithm,
				Err:       err,
			}
		}
		return VerifyingKey{
			Algorithm: algorithm,
			Bytes:     bytes.Clone(keyBytes),
		}, nil
	case CryptoAlgorithmSecp256k1:
		pub, err := secp256k1.ParsePubKey(keyBytes)
		if err != nil {
			return VerifyingKey{}, InvalidKeyError{
				Algorithm: algorithm,
				Err:       err,
			}
		}
		return VerifyingKey{
			Algorithm: algorithm,
			Bytes:     pub.SerializeCompressed(),
		}, nil
	case CryptoAlgorithmSecp256r1:
		x, _ := elliptic.UnmarshalCompressed(elliptic.P256(), keyBytes)
		if x == nil {
			return VerifyingKey{}, InvalidKeyError{
				Algorithm: algorithm,
				Err:       errors.New("not a compressed P-256 point"),
			}
		}
		return VerifyingKey{
			Algorithm: algorithm,
			Bytes:     bytes.Clone(keyBytes),
		}, nil
	default:
		return VerifyingKey{}, UnsupportedAlgorithmError{Algorithm: algorithm}
	}
}

// Equal reports whether both keys use the same algorithm and key bytes
func (k VerifyingKey) Equal(other VerifyingKey) bool {
	return k.Algorithm == other.Algorithm && bytes.Equal(k.Bytes, other.Bytes)
}

func (k VerifyingKey) IsZero() bool {
	return k.Algorithm == CryptoAlgorithmInvalid && len(k.Bytes) == 0
}

func (k VerifyingKey) String() string {
	did, err := k.ToDID()
	if err != nil {
		return fmt.Sprintf("%s:%x", k.Algorithm, k.Bytes)
	}
	return did
}

func multicodecForAlgorithm(algorithm CryptoAlgorithm) (multicodec.Code, error) {
	switch algorithm {
	case CryptoAlgorithmEd25519:
		return multicodec.Ed25519Pub, nil
	case CryptoAlgorithmSecp256k1:
		return multicodec.Secp256k1Pub, nil
	case CryptoAlgorithmSecp256r1:
		return multicodec.P256Pub, nil
	default:
		return 0, UnsupportedAlgorithmError{Algorithm: algorithm}
	}
}

// Multibase returns the base58btc multibase form of the multicodec-prefixed key
func (k VerifyingKey) Multibase() (string, error) {
	code, err := multicodecForAlgorithm(k.Algorithm)
	if err != nil {
		return "", err
	}
	data := append(varint.ToUvarint(uint64(code)), k.Bytes...)
	return multibase.Encode(multibase.Base58BTC, data)
}

// ToDID renders the key as a did:key identifier
func (k VerifyingKey) ToDID() (string, error) {
	mb, err := k.Multibase()
	if err != nil {
		return "", err
	}
	return DIDKeyPrefix + mb, nil
}

// VerifyingKeyFromDID parses a did:key identifier. The bare multibase form is also accepted.
func VerifyingKeyFromDID(did string) (VerifyingKey, error) {
	encoded := strings.TrimPrefix(did, DIDKeyPrefix)
	encoding, data, err := multibase.Decode(encoded)
	if err != nil {
		return VerifyingKey{}, fmt.Errorf("%w: %w", ErrInvalidDIDKey, err)
	}
	if encoding != multibase.Base58BTC {
		return VerifyingKey{}, fmt.Errorf(
			"%w: unexpected multibase encoding %q",
			ErrInvalidDIDKey,
			rune(encoding),
		)
	}
	code, n, err := varint.FromUvarint(data)
	if err != nil {
		return VerifyingKey{}, fmt.Errorf("%w: %w", ErrInvalidDIDKey, err)
	}
	keyBytes := data[n:]
	switch multicodec.Code(code) {
	case multicodec.Ed25519Pub:
		return NewVerifyingKey(CryptoAlgorithmEd25519, keyBytes)
	case multicodec.Secp256k1Pub:
		return NewVerifyingKey(CryptoAlgorithmSecp256k1, keyBytes)
	case multicodec.P256Pub:
		return NewVerifyingKey(CryptoAlgorithmSecp256r1, keyBytes)
	default:
		return VerifyingKey{}, fmt.Errorf(
			"%w: unsupported multicodec 0x%x",
			ErrInvalidDIDKey,
			code,
		)
	}
}

func (k *VerifyingKey) UnmarshalCBOR(data []byte) error {
	type tVerifyingKey VerifyingKey
	var tmp tVerifyingKey
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	parsed, err := NewVerifyingKey(tmp.Algorithm, tmp.Bytes)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k VerifyingKey) MarshalJSON() ([]byte, error) {
	did, err := k.ToDID()
	if err != nil {
		return nil, err
	}
	return json.Marshal(did)
}

func (k *VerifyingKey) UnmarshalJSON(data []byte) error {
	var did string
	if err := json.Unmarshal(data, &did); err != nil {
		return err
	}
	parsed, err := VerifyingKeyFromDID(did)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// VerifySignature checks sig over message. ECDSA signatures are compact r || s over
// the SHA-256 digest of the message.
func (k VerifyingKey) VerifySignature(message []byte, sig Signature) error {
	if sig.Algorithm != k.Algorithm {
		return AlgorithmMismatchError{Key: k.Algorithm, Signature: sig.Algorithm}
	}
	if err := sig.validateLength(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	switch k.Algorithm {
	case CryptoAlgorithmEd25519:
		if len(k.Bytes) != ed25519.PublicKeySize {
			return InvalidKeyError{Algorithm: k.Algorithm, Err: errors.New("bad length")}
		}
		if !ed25519.Verify(ed25519.PublicKey(k.Bytes), message, sig.Bytes) {
			return ErrInvalidSignature
		}
		return nil
	case CryptoAlgorithmSecp256k1:
		return verifySecp256k1(k.Bytes, message, sig.Bytes)
	case CryptoAlgorithmSecp256r1:
		return verifySecp256r1(k.Bytes, message, sig.Bytes)
	default:
		return UnsupportedAlgorithmError{Algorithm: k.Algorithm}
	}
}
