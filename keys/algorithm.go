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

// Package keys implements the key and signature capability consumed by the
// ledger: verifying keys, signatures and in-process signers.
//
// Keys and signatures are algorithm-tagged. The native CBOR form of both is a
// two element array of algorithm and raw bytes. Verifying keys also have a
// DID-key string form (did:key:z...) used by the interop encoding and by
// identity documents, and signatures have the unpadded base64url string form
// used by the external DID method.
package keys

import (
	"fmt"
	"strings"
)

type CryptoAlgorithm uint8

const (
	CryptoAlgorithmInvalid CryptoAlgorithm = iota
	CryptoAlgorithmEd25519
	CryptoAlgorithmSecp256k1
	CryptoAlgorithmSecp256r1
)

var cryptoAlgorithmNames = map[CryptoAlgorithm]string{
	CryptoAlgorithmEd25519:   "ed25519",
	CryptoAlgorithmSecp256k1: "secp256k1",
	CryptoAlgorithmSecp256r1: "secp256r1",
}

// CryptoAlgorithmByName returns the algorithm with the given name
func CryptoAlgorithmByName(name string) (CryptoAlgorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for alg, algName := range cryptoAlgorithmNames {
		if algName == name {
			return alg, nil
		}
	}
	return CryptoAlgorithmInvalid, UnsupportedAlgorithmError{Name: name}
}

func (a CryptoAlgorithm) String() string {
	if name, ok := cryptoAlgorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(a))
}

func (a CryptoAlgorithm) Valid() bool {
	_, ok := cryptoAlgorithmNames[a]
	return ok
}

func (a CryptoAlgorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, UnsupportedAlgorithmError{Algorithm: a}
	}
	return []byte(a.String()), nil
}

func (a *CryptoAlgorithm) UnmarshalText(data []byte) error {
	alg, err := CryptoAlgorithmByName(string(data))
	if err != nil {
		return err
	}
	*a = alg
	return nil
}

// signatureSize returns the expected raw signature length for the algorithm
func (a CryptoAlgorithm) signatureSize() int {
	switch a {
	case CryptoAlgorithmEd25519:
		return 64
	case CryptoAlgorithmSecp256k1, CryptoAlgorithmSecp256r1:
		// Compact r || s
		return 64
	default:
		return 0
	}
}
