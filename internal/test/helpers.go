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

package test

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blinklabs-io/prism/keys"
)

// DecodeHexString is a helper function for tests that decodes hex strings. It doesn't return
// an error value, which makes it usable inline.
func DecodeHexString(hexData string) []byte {
	// Strip off any leading/trailing whitespace in hex string
	hexData = strings.TrimSpace(hexData)
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

func seedBytes(seed byte) []byte {
	ret := make([]byte, 32)
	for i := range ret {
		ret[i] = seed
	}
	return ret
}

// Ed25519Key returns a deterministic ed25519 signing key for the given seed byte
func Ed25519Key(seed byte) *keys.SigningKey {
	key, err := keys.NewEd25519SigningKeyFromSeed(seedBytes(seed))
	if err != nil {
		panic(fmt.Sprintf("error creating ed25519 key: %s", err))
	}
	return key
}

// Secp256k1Key returns a deterministic secp256k1 signing key for the given non-zero seed byte
func Secp256k1Key(seed byte) *keys.SigningKey {
	key, err := keys.NewSecp256k1SigningKeyFromBytes(seedBytes(seed))
	if err != nil {
		panic(fmt.Sprintf("error creating secp256k1 key: %s", err))
	}
	return key
}

// VerifyingKeyFromDID parses a did:key string. It panics on error, which makes it usable inline.
func VerifyingKeyFromDID(did string) keys.VerifyingKey {
	key, err := keys.VerifyingKeyFromDID(did)
	if err != nil {
		panic(fmt.Sprintf("error parsing did:key: %s", err))
	}
	return key
}
