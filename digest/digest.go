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

// Package digest provides the content hash used for DID derivation, account
// creation challenges and other ledger commitments.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/prism/cbor"
	"github.com/multiformats/go-multibase"
)

const Size = sha256.Size

type Digest [Size]byte

// Hash returns the SHA-256 digest of data
func Hash(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

// HashItems hashes the concatenation of items
func HashItems(items ...[]byte) Digest {
	h := sha256.New()
	for _, item := range items {
		h.Write(item)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// FromBytes builds a Digest from a byte slice of exactly Size bytes
func FromBytes(data []byte) (Digest, error) {
	var d Digest
	if len(data) != Size {
		return d, fmt.Errorf("invalid digest length: expected %d, got %d", Size, len(data))
	}
	copy(d[:], data)
	return d, nil
}

// FromHex parses a hex encoded digest
func FromHex(s string) (Digest, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, err
	}
	return FromBytes(data)
}

func (d Digest) Bytes() []byte {
	return d[:]
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Base32 returns the lowercase, unpadded RFC4648 base32 form of the digest
func (d Digest) Base32() string {
	return EncodeBase32(d[:])
}

func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Digest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	tmp, err := FromHex(s)
	if err != nil {
		return err
	}
	*d = tmp
	return nil
}

func (d Digest) MarshalCBOR() ([]byte, error) {
	// Always encode a full-sized bytestring, even if the digest is zero-valued
	hashBytes := make([]byte, Size)
	copy(hashBytes, d[:])
	return cbor.Encode(hashBytes)
}

func (d *Digest) UnmarshalCBOR(data []byte) error {
	var tmp []byte
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	parsed, err := FromBytes(tmp)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EncodeBase32 encodes data as lowercase, unpadded RFC4648 base32
func EncodeBase32(data []byte) string {
	// The multibase base32 encoding is exactly lowercase RFC4648 without padding,
	// prefixed with its single character multibase code
	encoded, err := multibase.Encode(multibase.Base32, data)
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding base32: %s", err))
	}
	return encoded[1:]
}

// DecodeBase32 decodes lowercase, unpadded RFC4648 base32
func DecodeBase32(s string) ([]byte, error) {
	enc, data, err := multibase.Decode("b" + s)
	if err != nil {
		return nil, err
	}
	if enc != multibase.Base32 {
		return nil, errors.New("unexpected base32 variant")
	}
	return data, nil
}
