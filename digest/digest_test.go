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

package digest_test

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/blinklabs-io/prism/cbor"
	"github.com/blinklabs-io/prism/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	// SHA-256("abc")
	d := digest.Hash([]byte("abc"))
	assert.Equal(
		t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		d.String(),
	)
}

func TestHashItemsMatchesConcatenation(t *testing.T) {
	a := digest.HashItems([]byte("ab"), []byte("c"))
	b := digest.Hash([]byte("abc"))
	assert.Equal(t, b, a)
}

func TestBase32(t *testing.T) {
	testDefs := []struct {
		data     string
		expected string
	}{
		{data: "", expected: ""},
		{data: "f", expected: "my"},
		{data: "foobar", expected: "mzxw6ytboi"},
	}
	for _, test := range testDefs {
		encoded := digest.EncodeBase32([]byte(test.data))
		assert.Equal(t, test.expected, encoded)
		decoded, err := digest.DecodeBase32(encoded)
		require.NoError(t, err)
		assert.Equal(t, test.data, string(decoded))
	}
}

func TestDigestEncodingRoundTrip(t *testing.T) {
	d := digest.Hash([]byte("prism"))

	jsonData, err := json.Marshal(d)
	require.NoError(t, err)
	var fromJson digest.Digest
	require.NoError(t, json.Unmarshal(jsonData, &fromJson))
	assert.Equal(t, d, fromJson)

	cborData, err := cbor.Encode(d)
	require.NoError(t, err)
	// 32 byte bytestring header
	assert.Equal(t, "5820", hex.EncodeToString(cborData[:2]))
	var fromCbor digest.Digest
	_, err = cbor.Decode(cborData, &fromCbor)
	require.NoError(t, err)
	assert.Equal(t, d, fromCbor)
}

func TestFromBytesInvalidLength(t *testing.T) {
	_, err := digest.FromBytes([]byte{0x01})
	assert.Error(t, err)
}
