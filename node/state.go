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

package node

import (
	"maps"
	"slices"

	"golang.org/x/crypto/blake2b"

	"github.com/blinklabs-io/prism/digest"
	"github.com/blinklabs-io/prism/ledger"
)

// leafHash is the blake2b-256 hash of the native account encoding
func leafHash(account *ledger.Account) (digest.Digest, error) {
	data, err := account.Encode()
	if err != nil {
		return digest.Digest{}, err
	}
	return digest.Digest(blake2b.Sum256(data)), nil
}

// commitment hashes the leaf hashes of all accounts ordered by account id
func commitment(accounts map[string]*ledger.Account) (digest.Digest, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return digest.Digest{}, err
	}
	for _, id := range slices.Sorted(maps.Keys(accounts)) {
		leaf, err := leafHash(accounts[id])
		if err != nil {
			return digest.Digest{}, err
		}
		h.Write(leaf.Bytes())
	}
	var ret digest.Digest
	copy(ret[:], h.Sum(nil))
	return ret, nil
}
