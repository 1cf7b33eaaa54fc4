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

package api

import (
	"github.com/blinklabs-io/prism/digest"
	"github.com/blinklabs-io/prism/ledger"
)

type AccountRequest struct {
	Id string `json:"id"`
}

// AccountResponse is an account lookup result with the proof of membership or non-membership
type AccountResponse struct {
	// Account is nil if not found
	Account *ledger.Account   `json:"account"`
	Proof   HashedMerkleProof `json:"proof"`
}

// CommitmentResponse carries the commitment to the current state
type CommitmentResponse struct {
	Commitment digest.Digest `json:"commitment"`
}

// HashedMerkleProof is a Merkle proof with nodes represented by their hashes.
// Leaf is nil when proving non-existence.
type HashedMerkleProof struct {
	Leaf     *digest.Digest  `json:"leaf"`
	Siblings []digest.Digest `json:"siblings"`
}

func EmptyProof() HashedMerkleProof {
	return HashedMerkleProof{
		Siblings: []digest.Digest{},
	}
}

// AccountDidResponse is an account lookup result with the rendered identity document
type AccountDidResponse struct {
	Account     *ledger.Account     `json:"account"`
	Proof       HashedMerkleProof   `json:"proof"`
	DidDocument *ledger.DidDocument `json:"did_document"`
}
