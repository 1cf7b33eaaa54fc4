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

package ledger

import (
	"maps"
	"slices"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/blinklabs-io/prism/keys"
)

const VerificationMethodTypeMultikey = "Multikey"

var DidDocumentContext = []string{
	"https://www.w3.org/ns/did/v1",
	"https://w3id.org/security/multikey/v1",
}

type DocVerificationMethod struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Controller         string `json:"controller"`
	PublicKeyMultibase string `json:"publicKeyMultibase"`
}

type DocService struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	ServiceEndpoint string `json:"serviceEndpoint"`
}

// DidDocument is the identity document view of an account
type DidDocument struct {
	Context            []string                `json:"@context"`
	ID                 string                  `json:"id"`
	AlsoKnownAs        []string                `json:"alsoKnownAs"`
	VerificationMethod []DocVerificationMethod `json:"verificationMethod"`
	Service            []DocService            `json:"service"`
}

// DidDocument renders the identity document of the account. Entries are ordered by
// name so the rendering is stable.
func (a *Account) DidDocument() *DidDocument {
	doc := &DidDocument{
		Context:            slices.Clone(DidDocumentContext),
		ID:                 a.ID,
		AlsoKnownAs:        slices.Clone(a.AlsoKnownAs),
		VerificationMethod: make([]DocVerificationMethod, 0, len(a.VerificationMethods)),
		Service:            make([]DocService, 0, len(a.Services)),
	}
	if doc.AlsoKnownAs == nil {
		doc.AlsoKnownAs = []string{}
	}
	for _, name := range slices.Sorted(maps.Keys(a.VerificationMethods)) {
		doc.VerificationMethod = append(
			doc.VerificationMethod,
			DocVerificationMethod{
				ID:                 a.ID + "#" + name,
				Type:               VerificationMethodTypeMultikey,
				Controller:         a.ID,
				PublicKeyMultibase: publicKeyMultibase(a.VerificationMethods[name]),
			},
		)
	}
	for _, name := range slices.Sorted(maps.Keys(a.Services)) {
		svc := a.Services[name]
		doc.Service = append(
			doc.Service,
			DocService{
				ID:              "#" + name,
				Type:            svc.Type,
				ServiceEndpoint: svc.Endpoint,
			},
		)
	}
	return doc
}

func publicKeyMultibase(key keys.VerifyingKey) string {
	did, err := key.ToDID()
	if err != nil {
		// Raw key bytes in base58btc multibase form
		return "z" + base58.Encode(key.Bytes)
	}
	return strings.TrimPrefix(did, keys.DIDKeyPrefix)
}
