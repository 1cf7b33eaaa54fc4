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

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/blinklabs-io/prism/cbor"
	"github.com/blinklabs-io/prism/digest"
	"github.com/blinklabs-io/prism/keys"
)

const (
	PLCOperationType = "plc_operation"

	DIDPrefix = "did:prism:"
	// DIDSuffixLength is the number of base32 characters of the record hash kept in a DID
	DIDSuffixLength = 24
)

// UnsignedPLCOp is the interop record of a CreateDID operation without its signature.
// Keys are did:key strings. Its canonical encoding orders map keys length-first.
type UnsignedPLCOp struct {
	Type                string             `cbor:"type"                json:"type"                yaml:"type"`
	RotationKeys        []string           `cbor:"rotationKeys"        json:"rotationKeys"        yaml:"rotationKeys"`
	VerificationMethods map[string]string  `cbor:"verificationMethods" json:"verificationMethods" yaml:"verificationMethods"`
	AlsoKnownAs         []string           `cbor:"alsoKnownAs"         json:"alsoKnownAs"         yaml:"alsoKnownAs"`
	Services            map[string]Service `cbor:"services"            json:"services"            yaml:"services"`
	// Prev links to the previous operation and is always null for genesis records
	Prev *string `cbor:"prev" json:"prev" yaml:"prev"`
}

// NewGenesisPLCOp builds the genesis interop record for the given DID-key strings
func NewGenesisPLCOp(
	rotationKeys []string,
	verificationMethods map[string]string,
	alsoKnownAs []string,
	atprotoPDS string,
) UnsignedPLCOp {
	return UnsignedPLCOp{
		Type:                PLCOperationType,
		RotationKeys:        slices.Clone(rotationKeys),
		VerificationMethods: maps.Clone(verificationMethods),
		AlsoKnownAs:         slices.Clone(alsoKnownAs),
		Services: map[string]Service{
			ServiceNameAtprotoPDS: NewPDSService(atprotoPDS),
		},
	}
}

// NewUnsignedPLCOp converts a native CreateDID operation to its interop record
func NewUnsignedPLCOp(op *CreateDIDOperation) (UnsignedPLCOp, error) {
	rotationKeys := make([]string, 0, len(op.RotationKeys))
	for _, key := range op.RotationKeys {
		did, err := key.ToDID()
		if err != nil {
			return UnsignedPLCOp{}, PLCConversionError{
				Reason: "rotation key",
				Err:    err,
			}
		}
		rotationKeys = append(rotationKeys, did)
	}
	verificationMethods := make(map[string]string, len(op.VerificationMethods))
	for name, key := range op.VerificationMethods {
		did, err := key.ToDID()
		if err != nil {
			return UnsignedPLCOp{}, PLCConversionError{
				Reason: "verification method " + name,
				Err:    err,
			}
		}
		verificationMethods[name] = did
	}
	return NewGenesisPLCOp(
		rotationKeys,
		verificationMethods,
		op.AlsoKnownAs,
		op.AtprotoPDS,
	), nil
}

// Operation converts the interop record back to a native CreateDID operation
// carrying the given DID
func (p UnsignedPLCOp) Operation(did string) (*CreateDIDOperation, error) {
	if p.Type != PLCOperationType {
		return nil, PLCConversionError{Reason: "unexpected record type " + p.Type}
	}
	if p.Prev != nil {
		return nil, PLCConversionError{Reason: "only genesis records are supported"}
	}
	pds, ok := p.Services[ServiceNameAtprotoPDS]
	if !ok || len(p.Services) != 1 {
		return nil, PLCConversionError{
			Reason: "services must contain exactly the " + ServiceNameAtprotoPDS + " record",
		}
	}
	if pds.Type != ServiceTypeAtprotoPDS {
		return nil, PLCConversionError{Reason: "unexpected PDS service type " + pds.Type}
	}
	rotationKeys := make([]keys.VerifyingKey, 0, len(p.RotationKeys))
	for _, did := range p.RotationKeys {
		key, err := keys.VerifyingKeyFromDID(did)
		if err != nil {
			return nil, PLCConversionError{Reason: "rotation key", Err: err}
		}
		rotationKeys = append(rotationKeys, key)
	}
	verificationMethods := make(map[string]keys.VerifyingKey, len(p.VerificationMethods))
	for name, did := range p.VerificationMethods {
		key, err := keys.VerifyingKeyFromDID(did)
		if err != nil {
			return nil, PLCConversionError{
				Reason: "verification method " + name,
				Err:    err,
			}
		}
		verificationMethods[name] = key
	}
	return NewCreateDIDOperation(
		did,
		verificationMethods,
		rotationKeys,
		p.AlsoKnownAs,
		pds.Endpoint,
	), nil
}

// Encode returns the canonical interop encoding of the unsigned record. This is the
// payload signed by the creator of a CreateDID operation.
func (p UnsignedPLCOp) Encode() ([]byte, error) {
	data, err := cbor.EncodeCanonical(p)
	if err != nil {
		return nil, EncodingError{Err: err}
	}
	return data, nil
}

// Sign returns the signed record with the signature in interop string form
func (p UnsignedPLCOp) Sign(sig keys.Signature) SignedPLCOp {
	return SignedPLCOp{
		UnsignedPLCOp: p,
		Sig:           sig.ToPLCSignature(),
	}
}

// SignedPLCOp is the interop record with its detached base64url signature
type SignedPLCOp struct {
	UnsignedPLCOp `yaml:",inline"`
	Sig           string `cbor:"sig" json:"sig" yaml:"sig"`
}

// NewSignedPLCOp converts a native CreateDID operation and its signature to the signed interop record
func NewSignedPLCOp(op *CreateDIDOperation, sig keys.Signature) (SignedPLCOp, error) {
	unsigned, err := NewUnsignedPLCOp(op)
	if err != nil {
		return SignedPLCOp{}, err
	}
	return unsigned.Sign(sig), nil
}

// Encode returns the canonical interop encoding of the signed record
func (p SignedPLCOp) Encode() ([]byte, error) {
	data, err := cbor.EncodeCanonical(p)
	if err != nil {
		return nil, EncodingError{Err: err}
	}
	return data, nil
}

// DeriveDID computes the identifier of the record: the first 24 lowercase base32
// characters of the content hash of the canonical signed record.
func (p SignedPLCOp) DeriveDID() (string, error) {
	data, err := p.Encode()
	if err != nil {
		return "", err
	}
	hash := digest.Hash(data)
	return DIDPrefix + hash.Base32()[:DIDSuffixLength], nil
}

// CID returns the content identifier of the canonical signed record
func (p SignedPLCOp) CID() (cid.Cid, error) {
	data, err := p.Encode()
	if err != nil {
		return cid.Undef, err
	}
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, EncodingError{Err: err}
	}
	return cid.NewCidV1(cid.DagCBOR, mh), nil
}

// DeriveDID computes the DID of a CreateDID operation signed with sig
func DeriveDID(op *CreateDIDOperation, sig keys.Signature) (string, error) {
	signed, err := NewSignedPLCOp(op, sig)
	if err != nil {
		return "", err
	}
	return signed.DeriveDID()
}

// ValidateDID checks that did has the format of a derived identifier
func ValidateDID(did string) error {
	suffix, ok := strings.CutPrefix(did, DIDPrefix)
	if !ok || len(suffix) != DIDSuffixLength {
		return InvalidDIDError{DID: did}
	}
	for _, c := range suffix {
		if (c < 'a' || c > 'z') && (c < '2' || c > '7') {
			return InvalidDIDError{DID: did}
		}
	}
	return nil
}
