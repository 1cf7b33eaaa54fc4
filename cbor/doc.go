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

// Package cbor provides the deterministic CBOR encodings used by the ledger.
//
// It wraps github.com/fxamacker/cbor/v2 with two encoders:
//   - Encode: the native form. Core deterministic map ordering; used for
//     transaction signing payloads and as the transaction wire format.
//   - EncodeCanonical: the DAG-CBOR compatible form required by the external
//     DID method. Map keys are ordered length-first so hashes and signatures
//     match the reference implementation byte for byte.
//
// Both encoders canonicalize map keys themselves, so callers never depend on Go
// map iteration order.
//
// Decoding is strict: duplicate map keys, indefinite-length items and unknown
// struct fields are rejected.
//
// Embed StructAsArray to encode a struct as a CBOR array instead of a map.
// Variant types carry their numeric type as the first array element and are
// dispatched with DecodeIdFromList.
package cbor
