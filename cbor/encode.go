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

package cbor

import (
	"bytes"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
)

var (
	nativeEncMode        _cbor.EncMode
	nativeEncModeErr     error
	nativeEncModeOnce    sync.Once
	canonicalEncMode     _cbor.EncMode
	canonicalEncModeErr  error
	canonicalEncModeOnce sync.Once
)

func getNativeEncMode() (_cbor.EncMode, error) {
	nativeEncModeOnce.Do(func() {
		opts := _cbor.EncOptions{
			// Make sure that maps have ordered keys
			Sort:          _cbor.SortCoreDeterministic,
			IndefLength:   _cbor.IndefLengthForbidden,
			NilContainers: _cbor.NilContainerAsEmpty,
		}
		nativeEncMode, nativeEncModeErr = opts.EncMode()
	})
	return nativeEncMode, nativeEncModeErr
}

func getCanonicalEncMode() (_cbor.EncMode, error) {
	canonicalEncModeOnce.Do(func() {
		opts := _cbor.EncOptions{
			// DAG-CBOR orders map keys by encoded length first, then bytewise
			Sort:          _cbor.SortLengthFirst,
			IndefLength:   _cbor.IndefLengthForbidden,
			NilContainers: _cbor.NilContainerAsEmpty,
		}
		canonicalEncMode, canonicalEncModeErr = opts.EncMode()
	})
	return canonicalEncMode, canonicalEncModeErr
}

// Encode produces the native deterministic encoding used for signing payloads and
// transaction transport
func Encode(data any) ([]byte, error) {
	em, err := getNativeEncMode()
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(nil)
	enc := em.NewEncoder(buf)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeCanonical produces the DAG-CBOR compatible encoding required for byte-exact
// interoperability with the external DID method. Map keys are sorted length-first,
// nil containers become empty containers and nil pointers become null.
func EncodeCanonical(data any) ([]byte, error) {
	em, err := getCanonicalEncMode()
	if err != nil {
		return nil, err
	}
	return em.Marshal(data)
}
