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

package keys

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature = errors.New("signature verification failed")
	ErrInvalidDIDKey    = errors.New("invalid did:key")
	// ErrHighS also matches ErrInvalidSignature
	ErrHighS = fmt.Errorf("%w: S value is not normalized to low S", ErrInvalidSignature)
)

type UnsupportedAlgorithmError struct {
	Algorithm CryptoAlgorithm
	Name      string
}

func (e UnsupportedAlgorithmError) Error() string {
	if e.Name != "" {
		return "unsupported crypto algorithm: " + e.Name
	}
	return "unsupported crypto algorithm: " + e.Algorithm.String()
}

// InvalidKeyError indicates key material that does not decode to a valid key
type InvalidKeyError struct {
	Algorithm CryptoAlgorithm
	Err       error
}

func (e InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid %s key: %v", e.Algorithm, e.Err)
}

func (e InvalidKeyError) Unwrap() error { return e.Err }

// AlgorithmMismatchError indicates a signature produced by a different algorithm than the key
type AlgorithmMismatchError struct {
	Key       CryptoAlgorithm
	Signature CryptoAlgorithm
}

func (e AlgorithmMismatchError) Error() string {
	return fmt.Sprintf(
		"signature algorithm %s does not match key algorithm %s",
		e.Signature,
		e.Key,
	)
}

func (AlgorithmMismatchError) Is(target error) bool {
	return target == ErrInvalidSignature
}

// SignatureLengthError indicates a raw signature with the wrong size for its algorithm
type SignatureLengthError struct {
	Algorithm CryptoAlgorithm
	Expected  int
	Actual    int
}

func (e SignatureLengthError) Error() string {
	return fmt.Sprintf(
		"invalid %s signature length: expected %d, got %d",
		e.Algorithm,
		e.Expected,
		e.Actual,
	)
}
