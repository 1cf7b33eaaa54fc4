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

package builder

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingKey indicates a request missing its account key or a required signer
	ErrMissingKey = errors.New("missing key")
	// ErrMissingSender indicates a send from a builder without a bound submission capability
	ErrMissingSender = errors.New("missing sender: no submission capability bound")
	// ErrSignerNotRotationKey indicates a CreateDID signer outside the requested rotation keys
	ErrSignerNotRotationKey = errors.New("signer is not one of the rotation keys")
)

// InvalidIdError indicates an account snapshot whose id cannot be modified
type InvalidIdError struct {
	Id string
}

func (e InvalidIdError) Error() string {
	return fmt.Sprintf("invalid account id: %q", e.Id)
}

// InvalidNonceError indicates an account snapshot that has not been created yet
type InvalidNonceError struct {
	Nonce uint64
}

func (e InvalidNonceError) Error() string {
	return fmt.Sprintf("invalid account nonce: %d", e.Nonce)
}

// InvalidOpError indicates an operation that failed basic validation while building
type InvalidOpError struct {
	Err error
}

func (e InvalidOpError) Error() string {
	return fmt.Sprintf("invalid operation: %v", e.Err)
}

func (e InvalidOpError) Unwrap() error { return e.Err }
