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

const (
	ServiceTypeAtprotoPDS = "AtprotoPersonalDataServer"
	// ServiceNameAtprotoPDS is the service map key of the PDS endpoint record
	ServiceNameAtprotoPDS = "atproto_pds"
)

// Service is a named endpoint attached to an account
type Service struct {
	Type     string `cbor:"type"     json:"type"     yaml:"type"`
	Endpoint string `cbor:"endpoint" json:"endpoint" yaml:"endpoint"`
}

// NewPDSService returns the AT Protocol personal data server record for the endpoint
func NewPDSService(endpoint string) Service {
	return Service{
		Type:     ServiceTypeAtprotoPDS,
		Endpoint: endpoint,
	}
}
