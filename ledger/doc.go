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

// Package ledger implements the account ledger: accounts and their transition
// rules, the operations that drive them, the signed transaction envelope and the
// interop records used for DID derivation.
//
// Transactions have two signing payloads. CreateDID transactions sign the
// canonical interop encoding of the unsigned record, every other operation signs
// the native canonical encoding of the UnsignedTransaction.
package ledger
