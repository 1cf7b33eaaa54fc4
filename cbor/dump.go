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
	"cmp"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// Dump renders the item structure of a CBOR blob for debugging. Byte strings
// are shown as hex, maps with their keys sorted.
func Dump(data []byte) (string, error) {
	var item any
	if err := DecodeExact(data, &item); err != nil {
		return "", err
	}
	var sb strings.Builder
	dumpItem(&sb, item, 0)
	return sb.String(), nil
}

func dumpItem(sb *strings.Builder, item any, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := item.(type) {
	case uint64, int64:
		fmt.Fprintf(sb, "%s%d\n", indent, v)
	case []byte:
		fmt.Fprintf(sb, "%sh'%s' (%d bytes)\n", indent, hex.EncodeToString(v), len(v))
	case string:
		fmt.Fprintf(sb, "%s%q\n", indent, v)
	case []any:
		fmt.Fprintf(sb, "%s[ (%d items)\n", indent, len(v))
		for _, elem := range v {
			dumpItem(sb, elem, depth+1)
		}
		fmt.Fprintf(sb, "%s]\n", indent)
	case map[any]any:
		fmt.Fprintf(sb, "%s{ (%d entries)\n", indent, len(v))
		keys := make([]any, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		slices.SortFunc(keys, func(a, b any) int {
			return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
		})
		for _, key := range keys {
			dumpItem(sb, key, depth+1)
			dumpItem(sb, v[key], depth+2)
		}
		fmt.Fprintf(sb, "%s}\n", indent)
	case nil:
		fmt.Fprintf(sb, "%snull\n", indent)
	default:
		fmt.Fprintf(sb, "%s%v\n", indent, v)
	}
}
