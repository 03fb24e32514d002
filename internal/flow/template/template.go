/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package template implements the placeholder language used in step fields.
//
// A placeholder has the form {{ root(.segment)* }} where root is an identifier
// ([A-Za-z_][A-Za-z0-9_]*) and each segment is an identifier or an array index.
// Whitespace inside the braces is ignored.
//
// When a whole field value is a single placeholder (a full match) the compiler replaces it
// with a Ref holding the qualified runtime path, so the resolved value keeps its type at run
// time. Placeholders embedded in longer strings (partial matches) are rewritten in place and
// rendered as text at run time. Placeholders whose root is unknown are left verbatim.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const pathPattern = `[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*`

var (
	placeholderRegex = regexp.MustCompile(`\{\{\s*(` + pathPattern + `)\s*\}\}`)
	fullMatchRegex   = regexp.MustCompile(`^\{\{\s*(` + pathPattern + `)\s*\}\}$`)
)

// refKey is the JSON key used to encode a Ref.
const refKey = "$ref"

// Ref is a field value that refers to a runtime scope path.
type Ref string

// Path returns the scope path the reference points to.
func (r Ref) Path() string {
	return string(r)
}

// String implements fmt.Stringer.
func (r Ref) String() string {
	return "{{" + string(r) + "}}"
}

// MarshalJSON encodes the reference as {"$ref": path}.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{refKey: string(r)})
}

// MarshalYAML encodes the reference as {"$ref": path}.
func (r Ref) MarshalYAML() (interface{}, error) {
	return map[string]string{refKey: string(r)}, nil
}

// IsFullMatch reports whether the whole string is one placeholder and returns its path.
func IsFullMatch(s string) (string, bool) {
	m := fullMatchRegex.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Placeholders returns the paths of every placeholder in the string in order of appearance.
func Placeholders(s string) []string {
	matches := placeholderRegex.FindAllStringSubmatch(s, -1)
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, m[1])
	}
	return paths
}

// Qualifier maps a placeholder path found in the given field to its runtime path.
// Returning false leaves the placeholder untouched.
type Qualifier func(field, path string) (string, bool)

// Rewrite rewrites every placeholder in the value, descending into maps and slices.
// The input is never modified. Map keys are visited in sorted order so the qualifier is
// called in a deterministic sequence.
func Rewrite(value any, qualify Qualifier) any {
	return rewrite("", value, qualify)
}

func rewrite(field string, value any, qualify Qualifier) any {
	switch v := value.(type) {
	case string:
		return rewriteString(field, v, qualify)
	case map[string]any:
		out := make(map[string]any, len(v))
		for _, key := range sortedKeys(v) {
			out[key] = rewrite(joinField(field, key), v[key], qualify)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = rewrite(joinField(field, fmt.Sprint(i)), item, qualify)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = rewriteString(joinField(field, fmt.Sprint(i)), item, qualify)
		}
		return out
	default:
		return v
	}
}

func rewriteString(field, s string, qualify Qualifier) any {
	if path, ok := IsFullMatch(s); ok {
		if qualified, ok := qualify(field, path); ok {
			return Ref(qualified)
		}
		return s
	}
	if !strings.Contains(s, "{{") {
		return s
	}
	return placeholderRegex.ReplaceAllStringFunc(s, func(match string) string {
		path := placeholderRegex.FindStringSubmatch(match)[1]
		if qualified, ok := qualify(field, path); ok {
			return "{{" + qualified + "}}"
		}
		return match
	})
}

// RestoreRefs converts {"$ref": path} objects produced by JSON encoding back into Refs.
func RestoreRefs(value any) any {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 1 {
			if path, ok := v[refKey].(string); ok {
				return Ref(path)
			}
		}
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = RestoreRefs(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = RestoreRefs(item)
		}
		return out
	default:
		return v
	}
}

func joinField(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
