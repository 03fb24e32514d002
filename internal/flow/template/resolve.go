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

package template

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Lookup reads values from a runtime scope by dotted path.
type Lookup interface {
	Get(path string) (any, bool)
}

// Resolve replaces every Ref and placeholder in the value with the current scope values.
// A Ref whose path is not bound resolves to nil. A full-match placeholder string resolves to
// the raw value when bound and stays verbatim otherwise. Placeholders inside longer strings are
// rendered as text; unbound ones stay verbatim.
func Resolve(value any, scope Lookup) any {
	switch v := value.(type) {
	case Ref:
		resolved, ok := scope.Get(v.Path())
		if !ok {
			return nil
		}
		return resolved
	case string:
		return resolveString(v, scope)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = Resolve(item, scope)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Resolve(item, scope)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = resolveString(item, scope)
		}
		return out
	default:
		return v
	}
}

// ResolveFields resolves every field of a compiled step.
func ResolveFields(fields map[string]any, scope Lookup) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	return Resolve(fields, scope).(map[string]any)
}

func resolveString(s string, scope Lookup) any {
	if path, ok := IsFullMatch(s); ok {
		if value, bound := scope.Get(path); bound {
			return value
		}
		return s
	}
	if !strings.Contains(s, "{{") {
		return s
	}
	return placeholderRegex.ReplaceAllStringFunc(s, func(match string) string {
		path := placeholderRegex.FindStringSubmatch(match)[1]
		value, ok := scope.Get(path)
		if !ok {
			return match
		}
		return Stringify(value)
	})
}

// Stringify renders a scope value as text. Objects and arrays are rendered as JSON.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case map[string]any, []any, []map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
