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

// Package common provides helpers shared by the step handlers.
package common

import (
	"fmt"
	"strconv"
	"strings"
)

// String returns the field as a string. Non-string scalars are formatted; nil yields "".
func String(fields map[string]any, key string) string {
	return ToString(fields[key])
}

// ToString formats a scalar value as a string.
func ToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the field as a boolean. The strings "true" and "1" count as true.
func Bool(fields map[string]any, key string) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true") || v == "1"
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}

// Int returns the field as an int and whether it held a number.
func Int(fields map[string]any, key string) (int, bool) {
	return ToInt(fields[key])
}

// ToInt converts a numeric value to int.
func ToInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

// Map returns the field as an object, or nil when it is not one.
func Map(fields map[string]any, key string) map[string]any {
	m, _ := fields[key].(map[string]any)
	return m
}

// List returns the field as a list. A single value becomes a one-element list.
func List(fields map[string]any, key string) []any {
	switch v := fields[key].(type) {
	case nil:
		return nil
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out
	default:
		return []any{v}
	}
}

// Strings returns the field as a list of non-empty strings.
func Strings(fields map[string]any, key string) []string {
	var out []string
	for _, item := range List(fields, key) {
		if s := ToString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsEmpty reports whether a value counts as not provided.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}
