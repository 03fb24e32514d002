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

package engine

import (
	"strings"
)

const (
	defaultPreviewLength = 64
	redactedValue        = "***"
)

var sensitiveKeys = []string{"password", "token", "secret", "hash"}

// preview renders a step value for an event with sensitive keys masked and long strings
// shortened.
func preview(value any, maxLen int) any {
	switch v := value.(type) {
	case string:
		return truncate(v, maxLen)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if isSensitive(key) {
				out[key] = redactedValue
				continue
			}
			out[key] = preview(item, maxLen)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = preview(item, maxLen)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = preview(item, maxLen)
		}
		return out
	default:
		return v
	}
}

// redactScope masks the sensitive keys of a scope at any depth. Values are never shortened.
func redactScope(scope map[string]any) map[string]any {
	redacted, _ := preview(scope, 0).(map[string]any)
	return redacted
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
