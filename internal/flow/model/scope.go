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

package model

import (
	"strconv"
	"strings"

	"github.com/asgardeo/stepflow/internal/system/utils"
)

// InputScopeKey is the scope key holding the workflow input values.
const InputScopeKey = "input"

// ScopeReader gives read access to a runtime scope.
type ScopeReader interface {
	// Get returns the value at the dotted path.
	Get(path string) (any, bool)
	// Snapshot returns a deep copy of the whole scope.
	Snapshot() map[string]any
}

// RuntimeScope is the variable store of one execution. It is not safe for concurrent use
// and must never be shared between executions.
type RuntimeScope struct {
	values map[string]any
}

// NewRuntimeScope creates a scope holding a copy of the given input values.
func NewRuntimeScope(input map[string]any) *RuntimeScope {
	in := utils.DeepCopyMap(input)
	if in == nil {
		in = map[string]any{}
	}
	return &RuntimeScope{
		values: map[string]any{InputScopeKey: in},
	}
}

// Get returns the value at the dotted path.
func (s *RuntimeScope) Get(path string) (any, bool) {
	return LookupPath(s.values, path)
}

// Bind stores a value under a top-level name, replacing any previous value.
func (s *RuntimeScope) Bind(name string, value any) {
	s.values[name] = value
}

// Input returns the input sub-object.
func (s *RuntimeScope) Input() map[string]any {
	in, _ := s.values[InputScopeKey].(map[string]any)
	return in
}

// Snapshot returns a deep copy of the scope.
func (s *RuntimeScope) Snapshot() map[string]any {
	return utils.DeepCopyMap(s.values)
}

// ReadOnly returns a view of the scope whose values cannot be used to mutate it.
func (s *RuntimeScope) ReadOnly() ScopeReader {
	return readOnlyScope{scope: s}
}

type readOnlyScope struct {
	scope *RuntimeScope
}

func (r readOnlyScope) Get(path string) (any, bool) {
	value, ok := r.scope.Get(path)
	if !ok {
		return nil, false
	}
	return utils.DeepCopyValue(value), true
}

func (r readOnlyScope) Snapshot() map[string]any {
	return r.scope.Snapshot()
}

// LookupPath walks a dotted path through nested maps and slices.
// Numeric segments index into slices.
func LookupPath(root map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = root
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = value
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, false
			}
			current = node[index]
		case []map[string]any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, false
			}
			current = node[index]
		default:
			return nil, false
		}
	}
	return current, true
}

// RootOf returns the first segment of a dotted path.
func RootOf(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}
