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
	"context"

	"github.com/asgardeo/stepflow/internal/flow/model"
)

// StepHandler executes one kind of step. It receives the step fields with every template
// reference resolved and a read-only view of the scope. A returned error fails the step.
type StepHandler interface {
	Execute(ctx context.Context, fields map[string]any, scope model.ScopeReader) (any, error)
}

// StepHandlerFunc adapts a function to StepHandler.
type StepHandlerFunc func(ctx context.Context, fields map[string]any, scope model.ScopeReader) (any, error)

// Execute implements StepHandler.
func (f StepHandlerFunc) Execute(ctx context.Context, fields map[string]any, scope model.ScopeReader) (any, error) {
	return f(ctx, fields, scope)
}

// Registry maps step kinds to their handlers.
type Registry map[model.Kind]StepHandler

// Register adds or replaces the handler of a kind.
func (r Registry) Register(kind model.Kind, handler StepHandler) Registry {
	r[kind] = handler
	return r
}

// Missing returns the known kinds that have no handler, in declaration order.
func (r Registry) Missing() []model.Kind {
	var missing []model.Kind
	for _, kind := range model.AllKinds() {
		if r[kind] == nil {
			missing = append(missing, kind)
		}
	}
	return missing
}
