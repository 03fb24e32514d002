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

import "sort"

// VariableBinding records that a path is visible to a node because a predecessor exposes it.
type VariableBinding struct {
	Path         string `json:"path"`
	FromNodeID   string `json:"fromNodeId"`
	FromLabel    string `json:"fromLabel"`
	OriginNodeID string `json:"originNodeId"`
}

// CompileWarning records a template expression the compiler could not resolve.
type CompileWarning struct {
	StepID     string `json:"stepId"`
	Field      string `json:"field"`
	Expression string `json:"expression"`
	Reason     string `json:"reason"`
}

// CompiledStep is one executable step of a plan.
type CompiledStep struct {
	ID             string         `json:"id"`
	Kind           Kind           `json:"kind"`
	Label          string         `json:"label,omitempty"`
	ResolvedFields map[string]any `json:"resolvedFields"`
	OutputVar      string         `json:"outputVar,omitempty"`
	PassMode       string         `json:"passMode"`
}

// InitialScope holds the values a runtime scope starts with.
type InitialScope struct {
	Input map[string]any `json:"input"`
}

// Plan is the compiled, ordered form of a workflow graph. A plan is never mutated after
// compilation and may be shared across concurrent executions.
type Plan struct {
	WorkflowID   string           `json:"workflowId,omitempty"`
	GraphHash    string           `json:"graphHash"`
	Steps        []CompiledStep   `json:"steps"`
	InitialScope InitialScope     `json:"initialScope"`
	Warnings     []CompileWarning `json:"warnings,omitempty"`
}

// Step returns the compiled step with the given id.
func (p *Plan) Step(id string) (CompiledStep, bool) {
	for _, s := range p.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return CompiledStep{}, false
}

// InputNames returns the declared input variable names in sorted order.
func (p *Plan) InputNames() []string {
	names := make([]string, 0, len(p.InitialScope.Input))
	for name := range p.InitialScope.Input {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
