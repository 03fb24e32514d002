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

// Package compiler turns a validated workflow graph into an ordered execution plan.
package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/asgardeo/stepflow/internal/flow/dag"
	"github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/flow/template"
	"github.com/asgardeo/stepflow/internal/flow/validator"
	"github.com/asgardeo/stepflow/internal/flow/visibility"
	"github.com/asgardeo/stepflow/internal/system/log"
)

// Reasons recorded on compile warnings.
const (
	ReasonUnknownReference = "unknown reference"
	ReasonNotVisible       = "not visible"
	ReasonIgnoredField     = "ignored field"
)

const fieldData = "data"

// payloadKeys lists the fields each kind carries into its compiled step.
var payloadKeys = map[model.Kind][]string{
	model.KindInput:           {"variables"},
	model.KindInputValidation: {"rules", "output"},
	model.KindDBFind:          {"collection", "filter", "multiple", "required"},
	model.KindDBInsert:        {"collection", "data", "hash"},
	model.KindDBUpdate:        {"collection", "filter", "data"},
	model.KindDBDelete:        {"collection", "filter"},
	model.KindUserLogin:       {"collection", "email", "password"},
	model.KindAuthMiddleware:  {"token"},
	model.KindEmailSend:       {"to", "subject", "body"},
	model.KindResponse:        {"status", "body"},
}

// recordKinds gather their remaining fields into data when no data map is given.
var recordKinds = map[model.Kind]bool{
	model.KindDBInsert: true,
	model.KindDBUpdate: true,
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithStrictReferences makes unresolved or invisible references fail compilation.
func WithStrictReferences() Option {
	return func(c *Compiler) {
		c.strict = true
	}
}

// WithStrict sets strict reference checking from a configuration flag.
func WithStrict(strict bool) Option {
	return func(c *Compiler) {
		c.strict = strict
	}
}

// Compiler compiles workflow graphs into plans.
type Compiler struct {
	schema   model.SchemaLookup
	resolver *visibility.Resolver
	strict   bool
	logger   *log.Logger
}

// New creates a compiler that resolves collection fields through the given schema.
func New(schema model.SchemaLookup, opts ...Option) *Compiler {
	if schema == nil {
		schema = model.NoSchema
	}
	c := &Compiler{
		schema:   schema,
		resolver: visibility.NewResolver(schema),
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "StepCompiler")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile validates the graph and produces its plan. The graph is snapshotted first, so
// later edits of the caller's graph do not affect the plan.
func (c *Compiler) Compile(g *model.Graph) (*model.Plan, error) {
	if g == nil {
		return nil, validator.NewStructuralError(validator.Validate(&model.Graph{}))
	}
	if result := validator.Validate(g); !result.Valid {
		c.logger.Debug("Graph failed validation", log.String("rule", result.Rule),
			log.String("message", result.Message))
		return nil, validator.NewStructuralError(result)
	}

	snapshot := g.Clone()
	hash, err := GraphHash(snapshot)
	if err != nil {
		return nil, err
	}

	order, unpeeled := dag.TopologicalOrder(snapshot)
	if len(unpeeled) > 0 {
		// Unreachable after validation; kept so a plan is never built from a partial order.
		return nil, validator.NewStructuralError(validator.Result{
			Rule:    validator.RuleNoCycles,
			Message: "graph contains a cycle",
			Details: map[string]any{validator.DetailInCycle: unpeeled},
		})
	}

	input := snapshot.NodesByKind(model.KindInput)[0]
	inputVars := make(map[string]bool)
	initialInput := make(map[string]any)
	for _, v := range input.InputVariables() {
		inputVars[v.Name] = true
		if v.Default != nil {
			initialInput[v.Name] = v.Default
		} else {
			initialInput[v.Name] = ""
		}
	}

	outputVars := make(map[string]bool)
	for _, n := range snapshot.Nodes {
		if n.Kind != model.KindInput {
			outputVars[n.EffectiveOutputVar()] = true
		}
	}

	visible := c.resolver.Resolve(snapshot)

	plan := &model.Plan{
		GraphHash:    hash,
		Steps:        make([]model.CompiledStep, 0, len(order)),
		InitialScope: model.InitialScope{Input: initialInput},
	}

	for _, id := range order {
		n, _ := snapshot.Node(id)
		step := model.CompiledStep{
			ID:        n.ID,
			Kind:      n.Kind,
			Label:     n.Label,
			OutputVar: n.EffectiveOutputVar(),
			PassMode:  n.EffectivePassMode(),
		}

		if n.Kind == model.KindInput {
			step.ResolvedFields = inputPayload(n)
		} else {
			fields, ignored := payload(n)
			for _, field := range ignored {
				c.ignore(&plan.Warnings, n, field)
			}
			qualify := c.qualifier(n, inputVars, outputVars, visible[n.ID], &plan.Warnings)
			rewritten, _ := template.Rewrite(fields, qualify).(map[string]any)
			step.ResolvedFields = rewritten
		}
		plan.Steps = append(plan.Steps, step)
	}

	if c.strict {
		if refs := referenceWarnings(plan.Warnings); len(refs) > 0 {
			return nil, &UnresolvedReferenceError{References: refs}
		}
	}

	c.logger.Debug("Compiled workflow graph", log.Int("steps", len(plan.Steps)),
		log.Int("warnings", len(plan.Warnings)), log.String("graphHash", hash))
	return plan, nil
}

// qualifier returns the template qualifier for the fields of one node.
func (c *Compiler) qualifier(n *model.Node, inputVars, outputVars map[string]bool,
	bindings []model.VariableBinding, warnings *[]model.CompileWarning) template.Qualifier {
	return func(field, path string) (string, bool) {
		qualified, known := qualifyPath(path, inputVars, outputVars)
		if !known {
			c.warn(warnings, n, field, path, ReasonUnknownReference)
			return "", false
		}
		if qualified != model.InputScopeKey && !visibility.IsVisible(bindings, qualified) {
			c.warn(warnings, n, field, path, ReasonNotVisible)
		}
		return qualified, true
	}
}

func qualifyPath(path string, inputVars, outputVars map[string]bool) (string, bool) {
	root := model.RootOf(path)
	if root == model.InputScopeKey {
		rest := strings.TrimPrefix(path, model.InputScopeKey+".")
		if rest == path || inputVars[model.RootOf(rest)] {
			return path, true
		}
		return "", false
	}
	if inputVars[root] {
		return model.InputScopeKey + "." + path, true
	}
	if outputVars[root] {
		return path, true
	}
	return "", false
}

func (c *Compiler) warn(warnings *[]model.CompileWarning, n *model.Node, field, path, reason string) {
	w := model.CompileWarning{
		StepID:     n.ID,
		Field:      field,
		Expression: "{{" + path + "}}",
		Reason:     reason,
	}
	*warnings = append(*warnings, w)
	c.logger.Warn("Unresolved template reference", log.String(log.LoggerKeyStepID, n.ID),
		log.String("field", field), log.String("expression", w.Expression), log.String("reason", reason))
}

func (c *Compiler) ignore(warnings *[]model.CompileWarning, n *model.Node, field string) {
	*warnings = append(*warnings, model.CompileWarning{StepID: n.ID, Field: field, Reason: ReasonIgnoredField})
	c.logger.Warn("Field is not used by the step kind", log.String(log.LoggerKeyStepID, n.ID),
		log.String("kind", string(n.Kind)), log.String("field", field))
}

// referenceWarnings returns the warnings raised by template references.
func referenceWarnings(warnings []model.CompileWarning) []model.CompileWarning {
	var refs []model.CompileWarning
	for _, w := range warnings {
		if w.Reason == ReasonUnknownReference || w.Reason == ReasonNotVisible {
			refs = append(refs, w)
		}
	}
	return refs
}

// payload selects the fields the node kind uses and returns the names of the fields it drops.
// Database writes without a data map take their remaining fields as the record.
func payload(n *model.Node) (map[string]any, []string) {
	keys := payloadKeys[n.Kind]
	known := make(map[string]bool, len(keys))
	out := make(map[string]any)
	for _, key := range keys {
		known[key] = true
		if value, ok := n.Fields[key]; ok {
			out[key] = value
		}
	}

	_, hasData := n.Fields[fieldData]
	gather := recordKinds[n.Kind] && !hasData

	extra := make([]string, 0, len(n.Fields))
	for key := range n.Fields {
		if !known[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)

	var ignored []string
	record := make(map[string]any)
	for _, key := range extra {
		if gather {
			record[key] = n.Fields[key]
			continue
		}
		ignored = append(ignored, key)
	}
	if len(record) > 0 {
		out[fieldData] = record
	}
	return out, ignored
}

func inputPayload(n *model.Node) map[string]any {
	vars := n.InputVariables()
	list := make([]any, 0, len(vars))
	for _, v := range vars {
		entry := map[string]any{"name": v.Name, "required": v.Required}
		if v.Type != "" {
			entry["type"] = v.Type
		}
		if v.Default != nil {
			entry["default"] = v.Default
		}
		list = append(list, entry)
	}
	return map[string]any{model.FieldVariables: list}
}

// GraphHash returns the hex SHA-256 of the canonical JSON encoding of the graph.
func GraphHash(g *model.Graph) (string, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("failed to encode graph: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
