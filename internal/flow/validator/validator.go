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

// Package validator checks workflow graphs against an ordered pipeline of structural rules.
//
// The pipeline is fail-fast: the first failing rule is reported with the ids of the offending
// nodes or edges so an editor can highlight them.
package validator

import (
	"fmt"

	"github.com/asgardeo/stepflow/internal/flow/dag"
	"github.com/asgardeo/stepflow/internal/flow/model"
)

// Rule names reported in results.
const (
	RuleWellFormedNodes     = "ruleWellFormedNodes"
	RuleSingleInputNode     = "ruleSingleInputNode"
	RuleInputNoIncoming     = "ruleInputNoIncoming"
	RuleNonInputHasIncoming = "ruleNonInputHasIncoming"
	RuleNoOrphans           = "ruleNoOrphans"
	RuleNoCycles            = "ruleNoCycles"
	RuleAllowedConnections  = "ruleAllowedConnections"
	RuleNoDuplicateEdges    = "ruleNoDuplicateEdges"
	RuleInboundCardinality  = "ruleInboundCardinality"
)

// Detail keys reported in results.
const (
	DetailNodes      = "nodes"
	DetailEdges      = "edges"
	DetailInputNodes = "inputNodes"
	DetailOrphans    = "orphans"
	DetailInCycle    = "inCycle"
)

// Result is the outcome of a validation.
type Result struct {
	Valid   bool           `json:"valid"`
	Rule    string         `json:"rule,omitempty"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Err returns a StructuralError for a failing result and nil otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return NewStructuralError(r)
}

type rule struct {
	name  string
	check func(g *model.Graph) Result
}

// pipeline is the full, ordered rule set run before compilation.
var pipeline = []rule{
	{RuleWellFormedNodes, checkWellFormedNodes},
	{RuleSingleInputNode, checkSingleInputNode},
	{RuleInputNoIncoming, checkInputNoIncoming},
	{RuleNonInputHasIncoming, checkNonInputHasIncoming},
	{RuleNoOrphans, checkNoOrphans},
	{RuleNoCycles, checkNoCycles},
	{RuleAllowedConnections, checkAllowedConnections},
}

// editSafePipeline holds the rules an in-progress editor graph must always satisfy.
var editSafePipeline = []rule{
	{RuleWellFormedNodes, checkWellFormedNodes},
	{RuleInputNoIncoming, checkInputNoIncoming},
	{RuleNoCycles, checkNoCycles},
	{RuleAllowedConnections, checkAllowedConnections},
}

// maxInbound limits the number of inbound edges per node kind.
var maxInbound = map[model.Kind]int{
	model.KindInput:    0,
	model.KindResponse: 1,
}

// Validate runs the full rule pipeline and returns the first failure, or a valid result.
func Validate(g *model.Graph) Result {
	return run(pipeline, g)
}

// ValidateConnection checks whether the candidate edge may be added to the graph.
// The candidate is checked on its own first, then the edit-safe rules are run against the
// graph with the candidate added. The graph itself is not modified.
func ValidateConnection(g *model.Graph, edge model.Edge) Result {
	if result := checkCandidate(g, edge); !result.Valid {
		return result
	}
	return run(editSafePipeline, g.WithEdge(edge))
}

// RuleNames returns the names of the full pipeline in evaluation order.
func RuleNames() []string {
	names := make([]string, len(pipeline))
	for i, r := range pipeline {
		names[i] = r.name
	}
	return names
}

func run(rules []rule, g *model.Graph) Result {
	if g == nil {
		return fail(RuleWellFormedNodes, "graph is empty", nil)
	}
	for _, r := range rules {
		if result := r.check(g); !result.Valid {
			return result
		}
	}
	return valid()
}

func valid() Result {
	return Result{Valid: true}
}

func fail(ruleName, message string, details map[string]any) Result {
	return Result{
		Valid:   false,
		Rule:    ruleName,
		Message: message,
		Details: details,
	}
}

// edgeRef identifies an edge in result details.
func edgeRef(e model.Edge) string {
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("%s->%s", e.Source, e.Target)
}

func checkWellFormedNodes(g *model.Graph) Result {
	seen := make(map[string]bool, len(g.Nodes))
	var badNodes []string
	for i, n := range g.Nodes {
		switch {
		case n == nil || n.ID == "":
			badNodes = append(badNodes, fmt.Sprintf("#%d", i))
		case seen[n.ID]:
			badNodes = append(badNodes, n.ID)
		case !n.Kind.IsValid():
			badNodes = append(badNodes, n.ID)
		}
		if n != nil {
			seen[n.ID] = true
		}
	}
	if len(badNodes) > 0 {
		return fail(RuleWellFormedNodes, "nodes must have unique ids and known kinds",
			map[string]any{DetailNodes: badNodes})
	}

	var badEdges []string
	for _, e := range g.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			badEdges = append(badEdges, edgeRef(e))
		}
	}
	if len(badEdges) > 0 {
		return fail(RuleWellFormedNodes, "edges must connect existing nodes",
			map[string]any{DetailEdges: badEdges})
	}
	return valid()
}

func checkSingleInputNode(g *model.Graph) Result {
	inputs := g.NodesByKind(model.KindInput)
	switch len(inputs) {
	case 0:
		return fail(RuleSingleInputNode, "no input node", map[string]any{DetailInputNodes: []string{}})
	case 1:
		return valid()
	default:
		ids := make([]string, len(inputs))
		for i, n := range inputs {
			ids[i] = n.ID
		}
		return fail(RuleSingleInputNode, "multiple input nodes not supported",
			map[string]any{DetailInputNodes: ids})
	}
}

func checkInputNoIncoming(g *model.Graph) Result {
	var edges []string
	for _, n := range g.NodesByKind(model.KindInput) {
		for _, e := range g.IncomingEdges(n.ID) {
			edges = append(edges, edgeRef(e))
		}
	}
	if len(edges) > 0 {
		return fail(RuleInputNoIncoming, "input node must not have inbound edges",
			map[string]any{DetailEdges: edges})
	}
	return valid()
}

func checkNonInputHasIncoming(g *model.Graph) Result {
	var nodes []string
	for _, n := range g.Nodes {
		if n.Kind != model.KindInput && len(g.IncomingEdges(n.ID)) == 0 {
			nodes = append(nodes, n.ID)
		}
	}
	if len(nodes) > 0 {
		return fail(RuleNonInputHasIncoming, "every non-input node must have at least one inbound edge",
			map[string]any{DetailNodes: nodes})
	}
	return valid()
}

func checkNoOrphans(g *model.Graph) Result {
	inputs := g.NodesByKind(model.KindInput)
	if len(inputs) == 0 {
		return valid()
	}

	visited := map[string]bool{inputs[0].ID: true}
	stack := []string{inputs[0].ID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.Successors(current) {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}

	var orphans []string
	for _, n := range g.Nodes {
		if !visited[n.ID] {
			orphans = append(orphans, n.ID)
		}
	}
	if len(orphans) > 0 {
		return fail(RuleNoOrphans, "nodes are not reachable from the input node",
			map[string]any{DetailOrphans: orphans})
	}
	return valid()
}

func checkNoCycles(g *model.Graph) Result {
	_, unpeeled := dag.TopologicalOrder(g)
	if len(unpeeled) > 0 {
		return fail(RuleNoCycles, "graph contains a cycle", map[string]any{DetailInCycle: unpeeled})
	}
	return valid()
}

func checkAllowedConnections(g *model.Graph) Result {
	var edges []string
	for _, e := range g.Edges {
		if !connectionAllowed(g, e) {
			edges = append(edges, edgeRef(e))
		}
	}
	if len(edges) > 0 {
		return fail(RuleAllowedConnections, "self-loops and edges into the input node are not allowed",
			map[string]any{DetailEdges: edges})
	}
	return valid()
}

func connectionAllowed(g *model.Graph, e model.Edge) bool {
	if e.Source == e.Target {
		return false
	}
	if target, ok := g.Node(e.Target); ok && target.Kind == model.KindInput {
		return false
	}
	return true
}

func checkCandidate(g *model.Graph, edge model.Edge) Result {
	_, sourceOK := g.Node(edge.Source)
	target, targetOK := g.Node(edge.Target)
	if !sourceOK || !targetOK {
		return fail(RuleWellFormedNodes, "edges must connect existing nodes",
			map[string]any{DetailEdges: []string{edgeRef(edge)}})
	}

	if g.HasEdge(edge.Source, edge.Target) {
		return fail(RuleNoDuplicateEdges, "nodes are already connected",
			map[string]any{DetailEdges: []string{edgeRef(edge)}})
	}

	if !connectionAllowed(g, edge) {
		return fail(RuleAllowedConnections, "self-loops and edges into the input node are not allowed",
			map[string]any{DetailEdges: []string{edgeRef(edge)}})
	}

	if limit, ok := maxInbound[target.Kind]; ok && len(g.IncomingEdges(target.ID)) >= limit {
		return fail(RuleInboundCardinality,
			fmt.Sprintf("%s nodes accept at most %d inbound edge(s)", target.Kind, limit),
			map[string]any{DetailNodes: []string{target.ID}, DetailEdges: []string{edgeRef(edge)}})
	}
	return valid()
}
