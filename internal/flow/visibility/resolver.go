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

// Package visibility computes which variable paths each node of a workflow graph can reference.
package visibility

import (
	"strings"

	"github.com/asgardeo/stepflow/internal/flow/dag"
	"github.com/asgardeo/stepflow/internal/flow/model"
)

// Resolver computes variable visibility for workflow graphs.
type Resolver struct {
	schema model.SchemaLookup
}

// NewResolver creates a resolver that reads collection fields from the given schema lookup.
func NewResolver(schema model.SchemaLookup) *Resolver {
	if schema == nil {
		schema = model.NoSchema
	}
	return &Resolver{schema: schema}
}

// OwnPaths returns every dotted path the node produces.
func (r *Resolver) OwnPaths(n *model.Node) []string {
	switch {
	case n.Kind == model.KindInput:
		vars := n.InputVariables()
		paths := make([]string, 0, len(vars))
		for _, v := range vars {
			paths = append(paths, v.Name)
		}
		return paths
	case !n.Kind.ExposesOutput():
		return nil
	}

	root := n.EffectiveOutputVar()
	if root == "" {
		return nil
	}

	var subFields []string
	if n.Kind.IsDBKind() {
		subFields = r.schema.SchemaFields(n.Collection())
	} else {
		subFields = n.Kind.StaticSubFields()
	}

	paths := make([]string, 0, len(subFields)+1)
	paths = append(paths, root)
	for _, field := range subFields {
		paths = append(paths, root+"."+field)
	}
	return paths
}

// Resolve returns the available variables of every node, keyed by node id.
// The computation is one pass over the graph in topological order. Nodes caught in a cycle
// are visited afterwards in insertion order; their back-edge predecessors contribute only
// their own paths.
func (r *Resolver) Resolve(g *model.Graph) map[string][]model.VariableBinding {
	order, unpeeled := dag.TopologicalOrder(g)
	order = append(order, unpeeled...)

	available := make(map[string][]model.VariableBinding, len(g.Nodes))
	done := make(map[string]bool, len(g.Nodes))
	for _, id := range order {
		var set bindingSet
		for _, predID := range g.Predecessors(id) {
			pred, ok := g.Node(predID)
			if !ok {
				continue
			}
			var received []model.VariableBinding
			if done[predID] {
				received = available[predID]
			}
			set.addAll(r.expose(pred, received))
		}
		available[id] = set.bindings
		done[id] = true
	}
	return available
}

// AvailableVars returns the variables visible to a single node.
func (r *Resolver) AvailableVars(g *model.Graph, nodeID string) []model.VariableBinding {
	return r.Resolve(g)[nodeID]
}

// expose returns what a predecessor makes visible to its successors given what it received.
func (r *Resolver) expose(p *model.Node, received []model.VariableBinding) []model.VariableBinding {
	if p.Kind == model.KindAuthMiddleware {
		return forward(p, received)
	}

	own := r.OwnPaths(p)
	passMode := p.EffectivePassMode()
	if passMode == model.PassModeFull {
		out := make([]model.VariableBinding, 0, len(own)+len(received))
		for _, path := range own {
			out = append(out, binding(p, path, p.ID))
		}
		return append(out, forward(p, received)...)
	}

	origin := p.ID
	if !contains(own, passMode) {
		for _, b := range received {
			if b.Path == passMode {
				origin = b.OriginNodeID
				break
			}
		}
	}
	out := []model.VariableBinding{binding(p, passMode, origin)}

	if root := p.EffectiveOutputVar(); root != "" && passMode == root {
		prefix := root + "."
		for _, path := range own {
			if strings.HasPrefix(path, prefix) {
				out = append(out, binding(p, path, p.ID))
			}
		}
	}
	return out
}

// forward re-attributes received bindings to the forwarding node.
func forward(p *model.Node, received []model.VariableBinding) []model.VariableBinding {
	out := make([]model.VariableBinding, len(received))
	for i, b := range received {
		out[i] = binding(p, b.Path, b.OriginNodeID)
	}
	return out
}

func binding(p *model.Node, path, origin string) model.VariableBinding {
	return model.VariableBinding{
		Path:         path,
		FromNodeID:   p.ID,
		FromLabel:    p.DisplayLabel(),
		OriginNodeID: origin,
	}
}

// bindingSet keeps the first binding of every path in insertion order.
type bindingSet struct {
	bindings []model.VariableBinding
	seen     map[string]bool
}

func (s *bindingSet) addAll(bindings []model.VariableBinding) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	for _, b := range bindings {
		if s.seen[b.Path] {
			continue
		}
		s.seen[b.Path] = true
		s.bindings = append(s.bindings, b)
	}
}

// Paths returns the paths of the bindings in order.
func Paths(bindings []model.VariableBinding) []string {
	paths := make([]string, len(bindings))
	for i, b := range bindings {
		paths[i] = b.Path
	}
	return paths
}

// IsVisible reports whether the path, or one of its ancestors, is among the bindings.
// A path qualified with the input root is matched against the bare variable name.
func IsVisible(bindings []model.VariableBinding, path string) bool {
	path = strings.TrimPrefix(path, model.InputScopeKey+".")
	for _, b := range bindings {
		if b.Path == path || strings.HasPrefix(path, b.Path+".") {
			return true
		}
	}
	return false
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
