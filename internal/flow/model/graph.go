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

// Edge is a directed dependency between two nodes.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is a workflow graph. It performs no validation; run the validator before
// trusting its structure.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []Edge  `json:"edges"`
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	for _, n := range g.Nodes {
		if n != nil && n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// NodeIndex returns the insertion index of the node with the given id, or -1.
func (g *Graph) NodeIndex(id string) int {
	for i, n := range g.Nodes {
		if n != nil && n.ID == id {
			return i
		}
	}
	return -1
}

// NodesByKind returns the nodes of the given kind in insertion order.
func (g *Graph) NodesByKind(kind Kind) []*Node {
	var nodes []*Node
	for _, n := range g.Nodes {
		if n != nil && n.Kind == kind {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// IncomingEdges returns the edges targeting the node in edge order.
func (g *Graph) IncomingEdges(id string) []Edge {
	var edges []Edge
	for _, e := range g.Edges {
		if e.Target == id {
			edges = append(edges, e)
		}
	}
	return edges
}

// OutgoingEdges returns the edges leaving the node in edge order.
func (g *Graph) OutgoingEdges(id string) []Edge {
	var edges []Edge
	for _, e := range g.Edges {
		if e.Source == id {
			edges = append(edges, e)
		}
	}
	return edges
}

// Predecessors returns the distinct sources of the node's incoming edges in edge order.
func (g *Graph) Predecessors(id string) []string {
	return distinct(g.IncomingEdges(id), func(e Edge) string { return e.Source })
}

// Successors returns the distinct targets of the node's outgoing edges in edge order.
func (g *Graph) Successors(id string) []string {
	return distinct(g.OutgoingEdges(id), func(e Edge) string { return e.Target })
}

// HasEdge reports whether an edge between source and target already exists.
func (g *Graph) HasEdge(source, target string) bool {
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			return true
		}
	}
	return false
}

// Clone returns a deep snapshot of the graph.
func (g *Graph) Clone() *Graph {
	clone := &Graph{
		Nodes: make([]*Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		clone.Nodes[i] = n.Clone()
	}
	copy(clone.Edges, g.Edges)
	return clone
}

// WithEdge returns a copy of the graph with the candidate edge appended.
// Nodes are shared with the receiver.
func (g *Graph) WithEdge(edge Edge) *Graph {
	edges := make([]Edge, len(g.Edges), len(g.Edges)+1)
	copy(edges, g.Edges)
	return &Graph{
		Nodes: g.Nodes,
		Edges: append(edges, edge),
	}
}

func distinct(edges []Edge, key func(Edge) string) []string {
	seen := make(map[string]bool, len(edges))
	var ids []string
	for _, e := range edges {
		id := key(e)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
