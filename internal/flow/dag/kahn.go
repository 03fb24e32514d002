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

// Package dag provides ordering algorithms over workflow graphs.
package dag

import (
	"container/heap"

	"github.com/asgardeo/stepflow/internal/flow/model"
)

// indexHeap is a min-heap of node insertion indexes.
type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *indexHeap) Push(x any) {
	*h = append(*h, x.(int))
}

func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TopologicalOrder peels the graph with Kahn's algorithm. Ties between ready nodes are
// broken by insertion order, so the result is deterministic. Nodes that could not be
// peeled are part of or downstream of a cycle and are returned in insertion order.
// Edges whose endpoints are unknown are ignored.
func TopologicalOrder(g *model.Graph) (order []string, unpeeled []string) {
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if _, dup := index[n.ID]; !dup {
			index[n.ID] = i
		}
	}

	inDegree := make([]int, len(g.Nodes))
	successors := make([][]int, len(g.Nodes))
	for _, e := range g.Edges {
		src, okSrc := index[e.Source]
		dst, okDst := index[e.Target]
		if !okSrc || !okDst {
			continue
		}
		successors[src] = append(successors[src], dst)
		inDegree[dst]++
	}

	ready := &indexHeap{}
	for i := range g.Nodes {
		if inDegree[i] == 0 && index[g.Nodes[i].ID] == i {
			heap.Push(ready, i)
		}
	}

	peeled := make([]bool, len(g.Nodes))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		peeled[i] = true
		order = append(order, g.Nodes[i].ID)
		for _, next := range successors[i] {
			inDegree[next]--
			if inDegree[next] == 0 {
				heap.Push(ready, next)
			}
		}
	}

	for i, n := range g.Nodes {
		if !peeled[i] && index[n.ID] == i {
			unpeeled = append(unpeeled, n.ID)
		}
	}
	return order, unpeeled
}
