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

package jsonmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/asgardeo/stepflow/internal/flow/model"
)

// Format is the encoding of a graph definition.
type Format string

const (
	// FormatJSON is the JSON encoding.
	FormatJSON Format = "json"
	// FormatYAML is the YAML encoding.
	FormatYAML Format = "yaml"
)

// ErrEmptyDefinition is returned when a definition has no content.
var ErrEmptyDefinition = errors.New("graph definition is empty")

// FormatFromFileName returns the format matching the file extension.
func FormatFromFileName(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// FormatFromContentType returns the format matching an HTTP content type. Anything that is
// not YAML is treated as JSON.
func FormatFromContentType(contentType string) Format {
	if strings.Contains(strings.ToLower(contentType), "yaml") {
		return FormatYAML
	}
	return FormatJSON
}

// ParseDefinition decodes a graph definition. YAML documents are normalised through JSON so
// both formats produce the same field value types.
func ParseDefinition(data []byte, format Format) (*GraphDefinition, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyDefinition
	}

	switch format {
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML graph definition: %w", err)
		}
		converted, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to normalise YAML graph definition: %w", err)
		}
		data = converted
	case FormatJSON, "":
	default:
		return nil, fmt.Errorf("unsupported graph definition format: %s", format)
	}

	var def GraphDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse graph definition: %w", err)
	}
	return &def, nil
}

// ParseGraph decodes a graph definition and converts it into a graph.
func ParseGraph(data []byte, format Format) (*model.Graph, error) {
	def, err := ParseDefinition(data, format)
	if err != nil {
		return nil, err
	}
	return def.ToGraph(), nil
}

// ToGraph converts the definition into the graph model. Edges without an id get
// "source->target".
func (d *GraphDefinition) ToGraph() *model.Graph {
	g := &model.Graph{
		Nodes: make([]*model.Node, 0, len(d.Nodes)),
		Edges: make([]model.Edge, 0, len(d.Edges)),
	}

	for _, n := range d.Nodes {
		kind := n.Kind
		if kind == "" {
			kind = n.Type
		}
		fields := n.Fields
		if fields == nil {
			fields = n.Data
		}
		if fields == nil {
			fields = map[string]any{}
		}
		g.Nodes = append(g.Nodes, &model.Node{
			ID:        n.ID,
			Kind:      model.Kind(kind),
			Label:     n.Label,
			Fields:    fields,
			PassMode:  n.PassMode,
			OutputVar: n.OutputVar,
		})
	}

	for _, e := range d.Edges {
		id := e.ID
		if id == "" {
			id = e.Source + "->" + e.Target
		}
		g.Edges = append(g.Edges, model.Edge{ID: id, Source: e.Source, Target: e.Target})
	}
	return g
}

// FromGraph builds a definition from a graph.
func FromGraph(id, name, description string, g *model.Graph) *GraphDefinition {
	def := &GraphDefinition{
		ID:          id,
		Name:        name,
		Description: description,
		Nodes:       make([]NodeDefinition, 0, len(g.Nodes)),
		Edges:       make([]EdgeDefinition, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		if n == nil {
			continue
		}
		def.Nodes = append(def.Nodes, NodeDefinition{
			ID:        n.ID,
			Kind:      string(n.Kind),
			Label:     n.Label,
			Fields:    n.Fields,
			PassMode:  n.PassMode,
			OutputVar: n.OutputVar,
		})
	}
	for _, e := range g.Edges {
		def.Edges = append(def.Edges, EdgeDefinition(e))
	}
	return def
}
