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

// Package jsonmodel provides the structure for representing a workflow graph definition in
// JSON or YAML format.
package jsonmodel

// GraphDefinition represents the graph structure as authored by the editor.
type GraphDefinition struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	Nodes       []NodeDefinition `json:"nodes"`
	Edges       []EdgeDefinition `json:"edges"`
}

// NodeDefinition represents a node in the graph definition. Type is accepted as an alias
// of Kind and Data as an alias of Fields.
type NodeDefinition struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind,omitempty"`
	Type      string         `json:"type,omitempty"`
	Label     string         `json:"label,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	PassMode  string         `json:"passMode,omitempty"`
	OutputVar string         `json:"outputVar,omitempty"`
}

// EdgeDefinition represents an edge in the graph definition.
type EdgeDefinition struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`
}
