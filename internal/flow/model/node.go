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
	"fmt"

	"github.com/asgardeo/stepflow/internal/system/utils"
)

// PassModeFull exposes every output path of a node to its successors.
const PassModeFull = "full"

// FieldVariables is the field of an input node that declares its variables.
const FieldVariables = "variables"

// FieldCollection is the field of a database node naming its target collection.
const FieldCollection = "collection"

// InputVariable is a variable declared by the input node.
type InputVariable struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Default  any    `json:"default,omitempty" yaml:"default,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// Node is one step instance in a workflow graph.
type Node struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	Label     string         `json:"label,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	PassMode  string         `json:"passMode,omitempty"`
	OutputVar string         `json:"outputVar,omitempty"`
}

// EffectiveOutputVar returns the declared output variable or the kind default.
func (n *Node) EffectiveOutputVar() string {
	if n.Kind == KindInput {
		return ""
	}
	if n.OutputVar != "" {
		return n.OutputVar
	}
	return n.Kind.DefaultOutputVar()
}

// EffectivePassMode returns the pass mode, defaulting to full.
func (n *Node) EffectivePassMode() string {
	if n.PassMode == "" {
		return PassModeFull
	}
	return n.PassMode
}

// DisplayLabel returns the label of the node or its id when it has none.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Collection returns the collection a database node targets.
func (n *Node) Collection() string {
	collection, _ := n.Fields[FieldCollection].(string)
	return collection
}

// InputVariables returns the variables declared by an input node.
func (n *Node) InputVariables() []InputVariable {
	return ParseInputVariables(n.Fields[FieldVariables])
}

// ParseInputVariables reads a variable declaration list. Entries may be given as objects
// or as bare names.
func ParseInputVariables(raw any) []InputVariable {
	if raw == nil {
		return nil
	}

	var vars []InputVariable
	switch entries := raw.(type) {
	case []InputVariable:
		vars = append(vars, entries...)
	case []string:
		for _, name := range entries {
			vars = append(vars, InputVariable{Name: name})
		}
	case []any:
		for _, entry := range entries {
			if v, ok := parseInputVariable(entry); ok {
				vars = append(vars, v)
			}
		}
	case []map[string]any:
		for _, entry := range entries {
			if v, ok := parseInputVariable(entry); ok {
				vars = append(vars, v)
			}
		}
	}
	return vars
}

func parseInputVariable(entry any) (InputVariable, bool) {
	switch e := entry.(type) {
	case string:
		return InputVariable{Name: e}, e != ""
	case InputVariable:
		return e, e.Name != ""
	case map[string]any:
		name, _ := e["name"].(string)
		if name == "" {
			return InputVariable{}, false
		}
		v := InputVariable{Name: name, Default: e["default"]}
		v.Type, _ = e["type"].(string)
		v.Required, _ = e["required"].(bool)
		return v, true
	}
	return InputVariable{}, false
}

// Clone returns a deep copy of the node. A nil node clones to nil.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := *n
	clone.Fields = utils.DeepCopyMap(n.Fields)
	return &clone
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.ID, n.Kind)
}
