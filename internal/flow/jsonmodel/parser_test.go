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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/stepflow/internal/flow/model"
)

const signupJSON = `{
  "id": "signup",
  "name": "Sign up",
  "nodes": [
    {"id": "in", "kind": "input", "fields": {"variables": [{"name": "email", "required": true}]}},
    {"id": "insert", "type": "dbInsert", "label": "Create user",
     "data": {"collection": "users", "data": {"email": "{{email}}"}}},
    {"id": "resp", "kind": "response", "passMode": "full", "fields": {"status": 201}}
  ],
  "edges": [
    {"id": "e1", "source": "in", "target": "insert"},
    {"source": "insert", "target": "resp"}
  ]
}`

const signupYAML = `
id: signup
name: Sign up
nodes:
  - id: in
    kind: input
    fields:
      variables:
        - name: email
          required: true
  - id: insert
    type: dbInsert
    label: Create user
    data:
      collection: users
      data:
        email: "{{email}}"
  - id: resp
    kind: response
    passMode: full
    fields:
      status: 201
edges:
  - id: e1
    source: in
    target: insert
  - source: insert
    target: resp
`

type ParserTestSuite struct {
	suite.Suite
}

func TestParserSuite(t *testing.T) {
	suite.Run(t, new(ParserTestSuite))
}

func (suite *ParserTestSuite) TestParseJSONAndYAMLAgree() {
	fromJSON, err := ParseGraph([]byte(signupJSON), FormatJSON)
	require.NoError(suite.T(), err)
	fromYAML, err := ParseGraph([]byte(signupYAML), FormatYAML)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), fromJSON, fromYAML)

	require.Len(suite.T(), fromJSON.Nodes, 3)
	insert := fromJSON.Nodes[1]
	assert.Equal(suite.T(), model.KindDBInsert, insert.Kind)
	assert.Equal(suite.T(), "users", insert.Collection())
	assert.Equal(suite.T(), float64(201), fromJSON.Nodes[2].Fields["status"])
	assert.Equal(suite.T(), "insert->resp", fromJSON.Edges[1].ID)
	assert.Equal(suite.T(), []model.InputVariable{{Name: "email", Required: true}}, fromJSON.Nodes[0].InputVariables())
}

func (suite *ParserTestSuite) TestParseErrors() {
	testCases := []struct {
		name   string
		data   string
		format Format
	}{
		{"Empty", "  ", FormatJSON},
		{"BadJSON", "{", FormatJSON},
		{"BadYAML", "nodes: [", FormatYAML},
		{"UnknownFormat", "{}", Format("toml")},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			g, err := ParseGraph([]byte(tc.data), tc.format)
			assert.Nil(t, g)
			assert.Error(t, err)
		})
	}
}

func (suite *ParserTestSuite) TestFormatDetection() {
	f, ok := FormatFromFileName("login.YML")
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), FormatYAML, f)

	f, ok = FormatFromFileName("login.json")
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), FormatJSON, f)

	_, ok = FormatFromFileName("README.md")
	assert.False(suite.T(), ok)

	assert.Equal(suite.T(), FormatYAML, FormatFromContentType("application/x-yaml"))
	assert.Equal(suite.T(), FormatJSON, FormatFromContentType("application/json; charset=utf-8"))
}

func (suite *ParserTestSuite) TestFromGraphRoundTrip() {
	g, err := ParseGraph([]byte(signupJSON), FormatJSON)
	require.NoError(suite.T(), err)

	def := FromGraph("signup", "Sign up", "", g)
	data, err := json.Marshal(def)
	require.NoError(suite.T(), err)

	again, err := ParseGraph(data, FormatJSON)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), g, again)
}
