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

package template

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type mapLookup map[string]any

func (m mapLookup) Get(path string) (any, bool) {
	v, ok := m[path]
	return v, ok
}

type TemplateTestSuite struct {
	suite.Suite
	qualify Qualifier
	calls   []string
}

func TestTemplateSuite(t *testing.T) {
	suite.Run(t, new(TemplateTestSuite))
}

func (suite *TemplateTestSuite) SetupTest() {
	suite.calls = nil
	suite.qualify = func(field, path string) (string, bool) {
		suite.calls = append(suite.calls, field+"="+path)
		switch {
		case path == "email" || path == "name":
			return "input." + path, true
		case path == "foundData" || len(path) > 10 && path[:10] == "foundData.":
			return path, true
		}
		return "", false
	}
}

func (suite *TemplateTestSuite) TestIsFullMatch() {
	testCases := []struct {
		input    string
		path     string
		expected bool
	}{
		{"{{email}}", "email", true},
		{"{{  foundData.email  }}", "foundData.email", true},
		{"{{items.0.id}}", "items.0.id", true},
		{"Hi {{name}}", "", false},
		{"{{a}} {{b}}", "", false},
		{"{{9lives}}", "", false},
		{"plain", "", false},
	}

	for _, tc := range testCases {
		path, ok := IsFullMatch(tc.input)
		assert.Equal(suite.T(), tc.expected, ok, tc.input)
		assert.Equal(suite.T(), tc.path, path, tc.input)
	}
}

func (suite *TemplateTestSuite) TestPlaceholders() {
	assert.Equal(suite.T(), []string{"name", "foundData.email"},
		Placeholders("Hi {{name}}, you are {{ foundData.email }}"))
	assert.Empty(suite.T(), Placeholders("nothing here"))
}

func (suite *TemplateTestSuite) TestRewriteFullAndPartial() {
	fields := map[string]any{
		"collection": "users",
		"data": map[string]any{
			"email":    "{{email}}",
			"greeting": "Hi {{ name }}!",
			"owner":    "{{foundData._id}}",
			"unknown":  "{{ghost.value}}",
		},
		"list":  []any{"{{email}}", 5},
		"count": 3,
	}

	out := Rewrite(fields, suite.qualify).(map[string]any)
	data := out["data"].(map[string]any)

	assert.Equal(suite.T(), Ref("input.email"), data["email"])
	assert.Equal(suite.T(), "Hi {{input.name}}!", data["greeting"])
	assert.Equal(suite.T(), Ref("foundData._id"), data["owner"])
	assert.Equal(suite.T(), "{{ghost.value}}", data["unknown"])
	assert.Equal(suite.T(), []any{Ref("input.email"), 5}, out["list"])
	assert.Equal(suite.T(), 3, out["count"])
	assert.Equal(suite.T(), "users", out["collection"])

	// The input is left untouched.
	assert.Equal(suite.T(), "{{email}}", fields["data"].(map[string]any)["email"])

	// Keys are visited in sorted order with dotted field paths.
	assert.Equal(suite.T(), []string{
		"data.email=email",
		"data.greeting=name",
		"data.owner=foundData._id",
		"data.unknown=ghost.value",
		"list.0=email",
	}, suite.calls)
}

func (suite *TemplateTestSuite) TestRefJSONRoundTrip() {
	encoded, err := json.Marshal(map[string]any{"email": Ref("input.email")})
	require.NoError(suite.T(), err)
	assert.JSONEq(suite.T(), `{"email":{"$ref":"input.email"}}`, string(encoded))

	var decoded any
	require.NoError(suite.T(), json.Unmarshal(encoded, &decoded))
	restored := RestoreRefs(decoded).(map[string]any)
	assert.Equal(suite.T(), Ref("input.email"), restored["email"])
}

func (suite *TemplateTestSuite) TestResolve() {
	scope := mapLookup{
		"input.email":    "ann@example.com",
		"input.name":     "Ann",
		"foundData":      map[string]any{"_id": "u1"},
		"foundData._id":  "u1",
		"validated.ok":   true,
		"emailResult.id": 42,
	}

	fields := map[string]any{
		"email":    Ref("input.email"),
		"record":   Ref("foundData"),
		"missing":  Ref("createdRecord"),
		"greeting": "Hi {{input.name}} ({{ghost}})",
		"late":     "{{validated.ok}}",
		"verbatim": "{{ghost.value}}",
		"nested":   []any{Ref("foundData._id"), "id={{emailResult.id}}"},
	}

	out := ResolveFields(fields, scope)

	assert.Equal(suite.T(), "ann@example.com", out["email"])
	assert.Equal(suite.T(), map[string]any{"_id": "u1"}, out["record"])
	assert.Nil(suite.T(), out["missing"])
	assert.Equal(suite.T(), "Hi Ann ({{ghost}})", out["greeting"])
	assert.Equal(suite.T(), true, out["late"])
	assert.Equal(suite.T(), "{{ghost.value}}", out["verbatim"])
	assert.Equal(suite.T(), []any{"u1", "id=42"}, out["nested"])
}

func (suite *TemplateTestSuite) TestStringify() {
	assert.Equal(suite.T(), "", Stringify(nil))
	assert.Equal(suite.T(), "12", Stringify(12))
	assert.Equal(suite.T(), `{"a":1}`, Stringify(map[string]any{"a": 1}))
	assert.Equal(suite.T(), "{{x}}", Stringify(Ref("x")))
}
