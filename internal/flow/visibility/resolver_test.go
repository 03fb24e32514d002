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

package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/stepflow/internal/flow/model"
)

type ResolverTestSuite struct {
	suite.Suite
	resolver *Resolver
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}

func (suite *ResolverTestSuite) SetupTest() {
	suite.resolver = NewResolver(model.SchemaFunc(func(collection string) []string {
		if collection == "users" {
			return []string{"_id", "email", "name"}
		}
		return nil
	}))
}

func inputNode(vars ...string) *model.Node {
	list := make([]any, len(vars))
	for i, v := range vars {
		list[i] = map[string]any{"name": v}
	}
	return &model.Node{ID: "in", Kind: model.KindInput, Label: "Input", Fields: map[string]any{"variables": list}}
}

func edges(pairs ...string) []model.Edge {
	var out []model.Edge
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.Edge{ID: pairs[i] + "-" + pairs[i+1], Source: pairs[i], Target: pairs[i+1]})
	}
	return out
}

func (suite *ResolverTestSuite) TestOwnPaths() {
	testCases := []struct {
		name     string
		node     *model.Node
		expected []string
	}{
		{"Input", inputNode("email", "password"), []string{"email", "password"}},
		{"DBWithSchema", &model.Node{ID: "f", Kind: model.KindDBFind, Fields: map[string]any{"collection": "users"}},
			[]string{"foundData", "foundData._id", "foundData.email", "foundData.name"}},
		{"DBUnknownCollection", &model.Node{ID: "f", Kind: model.KindDBInsert, Fields: map[string]any{"collection": "x"}},
			[]string{"createdRecord"}},
		{"UserLogin", &model.Node{ID: "l", Kind: model.KindUserLogin, OutputVar: "login"},
			[]string{"login", "login.ok", "login.userId", "login.email", "login.name", "login.token"}},
		{"AuthMiddleware", &model.Node{ID: "a", Kind: model.KindAuthMiddleware}, nil},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, suite.resolver.OwnPaths(tc.node))
		})
	}
}

func (suite *ResolverTestSuite) TestFullPassExposesSchemaFields() {
	g := &model.Graph{
		Nodes: []*model.Node{
			inputNode("email"),
			{ID: "find", Kind: model.KindDBFind, Label: "Find user", PassMode: "full",
				Fields: map[string]any{"collection": "users"}},
			{ID: "update", Kind: model.KindDBUpdate, Fields: map[string]any{"collection": "users"}},
		},
		Edges: edges("in", "find", "find", "update"),
	}

	vars := suite.resolver.AvailableVars(g, "update")
	paths := Paths(vars)

	assert.Subset(suite.T(), paths, []string{"foundData", "foundData._id", "foundData.email", "foundData.name"})
	assert.Contains(suite.T(), paths, "email")
	assert.Equal(suite.T(), model.VariableBinding{
		Path: "foundData", FromNodeID: "find", FromLabel: "Find user", OriginNodeID: "find",
	}, vars[0])

	// Input variables forwarded by the full pass keep their origin.
	for _, b := range vars {
		if b.Path == "email" {
			assert.Equal(suite.T(), "find", b.FromNodeID)
			assert.Equal(suite.T(), "in", b.OriginNodeID)
		}
	}
}

func (suite *ResolverTestSuite) TestMonotonicityUnderFullPass() {
	g := &model.Graph{
		Nodes: []*model.Node{
			inputNode("email"),
			{ID: "p", Kind: model.KindDBFind, Fields: map[string]any{"collection": "users"}},
			{ID: "n", Kind: model.KindEmailSend},
			{ID: "m", Kind: model.KindResponse},
		},
		Edges: edges("in", "p", "p", "n"),
	}

	before := Paths(suite.resolver.AvailableVars(g, "n"))
	assert.Contains(suite.T(), before, "foundData.email")

	g.Edges = append(g.Edges, edges("n", "m")...)
	after := Paths(suite.resolver.AvailableVars(g, "m"))
	assert.Subset(suite.T(), after, before)
	assert.Contains(suite.T(), after, "emailResult.messageId")

	// Narrowing the pass mode of N removes the forwarded paths.
	g.Nodes[2].PassMode = "emailResult.sent"
	narrowed := Paths(suite.resolver.AvailableVars(g, "m"))
	assert.Equal(suite.T(), []string{"emailResult.sent"}, narrowed)
}

func (suite *ResolverTestSuite) TestExplicitRootPassExposesDirectChildren() {
	g := &model.Graph{
		Nodes: []*model.Node{
			inputNode("email"),
			{ID: "find", Kind: model.KindDBFind, PassMode: "foundData", Fields: map[string]any{"collection": "users"}},
			{ID: "resp", Kind: model.KindResponse},
		},
		Edges: edges("in", "find", "find", "resp"),
	}

	paths := Paths(suite.resolver.AvailableVars(g, "resp"))
	assert.Equal(suite.T(), []string{"foundData", "foundData._id", "foundData.email", "foundData.name"}, paths)
}

func (suite *ResolverTestSuite) TestExplicitSubPathExposesOnlyThatPath() {
	g := &model.Graph{
		Nodes: []*model.Node{
			inputNode("email"),
			{ID: "find", Kind: model.KindDBFind, PassMode: "foundData.email", Fields: map[string]any{"collection": "users"}},
			{ID: "resp", Kind: model.KindResponse},
		},
		Edges: edges("in", "find", "find", "resp"),
	}

	vars := suite.resolver.AvailableVars(g, "resp")
	assert.Equal(suite.T(), []string{"foundData.email"}, Paths(vars))
	assert.True(suite.T(), IsVisible(vars, "foundData.email"))
	assert.False(suite.T(), IsVisible(vars, "foundData.name"))
	assert.False(suite.T(), IsVisible(vars, "email"))
}

func (suite *ResolverTestSuite) TestAuthMiddlewareForwardsButDoesNotProduce() {
	g := &model.Graph{
		Nodes: []*model.Node{
			inputNode("token"),
			{ID: "auth", Kind: model.KindAuthMiddleware, Label: "Auth"},
			{ID: "resp", Kind: model.KindResponse},
		},
		Edges: edges("in", "auth", "auth", "resp"),
	}

	vars := suite.resolver.AvailableVars(g, "resp")
	assert.Equal(suite.T(), []string{"token"}, Paths(vars))
	assert.Equal(suite.T(), "auth", vars[0].FromNodeID)
	assert.Equal(suite.T(), "in", vars[0].OriginNodeID)
	assert.False(suite.T(), IsVisible(vars, "authContext"))
}

func (suite *ResolverTestSuite) TestUnionFirstBindingWins() {
	g := &model.Graph{
		Nodes: []*model.Node{
			inputNode("email"),
			{ID: "a", Kind: model.KindDBFind, Fields: map[string]any{"collection": "users"}},
			{ID: "b", Kind: model.KindDBFind, Fields: map[string]any{"collection": "users"}},
			{ID: "resp", Kind: model.KindResponse},
		},
		Edges: edges("in", "a", "in", "b", "b", "resp", "a", "resp"),
	}

	vars := suite.resolver.AvailableVars(g, "resp")
	seen := map[string]int{}
	for _, v := range vars {
		seen[v.Path]++
	}
	for path, count := range seen {
		assert.Equal(suite.T(), 1, count, path)
	}
	// Edge order decides: b's edge into resp comes first.
	assert.Equal(suite.T(), "b", vars[0].FromNodeID)
}

func (suite *ResolverTestSuite) TestInputVisibility() {
	g := &model.Graph{
		Nodes: []*model.Node{inputNode("email", "password"), {ID: "check", Kind: model.KindInputValidation}},
		Edges: edges("in", "check"),
	}

	all := suite.resolver.Resolve(g)
	assert.Empty(suite.T(), all["in"])
	assert.Equal(suite.T(), []string{"email", "password"}, Paths(all["check"]))
	assert.True(suite.T(), IsVisible(all["check"], "input.email"))
}

func (suite *ResolverTestSuite) TestCyclicGraphDegradesGracefully() {
	g := &model.Graph{
		Nodes: []*model.Node{
			inputNode("email"),
			{ID: "a", Kind: model.KindDBFind, Fields: map[string]any{"collection": "users"}},
			{ID: "b", Kind: model.KindEmailSend},
		},
		Edges: edges("in", "a", "a", "b", "b", "a"),
	}

	all := suite.resolver.Resolve(g)
	assert.Contains(suite.T(), Paths(all["a"]), "emailResult")
	assert.Contains(suite.T(), Paths(all["b"]), "foundData.email")
}
