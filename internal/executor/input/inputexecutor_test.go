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

package input

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	flowmodel "github.com/asgardeo/stepflow/internal/flow/model"
)

type InputExecutorTestSuite struct {
	suite.Suite
	fields map[string]any
}

func TestInputExecutorSuite(t *testing.T) {
	suite.Run(t, new(InputExecutorTestSuite))
}

func (suite *InputExecutorTestSuite) SetupTest() {
	suite.fields = map[string]any{
		"variables": []any{
			map[string]any{"name": "email", "required": true},
			map[string]any{"name": "password", "required": true},
			map[string]any{"name": "name"},
		},
	}
}

func (suite *InputExecutorTestSuite) TestAllRequiredPresent() {
	scope := flowmodel.NewRuntimeScope(map[string]any{"email": "a@b.c", "password": "secret", "name": ""})

	value, err := NewInputExecutor().Execute(context.Background(), suite.fields, scope.ReadOnly())
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), value)
}

func (suite *InputExecutorTestSuite) TestMissingRequired() {
	scope := flowmodel.NewRuntimeScope(map[string]any{"email": " ", "name": "Alice"})

	_, err := NewInputExecutor().Execute(context.Background(), suite.fields, scope.ReadOnly())
	assert.EqualError(suite.T(), err, "missing required input: email, password")
}
