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

package response

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	flowmodel "github.com/asgardeo/stepflow/internal/flow/model"
)

type ResponseExecutorTestSuite struct {
	suite.Suite
}

func TestResponseExecutorSuite(t *testing.T) {
	suite.Run(t, new(ResponseExecutorTestSuite))
}

func (suite *ResponseExecutorTestSuite) TestStatus() {
	cases := []struct {
		name   string
		fields map[string]any
		want   any
		errMsg string
	}{
		{"default", map[string]any{"body": "ok"}, map[string]any{"status": 200, "body": "ok"}, ""},
		{"number", map[string]any{"status": float64(201)}, map[string]any{"status": 201, "body": nil}, ""},
		{"string", map[string]any{"status": "404", "body": map[string]any{"e": 1}},
			map[string]any{"status": 404, "body": map[string]any{"e": 1}}, ""},
		{"out of range", map[string]any{"status": 42}, nil, "invalid response status: 42"},
		{"not a number", map[string]any{"status": "abc"}, nil, "invalid response status: abc"},
	}
	scope := flowmodel.NewRuntimeScope(nil).ReadOnly()
	for _, tc := range cases {
		suite.T().Run(tc.name, func(t *testing.T) {
			value, err := NewResponseExecutor().Execute(context.Background(), tc.fields, scope)
			if tc.errMsg != "" {
				assert.EqualError(t, err, tc.errMsg)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, value)
		})
	}
}
