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

// Package response provides the handler of the response step.
package response

import (
	"context"
	"fmt"
	"net/http"

	"github.com/asgardeo/stepflow/internal/executor/common"
	flowmodel "github.com/asgardeo/stepflow/internal/flow/model"
)

// ResponseExecutor produces the status and body returned by a workflow.
type ResponseExecutor struct{}

// NewResponseExecutor creates a new instance of ResponseExecutor.
func NewResponseExecutor() *ResponseExecutor {
	return &ResponseExecutor{}
}

// Execute returns {status, body}. The status defaults to 200.
func (e *ResponseExecutor) Execute(_ context.Context, fields map[string]any, _ flowmodel.ScopeReader) (any, error) {
	status := http.StatusOK
	if raw, ok := fields["status"]; ok && !common.IsEmpty(raw) {
		n, ok := common.ToInt(raw)
		if !ok || n < 100 || n > 599 {
			return nil, fmt.Errorf("invalid response status: %v", raw)
		}
		status = n
	}
	return map[string]any{"status": status, "body": fields["body"]}, nil
}
