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

// Package input provides the handler of the input step.
package input

import (
	"context"
	"fmt"
	"strings"

	"github.com/asgardeo/stepflow/internal/executor/common"
	flowmodel "github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/system/log"
)

const loggerComponentName = "InputExecutor"

// InputExecutor checks that every required input variable has a value.
type InputExecutor struct{}

// NewInputExecutor creates a new instance of InputExecutor.
func NewInputExecutor() *InputExecutor {
	return &InputExecutor{}
}

// Execute fails when a required variable is missing from the input scope. It produces no value.
func (e *InputExecutor) Execute(_ context.Context, fields map[string]any, scope flowmodel.ScopeReader) (any, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	var missing []string
	for _, v := range flowmodel.ParseInputVariables(fields[flowmodel.FieldVariables]) {
		if !v.Required {
			continue
		}
		value, _ := scope.Get(flowmodel.InputScopeKey + "." + v.Name)
		if common.IsEmpty(value) {
			missing = append(missing, v.Name)
		}
	}

	if len(missing) > 0 {
		logger.Debug("Required input variables are missing", log.Any("missing", missing))
		return nil, fmt.Errorf("missing required input: %s", strings.Join(missing, ", "))
	}
	return nil, nil
}
