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

package compiler

import (
	"fmt"
	"strings"

	"github.com/asgardeo/stepflow/internal/flow/model"
)

// UnresolvedReferenceError is returned in strict mode when step fields contain template
// references the compiler could not resolve.
type UnresolvedReferenceError struct {
	References []model.CompileWarning
}

func (e *UnresolvedReferenceError) Error() string {
	if e == nil || len(e.References) == 0 {
		return "unresolved references"
	}
	parts := make([]string, 0, len(e.References))
	for _, ref := range e.References {
		parts = append(parts, fmt.Sprintf("%s.%s %s (%s)", ref.StepID, ref.Field, ref.Expression, ref.Reason))
	}
	return "unresolved references: " + strings.Join(parts, "; ")
}
