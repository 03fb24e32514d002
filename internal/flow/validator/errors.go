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

package validator

import (
	"errors"
	"fmt"
)

// ErrStructural indicates that a graph violates a structural rule.
var ErrStructural = errors.New("structural error")

// StructuralError carries the failing rule result of a graph validation.
// It wraps ErrStructural for errors.Is() compatibility.
type StructuralError struct {
	Result Result
}

// NewStructuralError wraps a failing result.
func NewStructuralError(result Result) *StructuralError {
	return &StructuralError{Result: result}
}

func (e *StructuralError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s: %s", ErrStructural.Error(), e.Result.Rule, e.Result.Message)
}

func (e *StructuralError) Unwrap() error { return ErrStructural }

// Rule returns the name of the rule that failed.
func (e *StructuralError) Rule() string {
	return e.Result.Rule
}
