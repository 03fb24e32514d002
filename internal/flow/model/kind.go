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

// Package model defines the data structures of workflow graphs, compiled plans and runtime scopes.
package model

// Kind identifies the type of a workflow step.
type Kind string

const (
	// KindInput declares the input variables of a workflow.
	KindInput Kind = "input"
	// KindInputValidation validates input values against a set of rules.
	KindInputValidation Kind = "inputValidation"
	// KindDBFind looks up records in a collection.
	KindDBFind Kind = "dbFind"
	// KindDBInsert inserts a record into a collection.
	KindDBInsert Kind = "dbInsert"
	// KindDBUpdate updates records in a collection.
	KindDBUpdate Kind = "dbUpdate"
	// KindDBDelete deletes records from a collection.
	KindDBDelete Kind = "dbDelete"
	// KindUserLogin verifies user credentials.
	KindUserLogin Kind = "userLogin"
	// KindAuthMiddleware verifies a bearer token before letting the flow continue.
	KindAuthMiddleware Kind = "authMiddleware"
	// KindEmailSend sends an email.
	KindEmailSend Kind = "emailSend"
	// KindResponse produces the response of the workflow.
	KindResponse Kind = "response"
)

var allKinds = []Kind{
	KindInput,
	KindInputValidation,
	KindDBFind,
	KindDBInsert,
	KindDBUpdate,
	KindDBDelete,
	KindUserLogin,
	KindAuthMiddleware,
	KindEmailSend,
	KindResponse,
}

var defaultOutputVars = map[Kind]string{
	KindInputValidation: "validated",
	KindDBFind:          "foundData",
	KindDBInsert:        "createdRecord",
	KindDBUpdate:        "updatedRecord",
	KindDBDelete:        "deletedRecord",
	KindUserLogin:       "loginResult",
	KindAuthMiddleware:  "authContext",
	KindEmailSend:       "emailResult",
	KindResponse:        "responseData",
}

var staticSubFields = map[Kind][]string{
	KindInputValidation: {"valid", "errors"},
	KindUserLogin:       {"ok", "userId", "email", "name", "token"},
	KindEmailSend:       {"sent", "messageId"},
	KindResponse:        {"status", "body"},
}

// AllKinds returns every known step kind in declaration order.
func AllKinds() []Kind {
	kinds := make([]Kind, len(allKinds))
	copy(kinds, allKinds)
	return kinds
}

// IsValid reports whether the kind is one of the known kinds.
func (k Kind) IsValid() bool {
	_, ok := defaultOutputVars[k]
	return ok || k == KindInput
}

// DefaultOutputVar returns the output variable used when a node does not declare one.
func (k Kind) DefaultOutputVar() string {
	return defaultOutputVars[k]
}

// IsDBKind reports whether the kind operates on a data collection.
func (k Kind) IsDBKind() bool {
	switch k {
	case KindDBFind, KindDBInsert, KindDBUpdate, KindDBDelete:
		return true
	}
	return false
}

// StaticSubFields returns the sub-fields a fixed-shape kind always produces.
func (k Kind) StaticSubFields() []string {
	fields := staticSubFields[k]
	if fields == nil {
		return nil
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// ExposesOutput reports whether a node of this kind makes its output visible downstream.
// Gate kinds bind a value at runtime but never expose it.
func (k Kind) ExposesOutput() bool {
	return k != KindInput && k != KindAuthMiddleware
}
