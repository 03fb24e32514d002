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

// Package constants defines the error values returned by the workflow service.
package constants

import (
	"github.com/asgardeo/stepflow/internal/system/error/apierror"
	"github.com/asgardeo/stepflow/internal/system/error/serviceerror"
)

// Client error structs

// APIErrorRequestJSONDecodeError is returned when a request body cannot be decoded.
var APIErrorRequestJSONDecodeError = apierror.ErrorResponse{
	Code:        "WFL-60001",
	Message:     "Invalid request payload",
	Description: "Failed to decode request payload",
}

// ErrorInvalidWorkflowID is returned when the workflow id is missing or malformed.
var ErrorInvalidWorkflowID = serviceerror.ServiceError{
	Code:             "WFL-60002",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid request",
	ErrorDescription: "Invalid workflow ID provided in the request",
}

// ErrorWorkflowNotFound is returned when no workflow has the requested id.
var ErrorWorkflowNotFound = serviceerror.ServiceError{
	Code:             "WFL-60003",
	Type:             serviceerror.ClientErrorType,
	Error:            "Workflow not found",
	ErrorDescription: "No workflow exists with the given ID",
}

// ErrorInvalidGraph is returned when a graph violates a structural rule.
var ErrorInvalidGraph = serviceerror.ServiceError{
	Code:             "WFL-60004",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid workflow graph",
	ErrorDescription: "The workflow graph violates a structural rule",
}

var ErrorUnresolvedReferences = serviceerror.ServiceError{
	Code:             "WFL-60005",
	Type:             serviceerror.ClientErrorType,
	Error:            "Unresolved references",
	ErrorDescription: "One or more step fields reference variables that are not available",
}

var ErrorInvalidWorkflowName = serviceerror.ServiceError{
	Code:             "WFL-60006",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid request",
	ErrorDescription: "Workflow name is required",
}

var ErrorInvalidGraphDefinition = serviceerror.ServiceError{
	Code:             "WFL-60007",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid request",
	ErrorDescription: "The graph definition could not be parsed",
}

var ErrorInvalidConnection = serviceerror.ServiceError{
	Code:             "WFL-60008",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid request",
	ErrorDescription: "Source and target nodes are required",
}

var ErrorNodeNotFound = serviceerror.ServiceError{
	Code:             "WFL-60009",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid request",
	ErrorDescription: "No node exists with the given ID",
}

// Server error structs

// ErrorInternalServerError is returned for unexpected failures.
var ErrorInternalServerError = serviceerror.ServiceError{
	Code:             "WFL-65001",
	Type:             serviceerror.ServerErrorType,
	Error:            "Something went wrong",
	ErrorDescription: "Internal server error",
}

var ErrorCompilationFailed = serviceerror.ServiceError{
	Code:             "WFL-65002",
	Type:             serviceerror.ServerErrorType,
	Error:            "Something went wrong",
	ErrorDescription: "Failed to compile the workflow graph",
}

var ErrorStepHandlerNotFound = serviceerror.ServiceError{
	Code:             "WFL-65003",
	Type:             serviceerror.ServerErrorType,
	Error:            "Something went wrong",
	ErrorDescription: "No step handler is registered for one or more step kinds",
}
