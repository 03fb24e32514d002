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

// Package utils provides utility functions for HTTP operations.
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/asgardeo/stepflow/internal/system/constants"
	"github.com/asgardeo/stepflow/internal/system/error/apierror"
	"github.com/asgardeo/stepflow/internal/system/error/serviceerror"
	"github.com/asgardeo/stepflow/internal/system/log"
)

// WriteJSONResponse writes the given body as a JSON response with the status code.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	logger := log.GetLogger()

	w.Header().Set(constants.ContentTypeHeaderName, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Error encoding response", log.Error(err))
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// WriteJSONError writes a JSON error response with the given details.
func WriteJSONError(w http.ResponseWriter, statusCode int, errResp apierror.ErrorResponse) {
	logger := log.GetLogger()
	logger.Debug("Error in HTTP response", log.String("code", errResp.Code),
		log.String("description", errResp.Description))

	WriteJSONResponse(w, statusCode, errResp)
}

// WriteServiceError maps a service error to an API error response.
// Client errors map to the given client status, server errors to 500.
func WriteServiceError(w http.ResponseWriter, svcErr *serviceerror.ServiceError, clientStatus int) {
	errResp := apierror.ErrorResponse{
		Code:        svcErr.Code,
		Message:     svcErr.Error,
		Description: svcErr.ErrorDescription,
		Details:     svcErr.Details,
	}

	statusCode := http.StatusInternalServerError
	if svcErr.Type == serviceerror.ClientErrorType {
		statusCode = clientStatus
	}
	WriteJSONError(w, statusCode, errResp)
}

// DecodeJSONBody decodes the request body into the given target.
func DecodeJSONBody(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
