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

package flowmgt

import (
	"io"
	"net/http"

	"github.com/asgardeo/stepflow/internal/flow/constants"
	"github.com/asgardeo/stepflow/internal/flow/jsonmodel"
	serverconst "github.com/asgardeo/stepflow/internal/system/constants"
	"github.com/asgardeo/stepflow/internal/system/log"
	sysutils "github.com/asgardeo/stepflow/internal/system/utils"
)

const maxRequestBodySize = 4 << 20

// ConnectionRequest is the body of a connection validation request.
type ConnectionRequest struct {
	Graph jsonmodel.GraphDefinition `json:"graph"`
	Edge  jsonmodel.EdgeDefinition  `json:"edge"`
}

// VariablesRequest is the body of an available variables request.
type VariablesRequest struct {
	Graph  jsonmodel.GraphDefinition `json:"graph"`
	NodeID string                    `json:"nodeId"`
}

// VariablesResponse lists the variables visible to a node.
type VariablesResponse struct {
	NodeID    string `json:"nodeId"`
	Variables any    `json:"variables"`
}

// ExecuteRequest is the body of an execution request.
type ExecuteRequest struct {
	Inputs map[string]any `json:"inputs"`
}

// workflowHandler serves the workflow API.
type workflowHandler struct {
	service WorkflowServiceInterface
	logger  *log.Logger
}

func newWorkflowHandler(service WorkflowServiceInterface) *workflowHandler {
	return &workflowHandler{
		service: service,
		logger:  log.GetLogger().With(log.String(log.LoggerKeyComponentName, "WorkflowHandler")),
	}
}

// HandleWorkflowPostRequest creates or replaces a workflow from a JSON or YAML definition.
func (h *workflowHandler) HandleWorkflowPostRequest(w http.ResponseWriter, r *http.Request) {
	def, ok := h.decodeDefinition(w, r)
	if !ok {
		return
	}
	workflow, svcErr := h.service.CreateWorkflow(def)
	if svcErr != nil {
		sysutils.WriteServiceError(w, svcErr, http.StatusBadRequest)
		return
	}
	sysutils.WriteJSONResponse(w, http.StatusCreated, workflow)
	h.logger.Debug("Workflow created", log.String(log.LoggerKeyWorkflowID, workflow.ID))
}

// HandleWorkflowListRequest lists the stored workflows.
func (h *workflowHandler) HandleWorkflowListRequest(w http.ResponseWriter, _ *http.Request) {
	workflows, svcErr := h.service.ListWorkflows()
	if svcErr != nil {
		sysutils.WriteServiceError(w, svcErr, http.StatusBadRequest)
		return
	}
	sysutils.WriteJSONResponse(w, http.StatusOK, workflows)
}

// HandleWorkflowGetRequest returns one workflow.
func (h *workflowHandler) HandleWorkflowGetRequest(w http.ResponseWriter, r *http.Request) {
	workflow, svcErr := h.service.GetWorkflow(r.PathValue("id"))
	if svcErr != nil {
		sysutils.WriteServiceError(w, svcErr, clientStatus(svcErr.Code))
		return
	}
	sysutils.WriteJSONResponse(w, http.StatusOK, workflow)
}

// HandleWorkflowDeleteRequest deletes one workflow.
func (h *workflowHandler) HandleWorkflowDeleteRequest(w http.ResponseWriter, r *http.Request) {
	if svcErr := h.service.DeleteWorkflow(r.PathValue("id")); svcErr != nil {
		sysutils.WriteServiceError(w, svcErr, clientStatus(svcErr.Code))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleValidateRequest runs the validation pipeline on a graph.
func (h *workflowHandler) HandleValidateRequest(w http.ResponseWriter, r *http.Request) {
	def, ok := h.decodeDefinition(w, r)
	if !ok {
		return
	}
	sysutils.WriteJSONResponse(w, http.StatusOK, h.service.ValidateGraph(def))
}

// HandleConnectionValidateRequest checks whether an edge may be added to a graph.
func (h *workflowHandler) HandleConnectionValidateRequest(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	result, svcErr := h.service.ValidateConnection(&req.Graph, req.Edge)
	if svcErr != nil {
		sysutils.WriteServiceError(w, svcErr, http.StatusBadRequest)
		return
	}
	sysutils.WriteJSONResponse(w, http.StatusOK, result)
}

// HandleVariablesRequest lists the variables visible to a node of a graph.
func (h *workflowHandler) HandleVariablesRequest(w http.ResponseWriter, r *http.Request) {
	var req VariablesRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	vars, svcErr := h.service.AvailableVariables(&req.Graph, req.NodeID)
	if svcErr != nil {
		sysutils.WriteServiceError(w, svcErr, http.StatusBadRequest)
		return
	}
	sysutils.WriteJSONResponse(w, http.StatusOK, VariablesResponse{NodeID: req.NodeID, Variables: vars})
}

// HandleCompileRequest compiles an unsaved graph.
func (h *workflowHandler) HandleCompileRequest(w http.ResponseWriter, r *http.Request) {
	def, ok := h.decodeDefinition(w, r)
	if !ok {
		return
	}
	plan, svcErr := h.service.CompileGraph(def)
	if svcErr != nil {
		sysutils.WriteServiceError(w, svcErr, http.StatusBadRequest)
		return
	}
	sysutils.WriteJSONResponse(w, http.StatusOK, plan)
}

// HandleExecuteRequest runs a stored workflow. The execution result is returned whether
// the workflow succeeded or not.
func (h *workflowHandler) HandleExecuteRequest(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if r.ContentLength != 0 && !h.decodeJSON(w, r, &req) {
		return
	}
	result, svcErr := h.service.ExecuteWorkflow(r.Context(), r.PathValue("id"), req.Inputs)
	if svcErr != nil {
		sysutils.WriteServiceError(w, svcErr, clientStatus(svcErr.Code))
		return
	}
	sysutils.WriteJSONResponse(w, http.StatusOK, result)
}

// decodeDefinition reads a JSON or YAML graph definition, chosen by the content type.
func (h *workflowHandler) decodeDefinition(w http.ResponseWriter, r *http.Request) (
	*jsonmodel.GraphDefinition, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		h.logger.Debug("Failed to read request body", log.Error(err))
		sysutils.WriteJSONError(w, http.StatusBadRequest, constants.APIErrorRequestJSONDecodeError)
		return nil, false
	}
	format := jsonmodel.FormatFromContentType(r.Header.Get(serverconst.ContentTypeHeaderName))
	def, err := jsonmodel.ParseDefinition(body, format)
	if err != nil {
		h.logger.Debug("Failed to parse graph definition", log.Error(err))
		sysutils.WriteJSONError(w, http.StatusBadRequest, constants.APIErrorRequestJSONDecodeError)
		return nil, false
	}
	return def, true
}

func (h *workflowHandler) decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := sysutils.DecodeJSONBody(r, target); err != nil {
		h.logger.Debug("Failed to decode request body", log.Error(err))
		sysutils.WriteJSONError(w, http.StatusBadRequest, constants.APIErrorRequestJSONDecodeError)
		return false
	}
	return true
}

// clientStatus maps client errors about missing workflows to 404.
func clientStatus(code string) int {
	if code == constants.ErrorWorkflowNotFound.Code {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

