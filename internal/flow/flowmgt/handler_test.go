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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/stepflow/internal/flow/constants"
	"github.com/asgardeo/stepflow/internal/flow/engine"
	"github.com/asgardeo/stepflow/internal/flow/event"
	"github.com/asgardeo/stepflow/internal/flow/jsonmodel"
	"github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/flow/store"
	"github.com/asgardeo/stepflow/internal/flow/validator"
	"github.com/asgardeo/stepflow/internal/system/error/apierror"
	"github.com/asgardeo/stepflow/internal/system/error/serviceerror"
)

type mockWorkflowService struct {
	mock.Mock
}

func (m *mockWorkflowService) Init() error {
	return m.Called().Error(0)
}

func (m *mockWorkflowService) CreateWorkflow(def *jsonmodel.GraphDefinition) (
	*store.Workflow, *serviceerror.ServiceError) {
	args := m.Called(def)
	wf, _ := args.Get(0).(*store.Workflow)
	svcErr, _ := args.Get(1).(*serviceerror.ServiceError)
	return wf, svcErr
}

func (m *mockWorkflowService) GetWorkflow(id string) (*store.Workflow, *serviceerror.ServiceError) {
	args := m.Called(id)
	wf, _ := args.Get(0).(*store.Workflow)
	svcErr, _ := args.Get(1).(*serviceerror.ServiceError)
	return wf, svcErr
}

func (m *mockWorkflowService) ListWorkflows() ([]store.WorkflowSummary, *serviceerror.ServiceError) {
	args := m.Called()
	list, _ := args.Get(0).([]store.WorkflowSummary)
	svcErr, _ := args.Get(1).(*serviceerror.ServiceError)
	return list, svcErr
}

func (m *mockWorkflowService) DeleteWorkflow(id string) *serviceerror.ServiceError {
	svcErr, _ := m.Called(id).Get(0).(*serviceerror.ServiceError)
	return svcErr
}

func (m *mockWorkflowService) ValidateGraph(def *jsonmodel.GraphDefinition) validator.Result {
	return m.Called(def).Get(0).(validator.Result)
}

func (m *mockWorkflowService) ValidateConnection(def *jsonmodel.GraphDefinition, edge jsonmodel.EdgeDefinition) (
	validator.Result, *serviceerror.ServiceError) {
	args := m.Called(def, edge)
	svcErr, _ := args.Get(1).(*serviceerror.ServiceError)
	return args.Get(0).(validator.Result), svcErr
}

func (m *mockWorkflowService) AvailableVariables(def *jsonmodel.GraphDefinition, nodeID string) (
	[]model.VariableBinding, *serviceerror.ServiceError) {
	args := m.Called(def, nodeID)
	vars, _ := args.Get(0).([]model.VariableBinding)
	svcErr, _ := args.Get(1).(*serviceerror.ServiceError)
	return vars, svcErr
}

func (m *mockWorkflowService) CompileGraph(def *jsonmodel.GraphDefinition) (*model.Plan, *serviceerror.ServiceError) {
	args := m.Called(def)
	plan, _ := args.Get(0).(*model.Plan)
	svcErr, _ := args.Get(1).(*serviceerror.ServiceError)
	return plan, svcErr
}

func (m *mockWorkflowService) CompileWorkflow(id string) (*model.Plan, *serviceerror.ServiceError) {
	args := m.Called(id)
	plan, _ := args.Get(0).(*model.Plan)
	svcErr, _ := args.Get(1).(*serviceerror.ServiceError)
	return plan, svcErr
}

func (m *mockWorkflowService) ExecuteWorkflow(ctx context.Context, id string, inputs map[string]any) (
	*engine.Result, *serviceerror.ServiceError) {
	args := m.Called(ctx, id, inputs)
	result, _ := args.Get(0).(*engine.Result)
	svcErr, _ := args.Get(1).(*serviceerror.ServiceError)
	return result, svcErr
}

type WorkflowHandlerTestSuite struct {
	suite.Suite
	service *mockWorkflowService
	mux     *http.ServeMux
}

func TestWorkflowHandlerSuite(t *testing.T) {
	suite.Run(t, new(WorkflowHandlerTestSuite))
}

func (suite *WorkflowHandlerTestSuite) SetupTest() {
	suite.service = new(mockWorkflowService)
	suite.mux = http.NewServeMux()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	registerRoutes(suite.mux, newWorkflowHandler(suite.service), event.NewHub(nil), metrics)
}

func (suite *WorkflowHandlerTestSuite) serve(method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	suite.mux.ServeHTTP(rec, req)
	return rec
}

func (suite *WorkflowHandlerTestSuite) TestCreateWorkflowFromYAML() {
	suite.service.On("CreateWorkflow", mock.MatchedBy(func(def *jsonmodel.GraphDefinition) bool {
		return def.Name == "Ping" && len(def.Nodes) == 1
	})).Return(&store.Workflow{ID: "wf-1", Name: "Ping"}, nil)

	rec := suite.serve(http.MethodPost, "/workflows", "application/yaml", "name: Ping\nnodes:\n  - id: in\n    kind: input\n")

	assert.Equal(suite.T(), http.StatusCreated, rec.Code)
	assert.JSONEq(suite.T(), `{"id":"wf-1","name":"Ping","graph":null}`, rec.Body.String())
}

func (suite *WorkflowHandlerTestSuite) TestCreateWorkflowBadPayload() {
	rec := suite.serve(http.MethodPost, "/workflows", "application/json", "{")

	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	var errResp apierror.ErrorResponse
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(suite.T(), constants.APIErrorRequestJSONDecodeError.Code, errResp.Code)
	suite.service.AssertNotCalled(suite.T(), "CreateWorkflow", mock.Anything)
}

func (suite *WorkflowHandlerTestSuite) TestCreateWorkflowInvalidGraph() {
	svcErr := constants.ErrorInvalidGraph
	svcErr.Details = map[string]any{"rule": validator.RuleNoCycles}
	suite.service.On("CreateWorkflow", mock.Anything).Return(nil, &svcErr)

	rec := suite.serve(http.MethodPost, "/workflows", "application/json", `{"name":"x","nodes":[]}`)

	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	var errResp apierror.ErrorResponse
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(suite.T(), "WFL-60004", errResp.Code)
	assert.Equal(suite.T(), validator.RuleNoCycles, errResp.Details["rule"])
}

func (suite *WorkflowHandlerTestSuite) TestGetWorkflow() {
	suite.service.On("GetWorkflow", "wf-1").Return(&store.Workflow{ID: "wf-1", Name: "Ping"}, nil)
	suite.service.On("GetWorkflow", "missing").Return(nil, &constants.ErrorWorkflowNotFound)

	assert.Equal(suite.T(), http.StatusOK, suite.serve(http.MethodGet, "/workflows/wf-1", "", "").Code)
	assert.Equal(suite.T(), http.StatusNotFound, suite.serve(http.MethodGet, "/workflows/missing", "", "").Code)
}

func (suite *WorkflowHandlerTestSuite) TestListAndDelete() {
	suite.service.On("ListWorkflows").Return([]store.WorkflowSummary{{ID: "wf-1", Name: "Ping"}}, nil)
	suite.service.On("DeleteWorkflow", "wf-1").Return(nil)
	suite.service.On("DeleteWorkflow", "boom").Return(&constants.ErrorInternalServerError)

	rec := suite.serve(http.MethodGet, "/workflows", "", "")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `[{"id":"wf-1","name":"Ping"}]`, rec.Body.String())

	assert.Equal(suite.T(), http.StatusNoContent, suite.serve(http.MethodDelete, "/workflows/wf-1", "", "").Code)
	assert.Equal(suite.T(), http.StatusInternalServerError,
		suite.serve(http.MethodDelete, "/workflows/boom", "", "").Code)
}

func (suite *WorkflowHandlerTestSuite) TestEditorRoutes() {
	suite.service.On("ValidateGraph", mock.Anything).Return(validator.Result{Valid: true})
	suite.service.On("ValidateConnection", mock.Anything, jsonmodel.EdgeDefinition{Source: "a", Target: "b"}).
		Return(validator.Result{Valid: false, Rule: validator.RuleNoCycles}, nil)
	suite.service.On("AvailableVariables", mock.Anything, "b").
		Return([]model.VariableBinding{{Path: "email", FromNodeID: "a", OriginNodeID: "a"}}, nil)
	suite.service.On("CompileGraph", mock.Anything).Return(&model.Plan{GraphHash: "h"}, nil)

	rec := suite.serve(http.MethodPost, "/workflows/validate", "application/json", `{"nodes":[]}`)
	assert.JSONEq(suite.T(), `{"valid":true}`, rec.Body.String())

	rec = suite.serve(http.MethodPost, "/workflows/connections/validate", "application/json",
		`{"graph":{"nodes":[]},"edge":{"source":"a","target":"b"}}`)
	assert.JSONEq(suite.T(), `{"valid":false,"rule":"ruleNoCycles"}`, rec.Body.String())

	rec = suite.serve(http.MethodPost, "/workflows/variables", "application/json",
		`{"graph":{"nodes":[]},"nodeId":"b"}`)
	assert.JSONEq(suite.T(), `{"nodeId":"b","variables":[`+
		`{"path":"email","fromNodeId":"a","fromLabel":"","originNodeId":"a"}]}`, rec.Body.String())

	rec = suite.serve(http.MethodPost, "/workflows/compile", "application/json", `{"nodes":[]}`)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), `"graphHash":"h"`)
}

func (suite *WorkflowHandlerTestSuite) TestExecute() {
	suite.service.On("ExecuteWorkflow", mock.Anything, "wf-1", map[string]any{"email": "a@b.co"}).
		Return(&engine.Result{ExecutionID: "x1", Status: engine.StatusFailed, Reason: "boom"}, nil)
	suite.service.On("ExecuteWorkflow", mock.Anything, "missing", map[string]any(nil)).
		Return(nil, &constants.ErrorWorkflowNotFound)

	rec := suite.serve(http.MethodPost, "/workflows/wf-1/execute", "application/json", `{"inputs":{"email":"a@b.co"}}`)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), `"status":"Failed"`)

	rec = suite.serve(http.MethodPost, "/workflows/missing/execute", "", "")
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
}

func (suite *WorkflowHandlerTestSuite) TestMetricsAndPreflight() {
	rec := suite.serve(http.MethodGet, "/metrics", "", "")
	assert.Equal(suite.T(), "# metrics", rec.Body.String())

	rec = suite.serve(http.MethodOptions, "/workflows/wf-1/execute", "", "")
	assert.Equal(suite.T(), http.StatusNoContent, rec.Code)
}
