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

// Package flowmgt provides the workflow management service and its HTTP API.
package flowmgt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/asgardeo/stepflow/internal/flow/compiler"
	"github.com/asgardeo/stepflow/internal/flow/constants"
	"github.com/asgardeo/stepflow/internal/flow/engine"
	"github.com/asgardeo/stepflow/internal/flow/jsonmodel"
	"github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/flow/store"
	"github.com/asgardeo/stepflow/internal/flow/validator"
	"github.com/asgardeo/stepflow/internal/flow/visibility"
	"github.com/asgardeo/stepflow/internal/system/cache"
	"github.com/asgardeo/stepflow/internal/system/config"
	"github.com/asgardeo/stepflow/internal/system/error/serviceerror"
	"github.com/asgardeo/stepflow/internal/system/log"
	sysutils "github.com/asgardeo/stepflow/internal/system/utils"
)

const loggerComponentName = "WorkflowService"

// WorkflowServiceInterface defines the operations of the workflow service.
type WorkflowServiceInterface interface {
	Init() error
	CreateWorkflow(def *jsonmodel.GraphDefinition) (*store.Workflow, *serviceerror.ServiceError)
	GetWorkflow(id string) (*store.Workflow, *serviceerror.ServiceError)
	ListWorkflows() ([]store.WorkflowSummary, *serviceerror.ServiceError)
	DeleteWorkflow(id string) *serviceerror.ServiceError
	ValidateGraph(def *jsonmodel.GraphDefinition) validator.Result
	ValidateConnection(def *jsonmodel.GraphDefinition, edge jsonmodel.EdgeDefinition) (
		validator.Result, *serviceerror.ServiceError)
	AvailableVariables(def *jsonmodel.GraphDefinition, nodeID string) (
		[]model.VariableBinding, *serviceerror.ServiceError)
	CompileGraph(def *jsonmodel.GraphDefinition) (*model.Plan, *serviceerror.ServiceError)
	CompileWorkflow(id string) (*model.Plan, *serviceerror.ServiceError)
	ExecuteWorkflow(ctx context.Context, id string, inputs map[string]any) (
		*engine.Result, *serviceerror.ServiceError)
}

// WorkflowService is the default implementation of WorkflowServiceInterface.
type WorkflowService struct {
	store     store.WorkflowStoreInterface
	compiler  *compiler.Compiler
	resolver  *visibility.Resolver
	engine    *engine.Engine
	registry  engine.Registry
	planCache cache.CacheInterface[*model.Plan]
	graphDir  string
	logger    *log.Logger
}

// ServiceConfig holds the collaborators of the workflow service.
type ServiceConfig struct {
	Store    store.WorkflowStoreInterface
	Schema   model.SchemaLookup
	Registry engine.Registry
	Engine   []engine.Option
	Flow     config.FlowConfig
	// GraphDirectory is the resolved directory Init loads graph definitions from.
	GraphDirectory string
}

// NewWorkflowService creates a new instance of WorkflowService.
func NewWorkflowService(cfg ServiceConfig) *WorkflowService {
	schema := cfg.Schema
	if schema == nil {
		schema = model.NoSchema
	}
	return &WorkflowService{
		store:     cfg.Store,
		compiler:  compiler.New(schema, compiler.WithStrict(cfg.Flow.StrictReferences)),
		resolver:  visibility.NewResolver(schema),
		engine:    engine.New(cfg.Registry, cfg.Engine...),
		registry:  cfg.Registry,
		planCache: cache.NewCache[*model.Plan]("WorkflowPlanCache", cfg.Flow.PlanCache),
		graphDir:  cfg.GraphDirectory,
		logger:    log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
}

// Init loads the JSON and YAML graph definitions found in the graph directory. Files that
// cannot be read, parsed or compiled are skipped with a warning.
func (s *WorkflowService) Init() error {
	if s.graphDir == "" {
		s.logger.Info("Graph directory is not set. No workflows will be loaded.")
		return nil
	}
	graphDir := filepath.Clean(s.graphDir)

	files, err := os.ReadDir(graphDir)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("Graph directory does not exist. No workflows will be loaded.",
				log.String("graphDir", graphDir))
			return nil
		}
		return fmt.Errorf("failed to read graph directory %s: %w", graphDir, err)
	}

	loaded := 0
	for _, file := range files {
		format, ok := jsonmodel.FormatFromFileName(file.Name())
		if file.IsDir() || !ok {
			s.logger.Debug("Skipping unsupported file or directory", log.String("fileName", file.Name()))
			continue
		}
		filePath := filepath.Join(graphDir, file.Name())

		content, err := os.ReadFile(filePath)
		if err != nil {
			s.logger.Warn("Failed to read graph file", log.String("filePath", filePath), log.Error(err))
			continue
		}
		def, err := jsonmodel.ParseDefinition(content, format)
		if err != nil {
			s.logger.Warn("Failed to parse graph file", log.String("filePath", filePath), log.Error(err))
			continue
		}
		if def.ID == "" {
			def.ID = strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))
		}
		if def.Name == "" {
			def.Name = def.ID
		}

		if _, svcErr := s.CreateWorkflow(def); svcErr != nil {
			s.logger.Warn("Failed to load workflow", log.String("filePath", filePath),
				log.String("code", svcErr.Code), log.String("description", svcErr.ErrorDescription))
			continue
		}
		loaded++
	}

	s.logger.Debug("Workflow service initialized", log.Int("loadedWorkflowCount", loaded))
	return nil
}

// CreateWorkflow validates and compiles the graph, then stores the workflow and its plan.
// An existing workflow with the same id is replaced.
func (s *WorkflowService) CreateWorkflow(def *jsonmodel.GraphDefinition) (
	*store.Workflow, *serviceerror.ServiceError) {
	if def == nil {
		return nil, &constants.ErrorInvalidGraphDefinition
	}
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return nil, &constants.ErrorInvalidWorkflowName
	}

	graph := def.ToGraph()
	plan, svcErr := s.compile(graph)
	if svcErr != nil {
		return nil, svcErr
	}

	id := strings.TrimSpace(def.ID)
	if id == "" {
		id = sysutils.GenerateUUID()
	}
	workflow := &store.Workflow{ID: id, Name: name, Description: def.Description, Graph: graph}
	if err := s.store.SaveWorkflow(workflow); err != nil {
		s.logger.Error("Failed to save workflow", log.String(log.LoggerKeyWorkflowID, id), log.Error(err))
		return nil, &constants.ErrorInternalServerError
	}

	plan.WorkflowID = id
	s.savePlan(id, plan)

	s.logger.Debug("Workflow created", log.String(log.LoggerKeyWorkflowID, id),
		log.Int("warnings", len(plan.Warnings)))
	return workflow, nil
}

// GetWorkflow returns the stored workflow.
func (s *WorkflowService) GetWorkflow(id string) (*store.Workflow, *serviceerror.ServiceError) {
	if strings.TrimSpace(id) == "" {
		return nil, &constants.ErrorInvalidWorkflowID
	}
	workflow, err := s.store.GetWorkflow(id)
	if err != nil {
		if errors.Is(err, store.ErrWorkflowNotFound) {
			return nil, &constants.ErrorWorkflowNotFound
		}
		s.logger.Error("Failed to get workflow", log.String(log.LoggerKeyWorkflowID, id), log.Error(err))
		return nil, &constants.ErrorInternalServerError
	}
	return workflow, nil
}

// ListWorkflows returns the summaries of every stored workflow.
func (s *WorkflowService) ListWorkflows() ([]store.WorkflowSummary, *serviceerror.ServiceError) {
	workflows, err := s.store.ListWorkflows()
	if err != nil {
		s.logger.Error("Failed to list workflows", log.Error(err))
		return nil, &constants.ErrorInternalServerError
	}
	if workflows == nil {
		workflows = []store.WorkflowSummary{}
	}
	return workflows, nil
}

// DeleteWorkflow removes the workflow, its plans and its cached plan.
func (s *WorkflowService) DeleteWorkflow(id string) *serviceerror.ServiceError {
	workflow, svcErr := s.GetWorkflow(id)
	if svcErr != nil {
		return svcErr
	}
	if err := s.store.DeleteWorkflow(id); err != nil {
		if errors.Is(err, store.ErrWorkflowNotFound) {
			return &constants.ErrorWorkflowNotFound
		}
		s.logger.Error("Failed to delete workflow", log.String(log.LoggerKeyWorkflowID, id), log.Error(err))
		return &constants.ErrorInternalServerError
	}

	if hash, err := compiler.GraphHash(workflow.Graph); err == nil {
		if err := s.planCache.Delete(planCacheKey(id, hash)); err != nil {
			s.logger.Warn("Failed to evict cached plan", log.String(log.LoggerKeyWorkflowID, id), log.Error(err))
		}
	}
	return nil
}

// ValidateGraph runs the full validation pipeline on the graph.
func (s *WorkflowService) ValidateGraph(def *jsonmodel.GraphDefinition) validator.Result {
	if def == nil {
		return validator.Validate(nil)
	}
	return validator.Validate(def.ToGraph())
}

// ValidateConnection checks whether the edge may be added to the graph being edited.
func (s *WorkflowService) ValidateConnection(def *jsonmodel.GraphDefinition, edge jsonmodel.EdgeDefinition) (
	validator.Result, *serviceerror.ServiceError) {
	if def == nil || edge.Source == "" || edge.Target == "" {
		return validator.Result{}, &constants.ErrorInvalidConnection
	}
	id := edge.ID
	if id == "" {
		id = edge.Source + "->" + edge.Target
	}
	return validator.ValidateConnection(def.ToGraph(), model.Edge{ID: id, Source: edge.Source, Target: edge.Target}), nil
}

// AvailableVariables returns the variables visible to the node.
func (s *WorkflowService) AvailableVariables(def *jsonmodel.GraphDefinition, nodeID string) (
	[]model.VariableBinding, *serviceerror.ServiceError) {
	if def == nil {
		return nil, &constants.ErrorInvalidGraphDefinition
	}
	graph := def.ToGraph()
	if _, ok := graph.Node(nodeID); !ok {
		return nil, &constants.ErrorNodeNotFound
	}
	vars := s.resolver.AvailableVars(graph, nodeID)
	if vars == nil {
		vars = []model.VariableBinding{}
	}
	return vars, nil
}

// CompileGraph compiles an unsaved graph.
func (s *WorkflowService) CompileGraph(def *jsonmodel.GraphDefinition) (*model.Plan, *serviceerror.ServiceError) {
	if def == nil {
		return nil, &constants.ErrorInvalidGraphDefinition
	}
	return s.compile(def.ToGraph())
}

// CompileWorkflow returns the plan of the stored workflow. Plans are looked up in the cache,
// then in the store, and compiled only when neither has one for the current graph.
func (s *WorkflowService) CompileWorkflow(id string) (*model.Plan, *serviceerror.ServiceError) {
	workflow, svcErr := s.GetWorkflow(id)
	if svcErr != nil {
		return nil, svcErr
	}
	hash, err := compiler.GraphHash(workflow.Graph)
	if err != nil {
		s.logger.Error("Failed to hash workflow graph", log.String(log.LoggerKeyWorkflowID, id), log.Error(err))
		return nil, &constants.ErrorCompilationFailed
	}

	key := planCacheKey(id, hash)
	if plan, ok := s.planCache.Get(key); ok {
		return plan, nil
	}

	plan, err := s.store.GetPlan(id, hash)
	if err == nil {
		if cacheErr := s.planCache.Set(key, plan); cacheErr != nil {
			s.logger.Warn("Failed to cache plan", log.String(log.LoggerKeyWorkflowID, id), log.Error(cacheErr))
		}
		return plan, nil
	}
	if !errors.Is(err, store.ErrPlanNotFound) {
		s.logger.Error("Failed to get plan", log.String(log.LoggerKeyWorkflowID, id), log.Error(err))
		return nil, &constants.ErrorInternalServerError
	}

	plan, svcErr = s.compile(workflow.Graph)
	if svcErr != nil {
		return nil, svcErr
	}
	plan.WorkflowID = id
	s.savePlan(id, plan)
	return plan, nil
}

// ExecuteWorkflow compiles the stored workflow if needed and runs it with the inputs. A
// failing step is reported in the result, not as a service error.
func (s *WorkflowService) ExecuteWorkflow(ctx context.Context, id string, inputs map[string]any) (
	*engine.Result, *serviceerror.ServiceError) {
	if missing := s.registry.Missing(); len(missing) > 0 {
		s.logger.Error("Step handlers are missing", log.Any("kinds", missing))
		return nil, &constants.ErrorStepHandlerNotFound
	}
	plan, svcErr := s.CompileWorkflow(id)
	if svcErr != nil {
		return nil, svcErr
	}

	result := s.engine.Execute(ctx, plan, inputs)
	s.logger.Debug("Workflow executed", log.String(log.LoggerKeyWorkflowID, id),
		log.String(log.LoggerKeyExecutionID, result.ExecutionID), log.String("status", string(result.Status)))
	return result, nil
}

// compile validates and compiles the graph and maps failures to service errors.
func (s *WorkflowService) compile(graph *model.Graph) (*model.Plan, *serviceerror.ServiceError) {
	plan, err := s.compiler.Compile(graph)
	if err == nil {
		return plan, nil
	}

	var structErr *validator.StructuralError
	if errors.As(err, &structErr) {
		svcErr := constants.ErrorInvalidGraph
		svcErr.ErrorDescription = structErr.Result.Message
		svcErr.Details = map[string]any{"rule": structErr.Result.Rule}
		for k, v := range structErr.Result.Details {
			svcErr.Details[k] = v
		}
		return nil, &svcErr
	}
	var refErr *compiler.UnresolvedReferenceError
	if errors.As(err, &refErr) {
		svcErr := constants.ErrorUnresolvedReferences
		svcErr.Details = map[string]any{"references": refErr.References}
		return nil, &svcErr
	}

	s.logger.Error("Failed to compile graph", log.Error(err))
	return nil, &constants.ErrorCompilationFailed
}

func (s *WorkflowService) savePlan(workflowID string, plan *model.Plan) {
	if err := s.store.SavePlan(workflowID, plan); err != nil {
		s.logger.Warn("Failed to store plan", log.String(log.LoggerKeyWorkflowID, workflowID), log.Error(err))
	}
	if err := s.planCache.Set(planCacheKey(workflowID, plan.GraphHash), plan); err != nil {
		s.logger.Warn("Failed to cache plan", log.String(log.LoggerKeyWorkflowID, workflowID), log.Error(err))
	}
}

func planCacheKey(workflowID, graphHash string) cache.CacheKey {
	return cache.CacheKey{Key: workflowID + ":" + graphHash}
}
