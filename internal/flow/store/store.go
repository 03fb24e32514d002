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

// Package store persists workflows, compiled plans and execution events.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/asgardeo/stepflow/internal/flow/event"
	"github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/flow/template"
	"github.com/asgardeo/stepflow/internal/system/constants"
	"github.com/asgardeo/stepflow/internal/system/database/client"
	"github.com/asgardeo/stepflow/internal/system/database/provider"
	"github.com/asgardeo/stepflow/internal/system/log"
)

const loggerComponentName = "WorkflowStore"

// WorkflowStoreInterface defines the persistence operations of the workflow service.
type WorkflowStoreInterface interface {
	SaveWorkflow(workflow *Workflow) error
	GetWorkflow(id string) (*Workflow, error)
	ListWorkflows() ([]WorkflowSummary, error)
	DeleteWorkflow(id string) error
	SavePlan(workflowID string, plan *model.Plan) error
	GetPlan(workflowID, graphHash string) (*model.Plan, error)
	AppendEvent(e event.Event) error
	ListEvents(executionID string) ([]event.Event, error)
}

// WorkflowStore is the SQL implementation of WorkflowStoreInterface over the runtime database.
type WorkflowStore struct {
	dbProvider provider.DBProviderInterface
	logger     *log.Logger
}

// NewWorkflowStore creates a store using the given database provider.
func NewWorkflowStore(dbProvider provider.DBProviderInterface) *WorkflowStore {
	return &WorkflowStore{
		dbProvider: dbProvider,
		logger:     log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
}

func (s *WorkflowStore) client() (client.DBClientInterface, error) {
	dbClient, err := s.dbProvider.GetDBClient(constants.RuntimeDBName)
	if err != nil {
		s.logger.Error("Failed to get database client", log.Error(err))
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}
	return dbClient, nil
}

// SaveWorkflow creates the workflow or replaces the stored one with the same id.
func (s *WorkflowStore) SaveWorkflow(workflow *Workflow) error {
	dbClient, err := s.client()
	if err != nil {
		return err
	}

	graphJSON, err := json.Marshal(workflow.Graph)
	if err != nil {
		return fmt.Errorf("failed to encode workflow graph: %w", err)
	}

	updated, err := dbClient.Execute(QueryUpdateWorkflow, workflow.ID, workflow.Name, workflow.Description,
		string(graphJSON))
	if err != nil {
		s.logger.Error("Failed to update workflow", log.String(log.LoggerKeyWorkflowID, workflow.ID), log.Error(err))
		return fmt.Errorf("failed to update workflow: %w", err)
	}
	if updated > 0 {
		s.logger.Debug("Updated workflow", log.String(log.LoggerKeyWorkflowID, workflow.ID))
		return nil
	}

	if _, err := dbClient.Execute(QueryCreateWorkflow, workflow.ID, workflow.Name, workflow.Description,
		string(graphJSON)); err != nil {
		s.logger.Error("Failed to create workflow", log.String(log.LoggerKeyWorkflowID, workflow.ID), log.Error(err))
		return fmt.Errorf("failed to create workflow: %w", err)
	}
	s.logger.Debug("Created workflow", log.String(log.LoggerKeyWorkflowID, workflow.ID))
	return nil
}

// GetWorkflow returns the workflow with the given id.
func (s *WorkflowStore) GetWorkflow(id string) (*Workflow, error) {
	dbClient, err := s.client()
	if err != nil {
		return nil, err
	}

	results, err := dbClient.Query(QueryGetWorkflow, id)
	if err != nil {
		s.logger.Error("Failed to execute query", log.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrWorkflowNotFound
	}
	if len(results) != 1 {
		s.logger.Error("Unexpected number of results", log.Int("resultCount", len(results)))
		return nil, fmt.Errorf("unexpected number of results: %d", len(results))
	}

	row := results[0]
	var graph model.Graph
	if err := json.Unmarshal([]byte(stringColumn(row, "graph")), &graph); err != nil {
		return nil, fmt.Errorf("failed to decode workflow graph: %w", err)
	}

	return &Workflow{
		ID:          stringColumn(row, "id"),
		Name:        stringColumn(row, "name"),
		Description: stringColumn(row, "description"),
		Graph:       &graph,
		CreatedAt:   stringColumn(row, "created_at"),
		UpdatedAt:   stringColumn(row, "updated_at"),
	}, nil
}

// ListWorkflows returns every stored workflow ordered by name.
func (s *WorkflowStore) ListWorkflows() ([]WorkflowSummary, error) {
	dbClient, err := s.client()
	if err != nil {
		return nil, err
	}

	results, err := dbClient.Query(QueryListWorkflows)
	if err != nil {
		s.logger.Error("Failed to execute query", log.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	workflows := make([]WorkflowSummary, 0, len(results))
	for _, row := range results {
		workflows = append(workflows, WorkflowSummary{
			ID:          stringColumn(row, "id"),
			Name:        stringColumn(row, "name"),
			Description: stringColumn(row, "description"),
			CreatedAt:   stringColumn(row, "created_at"),
			UpdatedAt:   stringColumn(row, "updated_at"),
		})
	}
	return workflows, nil
}

// DeleteWorkflow removes the workflow and its plans in one transaction.
func (s *WorkflowStore) DeleteWorkflow(id string) error {
	dbClient, err := s.client()
	if err != nil {
		return err
	}

	tx, err := dbClient.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	dbType := dbClient.GetDBType()
	if _, err := tx.Exec(QueryDeleteWorkflowPlans.GetQuery(dbType), id); err != nil {
		return s.rollback(tx, fmt.Errorf("failed to delete workflow plans: %w", err))
	}
	res, err := tx.Exec(QueryDeleteWorkflow.GetQuery(dbType), id)
	if err != nil {
		return s.rollback(tx, fmt.Errorf("failed to delete workflow: %w", err))
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return s.rollback(tx, ErrWorkflowNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.logger.Debug("Deleted workflow", log.String(log.LoggerKeyWorkflowID, id))
	return nil
}

// SavePlan stores the plan as the only plan of the workflow.
func (s *WorkflowStore) SavePlan(workflowID string, plan *model.Plan) error {
	dbClient, err := s.client()
	if err != nil {
		return err
	}

	planJSON, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	tx, err := dbClient.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	dbType := dbClient.GetDBType()
	if _, err := tx.Exec(QueryDeleteWorkflowPlans.GetQuery(dbType), workflowID); err != nil {
		return s.rollback(tx, fmt.Errorf("failed to delete previous plans: %w", err))
	}
	if _, err := tx.Exec(QueryCreatePlan.GetQuery(dbType), workflowID, plan.GraphHash, string(planJSON)); err != nil {
		return s.rollback(tx, fmt.Errorf("failed to store plan: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPlan returns the stored plan of the workflow graph with the given hash.
func (s *WorkflowStore) GetPlan(workflowID, graphHash string) (*model.Plan, error) {
	dbClient, err := s.client()
	if err != nil {
		return nil, err
	}

	results, err := dbClient.Query(QueryGetPlan, workflowID, graphHash)
	if err != nil {
		s.logger.Error("Failed to execute query", log.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrPlanNotFound
	}

	var plan model.Plan
	if err := json.Unmarshal([]byte(stringColumn(results[0], "plan")), &plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	for i := range plan.Steps {
		fields, _ := template.RestoreRefs(plan.Steps[i].ResolvedFields).(map[string]any)
		plan.Steps[i].ResolvedFields = fields
	}
	return &plan, nil
}

// AppendEvent stores one execution event.
func (s *WorkflowStore) AppendEvent(e event.Event) error {
	dbClient, err := s.client()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if _, err := dbClient.Execute(QueryCreateExecutionEvent, e.ExecutionID, e.WorkflowID, e.Sequence,
		string(e.Type), string(payload)); err != nil {
		return fmt.Errorf("failed to store event: %w", err)
	}
	return nil
}

// ListEvents returns the stored events of an execution in emission order.
func (s *WorkflowStore) ListEvents(executionID string) ([]event.Event, error) {
	dbClient, err := s.client()
	if err != nil {
		return nil, err
	}

	results, err := dbClient.Query(QueryListExecutionEvents, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	events := make([]event.Event, 0, len(results))
	for _, row := range results {
		var e event.Event
		if err := json.Unmarshal([]byte(stringColumn(row, "payload")), &e); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, e)
	}
	return events, nil
}

type rollbacker interface {
	Rollback() error
}

func (s *WorkflowStore) rollback(tx rollbacker, cause error) error {
	if err := tx.Rollback(); err != nil {
		s.logger.Error("Failed to roll back transaction", log.Error(err))
	}
	return cause
}
