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

package store

import (
	dbmodel "github.com/asgardeo/stepflow/internal/system/database/model"
)

var (
	// QueryCreateWorkflow is the query to create a workflow.
	QueryCreateWorkflow = dbmodel.DBQuery{
		ID:    "WFQ-WORKFLOW-01",
		Query: "INSERT INTO WORKFLOW (ID, NAME, DESCRIPTION, GRAPH) VALUES ($1, $2, $3, $4)",
	}

	// QueryUpdateWorkflow is the query to update a workflow.
	QueryUpdateWorkflow = dbmodel.DBQuery{
		ID: "WFQ-WORKFLOW-02",
		Query: "UPDATE WORKFLOW SET NAME = $2, DESCRIPTION = $3, GRAPH = $4, " +
			"UPDATED_AT = CURRENT_TIMESTAMP WHERE ID = $1",
	}

	// QueryGetWorkflow is the query to get a workflow by id.
	QueryGetWorkflow = dbmodel.DBQuery{
		ID:    "WFQ-WORKFLOW-03",
		Query: "SELECT ID, NAME, DESCRIPTION, GRAPH, CREATED_AT, UPDATED_AT FROM WORKFLOW WHERE ID = $1",
	}

	// QueryListWorkflows is the query to list workflows.
	QueryListWorkflows = dbmodel.DBQuery{
		ID:    "WFQ-WORKFLOW-04",
		Query: "SELECT ID, NAME, DESCRIPTION, CREATED_AT, UPDATED_AT FROM WORKFLOW ORDER BY NAME, ID",
	}

	// QueryDeleteWorkflow is the query to delete a workflow.
	QueryDeleteWorkflow = dbmodel.DBQuery{
		ID:    "WFQ-WORKFLOW-05",
		Query: "DELETE FROM WORKFLOW WHERE ID = $1",
	}

	// QueryDeleteWorkflowPlans is the query to delete every plan of a workflow.
	QueryDeleteWorkflowPlans = dbmodel.DBQuery{
		ID:    "WFQ-PLAN-01",
		Query: "DELETE FROM WORKFLOW_PLAN WHERE WORKFLOW_ID = $1",
	}

	// QueryCreatePlan is the query to store a compiled plan.
	QueryCreatePlan = dbmodel.DBQuery{
		ID:    "WFQ-PLAN-02",
		Query: "INSERT INTO WORKFLOW_PLAN (WORKFLOW_ID, GRAPH_HASH, PLAN) VALUES ($1, $2, $3)",
	}

	// QueryGetPlan is the query to get the plan of a workflow graph.
	QueryGetPlan = dbmodel.DBQuery{
		ID:    "WFQ-PLAN-03",
		Query: "SELECT PLAN FROM WORKFLOW_PLAN WHERE WORKFLOW_ID = $1 AND GRAPH_HASH = $2",
	}

	// QueryCreateExecutionEvent is the query to append an execution event.
	QueryCreateExecutionEvent = dbmodel.DBQuery{
		ID: "WFQ-EVENT-01",
		Query: "INSERT INTO EXECUTION_EVENT (EXECUTION_ID, WORKFLOW_ID, SEQUENCE, EVENT_TYPE, PAYLOAD) " +
			"VALUES ($1, $2, $3, $4, $5)",
	}

	// QueryListExecutionEvents is the query to list the events of an execution in order.
	QueryListExecutionEvents = dbmodel.DBQuery{
		ID:    "WFQ-EVENT-02",
		Query: "SELECT PAYLOAD FROM EXECUTION_EVENT WHERE EXECUTION_ID = $1 ORDER BY SEQUENCE",
	}
)
