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

// Package healthcheck provides the liveness and readiness endpoints of the server.
package healthcheck

import (
	"context"
	"net/http"

	"github.com/asgardeo/stepflow/internal/system/constants"
	dbmodel "github.com/asgardeo/stepflow/internal/system/database/model"
	"github.com/asgardeo/stepflow/internal/system/database/provider"
	"github.com/asgardeo/stepflow/internal/system/log"
	"github.com/asgardeo/stepflow/internal/system/utils"
)

// Status is the health status of the server or one of its dependencies.
type Status string

const (
	// StatusUp indicates a healthy component.
	StatusUp Status = "UP"
	// StatusDown indicates an unhealthy component.
	StatusDown Status = "DOWN"
)

// ServiceStatus is the status of one dependency.
type ServiceStatus struct {
	ServiceName string `json:"service_name"`
	Status      Status `json:"status"`
}

// ServerStatus is the aggregated readiness of the server.
type ServerStatus struct {
	Status        Status          `json:"status"`
	ServiceStatus []ServiceStatus `json:"service_status"`
}

var queryRuntimeDBTable = dbmodel.DBQuery{
	ID:    "HLC-00001",
	Query: "SELECT ID FROM WORKFLOW LIMIT 1",
}

var queryDataDB = dbmodel.DBQuery{
	ID:    "HLC-00002",
	Query: "SELECT 1",
}

// HealthCheckService checks the databases the server depends on.
type HealthCheckService struct {
	dbProvider provider.DBProviderInterface
}

// NewHealthCheckService creates a new instance of HealthCheckService.
func NewHealthCheckService(dbProvider provider.DBProviderInterface) *HealthCheckService {
	return &HealthCheckService{dbProvider: dbProvider}
}

// CheckReadiness checks the readiness of the runtime and data databases.
func (s *HealthCheckService) CheckReadiness(ctx context.Context) ServerStatus {
	statuses := []ServiceStatus{
		{ServiceName: "RuntimeDB", Status: s.checkDatabaseStatus(ctx, constants.RuntimeDBName, queryRuntimeDBTable)},
		{ServiceName: "DataDB", Status: s.checkDatabaseStatus(ctx, constants.DataDBName, queryDataDB)},
	}

	status := StatusUp
	for _, st := range statuses {
		if st.Status == StatusDown {
			status = StatusDown
		}
	}
	return ServerStatus{Status: status, ServiceStatus: statuses}
}

func (s *HealthCheckService) checkDatabaseStatus(ctx context.Context, dbName string, query dbmodel.DBQuery) Status {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckService"))

	dbClient, err := s.dbProvider.GetDBClient(dbName)
	if err != nil {
		logger.Error("Failed to get database client", log.String("db", dbName), log.Error(err))
		return StatusDown
	}
	if _, err := dbClient.QueryContext(ctx, query); err != nil {
		logger.Error("Failed to execute query", log.String("db", dbName), log.Error(err))
		return StatusDown
	}
	return StatusUp
}

// HealthCheckHandler serves the health check endpoints.
type HealthCheckHandler struct {
	service *HealthCheckService
}

// NewHealthCheckHandler creates a new instance of HealthCheckHandler.
func NewHealthCheckHandler(service *HealthCheckService) *HealthCheckHandler {
	return &HealthCheckHandler{service: service}
}

// HandleLivenessRequest handles the liveness request.
func (h *HealthCheckHandler) HandleLivenessRequest(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HandleReadinessRequest handles the readiness request.
func (h *HealthCheckHandler) HandleReadinessRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckHandler"))

	serverStatus := h.service.CheckReadiness(r.Context())
	statusCode := http.StatusOK
	if serverStatus.Status != StatusUp {
		logger.Error("Readiness check failed", log.String("status", string(serverStatus.Status)))
		statusCode = http.StatusServiceUnavailable
	}
	utils.WriteJSONResponse(w, statusCode, serverStatus)
}

// RegisterRoutes registers the health check routes.
func RegisterRoutes(mux *http.ServeMux, handler *HealthCheckHandler) {
	mux.HandleFunc("GET /health/liveness", handler.HandleLivenessRequest)
	mux.HandleFunc("GET /health/readiness", handler.HandleReadinessRequest)
}
