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

// Package managers provides functionality for registering the services of the server.
package managers

import (
	"net/http"

	"github.com/asgardeo/stepflow/internal/flow/flowmgt"
	"github.com/asgardeo/stepflow/internal/system/database/provider"
	"github.com/asgardeo/stepflow/internal/system/healthcheck"
)

// ServiceManagerInterface defines the interface for registering services.
type ServiceManagerInterface interface {
	RegisterServices() error
}

// ServiceManager registers the services on a multiplexer.
type ServiceManager struct {
	mux        *http.ServeMux
	dbProvider provider.DBProviderInterface
}

// NewServiceManager creates a new instance of ServiceManager.
func NewServiceManager(mux *http.ServeMux, dbProvider provider.DBProviderInterface) ServiceManagerInterface {
	return &ServiceManager{
		mux:        mux,
		dbProvider: dbProvider,
	}
}

// RegisterServices registers the health check and workflow services.
func (sm *ServiceManager) RegisterServices() error {
	healthcheck.RegisterRoutes(sm.mux,
		healthcheck.NewHealthCheckHandler(healthcheck.NewHealthCheckService(sm.dbProvider)))

	if _, err := flowmgt.Initialize(sm.mux, sm.dbProvider); err != nil {
		return err
	}
	return nil
}
