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

// Package executor wires the step handlers of every step kind into an engine registry.
package executor

import (
	"github.com/asgardeo/stepflow/internal/executor/authmiddleware"
	"github.com/asgardeo/stepflow/internal/executor/dbstep"
	"github.com/asgardeo/stepflow/internal/executor/emailsend"
	"github.com/asgardeo/stepflow/internal/executor/input"
	"github.com/asgardeo/stepflow/internal/executor/inputvalidation"
	"github.com/asgardeo/stepflow/internal/executor/response"
	"github.com/asgardeo/stepflow/internal/executor/userlogin"
	"github.com/asgardeo/stepflow/internal/flow/engine"
	flowmodel "github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/system/config"
	"github.com/asgardeo/stepflow/internal/system/database/provider"
)

// Dependencies holds the collaborators of the step handlers.
type Dependencies struct {
	DBProvider provider.DBProviderInterface
	Schema     flowmodel.SchemaLookup
	Auth       config.AuthConfig
	Sender     emailsend.Sender
}

// BuildRegistry returns a registry with a handler for every step kind.
func BuildRegistry(deps Dependencies) engine.Registry {
	store := dbstep.NewCollectionStore(deps.DBProvider, deps.Schema)
	sender := deps.Sender
	if sender == nil {
		sender = emailsend.NewLogSender()
	}

	return engine.Registry{}.
		Register(flowmodel.KindInput, input.NewInputExecutor()).
		Register(flowmodel.KindInputValidation, inputvalidation.NewInputValidationExecutor()).
		Register(flowmodel.KindDBFind, dbstep.NewFindExecutor(store)).
		Register(flowmodel.KindDBInsert, dbstep.NewInsertExecutor(store, deps.Auth.HashCost)).
		Register(flowmodel.KindDBUpdate, dbstep.NewUpdateExecutor(store)).
		Register(flowmodel.KindDBDelete, dbstep.NewDeleteExecutor(store)).
		Register(flowmodel.KindUserLogin, userlogin.NewUserLoginExecutor(store, deps.Auth.JWT)).
		Register(flowmodel.KindAuthMiddleware, authmiddleware.NewAuthMiddlewareExecutor(deps.Auth.JWT)).
		Register(flowmodel.KindEmailSend, emailsend.NewEmailSendExecutor(sender)).
		Register(flowmodel.KindResponse, response.NewResponseExecutor())
}
