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

// Package userlogin provides the handler of the user login step.
package userlogin

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/asgardeo/stepflow/internal/executor/common"
	"github.com/asgardeo/stepflow/internal/executor/dbstep"
	flowmodel "github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/system/config"
	"github.com/asgardeo/stepflow/internal/system/jwt"
	"github.com/asgardeo/stepflow/internal/system/log"
)

const (
	loggerComponentName = "UserLoginExecutor"
	defaultCollection   = "users"
	emailAttribute      = "email"
	passwordAttribute   = "password"
	nameAttribute       = "name"
)

// ErrInvalidCredentials is returned when the user is unknown or the password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserLoginExecutor verifies a user's email and password against a collection of users.
type UserLoginExecutor struct {
	store  *dbstep.CollectionStore
	jwt    config.JWTConfig
	now    func() time.Time
	logger *log.Logger
}

// NewUserLoginExecutor creates a new instance of UserLoginExecutor. A token is issued on
// successful login when the JWT secret is set.
func NewUserLoginExecutor(store *dbstep.CollectionStore, jwtConfig config.JWTConfig) *UserLoginExecutor {
	return &UserLoginExecutor{
		store:  store,
		jwt:    jwtConfig,
		now:    time.Now,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
}

// Execute looks the user up by email and compares the password with the stored bcrypt hash.
func (e *UserLoginExecutor) Execute(ctx context.Context, fields map[string]any, _ flowmodel.ScopeReader) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	collection := common.String(fields, flowmodel.FieldCollection)
	if collection == "" {
		collection = defaultCollection
	}
	email := common.String(fields, emailAttribute)
	password := common.String(fields, passwordAttribute)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	users, err := e.store.Find(ctx, collection, map[string]any{emailAttribute: email})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		e.logger.Debug("User not found", log.String("email", log.MaskString(email)))
		return nil, ErrInvalidCredentials
	}
	user := users[0]

	hashed := common.ToString(user[passwordAttribute])
	if bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) != nil {
		e.logger.Debug("Password mismatch", log.String("email", log.MaskString(email)))
		return nil, ErrInvalidCredentials
	}

	userID := common.ToString(user[dbstep.IDField])
	result := map[string]any{
		"ok":     true,
		"userId": userID,
		"email":  common.ToString(user[emailAttribute]),
		"name":   common.ToString(user[nameAttribute]),
		"token":  "",
	}
	if e.jwt.Secret != "" {
		token, err := jwt.GenerateHS256(map[string]interface{}{"sub": userID, "email": email},
			e.jwt.Secret, e.jwt.Issuer, e.jwt.ValidityPeriod, e.now())
		if err != nil {
			return nil, err
		}
		result["token"] = token
	}
	return result, nil
}
