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

// Package authmiddleware provides the handler of the auth middleware step.
package authmiddleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asgardeo/stepflow/internal/executor/common"
	flowmodel "github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/system/config"
	"github.com/asgardeo/stepflow/internal/system/jwt"
	"github.com/asgardeo/stepflow/internal/system/log"
)

const (
	loggerComponentName = "AuthMiddlewareExecutor"
	bearerPrefix        = "Bearer "
)

// ErrMissingToken is returned when the step has no token to verify.
var ErrMissingToken = errors.New("missing bearer token")

// AuthMiddlewareExecutor verifies a bearer token and lets the flow continue only when it is valid.
type AuthMiddlewareExecutor struct {
	jwt    config.JWTConfig
	now    func() time.Time
	logger *log.Logger
}

// NewAuthMiddlewareExecutor creates a new instance of AuthMiddlewareExecutor.
func NewAuthMiddlewareExecutor(jwtConfig config.JWTConfig) *AuthMiddlewareExecutor {
	return &AuthMiddlewareExecutor{
		jwt:    jwtConfig,
		now:    time.Now,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
}

// Execute verifies the token and returns its claims.
func (e *AuthMiddlewareExecutor) Execute(_ context.Context, fields map[string]any, _ flowmodel.ScopeReader) (any, error) {
	token := strings.TrimLeft(common.String(fields, "token"), " ")
	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = token[len(bearerPrefix):]
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if e.jwt.Secret == "" {
		return nil, errors.New("token verification is not configured")
	}

	claims, err := jwt.VerifyHS256(token, e.jwt.Secret, e.jwt.Issuer, e.now())
	if err != nil {
		e.logger.Debug("Token verification failed", log.Error(err))
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	return claims, nil
}
