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

package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type RuntimeConfigTestSuite struct {
	suite.Suite
}

func TestRuntimeConfigSuite(t *testing.T) {
	suite.Run(t, new(RuntimeConfigTestSuite))
}

func (suite *RuntimeConfigTestSuite) BeforeTest(suiteName, testName string) {
	runtimeConfig = nil
	once = sync.Once{}
}

func (suite *RuntimeConfigTestSuite) TestInitializeStepflowRuntime() {
	config := &Config{
		Server: ServerConfig{
			Hostname: "testhost",
			Port:     9000,
		},
		Flow: FlowConfig{
			StrictReferences: true,
		},
	}

	err := InitializeStepflowRuntime("/test/stepflow/home", config)
	assert.NoError(suite.T(), err)

	runtime := runtimeConfig
	assert.NotNil(suite.T(), runtime)
	assert.Equal(suite.T(), "/test/stepflow/home", runtime.StepflowHome)
	assert.Equal(suite.T(), config.Server.Hostname, runtime.Config.Server.Hostname)
	assert.True(suite.T(), runtime.Config.Flow.StrictReferences)
	assert.True(suite.T(), IsStepflowRuntimeInitialized())
}

func (suite *RuntimeConfigTestSuite) TestInitializeStepflowRuntimeOnlyOnce() {
	firstConfig := &Config{Server: ServerConfig{Hostname: "firsthost", Port: 8000}}
	assert.NoError(suite.T(), InitializeStepflowRuntime("/first/path", firstConfig))

	secondConfig := &Config{Server: ServerConfig{Hostname: "secondhost", Port: 9000}}
	assert.NoError(suite.T(), InitializeStepflowRuntime("/second/path", secondConfig))

	runtime := GetStepflowRuntime()
	assert.Equal(suite.T(), "/first/path", runtime.StepflowHome)
	assert.Equal(suite.T(), "firsthost", runtime.Config.Server.Hostname)
	assert.Equal(suite.T(), 8000, runtime.Config.Server.Port)
}

func (suite *RuntimeConfigTestSuite) TestGetStepflowRuntimePanicsWhenNotInitialized() {
	assert.False(suite.T(), IsStepflowRuntimeInitialized())
	assert.Panics(suite.T(), func() {
		GetStepflowRuntime()
	})
}

func (suite *RuntimeConfigTestSuite) TestResetStepflowRuntime() {
	assert.NoError(suite.T(), InitializeStepflowRuntime("/reset/path", &Config{}))
	ResetStepflowRuntime()

	assert.Nil(suite.T(), runtimeConfig)
	assert.NoError(suite.T(), InitializeStepflowRuntime("/new/path", &Config{}))
	assert.Equal(suite.T(), "/new/path", GetStepflowRuntime().StepflowHome)
}
