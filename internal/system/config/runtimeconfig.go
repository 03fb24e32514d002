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

import "sync"

// StepflowRuntime holds the runtime configuration for the stepflow server.
type StepflowRuntime struct {
	StepflowHome string `yaml:"stepflow_home"`
	Config       Config `yaml:"config"`
}

var (
	runtimeConfig *StepflowRuntime
	once          sync.Once
)

// InitializeStepflowRuntime initializes the StepflowRuntime configuration.
func InitializeStepflowRuntime(stepflowHome string, config *Config) error {
	once.Do(func() {
		runtimeConfig = &StepflowRuntime{
			StepflowHome: stepflowHome,
			Config:       *config,
		}
	})

	return nil
}

// GetStepflowRuntime returns the StepflowRuntime configuration.
func GetStepflowRuntime() *StepflowRuntime {
	if runtimeConfig == nil {
		panic("StepflowRuntime is not initialized")
	}
	return runtimeConfig
}

// IsStepflowRuntimeInitialized reports whether the runtime configuration has been initialized.
func IsStepflowRuntimeInitialized() bool {
	return runtimeConfig != nil
}

// ResetStepflowRuntime resets the StepflowRuntime.
// This should only be used in tests to reset the singleton state.
func ResetStepflowRuntime() {
	runtimeConfig = nil
	once = sync.Once{}
}
