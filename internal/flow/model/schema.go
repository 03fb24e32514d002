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

package model

// SchemaLookup returns the known field names of a data collection.
// Unknown collections yield nil.
type SchemaLookup interface {
	SchemaFields(collection string) []string
}

// SchemaFunc adapts a plain function to SchemaLookup.
type SchemaFunc func(collection string) []string

// SchemaFields implements SchemaLookup.
func (f SchemaFunc) SchemaFields(collection string) []string {
	if f == nil {
		return nil
	}
	return f(collection)
}

// NoSchema is a SchemaLookup that knows no collections.
var NoSchema SchemaLookup = SchemaFunc(nil)
