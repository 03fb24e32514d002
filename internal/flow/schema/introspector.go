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

package schema

import (
	"fmt"

	"github.com/asgardeo/stepflow/internal/system/constants"
	"github.com/asgardeo/stepflow/internal/system/database/model"
	"github.com/asgardeo/stepflow/internal/system/database/provider"
)

var queryListColumns = model.DBQuery{
	ID: "SCQ-00001",
	PostgresQuery: "SELECT column_name FROM information_schema.columns " +
		"WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position",
	SQLiteQuery: "SELECT name AS column_name FROM pragma_table_info($1) ORDER BY cid",
}

// DBIntrospector reads collection fields from the table columns of the data database.
type DBIntrospector struct {
	dbProvider provider.DBProviderInterface
}

// NewDBIntrospector creates an introspector over the data database.
func NewDBIntrospector(dbProvider provider.DBProviderInterface) *DBIntrospector {
	return &DBIntrospector{dbProvider: dbProvider}
}

// Columns returns the column names of the table backing the collection. A table that does
// not exist yields no columns.
func (i *DBIntrospector) Columns(collection string) ([]string, error) {
	dbClient, err := i.dbProvider.GetDBClient(constants.DataDBName)
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	rows, err := dbClient.Query(queryListColumns, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", collection, err)
	}

	columns := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := row["column_name"].(string); ok && name != "" {
			columns = append(columns, name)
		}
	}
	return columns, nil
}
