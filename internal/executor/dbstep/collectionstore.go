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

// Package dbstep provides the handlers of the database steps and the collection store
// they operate on.
package dbstep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	flowmodel "github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/system/constants"
	"github.com/asgardeo/stepflow/internal/system/database/client"
	dbmodel "github.com/asgardeo/stepflow/internal/system/database/model"
	"github.com/asgardeo/stepflow/internal/system/database/provider"
	"github.com/asgardeo/stepflow/internal/system/log"
)

// IDField is the generated primary key field of inserted records.
const IDField = "_id"

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrNoRecord is returned when an operation matched no record.
var ErrNoRecord = errors.New("no matching record")

// CollectionStore runs record operations against the tables of the data database.
type CollectionStore struct {
	dbProvider provider.DBProviderInterface
	schema     flowmodel.SchemaLookup
	logger     *log.Logger
}

// NewCollectionStore creates a store. Field names of collections known to the schema are
// checked against it.
func NewCollectionStore(dbProvider provider.DBProviderInterface, schema flowmodel.SchemaLookup) *CollectionStore {
	if schema == nil {
		schema = flowmodel.NoSchema
	}
	return &CollectionStore{
		dbProvider: dbProvider,
		schema:     schema,
		logger:     log.GetLogger().With(log.String(log.LoggerKeyComponentName, "CollectionStore")),
	}
}

// Find returns the records matching every filter field.
func (s *CollectionStore) Find(ctx context.Context, collection string, filter map[string]any) ([]map[string]any, error) {
	where, args, err := s.whereClause(collection, filter, 1)
	if err != nil {
		return nil, err
	}
	dbClient, err := s.client()
	if err != nil {
		return nil, err
	}

	query := dbmodel.DBQuery{
		ID:    "DSQ-FIND-" + collection,
		Query: fmt.Sprintf("SELECT * FROM %s%s", quote(collection), where),
	}
	rows, err := dbClient.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	return rows, nil
}

// Insert stores the record and returns it.
func (s *CollectionStore) Insert(ctx context.Context, collection string, record map[string]any) (map[string]any, error) {
	if err := s.checkCollection(collection); err != nil {
		return nil, err
	}
	if len(record) == 0 {
		return nil, fmt.Errorf("no data to insert into %s", collection)
	}

	columns := sortedKeys(record)
	names := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		if err := s.checkField(collection, column); err != nil {
			return nil, err
		}
		names[i] = quote(column)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = columnValue(record[column])
	}

	dbClient, err := s.client()
	if err != nil {
		return nil, err
	}
	query := dbmodel.DBQuery{
		ID: "DSQ-INSERT-" + collection,
		Query: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(collection),
			strings.Join(names, ", "), strings.Join(placeholders, ", ")),
	}
	if _, err := dbClient.ExecuteContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return record, nil
}

// Update sets the data fields on every record matching the filter and returns the number
// of updated records.
func (s *CollectionStore) Update(ctx context.Context, collection string, filter, data map[string]any) (int64, error) {
	if len(filter) == 0 {
		return 0, fmt.Errorf("a filter is required to update %s", collection)
	}
	if len(data) == 0 {
		return 0, fmt.Errorf("no data to update in %s", collection)
	}
	if err := s.checkCollection(collection); err != nil {
		return 0, err
	}

	columns := sortedKeys(data)
	sets := make([]string, len(columns))
	args := make([]any, 0, len(columns)+len(filter))
	for i, column := range columns {
		if err := s.checkField(collection, column); err != nil {
			return 0, err
		}
		sets[i] = fmt.Sprintf("%s = $%d", quote(column), i+1)
		args = append(args, columnValue(data[column]))
	}
	where, whereArgs, err := s.whereClause(collection, filter, len(columns)+1)
	if err != nil {
		return 0, err
	}
	args = append(args, whereArgs...)

	dbClient, err := s.client()
	if err != nil {
		return 0, err
	}
	query := dbmodel.DBQuery{
		ID:    "DSQ-UPDATE-" + collection,
		Query: fmt.Sprintf("UPDATE %s SET %s%s", quote(collection), strings.Join(sets, ", "), where),
	}
	affected, err := dbClient.ExecuteContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", collection, err)
	}
	return affected, nil
}

// Delete removes every record matching the filter and returns the number of removed records.
func (s *CollectionStore) Delete(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	if len(filter) == 0 {
		return 0, fmt.Errorf("a filter is required to delete from %s", collection)
	}
	where, args, err := s.whereClause(collection, filter, 1)
	if err != nil {
		return 0, err
	}

	dbClient, err := s.client()
	if err != nil {
		return 0, err
	}
	query := dbmodel.DBQuery{
		ID:    "DSQ-DELETE-" + collection,
		Query: fmt.Sprintf("DELETE FROM %s%s", quote(collection), where),
	}
	affected, err := dbClient.ExecuteContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", collection, err)
	}
	return affected, nil
}

func (s *CollectionStore) client() (client.DBClientInterface, error) {
	dbClient, err := s.dbProvider.GetDBClient(constants.DataDBName)
	if err != nil {
		s.logger.Error("Failed to get database client", log.Error(err))
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}
	return dbClient, nil
}

// whereClause builds " WHERE a = $n AND b = $n+1" with placeholders numbered from start.
func (s *CollectionStore) whereClause(collection string, filter map[string]any, start int) (string, []any, error) {
	if err := s.checkCollection(collection); err != nil {
		return "", nil, err
	}
	if len(filter) == 0 {
		return "", nil, nil
	}

	columns := sortedKeys(filter)
	conditions := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		if err := s.checkField(collection, column); err != nil {
			return "", nil, err
		}
		conditions[i] = fmt.Sprintf("%s = $%d", quote(column), start+i)
		args[i] = columnValue(filter[column])
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

func (s *CollectionStore) checkCollection(collection string) error {
	if collection == "" {
		return errors.New("collection is required")
	}
	if !identifierRegex.MatchString(collection) {
		return fmt.Errorf("invalid collection name: %s", collection)
	}
	return nil
}

func (s *CollectionStore) checkField(collection, field string) error {
	if !identifierRegex.MatchString(field) {
		return fmt.Errorf("invalid field name: %s", field)
	}
	fields := s.schema.SchemaFields(collection)
	if fields == nil {
		return nil
	}
	for _, f := range fields {
		if f == field {
			return nil
		}
	}
	return fmt.Errorf("unknown field %s in collection %s", field, collection)
}

func quote(identifier string) string {
	return `"` + identifier + `"`
}

// columnValue encodes objects and lists as JSON text.
func columnValue(value any) any {
	switch value.(type) {
	case map[string]any, []any, []map[string]any, []string:
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(b)
	}
	return value
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
