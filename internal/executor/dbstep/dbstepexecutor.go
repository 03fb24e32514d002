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

package dbstep

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/asgardeo/stepflow/internal/executor/common"
	flowmodel "github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/system/log"
)

// Step fields.
const (
	fieldFilter   = "filter"
	fieldData     = "data"
	fieldHash     = "hash"
	fieldMultiple = "multiple"
	fieldRequired = "required"
)

// FindExecutor handles dbFind steps.
type FindExecutor struct {
	store  *CollectionStore
	logger *log.Logger
}

// NewFindExecutor creates a new instance of FindExecutor.
func NewFindExecutor(store *CollectionStore) *FindExecutor {
	return &FindExecutor{
		store:  store,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBFindExecutor")),
	}
}

// Execute returns the first matching record, or every match when multiple is set. A
// required lookup without a match fails.
func (e *FindExecutor) Execute(ctx context.Context, fields map[string]any, _ flowmodel.ScopeReader) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	collection := common.String(fields, flowmodel.FieldCollection)
	rows, err := e.store.Find(ctx, collection, common.Map(fields, fieldFilter))
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 && common.Bool(fields, fieldRequired) {
		return nil, fmt.Errorf("%w in %s", ErrNoRecord, collection)
	}
	e.logger.Debug("Found records", log.String("collection", collection), log.Int("count", len(rows)))

	if common.Bool(fields, fieldMultiple) {
		records := make([]any, len(rows))
		for i, row := range rows {
			records[i] = row
		}
		return records, nil
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// InsertExecutor handles dbInsert steps.
type InsertExecutor struct {
	store      *CollectionStore
	bcryptCost int
	logger     *log.Logger
}

// NewInsertExecutor creates a new instance of InsertExecutor. A non-positive cost uses the
// bcrypt default.
func NewInsertExecutor(store *CollectionStore, bcryptCost int) *InsertExecutor {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &InsertExecutor{
		store:      store,
		bcryptCost: bcryptCost,
		logger:     log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBInsertExecutor")),
	}
}

// Execute inserts the data with a generated _id. Fields listed in hash are stored as bcrypt
// hashes. The inserted record is returned.
func (e *InsertExecutor) Execute(ctx context.Context, fields map[string]any, _ flowmodel.ScopeReader) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	collection := common.String(fields, flowmodel.FieldCollection)
	data := common.Map(fields, fieldData)

	record := make(map[string]any, len(data)+1)
	for k, v := range data {
		record[k] = v
	}
	for _, name := range common.Strings(fields, fieldHash) {
		plain := common.ToString(record[name])
		if plain == "" {
			continue
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(plain), e.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", name, err)
		}
		record[name] = string(hashed)
	}
	if _, ok := record[IDField]; !ok {
		record[IDField] = uuid.NewString()
	}

	inserted, err := e.store.Insert(ctx, collection, record)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Inserted record", log.String("collection", collection),
		log.String("id", common.ToString(inserted[IDField])))
	return inserted, nil
}

// UpdateExecutor handles dbUpdate steps.
type UpdateExecutor struct {
	store  *CollectionStore
	logger *log.Logger
}

// NewUpdateExecutor creates a new instance of UpdateExecutor.
func NewUpdateExecutor(store *CollectionStore) *UpdateExecutor {
	return &UpdateExecutor{
		store:  store,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBUpdateExecutor")),
	}
}

// Execute applies the data to the records matching the filter and returns the first updated
// record. It fails when nothing matched.
func (e *UpdateExecutor) Execute(ctx context.Context, fields map[string]any, _ flowmodel.ScopeReader) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	collection := common.String(fields, flowmodel.FieldCollection)
	filter := common.Map(fields, fieldFilter)
	data := common.Map(fields, fieldData)

	affected, err := e.store.Update(ctx, collection, filter, data)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRecord, collection)
	}

	// Updated fields may be part of the filter.
	lookup := make(map[string]any, len(filter))
	for k, v := range filter {
		lookup[k] = v
	}
	for k, v := range data {
		if _, ok := lookup[k]; ok {
			lookup[k] = v
		}
	}
	rows, err := e.store.Find(ctx, collection, lookup)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Updated records", log.String("collection", collection), log.Any("count", affected))
	if len(rows) == 0 {
		return data, nil
	}
	return rows[0], nil
}

// DeleteExecutor handles dbDelete steps.
type DeleteExecutor struct {
	store  *CollectionStore
	logger *log.Logger
}

// NewDeleteExecutor creates a new instance of DeleteExecutor.
func NewDeleteExecutor(store *CollectionStore) *DeleteExecutor {
	return &DeleteExecutor{
		store:  store,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBDeleteExecutor")),
	}
}

// Execute deletes the records matching the filter and returns the first of them. It fails
// when nothing matched.
func (e *DeleteExecutor) Execute(ctx context.Context, fields map[string]any, _ flowmodel.ScopeReader) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	collection := common.String(fields, flowmodel.FieldCollection)
	filter := common.Map(fields, fieldFilter)
	if len(filter) == 0 {
		return nil, fmt.Errorf("a filter is required to delete from %s", collection)
	}

	rows, err := e.store.Find(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRecord, collection)
	}
	affected, err := e.store.Delete(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRecord, collection)
	}
	e.logger.Debug("Deleted records", log.String("collection", collection), log.Any("count", affected))
	return rows[0], nil
}
