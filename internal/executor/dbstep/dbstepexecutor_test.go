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
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	flowmodel "github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/system/constants"
	"github.com/asgardeo/stepflow/internal/system/database/client"
	dbmodel "github.com/asgardeo/stepflow/internal/system/database/model"
	"github.com/asgardeo/stepflow/tests/mocks/databasemock"
)

// bcryptArg matches a bcrypt hash of the given plain text.
type bcryptArg string

func (a bcryptArg) Match(v driver.Value) bool {
	hashed, ok := v.(string)
	return ok && bcrypt.CompareHashAndPassword([]byte(hashed), []byte(a)) == nil
}

type DBStepExecutorTestSuite struct {
	suite.Suite
	mockDB     *sql.DB
	mock       sqlmock.Sqlmock
	dbProvider *databasemock.MockDBProvider
	store      *CollectionStore
	scope      flowmodel.ScopeReader
}

func TestDBStepExecutorSuite(t *testing.T) {
	suite.Run(t, new(DBStepExecutorTestSuite))
}

func (suite *DBStepExecutorTestSuite) SetupTest() {
	var err error
	suite.mockDB, suite.mock, err = sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(suite.T(), err)

	suite.dbProvider = &databasemock.MockDBProvider{
		Client: client.NewDBClient(dbmodel.NewDB(suite.mockDB), "sqlite"),
	}
	schema := flowmodel.SchemaFunc(func(collection string) []string {
		if collection == "users" {
			return []string{"_id", "email", "password", "name"}
		}
		return nil
	})
	suite.store = NewCollectionStore(suite.dbProvider, schema)
	suite.scope = flowmodel.NewRuntimeScope(nil).ReadOnly()
}

func (suite *DBStepExecutorTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *DBStepExecutorTestSuite) TestFindReturnsFirstRecord() {
	suite.mock.ExpectQuery(`SELECT * FROM "users" WHERE "email" = $1`).
		WithArgs("a@b.co").
		WillReturnRows(sqlmock.NewRows([]string{"_id", "email", "name"}).
			AddRow("u1", "a@b.co", "Ann").
			AddRow("u2", "a@b.co", "Bob"))

	value, err := NewFindExecutor(suite.store).Execute(context.Background(), map[string]any{
		"collection": "users",
		"filter":     map[string]any{"email": "a@b.co"},
	}, suite.scope)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), map[string]any{"_id": "u1", "email": "a@b.co", "name": "Ann"}, value)
	assert.Equal(suite.T(), []string{constants.DataDBName}, suite.dbProvider.GetDBClientCalls)
}

func (suite *DBStepExecutorTestSuite) TestFindMultipleReturnsList() {
	suite.mock.ExpectQuery(`SELECT * FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"_id"}).AddRow("u1").AddRow("u2"))

	value, err := NewFindExecutor(suite.store).Execute(context.Background(), map[string]any{
		"collection": "users",
		"multiple":   true,
	}, suite.scope)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []any{
		map[string]any{"_id": "u1"},
		map[string]any{"_id": "u2"},
	}, value)
}

func (suite *DBStepExecutorTestSuite) TestFindWithoutMatch() {
	suite.T().Run("optional", func(t *testing.T) {
		suite.mock.ExpectQuery(`SELECT * FROM "users" WHERE "email" = $1`).
			WithArgs("x@y.co").
			WillReturnRows(sqlmock.NewRows([]string{"_id"}))

		value, err := NewFindExecutor(suite.store).Execute(context.Background(), map[string]any{
			"collection": "users",
			"filter":     map[string]any{"email": "x@y.co"},
		}, suite.scope)
		assert.NoError(t, err)
		assert.Nil(t, value)
	})

	suite.T().Run("required", func(t *testing.T) {
		suite.mock.ExpectQuery(`SELECT * FROM "users" WHERE "email" = $1`).
			WithArgs("x@y.co").
			WillReturnRows(sqlmock.NewRows([]string{"_id"}))

		_, err := NewFindExecutor(suite.store).Execute(context.Background(), map[string]any{
			"collection": "users",
			"filter":     map[string]any{"email": "x@y.co"},
			"required":   true,
		}, suite.scope)
		assert.ErrorIs(t, err, ErrNoRecord)
		assert.EqualError(t, err, "no matching record in users")
	})
}

func (suite *DBStepExecutorTestSuite) TestFindRejectsInvalidIdentifiers() {
	cases := []struct {
		name   string
		fields map[string]any
		errMsg string
	}{
		{"missing collection", map[string]any{}, "collection is required"},
		{"injected collection", map[string]any{"collection": "users; DROP TABLE x"},
			"invalid collection name: users; DROP TABLE x"},
		{"injected field", map[string]any{"collection": "orders", "filter": map[string]any{`a" OR 1=1`: 1}},
			`invalid field name: a" OR 1=1`},
		{"unknown schema field", map[string]any{"collection": "users", "filter": map[string]any{"age": 3}},
			"unknown field age in collection users"},
	}
	for _, tc := range cases {
		suite.T().Run(tc.name, func(t *testing.T) {
			_, err := NewFindExecutor(suite.store).Execute(context.Background(), tc.fields, suite.scope)
			assert.EqualError(t, err, tc.errMsg)
		})
	}
}

func (suite *DBStepExecutorTestSuite) TestInsertHashesAndGeneratesID() {
	suite.mock.ExpectExec(`INSERT INTO "users" ("_id", "email", "password") VALUES ($1, $2, $3)`).
		WithArgs(sqlmock.AnyArg(), "a@b.co", bcryptArg("secret")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	value, err := NewInsertExecutor(suite.store, bcrypt.MinCost).Execute(context.Background(), map[string]any{
		"collection": "users",
		"data":       map[string]any{"email": "a@b.co", "password": "secret"},
		"hash":       []any{"password"},
	}, suite.scope)

	require.NoError(suite.T(), err)
	record := value.(map[string]any)
	assert.NotEmpty(suite.T(), record["_id"])
	assert.Equal(suite.T(), "a@b.co", record["email"])
	assert.NotEqual(suite.T(), "secret", record["password"])
}

func (suite *DBStepExecutorTestSuite) TestInsertEncodesNestedValues() {
	suite.mock.ExpectExec(`INSERT INTO "orders" ("_id", "items") VALUES ($1, $2)`).
		WithArgs("o1", `["a","b"]`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := NewInsertExecutor(suite.store, bcrypt.MinCost).Execute(context.Background(), map[string]any{
		"collection": "orders",
		"data":       map[string]any{"_id": "o1", "items": []any{"a", "b"}},
	}, suite.scope)
	assert.NoError(suite.T(), err)
}

func (suite *DBStepExecutorTestSuite) TestInsertDatabaseError() {
	suite.mock.ExpectExec(`INSERT INTO "orders" ("_id") VALUES ($1)`).
		WithArgs("o1").
		WillReturnError(errors.New("constraint failed"))

	_, err := NewInsertExecutor(suite.store, bcrypt.MinCost).Execute(context.Background(), map[string]any{
		"collection": "orders",
		"data":       map[string]any{"_id": "o1"},
	}, suite.scope)
	assert.ErrorContains(suite.T(), err, "failed to insert into orders")
}

func (suite *DBStepExecutorTestSuite) TestUpdateReturnsUpdatedRecord() {
	suite.mock.ExpectExec(`UPDATE "users" SET "name" = $1 WHERE "email" = $2`).
		WithArgs("Ann", "a@b.co").
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectQuery(`SELECT * FROM "users" WHERE "email" = $1`).
		WithArgs("a@b.co").
		WillReturnRows(sqlmock.NewRows([]string{"_id", "email", "name"}).AddRow("u1", "a@b.co", "Ann"))

	value, err := NewUpdateExecutor(suite.store).Execute(context.Background(), map[string]any{
		"collection": "users",
		"filter":     map[string]any{"email": "a@b.co"},
		"data":       map[string]any{"name": "Ann"},
	}, suite.scope)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), map[string]any{"_id": "u1", "email": "a@b.co", "name": "Ann"}, value)
}

func (suite *DBStepExecutorTestSuite) TestUpdateRequeriesWithChangedFilterField() {
	suite.mock.ExpectExec(`UPDATE "users" SET "email" = $1 WHERE "email" = $2`).
		WithArgs("new@b.co", "old@b.co").
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectQuery(`SELECT * FROM "users" WHERE "email" = $1`).
		WithArgs("new@b.co").
		WillReturnRows(sqlmock.NewRows([]string{"_id", "email"}).AddRow("u1", "new@b.co"))

	value, err := NewUpdateExecutor(suite.store).Execute(context.Background(), map[string]any{
		"collection": "users",
		"filter":     map[string]any{"email": "old@b.co"},
		"data":       map[string]any{"email": "new@b.co"},
	}, suite.scope)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "new@b.co", value.(map[string]any)["email"])
}

func (suite *DBStepExecutorTestSuite) TestUpdateWithoutMatchFails() {
	suite.mock.ExpectExec(`UPDATE "users" SET "name" = $1 WHERE "email" = $2`).
		WithArgs("Ann", "x@y.co").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := NewUpdateExecutor(suite.store).Execute(context.Background(), map[string]any{
		"collection": "users",
		"filter":     map[string]any{"email": "x@y.co"},
		"data":       map[string]any{"name": "Ann"},
	}, suite.scope)
	assert.ErrorIs(suite.T(), err, ErrNoRecord)
}

func (suite *DBStepExecutorTestSuite) TestUpdateRequiresFilter() {
	_, err := NewUpdateExecutor(suite.store).Execute(context.Background(), map[string]any{
		"collection": "users",
		"data":       map[string]any{"name": "Ann"},
	}, suite.scope)
	assert.EqualError(suite.T(), err, "a filter is required to update users")
}

func (suite *DBStepExecutorTestSuite) TestDeleteReturnsDeletedRecord() {
	suite.mock.ExpectQuery(`SELECT * FROM "users" WHERE "_id" = $1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"_id", "email"}).AddRow("u1", "a@b.co"))
	suite.mock.ExpectExec(`DELETE FROM "users" WHERE "_id" = $1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	value, err := NewDeleteExecutor(suite.store).Execute(context.Background(), map[string]any{
		"collection": "users",
		"filter":     map[string]any{"_id": "u1"},
	}, suite.scope)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), map[string]any{"_id": "u1", "email": "a@b.co"}, value)
}

func (suite *DBStepExecutorTestSuite) TestDeleteWithoutMatchFails() {
	suite.mock.ExpectQuery(`SELECT * FROM "users" WHERE "_id" = $1`).
		WithArgs("u9").
		WillReturnRows(sqlmock.NewRows([]string{"_id"}))

	_, err := NewDeleteExecutor(suite.store).Execute(context.Background(), map[string]any{
		"collection": "users",
		"filter":     map[string]any{"_id": "u9"},
	}, suite.scope)
	assert.EqualError(suite.T(), err, "no matching record in users")
}

func (suite *DBStepExecutorTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFindExecutor(suite.store).Execute(ctx, map[string]any{"collection": "users"}, suite.scope)
	assert.ErrorIs(suite.T(), err, context.Canceled)
}
