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

// Package model defines the data structures and interfaces for database operations.
package model

import (
	"context"
	"database/sql"
)

// DBInterface is the subset of *sql.DB the database client depends on.
type DBInterface interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

// NewDB wraps an sql.DB. The pool already satisfies DBInterface; the wrapper keeps callers
// from reaching the rest of its API.
func NewDB(db *sql.DB) DBInterface {
	return &sqlDB{internal: db}
}

type sqlDB struct {
	internal *sql.DB
}

func (d *sqlDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.internal.QueryContext(ctx, query, args...)
}

func (d *sqlDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.internal.ExecContext(ctx, query, args...)
}

func (d *sqlDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return d.internal.BeginTx(ctx, opts)
}

func (d *sqlDB) Close() error {
	return d.internal.Close()
}

// TxInterface is a transaction opened by the database client.
type TxInterface interface {
	Commit() error
	Rollback() error
	// Exec runs a statement inside the transaction.
	Exec(query string, args ...any) (sql.Result, error)
}

// NewTx binds a transaction to the context it was opened with.
func NewTx(ctx context.Context, tx *sql.Tx) TxInterface {
	return &boundTx{ctx: ctx, internal: tx}
}

type boundTx struct {
	ctx      context.Context
	internal *sql.Tx
}

func (t *boundTx) Commit() error {
	return t.internal.Commit()
}

func (t *boundTx) Rollback() error {
	return t.internal.Rollback()
}

func (t *boundTx) Exec(query string, args ...any) (sql.Result, error) {
	return t.internal.ExecContext(t.ctx, query, args...)
}
