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

// Package schema keeps the known field names of the data collections workflows operate on.
package schema

import (
	"sort"
	"sync"

	"github.com/asgardeo/stepflow/internal/system/config"
	"github.com/asgardeo/stepflow/internal/system/log"
)

// Introspector discovers the fields of a collection that is not declared in configuration.
type Introspector interface {
	Columns(collection string) ([]string, error)
}

// Registry is a thread-safe collection schema lookup. Declared collections win over
// introspected ones. Introspected fields are cached; empty results are not, so a
// collection created after the first lookup is picked up by the next one.
type Registry struct {
	mu           sync.RWMutex
	collections  map[string][]string
	introspector Introspector
	logger       *log.Logger
}

// NewRegistry creates a registry holding the declared collections. The introspector may be nil.
func NewRegistry(collections []config.CollectionConfig, introspector Introspector) *Registry {
	r := &Registry{
		collections:  make(map[string][]string, len(collections)),
		introspector: introspector,
		logger:       log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SchemaRegistry")),
	}
	for _, c := range collections {
		r.Register(c.Name, c.Fields)
	}
	return r
}

// Register declares or replaces the fields of a collection.
func (r *Registry) Register(collection string, fields []string) {
	if collection == "" {
		return
	}
	copied := make([]string, len(fields))
	copy(copied, fields)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[collection] = copied
}

// SchemaFields returns the fields of the collection, or nil when it is unknown.
func (r *Registry) SchemaFields(collection string) []string {
	if r == nil || collection == "" {
		return nil
	}

	r.mu.RLock()
	fields, ok := r.collections[collection]
	r.mu.RUnlock()
	if ok {
		return cloneOrNil(fields)
	}
	if r.introspector == nil {
		return nil
	}

	columns, err := r.introspector.Columns(collection)
	if err != nil {
		r.logger.Warn("Failed to introspect collection", log.String("collection", collection), log.Error(err))
		return nil
	}

	if len(columns) == 0 {
		return nil
	}

	r.mu.Lock()
	r.collections[collection] = columns
	r.mu.Unlock()
	return cloneOrNil(columns)
}

// HasField reports whether the collection is known and declares the field. Unknown
// collections accept any field.
func (r *Registry) HasField(collection, field string) bool {
	fields := r.SchemaFields(collection)
	if fields == nil {
		return true
	}
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}

// Collections returns the names of the collections with known fields in sorted order.
func (r *Registry) Collections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.collections))
	for name, fields := range r.collections {
		if len(fields) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func cloneOrNil(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}
