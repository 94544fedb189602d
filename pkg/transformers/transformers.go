// Copyright 2025 Seedmask
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package transformers provides the built-in anonymizers and the registry
// that maps configuration rule kinds to their constructors. Each transformer
// is bound to one table.column at build time and replaces values of that
// column during streaming.
package transformers

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

// Params carries the free-form parameters of one transformation rule as they
// come out of the configuration decoder.
type Params map[string]any

func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

func (p Params) String(name, fallback string) string {
	v, ok := p[name]
	if !ok {
		return fallback
	}
	return cast.ToString(v)
}

func (p Params) Int(name string, fallback int) int {
	v, ok := p[name]
	if !ok {
		return fallback
	}
	return cast.ToInt(v)
}

func (p Params) Int64(name string, fallback int64) int64 {
	v, ok := p[name]
	if !ok {
		return fallback
	}
	return cast.ToInt64(v)
}

func (p Params) Bool(name string, fallback bool) bool {
	v, ok := p[name]
	if !ok {
		return fallback
	}
	return cast.ToBool(v)
}

// NewTransformerFunc builds a transformer bound to table.column from rule
// parameters. Implementations validate their parameters here so that bad
// configuration fails before any streaming starts.
type NewTransformerFunc func(table, column string, params Params) (rowkit.Transformer, error)

type Definition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	New         NewTransformerFunc `json:"-"`
}

func NewDefinition(name, description string, newFunc NewTransformerFunc) *Definition {
	return &Definition{
		Name:        name,
		Description: description,
		New:         newFunc,
	}
}

var DefaultRegistry = NewRegistry()

// Registry indexes transformer definitions by kind name.
type Registry struct {
	M map[string]*Definition
}

func NewRegistry() *Registry {
	return &Registry{
		M: make(map[string]*Definition),
	}
}

func (tm *Registry) Register(definition *Definition) error {
	if _, ok := tm.M[definition.Name]; ok {
		return fmt.Errorf("unable to register transformer: transformer with name %s already exists",
			definition.Name)
	}
	tm.M[definition.Name] = definition
	return nil
}

func (tm *Registry) MustRegister(definition *Definition) {
	if err := tm.Register(definition); err != nil {
		panic(err.Error())
	}
}

func (tm *Registry) Get(name string) (*Definition, bool) {
	t, ok := tm.M[name]
	return t, ok
}

// List returns all definitions ordered by name.
func (tm *Registry) List() []*Definition {
	res := make([]*Definition, 0, len(tm.M))
	for _, d := range tm.M {
		res = append(res, d)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Name < res[j].Name
	})
	return res
}

// Build instantiates the named transformer kind for table.column.
func (tm *Registry) Build(kind, table, column string, params Params) (rowkit.Transformer, error) {
	d, ok := tm.Get(kind)
	if !ok {
		return nil, fmt.Errorf("unknown transformer kind %q", kind)
	}
	t, err := d.New(table, column, params)
	if err != nil {
		return nil, fmt.Errorf("build transformer %q for %s.%s: %w", kind, table, column, err)
	}
	return t, nil
}
