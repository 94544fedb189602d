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

package transformers

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"

	"github.com/go-viper/mapstructure/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

const JsonTransformerName = "json"

const (
	JsonSetOpName    = "set"
	JsonDeleteOpName = "delete"
)

var JsonTransformerDefinition = NewDefinition(
	JsonTransformerName,
	"Edit a JSON document held in a text value. The operations parameter "+
		"lists set and delete steps applied in order, each addressing a gjson "+
		"path; set writes a literal value or a rendered value_template. "+
		"Set validate: false to skip the well-formedness check on input.",
	NewJsonTransformer,
)

type JsonOperation struct {
	Operation     string `mapstructure:"operation"`
	Path          string `mapstructure:"path"`
	Value         any    `mapstructure:"value,omitempty"`
	ValueTemplate string `mapstructure:"value_template,omitempty"`
	ErrorNotExist bool   `mapstructure:"error_not_exist"`

	tmpl *template.Template
}

// jsonOpContext is the dot value a value_template renders against. Value
// holds the current value at the operation path.
type jsonOpContext struct {
	Value  any
	Exists bool
	Table  string
	Column string
}

func (o *JsonOperation) apply(doc string, tctx *jsonOpContext, buf *bytes.Buffer) (string, error) {
	switch o.Operation {
	case JsonSetOpName:
		res := gjson.Get(doc, o.Path)
		if o.ErrorNotExist && !res.Exists() {
			return "", fmt.Errorf("value by path %q does not exist", o.Path)
		}
		if o.tmpl == nil {
			return sjson.Set(doc, o.Path, o.Value)
		}
		buf.Reset()
		tctx.Value = res.Value()
		tctx.Exists = res.Exists()
		if err := o.tmpl.Execute(buf, tctx); err != nil {
			return "", fmt.Errorf("unable to render value template: %w", err)
		}
		return sjson.SetRaw(doc, o.Path, buf.String())

	case JsonDeleteOpName:
		if o.ErrorNotExist && !gjson.Get(doc, o.Path).Exists() {
			return "", fmt.Errorf("value by path %q does not exist", o.Path)
		}
		return sjson.Delete(doc, o.Path)

	default:
		return "", fmt.Errorf("unknown operation %q", o.Operation)
	}
}

type JsonTransformer struct {
	rowkit.Binding
	operations []*JsonOperation
	validate   bool
	buf        *bytes.Buffer
}

func NewJsonTransformer(table, column string, params Params) (rowkit.Transformer, error) {
	raw, ok := params["operations"]
	if !ok {
		return nil, errors.New("operations parameter is required")
	}

	var ops []*JsonOperation
	if err := mapstructure.Decode(raw, &ops); err != nil {
		return nil, fmt.Errorf("unable to decode operations parameter: %w", err)
	}
	if len(ops) == 0 {
		return nil, errors.New("operations parameter must list at least one operation")
	}

	for idx, o := range ops {
		if o.Operation != JsonSetOpName && o.Operation != JsonDeleteOpName {
			return nil, fmt.Errorf("operation[%d] has unknown operation %q", idx, o.Operation)
		}
		if o.Path == "" {
			return nil, fmt.Errorf("operation[%d] has no path", idx)
		}
		if o.ValueTemplate == "" {
			continue
		}
		tmpl, err := template.New(fmt.Sprintf("op[%d] %s %s", idx, o.Operation, o.Path)).
			Funcs(templateFuncMap()).
			Parse(o.ValueTemplate)
		if err != nil {
			return nil, fmt.Errorf("unable to parse value template of operation[%d] with path %q: %w", idx, o.Path, err)
		}
		o.tmpl = tmpl
	}

	return &JsonTransformer{
		Binding:    rowkit.NewBinding(table, column),
		operations: ops,
		validate:   params.Bool("validate", true),
		buf:        bytes.NewBuffer(nil),
	}, nil
}

func (jt *JsonTransformer) Transform(c rowkit.Column) (rowkit.Column, error) {
	switch c.Kind() {
	case rowkit.KindString:
		doc, _ := c.StringValue()
		if jt.validate && !gjson.Valid(doc) {
			return rowkit.Column{}, fmt.Errorf("column %q does not hold valid json", c.Name())
		}

		tctx := &jsonOpContext{Table: jt.Table, Column: jt.Column}
		var err error
		for idx, op := range jt.operations {
			doc, err = op.apply(doc, tctx, jt.buf)
			if err != nil {
				return rowkit.Column{}, fmt.Errorf("cannot apply %s operation[%d] with path %q: %w",
					op.Operation, idx, op.Path, err)
			}
		}
		return rowkit.NewStringColumn(c.Name(), doc), nil

	case rowkit.KindNone:
		return c, nil

	default:
		return rowkit.Column{}, fmt.Errorf("json editing requires a text value, column %q holds %s", c.Name(), c.Kind())
	}
}

func init() {
	DefaultRegistry.MustRegister(JsonTransformerDefinition)
}
