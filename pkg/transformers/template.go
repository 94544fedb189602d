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
	"maps"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/ggwhite/go-masker"
	"github.com/go-faker/faker/v4"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

const TemplateTransformerName = "template"

var TemplateTransformerDefinition = NewDefinition(
	TemplateTransformerName,
	"Render the value through a Go text/template given in the template "+
		"parameter. The template receives .Value, .Kind, .Table and .Column; "+
		"its output is coerced back to the original value kind. Sprig "+
		"functions plus masking, faker* and json* helpers are available.",
	NewTemplateTransformer,
)

type TemplateTransformer struct {
	rowkit.Binding
	tmpl *template.Template
}

// templateContext is the dot value a template renders against.
type templateContext struct {
	Value  any
	Kind   string
	Table  string
	Column string
}

func NewTemplateTransformer(table, column string, params Params) (rowkit.Transformer, error) {
	text := params.String("template", "")
	if text == "" {
		return nil, errors.New("template parameter is required")
	}

	tmpl, err := template.New(table + "." + column).Funcs(templateFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse template: %w", err)
	}

	return &TemplateTransformer{
		Binding: rowkit.NewBinding(table, column),
		tmpl:    tmpl,
	}, nil
}

func (tt *TemplateTransformer) Transform(c rowkit.Column) (rowkit.Column, error) {
	if c.Kind() == rowkit.KindNone {
		return c, nil
	}

	var buf bytes.Buffer
	err := tt.tmpl.Execute(&buf, &templateContext{
		Value:  goValue(c),
		Kind:   c.Kind().String(),
		Table:  tt.Table,
		Column: tt.Column,
	})
	if err != nil {
		return rowkit.Column{}, fmt.Errorf("unable to render template: %w", err)
	}

	return coerceColumn(c.Name(), c.Kind(), buf.String())
}

func templateFuncMap() template.FuncMap {
	m := &masker.Masker{}
	faker.SetGenerateUniqueValues(false)

	fns := template.FuncMap{
		"masking": func(dataType, v string) (string, error) {
			mf, err := maskingFuncFor(m, dataType)
			if err != nil {
				return "", err
			}
			return mf(v), nil
		},

		"jsonExists":  func(path, data string) bool { return gjson.Get(data, path).Exists() },
		"jsonGet":     func(path, data string) any { return gjson.Get(data, path).Value() },
		"jsonGetRaw":  func(path, data string) string { return gjson.Get(data, path).Raw },
		"jsonSet":     func(path string, value any, data string) (string, error) { return sjson.Set(data, path, value) },
		"jsonDelete":  func(path, data string) (string, error) { return sjson.Delete(data, path) },
		"jsonIsValid": func(data string) bool { return gjson.Valid(data) },

		"fakerFirstName":       faker.FirstName,
		"fakerLastName":        faker.LastName,
		"fakerName":            faker.Name,
		"fakerEmail":           faker.Email,
		"fakerUsername":        faker.Username,
		"fakerPassword":        faker.Password,
		"fakerPhoneNumber":     faker.Phonenumber,
		"fakerE164PhoneNumber": faker.E164PhoneNumber,
		"fakerCCNumber":        faker.CCNumber,
		"fakerCCType":          faker.CCType,
		"fakerCurrency":        faker.Currency,
		"fakerURL":             faker.URL,
		"fakerDomainName":      faker.DomainName,
		"fakerIPv4":            faker.IPv4,
		"fakerIPv6":            faker.IPv6,
		"fakerMacAddress":      faker.MacAddress,
		"fakerWord":            faker.Word,
		"fakerSentence":        faker.Sentence,
		"fakerParagraph":       faker.Paragraph,
		"fakerTimezone":        faker.Timezone,
		"fakerUnixTime":        faker.UnixTime,
	}

	tm := make(template.FuncMap)
	maps.Copy(tm, sprig.FuncMap())
	maps.Copy(tm, fns)
	return tm
}

func init() {
	DefaultRegistry.MustRegister(TemplateTransformerDefinition)
}
