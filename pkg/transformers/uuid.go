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
	"fmt"

	"github.com/google/uuid"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

const UuidTransformerName = "uuid"

var UuidTransformerDefinition = NewDefinition(
	UuidTransformerName,
	"Replace the value with a UUID. Random version 4 by default; with "+
		"deterministic: true equal inputs map to the same version 5 UUID, "+
		"derived from the salt and namespace parameters.",
	NewUuidTransformer,
)

type UuidTransformer struct {
	rowkit.Binding
	deterministic bool
	namespace     uuid.UUID
	salt          string
}

func NewUuidTransformer(table, column string, params Params) (rowkit.Transformer, error) {
	t := &UuidTransformer{
		Binding:       rowkit.NewBinding(table, column),
		deterministic: params.Bool("deterministic", false),
		namespace:     uuid.NameSpaceOID,
		salt:          params.String("salt", ""),
	}

	if params.Has("namespace") {
		ns, err := uuid.Parse(params.String("namespace", ""))
		if err != nil {
			return nil, fmt.Errorf("bad namespace parameter: %w", err)
		}
		t.namespace = ns
	}

	return t, nil
}

func (ut *UuidTransformer) Transform(c rowkit.Column) (rowkit.Column, error) {
	switch c.Kind() {
	case rowkit.KindString:
		v, _ := c.StringValue()
		out, err := ut.generate(v)
		if err != nil {
			return rowkit.Column{}, err
		}
		return rowkit.NewStringColumn(c.Name(), out), nil
	case rowkit.KindNone:
		return c, nil
	default:
		return rowkit.Column{}, fmt.Errorf("uuid requires a text value, column %q holds %s", c.Name(), c.Kind())
	}
}

func (ut *UuidTransformer) generate(v string) (string, error) {
	if ut.deterministic {
		return uuid.NewSHA1(ut.namespace, []byte(ut.salt+v)).String(), nil
	}
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("unable to generate random uuid: %w", err)
	}
	return u.String(), nil
}

func init() {
	DefaultRegistry.MustRegister(UuidTransformerDefinition)
}
