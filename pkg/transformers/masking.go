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
	"strings"

	"github.com/ggwhite/go-masker"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

const (
	MPassword   string = "password"
	MName       string = "name"
	MAddress    string = "addr"
	MEmail      string = "email"
	MMobile     string = "mobile"
	MTelephone  string = "tel"
	MID         string = "id"
	MCreditCard string = "credit_card"
	MURL        string = "url"
	MPostcode   string = "postcode"
	MDefault    string = "default"
)

const MaskingTransformerName = "masking"

var MaskingTransformerDefinition = NewDefinition(
	MaskingTransformerName,
	"Mask the value partially, keeping its recognizable shape. "+
		"Parameter type selects the masking rule: "+
		"default, password, name, addr, email, mobile, tel, id, credit_card, url, postcode.",
	NewMaskingTransformer,
)

type maskingFunction func(val string) string

type MaskingTransformer struct {
	rowkit.Binding
	maskingFunction maskingFunction
}

func NewMaskingTransformer(table, column string, params Params) (rowkit.Transformer, error) {
	mf, err := maskingFuncFor(&masker.Masker{}, params.String("type", MDefault))
	if err != nil {
		return nil, err
	}

	return &MaskingTransformer{
		Binding:         rowkit.NewBinding(table, column),
		maskingFunction: mf,
	}, nil
}

func maskingFuncFor(m *masker.Masker, dataType string) (maskingFunction, error) {
	switch dataType {
	case MPassword:
		return m.Password, nil
	case MName:
		return m.Name, nil
	case MAddress:
		return m.Address, nil
	case MEmail:
		return m.Email, nil
	case MMobile:
		return m.Mobile, nil
	case MID:
		return m.ID, nil
	case MTelephone:
		return m.Telephone, nil
	case MCreditCard:
		return m.CreditCard, nil
	case MURL:
		return m.URL, nil
	case MPostcode:
		return postcodeMasker, nil
	case MDefault:
		return defaultMasker, nil
	default:
		return nil, fmt.Errorf("unknown masking type %q", dataType)
	}
}

func (mt *MaskingTransformer) Transform(c rowkit.Column) (rowkit.Column, error) {
	switch c.Kind() {
	case rowkit.KindString:
		v, _ := c.StringValue()
		return rowkit.NewStringColumn(c.Name(), mt.maskingFunction(v)), nil
	case rowkit.KindChar:
		return rowkit.NewCharColumn(c.Name(), '*'), nil
	case rowkit.KindNone:
		return c, nil
	default:
		return rowkit.Column{}, fmt.Errorf("masking requires a text value, column %q holds %s", c.Name(), c.Kind())
	}
}

func defaultMasker(v string) string {
	return strings.Repeat("*", len(v))
}

func postcodeMasker(v string) string {
	if len(v) <= 2 {
		return v
	}
	return v[:2] + strings.Repeat("*", len(v)-2)
}

func init() {
	DefaultRegistry.MustRegister(MaskingTransformerDefinition)
}
