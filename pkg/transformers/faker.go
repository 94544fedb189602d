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

	"github.com/go-faker/faker/v4"
	"github.com/go-faker/faker/v4/pkg/options"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

type FakerFunc func(opts ...options.OptionFunc) string

type fakerKind struct {
	Description string
	Generator   FakerFunc
}

// fakerKinds lists the generated-identity transformers. Each entry becomes a
// registry definition of its own, so rules refer to them directly by kind
// ("email", "first_name", ...). The generated value replaces the original
// without regard to its length.
var fakerKinds = map[string]*fakerKind{
	"first_name": {
		Generator:   faker.FirstName,
		Description: "Replace the value with a random first name.",
	},
	"last_name": {
		Generator:   faker.LastName,
		Description: "Replace the value with a random last name.",
	},
	"full_name": {
		Generator:   faker.Name,
		Description: "Replace the value with a random full name.",
	},
	"email": {
		Generator:   faker.Email,
		Description: "Replace the value with a random email address.",
	},
	"username": {
		Generator:   faker.Username,
		Description: "Replace the value with a random username.",
	},
	"password": {
		Generator:   faker.Password,
		Description: "Replace the value with a random password string.",
	},
	"phone_number": {
		Generator:   faker.Phonenumber,
		Description: "Replace the value with a random phone number.",
	},
	"e164_phone_number": {
		Generator:   faker.E164PhoneNumber,
		Description: "Replace the value with a random E.164 formatted phone number.",
	},
	"credit_card_number": {
		Generator:   faker.CCNumber,
		Description: "Replace the value with a random credit card number.",
	},
	"credit_card_type": {
		Generator:   faker.CCType,
		Description: "Replace the value with a random credit card type.",
	},
	"currency": {
		Generator:   faker.Currency,
		Description: "Replace the value with a random currency code.",
	},
	"url": {
		Generator:   faker.URL,
		Description: "Replace the value with a random URL.",
	},
	"domain_name": {
		Generator:   faker.DomainName,
		Description: "Replace the value with a random domain name.",
	},
	"ipv4": {
		Generator:   faker.IPv4,
		Description: "Replace the value with a random IPv4 address.",
	},
	"ipv6": {
		Generator:   faker.IPv6,
		Description: "Replace the value with a random IPv6 address.",
	},
	"mac_address": {
		Generator:   faker.MacAddress,
		Description: "Replace the value with a random MAC address.",
	},
	"word": {
		Generator:   faker.Word,
		Description: "Replace the value with a random word.",
	},
	"sentence": {
		Generator:   faker.Sentence,
		Description: "Replace the value with a random sentence.",
	},
	"paragraph": {
		Generator:   faker.Paragraph,
		Description: "Replace the value with a random paragraph.",
	},
	"timezone": {
		Generator:   faker.Timezone,
		Description: "Replace the value with a random timezone name.",
	},
	"unix_time": {
		Generator: func(opts ...options.OptionFunc) string {
			return fmt.Sprintf("%d", faker.UnixTime())
		},
		Description: "Replace the value with a random Unix timestamp.",
	},
}

// FakerTransformer generates a synthetic value and coerces it back to the
// kind of the column it replaces, so a credit card number lands as a number
// in numeric columns and as text in text columns.
type FakerTransformer struct {
	rowkit.Binding
	generate FakerFunc
}

func makeNewFakerTransformer(generate FakerFunc) NewTransformerFunc {
	return func(table, column string, _ Params) (rowkit.Transformer, error) {
		return &FakerTransformer{
			Binding:  rowkit.NewBinding(table, column),
			generate: generate,
		}, nil
	}
}

func (t *FakerTransformer) Transform(c rowkit.Column) (rowkit.Column, error) {
	if c.Kind() == rowkit.KindNone {
		return c, nil
	}
	return coerceColumn(c.Name(), c.Kind(), t.generate())
}

func init() {
	for name, def := range fakerKinds {
		DefaultRegistry.MustRegister(NewDefinition(
			name,
			def.Description,
			makeNewFakerTransformer(def.Generator),
		))
	}
}
