/*
 * Copyright 2025 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package mod_registry

import (
	"errors"
	"fmt"

	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_mod "github.com/qavs/qavs-mod-manager/pkg/models/mod"
	"gopkg.in/yaml.v3"
)

const (
	manifestVersion = 1
	typeKey         = "type"
)

type manifestDoc struct {
	Version int         `yaml:"version"`
	App     string      `yaml:"app"`
	Mods    []yaml.Node `yaml:"mods"`
}

type entryBase struct {
	Type string `yaml:"type"`
}

// Converter dispatches manifest entries to the config provider named by their type discriminator.
type Converter struct {
	providers map[string]ConfigProvider
}

func NewConverter() *Converter {
	return &Converter{providers: make(map[string]ConfigProvider)}
}

func (c *Converter) Register(provider ConfigProvider) error {
	t := provider.Type()
	if t == "" {
		return models_error.NewConfigurationError(errors.New("provider type must not be empty"))
	}
	if _, ok := c.providers[t]; ok {
		return models_error.NewConfigurationError(fmt.Errorf("provider type '%s' already registered", t))
	}
	c.providers[t] = provider
	return nil
}

func (c *Converter) DecodeEntry(yn *yaml.Node) (*models_mod.Mod, error) {
	var base entryBase
	if err := yn.Decode(&base); err != nil {
		return nil, models_error.NewSchemaError(err)
	}
	provider, ok := c.providers[base.Type]
	if !ok {
		return nil, models_error.NewSchemaError(fmt.Errorf("unknown mod type '%s'", base.Type))
	}
	mod, err := provider.DecodeEntry(yn)
	if err != nil {
		return nil, models_error.NewSchemaError(err)
	}
	if mod.ID == "" {
		return nil, models_error.NewSchemaError(errors.New("missing mod id"))
	}
	mod.Type = base.Type
	return mod, nil
}

func (c *Converter) EncodeEntry(mod *models_mod.Mod) (*yaml.Node, error) {
	provider, ok := c.providers[mod.Type]
	if !ok {
		return nil, models_error.NewSchemaError(fmt.Errorf("unknown mod type '%s'", mod.Type))
	}
	doc, err := provider.EncodeEntry(mod)
	if err != nil {
		return nil, err
	}
	var yn yaml.Node
	if err = yn.Encode(doc); err != nil {
		return nil, err
	}
	if yn.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("provider '%s' produced invalid entry", mod.Type)
	}
	yn.Content = append([]*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: typeKey},
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: mod.Type},
	}, yn.Content...)
	return &yn, nil
}

// Decode returns the readable mods of a manifest document together with the errors of skipped entries.
func (c *Converter) Decode(data []byte) ([]*models_mod.Mod, []error, error) {
	var doc manifestDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, models_error.NewParseError(err)
	}
	var mods []*models_mod.Mod
	var errs []error
	for i := range doc.Mods {
		mod, err := c.DecodeEntry(&doc.Mods[i])
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		mods = append(mods, mod)
	}
	return mods, errs, nil
}

func (c *Converter) Encode(app string, mods []*models_mod.Mod) ([]byte, error) {
	doc := manifestDoc{
		Version: manifestVersion,
		App:     app,
		Mods:    make([]yaml.Node, 0, len(mods)),
	}
	for _, mod := range mods {
		yn, err := c.EncodeEntry(mod)
		if err != nil {
			return nil, err
		}
		doc.Mods = append(doc.Mods, *yn)
	}
	return yaml.Marshal(&doc)
}
