// Copyright 2026 Blink Labs Software
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

package plugin

import (
	"errors"
	"fmt"
)

type Plugin interface {
	Start() error
	Stop() error
}

// ErrorPlugin is a plugin that always returns an error on Start()
type ErrorPlugin struct {
	Err error
}

func (e *ErrorPlugin) Start() error {
	return e.Err
}

func (e *ErrorPlugin) Stop() error {
	return nil
}

// NewErrorPlugin creates a new error plugin that returns the given error on Start()
func NewErrorPlugin(err error) Plugin {
	return &ErrorPlugin{Err: err}
}

// StartPlugin gets a plugin from the registry and starts it
func StartPlugin(pluginType PluginType, pluginName string) (Plugin, error) {
	p := GetPlugin(pluginType, pluginName)
	if p == nil {
		return nil, fmt.Errorf(
			"%s plugin '%s' not found",
			PluginTypeName(pluginType),
			pluginName,
		)
	}
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf(
			"failed to start %s plugin '%s': %w",
			PluginTypeName(pluginType),
			pluginName,
			err,
		)
	}
	return p, nil
}

// SetPluginOption sets the value of a named option for a plugin entry. This
// is used by callers that need to override plugin defaults before starting
// a plugin (for example to point data-dir at a temp dir in tests). Setting
// an option that the plugin does not have is a no-op.
// NOTE: this writes directly to the option destination without locking, so
// it must only be called before the plugin is instantiated.
func SetPluginOption(
	pluginType PluginType,
	pluginName string,
	optionName string,
	value any,
) error {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	for i := range pluginEntries {
		p := &pluginEntries[i]
		if p.Type != pluginType || p.Name != pluginName {
			continue
		}
		for _, opt := range p.Options {
			if opt.Name != optionName {
				continue
			}
			if err := opt.assign(value); err != nil {
				return fmt.Errorf("option %s: %w", optionName, err)
			}
			return nil
		}
		return nil
	}
	return fmt.Errorf(
		"plugin %s of type %s not found",
		pluginName,
		PluginTypeName(pluginType),
	)
}

var errNilDest = errors.New("nil destination")

// assign performs a type-checked assignment into the option's Dest pointer
func (o PluginOption) assign(value any) error {
	if o.Dest == nil {
		return errNilDest
	}
	switch o.Type {
	case PluginOptionTypeString:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid type %T: expected string", value)
		}
		return setDest(o.Dest, v)
	case PluginOptionTypeBool:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("invalid type %T: expected bool", value)
		}
		return setDest(o.Dest, v)
	case PluginOptionTypeInt:
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("invalid type %T: expected int", value)
		}
		return setDest(o.Dest, v)
	case PluginOptionTypeUint:
		switch tv := value.(type) {
		case uint64:
			return setDest(o.Dest, tv)
		case uint:
			return setDest(o.Dest, uint64(tv))
		case int:
			if tv < 0 {
				return errors.New("invalid value: negative int")
			}
			return setDest(o.Dest, uint64(tv))
		default:
			return fmt.Errorf("invalid type %T: expected uint64 or int", value)
		}
	default:
		return fmt.Errorf("unknown plugin option type %d", o.Type)
	}
}

func setDest[T any](dest any, val T) error {
	ptr, ok := dest.(*T)
	if !ok {
		var zero T
		return fmt.Errorf("invalid destination type %T: expected *%T", dest, zero)
	}
	if ptr == nil {
		return errNilDest
	}
	*ptr = val
	return nil
}
