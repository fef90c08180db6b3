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
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	// CustomEnvVar overrides the generated environment variable name
	CustomEnvVar string
	// CustomFlag overrides the generated command line flag name
	CustomFlag string
	Type       PluginOptionType
}

type PluginEntry struct {
	NewFromOptionsFunc func() Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

// EnvPrefix is prepended to generated plugin environment variable names
const EnvPrefix = "BALLOT_DATABASE_"

var (
	pluginEntries []PluginEntry
	registryMutex sync.Mutex
)

// Register adds a plugin to the registry. It is normally called from the
// init() function of the plugin package.
func Register(pluginEntry PluginEntry) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns the registered plugins of the given type
func GetPlugins(pluginType PluginType) []PluginEntry {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	ret := []PluginEntry{}
	for _, p := range pluginEntries {
		if p.Type == pluginType {
			ret = append(ret, p)
		}
	}
	return ret
}

// GetPlugin returns a new instance of the named plugin, or nil if no such
// plugin is registered
func GetPlugin(pluginType PluginType, name string) Plugin {
	registryMutex.Lock()
	var newFunc func() Plugin
	for _, p := range pluginEntries {
		if p.Type == pluginType && p.Name == name {
			newFunc = p.NewFromOptionsFunc
			break
		}
	}
	registryMutex.Unlock()
	if newFunc == nil {
		return nil
	}
	return newFunc()
}

func (p PluginEntry) flagName(opt PluginOption) string {
	if opt.CustomFlag != "" {
		return opt.CustomFlag
	}
	return fmt.Sprintf("%s-%s-%s", PluginTypeName(p.Type), p.Name, opt.Name)
}

func (p PluginEntry) envVarName(opt PluginOption) string {
	if opt.CustomEnvVar != "" {
		return opt.CustomEnvVar
	}
	return strings.ToUpper(
		strings.ReplaceAll(
			EnvPrefix+PluginTypeName(p.Type)+"_"+p.Name+"_"+opt.Name,
			"-",
			"_",
		),
	)
}

// PopulateCmdlineOptions adds a flag for each plugin option to the flag set
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			name := p.flagName(opt)
			switch opt.Type {
			case PluginOptionTypeString:
				dest, ok := opt.Dest.(*string)
				if !ok {
					return fmt.Errorf("option %s: destination is not *string", name)
				}
				def, _ := opt.DefaultValue.(string)
				fs.StringVar(dest, name, def, opt.Description)
			case PluginOptionTypeBool:
				dest, ok := opt.Dest.(*bool)
				if !ok {
					return fmt.Errorf("option %s: destination is not *bool", name)
				}
				def, _ := opt.DefaultValue.(bool)
				fs.BoolVar(dest, name, def, opt.Description)
			case PluginOptionTypeInt:
				dest, ok := opt.Dest.(*int)
				if !ok {
					return fmt.Errorf("option %s: destination is not *int", name)
				}
				def, _ := opt.DefaultValue.(int)
				fs.IntVar(dest, name, def, opt.Description)
			case PluginOptionTypeUint:
				dest, ok := opt.Dest.(*uint64)
				if !ok {
					return fmt.Errorf("option %s: destination is not *uint64", name)
				}
				def, _ := opt.DefaultValue.(uint64)
				fs.Uint64Var(dest, name, def, opt.Description)
			default:
				return fmt.Errorf("option %s: unknown type %d", name, opt.Type)
			}
		}
	}
	return nil
}

// ProcessEnvVars sets plugin options from environment variables of the form
// BALLOT_DATABASE_<TYPE>_<PLUGIN>_<OPTION>
func ProcessEnvVars() error {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			envVar := p.envVarName(opt)
			raw, ok := os.LookupEnv(envVar)
			if !ok {
				continue
			}
			val, err := opt.parseString(raw)
			if err != nil {
				return fmt.Errorf("environment variable %s: %w", envVar, err)
			}
			if err := opt.assign(val); err != nil {
				return fmt.Errorf("environment variable %s: %w", envVar, err)
			}
		}
	}
	return nil
}

// ProcessConfig sets plugin options from the config file. The map is keyed
// by plugin type name, then plugin name, then option name.
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	for _, p := range pluginEntries {
		typeConfig, ok := pluginConfig[PluginTypeName(p.Type)]
		if !ok {
			continue
		}
		optConfig, ok := typeConfig[p.Name]
		if !ok {
			continue
		}
		for _, opt := range p.Options {
			raw, ok := optConfig[opt.Name]
			if !ok {
				continue
			}
			val, err := opt.normalize(raw)
			if err != nil {
				return fmt.Errorf(
					"%s plugin %s option %s: %w",
					PluginTypeName(p.Type),
					p.Name,
					opt.Name,
					err,
				)
			}
			if err := opt.assign(val); err != nil {
				return fmt.Errorf(
					"%s plugin %s option %s: %w",
					PluginTypeName(p.Type),
					p.Name,
					opt.Name,
					err,
				)
			}
		}
	}
	return nil
}

func (o PluginOption) parseString(raw string) (any, error) {
	switch o.Type {
	case PluginOptionTypeString:
		return raw, nil
	case PluginOptionTypeBool:
		return strconv.ParseBool(raw)
	case PluginOptionTypeInt:
		return strconv.Atoi(raw)
	case PluginOptionTypeUint:
		return strconv.ParseUint(raw, 10, 64)
	default:
		return nil, fmt.Errorf("unknown plugin option type %d", o.Type)
	}
}

// normalize converts a decoded YAML value into the type expected by assign
func (o PluginOption) normalize(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return o.parseString(v)
	case int:
		if o.Type == PluginOptionTypeString {
			return strconv.Itoa(v), nil
		}
		return v, nil
	case bool:
		if o.Type == PluginOptionTypeString {
			return strconv.FormatBool(v), nil
		}
		return v, nil
	case uint64:
		if o.Type == PluginOptionTypeInt {
			return int(v), nil //nolint:gosec
		}
		return v, nil
	default:
		return raw, nil
	}
}
