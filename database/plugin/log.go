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
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pluginLogger       *slog.Logger
	pluginPromRegistry prometheus.Registerer
	pluginEnvMutex     sync.RWMutex
)

// SetLogger sets the logger handed to plugins created from the registry
func SetLogger(logger *slog.Logger) {
	pluginEnvMutex.Lock()
	defer pluginEnvMutex.Unlock()
	pluginLogger = logger
}

// Logger returns the logger for new plugin instances. It may be nil.
func Logger() *slog.Logger {
	pluginEnvMutex.RLock()
	defer pluginEnvMutex.RUnlock()
	return pluginLogger
}

// SetPromRegistry sets the metrics registry handed to plugins created from
// the registry
func SetPromRegistry(registry prometheus.Registerer) {
	pluginEnvMutex.Lock()
	defer pluginEnvMutex.Unlock()
	pluginPromRegistry = registry
}

// PromRegistry returns the metrics registry for new plugin instances. It
// may be nil.
func PromRegistry() prometheus.Registerer {
	pluginEnvMutex.RLock()
	defer pluginEnvMutex.RUnlock()
	return pluginPromRegistry
}
