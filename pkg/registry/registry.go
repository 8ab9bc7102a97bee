/*
 * Copyright 2026 Netbatch Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package registry exposes callable tools to front ends through an
// explicit registry value built at startup. There is no module-level
// registration table; construction order is deterministic.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/netbatch/netbatch/pkg/models"
)

var (
	// ErrToolExists means a tool with the same name is already registered.
	ErrToolExists = errors.New("tool already registered")
	// ErrToolNotFound means no tool with that name is registered.
	ErrToolNotFound = errors.New("tool not found")
	// ErrNilTool rejects registering a nil tool.
	ErrNilTool = errors.New("tool cannot be nil")
)

// Tool is one invokable unit of functionality.
type Tool interface {
	Name() string
	Description() string
	Params() []ParamSpec
	Run(ctx context.Context, values Values) (*models.BatchResult, error)
}

// Registry maps tool names to implementations.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Duplicate names are rejected.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return ErrNilTool
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name()]; exists {
		return fmt.Errorf("%w: %q", ErrToolExists, tool.Name())
	}

	r.tools[tool.Name()] = tool

	return nil
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}

	return tool, nil
}

// Invoke resolves raw parameters against the tool's specs and runs it.
func (r *Registry) Invoke(ctx context.Context, name string, raw map[string]string) (*models.BatchResult, error) {
	tool, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	values, err := Resolve(tool.Params(), raw)
	if err != nil {
		return nil, err
	}

	return tool.Run(ctx, values)
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
