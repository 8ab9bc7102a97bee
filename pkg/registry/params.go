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

package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ParamType is the closed set of parameter kinds a tool may declare.
type ParamType int

const (
	ParamText ParamType = iota
	ParamInteger
	ParamFloat
	ParamBoolean
	ParamChoice
	ParamList
)

func (p ParamType) String() string {
	switch p {
	case ParamText:
		return "text"
	case ParamInteger:
		return "integer"
	case ParamFloat:
		return "float"
	case ParamBoolean:
		return "boolean"
	case ParamChoice:
		return "choice"
	case ParamList:
		return "list"
	default:
		return "unknown"
	}
}

// ParamSpec declares one tool parameter. Validation is driven by the
// Type tag, not by runtime type inspection.
type ParamSpec struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     string
	Choices     []string
}

var (
	// ErrMissingParam means a required parameter had no value and no default.
	ErrMissingParam = errors.New("missing required parameter")
	// ErrUnknownParam means the caller supplied a parameter no spec declares.
	ErrUnknownParam = errors.New("unknown parameter")
	// ErrInvalidParam means a value failed its type's validation.
	ErrInvalidParam = errors.New("invalid parameter value")
)

// Values holds resolved, typed parameter values keyed by name.
type Values map[string]interface{}

// String returns the named text/choice value, or "" when absent.
func (v Values) String(name string) string {
	if s, ok := v[name].(string); ok {
		return s
	}

	return ""
}

// Int returns the named integer value, or 0 when absent.
func (v Values) Int(name string) int {
	if i, ok := v[name].(int); ok {
		return i
	}

	return 0
}

// Float returns the named float value, or 0 when absent.
func (v Values) Float(name string) float64 {
	if f, ok := v[name].(float64); ok {
		return f
	}

	return 0
}

// Bool returns the named boolean value, or false when absent.
func (v Values) Bool(name string) bool {
	if b, ok := v[name].(bool); ok {
		return b
	}

	return false
}

// Strings returns the named list value, or nil when absent.
func (v Values) Strings(name string) []string {
	if l, ok := v[name].([]string); ok {
		return l
	}

	return nil
}

// Resolve validates raw string inputs against the specs and produces
// typed values. Defaults fill absent parameters; unknown names are
// rejected.
func Resolve(specs []ParamSpec, raw map[string]string) (Values, error) {
	byName := make(map[string]ParamSpec, len(specs))
	for _, spec := range specs {
		byName[spec.Name] = spec
	}

	for name := range raw {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
		}
	}

	values := make(Values, len(specs))

	for _, spec := range specs {
		input, supplied := raw[spec.Name]
		if !supplied || input == "" {
			if spec.Default == "" {
				if spec.Required {
					return nil, fmt.Errorf("%w: %q", ErrMissingParam, spec.Name)
				}

				continue
			}

			input = spec.Default
		}

		value, err := resolveOne(spec, input)
		if err != nil {
			return nil, err
		}

		values[spec.Name] = value
	}

	return values, nil
}

func resolveOne(spec ParamSpec, input string) (interface{}, error) {
	switch spec.Type {
	case ParamText:
		return input, nil

	case ParamInteger:
		i, err := strconv.Atoi(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer for %q", ErrInvalidParam, input, spec.Name)
		}

		return i, nil

	case ParamFloat:
		f, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number for %q", ErrInvalidParam, input, spec.Name)
		}

		return f, nil

	case ParamBoolean:
		b, err := strconv.ParseBool(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean for %q", ErrInvalidParam, input, spec.Name)
		}

		return b, nil

	case ParamChoice:
		for _, choice := range spec.Choices {
			if input == choice {
				return input, nil
			}
		}

		return nil, fmt.Errorf("%w: %q is not one of %v for %q",
			ErrInvalidParam, input, spec.Choices, spec.Name)

	case ParamList:
		parts := strings.Split(input, ",")

		items := make([]string, 0, len(parts))

		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				items = append(items, trimmed)
			}
		}

		return items, nil

	default:
		return nil, fmt.Errorf("%w: unsupported type for %q", ErrInvalidParam, spec.Name)
	}
}
