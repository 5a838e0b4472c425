// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package envflag provides a wrapper around the standard flag package, allowing
// flags to be overridden by environment variables.
package envflag

import (
	"flag"
	"strconv"
)

// Type is a constraint that permits only types supported by envflag package.
type Type interface {
	int | int64 | float64 | bool | string
}

// Value sets up a flag with the given name, default value, and usage
// information.
//
// If the environment variable specified by envName is set, it overrides the
// flag's default value.
func Value[T Type](
	name, envName string, value T, usage string,
	fs *flag.FlagSet, getenv func(string) string,
) *T {
	var result T

	envValue := getenv(envName)
	if envValue != "" {
		// Try to parse the environment variable into the appropriate type.
		switch any(value).(type) {
		case int:
			if parsed, err := strconv.Atoi(envValue); err == nil {
				result = any(parsed).(T)
			} else {
				result = value
			}
		case int64:
			if parsed, err := strconv.ParseInt(envValue, 10, 64); err == nil {
				result = any(parsed).(T)
			} else {
				result = value
			}
		case float64:
			if parsed, err := strconv.ParseFloat(envValue, 64); err == nil {
				result = any(parsed).(T)
			} else {
				result = value
			}
		case bool:
			if parsed, err := strconv.ParseBool(envValue); err == nil {
				result = any(parsed).(T)
			} else {
				result = value
			}
		case string:
			result = any(envValue).(T)
		default:
			result = value
		}
	} else {
		result = value
	}

	switch p := any(&result).(type) {
	case *int:
		fs.IntVar(p, name, *p, usage)
	case *int64:
		fs.Int64Var(p, name, *p, usage)
	case *float64:
		fs.Float64Var(p, name, *p, usage)
	case *bool:
		fs.BoolVar(p, name, *p, usage)
	case *string:
		fs.StringVar(p, name, *p, usage)
	}

	return &result
}
