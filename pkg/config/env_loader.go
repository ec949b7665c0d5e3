/*
 * Copyright 2025 Carver Automation Corporation.
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

package config

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/benjameshughes/rmm/pkg/logger"
)

var (
	// ErrDstMustBeNonNilPointer indicates that the destination must be a non-nil pointer.
	ErrDstMustBeNonNilPointer = errors.New("dst must be a non-nil pointer")
	// ErrDstMustBePointerToStruct indicates that the destination must be a pointer to a struct.
	ErrDstMustBePointerToStruct = errors.New("dst must be a pointer to a struct")
)

// EnvConfigLoader overlays configuration from environment variables onto an
// already-populated struct. Nested fields use underscore separation, e.g.
// RMM_DATABASE_HOST maps to config.Database.Host.
type EnvConfigLoader struct {
	logger logger.Logger
	prefix string
}

// NewEnvConfigLoader creates a new environment variable config loader.
func NewEnvConfigLoader(log logger.Logger, prefix string) *EnvConfigLoader {
	return &EnvConfigLoader{
		logger: log,
		prefix: prefix,
	}
}

// Load implements ConfigLoader by reading from environment variables.
func (e *EnvConfigLoader) Load(_ context.Context, _ string, dst interface{}) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrDstMustBeNonNilPointer
	}

	elem := v.Elem()
	if elem.Kind() != reflect.Struct {
		return ErrDstMustBePointerToStruct
	}

	e.overlayStruct(elem, e.prefix)

	return nil
}

func (e *EnvConfigLoader) overlayStruct(v reflect.Value, prefix string) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		name := envFieldName(t.Field(i))
		if name == "" {
			continue
		}

		key := prefix + name

		switch field.Kind() {
		case reflect.Ptr:
			if field.Type().Elem().Kind() == reflect.Struct && !field.IsNil() {
				e.overlayStruct(field.Elem(), key+"_")
			}
		case reflect.Struct:
			e.overlayStruct(field, key+"_")
		default:
			raw, ok := os.LookupEnv(key)
			if !ok {
				continue
			}

			if e.setScalar(field, raw) && e.logger != nil {
				e.logger.Debug().Str("env", key).Msg("Applied environment override")
			}
		}
	}
}

func (e *EnvConfigLoader) setScalar(field reflect.Value, raw string) bool {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
		return true
	case reflect.Bool:
		val, err := strconv.ParseBool(raw)
		if err != nil {
			return false
		}

		field.SetBool(val)

		return true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return false
		}

		field.SetInt(val)

		return true
	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return false
		}

		field.SetFloat(val)

		return true
	default:
		return false
	}
}

// envFieldName derives the environment suffix from the json tag, falling back
// to the upper-cased field name.
func envFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}

	name := strings.Split(tag, ",")[0]
	if name == "" {
		name = f.Name
	}

	return strings.ToUpper(name)
}
