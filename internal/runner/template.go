package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/infracollect/dicomcheck/internal/engine"
)

// BuildVariables returns the variables available to ${VAR} references in a
// run configuration: ARCHIVE_NAME, RUN_DATE_ISO8601, RUN_DATE_RFC3339 and
// every environment variable named in allowedEnv. An allowed variable that is
// not set is an error.
func BuildVariables(archivePath string, now time.Time, allowedEnv []string) (map[string]string, error) {
	now = now.UTC()
	variables := map[string]string{
		"ARCHIVE_NAME":     BaseName(archivePath),
		"RUN_DATE_ISO8601": now.Format(engine.ISO8601Basic),
		"RUN_DATE_RFC3339": now.Format(time.RFC3339),
	}

	var errs error
	for _, envName := range allowedEnv {
		val, ok := os.LookupEnv(envName)
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("environment variable %q is not set", envName))
			continue
		}
		variables[envName] = val
	}

	if errs != nil {
		return nil, errs
	}

	return variables, nil
}

// BaseName is the archive's file name without its final extension.
func BaseName(archivePath string) string {
	base := filepath.Base(archivePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ExpandTemplates walks the struct pointed to by in and expands ${VAR}
// references in place. string and *string fields are expanded only when
// tagged `template` (`template:"-"` skips them); map[string]string values are
// always expanded; nested structs and non-nil struct pointers are explored.
// Unexported fields are skipped.
func ExpandTemplates[T any](in *T, variables map[string]string) error {
	if in == nil {
		return nil
	}
	v := reflect.ValueOf(in).Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("ExpandTemplates expects *struct; got *%s", v.Type())
	}
	return expandStructInPlace(v, variables)
}

func expandStructInPlace(v reflect.Value, variables map[string]string) error {
	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		field := v.Field(i)
		tag, hasTemplate := sf.Tag.Lookup("template")
		expandable := hasTemplate && tag != "-"

		switch field.Kind() {
		case reflect.String:
			if !expandable {
				continue
			}
			expanded, err := Expand(field.String(), variables)
			if err != nil {
				return fmt.Errorf("%s: %w", sf.Name, err)
			}
			field.SetString(expanded)

		case reflect.Ptr:
			if field.IsNil() {
				continue
			}
			elem := field.Elem()
			switch elem.Kind() {
			case reflect.String:
				if !expandable {
					continue
				}
				expanded, err := Expand(elem.String(), variables)
				if err != nil {
					return fmt.Errorf("%s: %w", sf.Name, err)
				}
				newPtr := reflect.New(elem.Type())
				newPtr.Elem().SetString(expanded)
				field.Set(newPtr)
			case reflect.Struct:
				if err := expandStructInPlace(elem, variables); err != nil {
					return err
				}
			}

		case reflect.Map:
			if field.IsNil() || field.Type().Key().Kind() != reflect.String || field.Type().Elem().Kind() != reflect.String {
				continue
			}
			expanded, err := ExpandMap(field.Interface().(map[string]string), variables)
			if err != nil {
				return fmt.Errorf("%s: %w", sf.Name, err)
			}
			field.Set(reflect.ValueOf(expanded))

		case reflect.Struct:
			if err := expandStructInPlace(field, variables); err != nil {
				return err
			}
		}
	}
	return nil
}

// Expand replaces ${VAR} references in value. Referencing a variable that is
// not in variables is an error.
func Expand(value string, variables map[string]string) (string, error) {
	var errs error

	result := os.Expand(value, func(key string) string {
		if val, ok := variables[key]; ok {
			return val
		}
		errs = errors.Join(errs, fmt.Errorf("variable %q is not defined or not in the allowed list", key))
		return ""
	})

	if errs != nil {
		return "", errs
	}

	return result, nil
}

// ExpandMap expands all values in a map[string]string.
func ExpandMap(values map[string]string, variables map[string]string) (map[string]string, error) {
	if values == nil {
		return nil, nil
	}

	result := make(map[string]string, len(values))
	var errs error

	for k, v := range values {
		expanded, err := Expand(v, variables)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		result[k] = expanded
	}

	if errs != nil {
		return nil, errs
	}

	return result, nil
}
