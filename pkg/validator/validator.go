package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ValidateStruct validates a struct based on validate tags.
// Supported rules: required, min=N, max=N, oneof=a b c.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return errors.New("not a struct")
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i)
		tag := field.Tag.Get("validate")

		if tag == "" {
			continue
		}

		name := field.Name
		if jsonTag := field.Tag.Get("json"); jsonTag != "" && jsonTag != "-" {
			name = strings.Split(jsonTag, ",")[0]
		}

		// Parse validate tag
		rules := strings.Split(tag, ",")
		for _, rule := range rules {
			if err := validateField(name, value, rule); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateField validates a single field based on a rule
func validateField(fieldName string, value reflect.Value, rule string) error {
	switch {
	case rule == "required":
		if isZero(value) {
			return fmt.Errorf("%s is required", fieldName)
		}
	case strings.HasPrefix(rule, "min="):
		limit, err := strconv.Atoi(strings.TrimPrefix(rule, "min="))
		if err != nil {
			return fmt.Errorf("invalid rule %q on %s", rule, fieldName)
		}
		switch value.Kind() {
		case reflect.String:
			if len(value.String()) < limit {
				return fmt.Errorf("%s must be at least %d characters", fieldName, limit)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if value.Int() < int64(limit) {
				return fmt.Errorf("%s must be at least %d", fieldName, limit)
			}
		}
	case strings.HasPrefix(rule, "max="):
		limit, err := strconv.Atoi(strings.TrimPrefix(rule, "max="))
		if err != nil {
			return fmt.Errorf("invalid rule %q on %s", rule, fieldName)
		}
		switch value.Kind() {
		case reflect.String:
			if len(value.String()) > limit {
				return fmt.Errorf("%s must be at most %d characters", fieldName, limit)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if value.Int() > int64(limit) {
				return fmt.Errorf("%s must be at most %d", fieldName, limit)
			}
		}
	case strings.HasPrefix(rule, "oneof="):
		if value.Kind() != reflect.String || value.String() == "" {
			return nil
		}
		options := strings.Fields(strings.TrimPrefix(rule, "oneof="))
		for _, opt := range options {
			if value.String() == opt {
				return nil
			}
		}
		return fmt.Errorf("%s must be one of %s", fieldName, strings.Join(options, ", "))
	}
	return nil
}

// isZero checks if a value is zero/empty
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil() || (v.Kind() != reflect.Ptr && v.Kind() != reflect.Interface && v.Len() == 0)
	default:
		return false
	}
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// SanitizeString sanitizes a string by removing potentially dangerous characters
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")
	// Trim whitespace
	s = strings.TrimSpace(s)
	return s
}

// SanitizeFields sanitizes every key and value of a field map
func SanitizeFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		key := SanitizeString(k)
		if key == "" {
			continue
		}
		out[key] = SanitizeString(v)
	}
	return out
}

// UnknownFields returns the keys of fields that are not in allowed, sorted
func UnknownFields(fields map[string]string, allowed []string) []string {
	permitted := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		permitted[a] = struct{}{}
	}

	var unknown []string
	for k := range fields {
		if _, ok := permitted[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// MissingFields returns the required keys that are absent or blank, in order
func MissingFields(fields map[string]string, required []string) []string {
	var missing []string
	for _, r := range required {
		if ValidateRequired(r, fields[r]) != nil {
			missing = append(missing, r)
		}
	}
	return missing
}
