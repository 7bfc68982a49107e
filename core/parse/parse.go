package parse

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// StringAs parses model output into a value of type T.
//
// Primitive targets (string, bool, int, uint, float) are converted with
// strconv after trimming whitespace. Complex targets go through JSON
// unmarshaling; when that fails the content is stripped of markdown code
// fences, repaired with jsonrepair, and retried before an error is returned.
//
//	type Person struct {
//		Name string `json:"name"`
//		Age  int    `json:"age"`
//	}
//
//	person, err := parse.StringAs[Person]("```json\n{name: 'John', age: 30}\n```")
func StringAs[T any](content string) (T, error) {
	var result T

	switch reflect.TypeFor[T]().Kind() {
	case reflect.String:
		reflect.ValueOf(&result).Elem().SetString(content)
		return result, nil

	case reflect.Bool:
		val, err := strconv.ParseBool(strings.TrimSpace(content))
		if err != nil {
			return result, fmt.Errorf("parse content as bool: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetBool(val)
		return result, nil

	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
		if err != nil {
			return result, fmt.Errorf("parse content as float: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetFloat(val)
		return result, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(strings.TrimSpace(content), 10, 64)
		if err != nil {
			return result, fmt.Errorf("parse content as int: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetInt(val)
		return result, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(strings.TrimSpace(content), 10, 64)
		if err != nil {
			return result, fmt.Errorf("parse content as uint: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetUint(val)
		return result, nil

	default:
		if err := json.Unmarshal([]byte(content), &result); err == nil {
			return result, nil
		}

		candidate := StripCodeFences(content)
		repaired, repairErr := jsonrepair.JSONRepair(candidate)
		if repairErr != nil {
			return result, fmt.Errorf("parse content as %T: repair failed: %w", result, repairErr)
		}
		if err := json.Unmarshal([]byte(repaired), &result); err != nil {
			return result, fmt.Errorf("parse repaired content as %T: %w (repaired: %s)", result, err, repaired)
		}
		return result, nil
	}
}

// StripCodeFences removes a surrounding markdown code fence, with or without
// a language tag, and trims whitespace. Content without a fence is returned
// trimmed.
func StripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.IndexByte(trimmed, '\n'); newline >= 0 {
		// Drop the language tag line, e.g. "json".
		trimmed = trimmed[newline+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
