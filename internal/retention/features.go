package retention

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrConversion marks an input value that cannot be turned into a feature.
var ErrConversion = errors.New("feature conversion error")

// ConversionError carries the caller-facing message for a bad value.
type ConversionError struct {
	Message string
}

func (e *ConversionError) Error() string { return e.Message }

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

const nanMessage = "Input X contains NaN."

var (
	numericFields = []string{"satisfaction_level", "last_evaluation", "average_monthly_hours"}
	salaryLevels  = map[string]float64{"low": 0, "medium": 1, "high": 2}
)

// Features turns a raw employee record into a vector ordered like columns.
// Fields the model does not know are ignored; model columns missing from
// the record are zero.
func Features(data map[string]any, columns []string) ([]float64, error) {
	values := make(map[string]any, len(data))
	for k, v := range data {
		values[k] = v
	}

	for _, field := range numericFields {
		v, ok := values[field]
		if !ok {
			continue
		}
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		values[field] = f
	}

	if v, ok := values["salary"]; ok {
		s, isString := v.(string)
		level, known := salaryLevels[s]
		if !isString || !known {
			return nil, &ConversionError{Message: nanMessage}
		}
		values["salary"] = level
	}

	if v, ok := values["department"]; ok {
		delete(values, "department")
		if v != nil {
			values["department_"+categoryName(v)] = true
		}
	}

	x := make([]float64, len(columns))
	for i, col := range columns {
		v, ok := values[col]
		if !ok {
			continue
		}
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		x[i] = f
	}
	return x, nil
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		return parseFloat(t.String())
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		return parseFloat(t)
	case nil:
		return 0, &ConversionError{Message: nanMessage}
	default:
		return 0, &ConversionError{Message: fmt.Sprintf("could not convert %T to float", v)}
	}
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &ConversionError{Message: fmt.Sprintf("could not convert string to float: '%s'", s)}
	}
	return f, nil
}

func categoryName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
