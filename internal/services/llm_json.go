package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

func parseJSONResponse(response string, target interface{}) error {
	// LLM output may be wrapped in markdown
	jsonStr := extractJSON(response)

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

// extractJSON strips markdown fences and surrounding prose from an LLM
// response, keeping the outermost JSON object or array.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj > startObj && (startArr == -1 || startObj < startArr) {
		return text[startObj : endObj+1]
	}
	if startArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return strings.TrimSpace(text)
}

// flexString decodes a JSON string, number, bool or null into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*f = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
	default:
		*f = flexString(raw)
	}
	return nil
}

// flexStrings decodes a JSON array of scalars, a single scalar or null.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*f = flexStrings{}
		return nil
	}

	if !strings.HasPrefix(raw, "[") {
		var single flexString
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		if single == "" {
			*f = flexStrings{}
		} else {
			*f = flexStrings{string(single)}
		}
		return nil
	}

	var items []flexString
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(flexStrings, 0, len(items))
	for _, item := range items {
		if item != "" {
			out = append(out, string(item))
		}
	}
	*f = out
	return nil
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "%"))
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
