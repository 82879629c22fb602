package format

import (
	"bytes"
	"encoding/json"
)

// Prune drops nil values and empty strings from maps and slices, recursively.
func Prune(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			if isEmptyValue(val) {
				continue
			}
			out[k] = Prune(val)
		}
		return out
	case []any:
		out := make([]any, 0, len(typed))
		for _, val := range typed {
			if isEmptyValue(val) {
				continue
			}
			out = append(out, Prune(val))
		}
		return out
	default:
		return v
	}
}

// PruneJSON converts v through its JSON form and prunes the result.
func PruneJSON(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic map[string]any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	pruned, _ := Prune(generic).(map[string]any)
	return pruned, nil
}

func isEmptyValue(v any) bool {
	switch typed := v.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	}
	return false
}
