package utils

import "encoding/json"

// MapToJSON serializes v, returning "{}" on failure. Log-path helper only.
func MapToJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func JSONToMap(s string, out interface{}) error {
	return json.Unmarshal([]byte(s), out)
}
