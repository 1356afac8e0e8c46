package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// StringOrNumber tolerates upstreams that flip between "0" and 0 in the same
// field across API versions.
type StringOrNumber string

func (s *StringOrNumber) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = StringOrNumber(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("StringOrNumber: %w", err)
	}
	*s = StringOrNumber(num.String())
	return nil
}

func (s StringOrNumber) String() string { return string(s) }

func (s StringOrNumber) Int64() int64 {
	v, _ := strconv.ParseInt(string(s), 10, 64)
	return v
}
