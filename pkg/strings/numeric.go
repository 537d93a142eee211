package strings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NumericString decodes both JSON numbers and JSON strings, ids are numeric on some endpoints and textual on others.
type NumericString string

func (s *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = NumericString(strings.TrimSpace(str))
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("decode numeric string: %w", err)
	}

	*s = NumericString(num.String())
	return nil
}

func (s NumericString) String() string {
	return string(s)
}
