package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// unspecifiedToken is how a line without a chosen size is persisted.
const unspecifiedToken = "-"

// Size is the size token carried by a cart line. It is either a number picked
// from a product's size list, a free-form string token, or unspecified.
// Numeric and string tokens never compare equal, so 9 and "9" are different
// sizes. The zero value is the unspecified size.
type Size struct {
	token   string
	numeric bool
}

// UnspecifiedSize is the sentinel used when no size was chosen.
var UnspecifiedSize = Size{}

// NumericSize returns a numeric size token.
func NumericSize(v float64) Size {
	return Size{token: strconv.FormatFloat(v, 'f', -1, 64), numeric: true}
}

// StringSize returns a string size token. An empty string or "-" yields
// UnspecifiedSize.
func StringSize(s string) Size {
	if s == "" || s == unspecifiedToken {
		return UnspecifiedSize
	}
	return Size{token: s}
}

// IsUnspecified reports whether no size was chosen.
func (s Size) IsUnspecified() bool {
	return s == UnspecifiedSize
}

// IsNumeric reports whether the token is a number.
func (s Size) IsNumeric() bool {
	return s.numeric
}

func (s Size) String() string {
	if s.IsUnspecified() {
		return unspecifiedToken
	}
	return s.token
}

// MarshalJSON writes numeric sizes as JSON numbers and everything else as
// JSON strings.
func (s Size) MarshalJSON() ([]byte, error) {
	if s.numeric {
		return []byte(s.token), nil
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a JSON number or a JSON string. A JSON null decodes
// to UnspecifiedSize.
func (s *Size) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("size: empty value")
	}
	if bytes.Equal(data, []byte("null")) {
		*s = UnspecifiedSize
		return nil
	}

	switch c := data[0]; {
	case c == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("size: %w", err)
		}
		*s = StringSize(str)
		return nil
	case c == '-' || (c >= '0' && c <= '9'):
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("size: %w", err)
		}
		*s = NumericSize(v)
		return nil
	default:
		return fmt.Errorf("size: unsupported token %s", data)
	}
}
