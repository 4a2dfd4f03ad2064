package competition

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Count is a non-negative tally that may be left blank. A blank count is
// treated as zero by every computation but renders as an empty cell.
type Count struct {
	Value int
	Valid bool
}

// Unset is the blank count.
var Unset = Count{}

// CountOf returns a set count. Negative values are not representable and
// yield Unset.
func CountOf(n int) Count {
	if n < 0 {
		return Unset
	}
	return Count{Value: n, Valid: true}
}

// Int returns the count, or zero when unset.
func (c Count) Int() int {
	if !c.Valid {
		return 0
	}
	return c.Value
}

// String renders the count for display; unset is the empty string.
func (c Count) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.Itoa(c.Value)
}

// MarshalJSON encodes unset as null.
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(c.Value)), nil
}

// UnmarshalJSON accepts null, a number or a numeric string. Anything that does
// not parse to a non-negative integer becomes Unset.
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Unset
		return nil
	}

	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			*c = Unset
			return nil
		}
	} else {
		s = string(data)
	}

	*c = ParseCount(s)
	return nil
}

// ParseCount coerces free-form input into a Count. Leading whitespace is
// ignored and the leading run of digits is used, so "12", " 12 " and "12.7"
// all give 12. Blank, non-numeric, negative or overflowing input gives Unset;
// it is never an error.
func ParseCount(s string) Count {
	n, ok := leadingInt(s)
	if !ok || n < 0 {
		return Unset
	}
	return Count{Value: n, Valid: true}
}

// ParseWeight coerces a point multiplier. Unparsable input becomes 0;
// negative values are kept as-is.
func ParseWeight(s string) int {
	n, ok := leadingInt(s)
	if !ok {
		return 0
	}
	return n
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	end := 0
	if s[0] == '+' || s[0] == '-' {
		end = 1
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
