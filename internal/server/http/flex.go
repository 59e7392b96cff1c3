package httpserver

import (
	"strconv"
	"strings"
)

// flexFloat accepts a JSON number or a numeric string. KOReader plugins have
// shipped both over the years; unparseable values decode to zero rather than
// failing the whole push.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}
