package schema

import "strings"

// String is a plain text schema
type String string

func NewString(v string) *String {
	s := String(v)
	return &s
}

func (s String) String() string {
	return string(s)
}

// IsBlank reports whether the text is empty or whitespace only
func (s String) IsBlank() bool {
	return strings.TrimSpace(string(s)) == ""
}

func (s *String) Unmarshal(bs []byte) error {
	*s = String(bs)
	return nil
}
