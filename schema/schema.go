package schema

import "encoding/json"

// Schema is the payload carried by messages, tool inputs and tool outputs
type Schema interface {
	String() string
}

// Stringify renders a schema for a model prompt. Text schemas are passed through,
// everything else is encoded as JSON.
func Stringify(s Schema) string {
	if s == nil {
		return ""
	}
	switch v := s.(type) {
	case String:
		return string(v)
	case *String:
		return string(*v)
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

// ToBytes returns the raw bytes of a schema
func ToBytes(s Schema) []byte {
	return []byte(Stringify(s))
}
