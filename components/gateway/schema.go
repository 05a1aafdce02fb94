package gateway

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ParametersSchema reflects a Go value into a flat JSON schema object
// suitable for provider tool definitions.
func ParametersSchema(v any) map[string]any {
	r := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(v)
	bs, err := json.Marshal(s)
	if err != nil {
		return emptyObject()
	}
	ret := make(map[string]any)
	if err := json.Unmarshal(bs, &ret); err != nil {
		return emptyObject()
	}
	delete(ret, "$schema")
	delete(ret, "$id")
	if _, ok := ret["properties"]; !ok {
		ret["properties"] = map[string]any{}
	}
	return ret
}

func emptyObject() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}
