package codec

import (
	"github.com/bytedance/sonic"
)

// api is the shared JSON codec. ConfigStd keeps encoding/json semantics
// (json.RawMessage, Unmarshaler, field order) so wire text stays predictable.
var api = sonic.ConfigStd

// Marshal encodes v with the shared codec.
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalString encodes v and returns it as wire text.
func MarshalString(v any) (string, error) {
	return api.MarshalToString(v)
}

// Unmarshal decodes data into v with the shared codec.
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// UnmarshalString decodes text into v without copying it into a byte slice.
func UnmarshalString(text string, v any) error {
	return api.UnmarshalFromString(text, v)
}
