package types

import (
	"bytes"
	"encoding/json"
)

// NullableString tracks whether a string field was present in a PATCH body
// and, if so, whether it was explicitly null.
type NullableString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	n.Set = true
	if bytes.Equal(trimmed, []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// Apply overwrites *dst when the field was present in the body.
func (n NullableString) Apply(dst **string) {
	if !n.Set {
		return
	}
	if n.Value == nil {
		*dst = nil
		return
	}
	v := *n.Value
	*dst = &v
}
