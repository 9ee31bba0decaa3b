package item

import (
	"encoding/json"
	"fmt"
)

// PayloadCodec serializes a stack into the opaque bytes stored inside a
// container record. encoding/json sorts map keys, so equal stacks always
// produce identical bytes.
type PayloadCodec struct{}

func (PayloadCodec) MarshalPayload(s *Stack) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("nil stack")
	}
	return json.Marshal(s)
}

func (PayloadCodec) UnmarshalPayload(b []byte) (*Stack, error) {
	var s Stack
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("stack payload: %w", err)
	}
	if s.IsEmpty() {
		return nil, fmt.Errorf("stack payload: empty stack %q x%d", s.Material, s.Amount)
	}
	return &s, nil
}
