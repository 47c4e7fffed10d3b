package types

import "encoding/json"

// Reading is one decoded JSON snapshot of inverter metrics.
// The gateway returns a flat object; no schema is enforced beyond that,
// unknown keys are kept and passed through to consumers.
type Reading map[string]any

func (r Reading) ToJsonBytes() []byte {
	data, err := json.Marshal(r)
	if err != nil {
		return []byte("{}")
	}
	return data
}

func ReadingFromJsonBytes(data []byte) Reading {
	var r Reading
	if err := json.Unmarshal(data, &r); err != nil {
		return nil
	}
	return r
}

// Clone returns a shallow copy. Values are JSON scalars so shallow is enough.
func (r Reading) Clone() Reading {
	if r == nil {
		return nil
	}
	out := make(Reading, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
