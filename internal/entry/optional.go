package entry

import json "github.com/goccy/go-json"

// Optional distinguishes "field not sent" from "field sent as null" in
// partial updates: plain nullable fields collapse that distinction and break
// the update semantics (a sent field always overwrites, a missing one never
// does).
type Optional[T any] struct {
	Set   bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	return json.Unmarshal(b, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}
