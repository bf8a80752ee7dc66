package model

import "encoding/json"

// Optional holds a value together with whether it was provided at all.
// Decoding JSON marks the field as set even when the value is null.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

// ItemPatch is a sparse item update; unset fields are left untouched.
// Notes set to null clears the notes.
type ItemPatch struct {
	Title    Optional[string]   `json:"title"`
	Kind     Optional[Kind]     `json:"kind"`
	Status   Optional[Status]   `json:"status"`
	Priority Optional[Priority] `json:"priority"`
	Notes    Optional[*string]  `json:"notes"`
}

