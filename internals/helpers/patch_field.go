package helper

import "encoding/json"

// PatchField distinguishes an absent key, an explicit null and a value in PATCH bodies.
type PatchField[T any] struct {
	Set   bool `json:"-"`
	Null  bool `json:"-"`
	Value *T   `json:"-"`
}

func (p *PatchField[T]) UnmarshalJSON(b []byte) error {
	p.Set = true
	if string(b) == "null" {
		p.Null = true
		p.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}

// Get returns the value and whether a non-null value was sent.
func (p PatchField[T]) Get() (T, bool) {
	var zero T
	if !p.Set || p.Null || p.Value == nil {
		return zero, false
	}
	return *p.Value, true
}
