package models

import (
	"bytes"
	"encoding/json"
)

// Opt is an optional value: either present with a value or absent.
// JSON null and a missing key both decode to absent.
type Opt[T any] struct {
	value T
	ok    bool
}

// Some returns a present Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, ok: true}
}

// None returns an absent Opt.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSet reports whether a value is present.
func (o Opt[T]) IsSet() bool {
	return o.ok
}

// OrElse returns the value if present, otherwise def.
func (o Opt[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
