package cache

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes a cache value as MessagePack.
//
// Structs are encoded as maps keyed by field name, so new fields can be
// added to a model without invalidating records written by older versions.
func Encode(value any) ([]byte, error) {
	buf, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cache: failed to encode %T: %w", value, err)
	}
	return buf, nil
}

// Decode deserializes a MessagePack cache record into value.
//
// Fields unknown to the target type are skipped. A malformed record yields
// a *DecodeError tagged with the entity type.
func Decode(buf []byte, value any) error {
	if err := msgpack.Unmarshal(buf, value); err != nil {
		return &DecodeError{Kind: fmt.Sprintf("%T", value), Err: err}
	}
	return nil
}
