package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authgateway/internal/result"
)

var ErrMalformedReply = errors.New("malformed reply")

// Reply is the envelope of every command response.
type Reply struct {
	Data  json.RawMessage         `json:"data,omitempty"`
	Error *result.StructuredError `json:"error,omitempty"`
}

// EncodeResult turns a Result into a Reply.
func EncodeResult[T any](r result.Result[T]) (*Reply, error) {
	if !r.IsOk() {
		return &Reply{Error: r.Err()}, nil
	}
	b, err := json.Marshal(r.Value())
	if err != nil {
		return nil, fmt.Errorf("encode reply: %w", err)
	}
	return &Reply{Data: b}, nil
}

// DecodeResult turns a Reply back into a Result. A reply with both or
// neither side populated yields ErrMalformedReply.
func DecodeResult[T any](r *Reply) (result.Result[T], error) {
	if r == nil {
		return result.Result[T]{}, ErrMalformedReply
	}
	hasData := len(r.Data) > 0
	switch {
	case r.Error != nil && !hasData:
		return result.Fail[T](r.Error), nil
	case r.Error == nil && hasData:
		var v T
		if err := json.Unmarshal(r.Data, &v); err != nil {
			return result.Result[T]{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
		return result.Ok(v), nil
	default:
		return result.Result[T]{}, ErrMalformedReply
	}
}
