package roomv1

import (
	"encoding/json"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
)

// CodecName is registered in place of connect's protobuf JSON codec, so the
// content types stay application/json and application/connect+json.
const CodecName = "json"

// Codec marshals plain Go messages as JSON.
type Codec struct{}

var _ connect.Codec = Codec{}

// Name implements connect.Codec.
func (Codec) Name() string { return CodecName }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal message")
	}
	return data, nil
}

// Unmarshal implements connect.Codec. An empty body leaves msg untouched.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return errors.Wrap(err, "failed to unmarshal message")
	}
	return nil
}

// WithJSON registers the codec on a handler or client.
func WithJSON() connect.Option {
	return connect.WithCodec(Codec{})
}
