package bridge

import (
	"encoding/json"

	"connectrpc.com/connect"
	"github.com/pkg/errors"
)

// CodecName is the codec every bridge handler and client speaks.
const CodecName = "json"

// Codec is a connect codec over plain encoding/json, so messages need not
// be protobuf types.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal bridge message")
	}
	return data, nil
}

// MarshalStable lets connect use the codec for GET requests.
func (c Codec) MarshalStable(msg any) ([]byte, error) {
	return c.Marshal(msg)
}

func (Codec) IsBinary() bool { return false }

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		data = []byte("[]")
	}
	if err := json.Unmarshal(data, msg); err != nil {
		var be *Error
		if errors.As(err, &be) {
			return be
		}
		return InvalidTarget("malformed bridge message: %v", err)
	}
	return nil
}
