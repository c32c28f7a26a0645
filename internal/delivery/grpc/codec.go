package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName подтип content-type, под которым зарегистрирован JSON кодек
const CodecName = "json"

// jsonCodec передает модели из internal/models как JSON вместо protobuf
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
