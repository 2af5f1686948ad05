package lnrpc

import (
	"encoding/json"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

var (
	unmarshalOpts = protojson.UnmarshalOptions{DiscardUnknown: true}
	marshalOpts   = protojson.MarshalOptions{UseProtoNames: true, UseEnumNumbers: true}
)

// Encode converts a message struct into a dynamic message of the given type.
func Encode(desc protoreflect.MessageDescriptor, v any) (*dynamicpb.Message, error) {
	msg := dynamicpb.NewMessage(desc)
	if v == nil {
		return msg, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "lnrpc: encode %s", desc.Name())
	}
	if err := unmarshalOpts.Unmarshal(data, msg); err != nil {
		return nil, errors.Wrapf(err, "lnrpc: encode %s", desc.Name())
	}
	return msg, nil
}

// Decode fills the message struct v from a protobuf message.
func Decode(msg proto.Message, v any) error {
	data, err := marshalOpts.Marshal(msg)
	if err != nil {
		return errors.Wrapf(err, "lnrpc: decode %s", msg.ProtoReflect().Descriptor().Name())
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "lnrpc: decode %s", msg.ProtoReflect().Descriptor().Name())
	}
	return nil
}
