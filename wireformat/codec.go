package wireformat

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
)

// Codec serializes envelopes.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var (
	// JSON is the default codec.
	JSON Codec = jsonCodec{}
	// CBOR encodes envelopes in canonical CBOR. Struct fields reuse the
	// json tags.
	CBOR Codec = newCBORCodec()
)

// ByName returns the codec registered under name.
func ByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORCodec() cborCodec {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wireformat: failed to create CBOR enc mode: %v", err))
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wireformat: failed to create CBOR dec mode: %v", err))
	}
	return cborCodec{enc: em, dec: dm}
}

func (cborCodec) Name() string                  { return "cbor" }
func (c cborCodec) Marshal(v any) ([]byte, error) { return c.enc.Marshal(v) }

func (c cborCodec) Unmarshal(data []byte, v any) error {
	if err := c.dec.Unmarshal(data, v); err != nil {
		return err
	}
	normalizeInto(v)
	return nil
}

// DecodeRequest decodes a request envelope. A malformed envelope is a
// ProtocolError; an unrecognized kind decodes to *Unknown without error.
func DecodeRequest(c Codec, data []byte) (Request, error) {
	var head struct {
		Kind Kind `json:"kind"`
	}
	if err := c.Unmarshal(data, &head); err != nil {
		return nil, malformed(c, err)
	}
	if head.Kind == "" {
		return nil, malformed(c, errors.New("missing kind"))
	}

	ctor, ok := requestTypes[head.Kind]
	if !ok {
		return &Unknown{Name: head.Kind, Raw: data}, nil
	}
	req := ctor()
	if err := c.Unmarshal(data, req); err != nil {
		return nil, &sdkerrors.ProtocolError{
			Kind: string(head.Kind),
			Err:  fmt.Errorf("malformed %s envelope: %w", head.Kind, err),
		}
	}
	return req, nil
}

// EncodeRequest encodes req with its kind field.
func EncodeRequest(c Codec, req Request) ([]byte, error) {
	if u, ok := req.(*Unknown); ok {
		return u.Raw, nil
	}
	body, err := c.Marshal(req)
	if err != nil {
		return nil, &sdkerrors.WireFormatError{Codec: c.Name(), Operation: "encode", Err: err}
	}
	fields := map[string]any{}
	if err := c.Unmarshal(body, &fields); err != nil {
		return nil, &sdkerrors.WireFormatError{Codec: c.Name(), Operation: "encode", Err: err}
	}
	fields["kind"] = string(req.Kind())
	out, err := c.Marshal(fields)
	if err != nil {
		return nil, &sdkerrors.WireFormatError{Codec: c.Name(), Operation: "encode", Err: err}
	}
	return out, nil
}

// EncodeResponse encodes resp.
func EncodeResponse(c Codec, resp Response) ([]byte, error) {
	out, err := c.Marshal(resp)
	if err != nil {
		return nil, &sdkerrors.WireFormatError{Codec: c.Name(), Operation: "encode", Err: err}
	}
	return out, nil
}

// DecodeResponse decodes a response envelope.
func DecodeResponse(c Codec, data []byte) (Response, error) {
	var resp Response
	if err := c.Unmarshal(data, &resp); err != nil {
		return Response{}, malformed(c, err)
	}
	if resp.Kind == "" {
		return Response{}, malformed(c, errors.New("missing kind"))
	}
	return resp, nil
}

func malformed(c Codec, err error) error {
	return &sdkerrors.ProtocolError{
		Err: fmt.Errorf("malformed envelope: %w", &sdkerrors.WireFormatError{Codec: c.Name(), Operation: "decode", Err: err}),
	}
}

// Convert re-decodes a dynamic value (as produced by Unmarshal into any)
// into target through the codec.
func Convert(c Codec, value any, target any) error {
	data, err := c.Marshal(value)
	if err != nil {
		return err
	}
	return c.Unmarshal(data, target)
}
