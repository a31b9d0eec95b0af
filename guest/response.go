package guest

import (
	"encoding/json"

	"github.com/superfaceai/one-sdk-sub004/bytebuf"
	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

const (
	// readChunk is the max_len asked for by each stream-read.
	readChunk = 64 << 10

	statusNoContent = 204
)

// Response is the head of an HTTP response. The body stays on the host
// until one of the Body methods reads it.
type Response struct {
	client     *Client
	Headers    entities.Multimap
	body       []byte
	Status     int
	bodyStream uint32
	drained    bool
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// ContentType returns the media type of the response, lower-cased and
// without parameters.
func (r *Response) ContentType() string {
	return mediaType(r.Headers.Get("content-type"))
}

// BodyBytes reads the whole body and releases the stream. Later calls
// return the same bytes.
func (r *Response) BodyBytes() ([]byte, error) {
	if r.drained {
		return r.body, nil
	}
	if r.bodyStream == 0 {
		r.drained = true
		return nil, nil
	}

	buf := bytebuf.WithCapacity(readChunk)
	for {
		resp, err := r.client.Call(&wireformat.StreamRead{Handle: r.bodyStream, MaxLen: readChunk})
		if err != nil {
			if !sdkerrors.IsFatal(err) {
				_ = r.Close()
			}
			return nil, err
		}
		if len(resp.Data) == 0 {
			break
		}
		buf.Extend(resp.Data)
	}
	if err := r.Close(); err != nil {
		return nil, err
	}

	r.body = buf.Data()
	r.drained = true
	return r.body, nil
}

// BodyText returns the body as decoded UTF-8 text. 204 yields "".
func (r *Response) BodyText() (string, error) {
	if r.Status == statusNoContent {
		return "", r.discard()
	}
	data, err := r.BodyBytes()
	if err != nil {
		return "", err
	}
	return bytebuf.FromBytes(data).Decode(bytebuf.EncodingUTF8, r.client.coder)
}

// BodyJSON parses the body as JSON. 204 yields nil.
func (r *Response) BodyJSON() (any, error) {
	if r.Status == statusNoContent {
		return nil, r.discard()
	}
	var v any
	if err := r.DecodeJSON(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeJSON parses the body into target.
func (r *Response) DecodeJSON(target any) error {
	data, err := r.BodyBytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &sdkerrors.ContentTypeError{ContentType: r.Headers.Get("content-type"), Reason: "invalid JSON body: " + err.Error()}
	}
	return nil
}

// BodyAuto picks a representation from the status and content type: nil
// for 204, parsed JSON for JSON media types, raw bytes for binary media,
// and decoded text otherwise.
func (r *Response) BodyAuto() (any, error) {
	if r.Status == statusNoContent {
		return nil, r.discard()
	}
	mt := r.ContentType()
	switch {
	case isJSON(mt):
		return r.BodyJSON()
	case isBinary(mt):
		return r.BodyBytes()
	default:
		return r.BodyText()
	}
}

// Close releases the body stream without reading it. It is a no-op once
// the body has been read.
func (r *Response) Close() error {
	if r.bodyStream == 0 {
		return nil
	}
	h := r.bodyStream
	r.bodyStream = 0
	_, err := r.client.Call(&wireformat.StreamClose{Handle: h})
	return err
}

func (r *Response) discard() error {
	r.drained = true
	return r.Close()
}
