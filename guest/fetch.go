package guest

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/superfaceai/one-sdk-sub004/bytebuf"
	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

// FetchOptions describe an HTTP request.
//
// Body is encoded according to the content-type header:
//   - JSON media types: the body is serialized to JSON, unless it already is
//     []byte.
//   - application/x-www-form-urlencoded: a multimap (map[string][]string,
//     map[string]string, or entities.Multimap) is percent-encoded; names are
//     sorted and the order of values is kept.
//   - text/plain: a string is sent as UTF-8.
//
// A []byte or *bytebuf.Buffer body is sent unchanged under any other
// content-type, including binary media (octet-stream, image/*, audio/*,
// video/*). Any other body is a ContentTypeError.
type FetchOptions struct {
	Body     any
	Headers  map[string][]string
	Query    map[string][]string
	Method   string
	Security string
	BaseURL  string
}

// Request is an HTTP exchange started on the host whose response has not
// been collected yet.
type Request struct {
	client   *Client
	response *Response
	Method   string
	URL      string
	handle   uint32
}

// Fetch starts an HTTP request. It returns as soon as the host accepted the
// request; call Response to wait for the response head.
func (c *Client) Fetch(rawURL string, opts FetchOptions) (*Request, error) {
	target, err := c.resolve(rawURL, opts.BaseURL)
	if err != nil {
		return nil, err
	}

	headers := entities.NormalizeHeaders(opts.Headers)
	body, err := c.encodeBody(headers.Get("content-type"), opts.Body)
	if err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = "GET"
	}
	resp, err := c.Call(&wireformat.HTTPCall{
		Method:   method,
		URL:      target,
		Headers:  headers,
		Query:    opts.Query,
		Security: opts.Security,
		Body:     body,
	})
	if err != nil {
		return nil, err
	}
	return &Request{client: c, handle: resp.Handle, Method: method, URL: target}, nil
}

func (c *Client) resolve(rawURL, base string) (string, error) {
	if base == "" {
		base = c.baseURL
	}
	if base == "" {
		return rawURL, nil
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if ref.IsAbs() {
		return rawURL, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	return b.ResolveReference(ref).String(), nil
}

func (c *Client) encodeBody(contentType string, body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	mt := mediaType(contentType)

	switch {
	case isJSON(mt):
		if raw, ok := body.([]byte); ok {
			return raw, nil
		}
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &sdkerrors.ContentTypeError{ContentType: contentType, Reason: err.Error()}
		}
		return c.coder.EncodeUTF8(string(data)), nil
	case mt == contentTypeForm:
		if form, ok := formValues(body); ok {
			return c.coder.EncodeUTF8(form.Encode()), nil
		}
		if data, ok := rawBody(body); ok {
			return data, nil
		}
	case mt == contentTypeText:
		if text, ok := body.(string); ok {
			return c.coder.EncodeUTF8(text), nil
		}
		if data, ok := rawBody(body); ok {
			return data, nil
		}
	default:
		if data, ok := rawBody(body); ok {
			return data, nil
		}
	}

	return nil, &sdkerrors.ContentTypeError{
		ContentType: contentType,
		Reason:      fmt.Sprintf("cannot encode a %T body", body),
	}
}

func rawBody(body any) ([]byte, bool) {
	switch v := body.(type) {
	case []byte:
		return v, true
	case *bytebuf.Buffer:
		return v.Data(), true
	}
	return nil, false
}

// formValues flattens the accepted multimap shapes.
func formValues(body any) (entities.Multimap, bool) {
	switch v := body.(type) {
	case entities.Multimap:
		return v, true
	case map[string][]string:
		return entities.Multimap(v), true
	case map[string]string:
		m := make(entities.Multimap, len(v))
		for k, s := range v {
			m[k] = []string{s}
		}
		return m, true
	case map[string]any:
		m := make(entities.Multimap, len(v))
		for k, item := range v {
			switch val := item.(type) {
			case []string:
				m[k] = append(m[k], val...)
			case []any:
				for _, x := range val {
					m[k] = append(m[k], fmt.Sprint(x))
				}
			default:
				m[k] = []string{fmt.Sprint(val)}
			}
		}
		return m, true
	}
	return nil, false
}

// Response waits for the response head. The body is not read.
func (r *Request) Response() (*Response, error) {
	if r.response != nil {
		return r.response, nil
	}
	resp, err := r.client.Call(&wireformat.HTTPCallHead{Handle: r.handle})
	if err != nil {
		return nil, err
	}
	r.response = &Response{
		client:     r.client,
		Status:     resp.Status,
		Headers:    entities.NormalizeHeaders(resp.Headers),
		bodyStream: resp.BodyStream,
	}
	return r.response, nil
}
