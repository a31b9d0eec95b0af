package guest

import (
	"fmt"
	"sync"

	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/domain/ports"
	"github.com/superfaceai/one-sdk-sub004/textcoder"
	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

// Transport carries one encoded request to the host and returns the
// encoded response.
type Transport interface {
	Exchange(request []byte) ([]byte, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(request []byte) ([]byte, error)

func (f TransportFunc) Exchange(request []byte) ([]byte, error) { return f(request) }

// Client issues request envelopes over a Transport.
type Client struct {
	transport Transport
	codec     wireformat.Codec
	coder     ports.TextCoder
	baseURL   string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCodec sets the envelope codec. It must match the host's.
func WithCodec(c wireformat.Codec) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.codec = c
		}
	}
}

// WithTextCoder sets the coder used for request and response text.
func WithTextCoder(tc ports.TextCoder) ClientOption {
	return func(cl *Client) {
		if tc != nil {
			cl.coder = tc
		}
	}
}

// WithBaseURL makes the client resolve relative fetch URLs itself instead
// of leaving it to the host.
func WithBaseURL(u string) ClientOption {
	return func(cl *Client) {
		cl.baseURL = u
	}
}

// NewClient creates a Client over t.
func NewClient(t Transport, opts ...ClientOption) *Client {
	c := &Client{
		transport: t,
		codec:     wireformat.JSON,
		coder:     textcoder.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	defaultClient     *Client
	defaultClientOnce sync.Once
)

// Default returns the client bound to the host import of this module.
func Default() *Client {
	defaultClientOnce.Do(func() {
		defaultClient = NewClient(hostTransport{})
	})
	return defaultClient
}

// Call sends req and returns the ok response. An error envelope is
// returned as the typed error it carries.
func (c *Client) Call(req wireformat.Request) (wireformat.Response, error) {
	payload, err := wireformat.EncodeRequest(c.codec, req)
	if err != nil {
		return wireformat.Response{}, err
	}
	out, err := c.transport.Exchange(payload)
	if err != nil {
		return wireformat.Response{}, &sdkerrors.ProtocolError{
			Kind: string(req.Kind()),
			Err:  fmt.Errorf("message exchange failed: %w", err),
		}
	}
	resp, err := wireformat.DecodeResponse(c.codec, out)
	if err != nil {
		return wireformat.Response{}, err
	}
	if err := resp.Err(); err != nil {
		return wireformat.Response{}, err
	}
	return resp, nil
}

// TakeContext decodes the invocation input into target.
func (c *Client) TakeContext(target any) error {
	resp, err := c.Call(&wireformat.TakeContext{})
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	if err := wireformat.Convert(c.codec, resp.Context, target); err != nil {
		return fmt.Errorf("decode context: %w", err)
	}
	return nil
}

// SetOutputSuccess records the result of the invocation.
func (c *Client) SetOutputSuccess(output any) error {
	_, err := c.Call(&wireformat.SetOutputSuccess{Output: output})
	return err
}

// SetOutputFailure records a domain-level failure.
func (c *Client) SetOutputFailure(output any) error {
	_, err := c.Call(&wireformat.SetOutputFailure{Output: output})
	return err
}

// Print sends a diagnostic line to the host. It implements log.Printer.
func (c *Client) Print(message string) error {
	_, err := c.Call(&wireformat.Print{Message: message})
	return err
}

// Abort ends the run. The host stops the module once the call returns.
func (c *Client) Abort() error {
	_, err := c.Call(&wireformat.Abort{})
	return err
}

// TakeContext decodes the invocation input using the default client.
func TakeContext(target any) error { return Default().TakeContext(target) }

// SetOutputSuccess records the result using the default client.
func SetOutputSuccess(output any) error { return Default().SetOutputSuccess(output) }

// SetOutputFailure records a failure using the default client.
func SetOutputFailure(output any) error { return Default().SetOutputFailure(output) }

// Print sends a line using the default client.
func Print(message string) error { return Default().Print(message) }

// Abort ends the run using the default client.
func Abort() error { return Default().Abort() }

// Fetch starts an HTTP request using the default client.
func Fetch(url string, opts FetchOptions) (*Request, error) { return Default().Fetch(url, opts) }
