package hostfuncs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
	sdkerrors "github.com/superfaceai/one-sdk-sub004/domain/errors"
	"github.com/superfaceai/one-sdk-sub004/resource"
	"github.com/superfaceai/one-sdk-sub004/wireformat"
)

// httpCall resolves and authorizes the request, then starts the fetch on the
// bridge. The guest gets the exchange handle right away.
func (d *Dispatcher) httpCall(r *wireformat.HTTPCall) (wireformat.Response, error) {
	network := d.caps.Network
	if network == nil {
		return wireformat.Response{}, &sdkerrors.CapabilityError{Capability: "network", Op: "fetch", Err: sdkerrors.ErrNotConfigured}
	}

	target, err := d.resolveURL(r.URL)
	if err != nil {
		return wireformat.Response{}, &sdkerrors.CapabilityError{Capability: "network", Op: "resolve", Target: r.URL, Err: err}
	}

	headers := entities.NormalizeHeaders(r.Headers)
	query := target.Query()
	for _, name := range sortedNames(r.Query) {
		for _, v := range r.Query[name] {
			query.Add(name, v)
		}
	}
	if r.Security != "" {
		sec, ok := d.config.SecurityByID(r.Security)
		if !ok {
			return wireformat.Response{}, &sdkerrors.CapabilityError{
				Capability: "security", Op: "apply", Target: r.Security, Err: sdkerrors.ErrNotConfigured,
			}
		}
		applySecurity(sec, headers, query)
	}
	target.RawQuery = query.Encode()

	if err := d.checkNetwork(target); err != nil {
		return wireformat.Response{}, err
	}

	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}
	req := entities.HTTPRequest{Method: method, URL: target.String(), Headers: headers, Body: r.Body}

	exchange := resource.NewPendingHTTPExchange(method, req.URL, nil)
	h, err := d.table.Insert(exchange)
	if err != nil {
		return wireformat.Response{}, err
	}
	key := uint32(h)
	exchange.Bind(func() { d.bridge.Discard(key) })

	_, err = d.bridge.Start(key, string(wireformat.KindHTTPCall), func(ctx context.Context) (any, error) {
		resp, err := network.Fetch(ctx, req)
		if err != nil {
			var capErr *sdkerrors.CapabilityError
			if errors.As(err, &capErr) {
				return nil, err
			}
			return nil, &sdkerrors.CapabilityError{Capability: "network", Op: "fetch", Target: req.URL, Err: err}
		}
		return resp, nil
	})
	if err != nil {
		_, _ = d.table.Remove(h)
		return wireformat.Response{}, err
	}

	resp := wireformat.OK()
	resp.Handle = key
	return resp, nil
}

// httpCallHead waits for the response head, retires the exchange handle,
// and hands the body out as a new stream handle.
func (d *Dispatcher) httpCallHead(ctx context.Context, r *wireformat.HTTPCallHead) (wireformat.Response, error) {
	h := resource.Handle(r.Handle)
	if _, err := resource.Lookup[*resource.PendingHTTPExchange](d.table, h); err != nil {
		return wireformat.Response{}, err
	}

	payload, err := d.bridge.Await(ctx, r.Handle)
	if exchange, rerr := resource.RemoveAs[*resource.PendingHTTPExchange](d.table, h); rerr == nil {
		_ = exchange.Close()
	}
	if err != nil {
		return wireformat.Response{}, err
	}

	head, ok := payload.(*entities.HTTPResponse)
	if !ok || head == nil {
		release(payload)
		return wireformat.Response{}, &sdkerrors.CapabilityError{
			Capability: "network", Op: "fetch", Err: fmt.Errorf("unexpected result %T", payload),
		}
	}
	body := head.Body
	if body == nil {
		body = io.NopCloser(bytes.NewReader(nil))
	}

	sh, err := d.table.Insert(resource.NewByteStream(body))
	if err != nil {
		_ = body.Close()
		return wireformat.Response{}, err
	}

	resp := wireformat.OK()
	resp.Status = head.Status
	resp.Headers = head.Headers
	resp.BodyStream = uint32(sh)
	return resp, nil
}

func (d *Dispatcher) resolveURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		if d.baseURL == nil {
			return nil, fmt.Errorf("relative url %q without a base url", raw)
		}
		u = d.baseURL.ResolveReference(u)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("url %q has no host", raw)
	}
	return u, nil
}

func (d *Dispatcher) checkNetwork(u *url.URL) error {
	if d.policy == nil {
		return nil
	}
	port := 80
	if u.Scheme == "https" {
		port = 443
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return &sdkerrors.CapabilityError{Capability: "network", Op: "resolve", Target: u.Host, Err: err}
		}
		port = n
	}
	req := entities.NetworkRequest{Host: u.Hostname(), Port: port}
	if !d.policy.CheckNetwork(req, d.grants) {
		return &sdkerrors.CapabilityError{
			Capability: "network",
			Op:         "connect",
			Target:     fmt.Sprintf("%s:%d", req.Host, req.Port),
			Err:        sdkerrors.ErrDenied,
		}
	}
	return nil
}

func release(v any) {
	if c, ok := v.(io.Closer); ok {
		_ = c.Close()
	}
}

func sortedNames(m map[string][]string) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
