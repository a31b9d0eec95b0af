// Package guest is the call surface an integration compiled to WebAssembly
// uses to talk to its host. Every operation is one blocking message
// exchange: the guest encodes a request envelope, the host answers with
// exactly one response envelope.
//
//	req, err := guest.Fetch("/items/5", guest.FetchOptions{Method: "GET"})
//	if err != nil {
//	    return err
//	}
//	resp, err := req.Response()
//	if err != nil {
//	    return err
//	}
//	item, err := resp.BodyAuto()
//
// Protocol and resource failures come back as *errors.ProtocolError and
// *errors.ResourceError and indicate a defect; capability failures and
// non-2xx statuses are ordinary values.
package guest
