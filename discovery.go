package opcua

import (
	"context"
	"sort"

	"github.com/pulseiot/opcua/ua"
)

// GetEndpoints returns the endpoints the server advertises for url (spec
// §4.8 step 3 `get_endpoints`). Discovery requests run over whatever
// secure channel is already open; no session is required.
func (c *Client) GetEndpoints(url string) (*ua.GetEndpointsResponse, error) {
	req := &ua.GetEndpointsRequest{EndpointURL: url}
	resp := &ua.GetEndpointsResponse{}
	if err := Service(context.Background(), c, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// FindServers executes FindServersRequest (spec §1 "discovery/LDS protocol
// semantics beyond encoding the request types" -- only the wire encoding
// is in scope, which this wrapper provides).
func (c *Client) FindServers(ctx context.Context, req *ua.FindServersRequest) (*ua.FindServersResponse, error) {
	resp := &ua.FindServersResponse{}
	if err := Service(ctx, c, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// FindServersOnNetwork executes FindServersOnNetworkRequest.
func (c *Client) FindServersOnNetwork(ctx context.Context, req *ua.FindServersOnNetworkRequest) (*ua.FindServersOnNetworkResponse, error) {
	resp := &ua.FindServersOnNetworkResponse{}
	if err := Service(ctx, c, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SelectEndpoint picks the highest-security-level endpoint among
// endpoints that matches policy and mode; either may be left zero-valued
// to match on the other alone (teacher's client.go SelectEndpoint/
// bySecurityLevel, spec §4.8 step 3 "pick the endpoint matching the
// desired security policy").
func SelectEndpoint(endpoints []*ua.EndpointDescription, policy string, mode ua.MessageSecurityMode) *ua.EndpointDescription {
	if len(endpoints) == 0 {
		return nil
	}
	sorted := make([]*ua.EndpointDescription, len(endpoints))
	copy(sorted, endpoints)
	sort.Sort(sort.Reverse(bySecurityLevel(sorted)))

	if policy != "" {
		policy = ua.FormatSecurityPolicyURI(policy)
	}
	if policy == "" && mode == ua.MessageSecurityModeInvalid {
		return sorted[0]
	}
	for _, e := range sorted {
		switch {
		case policy == "" && e.SecurityMode == mode:
			return e
		case e.SecurityPolicyURI == policy && mode == ua.MessageSecurityModeInvalid:
			return e
		case e.SecurityPolicyURI == policy && e.SecurityMode == mode:
			return e
		}
	}
	return nil
}

type bySecurityLevel []*ua.EndpointDescription

func (a bySecurityLevel) Len() int           { return len(a) }
func (a bySecurityLevel) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a bySecurityLevel) Less(i, j int) bool { return a[i].SecurityLevel < a[j].SecurityLevel }
