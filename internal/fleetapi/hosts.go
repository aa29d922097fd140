package fleetapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// GetHost loads a host including its policy results.
func (c *Client) GetHost(ctx context.Context, hostID uint) (Host, error) {
	var out hostResponse
	err := c.do(ctx, request{
		op:     "get_host",
		method: http.MethodGet,
		path:   idPath("/hosts/%d", hostID),
		schema: schemaHost,
	}, &out)
	return out.Host, err
}

// GetDeviceHost loads the host behind a device-user token.
func (c *Client) GetDeviceHost(ctx context.Context, deviceToken string) (Host, error) {
	deviceToken = strings.TrimSpace(deviceToken)
	if deviceToken == "" {
		return Host{}, errors.New("fleet api: device token is required")
	}
	var out hostResponse
	err := c.do(ctx, request{
		op:     "get_device_host",
		method: http.MethodGet,
		path:   idPath("/device/%s", deviceToken),
		schema: schemaHost,
	}, &out)
	return out.Host, err
}

// RefetchHost asks a host to report fresh vitals.
func (c *Client) RefetchHost(ctx context.Context, hostID uint) error {
	return c.do(ctx, request{
		op:     "refetch_host",
		method: http.MethodPost,
		path:   idPath("/hosts/%d/refetch", hostID),
	}, nil)
}
