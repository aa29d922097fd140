package fleetapi

import (
	"context"
	"net/http"
)

// GetSoftwareTitle loads a software title as seen from the given team scope.
func (c *Client) GetSoftwareTitle(ctx context.Context, titleID uint, teamID *uint) (SoftwareTitleResponse, error) {
	var out SoftwareTitleResponse
	err := c.do(ctx, request{
		op:     "get_software_title",
		method: http.MethodGet,
		path:   idPath("/software/titles/%d", titleID),
		query:  teamQuery(teamID),
		schema: schemaSoftwareTitle,
	}, &out)
	return out, err
}

// DeleteSoftwareInstaller removes the package or app-store app from a title.
func (c *Client) DeleteSoftwareInstaller(ctx context.Context, titleID uint, teamID *uint) error {
	return c.do(ctx, request{
		op:     "delete_software_installer",
		method: http.MethodDelete,
		path:   idPath("/software/titles/%d/available_for_install", titleID),
		query:  teamQuery(teamID),
	}, nil)
}
