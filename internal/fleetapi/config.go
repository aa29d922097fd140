package fleetapi

import (
	"context"
	"errors"
	"net/http"
)

// GetAppConfig loads the tenant-wide configuration.
func (c *Client) GetAppConfig(ctx context.Context) (AppConfig, error) {
	var out AppConfig
	err := c.do(ctx, request{
		op:     "get_app_config",
		method: http.MethodGet,
		path:   "/config",
		schema: schemaAppConfig,
	}, &out)
	return out, err
}

// UpdateAppConfigOSUpdates changes the "no team" OS update targets.
func (c *Client) UpdateAppConfigOSUpdates(ctx context.Context, patch OSUpdatesPatch) (AppConfig, error) {
	var out AppConfig
	err := c.do(ctx, request{
		op:     "update_app_config",
		method: http.MethodPatch,
		path:   "/config",
		body: struct {
			MDM OSUpdatesPatch `json:"mdm"`
		}{MDM: patch},
		schema: schemaAppConfig,
	}, &out)
	return out, err
}

// GetTeam loads one team's configuration.
func (c *Client) GetTeam(ctx context.Context, teamID uint) (TeamResponse, error) {
	if teamID == 0 {
		return TeamResponse{}, errors.New("fleet api: team id is required")
	}
	var out TeamResponse
	err := c.do(ctx, request{
		op:     "get_team",
		method: http.MethodGet,
		path:   idPath("/teams/%d", teamID),
		schema: schemaTeam,
	}, &out)
	return out, err
}

// UpdateTeamOSUpdates changes a team's OS update targets.
func (c *Client) UpdateTeamOSUpdates(ctx context.Context, teamID uint, patch OSUpdatesPatch) (TeamResponse, error) {
	if teamID == 0 {
		return TeamResponse{}, errors.New("fleet api: team id is required")
	}
	var out TeamResponse
	err := c.do(ctx, request{
		op:     "update_team",
		method: http.MethodPatch,
		path:   idPath("/teams/%d", teamID),
		body: struct {
			MDM OSUpdatesPatch `json:"mdm"`
		}{MDM: patch},
		schema: schemaTeam,
	}, &out)
	return out, err
}

// ListOSVersions returns OS versions observed on hosts in the given team scope.
func (c *Client) ListOSVersions(ctx context.Context, teamID *uint) (OSVersionsPage, error) {
	var out OSVersionsPage
	err := c.do(ctx, request{
		op:     "list_os_versions",
		method: http.MethodGet,
		path:   "/os_versions",
		query:  teamQuery(teamID),
		schema: schemaOSVersions,
	}, &out)
	return out, err
}
