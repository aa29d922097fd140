package viewmodels

import "github.com/fleet-console/fleet-console/internal/teamscope"

type LayoutData struct {
	Title      string
	ActivePath string
	RequestID  string

	OrgName       string
	OrgLogoURL    string
	FleetURL      string
	UserName      string
	UserEmail     string
	UserRole      string
	IsPremiumTier bool

	// Team picker. ShowTeamPicker is false on free tier.
	ShowTeamPicker bool
	TeamID         teamscope.ID
	Teams          []TeamOption

	Toast *ToastViewData
}

type TeamOption struct {
	ID       teamscope.ID
	Name     string
	Selected bool
}

type ToastViewData struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// EmptyState is the header/info pair of an empty table or card.
type EmptyState struct {
	Header   string
	Info     string
	LinkText string
	LinkURL  string
}
