package fleetapi

import "encoding/json"

// PaginationMeta is the paging envelope Fleet returns on list endpoints.
type PaginationMeta struct {
	HasNextResults     bool `json:"has_next_results"`
	HasPreviousResults bool `json:"has_previous_results"`
}

// ListOptions are the common paging/sorting parameters.
type ListOptions struct {
	Page           int
	PerPage        int
	OrderKey       string
	OrderDirection string
}

// Activity is a logged action. Past activities carry a numeric ID; upcoming host
// activities carry a UUID instead.
type Activity struct {
	ID             uint            `json:"id,omitempty"`
	UUID           string          `json:"uuid,omitempty"`
	Type           string          `json:"type"`
	ActorID        *uint           `json:"actor_id"`
	ActorFullName  *string         `json:"actor_full_name"`
	ActorEmail     *string         `json:"actor_email"`
	ActorGravatar  *string         `json:"actor_gravatar"`
	ActorAPIOnly   bool            `json:"actor_api_only"`
	FleetInitiated bool            `json:"fleet_initiated"`
	CreatedAt      string          `json:"created_at"`
	Details        json.RawMessage `json:"details,omitempty"`
}

type ActivitiesPage struct {
	Activities []Activity     `json:"activities"`
	Count      int            `json:"count"`
	Meta       PaginationMeta `json:"meta"`
}

// License describes the tenant subscription.
type License struct {
	Tier         string `json:"tier"`
	Organization string `json:"organization"`
	Expiration   string `json:"expiration"`
}

const TierPremium = "premium"

// AppleOSUpdateSettings is the target for macOS, iOS and iPadOS updates.
type AppleOSUpdateSettings struct {
	MinimumVersion *string `json:"minimum_version"`
	Deadline       *string `json:"deadline"`
}

// WindowsUpdateSettings is the target for Windows updates.
type WindowsUpdateSettings struct {
	DeadlineDays    *int `json:"deadline_days"`
	GracePeriodDays *int `json:"grace_period_days"`
}

// MDMConfig is the MDM portion of the app config.
type MDMConfig struct {
	EnabledAndConfigured        bool                  `json:"enabled_and_configured"`
	WindowsEnabledAndConfigured bool                  `json:"windows_enabled_and_configured"`
	AndroidEnabledAndConfigured bool                  `json:"android_enabled_and_configured"`
	MacOSUpdates                AppleOSUpdateSettings `json:"macos_updates"`
	IOSUpdates                  AppleOSUpdateSettings `json:"ios_updates"`
	IPadOSUpdates               AppleOSUpdateSettings `json:"ipados_updates"`
	WindowsUpdates              WindowsUpdateSettings `json:"windows_updates"`
}

// AppConfig is the tenant-wide configuration.
type AppConfig struct {
	OrgInfo struct {
		OrgName    string `json:"org_name"`
		OrgLogoURL string `json:"org_logo_url"`
	} `json:"org_info"`
	ServerSettings struct {
		ServerURL string `json:"server_url"`
	} `json:"server_settings"`
	License License   `json:"license"`
	MDM     MDMConfig `json:"mdm"`
}

// IsPremium reports whether the tenant is on the premium tier.
func (c AppConfig) IsPremium() bool {
	return c.License.Tier == TierPremium
}

// TeamMDM is the MDM portion of a team config.
type TeamMDM struct {
	MacOSUpdates   AppleOSUpdateSettings `json:"macos_updates"`
	IOSUpdates     AppleOSUpdateSettings `json:"ios_updates"`
	IPadOSUpdates  AppleOSUpdateSettings `json:"ipados_updates"`
	WindowsUpdates WindowsUpdateSettings `json:"windows_updates"`
}

type Team struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	HostCount   int     `json:"host_count"`
	MDM         TeamMDM `json:"mdm"`
}

// TeamResponse is the envelope GET /teams/{id} returns.
type TeamResponse struct {
	Team Team `json:"team"`
}

// OSUpdatesPatch changes the update target of exactly the platforms that are set.
type OSUpdatesPatch struct {
	MacOSUpdates   *AppleOSUpdateSettings `json:"macos_updates,omitempty"`
	IOSUpdates     *AppleOSUpdateSettings `json:"ios_updates,omitempty"`
	IPadOSUpdates  *AppleOSUpdateSettings `json:"ipados_updates,omitempty"`
	WindowsUpdates *WindowsUpdateSettings `json:"windows_updates,omitempty"`
}

// UserTeam is a team membership of the current user.
type UserTeam struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// User is the authenticated user.
type User struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	GlobalRole *string    `json:"global_role"`
	APIOnly    bool       `json:"api_only"`
	Teams      []UserTeam `json:"teams"`
}

// CurrentUser is the envelope GET /me returns.
type CurrentUser struct {
	User           User       `json:"user"`
	AvailableTeams []UserTeam `json:"available_teams"`
}

// LoginResult is the envelope POST /login returns.
type LoginResult struct {
	User           User       `json:"user"`
	AvailableTeams []UserTeam `json:"available_teams"`
	Token          string     `json:"token"`
}

// Policy responses on a host.
const (
	PolicyResponsePass = "pass"
	PolicyResponseFail = "fail"
)

// HostPolicy is a policy result reported by one host.
type HostPolicy struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Query       string  `json:"query"`
	Description string  `json:"description"`
	Resolution  *string `json:"resolution"`
	Critical    bool    `json:"critical"`
	Platform    string  `json:"platform"`
	TeamID      *uint   `json:"team_id"`
	Response    string  `json:"response"`
}

type Host struct {
	ID          uint         `json:"id"`
	Hostname    string       `json:"hostname"`
	DisplayName string       `json:"display_name"`
	Platform    string       `json:"platform"`
	OSVersion   string       `json:"os_version"`
	TeamID      *uint        `json:"team_id"`
	TeamName    *string      `json:"team_name"`
	Policies    []HostPolicy `json:"policies"`
}

type hostResponse struct {
	Host Host `json:"host"`
}

// InstallerStatus counts install outcomes for an installer.
type InstallerStatus struct {
	Installed        uint `json:"installed"`
	PendingInstall   uint `json:"pending_install"`
	FailedInstall    uint `json:"failed_install"`
	PendingUninstall uint `json:"pending_uninstall"`
	FailedUninstall  uint `json:"failed_uninstall"`
}

// SoftwarePackage is an uploaded installer attached to a title.
type SoftwarePackage struct {
	Name        string           `json:"name"`
	Version     string           `json:"version"`
	Platform    string           `json:"platform"`
	UploadedAt  string           `json:"uploaded_at"`
	SelfService bool             `json:"self_service"`
	Status      *InstallerStatus `json:"status"`
}

// AppStoreApp is a VPP app attached to a title.
type AppStoreApp struct {
	AppStoreID    string           `json:"app_store_id"`
	Name          string           `json:"name"`
	LatestVersion string           `json:"latest_version"`
	IconURL       *string          `json:"icon_url"`
	Platform      string           `json:"platform"`
	CreatedAt     string           `json:"created_at"`
	SelfService   bool             `json:"self_service"`
	Status        *InstallerStatus `json:"status"`
}

type SoftwareVersion struct {
	ID              uint     `json:"id"`
	Version         string   `json:"version"`
	Vulnerabilities []string `json:"vulnerabilities"`
	HostsCount      *uint    `json:"hosts_count"`
}

// SoftwareTitle is an installable product and its observed versions.
type SoftwareTitle struct {
	ID               uint              `json:"id"`
	Name             string            `json:"name"`
	DisplayName      string            `json:"display_name"`
	Source           string            `json:"source"`
	ExtensionFor     string            `json:"extension_for"`
	BundleIdentifier *string           `json:"bundle_identifier"`
	HostsCount       uint              `json:"hosts_count"`
	CountsUpdatedAt  *string           `json:"counts_updated_at"`
	Versions         []SoftwareVersion `json:"versions"`
	SoftwarePackage  *SoftwarePackage  `json:"software_package"`
	AppStoreApp      *AppStoreApp      `json:"app_store_app"`
}

// IsAvailableForInstall reports whether an installer of either kind is attached.
func (t SoftwareTitle) IsAvailableForInstall() bool {
	return t.SoftwarePackage != nil || t.AppStoreApp != nil
}

// SoftwareTitleResponse is the envelope GET /software/titles/{id} returns.
type SoftwareTitleResponse struct {
	SoftwareTitle SoftwareTitle `json:"software_title"`
}

// QueryStats are the scheduled-query performance samples.
type QueryStats struct {
	SystemTimeP50   *float64 `json:"system_time_p50"`
	SystemTimeP95   *float64 `json:"system_time_p95"`
	UserTimeP50     *float64 `json:"user_time_p50"`
	UserTimeP95     *float64 `json:"user_time_p95"`
	TotalExecutions *int     `json:"total_executions"`
}

// Query is a saved osquery statement. A nil TeamID is a global query.
type Query struct {
	ID                 uint       `json:"id"`
	TeamID             *uint      `json:"team_id"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Query              string     `json:"query"`
	Interval           uint       `json:"interval"`
	Platform           string     `json:"platform"`
	MinOsqueryVersion  string     `json:"min_osquery_version"`
	AutomationsEnabled bool       `json:"automations_enabled"`
	Logging            string     `json:"logging"`
	Saved              bool       `json:"saved"`
	ObserverCanRun     bool       `json:"observer_can_run"`
	AuthorID           *uint      `json:"author_id"`
	AuthorName         string     `json:"author_name"`
	AuthorEmail        string     `json:"author_email"`
	Stats              QueryStats `json:"stats"`
	DiscardData        bool       `json:"discard_data"`
	CreatedAt          string     `json:"created_at"`
	UpdatedAt          string     `json:"updated_at"`
}

type QueriesPage struct {
	Queries []Query        `json:"queries"`
	Count   int            `json:"count"`
	Meta    PaginationMeta `json:"meta"`
}

// ListQueriesOptions filters the query list.
type ListQueriesOptions struct {
	ListOptions
	TeamID         *uint
	MergeInherited bool
	Query          string
	Platform       string
}

type OSVersion struct {
	ID         uint   `json:"os_version_id"`
	Name       string `json:"name"`
	NameOnly   string `json:"name_only"`
	Version    string `json:"version"`
	Platform   string `json:"platform"`
	HostsCount uint   `json:"hosts_count"`
}

type OSVersionsPage struct {
	CountsUpdatedAt *string        `json:"counts_updated_at"`
	OSVersions      []OSVersion    `json:"os_versions"`
	Count           int            `json:"count"`
	Meta            PaginationMeta `json:"meta"`
}

// Policy is a saved compliance check.
type Policy struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Query            string  `json:"query"`
	Description      string  `json:"description"`
	Resolution       *string `json:"resolution"`
	Critical         bool    `json:"critical"`
	Platform         string  `json:"platform"`
	TeamID           *uint   `json:"team_id"`
	PassingHostCount uint    `json:"passing_host_count"`
	FailingHostCount uint    `json:"failing_host_count"`
}

// PolicyDraft is the body used to create a policy.
type PolicyDraft struct {
	Name        string `json:"name"`
	Query       string `json:"query"`
	Description string `json:"description"`
	Resolution  string `json:"resolution,omitempty"`
	Critical    bool   `json:"critical"`
	Platform    string `json:"platform,omitempty"`
}

// ResetAutomationIDs selects the automations to reset.
type ResetAutomationIDs struct {
	TeamIDs   []uint `json:"team_ids,omitempty"`
	PolicyIDs []uint `json:"policy_ids,omitempty"`
}
