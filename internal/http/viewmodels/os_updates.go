package viewmodels

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/teamscope"
)

// OS updates target platforms.
const (
	PlatformDarwin  = "darwin"
	PlatformIOS     = "ios"
	PlatformIPadOS  = "ipados"
	PlatformWindows = "windows"
	PlatformAndroid = "android"
)

var osUpdatesPlatforms = []string{PlatformDarwin, PlatformWindows, PlatformIOS, PlatformIPadOS, PlatformAndroid}

var osUpdatesPlatformLabels = map[string]string{
	PlatformDarwin:  "macOS",
	PlatformWindows: "Windows",
	PlatformIOS:     "iOS",
	PlatformIPadOS:  "iPadOS",
	PlatformAndroid: "Android",
}

func IsOSUpdatesPlatform(p string) bool {
	_, ok := osUpdatesPlatformLabels[p]
	return ok
}

// DefaultOSUpdatesPlatform picks the tab shown before the user chooses one.
// Without a config it is macOS; otherwise macOS when Apple MDM is on, else Windows.
func DefaultOSUpdatesPlatform(cfg *fleetapi.AppConfig) string {
	if cfg == nil {
		return PlatformDarwin
	}
	if cfg.MDM.EnabledAndConfigured {
		return PlatformDarwin
	}
	return PlatformWindows
}

// SelectOSUpdatesPlatform lets an explicit tab win over the derived default.
func SelectOSUpdatesPlatform(explicit string, cfg *fleetapi.AppConfig) string {
	explicit = strings.ToLower(strings.TrimSpace(explicit))
	if IsOSUpdatesPlatform(explicit) {
		return explicit
	}
	return DefaultOSUpdatesPlatform(cfg)
}

// OSUpdatesGate is what the OS updates page renders instead of, or before, its tabs.
type OSUpdatesGate int

const (
	OSUpdatesRedirect OSUpdatesGate = iota
	OSUpdatesPremiumRequired
	OSUpdatesLoading
	OSUpdatesTurnOnMDM
	OSUpdatesReady
)

// OSUpdatesPageGate applies the page gates in order: permission, license tier,
// loading, then MDM enablement.
func OSUpdatesPageGate(canManage, isPremium, loading bool, cfg *fleetapi.AppConfig) OSUpdatesGate {
	switch {
	case !canManage:
		return OSUpdatesRedirect
	case !isPremium:
		return OSUpdatesPremiumRequired
	case loading:
		return OSUpdatesLoading
	case cfg == nil || (!cfg.MDM.EnabledAndConfigured && !cfg.MDM.WindowsEnabledAndConfigured):
		return OSUpdatesTurnOnMDM
	default:
		return OSUpdatesReady
	}
}

type OSUpdatesTab struct {
	Platform string
	Label    string
	Href     string
	Selected bool
}

// OSUpdatesTabs lists the platform tabs with the selected one marked.
func OSUpdatesTabs(selected string, team teamscope.ID) []OSUpdatesTab {
	tabs := make([]OSUpdatesTab, 0, len(osUpdatesPlatforms))
	for _, p := range osUpdatesPlatforms {
		href := "/controls/os-updates?platform=" + p
		if v := team.QueryValue(); v != "" {
			href += "&team_id=" + v
		}
		tabs = append(tabs, OSUpdatesTab{
			Platform: p,
			Label:    osUpdatesPlatformLabels[p],
			Href:     href,
			Selected: p == selected,
		})
	}
	return tabs
}

// OSUpdatesTarget is the editable target of one platform.
type OSUpdatesTarget struct {
	Platform string

	MinimumVersion string
	Deadline       string

	DeadlineDays    string
	GracePeriodDays string
}

// OSUpdatesTargetFor reads the current target of platform. Team pages read the
// team config; "no team" reads the app config.
func OSUpdatesTargetFor(platform string, cfg *fleetapi.AppConfig, team *fleetapi.Team) OSUpdatesTarget {
	target := OSUpdatesTarget{Platform: platform}
	var apple *fleetapi.AppleOSUpdateSettings
	var windows *fleetapi.WindowsUpdateSettings
	switch {
	case team != nil:
		windows = &team.MDM.WindowsUpdates
		switch platform {
		case PlatformDarwin:
			apple = &team.MDM.MacOSUpdates
		case PlatformIOS:
			apple = &team.MDM.IOSUpdates
		case PlatformIPadOS:
			apple = &team.MDM.IPadOSUpdates
		}
	case cfg != nil:
		windows = &cfg.MDM.WindowsUpdates
		switch platform {
		case PlatformDarwin:
			apple = &cfg.MDM.MacOSUpdates
		case PlatformIOS:
			apple = &cfg.MDM.IOSUpdates
		case PlatformIPadOS:
			apple = &cfg.MDM.IPadOSUpdates
		}
	}

	switch platform {
	case PlatformDarwin, PlatformIOS, PlatformIPadOS:
		if apple != nil {
			target.MinimumVersion = derefString(apple.MinimumVersion)
			target.Deadline = derefString(apple.Deadline)
		}
	case PlatformWindows:
		if windows != nil {
			target.DeadlineDays = derefIntString(windows.DeadlineDays)
			target.GracePeriodDays = derefIntString(windows.GracePeriodDays)
		}
	}
	return target
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefIntString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// ValidationError is a form error shown to the user as is.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

var minimumVersionPattern = regexp.MustCompile(`^\d+(\.\d+){0,2}$`)

// OSUpdatesPatchFor validates a submitted target and builds the API patch.
// Blank values clear the target.
func OSUpdatesPatchFor(target OSUpdatesTarget) (fleetapi.OSUpdatesPatch, error) {
	var patch fleetapi.OSUpdatesPatch
	switch target.Platform {
	case PlatformDarwin, PlatformIOS, PlatformIPadOS:
		minVersion := strings.TrimSpace(target.MinimumVersion)
		deadline := strings.TrimSpace(target.Deadline)
		if (minVersion == "") != (deadline == "") {
			return patch, ValidationError("Minimum version and deadline must both be set or both be empty.")
		}
		if minVersion != "" && !minimumVersionPattern.MatchString(minVersion) {
			return patch, ValidationError("Minimum version must be a version number, e.g. 14.1.2.")
		}
		if deadline != "" {
			if _, err := time.Parse("2006-01-02", deadline); err != nil {
				return patch, ValidationError("Deadline must be a date in YYYY-MM-DD format.")
			}
		}
		settings := &fleetapi.AppleOSUpdateSettings{MinimumVersion: &minVersion, Deadline: &deadline}
		switch target.Platform {
		case PlatformDarwin:
			patch.MacOSUpdates = settings
		case PlatformIOS:
			patch.IOSUpdates = settings
		default:
			patch.IPadOSUpdates = settings
		}
	case PlatformWindows:
		deadlineDays, err := parseDays(target.DeadlineDays, 30, "Deadline")
		if err != nil {
			return patch, err
		}
		graceDays, err := parseDays(target.GracePeriodDays, 7, "Grace period")
		if err != nil {
			return patch, err
		}
		if (deadlineDays == nil) != (graceDays == nil) {
			return patch, ValidationError("Deadline and grace period must both be set or both be empty.")
		}
		patch.WindowsUpdates = &fleetapi.WindowsUpdateSettings{DeadlineDays: deadlineDays, GracePeriodDays: graceDays}
	default:
		return patch, ValidationError("OS updates are not available for this platform.")
	}
	return patch, nil
}

func parseDays(raw string, limit int, field string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > limit {
		return nil, ValidationError(field + " must be a number between 0 and " + strconv.Itoa(limit) + ".")
	}
	return &n, nil
}

// NudgePreview is the end-user preview card next to the target form.
type NudgePreview struct {
	Title string
	Body  string
}

// NudgePreviewFor returns the preview of platform. Android has none.
func NudgePreviewFor(platform string) (NudgePreview, bool) {
	switch platform {
	case PlatformDarwin:
		return NudgePreview{
			Title: "End user experience on macOS",
			Body:  "When a minimum version is enforced, the end users see a native macOS notification (DDM) once per day. Users can choose to update ahead of the deadline or schedule it for later.",
		}, true
	case PlatformWindows:
		return NudgePreview{
			Title: "End user experience on Windows",
			Body:  "When a Windows host becomes aware of a new update, end users are able to defer restarts until the deadline. After the deadline passes, a restart is forced after the grace period.",
		}, true
	case PlatformIOS, PlatformIPadOS:
		return NudgePreview{
			Title: "End user experience on " + osUpdatesPlatformLabels[platform],
			Body:  "If the device is below the minimum version when it is enrolled, the end user is required to update before setup continues. After the deadline, the update is installed at the next opportunity.",
		}, true
	default:
		return NudgePreview{}, false
	}
}

type OSVersionRow struct {
	Name       string
	Version    string
	Platform   string
	HostsCount string
}

type OSUpdatesViewData struct {
	Layout LayoutData

	TeamID teamscope.ID
	Gate   OSUpdatesGate

	SelectedPlatform string
	Tabs             []OSUpdatesTab
	// ComingSoon is set for platforms that have no target form yet.
	ComingSoon bool
	Target     OSUpdatesTarget
	FormError  string
	IsFetching bool

	Versions        []OSVersionRow
	VersionsError   bool
	CountsUpdatedAt ActivityTime

	Nudge     NudgePreview
	ShowNudge bool
}

type SetupExperienceViewData struct {
	Layout LayoutData
}
