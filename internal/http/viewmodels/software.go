package viewmodels

import (
	"net/url"
	"strconv"

	"github.com/fleet-console/fleet-console/internal/appstate"
	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/teamscope"
)

const SourceTarballPackages = "tgz_packages"

var softwareSourceLabels = map[string]string{
	"apt_sources":         "Package (APT)",
	"deb_packages":        "Package (deb)",
	"portage_packages":    "Package (Portage)",
	"rpm_packages":        "Package (RPM)",
	"yum_sources":         "Package (YUM)",
	"npm_packages":        "Package (NPM)",
	"atom_packages":       "Package (Atom)",
	"python_packages":     "Package (Python)",
	"tgz_packages":        "Package (tar.gz)",
	"homebrew_packages":   "Package (Homebrew)",
	"chocolatey_packages": "Package (Chocolatey)",
	"pkg_packages":        "Package (pkg)",
	"apps":                "Application (macOS)",
	"ios_apps":            "Application (iOS)",
	"ipados_apps":         "Application (iPadOS)",
	"programs":            "Program (Windows)",
	"chrome_extensions":   "Browser plugin",
	"firefox_addons":      "Browser plugin (Firefox)",
	"safari_extensions":   "Browser plugin (Safari)",
	"ie_extensions":       "Browser plugin (IE)",
	"vscode_extensions":   "IDE extension (VS Code)",
}

var browserLabels = map[string]string{
	"chrome":    "Chrome",
	"chromium":  "Chromium",
	"opera":     "Opera",
	"yandex":    "Yandex",
	"brave":     "Brave",
	"edge":      "Edge",
	"edge_beta": "Edge Beta",
}

// FormatSoftwareType labels a title by its source. Browser extensions get the
// browser they extend as a suffix.
func FormatSoftwareType(source, extensionFor string) string {
	label, ok := softwareSourceLabels[source]
	if !ok {
		label = "Unknown"
	}
	if extensionFor != "" {
		browser, ok := browserLabels[extensionFor]
		if !ok {
			browser = extensionFor
		}
		label += " (" + browser + ")"
	}
	return label
}

func IsIpadOrIphoneSoftwareSource(source string) bool {
	return source == "ios_apps" || source == "ipados_apps"
}

// InstallerKind tells which installer backs the installer card.
type InstallerKind string

const (
	InstallerKindPackage     InstallerKind = "package"
	InstallerKindAppStoreApp InstallerKind = "app_store_app"
)

type InstallerCardInfo struct {
	Kind           InstallerKind
	Name           string
	Version        string
	AddedTimestamp string
	Status         *fleetapi.InstallerStatus
	IsSelfService  bool
}

// InstallerCardInfoFor reads the installer fields from the uploaded package, or
// from the app-store app when there is no package. ok is false when neither exists.
func InstallerCardInfoFor(title fleetapi.SoftwareTitle) (info InstallerCardInfo, ok bool) {
	switch {
	case title.SoftwarePackage != nil:
		pkg := title.SoftwarePackage
		name := pkg.Name
		if name == "" {
			name = title.Name
		}
		return InstallerCardInfo{
			Kind:           InstallerKindPackage,
			Name:           name,
			Version:        pkg.Version,
			AddedTimestamp: pkg.UploadedAt,
			Status:         pkg.Status,
			IsSelfService:  pkg.SelfService,
		}, true
	case title.AppStoreApp != nil:
		app := title.AppStoreApp
		name := app.Name
		if name == "" {
			name = title.Name
		}
		return InstallerCardInfo{
			Kind:           InstallerKindAppStoreApp,
			Name:           name,
			Version:        app.LatestVersion,
			AddedTimestamp: app.CreatedAt,
			Status:         app.Status,
			IsSelfService:  app.SelfService,
		}, true
	default:
		return InstallerCardInfo{}, false
	}
}

// ShowInstallerCard requires a concrete team scope, a role that can see
// installers, and an attached installer.
func ShowInstallerCard(team teamscope.ID, perms appstate.Permissions, title fleetapi.SoftwareTitle) bool {
	if team.IsAllTeams() {
		return false
	}
	return perms.CanViewInstallers(team) && title.IsAvailableForInstall()
}

// ShowVersionsCard hides the versions card for tarball packages.
func ShowVersionsCard(title fleetapi.SoftwareTitle) bool {
	return title.Source != SourceTarballPackages
}

type SoftwareVersionRow struct {
	Version            string
	VulnerabilityCount int
	HostsCount         string
	HostsHref          string
}

type SoftwareTitleViewData struct {
	Layout LayoutData

	TitleID uint
	TeamID  teamscope.ID

	// NotDetected is set when the backend answered 403 or 404.
	NotDetected bool

	Name            string
	TypeLabel       string
	IconURL         Optional[string]
	VersionCount    int
	HostsCount      string
	HostsHref       string
	CountsUpdatedAt Optional[string]

	ShowInstaller      bool
	Installer          InstallerCardInfo
	InstallerAdded     ActivityTime
	CanDeleteInstaller bool

	ShowVersions bool
	IsIPadOrIOS  bool
	Versions     []SoftwareVersionRow
}

// SoftwareTitleHostsHref links to the Fleet host list filtered to a title.
func SoftwareTitleHostsHref(fleetURL string, titleID uint, versionID uint, team teamscope.ID) string {
	values := url.Values{}
	if versionID > 0 {
		values.Set("software_version_id", strconv.FormatUint(uint64(versionID), 10))
	} else {
		values.Set("software_title_id", strconv.FormatUint(uint64(titleID), 10))
	}
	if v := team.QueryValue(); v != "" {
		values.Set("team_id", v)
	}
	return fleetURL + "/hosts/manage?" + values.Encode()
}

// SoftwareTitlesHref is the console redirect target after the last installer of
// a title without versions is removed.
func SoftwareTitlesHref(team teamscope.ID) string {
	if v := team.QueryValue(); v != "" {
		return "/software/titles?team_id=" + url.QueryEscape(v)
	}
	return "/software/titles"
}
