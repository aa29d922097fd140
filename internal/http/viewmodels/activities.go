package viewmodels

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
)

const (
	DefaultGravatarLink = "https://fleetdm.com/images/permanent/icon-avatar-default-transparent-64x64%402x.png"
	exactTimeLayout     = "Jan 2, 2006, 3:04:05 PM MST"
)

// ActivityTime is the display form of a created_at value. Valid is false when
// the raw value is not an RFC 3339 timestamp; both strings are empty then.
type ActivityTime struct {
	Valid    bool
	Relative string
	Exact    string
}

// ParseActivityTime validates raw before formatting it relative to now.
func ParseActivityTime(raw string, now time.Time) ActivityTime {
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return ActivityTime{}
	}
	return ActivityTime{
		Valid:    true,
		Relative: RelativeTime(ts, now),
		Exact:    ts.UTC().Format(exactTimeLayout),
	}
}

// ActivityRelativeTime returns the relative time of raw, or ok=false when raw
// is not a timestamp.
func ActivityRelativeTime(raw string, now time.Time) (string, bool) {
	t := ParseActivityTime(raw, now)
	return t.Relative, t.Valid
}

// RelativeTime renders the distance between t and now in the largest whole unit,
// e.g. "5 minutes ago" or "in 2 days".
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	future := d < 0
	if future {
		d = -d
	}

	var n int64
	var unit string
	switch {
	case d < time.Minute:
		n, unit = int64(d/time.Second), "second"
	case d < time.Hour:
		n, unit = int64(d/time.Minute), "minute"
	case d < 24*time.Hour:
		n, unit = int64(d/time.Hour), "hour"
	case d < 30*24*time.Hour:
		n, unit = int64(d/(24*time.Hour)), "day"
	case d < 365*24*time.Hour:
		n, unit = int64(d/(30*24*time.Hour)), "month"
	default:
		n, unit = int64(d/(365*24*time.Hour)), "year"
	}
	if n != 1 {
		unit += "s"
	}
	if future {
		return fmt.Sprintf("in %d %s", n, unit)
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}

// GravatarURL is the avatar for an actor email, or the default avatar when the
// email is absent.
func GravatarURL(email *string) string {
	if email == nil || strings.TrimSpace(*email) == "" {
		return DefaultGravatarLink
	}
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(*email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) +
		"?d=" + url.QueryEscape(DefaultGravatarLink) + "&size=200"
}

// ActivityElementID is the DOM id of an activity. Past activities use their
// numeric id, upcoming ones their uuid.
func ActivityElementID(a fleetapi.Activity) string {
	if a.ID > 0 {
		return fmt.Sprintf("activity-%d", a.ID)
	}
	return "activity-" + a.UUID
}

var activityPhrases = map[string]string{
	"created_policy":                 "created a policy",
	"edited_policy":                  "edited a policy",
	"deleted_policy":                 "deleted a policy",
	"created_saved_query":            "created a query",
	"edited_saved_query":             "edited a query",
	"deleted_saved_query":            "deleted a query",
	"deleted_multiple_saved_query":   "deleted multiple queries",
	"live_query":                     "ran a live query",
	"user_logged_in":                 "logged in",
	"created_team":                   "created a team",
	"deleted_team":                   "deleted a team",
	"added_software":                 "added software",
	"deleted_software":               "deleted software",
	"installed_software":             "installed software",
	"uninstalled_software":           "uninstalled software",
	"added_app_store_app":            "added an App Store app",
	"deleted_app_store_app":          "deleted an App Store app",
	"installed_app_store_app":        "installed an App Store app",
	"ran_script":                     "ran a script",
	"edited_macos_min_version":       "edited the macOS minimum version",
	"edited_ios_min_version":         "edited the iOS minimum version",
	"edited_ipados_min_version":      "edited the iPadOS minimum version",
	"edited_windows_updates":         "edited Windows OS updates",
	"canceled_run_script":            "canceled a script run",
	"canceled_install_software":      "canceled a software install",
	"canceled_uninstall_software":    "canceled a software uninstall",
	"canceled_install_app_store_app": "canceled an App Store app install",
}

// ActivityDescription is the one-line summary shown next to the actor.
func ActivityDescription(activityType string) string {
	if phrase, ok := activityPhrases[activityType]; ok {
		return phrase
	}
	words := strings.Fields(strings.ReplaceAll(activityType, "_", " "))
	if len(words) == 0 {
		return "performed an action"
	}
	return strings.Join(words, " ")
}

// ActorName is the display name of whoever performed an activity.
func ActorName(a fleetapi.Activity) string {
	switch {
	case a.FleetInitiated:
		return "Fleet"
	case a.ActorFullName != nil && strings.TrimSpace(*a.ActorFullName) != "":
		return strings.TrimSpace(*a.ActorFullName)
	case a.ActorEmail != nil && strings.TrimSpace(*a.ActorEmail) != "":
		return strings.TrimSpace(*a.ActorEmail)
	default:
		return "Someone"
	}
}

// ActivityItemView is one rendered row of an activity feed.
type ActivityItemView struct {
	ElementID   string
	Type        string
	ActorName   string
	Description string
	AvatarURL   string

	UseFleetAvatar   bool
	UseAPIOnlyAvatar bool

	Time ActivityTime

	Controls ActivityControls

	DetailsHref string
	CancelHref  string
}

// ControlState is how an action button renders.
type ControlState int

const (
	ControlAbsent ControlState = iota
	ControlInert
	ControlActive
)

type ActivityControls struct {
	ShowDetails ControlState
	Cancel      ControlState
}

type ActivitiesViewData struct {
	Layout LayoutData

	Items      []ActivityItemView
	EmptyState *EmptyState
	Page       int
	PrevHref   string
	NextHref   string
	Details    *ActivityDetailsViewData
}

type HostActivitiesViewData struct {
	Layout LayoutData

	HostID   uint
	Past     []ActivityItemView
	Upcoming []ActivityItemView

	PastEmpty     *EmptyState
	UpcomingEmpty *EmptyState
}

type ActivityDetailsViewData struct {
	ElementID string
	Type      string
	Time      ActivityTime
	// DetailsJSON is the pretty-printed details payload; empty when absent.
	DetailsJSON string
	CloseHref   string
}
