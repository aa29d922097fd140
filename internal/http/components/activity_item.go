package components

import (
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
)

// ActivityState is the interaction state of one activity row.
type ActivityState int

const (
	Collapsed ActivityState = iota
	DetailsRequested
	CancelRequested
)

func (s ActivityState) String() string {
	switch s {
	case Collapsed:
		return "collapsed"
	case DetailsRequested:
		return "details-requested"
	case CancelRequested:
		return "cancel-requested"
	default:
		return "unknown"
	}
}

// ShowDetailsData is what a details listener receives.
type ShowDetailsData struct {
	Type      string
	Details   json.RawMessage
	CreatedAt string
}

// ActivityItemOptions are the rendering flags of an activity row.
type ActivityItemOptions struct {
	// HideShowDetails removes the details button.
	HideShowDetails bool
	// HideCancel removes the cancel button.
	HideCancel bool
	// DisableCancel renders the cancel button but ignores clicks.
	DisableCancel bool
}

// ActivityItem is one activity row. Listeners default to no-ops.
type ActivityItem struct {
	activity fleetapi.Activity
	opts     ActivityItemOptions

	mu              sync.Mutex
	state           ActivityState
	showListeners   []func(ShowDetailsData)
	cancelListeners []func()
}

func NewActivityItem(activity fleetapi.Activity, opts ActivityItemOptions) *ActivityItem {
	return &ActivityItem{activity: activity, opts: opts}
}

func (a *ActivityItem) Activity() fleetapi.Activity { return a.activity }

func (a *ActivityItem) State() ActivityState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// OnShowDetails registers a listener for details requests.
func (a *ActivityItem) OnShowDetails(listener func(ShowDetailsData)) {
	if listener == nil {
		return
	}
	a.mu.Lock()
	a.showListeners = append(a.showListeners, listener)
	a.mu.Unlock()
}

// OnCancel registers a listener for cancel requests.
func (a *ActivityItem) OnCancel(listener func()) {
	if listener == nil {
		return
	}
	a.mu.Lock()
	a.cancelListeners = append(a.cancelListeners, listener)
	a.mu.Unlock()
}

// ClickShowDetails handles a click on the details button. The event stops
// propagating before any listener runs. It reports whether listeners ran.
func (a *ActivityItem) ClickShowDetails(ev *Event) bool {
	ev.StopPropagation()

	a.mu.Lock()
	if a.opts.HideShowDetails || a.state != Collapsed {
		a.mu.Unlock()
		return false
	}
	a.state = DetailsRequested
	listeners := slices.Clone(a.showListeners)
	a.mu.Unlock()

	data := ShowDetailsData{
		Type:      a.activity.Type,
		Details:   a.activity.Details,
		CreatedAt: a.activity.CreatedAt,
	}
	for _, l := range listeners {
		l(data)
	}
	return true
}

// CloseDetails returns the row to Collapsed after the parent closes the details view.
func (a *ActivityItem) CloseDetails() {
	a.mu.Lock()
	if a.state == DetailsRequested {
		a.state = Collapsed
	}
	a.mu.Unlock()
}

// ClickCancel handles a click on the cancel button. CancelRequested is terminal.
// It reports whether listeners ran.
func (a *ActivityItem) ClickCancel(ev *Event) bool {
	ev.StopPropagation()

	a.mu.Lock()
	if a.opts.HideCancel || a.opts.DisableCancel || a.state == CancelRequested {
		a.mu.Unlock()
		return false
	}
	a.state = CancelRequested
	listeners := slices.Clone(a.cancelListeners)
	a.mu.Unlock()

	for _, l := range listeners {
		l()
	}
	return true
}

// Controls reports how each action button renders.
func (a *ActivityItem) Controls() viewmodels.ActivityControls {
	a.mu.Lock()
	defer a.mu.Unlock()

	controls := viewmodels.ActivityControls{
		ShowDetails: viewmodels.ControlActive,
		Cancel:      viewmodels.ControlActive,
	}
	if a.opts.HideShowDetails {
		controls.ShowDetails = viewmodels.ControlAbsent
	}
	switch {
	case a.opts.HideCancel:
		controls.Cancel = viewmodels.ControlAbsent
	case a.opts.DisableCancel || a.state == CancelRequested:
		controls.Cancel = viewmodels.ControlInert
	}
	return controls
}

// View renders the row for a feed. Empty hrefs leave the matching button without a target.
func (a *ActivityItem) View(now time.Time, detailsHref, cancelHref string) viewmodels.ActivityItemView {
	act := a.activity
	return viewmodels.ActivityItemView{
		ElementID:        viewmodels.ActivityElementID(act),
		Type:             act.Type,
		ActorName:        viewmodels.ActorName(act),
		Description:      viewmodels.ActivityDescription(act.Type),
		AvatarURL:        viewmodels.GravatarURL(act.ActorEmail),
		UseFleetAvatar:   act.FleetInitiated,
		UseAPIOnlyAvatar: act.ActorAPIOnly,
		Time:             viewmodels.ParseActivityTime(act.CreatedAt, now),
		Controls:         a.Controls(),
		DetailsHref:      detailsHref,
		CancelHref:       cancelHref,
	}
}
