package components

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
)

func testActivity() fleetapi.Activity {
	return fleetapi.Activity{
		ID:        7,
		Type:      "ran_script",
		CreatedAt: "2024-06-01T11:00:00Z",
		Details:   json.RawMessage(`{"script_name":"fix.sh"}`),
	}
}

func TestActivityItemShowDetailsStopsPropagationBeforeNotifying(t *testing.T) {
	t.Parallel()

	item := NewActivityItem(testActivity(), ActivityItemOptions{})
	ev := &Event{}
	var got []ShowDetailsData
	item.OnShowDetails(func(d ShowDetailsData) {
		if !ev.PropagationStopped() {
			t.Error("listener ran before propagation was stopped")
		}
		got = append(got, d)
	})

	if !item.ClickShowDetails(ev) {
		t.Fatal("expected listeners to run")
	}
	if item.State() != DetailsRequested {
		t.Fatalf("state = %s", item.State())
	}
	if len(got) != 1 || got[0].Type != "ran_script" || got[0].CreatedAt != "2024-06-01T11:00:00Z" || string(got[0].Details) != `{"script_name":"fix.sh"}` {
		t.Fatalf("details = %#v", got)
	}

	item.CloseDetails()
	if item.State() != Collapsed {
		t.Fatalf("state after close = %s", item.State())
	}
}

func TestActivityItemDefaultListenersAreNoops(t *testing.T) {
	t.Parallel()

	item := NewActivityItem(testActivity(), ActivityItemOptions{})
	item.OnShowDetails(nil)
	item.OnCancel(nil)
	if !item.ClickShowDetails(&Event{}) {
		t.Fatal("click should transition even without listeners")
	}
	item.CloseDetails()
	if !item.ClickCancel(nil) {
		t.Fatal("cancel should transition even without listeners")
	}
}

func TestActivityItemHiddenDetails(t *testing.T) {
	t.Parallel()

	item := NewActivityItem(testActivity(), ActivityItemOptions{HideShowDetails: true})
	called := false
	item.OnShowDetails(func(ShowDetailsData) { called = true })
	ev := &Event{}
	if item.ClickShowDetails(ev) || called {
		t.Fatal("hidden details must not notify")
	}
	if !ev.PropagationStopped() {
		t.Fatal("propagation is stopped even when ignored")
	}
	if item.Controls().ShowDetails != viewmodels.ControlAbsent {
		t.Fatal("hidden details button is absent")
	}
}

func TestActivityItemDisabledCancelIsInertNotAbsent(t *testing.T) {
	t.Parallel()

	item := NewActivityItem(testActivity(), ActivityItemOptions{DisableCancel: true})
	called := false
	item.OnCancel(func() { called = true })

	if item.Controls().Cancel != viewmodels.ControlInert {
		t.Fatalf("cancel control = %d, want inert", item.Controls().Cancel)
	}
	if item.ClickCancel(&Event{}) || called {
		t.Fatal("disabled cancel must not notify")
	}
	if item.State() != Collapsed {
		t.Fatalf("state = %s", item.State())
	}
}

func TestActivityItemHiddenCancelIsAbsent(t *testing.T) {
	t.Parallel()

	item := NewActivityItem(testActivity(), ActivityItemOptions{HideCancel: true})
	if item.Controls().Cancel != viewmodels.ControlAbsent {
		t.Fatal("hidden cancel is absent")
	}
	if item.ClickCancel(&Event{}) {
		t.Fatal("hidden cancel must not notify")
	}
}

func TestActivityItemCancelIsTerminal(t *testing.T) {
	t.Parallel()

	item := NewActivityItem(testActivity(), ActivityItemOptions{})
	calls := 0
	item.OnCancel(func() { calls++ })
	item.OnCancel(func() { calls++ })

	ev := &Event{}
	if !item.ClickCancel(ev) || !ev.PropagationStopped() {
		t.Fatal("cancel should notify and stop propagation")
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if item.ClickCancel(&Event{}) || calls != 2 {
		t.Fatal("cancel-requested is terminal")
	}
	if item.ClickShowDetails(&Event{}) {
		t.Fatal("canceled rows do not open details")
	}
	if item.Controls().Cancel != viewmodels.ControlInert {
		t.Fatal("canceled row renders an inert cancel button")
	}
}

func TestActivityItemView(t *testing.T) {
	t.Parallel()

	act := testActivity()
	act.CreatedAt = "not a date"
	view := NewActivityItem(act, ActivityItemOptions{}).View(time.Now(), "/d", "/c")
	if view.ElementID != "activity-7" || view.Time.Valid || view.Time.Relative != "" {
		t.Fatalf("view = %#v", view)
	}
	if view.AvatarURL != viewmodels.DefaultGravatarLink {
		t.Fatalf("avatar = %q", view.AvatarURL)
	}
}
