package handlers

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
	"github.com/fleet-console/fleet-console/internal/teamscope"
	"github.com/labstack/echo/v5"
)

const (
	sessionKeyQuerySelection = "queries.selection."
	sessionKeyPolicyDraft    = "policies.draft"
)

func querySelectionKey(team teamscope.ID) string {
	return sessionKeyQuerySelection + strconv.Itoa(int(team))
}

// loadQuerySelection returns the checked query ids of team. Ids are stored as a
// comma separated string so the session codec never needs a registered type.
func (h *Handlers) loadQuerySelection(c *echo.Context, team teamscope.ID) []uint {
	if h.Sessions == nil {
		return nil
	}
	raw := h.Sessions.GetString(c.Request().Context(), querySelectionKey(team))
	return parseIDList(strings.Split(raw, ","))
}

func (h *Handlers) saveQuerySelection(c *echo.Context, team teamscope.ID, ids []uint) {
	if h.Sessions == nil {
		return
	}
	ctx := c.Request().Context()
	if len(ids) == 0 {
		h.Sessions.Remove(ctx, querySelectionKey(team))
		return
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	h.Sessions.Put(ctx, querySelectionKey(team), strings.Join(parts, ","))
}

func (h *Handlers) loadPolicyDraft(c *echo.Context) (viewmodels.PolicyDraft, bool) {
	if h.Sessions == nil {
		return viewmodels.PolicyDraft{}, false
	}
	raw := h.Sessions.GetString(c.Request().Context(), sessionKeyPolicyDraft)
	if raw == "" {
		return viewmodels.PolicyDraft{}, false
	}
	var draft viewmodels.PolicyDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return viewmodels.PolicyDraft{}, false
	}
	return draft, true
}

func (h *Handlers) savePolicyDraft(c *echo.Context, draft viewmodels.PolicyDraft) error {
	if h.Sessions == nil {
		return nil
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	h.Sessions.Put(c.Request().Context(), sessionKeyPolicyDraft, string(payload))
	return nil
}

func (h *Handlers) clearPolicyDraft(c *echo.Context) {
	if h.Sessions == nil {
		return
	}
	h.Sessions.Remove(c.Request().Context(), sessionKeyPolicyDraft)
}

// parseIDList parses positive ids, skipping blanks and malformed values. The
// result is sorted and deduplicated.
func parseIDList(values []string) []uint {
	var ids []uint
	for _, v := range values {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 0)
		if err != nil || n == 0 {
			continue
		}
		ids = append(ids, uint(n))
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}
