package teamscope

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want ID
	}{
		{raw: "", want: AllTeamsID},
		{raw: "  ", want: AllTeamsID},
		{raw: "abc", want: AllTeamsID},
		{raw: "-1", want: AllTeamsID},
		{raw: "-5", want: AllTeamsID},
		{raw: "0", want: NoTeamID},
		{raw: "7", want: 7},
	}
	for _, tc := range tests {
		if got := Parse(tc.raw, AllTeamsID); got != tc.want {
			t.Fatalf("Parse(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestForAPI(t *testing.T) {
	t.Parallel()

	if got := ID(AllTeamsID).ForAPI(); got != nil {
		t.Fatalf("all teams ForAPI = %v, want nil", *got)
	}
	if got := ID(NoTeamID).ForAPI(); got == nil || *got != 0 {
		t.Fatalf("no team ForAPI = %v, want 0", got)
	}
	if got := ID(3).ForAPI(); got == nil || *got != 3 {
		t.Fatalf("team ForAPI = %v, want 3", got)
	}
}

func TestQueryValue(t *testing.T) {
	t.Parallel()

	if got := ID(AllTeamsID).QueryValue(); got != "" {
		t.Fatalf("QueryValue(all) = %q, want empty", got)
	}
	if got := ID(0).QueryValue(); got != "0" {
		t.Fatalf("QueryValue(no team) = %q, want 0", got)
	}
}
