package catalog

import (
	"strings"
	"testing"
)

func TestLoadBundledCatalog(t *testing.T) {
	t.Parallel()

	c, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	names := c.TableNames()
	if len(names) == 0 {
		t.Fatal("expected osquery tables")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("table names not sorted: %v", names)
		}
	}

	users, ok := c.Table("users")
	if !ok {
		t.Fatal("users table missing")
	}
	if users.Examples == nil || !strings.Contains(*users.Examples, "SELECT") {
		t.Fatalf("users examples = %v", users.Examples)
	}
	if users.Notes != nil {
		t.Fatal("users table has no notes")
	}

	events, ok := c.Table("es_process_events")
	if !ok || !events.Evented {
		t.Fatal("es_process_events should be evented")
	}

	if _, ok := c.Table("nope"); ok {
		t.Fatal("unknown table should not resolve")
	}

	if len(c.PolicyTemplates()) == 0 {
		t.Fatal("expected policy templates")
	}
	if c.DefaultPolicy().Query == "" {
		t.Fatal("default policy query is empty")
	}
	tpl, ok := c.PolicyTemplate(5)
	if !ok || !tpl.MDMRequired {
		t.Fatalf("template 5 = %#v", tpl)
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	t.Parallel()

	policies := []byte("default: {name: d, query: SELECT 1;}\ntemplates: []\n")
	tests := []struct {
		name     string
		tables   string
		policies []byte
	}{
		{"duplicate table", "- {name: users}\n- {name: users}\n", policies},
		{"unnamed table", "- {description: x}\n", policies},
		{"missing default query", "- {name: users}\n", []byte("default: {name: d}\n")},
		{"duplicate template key", "- {name: users}\n", []byte("default: {query: SELECT 1;}\ntemplates:\n  - {key: 1, name: a, query: q}\n  - {key: 1, name: b, query: q}\n")},
		{"malformed yaml", "- {name: [", policies},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.tables), tt.policies); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
