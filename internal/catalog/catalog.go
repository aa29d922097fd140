// Package catalog loads the static reference data bundled with the console:
// osquery table documentation and policy templates.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Column is one osquery table column.
type Column struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// Table documents one osquery table. Examples and Notes are absent for most tables.
type Table struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Platforms   []string `yaml:"platforms"`
	Columns     []Column `yaml:"columns"`
	Examples    *string  `yaml:"examples"`
	Notes       *string  `yaml:"notes"`
	Evented     bool     `yaml:"evented"`
}

// PolicyTemplate is a ready-made policy offered by the add-policy modal.
type PolicyTemplate struct {
	Key         int    `yaml:"key"`
	Name        string `yaml:"name"`
	Query       string `yaml:"query"`
	Description string `yaml:"description"`
	Resolution  string `yaml:"resolution"`
	Platform    string `yaml:"platform"`
	Critical    bool   `yaml:"critical"`
	MDMRequired bool   `yaml:"mdm_required"`
}

type policyFile struct {
	Default   PolicyTemplate   `yaml:"default"`
	Templates []PolicyTemplate `yaml:"templates"`
}

// Catalog is immutable after Load.
type Catalog struct {
	tables        []Table
	tablesByName  map[string]int
	defaultPolicy PolicyTemplate
	templates     []PolicyTemplate
}

// Load parses the bundled catalog.
func Load() (*Catalog, error) {
	rawTables, err := dataFS.ReadFile("data/osquery_tables.yaml")
	if err != nil {
		return nil, err
	}
	rawPolicies, err := dataFS.ReadFile("data/policy_templates.yaml")
	if err != nil {
		return nil, err
	}
	return Parse(rawTables, rawPolicies)
}

// Parse builds a catalog from YAML documents.
func Parse(tablesYAML, policiesYAML []byte) (*Catalog, error) {
	var tables []Table
	if err := yaml.Unmarshal(tablesYAML, &tables); err != nil {
		return nil, fmt.Errorf("parse osquery tables: %w", err)
	}
	var policies policyFile
	if err := yaml.Unmarshal(policiesYAML, &policies); err != nil {
		return nil, fmt.Errorf("parse policy templates: %w", err)
	}

	c := &Catalog{tablesByName: make(map[string]int, len(tables))}
	for _, t := range tables {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return nil, errors.New("osquery table without a name")
		}
		if _, dup := c.tablesByName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate osquery table %q", t.Name)
		}
		c.tablesByName[t.Name] = len(c.tables)
		c.tables = append(c.tables, t)
	}
	sort.SliceStable(c.tables, func(i, j int) bool { return c.tables[i].Name < c.tables[j].Name })
	for i, t := range c.tables {
		c.tablesByName[t.Name] = i
	}

	if strings.TrimSpace(policies.Default.Query) == "" {
		return nil, errors.New("default policy query is required")
	}
	c.defaultPolicy = policies.Default
	seen := make(map[int]struct{}, len(policies.Templates))
	for _, p := range policies.Templates {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Query) == "" {
			return nil, fmt.Errorf("policy template %d needs a name and query", p.Key)
		}
		if _, dup := seen[p.Key]; dup {
			return nil, fmt.Errorf("duplicate policy template key %d", p.Key)
		}
		seen[p.Key] = struct{}{}
		c.templates = append(c.templates, p)
	}
	return c, nil
}

// TableNames returns every table name in alphabetical order.
func (c *Catalog) TableNames() []string {
	names := make([]string, 0, len(c.tables))
	for _, t := range c.tables {
		names = append(names, t.Name)
	}
	return names
}

// Table looks up one table by name.
func (c *Catalog) Table(name string) (Table, bool) {
	i, ok := c.tablesByName[strings.TrimSpace(name)]
	if !ok {
		return Table{}, false
	}
	return c.tables[i], true
}

// PolicyTemplates returns the templates in display order.
func (c *Catalog) PolicyTemplates() []PolicyTemplate {
	return append([]PolicyTemplate(nil), c.templates...)
}

// PolicyTemplate looks up a template by key.
func (c *Catalog) PolicyTemplate(key int) (PolicyTemplate, bool) {
	for _, p := range c.templates {
		if p.Key == key {
			return p, true
		}
	}
	return PolicyTemplate{}, false
}

// DefaultPolicy is the starting point for "create your own policy".
func (c *Catalog) DefaultPolicy() PolicyTemplate {
	return c.defaultPolicy
}
