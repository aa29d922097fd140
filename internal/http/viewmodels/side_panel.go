package viewmodels

import "github.com/fleet-console/fleet-console/internal/catalog"

// TableRequiresMDM lists osquery tables that only return data on MDM-enrolled hosts.
func TableRequiresMDM(name string) bool {
	return name == "managed_policies" || name == "mdm_bridge"
}

// QuerySidePanelData is the documentation panel for one osquery table.
func QuerySidePanelData(table catalog.Table, tableNames []string) QuerySidePanelViewData {
	columns := make([]QueryTableColumn, 0, len(table.Columns))
	for _, c := range table.Columns {
		columns = append(columns, QueryTableColumn{
			Name:        c.Name,
			Type:        c.Type,
			Description: c.Description,
			Required:    c.Required,
		})
	}
	platforms := make([]string, 0, len(table.Platforms))
	for _, p := range table.Platforms {
		platforms = append(platforms, PlatformLabel(p))
	}
	return QuerySidePanelViewData{
		Name:        table.Name,
		Description: table.Description,
		Platforms:   platforms,
		Columns:     columns,
		Examples:    OptionalString(table.Examples),
		Notes:       OptionalString(table.Notes),
		Evented:     table.Evented,
		MDMRequired: TableRequiresMDM(table.Name),
		SourceURL:   "https://www.fleetdm.com/tables/" + table.Name,
		TableNames:  tableNames,
		TableCount:  len(tableNames),
	}
}
