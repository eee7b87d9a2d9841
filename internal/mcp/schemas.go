package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func recordProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"description":          description,
		"additionalProperties": true,
	}
}

// objectTool builds a tool whose arguments are a flat object
func objectTool(name, description string, props map[string]interface{}, required ...string) mcp.Tool {
	if props == nil {
		props = map[string]interface{}{}
	}
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}

// recordTool builds a tool taking a single JSON row argument
func recordTool(name, description, recordDescription string) mcp.Tool {
	return objectTool(name, description,
		map[string]interface{}{
			"record": recordProp(recordDescription),
		}, "record")
}

func createTool(kind, table string) mcp.Tool {
	return recordTool("create_"+kind,
		"Create a "+table+" row for a point. Identifiers and ordinals are assigned by the server.",
		"The "+table+" row as JSON, point_id required")
}

func updateTool(kind, table, key string) mcp.Tool {
	return recordTool("update_"+kind,
		"Update a "+table+" row identified by "+key+" and re-run its dependent updates",
		"The full "+table+" row as JSON, "+key+" required")
}

func deleteTool(kind, table string) mcp.Tool {
	return objectTool("delete_"+kind,
		"Delete a "+table+" row and everything that depends on it",
		map[string]interface{}{
			"id": stringProp("Identifier of the " + table + " row"),
		}, "id")
}

func listTool(kind, table string) mcp.Tool {
	return objectTool("list_"+kind,
		"List the "+table+" rows of a point ordered by depth",
		map[string]interface{}{
			"point_id": stringProp("Point identifier"),
		}, "point_id")
}

func listProjectsTool() mcp.Tool {
	return objectTool("list_projects", "List every project", nil)
}

func getProjectTool() mcp.Tool {
	return objectTool("get_project", "Read one project",
		map[string]interface{}{
			"project_id": stringProp("Project identifier"),
		}, "project_id")
}

func renameProjectTool() mcp.Tool {
	return objectTool("rename_project",
		"Rename a project. Its points follow the new identifier in the same transaction.",
		map[string]interface{}{
			"from": stringProp("Current project identifier"),
			"to":   stringProp("New project identifier"),
		}, "from", "to")
}

func deleteProjectTool() mcp.Tool {
	return objectTool("delete_project",
		"Delete a project, its points and every child row",
		map[string]interface{}{
			"project_id": stringProp("Project identifier"),
		}, "project_id")
}

func listPointsTool() mcp.Tool {
	return objectTool("list_points", "List the points of a project",
		map[string]interface{}{
			"project_id": stringProp("Project identifier"),
		}, "project_id")
}

func getPointTool() mcp.Tool {
	return objectTool("get_point", "Read one point",
		map[string]interface{}{
			"project_id": stringProp("Project identifier"),
			"point_id":   stringProp("Point identifier"),
		}, "project_id", "point_id")
}

func renamePointTool() mcp.Tool {
	return objectTool("rename_point",
		"Rename a point within its project. Every child row follows the new identifier.",
		map[string]interface{}{
			"project_id": stringProp("Project identifier"),
			"from":       stringProp("Current point identifier"),
			"to":         stringProp("New point identifier"),
		}, "project_id", "from", "to")
}

func deletePointTool() mcp.Tool {
	return objectTool("delete_point",
		"Delete a point and every child row",
		map[string]interface{}{
			"project_id": stringProp("Project identifier"),
			"point_id":   stringProp("Point identifier"),
		}, "project_id", "point_id")
}

func getByIDTool(kind, table string) mcp.Tool {
	return objectTool("get_"+kind, "Read one "+table+" row with its derived values",
		map[string]interface{}{
			"id": stringProp("Identifier of the " + table + " row"),
		}, "id")
}

func saveStrengthTool() mcp.Tool {
	return recordTool("save_strength_weathering",
		"Create or replace the strength and weathering labels of a core",
		"The strength_weathering row as JSON, core_id required")
}

func getStrengthTool() mcp.Tool {
	return objectTool("get_strength_weathering",
		"Read the strength and weathering labels of a core with their indices",
		map[string]interface{}{
			"core_id": stringProp("Core identifier"),
		}, "core_id")
}

func saveWaterTool() mcp.Tool {
	return recordTool("save_water_observation",
		"Create or replace the water observation of a point",
		"The water_observation row as JSON, point_id required")
}

func getWaterTool() mcp.Tool {
	return objectTool("get_water_observation", "Read the water observation of a point",
		map[string]interface{}{
			"point_id": stringProp("Point identifier"),
		}, "point_id")
}

func saveMethodTool() mcp.Tool {
	return recordTool("save_method",
		"Create or replace the boring or drilling method of a point",
		"The method row as JSON, point_id and category required")
}

func markSyncedTool() mcp.Tool {
	return objectTool("mark_synced",
		"Flag a project, or one of its points, and every child row as synced",
		map[string]interface{}{
			"project_id": stringProp("Project identifier"),
			"point_id":   stringProp("Optional point identifier; the whole project when omitted"),
		}, "project_id")
}

func dirtySummaryTool() mcp.Tool {
	return objectTool("dirty_summary",
		"Count unsynced rows per table and list the projects and points they belong to", nil)
}

func pointReportTool() mcp.Tool {
	return objectTool("point_report",
		"Every table of a point sorted by depth with computed percentages, indices and classes",
		map[string]interface{}{
			"project_id": stringProp("Project identifier"),
			"point_id":   stringProp("Point identifier"),
		}, "project_id", "point_id")
}

func projectReportTool() mcp.Tool {
	return objectTool("project_report",
		"The project row and one point report per point",
		map[string]interface{}{
			"project_id": stringProp("Project identifier"),
		}, "project_id")
}
