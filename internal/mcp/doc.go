// Package mcp implements the Model Context Protocol (MCP) server for geolog.
//
// Every command of the cascade engine and every read of the report layer is
// exposed as a tool. Tool names follow the pattern <verb>_<kind>:
//   - create_/update_/delete_/list_ for cores, samples, hydraulic,
//     discontinuity, core_condition, piezometer and soil_profile
//   - create_/update_/get_/rename_/delete_ for project and point
//   - save_/get_ for strength_weathering and water_observation, save_method
//   - mark_synced and dirty_summary for the sync flag
//   - point_report and project_report for the computed views
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// stdout carries the protocol, so all logging goes to stderr.
//
// # Rows
//
// Tools that write a row take it under "record", either as an object or as a
// JSON string, using the column names of the table:
//
//	Request:
//	{
//	  "name": "create_sample",
//	  "arguments": {
//	    "record": {"point_id": "BH-01", "depth": 2.0, "bottom": 2.45,
//	               "type": "SPT", "v_15": 8, "v_30": 12, "v_45": 15}
//	  }
//	}
//
//	Response:
//	{
//	  "sample": {"sample_id": "SAMP-YW3V28", "number": 1, ...},
//	  "n_value": "27",
//	  "soil_profile": {"soil_id": "SOIL-YW3V29", "linked_sample_id": "SAMP-YW3V28", ...}
//	}
//
// Identifiers, ordinals and sync flags in a create record are ignored; the
// engine assigns them.
//
// # Renames
//
//	{
//	  "name": "rename_point",
//	  "arguments": {"project_id": "W51-01", "from": "BH-01", "to": "BH-01A"}
//	}
//
// The response counts the rows rewritten per table.
//
// # Error Handling
//
// Engine errors map to MCP error codes:
//   - -32602: invalid arguments, interval or field value (data.field names the field)
//   - -32001: project, point or row not found
//   - -32002: identifier already used in its scope
//   - -32003: soil stratum owned by a test (data.owner_kind, data.owner_id)
//   - -32004: no free identifier after every retry
//   - -32603: storage failure
package mcp
