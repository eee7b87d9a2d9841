package mcp

import (
	"context"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dshills/geolog-mcp/internal/cascade"
	"github.com/dshills/geolog-mcp/internal/logger"
	"github.com/dshills/geolog-mcp/internal/report"
	"github.com/dshills/geolog-mcp/pkg/types"
)

const (
	// ServerName is the MCP server name
	ServerName = "geolog-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	engine  *cascade.Engine
	reports *report.Reporter
	log     *logger.Logger

	// handlers indexes the registered tools by name
	handlers map[string]server.ToolHandlerFunc
}

// NewServer creates a new MCP server instance over an engine and its reporter
func NewServer(engine *cascade.Engine, reports *report.Reporter, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.NewNop()
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		mcp:      mcpServer,
		engine:   engine,
		reports:  reports,
		log:      log,
		handlers: map[string]server.ToolHandlerFunc{},
	}

	if err := s.registerTools(); err != nil {
		return nil, err
	}
	s.log.Debug("mcp tools registered", "count", len(s.handlers))
	return s, nil
}

// Serve runs the MCP protocol on stdio until ctx is done or stdin closes
func (s *Server) Serve(ctx context.Context) error {
	return s.Listen(ctx, os.Stdin, os.Stdout)
}

// Listen runs the MCP protocol over the given streams
func (s *Server) Listen(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.log.SugaredLogger.Desugar()))
	return stdio.Listen(ctx, in, out)
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
	s.handlers[tool.Name] = handler
}

// recordTools registers the create, update, delete and list tools of one
// point child table
type recordTools[T, R any] struct {
	kind   string
	plural string
	table  string
	key    string
	create func(context.Context, T) (R, error)
	update func(context.Context, T) (R, error)
	remove func(context.Context, string) (*cascade.DeleteResult, error)
	list   func(context.Context, string) ([]*T, error)
}

func (k recordTools[T, R]) register(s *Server) {
	s.addTool(createTool(k.kind, k.table), withRecord(s, "create_"+k.kind, k.create))
	s.addTool(updateTool(k.kind, k.table, k.key), withRecord(s, "update_"+k.kind, k.update))
	s.addTool(deleteTool(k.kind, k.table), withString(s, "delete_"+k.kind, "id", k.remove))
	s.addTool(listTool(k.plural, k.table), withString(s, "list_"+k.plural, "point_id", k.list))
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	e := s.engine

	// Projects
	s.addTool(listProjectsTool(), s.handleListProjects)
	s.addTool(getProjectTool(), withString(s, "get_project", "project_id", e.GetProject))
	s.addTool(recordTool("create_project", "Create a project. The identifier must be unused.",
		"The project row as JSON, project_id required"), withRecord(s, "create_project", e.CreateProject))
	s.addTool(recordTool("update_project", "Update the descriptive fields of a project",
		"The project row as JSON, project_id required"), withRecord(s, "update_project", e.UpdateProject))
	s.addTool(renameProjectTool(), s.handleRenameProject)
	s.addTool(deleteProjectTool(), withString(s, "delete_project", "project_id", e.DeleteProject))

	// Points
	s.addTool(listPointsTool(), withString(s, "list_points", "project_id", e.ListPoints))
	s.addTool(getPointTool(), withPoint(s, "get_point", e.GetPoint))
	s.addTool(recordTool("create_point", "Create a point in an existing project",
		"The point row as JSON, project_id and point_id required"), withRecord(s, "create_point", e.CreatePoint))
	s.addTool(recordTool("update_point", "Update the descriptive fields of a point",
		"The point row as JSON, project_id and point_id required"), withRecord(s, "update_point", e.UpdatePoint))
	s.addTool(renamePointTool(), s.handleRenamePoint)
	s.addTool(deletePointTool(), withPoint(s, "delete_point", e.DeletePoint))

	// Point child tables
	recordTools[types.Core, *cascade.CoreResult]{
		kind: "core", plural: "cores", table: "cores", key: "core_id",
		create: e.CreateCore, update: e.UpdateCore, remove: e.DeleteCore, list: e.ListCores,
	}.register(s)
	s.addTool(getByIDTool("core", "cores"), withString(s, "get_core", "id", e.GetCore))
	s.addTool(saveStrengthTool(), withRecord(s, "save_strength_weathering", e.SaveStrengthWeathering))
	s.addTool(getStrengthTool(), withString(s, "get_strength_weathering", "core_id", e.GetStrengthWeathering))

	recordTools[types.Sample, *cascade.SampleResult]{
		kind: "sample", plural: "samples", table: "samples", key: "sample_id",
		create: e.CreateSample, update: e.UpdateSample, remove: e.DeleteSample, list: e.ListSamples,
	}.register(s)
	s.addTool(getByIDTool("sample", "samples"), withString(s, "get_sample", "id", e.GetSample))

	recordTools[types.HydraulicCond, *cascade.HydraulicResult]{
		kind: "hydraulic", plural: "hydraulic", table: "hydraulic_cond", key: "hydraulic_id",
		create: e.CreateHydraulic, update: e.UpdateHydraulic, remove: e.DeleteHydraulic, list: e.ListHydraulic,
	}.register(s)
	s.addTool(getByIDTool("hydraulic", "hydraulic_cond"), withString(s, "get_hydraulic", "id", e.GetHydraulic))

	recordTools[types.Discontinuity, *types.Discontinuity]{
		kind: "discontinuity", plural: "discontinuities", table: "discontinuities", key: "discontinuity_id",
		create: e.CreateDiscontinuity, update: e.UpdateDiscontinuity, remove: e.DeleteDiscontinuity, list: e.ListDiscontinuities,
	}.register(s)

	recordTools[types.CoreCondition, *types.CoreCondition]{
		kind: "core_condition", plural: "core_conditions", table: "core_conditions", key: "core_condition_id",
		create: e.CreateCoreCondition, update: e.UpdateCoreCondition, remove: e.DeleteCoreCondition, list: e.ListCoreConditions,
	}.register(s)

	recordTools[types.Piezometer, *types.Piezometer]{
		kind: "piezometer", plural: "piezometers", table: "piezometers", key: "piezometer_id",
		create: e.CreatePiezometer, update: e.UpdatePiezometer, remove: e.DeletePiezometer, list: e.ListPiezometers,
	}.register(s)

	recordTools[types.SoilProfile, *types.SoilProfile]{
		kind: "soil_profile", plural: "soil_profiles", table: "soil_profiles", key: "soil_id",
		create: e.CreateSoilProfile, update: e.UpdateSoilProfile, remove: e.DeleteSoilProfile, list: e.ListSoilProfiles,
	}.register(s)

	s.addTool(saveWaterTool(), withRecord(s, "save_water_observation", e.SaveWaterObservation))
	s.addTool(getWaterTool(), withString(s, "get_water_observation", "point_id", e.GetWaterObservation))
	s.addTool(saveMethodTool(), withRecord(s, "save_method", e.SaveMethod))
	s.addTool(listTool("methods", "methods"), withString(s, "list_methods", "point_id", e.ListMethods))

	// Sync and reports
	s.addTool(markSyncedTool(), s.handleMarkSynced)
	s.addTool(dirtySummaryTool(), s.handleDirtySummary)
	s.addTool(pointReportTool(), withPoint(s, "point_report", s.reports.Point))
	s.addTool(projectReportTool(), withString(s, "project_report", "project_id", s.reports.Project))

	return nil
}
