// Package mcp implements the Model Context Protocol server for neo-explorer.
package mcp

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ajitpratap0/neo-explorer/internal/database"
	"github.com/ajitpratap0/neo-explorer/internal/filters"
	"github.com/ajitpratap0/neo-explorer/internal/models"
	"github.com/ajitpratap0/neo-explorer/internal/write"
)

const (
	// defaultQueryLimit is the default number of approaches returned by query_approaches.
	defaultQueryLimit = 10

	// maxQueryLimit bounds a single tool response.
	maxQueryLimit = 1000
)

// Catalog is the read-only view of the linked database the tools serve.
type Catalog interface {
	GetByDesignation(designation string) *models.NearEarthObject
	GetByName(name string) *models.NearEarthObject
	ApproachesOf(neo *models.NearEarthObject) []*models.CloseApproach
	Query(fs []filters.Filter) iter.Seq[models.Record]
	Stats() database.Stats
}

// Server wraps an MCPServer with the loaded catalog.
type Server struct {
	mcp    *mcpserver.MCPServer
	db     Catalog
	logger *slog.Logger
}

// NewServer creates a new MCP server. If db is nil every tool call returns an
// error response instead of panicking.
func NewServer(db Catalog, version string, logger *slog.Logger) *Server {
	s := &Server{
		db:     db,
		logger: logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"neo-explorer",
		version,
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildGetNEOTool(), s.handleGetNEO)
	mcpSrv.AddTool(buildQueryTool(), s.handleQuery)
	mcpSrv.AddTool(buildStatsTool(), s.handleStats)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleGetNEO is the exported handler for the "get_neo" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleGetNEO(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleGetNEO(ctx, req)
}

// HandleQuery is the exported handler for the "query_approaches" tool.
func (s *Server) HandleQuery(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleQuery(ctx, req)
}

// HandleStats is the exported handler for the "database_stats" tool.
func (s *Server) HandleStats(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleStats(ctx, req)
}

// --- helpers ---

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "mcp: marshaling result")
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

func optionalFloat(args map[string]any, key string) *float64 {
	v, ok := args[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

func optionalBool(args map[string]any, key string) *bool {
	v, ok := args[key].(bool)
	if !ok {
		return nil
	}
	return &v
}

func optionalDate(args map[string]any, key string) (*time.Time, error) {
	raw, ok := args[key].(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := filters.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// --- tool definitions ---

func buildGetNEOTool() mcpgo.Tool {
	return mcpgo.NewTool("get_neo",
		mcpgo.WithDescription("Look up a near-Earth object by exact primary designation or exact name."),
		mcpgo.WithString("designation",
			mcpgo.Description("Primary designation, e.g. 433 or 2019 AA"),
		),
		mcpgo.WithString("name",
			mcpgo.Description("Name, e.g. Eros (used when designation is not given)"),
		),
		mcpgo.WithBoolean("approaches",
			mcpgo.Description("Include the object's close approaches (default: false)"),
		),
	)
}

func buildQueryTool() mcpgo.Tool {
	return mcpgo.NewTool("query_approaches",
		mcpgo.WithDescription("Find close approaches matching all given criteria, in load order."),
		mcpgo.WithString("date", mcpgo.Description("Exact approach date, YYYY-MM-DD")),
		mcpgo.WithString("start_date", mcpgo.Description("Approaches on or after this date, YYYY-MM-DD")),
		mcpgo.WithString("end_date", mcpgo.Description("Approaches on or before this date, YYYY-MM-DD")),
		mcpgo.WithNumber("distance_min", mcpgo.Description("Minimum approach distance in au")),
		mcpgo.WithNumber("distance_max", mcpgo.Description("Maximum approach distance in au")),
		mcpgo.WithNumber("velocity_min", mcpgo.Description("Minimum relative velocity in km/s")),
		mcpgo.WithNumber("velocity_max", mcpgo.Description("Maximum relative velocity in km/s")),
		mcpgo.WithNumber("diameter_min", mcpgo.Description("Minimum object diameter in km")),
		mcpgo.WithNumber("diameter_max", mcpgo.Description("Maximum object diameter in km")),
		mcpgo.WithBoolean("hazardous", mcpgo.Description("Require the object to be (true) or not be (false) potentially hazardous")),
		mcpgo.WithNumber("limit", mcpgo.Description("Maximum number of results (default: 10, max: 1000)")),
	)
}

func buildStatsTool() mcpgo.Tool {
	return mcpgo.NewTool("database_stats",
		mcpgo.WithDescription("Get database statistics: object and approach counts, linking results, time span."),
	)
}

// --- tool handlers ---

type approachView struct {
	DatetimeUTC string  `json:"datetime_utc"`
	DistanceAU  float64 `json:"distance_au"`
	VelocityKmS float64 `json:"velocity_km_s"`
}

type neoView struct {
	Designation          string         `json:"designation"`
	Name                 string         `json:"name"`
	DiameterKm           *float64       `json:"diameter_km"`
	PotentiallyHazardous bool           `json:"potentially_hazardous"`
	ApproachCount        int            `json:"approach_count"`
	Approaches           []approachView `json:"approaches,omitempty"`
}

// handleGetNEO resolves a designation or name to an object.
func (s *Server) handleGetNEO(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.db == nil {
		return mcpgo.NewToolResultError("database is unavailable"), nil
	}

	designation := strings.TrimSpace(req.GetString("designation", ""))
	name := strings.TrimSpace(req.GetString("name", ""))

	var neo *models.NearEarthObject
	switch {
	case designation != "":
		neo = s.db.GetByDesignation(designation)
	case name != "":
		neo = s.db.GetByName(name)
	default:
		return mcpgo.NewToolResultError("one of designation or name is required"), nil
	}
	if neo == nil {
		return mcpgo.NewToolResultError("no matching near-Earth object"), nil
	}

	view := neoView{
		Designation:          neo.Designation,
		Name:                 neo.DisplayName(),
		PotentiallyHazardous: neo.Hazardous,
		ApproachCount:        len(neo.Approaches),
	}
	if neo.HasDiameter() {
		d := neo.Diameter
		view.DiameterKm = &d
	}
	if req.GetBool("approaches", false) {
		for _, ca := range s.db.ApproachesOf(neo) {
			view.Approaches = append(view.Approaches, approachView{
				DatetimeUTC: ca.TimeString(),
				DistanceAU:  ca.Distance,
				VelocityKmS: ca.Velocity,
			})
		}
	}
	return toolResultJSON(view)
}

// handleQuery builds filters from the arguments and returns the limited result set.
func (s *Server) handleQuery(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.db == nil {
		return mcpgo.NewToolResultError("database is unavailable"), nil
	}

	args := req.GetArguments()
	var c filters.Criteria
	for key, dst := range map[string]**time.Time{
		"date":       &c.Date,
		"start_date": &c.StartDate,
		"end_date":   &c.EndDate,
	} {
		d, err := optionalDate(args, key)
		if err != nil {
			return mcpgo.NewToolResultErrorf("invalid %s: %s", key, err.Error()), nil
		}
		*dst = d
	}
	c.DistanceMin = optionalFloat(args, "distance_min")
	c.DistanceMax = optionalFloat(args, "distance_max")
	c.VelocityMin = optionalFloat(args, "velocity_min")
	c.VelocityMax = optionalFloat(args, "velocity_max")
	c.DiameterMin = optionalFloat(args, "diameter_min")
	c.DiameterMax = optionalFloat(args, "diameter_max")
	c.Hazardous = optionalBool(args, "hazardous")

	limit := req.GetInt("limit", defaultQueryLimit)
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	limit = min(limit, maxQueryLimit)

	runID := uuid.NewString()
	fs := filters.Create(c)
	results := []write.Entry{}
	for r := range filters.Limit(s.db.Query(fs), limit) {
		results = append(results, write.NewEntry(r))
	}

	s.logger.Info("mcp: query_approaches", "run_id", runID, "filters", len(fs), "count", len(results))

	return toolResultJSON(map[string]any{
		"run_id":  runID,
		"count":   len(results),
		"results": results,
	})
}

// handleStats returns summary counts of the loaded database.
func (s *Server) handleStats(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.db == nil {
		return mcpgo.NewToolResultError("database is unavailable"), nil
	}

	st := s.db.Stats()
	result := map[string]any{
		"neos":                   st.NEOs,
		"named_neos":             st.NamedNEOs,
		"hazardous_neos":         st.HazardousNEOs,
		"approaches":             st.Approaches,
		"linked_approaches":      st.LinkedApproaches,
		"unlinked_approaches":    st.UnlinkedApproaches,
		"duplicate_designations": st.DuplicateDesignations,
	}
	if st.Approaches > 0 {
		result["earliest"] = st.Earliest.Format(models.TimeLayout)
		result["latest"] = st.Latest.Format(models.TimeLayout)
	}
	return toolResultJSON(result)
}
