// Package mcptools exposes the scoring pipeline as MCP tools so that an
// assistant can produce the same report a chat user receives.
package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/report"
	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
	"github.com/ericdynasty/line-oca-bot/internal/service/analysis"
)

// Version is reported in the MCP handshake.
const Version = "0.3.0"

// NewServer registers every tool against svc.
func NewServer(svc *analysis.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"oca-report",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	analyzeTool := NewAnalyzeTool(svc)
	s.AddTool(analyzeTool.Definition(), analyzeTool.Handle)

	classifyTool := NewClassifyTool(svc)
	s.AddTool(classifyTool.Definition(), classifyTool.Handle)

	return s
}

// AnalyzeTool handles analyze_scores.
type AnalyzeTool struct {
	svc *analysis.Service
}

// NewAnalyzeTool creates an AnalyzeTool.
func NewAnalyzeTool(svc *analysis.Service) *AnalyzeTool {
	return &AnalyzeTool{svc: svc}
}

// Definition returns the MCP schema for analyze_scores.
func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_scores",
		mcp.WithDescription("Render the OCA report for ten A~J scores (-100~100)."),
		mcp.WithString("scores",
			mcp.Required(),
			mcp.Description("Scores as KEY=VALUE pairs, e.g. A=44,B=-8,C=-35"),
		),
		mcp.WithString("name", mcp.Description("Respondent name")),
		mcp.WithString("gender", mcp.Description("男、女 or 其他")),
		mcp.WithNumber("age", mcp.Description("Age in years")),
		mcp.WithString("date", mcp.Description("Assessment date, YYYY/MM/DD")),
		mcp.WithBoolean("flagA", mcp.Description("Special state A (manic, affects B)")),
		mcp.WithBoolean("flagB", mcp.Description("Special state B (manic, affects E)")),
		mcp.WithString("sections", mcp.Description("detail,summary,persona or all (default)")),
	)
}

// Handle processes an analyze_scores call.
func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scores, err := analysis.ParseScorePairs(req.GetString("scores", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sections, err := report.ParseSections(req.GetString("sections", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := t.svc.Analyze(ctx, analysis.Form{
		Name:   req.GetString("name", ""),
		Gender: req.GetString("gender", ""),
		Age:    intArg(req, "age", 0),
		Date:   req.GetString("date", ""),
		FlagA:  boolArg(req, "flagA", false),
		FlagB:  boolArg(req, "flagB", false),
		Scores: scores,
		Wants:  &sections,
	}.Input(), analysis.SourceTool)

	var b strings.Builder
	fmt.Fprintf(&b, "report %s (rules: %s)\n", res.ReportID, res.RulesSource)
	for _, text := range report.Texts(res.Segments) {
		b.WriteString("\n")
		b.WriteString(text)
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ClassifyTool handles classify_score.
type ClassifyTool struct {
	svc *analysis.Service
}

// NewClassifyTool creates a ClassifyTool.
func NewClassifyTool(svc *analysis.Service) *ClassifyTool {
	return &ClassifyTool{svc: svc}
}

// Definition returns the MCP schema for classify_score.
func (t *ClassifyTool) Definition() mcp.Tool {
	return mcp.NewTool("classify_score",
		mcp.WithDescription("Look up the band of one score for one dimension."),
		mcp.WithString("dim", mcp.Required(), mcp.Description("Dimension key A~J")),
		mcp.WithString("score", mcp.Required(), mcp.Description("Score, -100~100")),
	)
}

// Handle processes a classify_score call.
func (t *ClassifyTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dim, ok := assessment.ParseKey(req.GetString("dim", ""))
	if !ok {
		return mcp.NewToolResultError("'dim' must be one of A~J"), nil
	}
	raw, present := req.GetArguments()["score"]
	if !present {
		return mcp.NewToolResultError("'score' is required"), nil
	}
	scored, err := t.svc.Classify(dim, raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s %s：%d｜%s｜（%s）\n%s",
		scored.Dim, scored.Dim.Name(), scored.Score, scored.Band.Label, scored.Band.ID, scored.Band.Template)), nil
}

// JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}
