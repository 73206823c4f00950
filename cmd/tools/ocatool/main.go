// ocatool 是離線版的 OCA 判讀工具：
//
//	ocatool analyze --scores A=44,B=-8,...    # 直接輸出報告
//	ocatool rules check data/oca_rules.yaml   # 檢查規則檔
//	ocatool mcp                               # stdio MCP server
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/report"
	"github.com/ericdynasty/line-oca-bot/internal/config"
	"github.com/ericdynasty/line-oca-bot/internal/mcptools"
	"github.com/ericdynasty/line-oca-bot/internal/rules"
	"github.com/ericdynasty/line-oca-bot/internal/service/analysis"
)

func main() {
	// .env 不存在時直接用系統環境變數
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rulesPath string

	root := &cobra.Command{
		Use:           "ocatool",
		Short:         "Offline OCA report tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rulesPath, "rules", "", "rules file (default: RULES_PATH or data/oca_rules.yaml)")

	newService := func() (*analysis.Service, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		path := cfg.Rules.Path
		if rulesPath != "" {
			path = rulesPath
		}
		// stdout 可能是 MCP 傳輸通道，log 一律寫到 stderr
		logCfg := zap.NewDevelopmentConfig()
		logCfg.OutputPaths = []string{"stderr"}
		logCfg.Level = zap.NewAtomicLevelAt(cfg.Log.Level)
		logger, err := logCfg.Build()
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		renderer := report.NewRenderer(logger, report.WithMaxSegmentLen(cfg.Report.MaxSegmentLen))
		return analysis.NewService(rules.NewStore(path, logger), renderer,
			analysis.WithLogger(logger),
			analysis.WithRuleCap(cfg.Report.RuleCap),
		), nil
	}

	root.AddCommand(newAnalyzeCmd(newService), newRulesCmd(), newMCPCmd(newService))
	return root
}

func newAnalyzeCmd(newService func() (*analysis.Service, error)) *cobra.Command {
	var (
		form     analysis.Form
		scores   string
		sections string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Render a report for one set of scores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := analysis.ParseScorePairs(scores)
			if err != nil {
				return err
			}
			wants, err := report.ParseSections(sections)
			if err != nil {
				return err
			}
			svc, err := newService()
			if err != nil {
				return err
			}
			form.Scores = parsed
			form.Wants = &wants

			res := svc.Analyze(cmd.Context(), form.Input(), analysis.SourceTool)
			out := cmd.OutOrStdout()
			for i, text := range report.Texts(res.Segments) {
				if i > 0 {
					fmt.Fprintln(out, "----")
				}
				fmt.Fprintln(out, text)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&scores, "scores", "", "scores as A=44,B=-8,...")
	flags.StringVar(&form.Name, "name", "", "respondent name")
	flags.StringVar(&form.Gender, "gender", "", "男 / 女 / 其他")
	flags.IntVar(&form.Age, "age", 0, "age in years")
	flags.StringVar(&form.Date, "date", "", "assessment date (YYYY/MM/DD)")
	flags.BoolVar(&form.FlagA, "flag-a", false, "special state A")
	flags.BoolVar(&form.FlagB, "flag-b", false, "special state B")
	flags.StringVar(&sections, "sections", "all", "detail,summary,persona or all")
	_ = cmd.MarkFlagRequired("scores")
	return cmd
}

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect rule configuration files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Validate a rules file and list replaced fragments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			rs, issues, err := rules.Parse(data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "schema %s, %d rules: %s\n", rs.Meta.Schema, len(rs.Rules), strings.Join(rs.RuleIDs(), ", "))
			for _, issue := range issues {
				fmt.Fprintln(out, "  !", issue)
			}
			if len(issues) > 0 {
				return fmt.Errorf("%d fragment(s) replaced by defaults", len(issues))
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	})
	return cmd
}

func newMCPCmd(newService func() (*analysis.Service, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve analyze_scores and classify_score over stdio",
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			return server.ServeStdio(mcptools.NewServer(svc))
		},
	}
}
