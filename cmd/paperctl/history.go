package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"paper-analyzer/internal/config"
	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/repository"
	"paper-analyzer/internal/service"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved analyses",
	Long: `History lists the analyses saved with "paperctl analyze --save", newest
first, together with a summary of every saved analysis.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")
		return runHistory(cmd.Context(), cfg, limit, format, cmd.OutOrStdout())
	},
}

func init() {
	historyCmd.Flags().Int("limit", service.DefaultHistoryLimit, "maximum number of analyses to list")
	historyCmd.Flags().String("format", formatText, "output format: text, json or yaml")

	rootCmd.AddCommand(historyCmd)
}

type historyOutput struct {
	Analyses []*domain.AnalysisRecord `json:"analyses"`
	Summary  domain.UserAnalytics     `json:"summary"`
}

func runHistory(ctx context.Context, cfg *config.AppConfig, limit int, format string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := checkFormat(format); err != nil {
		return err
	}

	store, err := repository.NewSQLiteAnalysisRepository(cfg.GetDatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()

	log := newLogger(cfg)
	svc := service.NewAnalysisService(nil, nil, nil, store, nil, log, cfg.GetMaxFileSize())

	records, err := svc.History(ctx, domain.LocalUserID, limit, "")
	if err != nil {
		return err
	}
	summary, err := svc.Analytics(ctx, domain.LocalUserID, "")
	if err != nil {
		return err
	}

	if format != formatText {
		return writeStructured(out, historyOutput{Analyses: records, Summary: summary}, format)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No saved analyses.")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-16s  %-30s  %7s  %9s\n", "ID", "Date", "File", "Overall", "Structure")
	fmt.Fprintln(out, strings.Repeat("-", 106))
	for _, r := range records {
		name := r.FileName
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		var overall, structure float64
		if r.Analysis != nil {
			overall = r.Analysis.Quality.OverallScore
			structure = r.Analysis.Structure.Score
		}
		fmt.Fprintf(out, "%-36s  %-16s  %-30s  %7.1f  %9.1f\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), name, overall, structure)
	}

	fmt.Fprintf(out, "\n%d analyses saved, %d issues found, %d statistics checked\n",
		summary.ArticlesAnalyzed, summary.IssuesFound, summary.StatisticalTests)
	return nil
}
