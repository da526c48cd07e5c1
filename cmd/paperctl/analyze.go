package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"paper-analyzer/internal/analysis"
	"paper-analyzer/internal/config"
	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/extract"
	"paper-analyzer/internal/metadata"
	"paper-analyzer/internal/repository"
	"paper-analyzer/internal/service"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Extract and analyze a paper",
	Long: `Analyze extracts the text of a PDF, DOCX or text file and reports its IMRAD
structure, readability, statistics, citations, methodology markers and key
phrases. With --metadata the DOI or PMID in the text, or else the paper's
title, is resolved through PubMed, Crossref and Semantic Scholar. With --save
the analysis is added to the local history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		opts := analyzeOptions{}
		opts.metadata, _ = cmd.Flags().GetBool("metadata")
		opts.save, _ = cmd.Flags().GetBool("save")
		opts.format, _ = cmd.Flags().GetString("format")
		return runAnalyze(cmd.Context(), cfg, args[0], opts, cmd.OutOrStdout())
	},
}

func init() {
	analyzeCmd.Flags().Bool("metadata", false, "resolve bibliographic metadata from the DOI, PMID or title of the paper")
	analyzeCmd.Flags().Bool("save", false, "save the analysis to the local history")
	analyzeCmd.Flags().String("format", formatText, "output format: text, json or yaml")

	rootCmd.AddCommand(analyzeCmd)
}

type analyzeOptions struct {
	metadata bool
	save     bool
	format   string
}

// report is what analyze prints. ID is set when the analysis was saved.
type report struct {
	ID       string                  `json:"id,omitempty"`
	File     string                  `json:"file"`
	Document domain.DocumentMetadata `json:"document"`
	Metadata *domain.ArticleMetadata `json:"metadata,omitempty"`
	Analysis *domain.ContentAnalysis `json:"analysis"`
}

func runAnalyze(ctx context.Context, cfg *config.AppConfig, path string, opts analyzeOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	log := newLogger(cfg)
	var resolver domain.MetadataResolver
	if opts.metadata {
		resolver = metadata.NewDefaultResolver(cfg, log)
	}

	var repo domain.AnalysisRepository
	if opts.save {
		store, err := repository.NewSQLiteAnalysisRepository(cfg.GetDatabasePath())
		if err != nil {
			return err
		}
		defer store.Close()
		repo = store
	}

	svc := service.NewAnalysisService(
		extract.NewExtractor(log),
		analysis.NewAnalyzer(log),
		resolver,
		repo,
		nil,
		log,
		cfg.GetMaxFileSize(),
	)
	upload := service.Upload{Name: filepath.Base(path), MimeType: mimeTypeFor(path), Data: data}

	var rep report
	if opts.save {
		record, err := svc.AnalyzeUpload(ctx, domain.LocalUser(), "", upload)
		if err != nil {
			return err
		}
		rep = report{
			ID:       record.ID,
			File:     record.FileName,
			Document: record.Document,
			Metadata: record.Metadata,
			Analysis: record.Analysis,
		}
	} else {
		doc, err := svc.ExtractText(ctx, upload)
		if err != nil {
			return err
		}
		res, err := svc.AnalyzeText(ctx, doc.Text)
		if err != nil {
			return err
		}
		rep = report{File: upload.Name, Document: doc.Metadata, Analysis: res}
		if opts.metadata {
			meta, err := svc.ResolveMetadata(ctx, doc.Text, service.MetadataHint(doc, upload.Name))
			if err != nil {
				fmt.Fprintf(os.Stderr, "metadata: %v\n", err)
			}
			rep.Metadata = meta
		}
	}

	return writeReport(out, rep, opts.format)
}

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatYAML, formatText:
		return nil
	}
	return fmt.Errorf("unknown format %q: use text, json or yaml", format)
}

func mimeTypeFor(path string) string {
	format, ok := extract.DetectFormat("", path)
	if !ok {
		return ""
	}
	switch format {
	case domain.FormatPDF:
		return domain.MimeTypePDF
	case domain.FormatDOCX:
		return domain.MimeTypeDOCX
	default:
		return domain.MimeTypeText
	}
}

// writeStructured prints v as indented JSON or as YAML. YAML output keeps
// the JSON field names.
func writeStructured(out io.Writer, v interface{}, format string) error {
	if format == formatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	data, err := yaml.Marshal(generic)
	if err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func writeReport(out io.Writer, rep report, format string) error {
	if format != formatText {
		return writeStructured(out, rep, format)
	}

	a := rep.Analysis
	fmt.Fprintf(out, "%s", rep.File)
	if rep.Document.Title != "" && rep.Document.Title != strings.TrimSuffix(rep.File, filepath.Ext(rep.File)) {
		fmt.Fprintf(out, " (%s)", rep.Document.Title)
	}
	fmt.Fprintf(out, "\n%d page(s), %d words, %d sentences\n", rep.Document.PageCount, a.Stats.Words, a.Stats.Sentences)
	if rep.ID != "" {
		fmt.Fprintf(out, "Saved as %s\n", rep.ID)
	}

	if m := rep.Metadata; m != nil {
		fmt.Fprintf(out, "\nMetadata (%s)\n", m.Source)
		fmt.Fprintf(out, "  Title:   %s\n", m.Title)
		if m.Journal != "" || m.PublicationYear != 0 {
			fmt.Fprintf(out, "  Journal: %s %d\n", m.Journal, m.PublicationYear)
		}
		if m.DOI != "" {
			fmt.Fprintf(out, "  DOI:     %s\n", m.DOI)
		}
	}

	fmt.Fprintf(out, "\nScores\n")
	fmt.Fprintf(out, "  %-22s %6.1f\n", "Overall", a.Quality.OverallScore)
	fmt.Fprintf(out, "  %-22s %6.1f\n", "Structure", a.Structure.Score)
	fmt.Fprintf(out, "  %-22s %6.1f\n", "Readability (Flesch)", a.Clarity.ReadabilityScore)
	fmt.Fprintf(out, "  %-22s %6.1f\n", "Grade level", a.Clarity.GradeLevel)
	fmt.Fprintf(out, "  %-22s %6.1f\n", "Technical accuracy", a.Clarity.TechnicalAccuracy)
	fmt.Fprintf(out, "  %-22s %6.1f\n", "Citation quality", a.Quality.CitationQuality)
	fmt.Fprintf(out, "  %-22s %6.1f\n", "Methodology", a.Quality.MethodologyStrength)

	if len(a.Keywords) > 0 {
		phrases := make([]string, 0, len(a.Keywords))
		for _, k := range a.Keywords {
			phrases = append(phrases, k.Phrase)
		}
		fmt.Fprintf(out, "\nKey phrases: %s\n", strings.Join(phrases, ", "))
	}

	writeList(out, "Strengths", a.Quality.Strengths)
	var suggestions []string
	suggestions = append(suggestions, a.Structure.Suggestions...)
	suggestions = append(suggestions, a.Clarity.Suggestions...)
	suggestions = append(suggestions, a.Quality.Recommendations...)
	writeList(out, "Suggestions", suggestions)
	return nil
}

func writeList(out io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n", title)
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}
