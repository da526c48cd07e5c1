package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"paper-analyzer/internal/config"
	"paper-analyzer/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the text of a paper",
	Long: `Extract prints the text extracted from a PDF, DOCX or text file. With
--format json or yaml the embedded document metadata and page count are
included.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return runExtract(cmd.Context(), cfg, args[0], format, cmd.OutOrStdout())
	},
}

func init() {
	extractCmd.Flags().String("format", formatText, "output format: text, json or yaml")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(ctx context.Context, cfg *config.AppConfig, path, format string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := checkFormat(format); err != nil {
		return err
	}

	res := extract.NewExtractor(newLogger(cfg)).ExtractWithMetadata(ctx, path)
	if res.Error != "" {
		return errors.New(res.Error)
	}

	if format != formatText {
		return writeStructured(out, res, format)
	}
	_, err := fmt.Fprintln(out, res.Text)
	return err
}
