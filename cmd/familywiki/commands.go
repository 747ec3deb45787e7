package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/evz/family-wiki-sub001/internal"
	"github.com/evz/family-wiki-sub001/internal/extraction"
	"github.com/evz/family-wiki-sub001/internal/gedcom"
	"github.com/evz/family-wiki-sub001/internal/mcpserver"
)

// previewLines is how much of an export the export command prints.
const previewLines = 20

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Convert extracted person data (JSON or YAML) into a .ged file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Extraction data file",
				Value:   "extracted_genealogy_data.json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Target .ged file",
				Value:   "family_tree.ged",
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "Header profile (full or minimal); overrides the config file",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if p := cmd.String("profile"); p != "" {
				cfg.GEDCOM.HeaderProfile = p
				if err := cfg.GEDCOM.Validate(); err != nil {
					return fmt.Errorf("profile: %w", err)
				}
			}
			logger := internal.NewLogger(cfg, os.Stderr)
			return runExport(cmd.Root().Writer, logger, cfg, cmd.String("input"), cmd.String("output"))
		},
	}
}

func runExport(out io.Writer, logger *slog.Logger, cfg *internal.Config, input, output string) error {
	res, err := extraction.LoadFile(input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error("extraction data not found", slog.String("input", input))
		}
		return err
	}
	for _, issue := range res.Issues {
		logger.Warn("skipped extracted entry", slog.String("issue", issue))
	}

	enc := gedcom.NewEncoder(cfg.GEDCOM.EncoderOptions()...)
	lines, err := enc.WriteFile(output, res.Individuals, res.Families)
	if err != nil {
		return err
	}
	report := gedcom.Validate(lines)

	fmt.Fprintf(out, "Wrote %s: %d individuals, %d families, %d skipped\n",
		output, len(res.Individuals), len(res.Families), res.Skipped)
	fmt.Fprintln(out, "Preview:")
	for i, l := range lines {
		if i == previewLines {
			fmt.Fprintf(out, "  ... %d more lines\n", len(lines)-previewLines)
			break
		}
		fmt.Fprintln(out, "  "+l)
	}
	printReport(out, report)
	return nil
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Copy .ged files into the tree and index them; without arguments, resync the tree directory",
		ArgsUsage: "[file.ged ...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "overwrite",
				Usage: "Replace sources that already exist in the tree",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := internal.NewLogger(cfg, os.Stderr)
			svc, closeIndex, err := internal.OpenTree(cfg, logger)
			if err != nil {
				return err
			}
			defer closeIndex() //nolint:errcheck // command exit path

			out := cmd.Root().Writer
			files := cmd.Args().Slice()
			if len(files) == 0 {
				report, err := svc.Sync(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Synced %s: %d imported, %d removed, %d failed\n",
					cfg.Tree.Path, len(report.Imported), len(report.Removed), len(report.Failed))
				return nil
			}

			for _, f := range files {
				data, err := os.ReadFile(f)
				if err != nil {
					return fmt.Errorf("read %s: %w", f, err)
				}
				detail, err := svc.ImportSource(ctx, filepath.Base(f), data, cmd.Bool("overwrite"))
				if err != nil {
					return fmt.Errorf("import %s: %w", f, err)
				}
				fmt.Fprintf(out, "Imported %s: %d individuals, %d families\n",
					detail.Source, detail.Individuals, detail.Families)
			}
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Run the structural validator over a .ged file",
		ArgsUsage: "file.ged",
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("validate: a .ged file is required", 2)
			}
			valid, err := runValidate(cmd.Root().Writer, path)
			if err != nil {
				return err
			}
			if !valid {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// runValidate prints the validation report for the file at path.
func runValidate(out io.Writer, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	report := gedcom.Validate(gedcom.SplitText(data))
	printReport(out, report)
	return report.Valid, nil
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the MCP tools over stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// stdout carries the MCP transport.
			logger := internal.NewLogger(cfg, os.Stderr)
			svc, closeIndex, err := internal.OpenTree(cfg, logger)
			if err != nil {
				return err
			}
			defer closeIndex() //nolint:errcheck // command exit path

			if _, err := svc.Sync(ctx); err != nil {
				logger.Warn("initial sync failed", slog.String("error", err.Error()))
			}
			return mcpserver.New(svc).ServeStdio()
		},
	}
}

func printReport(out io.Writer, report gedcom.Report) {
	if report.Valid {
		fmt.Fprintf(out, "Validation: OK (%d lines)\n", report.LineCount)
		return
	}
	fmt.Fprintf(out, "Validation: %d issues in %d lines\n", len(report.Issues), report.LineCount)
	for _, issue := range report.Issues {
		fmt.Fprintln(out, "  "+issue)
	}
}
