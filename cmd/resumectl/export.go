package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/export"
	"alfredoptarigan/resume-screener/internal/filtering"
	"alfredoptarigan/resume-screener/internal/repositories"
)

var exportOpts struct {
	out      string
	sheet    string
	query    string
	category string
	value    string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored resumes matching a filter to an .xlsx file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runExport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOpts.out, "out", "o", export.DefaultFilename, "output file")
	exportCmd.Flags().StringVar(&exportOpts.sheet, "sheet", export.DefaultSheetName, "sheet name")
	exportCmd.Flags().StringVarP(&exportOpts.query, "query", "q", "", "free text matched against name, email and skills")
	exportCmd.Flags().StringVar(&exportOpts.category, "category", "", "criterion category (location, education, skill, jobTitle, company, certification)")
	exportCmd.Flags().StringVar(&exportOpts.value, "value", "", "criterion value, matched exactly")
}

func runExport(cmd *cobra.Command) error {
	cfg, zlog, err := setup()
	if err != nil {
		return err
	}
	defer zlog.Sync() //nolint:errcheck

	state, err := filtering.NewState(exportOpts.query, exportOpts.category, exportOpts.value)
	if err != nil {
		return err
	}

	db, err := config.InitDatabase(cfg, zlog)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	collection, err := repositories.LoadCollection(cmd.Context(), repositories.NewResumeRepository(db))
	if err != nil {
		return err
	}

	snapshot, ranked := collection.Snapshot()
	visible := filtering.Visible(snapshot, state, ranked)

	f, err := os.Create(exportOpts.out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOpts.out, err)
	}

	if err := export.WriteResumes(f, visible, exportOpts.sheet); err != nil {
		f.Close()
		os.Remove(exportOpts.out)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOpts.out, err)
	}

	zlog.Info("export written", zap.String("file", exportOpts.out), zap.Int("rows", len(visible)))
	return nil
}
