package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/bootstrap"
	"alfredoptarigan/resume-screener/internal/services"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Extract resumes from files on disk and store them as one batch",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, paths []string) error {
	cfg, zlog, err := setup()
	if err != nil {
		return err
	}
	defer zlog.Sync() //nolint:errcheck

	docs, err := readDocuments(paths)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := bootstrap.New(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	defer a.Close()

	// queued index jobs are drained by Close
	a.IndexWorker.Start(ctx)

	if cfg.Server.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Server.RequestTimeout*3)
		defer cancel()
	}

	resumes, err := a.Ingest.IngestBatch(ctx, docs)
	if err != nil {
		zlog.Error("import failed", zap.Error(err))
		return err
	}

	for _, r := range resumes {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.ID, r.OriginalFileName, r.Name())
	}
	zlog.Info("import completed", zap.Int("resumes", len(resumes)))
	return nil
}

func readDocuments(paths []string) ([]services.Document, error) {
	docs := make([]services.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		contentType := services.ContentTypeForFilename(path)
		if contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}

		docs = append(docs, services.Document{
			Filename:    filepath.Base(path),
			ContentType: contentType,
			Data:        data,
		})
	}
	return docs, nil
}
