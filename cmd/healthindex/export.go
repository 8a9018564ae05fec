package main

import (
	"fmt"
	"os"

	httpapi "healthindex/internal/http"
	"healthindex/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the taxonomy to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		svc, err := service.NewHealthIndexService(cfg, log)
		if err != nil {
			return err
		}
		defer svc.Stop(cmd.Context())

		if err := svc.Bootstrap(cmd.Context()); err != nil {
			return err
		}

		view, err := svc.Taxonomy().View(cmd.Context())
		if err != nil {
			return err
		}
		data, err := httpapi.GenerateTaxonomyWorkbook(view)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOut, err)
		}

		log.Info("Taxonomy exported", zap.String("path", exportOut), zap.Int("bytes", len(data)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "biomarker-taxonomy.xlsx", "Output file")
}
