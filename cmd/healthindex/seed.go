package main

import (
	"encoding/json"
	"os"

	"healthindex/internal/service"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the taxonomy if the store is empty, print the result and exit",
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

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(svc.SeedResult())
	},
}
