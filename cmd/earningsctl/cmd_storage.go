package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tourbook/service-earnings/internal/application"
)

// storageCmd groups storage operations.
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect avatar storage",
}

// storageDiagnoseCmd probes the avatar bucket.
var storageDiagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Check the avatar bucket and round-trip a probe object",
	RunE:  runStorageDiagnose,
}

func init() {
	storageCmd.AddCommand(storageDiagnoseCmd)
}

func runStorageDiagnose(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(envFile)
	if err != nil {
		return err
	}
	defer rt.close()

	svc := application.NewStorageService(rt.storage, application.StorageConfig{
		Bucket:              rt.cfg.StorageConfig.AvatarBucket,
		AvatarMaxBytes:      rt.cfg.StorageConfig.AvatarMaxBytes,
		CreateMissingBucket: rt.cfg.StorageConfig.CreateMissingBucket,
	}, rt.metrics, rt.logger)

	report := svc.Diagnose(cmd.Context())
	if err := printJSON(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if !report.Healthy {
		return fmt.Errorf("storage diagnostic failed: %s", report.Error)
	}
	return nil
}
