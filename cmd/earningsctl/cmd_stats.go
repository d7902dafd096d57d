package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tourbook/service-earnings/internal/application"
	"github.com/tourbook/service-earnings/internal/common/auth"
)

var (
	statsGuideID string
	statsRole    string
)

// statsCmd computes a guide's statistics the way the guide's session would.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute a guide's payment statistics",
	Long: `Compute the payment statistics shown to a guide.

The --role flag is the role the viewer is signed in with; any role other than
"guide" yields the zero statistics without querying bookings.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsGuideID, "guide", "", "guide user ID")
	statsCmd.Flags().StringVar(&statsRole, "role", string(auth.RoleGuide), "viewer role")
	_ = statsCmd.MarkFlagRequired("guide")
}

func runStats(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(envFile)
	if err != nil {
		return err
	}
	defer rt.close()

	svc := application.NewEarningsService(rt.source, nil, rt.metrics, rt.logger)
	snapshot := svc.Open(cmd.Context(), statsGuideID, auth.Role(statsRole))
	svc.Close(statsGuideID)

	if err := printJSON(cmd.OutOrStdout(), snapshot); err != nil {
		return err
	}
	if snapshot.Error != "" {
		return fmt.Errorf("fetch failed: %s", snapshot.Error)
	}
	return nil
}
