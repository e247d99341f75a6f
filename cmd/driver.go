package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"transpo-cli/model"
)

func newReportLocationCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report-location",
		Short: "Send the bus position to the backend (drivers)",
		Long: `Resolve the bus position and report it for the driver's assigned
bus. A position from --driver-position or the config file is used as is;
otherwise it is looked up by IP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireRole(cmd.Context(), model.RoleDriver); err != nil {
				return err
			}
			bus, err := a.client.GetDriverBus(cmd.Context())
			if err != nil {
				return err
			}
			pos, err := a.client.ReportDriverLocation(cmd.Context(), a.locator())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetTitle("Bus %s", bus.BusNumber)
			t.AppendRow(table.Row{"Latitude", fmt.Sprintf("%.5f", pos.Latitude)})
			t.AppendRow(table.Row{"Longitude", fmt.Sprintf("%.5f", pos.Longitude)})
			if pos.City != "" {
				t.AppendRow(table.Row{"Place", placeLabel(pos.City, pos.Region, pos.Country)})
			}
			t.AppendRow(table.Row{"Source", pos.Source})
			if reported, err := a.client.GetDriverLocation(cmd.Context()); err == nil && reported.UpdatedAt != "" {
				t.AppendRow(table.Row{"Updated", reported.UpdatedAt})
			}
			t.Render()
			return nil
		},
	}
}

func placeLabel(parts ...string) string {
	label := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if label != "" {
			label += ", "
		}
		label += part
	}
	return label
}
