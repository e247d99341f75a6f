package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"transpo-cli/model"
	"transpo-cli/store"
)

func newSchedulesCommand(a *app) *cobra.Command {
	var pickup, drop string
	var refresh bool
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "List upcoming schedules",
		Long:  `List every schedule, or only those between --pickup and --drop.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			if (pickup == "") != (drop == "") {
				return fmt.Errorf("--pickup and --drop go together")
			}
			schedules, err := a.schedules(cmd.Context(), pickup, drop, refresh)
			if err != nil {
				return err
			}
			if len(schedules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No schedules found")
				return nil
			}
			renderSchedules(cmd.OutOrStdout(), schedules)
			return nil
		},
	}
	cmd.Flags().StringVar(&pickup, "pickup", "", "pickup stop")
	cmd.Flags().StringVar(&drop, "drop", "", "drop stop")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached schedules")
	return cmd
}

// schedules reads through the same caches the terminal UI fills.
func (a *app) schedules(ctx context.Context, pickup string, drop string, refresh bool) ([]model.Schedule, error) {
	if pickup != "" {
		if cached, fresh, err := store.LoadSearchCache(pickup, drop); err == nil && fresh && len(cached) > 0 && !refresh {
			return cached, nil
		}
		schedules, err := a.client.SearchSchedules(ctx, pickup, drop)
		if err == nil && len(schedules) > 0 {
			_ = store.SaveSearchCache(pickup, drop, schedules)
		}
		return schedules, err
	}
	if cached, fresh, err := store.LoadScheduleCache(); err == nil && fresh && len(cached) > 0 && !refresh {
		return cached, nil
	}
	schedules, err := a.client.GetSchedules(ctx)
	if err == nil && len(schedules) > 0 {
		_ = store.SaveScheduleCache(schedules)
	}
	return schedules, err
}

func renderSchedules(out io.Writer, schedules []model.Schedule) {
	sorted := make([]model.Schedule, len(schedules))
	copy(sorted, schedules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DepartureTime < sorted[j].DepartureTime
	})

	rowConfigAutoMerge := table.RowConfig{AutoMerge: true}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Route", "Bus", "Schedule", "Departure", "Fare", "Free"}, rowConfigAutoMerge)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true, WidthMax: 30},
		{Number: 2, AutoMerge: true},
	})
	t.Style().Options.SeparateRows = true
	for _, s := range sorted {
		t.AppendRow(table.Row{
			routeLabel(s),
			s.BusNumber,
			s.Id,
			departureLabel(s),
			fareLabel(s.Fare),
			s.AvailableSeats,
		}, rowConfigAutoMerge)
	}
	t.Render()
}

func promptSelectSchedule(schedules []model.Schedule) (model.Schedule, error) {
	scheduleByLabel := make(map[string]model.Schedule, len(schedules))
	for _, s := range schedules {
		label := fmt.Sprintf("%s • %s • bus %s • #%d", departureLabel(s), routeLabel(s), s.BusNumber, s.Id)
		scheduleByLabel[label] = s
	}
	labels := maps.Keys(scheduleByLabel)
	slices.Sort(labels)

	searcher := func(input string, index int) bool {
		return strings.Contains(strings.ToLower(labels[index]), strings.ToLower(strings.TrimSpace(input)))
	}
	selectSchedule := promptui.Select{
		Label:    "Select Schedule",
		Items:    labels,
		Size:     10,
		Searcher: searcher,
	}
	_, label, err := selectSchedule.Run()
	if err != nil {
		return model.Schedule{}, promptError(err)
	}
	schedule, ok := scheduleByLabel[label]
	if !ok {
		return model.Schedule{}, fmt.Errorf("invalid schedule %q", label)
	}
	return schedule, nil
}

func routeLabel(s model.Schedule) string {
	origin, destination := strings.TrimSpace(s.Origin), strings.TrimSpace(s.Destination)
	if origin == "" && destination == "" {
		return fmt.Sprintf("Schedule #%d", s.Id)
	}
	return fmt.Sprintf("%s → %s", origin, destination)
}

func departureLabel(s model.Schedule) string {
	t, err := s.Departure(time.Local)
	if err != nil {
		if s.DepartureTime == "" {
			return "-"
		}
		return s.DepartureTime
	}
	return t.Format("2006-01-02 15:04")
}

func fareLabel(fare float64) string {
	if fare <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", fare)
}
