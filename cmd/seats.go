package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"transpo-cli/model"
	"transpo-cli/seatgrid"
	"transpo-cli/session"
	"transpo-cli/store"
)

const gridColumns = 5

var seatColors = map[model.SeatState]text.Colors{
	model.SeatAvailable: {text.BgGreen, text.FgBlack},
	model.SeatReserved:  {text.BgRed, text.FgBlack},
	model.SeatPaid:      {text.BgBlue, text.FgBlack},
	model.SeatDisabled:  {text.BgHiBlack, text.FgBlack},
}

var seatMarks = map[model.SeatState]string{
	model.SeatAvailable: "A",
	model.SeatReserved:  "R",
	model.SeatPaid:      "P",
	model.SeatDisabled:  "D",
}

type selectionFlags struct {
	bus        string
	scheduleID int64
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.bus, "bus", "", "bus number (default: the schedule's bus)")
	cmd.Flags().Int64Var(&f.scheduleID, "schedule", 0, "schedule id (prompted when missing)")
}

// resolve completes a partial selection. A missing schedule is picked
// interactively; a missing bus number comes from the schedule.
func (f *selectionFlags) resolve(ctx context.Context, a *app) (string, int64, error) {
	bus, scheduleID := strings.TrimSpace(f.bus), f.scheduleID
	if scheduleID > 0 && bus != "" {
		return bus, scheduleID, nil
	}
	schedules, err := a.schedules(ctx, "", "", false)
	if err != nil {
		return "", 0, err
	}
	if scheduleID <= 0 {
		if len(schedules) == 0 {
			return "", 0, errors.New("no schedules to choose from")
		}
		picked, err := promptSelectSchedule(schedules)
		if err != nil {
			return "", 0, err
		}
		return picked.BusNumber, picked.Id, nil
	}
	for _, s := range schedules {
		if s.Id == scheduleID {
			return s.BusNumber, scheduleID, nil
		}
	}
	return "", 0, fmt.Errorf("schedule %d not found, pass --bus", scheduleID)
}

func newSeatsCommand(a *app) *cobra.Command {
	var selection selectionFlags
	var detailSeat int
	var noColor bool
	cmd := &cobra.Command{
		Use:   "seats",
		Short: "Show the seat map of a schedule",
		Long: `Show the seat map of one bus schedule, five seats per row.
Conductors can add --detail to see who holds a seat.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			vm, err := a.loadGrid(cmd.Context(), s, &selection)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderSeatGrid(out, vm, !noColor)
			if detailSeat > 0 {
				if err := vm.LoadSeatDetail(cmd.Context(), a.client, vm.ScheduleID(), detailSeat); err != nil {
					if errors.Is(err, seatgrid.ErrNotAllowed) {
						return fmt.Errorf("seat details are only available to conductors")
					}
					return err
				}
				renderSeatDetail(out, vm)
			}
			return nil
		},
	}
	selection.register(cmd)
	cmd.Flags().IntVar(&detailSeat, "detail", 0, "also show the details of this seat")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "print state letters without colors")
	return cmd
}

func newSetSeatCommand(a *app) *cobra.Command {
	var selection selectionFlags
	var seatNumber int
	var state string
	cmd := &cobra.Command{
		Use:   "set-seat",
		Short: "Set the state of a seat (conductors)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := model.ParseSeatState(state)
			if err != nil {
				return fmt.Errorf("--state must be one of AVAILABLE, RESERVED, PAID, DISABLED")
			}
			s, err := a.requireRole(cmd.Context(), model.RoleConductor)
			if err != nil {
				return err
			}
			vm, err := a.loadGrid(cmd.Context(), s, &selection)
			if err != nil {
				return err
			}
			seat, ok := vm.Grid().Seat(seatNumber)
			if !ok {
				return fmt.Errorf("seat %d does not exist on this bus (1-%d)", seatNumber, vm.Grid().TotalSeats)
			}

			err = vm.ApplyState(cmd.Context(), a.client, vm.ScheduleID(), seatNumber, next)
			switch {
			case errors.Is(err, seatgrid.ErrNotAllowed):
				return fmt.Errorf("seat %d cannot be changed right now", seatNumber)
			case err != nil:
				return errors.New(vm.Err())
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seat %d: %s → %s\n", seatNumber, seat.State.Label(), next.Label())
			renderSeatDetail(out, vm)
			return nil
		},
	}
	selection.register(cmd)
	cmd.Flags().IntVar(&seatNumber, "seat", 0, "seat number")
	cmd.Flags().StringVar(&state, "state", "", "new state: AVAILABLE, RESERVED, PAID or DISABLED")
	_ = cmd.MarkFlagRequired("seat")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}

func (a *app) loadGrid(ctx context.Context, s session.Session, selection *selectionFlags) (*seatgrid.ViewModel, error) {
	bus, scheduleID, err := selection.resolve(ctx, a)
	if err != nil {
		return nil, err
	}
	vm := seatgrid.New(s.Role, a.logger)
	if err := vm.Load(ctx, a.client, bus, scheduleID); err != nil {
		return nil, errors.New(vm.Err())
	}
	if vm.Placeholder() {
		return nil, errors.New("pick a bus and schedule")
	}
	_ = store.RememberSelection(store.RecentSelection{
		BusNumber:  bus,
		ScheduleID: scheduleID,
		Label:      fmt.Sprintf("Bus %s • schedule #%d", bus, scheduleID),
	})
	return vm, nil
}

func renderSeatGrid(out io.Writer, vm *seatgrid.ViewModel, color bool) {
	grid := vm.Grid()
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Bus %s • schedule #%d", grid.BusNumber, grid.ScheduleID)
	t.Style().Options.SeparateRows = true

	cells := vm.Cells()
	row := table.Row{}
	for i, cell := range cells {
		row = append(row, seatLabel(cell, vm.Role(), color))
		if (i+1)%gridColumns == 0 || i == len(cells)-1 {
			t.AppendRow(row)
			row = table.Row{}
		}
	}
	t.Render()
	fmt.Fprintln(out, grid.Summary())
}

// seatLabel marks the state with a letter so the grid stays readable
// without colors. Seats the viewer owns get a star.
func seatLabel(cell seatgrid.Cell, role model.Role, color bool) string {
	label := fmt.Sprintf("%02d %s", cell.Number, seatMarks[cell.State])
	if cell.Mine {
		label += "*"
	}
	if !color {
		return label
	}
	colors := seatColors[cell.State]
	if cell.State == model.SeatAvailable && role.IsReadOnly() {
		colors = seatColors[model.SeatDisabled]
	}
	return colors.Sprint(label)
}

func renderSeatDetail(out io.Writer, vm *seatgrid.ViewModel) {
	detail, seatNumber, _ := vm.Detail()
	if detail == nil {
		if msg := vm.Err(); msg != "" {
			fmt.Fprintln(out, msg)
		}
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Seat %d", seatNumber)
	for _, row := range detail.Rows() {
		t.AppendRow(table.Row{row.Label, row.Value})
	}
	t.Render()
}
