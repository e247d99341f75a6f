// Package seatgrid holds the seat availability view model: a dense seat
// grid for one (bus, schedule) selection, role-gated seat selection and
// the optimistic seat-state update with rollback.
//
// A ViewModel is owned by a single event loop and is not safe for
// concurrent use. Network calls may run elsewhere, but their results
// must be handed back through FinishLoad, FinishDetail and
// CompleteStateChange on the owning goroutine.
package seatgrid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"transpo-cli/model"
)

// ErrNotAllowed is returned by the one-shot helpers when the role or the
// seat state does not permit the interaction. It is never shown to users.
var ErrNotAllowed = errors.New("interaction not allowed")

// API is the slice of the backend client the view model needs.
type API interface {
	GetSeatAvailability(ctx context.Context, busNumber string, scheduleID int64) (model.SeatAvailability, error)
	GetSeatDetail(ctx context.Context, scheduleID int64, seatNumber int) (model.SeatDetail, error)
	UpdateSeatState(ctx context.Context, scheduleID int64, seatNumber int, state model.SeatState) error
}

// LoadTicket identifies one grid fetch. Only the ticket of the latest
// BeginLoad is accepted by FinishLoad.
type LoadTicket struct {
	BusNumber  string
	ScheduleID int64
	generation uint64
}

// DetailTicket identifies one seat detail fetch.
type DetailTicket struct {
	ScheduleID int64
	SeatNumber int
	generation uint64
	request    uint64
}

// Cell is the presentational view of one seat.
type Cell struct {
	Number      int
	State       model.SeatState
	Selected    bool
	Mine        bool
	Interactive bool
}

type ViewModel struct {
	role   model.Role
	logger *slog.Logger

	busNumber  string
	scheduleID int64
	generation uint64

	loading bool
	loaded  bool
	grid    model.SeatGrid

	selected int

	detail        *model.SeatDetail
	detailSeat    int
	detailLoading bool
	detailRequest uint64

	seatVersion map[int]uint64
	err         string
}

// New creates an empty view model for the given role.
func New(role model.Role, logger *slog.Logger) *ViewModel {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ViewModel{
		role:        role,
		logger:      logger,
		seatVersion: make(map[int]uint64),
	}
}

func (vm *ViewModel) Role() model.Role { return vm.role }

// SetRole switches the acting role, e.g. after a new login. Any
// selection made under the previous role is dropped.
func (vm *ViewModel) SetRole(role model.Role) {
	if vm.role == role {
		return
	}
	vm.role = role
	vm.clearSelection()
}

func (vm *ViewModel) BusNumber() string { return vm.busNumber }
func (vm *ViewModel) ScheduleID() int64 { return vm.scheduleID }
func (vm *ViewModel) Loading() bool     { return vm.loading }
func (vm *ViewModel) Loaded() bool      { return vm.loaded }

// Err returns the user-visible error of the last failed operation.
func (vm *ViewModel) Err() string { return vm.err }

// ClearErr dismisses the current error text.
func (vm *ViewModel) ClearErr() { vm.err = "" }

// Placeholder reports whether the selection is incomplete, in which case
// no grid is fetched and a placeholder is shown instead.
func (vm *ViewModel) Placeholder() bool {
	return vm.busNumber == "" || vm.scheduleID <= 0
}

// Grid returns a copy of the current dense grid.
func (vm *ViewModel) Grid() model.SeatGrid {
	grid := vm.grid
	grid.Seats = append([]model.Seat(nil), vm.grid.Seats...)
	return grid
}

// Selected returns the highlighted seat number, 0 when none.
func (vm *ViewModel) Selected() int { return vm.selected }

// Detail returns the side panel content and the seat it belongs to.
func (vm *ViewModel) Detail() (*model.SeatDetail, int, bool) {
	return vm.detail, vm.detailSeat, vm.detailLoading
}

// BeginLoad records a new selection and starts a grid fetch. It returns
// false when busNumber or scheduleID is missing; the grid is then
// cleared and no fetch must be issued. Every call invalidates tickets of
// earlier loads, so a slow response for an old selection is dropped.
func (vm *ViewModel) BeginLoad(busNumber string, scheduleID int64) (LoadTicket, bool) {
	vm.busNumber = strings.TrimSpace(busNumber)
	vm.scheduleID = scheduleID
	vm.generation++
	vm.grid = model.SeatGrid{}
	vm.loaded = false
	vm.loading = false
	vm.err = ""
	vm.seatVersion = make(map[int]uint64)
	vm.clearSelection()

	if vm.Placeholder() {
		return LoadTicket{}, false
	}
	vm.loading = true
	return LoadTicket{BusNumber: vm.busNumber, ScheduleID: vm.scheduleID, generation: vm.generation}, true
}

// Reload starts a fresh fetch for the current selection.
func (vm *ViewModel) Reload() (LoadTicket, bool) {
	return vm.BeginLoad(vm.busNumber, vm.scheduleID)
}

// FinishLoad applies the result of the fetch identified by ticket. It
// returns false when the ticket is stale and the result was dropped.
func (vm *ViewModel) FinishLoad(ticket LoadTicket, raw model.SeatAvailability, fetchErr error) bool {
	applied, _ := vm.finishLoad(ticket, raw, fetchErr)
	return applied
}

func (vm *ViewModel) finishLoad(ticket LoadTicket, raw model.SeatAvailability, fetchErr error) (bool, error) {
	if ticket.generation != vm.generation || !vm.loading {
		vm.logger.Debug("dropping stale seat grid",
			"bus", ticket.BusNumber, "schedule", ticket.ScheduleID,
			"current_bus", vm.busNumber, "current_schedule", vm.scheduleID)
		return false, nil
	}
	vm.loading = false

	if fetchErr != nil {
		vm.err = userText("Failed to load seat availability", fetchErr)
		vm.logger.Warn("seat grid load failed", "bus", ticket.BusNumber, "schedule", ticket.ScheduleID, "error", fetchErr)
		return true, fetchErr
	}

	grid, err := model.NormalizeAvailability(raw)
	if err != nil {
		vm.err = userText("Failed to load seat availability", err)
		vm.logger.Error("seat grid payload rejected", "bus", ticket.BusNumber, "schedule", ticket.ScheduleID, "error", err)
		return true, err
	}
	if grid.BusNumber == "" {
		grid.BusNumber = ticket.BusNumber
	}
	if grid.ScheduleID == 0 {
		grid.ScheduleID = ticket.ScheduleID
	}
	vm.grid = grid
	vm.loaded = true
	return true, nil
}

// Load fetches the grid for a selection and applies it. An incomplete
// selection is skipped without error.
func (vm *ViewModel) Load(ctx context.Context, api API, busNumber string, scheduleID int64) error {
	ticket, ok := vm.BeginLoad(busNumber, scheduleID)
	if !ok {
		return nil
	}
	raw, err := api.GetSeatAvailability(ctx, ticket.BusNumber, ticket.ScheduleID)
	_, loadErr := vm.finishLoad(ticket, raw, err)
	return loadErr
}

// CanInteract reports whether the current role may select the seat.
func (vm *ViewModel) CanInteract(seat model.Seat) bool {
	switch {
	case vm.role.IsReadOnly():
		return false
	case vm.role.CanManageSeats():
		return true
	case vm.role == model.RolePassenger:
		return seat.State == model.SeatAvailable || seat.Mine()
	default:
		return false
	}
}

// SelectSeat toggles the highlight on a seat. Interactions the role may
// not perform are ignored and report false.
func (vm *ViewModel) SelectSeat(number int) bool {
	if vm.loading || !vm.loaded {
		return false
	}
	seat, ok := vm.grid.Seat(number)
	if !ok || !vm.CanInteract(seat) {
		return false
	}
	if vm.selected == number {
		vm.clearSelection()
		return true
	}
	vm.clearSelection()
	vm.selected = number
	return true
}

func (vm *ViewModel) clearSelection() {
	vm.selected = 0
	vm.detail = nil
	vm.detailSeat = 0
	vm.detailLoading = false
	vm.detailRequest++
}

// Cells renders the grid as presentational cells in seat order.
func (vm *ViewModel) Cells() []Cell {
	cells := make([]Cell, len(vm.grid.Seats))
	for i, seat := range vm.grid.Seats {
		cells[i] = Cell{
			Number:      seat.Number,
			State:       seat.State,
			Selected:    seat.Number == vm.selected,
			Mine:        seat.Mine(),
			Interactive: !vm.loading && vm.CanInteract(seat),
		}
	}
	return cells
}

// userText turns an error into the inline text shown to users,
// preferring the backend's own message when there is one.
func userText(prefix string, err error) string {
	var withMessage interface{ UserMessage() string }
	if errors.As(err, &withMessage) {
		if msg := strings.TrimSpace(withMessage.UserMessage()); msg != "" {
			return fmt.Sprintf("%s: %s", prefix, msg)
		}
	}
	return fmt.Sprintf("%s: %v", prefix, err)
}

func fmtSeat(prefix string, number int) string {
	return fmt.Sprintf("%s %d", prefix, number)
}
