package seatgrid

import (
	"context"

	"transpo-cli/model"
)

// StateChange is one optimistic seat-state update. Apply writes Next
// into the local grid; Rollback restores Previous. Both only ever touch
// the one seat the change was made for.
type StateChange struct {
	ScheduleID int64
	SeatNumber int
	Previous   model.SeatState
	Next       model.SeatState

	vm         *ViewModel
	generation uint64
	version    uint64
}

// Apply writes Next into the grid. It is a no-op once the grid the
// change was made against has been replaced.
func (c *StateChange) Apply() bool {
	if !c.current() {
		return false
	}
	c.vm.grid.Seats[c.SeatNumber-1].State = c.Next
	c.vm.seatVersion[c.SeatNumber]++
	c.version = c.vm.seatVersion[c.SeatNumber]
	return true
}

// Rollback restores Previous unless the grid was reloaded or a later
// change has since been applied to the same seat.
func (c *StateChange) Rollback() bool {
	if !c.current() || c.vm.seatVersion[c.SeatNumber] != c.version {
		return false
	}
	c.vm.grid.Seats[c.SeatNumber-1].State = c.Previous
	return true
}

func (c *StateChange) current() bool {
	return c.vm != nil && c.generation == c.vm.generation && c.vm.loaded &&
		c.SeatNumber >= 1 && c.SeatNumber <= len(c.vm.grid.Seats)
}

// BeginStateChange captures the seat's current state and applies next
// locally, before any request is made. The caller must persist the
// change and then call CompleteStateChange with the outcome.
func (vm *ViewModel) BeginStateChange(scheduleID int64, seatNumber int, next model.SeatState) (*StateChange, bool) {
	if vm.role != model.RoleConductor || vm.loading || !vm.loaded || scheduleID != vm.scheduleID {
		return nil, false
	}
	if _, err := model.ParseSeatState(string(next)); err != nil {
		return nil, false
	}
	seat, ok := vm.grid.Seat(seatNumber)
	if !ok {
		return nil, false
	}

	change := &StateChange{
		ScheduleID: scheduleID,
		SeatNumber: seatNumber,
		Previous:   seat.State,
		Next:       next,
		vm:         vm,
		generation: vm.generation,
	}
	change.Apply()
	vm.err = ""
	vm.logger.Debug("seat state applied locally", "schedule", scheduleID, "seat", seatNumber, "previous", change.Previous, "next", next)
	return change, true
}

// CompleteStateChange settles a change after the server answered. On
// failure the seat is rolled back and the error is shown. It reports
// whether the seat's detail should be re-fetched.
func (vm *ViewModel) CompleteStateChange(change *StateChange, persistErr error) bool {
	if change == nil {
		return false
	}
	if persistErr != nil {
		reverted := change.Rollback()
		if change.generation == vm.generation {
			vm.err = userText(fmtSeat("Failed to update seat", change.SeatNumber), persistErr)
		}
		vm.logger.Warn("seat state update rejected",
			"schedule", change.ScheduleID, "seat", change.SeatNumber,
			"next", change.Next, "reverted", reverted, "error", persistErr)
		return false
	}
	return change.current()
}

// ApplyState runs the whole optimistic update: local apply, persist,
// then either a detail refresh for that seat or a rollback.
func (vm *ViewModel) ApplyState(ctx context.Context, api API, scheduleID int64, seatNumber int, next model.SeatState) error {
	change, ok := vm.BeginStateChange(scheduleID, seatNumber, next)
	if !ok {
		return ErrNotAllowed
	}
	err := api.UpdateSeatState(ctx, scheduleID, seatNumber, next)
	if vm.CompleteStateChange(change, err) {
		_ = vm.LoadSeatDetail(ctx, api, scheduleID, seatNumber)
	}
	return err
}
