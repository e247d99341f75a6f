package seatgrid

import (
	"context"

	"transpo-cli/model"
)

// BeginDetail starts a side panel fetch for one seat. Only conductors
// see seat details, and only for the schedule currently shown.
func (vm *ViewModel) BeginDetail(scheduleID int64, seatNumber int) (DetailTicket, bool) {
	if vm.role != model.RoleConductor || !vm.loaded || scheduleID != vm.scheduleID {
		return DetailTicket{}, false
	}
	if _, ok := vm.grid.Seat(seatNumber); !ok {
		return DetailTicket{}, false
	}
	vm.detailRequest++
	if vm.detailSeat != seatNumber {
		vm.detail = nil
	}
	vm.detailSeat = seatNumber
	vm.detailLoading = true
	return DetailTicket{
		ScheduleID: scheduleID,
		SeatNumber: seatNumber,
		generation: vm.generation,
		request:    vm.detailRequest,
	}, true
}

// FinishDetail applies a detail response. Responses for a seat the panel
// no longer shows, or for an older grid, are dropped and report false.
func (vm *ViewModel) FinishDetail(ticket DetailTicket, detail model.SeatDetail, fetchErr error) bool {
	if ticket.generation != vm.generation || ticket.request != vm.detailRequest || ticket.SeatNumber != vm.detailSeat {
		vm.logger.Debug("dropping stale seat detail", "schedule", ticket.ScheduleID, "seat", ticket.SeatNumber)
		return false
	}
	vm.detailLoading = false
	if fetchErr != nil {
		vm.detail = nil
		vm.err = userText("Failed to load seat details", fetchErr)
		vm.logger.Warn("seat detail load failed", "schedule", ticket.ScheduleID, "seat", ticket.SeatNumber, "error", fetchErr)
		return true
	}
	vm.detail = &detail
	return true
}

// LoadSeatDetail fetches and applies the detail of one seat. It does not
// touch the grid.
func (vm *ViewModel) LoadSeatDetail(ctx context.Context, api API, scheduleID int64, seatNumber int) error {
	ticket, ok := vm.BeginDetail(scheduleID, seatNumber)
	if !ok {
		return ErrNotAllowed
	}
	detail, err := api.GetSeatDetail(ctx, ticket.ScheduleID, ticket.SeatNumber)
	vm.FinishDetail(ticket, detail, err)
	return err
}
