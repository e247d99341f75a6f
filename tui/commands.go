package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"transpo-cli/model"
	"transpo-cli/seatgrid"
	"transpo-cli/store"
)

func (m appModel) restoreCmd() tea.Cmd {
	sessions := m.session
	return func() tea.Msg {
		s, err := sessions.Restore(context.Background())
		return sessionMsg{session: s, restored: true, err: err}
	}
}

func (m appModel) loginCmd(username string, password string) tea.Cmd {
	sessions := m.session
	return func() tea.Msg {
		s, err := sessions.Login(context.Background(), username, password)
		return sessionMsg{session: s, err: err}
	}
}

func (m appModel) logoutCmd() tea.Cmd {
	sessions := m.session
	return func() tea.Msg {
		return loggedOutMsg{err: sessions.Logout()}
	}
}

func (m appModel) fetchSchedulesCmd(force bool) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		if !force {
			if cached, fresh, err := store.LoadScheduleCache(); err == nil && fresh && len(cached) > 0 {
				return schedulesMsg{schedules: cached}
			}
		}
		schedules, err := client.GetSchedules(context.Background())
		if err == nil && len(schedules) > 0 {
			_ = store.SaveScheduleCache(schedules)
		}
		return schedulesMsg{schedules: schedules, err: err}
	}
}

func (m appModel) searchSchedulesCmd(pickup string, drop string) tea.Cmd {
	client := m.client
	label := fmt.Sprintf("Search: %s → %s", pickup, drop)
	return func() tea.Msg {
		if cached, fresh, err := store.LoadSearchCache(pickup, drop); err == nil && fresh && len(cached) > 0 {
			return schedulesMsg{schedules: cached, label: label}
		}
		schedules, err := client.SearchSchedules(context.Background(), pickup, drop)
		if err == nil && len(schedules) > 0 {
			_ = store.SaveSearchCache(pickup, drop, schedules)
		}
		return schedulesMsg{schedules: schedules, label: label, err: err}
	}
}

func (m appModel) fetchBusesCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		if cached, fresh, err := store.LoadBusCache(); err == nil && fresh && len(cached) > 0 {
			return busesMsg{buses: cached}
		}
		buses, err := client.GetBuses(context.Background())
		if err == nil && len(buses) > 0 {
			_ = store.SaveBusCache(buses)
		}
		return busesMsg{buses: buses, err: err}
	}
}

func (m appModel) fetchDriverBusCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		bus, err := client.GetDriverBus(context.Background())
		return driverBusMsg{bus: bus, err: err}
	}
}

// Seat grids are never cached; every load hits the backend once.
func (m appModel) fetchGridCmd(ticket seatgrid.LoadTicket) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		raw, err := client.GetSeatAvailability(context.Background(), ticket.BusNumber, ticket.ScheduleID)
		return gridMsg{ticket: ticket, raw: raw, err: err}
	}
}

func (m appModel) fetchDetailCmd(ticket seatgrid.DetailTicket) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		detail, err := client.GetSeatDetail(context.Background(), ticket.ScheduleID, ticket.SeatNumber)
		return detailMsg{ticket: ticket, detail: detail, err: err}
	}
}

// updateSeatStateCmd persists a change that was already applied locally.
func (m appModel) updateSeatStateCmd(change *seatgrid.StateChange) tea.Cmd {
	client := m.client
	scheduleID, seatNumber, next := change.ScheduleID, change.SeatNumber, change.Next
	return func() tea.Msg {
		err := client.UpdateSeatState(context.Background(), scheduleID, seatNumber, next)
		return stateChangeMsg{change: change, err: err}
	}
}

func (m appModel) bookSeatCmd(req model.BookingRequest) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		reservation, err := client.BookSeat(context.Background(), req)
		return bookedMsg{reservation: reservation, err: err}
	}
}

func (m appModel) fetchReservationsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		reservations, err := client.GetMyReservations(context.Background())
		return reservationsMsg{reservations: reservations, err: err}
	}
}

func (m appModel) cancelReservationCmd(id int64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		if err := client.CancelReservation(context.Background(), id); err != nil {
			return reservationActionMsg{err: err}
		}
		return reservationActionMsg{text: fmt.Sprintf("Reservation #%d cancelled.", id)}
	}
}

func (m appModel) payReservationCmd(id int64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		res, err := client.PayReservation(context.Background(), id, "CASH", "")
		if err != nil {
			return reservationActionMsg{err: err}
		}
		text := fmt.Sprintf("Reservation #%d paid (%s).", id, res.Method)
		if res.Reference != "" {
			text += " Reference " + res.Reference + "."
		}
		return reservationActionMsg{text: text}
	}
}

func (m appModel) reportLocationCmd() tea.Cmd {
	client := m.client
	locator := m.locator
	return func() tea.Msg {
		ctx := context.Background()
		pos, err := client.ReportDriverLocation(ctx, locator)
		if err != nil {
			return locationMsg{err: err}
		}
		reported, err := client.GetDriverLocation(ctx)
		if err != nil {
			return locationMsg{position: pos}
		}
		return locationMsg{position: pos, reported: reported}
	}
}
