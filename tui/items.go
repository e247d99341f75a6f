package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"transpo-cli/model"
	"transpo-cli/session"
	"transpo-cli/store"
)

type scheduleItem struct {
	schedule model.Schedule
	bus      *model.Bus
	recent   bool
	assigned bool
}

func (s scheduleItem) Title() string {
	return routeLabel(s.schedule)
}

func (s scheduleItem) Description() string {
	parts := []string{}
	if s.assigned {
		parts = append(parts, "Your bus")
	} else if s.recent {
		parts = append(parts, "Recent")
	}
	bus := "Bus " + s.schedule.BusNumber
	if s.bus != nil && s.bus.BusName != "" {
		bus += " " + s.bus.BusName
	}
	parts = append(parts, bus, formatDeparture(s.schedule))
	if s.schedule.Fare > 0 {
		parts = append(parts, formatFare(s.schedule.Fare))
	}
	parts = append(parts, fmt.Sprintf("%d seats free", s.schedule.AvailableSeats))
	return strings.Join(parts, " • ")
}

func (s scheduleItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{
		s.schedule.Origin,
		s.schedule.Destination,
		s.schedule.BusNumber,
		s.schedule.DepartureTime,
	}, " "))
}

type reservationItem struct {
	reservation model.Reservation
	schedule    *model.Schedule
}

func (r reservationItem) Title() string {
	return fmt.Sprintf("Reservation #%d • seat %d", r.reservation.Id, r.reservation.SeatNumber)
}

func (r reservationItem) Description() string {
	parts := []string{}
	if r.schedule != nil {
		parts = append(parts, routeLabel(*r.schedule), formatDeparture(*r.schedule))
	} else {
		parts = append(parts, fmt.Sprintf("Schedule #%d", r.reservation.ScheduleId))
	}
	if r.reservation.PassengerName != "" {
		parts = append(parts, r.reservation.PassengerName)
	}
	if r.reservation.Paid {
		parts = append(parts, "Paid")
	} else {
		parts = append(parts, "Unpaid")
	}
	return strings.Join(parts, " • ")
}

func (r reservationItem) FilterValue() string {
	value := fmt.Sprintf("%d %d %s", r.reservation.Id, r.reservation.SeatNumber, r.reservation.PassengerName)
	if r.schedule != nil {
		value += " " + r.schedule.Origin + " " + r.schedule.Destination
	}
	return strings.ToLower(value)
}

// buildScheduleItems puts the user's assigned bus first, then recent
// selections, then everything else by departure.
func buildScheduleItems(schedules []model.Schedule, buses map[string]model.Bus, recents []store.RecentSelection, user session.Session) []list.Item {
	recentIDs := map[int64]bool{}
	for _, r := range recents {
		recentIDs[r.ScheduleID] = true
	}

	sorted := make([]model.Schedule, len(schedules))
	copy(sorted, schedules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DepartureTime < sorted[j].DepartureTime
	})

	var assigned, recent, rest []list.Item
	for _, schedule := range sorted {
		item := scheduleItem{schedule: schedule, recent: recentIDs[schedule.Id]}
		if bus, ok := buses[strings.ToUpper(schedule.BusNumber)]; ok {
			item.bus = &bus
		}
		if user.AssignedBusNumber != "" && strings.EqualFold(user.AssignedBusNumber, schedule.BusNumber) {
			item.assigned = true
			assigned = append(assigned, item)
			continue
		}
		if item.recent {
			recent = append(recent, item)
			continue
		}
		rest = append(rest, item)
	}

	items := make([]list.Item, 0, len(sorted))
	items = append(items, assigned...)
	items = append(items, recent...)
	return append(items, rest...)
}

func buildReservationItems(reservations []model.Reservation, schedules []model.Schedule) []list.Item {
	items := make([]list.Item, 0, len(reservations))
	for _, r := range reservations {
		item := reservationItem{reservation: r}
		if schedule, ok := findSchedule(schedules, r.ScheduleId); ok {
			item.schedule = &schedule
		}
		items = append(items, item)
	}
	return items
}

func findSchedule(schedules []model.Schedule, id int64) (model.Schedule, bool) {
	for _, s := range schedules {
		if s.Id == id {
			return s, true
		}
	}
	return model.Schedule{}, false
}

func routeLabel(s model.Schedule) string {
	origin, destination := strings.TrimSpace(s.Origin), strings.TrimSpace(s.Destination)
	if origin == "" && destination == "" {
		return fmt.Sprintf("Schedule #%d", s.Id)
	}
	return fmt.Sprintf("%s → %s", origin, destination)
}

func scheduleHeadline(s model.Schedule, buses map[string]model.Bus) string {
	bus := "Bus " + s.BusNumber
	if b, ok := buses[strings.ToUpper(s.BusNumber)]; ok && b.BusName != "" {
		bus += " (" + b.BusName + ")"
	}
	return strings.Join([]string{bus, fmt.Sprintf("Schedule #%d", s.Id), routeLabel(s), formatDeparture(s)}, " • ")
}

func formatDeparture(s model.Schedule) string {
	t, err := s.Departure(time.Local)
	if err != nil {
		if s.DepartureTime == "" {
			return "-"
		}
		return s.DepartureTime
	}
	return t.Format("2006-01-02 15:04")
}

func formatFare(fare float64) string {
	if fare <= 0 {
		return "-"
	}
	return fmt.Sprintf("Fare %.2f", fare)
}

func locationSourceLabel(source string) string {
	raw := strings.TrimSpace(source)
	if raw == "" {
		return "unknown source"
	}
	normalized := strings.ToLower(raw)
	switch normalized {
	case "configured":
		return "configured position"
	case "ipapi", "ipwhois", "ipinfo":
		return fmt.Sprintf("via IP (%s)", normalized)
	default:
		return "via " + raw
	}
}
