package tui

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"transpo-cli/model"
	"transpo-cli/seatgrid"
	"transpo-cli/service"
	"transpo-cli/session"
	"transpo-cli/store"
)

type appState int

const (
	stateRestoring appState = iota
	stateLogin
	stateSigningIn
	stateLoadingSchedules
	stateSelectSchedule
	stateSearch
	stateSeatGrid
	stateBooking
	stateLoadingReservations
	stateReservations
	stateError
)

const gridColumns = 5

// Options wires the program to its collaborators.
type Options struct {
	Client   *service.Client
	Session  *session.Context
	Locator  *service.Locator
	Logger   *slog.Logger
	Username string
	Password string
	Restore  bool
}

type appModel struct {
	client  *service.Client
	session *session.Context
	locator *service.Locator
	logger  *slog.Logger

	state     appState
	lastState appState
	err       error

	status    string
	statusErr bool

	width  int
	height int

	user      session.Session
	driverBus *model.Bus

	schedules   []model.Schedule
	buses       map[string]model.Bus
	searchLabel string
	schedule    model.Schedule

	scheduleList    list.Model
	reservationList list.Model

	grid   *seatgrid.ViewModel
	cursor int

	loginInputs   []textinput.Model
	loginFocus    int
	autoPassword  string
	searchInputs  []textinput.Model
	searchFocus   int
	bookingInputs []textinput.Model
	bookingFocus  int
	bookingSeat   int

	restore bool
	spinner spinner.Model
}

type errMsg struct {
	err            error
	returnState    appState
	returnStateSet bool
}

type sessionMsg struct {
	session  session.Session
	restored bool
	err      error
}

type loggedOutMsg struct {
	err error
}

type schedulesMsg struct {
	schedules []model.Schedule
	label     string
	err       error
}

type busesMsg struct {
	buses []model.Bus
	err   error
}

type driverBusMsg struct {
	bus model.Bus
	err error
}

type gridMsg struct {
	ticket seatgrid.LoadTicket
	raw    model.SeatAvailability
	err    error
}

type detailMsg struct {
	ticket seatgrid.DetailTicket
	detail model.SeatDetail
	err    error
}

type stateChangeMsg struct {
	change *seatgrid.StateChange
	err    error
}

type bookedMsg struct {
	reservation model.Reservation
	err         error
}

type reservationsMsg struct {
	reservations []model.Reservation
	err          error
}

type reservationActionMsg struct {
	text string
	err  error
}

type locationMsg struct {
	position service.Position
	reported model.DriverLocation
	err      error
}

func New(opts Options) tea.Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := appModel{
		client:       opts.Client,
		session:      opts.Session,
		locator:      opts.Locator,
		logger:       logger,
		state:        stateLogin,
		buses:        make(map[string]model.Bus),
		grid:         seatgrid.New("", logger),
		restore:      opts.Restore,
		autoPassword: opts.Password,
	}

	m.scheduleList = newList("Schedules")
	m.reservationList = newList("My Reservations")

	m.loginInputs = []textinput.Model{
		newInput("username", 64, false),
		newInput("password", 128, true),
	}
	m.loginInputs[0].SetValue(strings.TrimSpace(opts.Username))
	m.searchInputs = []textinput.Model{
		newInput("pickup stop", 64, false),
		newInput("drop stop", 64, false),
	}
	m.bookingInputs = []textinput.Model{
		newInput("passenger name", 64, false),
		newInput("passenger email", 128, false),
	}
	m.focusLogin(0)
	if m.loginInputs[0].Value() != "" {
		m.focusLogin(1)
	}

	if m.restore {
		m.state = stateRestoring
	} else if m.canAutoLogin() {
		m.state = stateSigningIn
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	switch m.state {
	case stateRestoring:
		return tea.Batch(m.restoreCmd(), m.spinner.Tick)
	case stateSigningIn:
		return tea.Batch(m.loginCmd(m.loginInputs[0].Value(), m.autoPassword), m.spinner.Tick)
	}
	return textinput.Blink
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.isFormState() {
			return m.handleFormKey(msg)
		}
		if m.handleFilterInput(msg) {
			return m, nil
		}
		next, cmd, handled := m.handleKey(msg)
		if handled {
			return next, cmd
		}
		// fallthrough to component update
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoadingState() {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		if msg.returnStateSet {
			m.lastState = msg.returnState
		} else {
			m.lastState = recoverStateFrom(m.state)
		}
		m.state = stateError
		return m, nil

	case sessionMsg:
		return m.applySession(msg)

	case loggedOutMsg:
		m.user = session.Session{}
		m.driverBus = nil
		m.grid = seatgrid.New("", m.logger)
		m.schedules = nil
		m.scheduleList.SetItems(nil)
		m.reservationList.SetItems(nil)
		m.loginInputs[1].SetValue("")
		m.focusLogin(1)
		m.state = stateLogin
		m.setStatus("Signed out.", false)
		if msg.err != nil {
			m.setStatus("Signed out, but cleanup failed: "+msg.err.Error(), true)
		}
		return m, textinput.Blink

	case schedulesMsg:
		if msg.err != nil {
			return m, errWithOptionsCmd(msg.err, stateSelectSchedule)
		}
		m.schedules = msg.schedules
		m.searchLabel = msg.label
		m.refreshScheduleList()
		m.scheduleList.Select(0)
		m.state = stateSelectSchedule
		return m, nil

	case busesMsg:
		if msg.err != nil {
			m.logger.Debug("bus list unavailable", "error", msg.err)
			return m, nil
		}
		for _, bus := range msg.buses {
			m.buses[strings.ToUpper(bus.BusNumber)] = bus
		}
		m.refreshScheduleList()
		return m, nil

	case driverBusMsg:
		if msg.err != nil {
			m.logger.Debug("driver bus unavailable", "error", msg.err)
			return m, nil
		}
		bus := msg.bus
		m.driverBus = &bus
		return m, nil

	case gridMsg:
		if m.grid.FinishLoad(msg.ticket, msg.raw, msg.err) {
			m.clampCursor()
		}
		return m, nil

	case detailMsg:
		m.grid.FinishDetail(msg.ticket, msg.detail, msg.err)
		return m, nil

	case stateChangeMsg:
		// a change made against an earlier grid settles silently
		if m.grid.CompleteStateChange(msg.change, msg.err) {
			m.setStatus(fmt.Sprintf("Seat %d set to %s.", msg.change.SeatNumber, msg.change.Next.Label()), false)
			if ticket, ok := m.grid.BeginDetail(msg.change.ScheduleID, msg.change.SeatNumber); ok {
				return m, m.fetchDetailCmd(ticket)
			}
		}
		return m, nil

	case bookedMsg:
		if msg.err != nil {
			m.setStatus(userError("Booking failed", msg.err), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Seat %d booked, reservation #%d.", msg.reservation.SeatNumber, msg.reservation.Id), false)
		if ticket, ok := m.grid.Reload(); ok {
			return m, tea.Batch(m.fetchGridCmd(ticket), m.spinner.Tick)
		}
		return m, nil

	case reservationsMsg:
		if msg.err != nil {
			return m, errWithOptionsCmd(msg.err, stateSelectSchedule)
		}
		m.reservationList.SetItems(buildReservationItems(msg.reservations, m.schedules))
		m.state = stateReservations
		return m, nil

	case reservationActionMsg:
		if msg.err != nil {
			m.setStatus(userError("Request failed", msg.err), true)
			return m, nil
		}
		m.setStatus(msg.text, false)
		return m, m.fetchReservationsCmd()

	case locationMsg:
		if msg.err != nil {
			m.setStatus(userError("Location not sent", msg.err), true)
			return m, nil
		}
		text := fmt.Sprintf("Location sent: %.5f, %.5f (%s)", msg.position.Latitude, msg.position.Longitude, locationSourceLabel(msg.position.Source))
		if msg.reported.UpdatedAt != "" {
			text += " • server time " + msg.reported.UpdatedAt
		}
		m.setStatus(text, false)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateSelectSchedule:
		m.scheduleList, cmd = m.scheduleList.Update(msg)
	case stateReservations:
		m.reservationList, cmd = m.reservationList.Update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	header := m.headerView()
	body := ""
	switch m.state {
	case stateRestoring, stateSigningIn, stateLoadingSchedules, stateLoadingReservations:
		body = m.loadingView()
	case stateLogin:
		body = m.loginView()
	case stateSelectSchedule:
		body = m.scheduleList.View()
	case stateSearch:
		body = m.searchView()
	case stateSeatGrid:
		body = m.renderSeatGrid()
	case stateBooking:
		body = m.bookingView()
	case stateReservations:
		body = m.reservationList.View()
	case stateError:
		body = errorStyle.Render(m.err.Error()) + "\n\n" + hint("Press esc to go back or ctrl+c to quit.")
	}
	if status := m.statusView(); status != "" {
		body += "\n\n" + status
	}
	return header + "\n\n" + body
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Transpo")
	sub := []string{}
	if m.user.Username != "" {
		sub = append(sub, fmt.Sprintf("User: %s (%s)", m.user.Username, roleLabel(m.user.Role)))
	}
	if m.user.AssignedBusNumber != "" {
		sub = append(sub, "Assigned bus: "+m.user.AssignedBusNumber)
	} else if m.driverBus != nil {
		sub = append(sub, "Assigned bus: "+m.driverBus.BusNumber)
	}
	if m.searchLabel != "" && (m.state == stateSelectSchedule || m.state == stateSearch) {
		sub = append(sub, m.searchLabel)
	}
	if m.state == stateSeatGrid || m.state == stateBooking {
		sub = append(sub, scheduleHeadline(m.schedule, m.buses))
	}
	meta := strings.Join(sub, " • ")
	if meta != "" {
		meta = "\n" + lipgloss.NewStyle().Faint(true).Render(meta)
	}

	filterLine := ""
	if listPtr := m.activeList(); listPtr != nil {
		if filter := listPtr.FilterValue(); filter != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Filter: %s", filter))
		}
	}
	return title + meta + filterLine + "\n" + hint(m.keyHints())
}

func (m appModel) keyHints() string {
	switch m.state {
	case stateLogin:
		return "ctrl+c quit • tab switch field • enter sign in"
	case stateSelectSchedule:
		hints := "ctrl+c quit • type to filter • enter seats • ctrl+s search • ctrl+r refresh"
		if m.user.Role == model.RolePassenger {
			hints += " • ctrl+o my reservations"
		}
		if m.user.Role == model.RoleDriver {
			hints += " • ctrl+l report location"
		}
		return hints + " • ctrl+x sign out"
	case stateSearch:
		return "ctrl+c quit • esc back • tab switch field • enter search"
	case stateSeatGrid:
		hints := "ctrl+c quit • esc back • arrows move • ctrl+r reload"
		switch m.user.Role {
		case model.RoleConductor:
			hints += " • enter select • a/r/p/d set state • i details"
		case model.RoleAdmin:
			hints += " • enter select"
		case model.RolePassenger:
			hints += " • enter select • b book"
		case model.RoleDriver:
			hints += " • l report location"
		}
		return hints
	case stateBooking:
		return "ctrl+c quit • esc cancel • tab switch field • enter book"
	case stateReservations:
		return "ctrl+c quit • esc back • type to filter • enter seats • ctrl+p pay • ctrl+x cancel • ctrl+r refresh"
	default:
		return "ctrl+c quit • esc back"
	}
}

func (m appModel) handleKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		if m.state != stateSeatGrid {
			return m, tea.Quit, true
		}
	case "esc":
		if listPtr := m.activeList(); listPtr != nil {
			if listPtr.SettingFilter() || listPtr.IsFiltered() {
				listPtr.ResetFilter()
				return m, nil, true
			}
		}
		next, cmd := m.goBack()
		return next, cmd, true
	}

	switch m.state {
	case stateSelectSchedule:
		return m.handleScheduleKey(msg)
	case stateSeatGrid:
		return m.handleSeatKey(msg)
	case stateReservations:
		return m.handleReservationKey(msg)
	}
	return m, nil, false
}

func (m appModel) handleScheduleKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "enter":
		item, ok := m.scheduleList.SelectedItem().(scheduleItem)
		if !ok {
			return m, nil, true
		}
		next, cmd := m.openSeatGrid(item.schedule)
		return next, cmd, true
	case "ctrl+r":
		m.state = stateLoadingSchedules
		return m, tea.Batch(m.fetchSchedulesCmd(true), m.spinner.Tick), true
	case "ctrl+s":
		m.state = stateSearch
		m.focusSearch(0)
		return m, textinput.Blink, true
	case "ctrl+o":
		if m.user.Role != model.RolePassenger {
			return m, nil, true
		}
		m.state = stateLoadingReservations
		return m, tea.Batch(m.fetchReservationsCmd(), m.spinner.Tick), true
	case "ctrl+l":
		if m.user.Role != model.RoleDriver {
			return m, nil, true
		}
		return m, m.reportLocationCmd(), true
	case "ctrl+x":
		return m, m.logoutCmd(), true
	}
	return m, nil, false
}

func (m appModel) handleSeatKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "up":
		m.moveCursor(-gridColumns)
		return m, nil, true
	case "down":
		m.moveCursor(gridColumns)
		return m, nil, true
	case "left":
		m.moveCursor(-1)
		return m, nil, true
	case "right":
		m.moveCursor(1)
		return m, nil, true
	case "enter", " ":
		if !m.grid.SelectSeat(m.cursor) {
			return m, nil, true
		}
		if m.grid.Selected() == m.cursor {
			if ticket, ok := m.grid.BeginDetail(m.grid.ScheduleID(), m.cursor); ok {
				return m, tea.Batch(m.fetchDetailCmd(ticket), m.spinner.Tick), true
			}
		}
		return m, nil, true
	case "a", "r", "p", "d":
		next := stateForKey(msg.String())
		change, ok := m.grid.BeginStateChange(m.grid.ScheduleID(), m.targetSeat(), next)
		if !ok {
			return m, nil, true
		}
		m.clearStatus()
		return m, m.updateSeatStateCmd(change), true
	case "i":
		if ticket, ok := m.grid.BeginDetail(m.grid.ScheduleID(), m.targetSeat()); ok {
			return m, tea.Batch(m.fetchDetailCmd(ticket), m.spinner.Tick), true
		}
		return m, nil, true
	case "b":
		if m.user.Role != model.RolePassenger {
			return m, nil, true
		}
		return m.openBooking()
	case "l":
		if m.user.Role != model.RoleDriver {
			return m, nil, true
		}
		return m, m.reportLocationCmd(), true
	case "ctrl+r":
		ticket, ok := m.grid.Reload()
		if !ok {
			return m, nil, true
		}
		m.clearStatus()
		return m, tea.Batch(m.fetchGridCmd(ticket), m.spinner.Tick), true
	}
	return m, nil, false
}

func (m appModel) handleReservationKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	item, ok := m.reservationList.SelectedItem().(reservationItem)
	switch msg.String() {
	case "enter":
		if !ok {
			return m, nil, true
		}
		schedule, found := findSchedule(m.schedules, item.reservation.ScheduleId)
		if !found {
			m.setStatus(fmt.Sprintf("Schedule #%d is not in the loaded schedule list.", item.reservation.ScheduleId), true)
			return m, nil, true
		}
		next, cmd := m.openSeatGrid(schedule)
		return next, cmd, true
	case "ctrl+p":
		if !ok {
			return m, nil, true
		}
		if item.reservation.Paid {
			m.setStatus(fmt.Sprintf("Reservation #%d is already paid.", item.reservation.Id), false)
			return m, nil, true
		}
		return m, m.payReservationCmd(item.reservation.Id), true
	case "ctrl+x":
		if !ok {
			return m, nil, true
		}
		return m, m.cancelReservationCmd(item.reservation.Id), true
	case "ctrl+r":
		m.state = stateLoadingReservations
		return m, tea.Batch(m.fetchReservationsCmd(), m.spinner.Tick), true
	}
	return m, nil, false
}

func (m appModel) applySession(msg sessionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if msg.restored && m.canAutoLogin() {
			m.state = stateSigningIn
			return m, tea.Batch(m.loginCmd(m.loginInputs[0].Value(), m.autoPassword), m.spinner.Tick)
		}
		m.state = stateLogin
		m.autoPassword = ""
		if !errors.Is(msg.err, session.ErrNoSession) {
			m.setStatus(userError("Sign in failed", msg.err), true)
		}
		return m, textinput.Blink
	}

	m.user = msg.session
	m.autoPassword = ""
	m.loginInputs[1].SetValue("")
	m.grid.SetRole(msg.session.Role)
	m.clearStatus()
	m.state = stateLoadingSchedules

	cmds := []tea.Cmd{m.fetchSchedulesCmd(false), m.fetchBusesCmd(), m.spinner.Tick}
	if msg.session.Role == model.RoleDriver {
		cmds = append(cmds, m.fetchDriverBusCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m appModel) openSeatGrid(schedule model.Schedule) (appModel, tea.Cmd) {
	m.schedule = schedule
	m.cursor = 1
	m.clearStatus()
	m.state = stateSeatGrid
	m.grid.SetRole(m.user.Role)

	ticket, ok := m.grid.BeginLoad(schedule.BusNumber, schedule.Id)
	if !ok {
		return m, nil
	}
	if err := store.RememberSelection(store.RecentSelection{
		BusNumber:  schedule.BusNumber,
		ScheduleID: schedule.Id,
		Label:      routeLabel(schedule),
	}); err != nil {
		m.logger.Debug("could not remember selection", "error", err)
	}
	return m, tea.Batch(m.fetchGridCmd(ticket), m.spinner.Tick)
}

func (m appModel) openBooking() (appModel, tea.Cmd, bool) {
	seatNumber := m.grid.Selected()
	if seatNumber == 0 {
		m.setStatus("Select a seat first.", true)
		return m, nil, true
	}
	seat, ok := m.grid.Grid().Seat(seatNumber)
	if !ok || seat.State != model.SeatAvailable {
		m.setStatus(fmt.Sprintf("Seat %d is not available.", seatNumber), true)
		return m, nil, true
	}
	m.bookingSeat = seatNumber
	if m.bookingInputs[0].Value() == "" {
		m.bookingInputs[0].SetValue(m.user.Username)
	}
	m.focusBooking(0)
	m.state = stateBooking
	return m, textinput.Blink, true
}

func (m appModel) goBack() (appModel, tea.Cmd) {
	switch m.state {
	case stateSelectSchedule:
		if m.searchLabel != "" {
			m.state = stateLoadingSchedules
			return m, tea.Batch(m.fetchSchedulesCmd(false), m.spinner.Tick)
		}
	case stateSearch:
		m.state = stateSelectSchedule
	case stateSeatGrid:
		m.state = stateSelectSchedule
	case stateBooking:
		m.state = stateSeatGrid
	case stateReservations:
		m.state = stateSelectSchedule
	case stateError:
		m.state = m.lastState
	}
	return m, nil
}

// targetSeat is the seat a conductor action applies to: the selected
// seat when there is one, the cursor otherwise.
func (m appModel) targetSeat() int {
	if selected := m.grid.Selected(); selected > 0 {
		return selected
	}
	return m.cursor
}

func (m *appModel) moveCursor(delta int) {
	total := len(m.grid.Grid().Seats)
	if total == 0 {
		return
	}
	next := m.cursor + delta
	if next < 1 || next > total {
		return
	}
	m.cursor = next
}

func (m *appModel) clampCursor() {
	total := len(m.grid.Grid().Seats)
	if m.cursor > total {
		m.cursor = total
	}
	if m.cursor < 1 && total > 0 {
		m.cursor = 1
	}
}

func (m *appModel) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *appModel) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func (m appModel) statusView() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return okStyle.Render(m.status)
}

func (m appModel) canAutoLogin() bool {
	return strings.TrimSpace(m.loginInputs[0].Value()) != "" && m.autoPassword != ""
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	listPtr := m.activeList()
	if listPtr == nil {
		return false
	}
	if !listPtr.FilteringEnabled() {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 || msg.Alt {
			return false
		}
		m.appendFilter(listPtr, string(msg.Runes))
		return true
	case tea.KeySpace:
		m.appendFilter(listPtr, " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		if listPtr.FilterValue() == "" {
			return false
		}
		m.popFilter(listPtr)
		return true
	default:
		return false
	}
}

func (m *appModel) appendFilter(listPtr *list.Model, value string) {
	if value == "" {
		return
	}
	current := listPtr.FilterValue()
	listPtr.SetFilterText(current + value)
}

func (m *appModel) popFilter(listPtr *list.Model) {
	value := listPtr.FilterValue()
	if value == "" {
		return
	}
	value = trimLastRune(value)
	if value == "" {
		listPtr.ResetFilter()
		return
	}
	listPtr.SetFilterText(value)
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}

func (m *appModel) activeList() *list.Model {
	switch m.state {
	case stateSelectSchedule:
		return &m.scheduleList
	case stateReservations:
		return &m.reservationList
	default:
		return nil
	}
}

func (m *appModel) refreshScheduleList() {
	recents, _ := store.LoadRecentSelections()
	m.scheduleList.SetItems(buildScheduleItems(m.schedules, m.buses, recents, m.user))
	if m.searchLabel != "" {
		m.scheduleList.Title = "Schedules • " + m.searchLabel
	} else {
		m.scheduleList.Title = "Schedules"
	}
}

func (m appModel) isLoadingState() bool {
	switch m.state {
	case stateRestoring, stateSigningIn, stateLoadingSchedules, stateLoadingReservations:
		return true
	case stateSeatGrid:
		_, _, detailLoading := m.grid.Detail()
		return m.grid.Loading() || detailLoading
	}
	return false
}

func (m appModel) loadingView() string {
	title := "Loading"
	switch m.state {
	case stateRestoring:
		title = "Restoring session"
	case stateSigningIn:
		title = "Signing in"
	case stateLoadingSchedules:
		title = "Loading schedules"
	case stateLoadingReservations:
		title = "Loading reservations"
	}

	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), title, hint("Fetching data..."))
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.scheduleList.SetSize(m.width, h)
	m.reservationList.SetSize(m.width, h)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func errWithOptionsCmd(err error, returnState appState) tea.Cmd {
	return func() tea.Msg {
		return errMsg{
			err:            err,
			returnState:    returnState,
			returnStateSet: true,
		}
	}
}

func recoverStateFrom(state appState) appState {
	switch state {
	case stateLoadingSchedules, stateLoadingReservations:
		return stateSelectSchedule
	case stateRestoring, stateSigningIn:
		return stateLogin
	case stateError:
		return stateSelectSchedule
	default:
		return state
	}
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}

func stateForKey(key string) model.SeatState {
	switch key {
	case "a":
		return model.SeatAvailable
	case "r":
		return model.SeatReserved
	case "p":
		return model.SeatPaid
	case "d":
		return model.SeatDisabled
	}
	return ""
}

func roleLabel(role model.Role) string {
	if role == "" {
		return "no role"
	}
	return strings.ToLower(string(role))
}

// userError prefers the backend's own message over the raw error text.
func userError(prefix string, err error) string {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s: %s", prefix, apiErr.UserMessage())
	}
	return fmt.Sprintf("%s: %v", prefix, err)
}
