package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"transpo-cli/model"
)

func newInput(placeholder string, limit int, secret bool) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 32
	in.Prompt = "› "
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return in
}

func focusInputs(inputs []textinput.Model, index int) int {
	if len(inputs) == 0 {
		return 0
	}
	index = (index%len(inputs) + len(inputs)) % len(inputs)
	for i := range inputs {
		if i == index {
			inputs[i].Focus()
		} else {
			inputs[i].Blur()
		}
	}
	return index
}

func (m *appModel) focusLogin(index int) {
	m.loginFocus = focusInputs(m.loginInputs, index)
}

func (m *appModel) focusSearch(index int) {
	m.searchFocus = focusInputs(m.searchInputs, index)
}

func (m *appModel) focusBooking(index int) {
	m.bookingFocus = focusInputs(m.bookingInputs, index)
}

func (m appModel) isFormState() bool {
	return m.state == stateLogin || m.state == stateSearch || m.state == stateBooking
}

func (m appModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var inputs []textinput.Model
	var focus int
	var setFocus func(*appModel, int)
	switch m.state {
	case stateLogin:
		inputs, focus, setFocus = m.loginInputs, m.loginFocus, (*appModel).focusLogin
	case stateSearch:
		inputs, focus, setFocus = m.searchInputs, m.searchFocus, (*appModel).focusSearch
	case stateBooking:
		inputs, focus, setFocus = m.bookingInputs, m.bookingFocus, (*appModel).focusBooking
	default:
		return m, nil
	}

	switch msg.String() {
	case "esc":
		if m.state == stateLogin {
			return m, nil
		}
		next, cmd := m.goBack()
		return next, cmd
	case "tab", "down":
		setFocus(&m, focus+1)
		return m, nil
	case "shift+tab", "up":
		setFocus(&m, focus-1)
		return m, nil
	case "enter":
		if focus < len(inputs)-1 {
			setFocus(&m, focus+1)
			return m, nil
		}
		return m.submitForm()
	}

	var cmd tea.Cmd
	inputs[focus], cmd = inputs[focus].Update(msg)
	return m, cmd
}

func (m appModel) submitForm() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateLogin:
		username := strings.TrimSpace(m.loginInputs[0].Value())
		password := m.loginInputs[1].Value()
		if username == "" || password == "" {
			m.setStatus("Username and password are required.", true)
			return m, nil
		}
		m.clearStatus()
		m.state = stateSigningIn
		return m, tea.Batch(m.loginCmd(username, password), m.spinner.Tick)

	case stateSearch:
		pickup := strings.TrimSpace(m.searchInputs[0].Value())
		drop := strings.TrimSpace(m.searchInputs[1].Value())
		if pickup == "" || drop == "" {
			m.setStatus("Pickup and drop stops are required.", true)
			return m, nil
		}
		m.clearStatus()
		m.state = stateLoadingSchedules
		return m, tea.Batch(m.searchSchedulesCmd(pickup, drop), m.spinner.Tick)

	case stateBooking:
		name := strings.TrimSpace(m.bookingInputs[0].Value())
		email := strings.TrimSpace(m.bookingInputs[1].Value())
		if name == "" {
			m.setStatus("Passenger name is required.", true)
			return m, nil
		}
		if email != "" && !strings.Contains(email, "@") {
			m.setStatus("Passenger email looks invalid.", true)
			return m, nil
		}
		m.clearStatus()
		m.state = stateSeatGrid
		req := model.BookingRequest{
			ScheduleId:     m.grid.ScheduleID(),
			SeatNumber:     m.bookingSeat,
			PassengerName:  name,
			PassengerEmail: email,
		}
		return m, m.bookSeatCmd(req)
	}
	return m, nil
}

var formPanelStyle = lipgloss.NewStyle().
	Padding(1, 3).
	Border(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("63"))

func formView(title string, labels []string, inputs []textinput.Model) string {
	lines := []string{lipgloss.NewStyle().Bold(true).Render(title), ""}
	for i, in := range inputs {
		lines = append(lines, hint(labels[i]), in.View(), "")
	}
	return formPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m appModel) loginView() string {
	return formView("Sign in", []string{"Username", "Password"}, m.loginInputs)
}

func (m appModel) searchView() string {
	return formView("Search schedules", []string{"Pickup stop", "Drop stop"}, m.searchInputs)
}

func (m appModel) bookingView() string {
	title := "Book seat"
	if m.bookingSeat > 0 {
		title = fmtSeatTitle(m.bookingSeat)
	}
	return formView(title, []string{"Passenger name", "Passenger email (optional)"}, m.bookingInputs)
}
