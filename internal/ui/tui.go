// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/taskdeck/taskdeck/internal/api"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/token"
)

// App bundles the dependencies the TUI runs against. The task store is
// created per session after authentication, never shared across users.
type App struct {
	Config *config.Config
	Client *api.Client
	Tokens *token.Store
	Logger *log.Logger
}

// Run starts the TUI with the given app wiring.
func Run(ctx context.Context, app App) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	program := tea.NewProgram(newModel(ctx, app), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type screen int

const (
	screenAuth screen = iota
	screenTasks
	screenForm
)

type statusFilter int

const (
	filterAll statusFilter = iota
	filterPending
	filterCompleted
)

type model struct {
	ctx  context.Context
	app  App
	keys KeyMap

	screen screen
	auth   *authForm
	form   *taskForm

	store    *task.Store
	user     api.User
	cursor   int
	filter   statusFilter
	showHelp bool
	loading  bool
	errText  string
}

// Messages delivered by commands.
type authDoneMsg struct {
	store *task.Store
	user  api.User
	err   error
}

type refreshDoneMsg struct{ err error }

type profileMsg struct {
	user api.User
	err  error
}

type opDoneMsg struct{ err error }

func newModel(ctx context.Context, app App) *model {
	return &model{
		ctx:    ctx,
		app:    app,
		keys:   DefaultKeyMap,
		screen: screenAuth,
		auth:   newAuthForm(),
	}
}

func (m *model) Init() tea.Cmd {
	// Resume the stored session when its token still yields a user id;
	// otherwise fall through to the auth screen.
	tok, err := m.app.Tokens.Token()
	if err == nil && tok != "" {
		if uid, err := session.UserID(tok); err == nil {
			if store, err := task.NewStore(m.app.Client, uid); err == nil {
				m.store = store
				m.screen = screenTasks
				m.loading = true
				return tea.Batch(m.refreshCmd(), m.profileCmd())
			}
		}
	}
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Any keypress clears the previous transient error.
		m.errText = ""
		switch m.screen {
		case screenAuth:
			return m.updateAuth(msg)
		case screenForm:
			return m.updateForm(msg)
		default:
			return m.updateTasks(msg)
		}

	case authDoneMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.store = msg.store
		m.user = msg.user
		m.screen = screenTasks
		m.cursor = 0
		return m, nil

	case refreshDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.fail(msg.err)
		}
		m.clampCursor()
		return m, nil

	case profileMsg:
		// The greeting is cosmetic; a failed profile fetch is not fatal.
		if msg.err == nil {
			m.user = msg.user
		}
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.fail(msg.err)
		}
		m.clampCursor()
		return m, nil
	}

	return m, nil
}

func (m *model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+s":
		m.auth.toggleMode()
		return m, nil
	case "tab", "down":
		m.auth.nextField()
		return m, nil
	case "shift+tab", "up":
		m.auth.prevField()
		return m, nil
	case "enter":
		if !m.auth.atLastField() {
			m.auth.nextField()
			return m, nil
		}
		return m, m.submitAuthCmd()
	}
	return m, m.auth.update(msg)
}

func (m *model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.form = nil
		m.screen = screenTasks
		return m, nil
	case "tab", "down":
		m.form.nextField()
		return m, nil
	case "shift+tab", "up":
		m.form.setFocus(taskFieldTitle)
		return m, nil
	case "enter":
		if !m.form.atLastField() {
			m.form.nextField()
			return m, nil
		}
		return m, m.submitFormCmd()
	}
	return m, m.form.update(msg)
}

func (m *model) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.visibleTasks())-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, keys.Refresh):
		m.loading = true
		return m, m.refreshCmd()
	case key.Matches(msg, keys.Add):
		m.form = newTaskForm("", "", "")
		m.screen = screenForm
		return m, textinput.Blink
	case key.Matches(msg, keys.Edit):
		if t, ok := m.selectedTask(); ok {
			m.form = newTaskForm(t.ID, t.Title, t.Description)
			m.screen = screenForm
			return m, textinput.Blink
		}
		return m, nil
	case key.Matches(msg, keys.Toggle):
		if t, ok := m.selectedTask(); ok {
			return m, m.toggleCmd(t.ID)
		}
		return m, nil
	case key.Matches(msg, keys.Delete):
		if t, ok := m.selectedTask(); ok {
			return m, m.deleteCmd(t.ID)
		}
		return m, nil
	case key.Matches(msg, keys.FilterPending):
		m.filter = filterPending
		m.clampCursor()
		return m, nil
	case key.Matches(msg, keys.FilterCompleted):
		m.filter = filterCompleted
		m.clampCursor()
		return m, nil
	case key.Matches(msg, keys.FilterClear):
		m.filter = filterAll
		m.clampCursor()
		return m, nil
	}
	return m, nil
}

// fail records a transient error and logs it at the command boundary.
func (m *model) fail(err error) {
	m.errText = err.Error()
	m.app.Logger.Error("operation failed", "error", err)
}

func (m *model) visibleTasks() []task.Task {
	if m.store == nil {
		return nil
	}
	all := m.store.Tasks()
	if m.filter == filterAll {
		return all
	}
	wantCompleted := m.filter == filterCompleted
	var out []task.Task
	for _, t := range all {
		if t.Completed == wantCompleted {
			out = append(out, t)
		}
	}
	return out
}

func (m *model) selectedTask() (task.Task, bool) {
	visible := m.visibleTasks()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return task.Task{}, false
	}
	return visible[m.cursor], true
}

func (m *model) clampCursor() {
	if n := len(m.visibleTasks()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// submitAuthCmd logs in or signs up, persists the token, resolves the
// user id from its claims, and loads the task list. Any failure along
// the way surfaces as one transient error on the auth screen.
func (m *model) submitAuthCmd() tea.Cmd {
	signup := m.auth.signup
	name, email, password := m.auth.name(), m.auth.email(), m.auth.password()

	return func() tea.Msg {
		var resp api.AuthResponse
		var err error
		if signup {
			resp, err = m.app.Client.Signup(m.ctx, api.SignupInput{Name: name, Email: email, Password: password})
		} else {
			resp, err = m.app.Client.Login(m.ctx, api.LoginInput{Email: email, Password: password})
		}
		if err != nil {
			return authDoneMsg{err: err}
		}
		if err := m.app.Tokens.Save(resp.Token); err != nil {
			return authDoneMsg{err: err}
		}

		uid, err := session.UserID(resp.Token)
		if err != nil {
			return authDoneMsg{err: fmt.Errorf("resolve user id: %w", err)}
		}
		store, err := task.NewStore(m.app.Client, uid)
		if err != nil {
			return authDoneMsg{err: err}
		}
		if err := store.Refresh(m.ctx); err != nil {
			return authDoneMsg{err: err}
		}

		user, err := m.app.Client.CurrentUser(m.ctx)
		if err != nil {
			// Tasks loaded fine; fall back to the login email.
			user = api.User{ID: uid, Email: email}
		}
		return authDoneMsg{store: store, user: user}
	}
}

func (m *model) submitFormCmd() tea.Cmd {
	form := m.form
	m.form = nil
	m.screen = screenTasks

	title := strings.TrimSpace(form.title())
	description := strings.TrimSpace(form.description())
	if title == "" {
		m.errText = "title is required"
		return nil
	}

	store := m.store
	if form.editID == "" {
		return func() tea.Msg {
			_, err := store.Create(m.ctx, title, description)
			return opDoneMsg{err: err}
		}
	}
	id := form.editID
	return func() tea.Msg {
		_, err := store.Update(m.ctx, id, api.UpdateTaskInput{
			Title:       &title,
			Description: &description,
		})
		return opDoneMsg{err: err}
	}
}

func (m *model) toggleCmd(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		_, err := store.Toggle(m.ctx, id)
		return opDoneMsg{err: err}
	}
}

func (m *model) deleteCmd(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return opDoneMsg{err: store.Delete(m.ctx, id)}
	}
}

func (m *model) refreshCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return refreshDoneMsg{err: store.Refresh(m.ctx)}
	}
}

func (m *model) profileCmd() tea.Cmd {
	return func() tea.Msg {
		user, err := m.app.Client.CurrentUser(m.ctx)
		return profileMsg{user: user, err: err}
	}
}

func (m *model) View() string {
	switch m.screen {
	case screenAuth:
		return m.viewAuth()
	case screenForm:
		return m.viewForm()
	default:
		return m.viewTasks()
	}
}

func (m *model) viewAuth() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("taskdeck") + "\n\n")

	if m.auth.signup {
		b.WriteString(labelStyle.Render("Create account") + "\n\n")
		b.WriteString("  " + m.auth.inputs[authFieldName].View() + "\n")
	} else {
		b.WriteString(labelStyle.Render("Sign in") + "\n\n")
	}
	b.WriteString("  " + m.auth.inputs[authFieldEmail].View() + "\n")
	b.WriteString("  " + m.auth.inputs[authFieldPassword].View() + "\n\n")

	if m.errText != "" {
		b.WriteString(errorStyle.Render(m.errText) + "\n\n")
	}
	b.WriteString(helpStyle.Render("enter submit · tab next field · ctrl+s switch login/signup · ctrl+c quit") + "\n")
	return b.String()
}

func (m *model) viewForm() string {
	var b strings.Builder
	heading := "New task"
	if m.form.editID != "" {
		heading = "Edit task"
	}
	b.WriteString(titleStyle.Render("taskdeck") + "  " + labelStyle.Render(heading) + "\n\n")
	b.WriteString("  " + m.form.inputs[taskFieldTitle].View() + "\n")
	b.WriteString("  " + m.form.inputs[taskFieldDescription].View() + "\n\n")

	if m.errText != "" {
		b.WriteString(errorStyle.Render(m.errText) + "\n\n")
	}
	b.WriteString(helpStyle.Render("enter submit · tab next field · esc cancel") + "\n")
	return b.String()
}

func (m *model) viewTasks() string {
	var b strings.Builder
	header := titleStyle.Render("taskdeck")
	if m.user.Name != "" {
		header += "  " + labelStyle.Render(m.user.Name)
	} else if m.user.Email != "" {
		header += "  " + labelStyle.Render(m.user.Email)
	}
	b.WriteString(header + "\n\n")

	pending, completed := m.store.Counts()
	b.WriteString(fmt.Sprintf("  %s  %s  Total: %d\n\n",
		pendingBadge.Render(fmt.Sprintf("Pending: %d", pending)),
		completedBadge.Render(fmt.Sprintf("Completed: %d", completed)),
		m.store.Len(),
	))

	switch m.filter {
	case filterPending:
		b.WriteString(helpStyle.Render("  filter: pending (0 to clear)") + "\n\n")
	case filterCompleted:
		b.WriteString(helpStyle.Render("  filter: completed (0 to clear)") + "\n\n")
	}

	if m.errText != "" {
		b.WriteString("  " + errorStyle.Render(m.errText) + "\n\n")
	}

	if m.showHelp {
		m.writeHelp(&b)
		return b.String()
	}

	visible := m.visibleTasks()
	switch {
	case m.loading && len(visible) == 0:
		b.WriteString("  Loading tasks...\n")
	case len(visible) == 0:
		b.WriteString("  No tasks. Press a to add one.\n")
	default:
		for i, t := range visible {
			b.WriteString(m.renderTask(t, i == m.cursor) + "\n")
		}
	}

	b.WriteString("\n" + helpStyle.Render("  a add · e edit · space toggle · d delete · r refresh · h help · q quit") + "\n")
	return b.String()
}

func (m *model) renderTask(t task.Task, selected bool) string {
	marker := " "
	if selected {
		marker = "›"
	}
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}

	title := t.Title
	if t.Completed {
		title = doneStyle.Render(title)
	}
	line := fmt.Sprintf("  %s %s %s", marker, box, title)
	if m.store.Busy(t.ID) {
		line += " " + busyStyle.Render("…")
	}
	if selected && t.Description != "" {
		line += "\n      " + helpStyle.Render(t.Description)
	}
	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

func (m *model) writeHelp(b *strings.Builder) {
	b.WriteString("  Keyboard Shortcuts\n\n")
	b.WriteString("    j/↓, k/↑     Move cursor\n")
	b.WriteString("    a            Add a task\n")
	b.WriteString("    e            Edit the selected task\n")
	b.WriteString("    space, x     Toggle completed\n")
	b.WriteString("    d            Delete the selected task\n")
	b.WriteString("    r, F5        Refresh from the server\n")
	b.WriteString("    1 / 2 / 0    Filter pending / completed / all\n")
	b.WriteString("    h, ?         Toggle this help screen\n")
	b.WriteString("    q, ctrl+c    Quit\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
