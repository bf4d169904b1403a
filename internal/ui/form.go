package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/charmbracelet/bubbles/textinput"
)

// Auth form field indices.
const (
	authFieldName = iota
	authFieldEmail
	authFieldPassword
)

// authForm collects credentials for login or signup. The name field only
// participates in signup mode.
type authForm struct {
	signup bool
	inputs []textinput.Model
	focus  int
}

func newAuthForm() *authForm {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 64

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	f := &authForm{inputs: []textinput.Model{name, email, password}}
	f.setFocus(authFieldEmail)
	return f
}

// first returns the first focusable field for the current mode.
func (f *authForm) first() int {
	if f.signup {
		return authFieldName
	}
	return authFieldEmail
}

func (f *authForm) setFocus(i int) {
	f.focus = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *authForm) nextField() {
	i := f.focus + 1
	if i > authFieldPassword {
		i = f.first()
	}
	f.setFocus(i)
}

func (f *authForm) prevField() {
	i := f.focus - 1
	if i < f.first() {
		i = authFieldPassword
	}
	f.setFocus(i)
}

// toggleMode switches between login and signup.
func (f *authForm) toggleMode() {
	f.signup = !f.signup
	if !f.signup && f.focus == authFieldName {
		f.setFocus(authFieldEmail)
	}
}

// atLastField reports whether focus is on the submit-triggering field.
func (f *authForm) atLastField() bool {
	return f.focus == authFieldPassword
}

func (f *authForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *authForm) name() string     { return f.inputs[authFieldName].Value() }
func (f *authForm) email() string    { return f.inputs[authFieldEmail].Value() }
func (f *authForm) password() string { return f.inputs[authFieldPassword].Value() }

// taskForm collects the title and description for a create or edit.
// editID is empty for a create.
type taskForm struct {
	editID string
	inputs []textinput.Model
	focus  int
}

const (
	taskFieldTitle = iota
	taskFieldDescription
)

func newTaskForm(editID, title, description string) *taskForm {
	titleInput := textinput.New()
	titleInput.Placeholder = "Title"
	titleInput.CharLimit = 200
	titleInput.SetValue(title)
	titleInput.Focus()

	descInput := textinput.New()
	descInput.Placeholder = "Description (optional)"
	descInput.CharLimit = 500
	descInput.SetValue(description)

	return &taskForm{
		editID: editID,
		inputs: []textinput.Model{titleInput, descInput},
	}
}

func (f *taskForm) setFocus(i int) {
	f.focus = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *taskForm) nextField() {
	f.setFocus((f.focus + 1) % len(f.inputs))
}

func (f *taskForm) atLastField() bool {
	return f.focus == taskFieldDescription
}

func (f *taskForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *taskForm) title() string       { return f.inputs[taskFieldTitle].Value() }
func (f *taskForm) description() string { return f.inputs[taskFieldDescription].Value() }
