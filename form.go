package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// formSubmitMsg fires when a form passes validation; the model owns the
// actual network call.
type formSubmitMsg struct {
	form *entityForm
}

type formCancelMsg struct{}

type formInput struct {
	spec   fieldSpec
	line   textinput.Model
	area   textarea.Model
	choice int
}

// entityForm is the overlay that collects one entity. One input is
// focused at a time; enter submits except inside a textarea, where it
// inserts a newline and ctrl+s submits instead.
type entityForm struct {
	title    string
	section  string
	mode     formMode
	schema   schema
	entityID string
	inputs   []formInput
	errors   map[string]string
	focus    int
	width    int
}

func newEntityForm(title, section string, s schema, mode formMode, initial map[string]string, entityID string) *entityForm {
	form := &entityForm{
		title:    title,
		section:  section,
		mode:     mode,
		schema:   s,
		entityID: entityID,
		errors:   make(map[string]string),
	}
	for _, spec := range s.Fields {
		input := formInput{spec: spec}
		value := initial[spec.Key]
		switch spec.Kind {
		case fieldMultiline:
			area := textarea.New()
			area.SetHeight(4)
			area.CharLimit = 0
			area.SetValue(value)
			input.area = area
		case fieldChoice, fieldToggle:
			choices := spec.Choices
			if spec.Kind == fieldToggle && len(choices) == 0 {
				choices = []string{"no", "yes"}
				input.spec.Choices = choices
			}
			input.choice = 0
			for i, choice := range choices {
				if strings.EqualFold(choice, value) {
					input.choice = i
					break
				}
			}
		default:
			line := textinput.New()
			line.CharLimit = 512
			line.SetValue(value)
			if spec.Kind == fieldSecret {
				line.EchoMode = textinput.EchoPassword
				line.EchoCharacter = '•'
			}
			if spec.Hint != "" {
				line.Placeholder = spec.Hint
			}
			input.line = line
		}
		form.inputs = append(form.inputs, input)
	}
	form.focusIndex(0)
	return form
}

func (f *entityForm) SetSize(width int) {
	f.width = width
	inner := width - 8
	if inner < 24 {
		inner = 24
	}
	for i := range f.inputs {
		switch f.inputs[i].spec.Kind {
		case fieldMultiline:
			f.inputs[i].area.SetWidth(inner)
		case fieldChoice, fieldToggle:
		default:
			f.inputs[i].line.Width = inner
		}
	}
}

func (f *entityForm) focusIndex(index int) {
	if len(f.inputs) == 0 {
		return
	}
	if index < 0 {
		index = len(f.inputs) - 1
	}
	index = index % len(f.inputs)
	for i := range f.inputs {
		switch f.inputs[i].spec.Kind {
		case fieldMultiline:
			f.inputs[i].area.Blur()
		case fieldChoice, fieldToggle:
		default:
			f.inputs[i].line.Blur()
		}
	}
	f.focus = index
	switch f.inputs[index].spec.Kind {
	case fieldMultiline:
		f.inputs[index].area.Focus()
	case fieldChoice, fieldToggle:
	default:
		f.inputs[index].line.Focus()
	}
}

func (f *entityForm) focusedKind() fieldKind {
	if f.focus < 0 || f.focus >= len(f.inputs) {
		return fieldLine
	}
	return f.inputs[f.focus].spec.Kind
}

func (f *entityForm) Update(msg tea.Msg) (tea.Cmd, bool) {
	key, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch key.String() {
		case "esc":
			return func() tea.Msg { return formCancelMsg{} }, true
		case "tab", "down":
			if key.String() == "down" && f.focusedKind() == fieldMultiline {
				break
			}
			f.focusIndex(f.focus + 1)
			return nil, true
		case "shift+tab", "up":
			if key.String() == "up" && f.focusedKind() == fieldMultiline {
				break
			}
			f.focusIndex(f.focus - 1)
			return nil, true
		case "left", "right":
			if kind := f.focusedKind(); kind == fieldChoice || kind == fieldToggle {
				f.cycleChoice(key.String() == "right")
				return nil, true
			}
		case "enter":
			if f.focusedKind() != fieldMultiline {
				return f.trySubmit(), true
			}
		case "ctrl+s":
			return f.trySubmit(), true
		}
	}

	if f.focus < 0 || f.focus >= len(f.inputs) {
		return nil, false
	}
	input := &f.inputs[f.focus]
	var cmd tea.Cmd
	switch input.spec.Kind {
	case fieldMultiline:
		input.area, cmd = input.area.Update(msg)
	case fieldChoice, fieldToggle:
	default:
		input.line, cmd = input.line.Update(msg)
	}
	return cmd, true
}

func (f *entityForm) cycleChoice(forward bool) {
	input := &f.inputs[f.focus]
	count := len(input.spec.Choices)
	if count == 0 {
		return
	}
	if forward {
		input.choice = (input.choice + 1) % count
	} else {
		input.choice = (input.choice - 1 + count) % count
	}
}

// trySubmit validates against the active profile. On failure the first
// offending field takes focus and no message is emitted beyond the
// inline errors, so nothing reaches the network.
func (f *entityForm) trySubmit() tea.Cmd {
	values := f.Values()
	errs := f.schema.validate(f.mode, values)
	f.errors = make(map[string]string)
	if len(errs) > 0 {
		for _, err := range errs {
			if _, seen := f.errors[err.Key]; !seen {
				f.errors[err.Key] = err.Message
			}
		}
		for i, input := range f.inputs {
			if _, bad := f.errors[input.spec.Key]; bad {
				f.focusIndex(i)
				break
			}
		}
		return nil
	}
	return func() tea.Msg { return formSubmitMsg{form: f} }
}

func (f *entityForm) Values() map[string]string {
	values := make(map[string]string, len(f.inputs))
	for _, input := range f.inputs {
		switch input.spec.Kind {
		case fieldMultiline:
			values[input.spec.Key] = input.area.Value()
		case fieldChoice, fieldToggle:
			if len(input.spec.Choices) > 0 {
				values[input.spec.Key] = input.spec.Choices[input.choice]
			}
		default:
			values[input.spec.Key] = input.line.Value()
		}
	}
	return values
}

func (f *entityForm) Payload() map[string]any {
	return f.schema.payload(f.mode, f.Values())
}

func (f *entityForm) MultipartPayload() (map[string]string, []filePart) {
	return f.schema.multipartPayload(f.mode, f.Values())
}

func (f *entityForm) HasFiles() bool {
	return f.schema.hasFiles(f.Values())
}

func (f *entityForm) View(st styles) string {
	var b strings.Builder
	b.WriteString(st.overlayTitle.Render(f.title))
	b.WriteString("\n\n")
	for i, input := range f.inputs {
		label := input.spec.Label
		if input.spec.Required && f.mode == formCreate {
			label += " *"
		}
		if input.spec.Kind == fieldSecret && f.mode == formEdit {
			label += " (blank keeps current)"
		}
		b.WriteString(st.formLabel.Render(label))
		b.WriteString("\n")
		switch input.spec.Kind {
		case fieldMultiline:
			b.WriteString(input.area.View())
		case fieldChoice, fieldToggle:
			value := ""
			if len(input.spec.Choices) > 0 {
				value = input.spec.Choices[input.choice]
			}
			marker := "  "
			if i == f.focus {
				marker = "> "
			}
			b.WriteString(marker + "< " + value + " >")
		default:
			b.WriteString(input.line.View())
		}
		b.WriteString("\n")
		if message, bad := f.errors[input.spec.Key]; bad {
			b.WriteString(st.formError.Render("  " + message))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	hint := "tab: next field • enter: save • esc: cancel"
	if f.focusedKind() == fieldMultiline {
		hint = "tab: next field • ctrl+s: save • esc: cancel"
	}
	b.WriteString(st.formHint.Render(hint))
	return b.String()
}
