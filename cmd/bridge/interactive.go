package main

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-bridge/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	ringStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

type exportInfo struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
}

type interactiveModel struct {
	ctx      context.Context
	err      error
	rt       *runtime.Runtime
	result   string
	funcs    []exportInfo
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
	running  bool
}

type callResultMsg struct {
	err    error
	result string
}

type frameMsg struct {
	err  error
	more bool
}

func newInteractiveModel(ctx context.Context, rt *runtime.Runtime) *interactiveModel {
	m := &interactiveModel{ctx: ctx, rt: rt, state: stateSelectFunc}
	for _, def := range rt.Exports() {
		m.funcs = append(m.funcs, exportInfo{
			name:    def.ExportNames()[0],
			params:  def.ParamTypes(),
			results: def.ResultTypes(),
		})
	}
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.boot
}

func (m *interactiveModel) boot() tea.Msg {
	ok, err := m.rt.Boot(m.ctx)
	if err != nil {
		return callResultMsg{err: err}
	}
	if !ok {
		return callResultMsg{result: "guest init returned 0; frames disabled"}
	}
	return frameMsg{more: true}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "f":
			if m.state == stateSelectFunc && m.running {
				return m, m.frame
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					break
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case frameMsg:
		m.running = msg.more && msg.err == nil
		if msg.err != nil {
			m.err = msg.err
			m.state = stateShowResult
		}

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.params))
	for i, p := range f.params {
		ti := textinput.New()
		ti.Placeholder = api.ValueTypeName(p)
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) frame() tea.Msg {
	more, err := m.rt.Frame(m.ctx)
	return frameMsg{more: more, err: err}
}

func (m *interactiveModel) callFunction() tea.Msg {
	f := m.funcs[m.selected]
	args := make([]uint64, len(m.inputs))
	for i, input := range m.inputs {
		v, err := encodeArg(input.Value(), f.params[i])
		if err != nil {
			return callResultMsg{err: fmt.Errorf("arg%d: %w", i, err)}
		}
		args[i] = v
	}

	results, err := m.rt.Call(m.ctx, f.name, args...)
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: formatResults(results, f.results)}
}

// encodeArg parses text as a value of wasm type t.
func encodeArg(text string, t api.ValueType) (uint64, error) {
	text = strings.TrimSpace(text)
	switch t {
	case api.ValueTypeI32:
		v, err := strconv.ParseInt(text, 0, 64)
		if err != nil || v < math.MinInt32 || v > math.MaxUint32 {
			return 0, fmt.Errorf("%q is not an i32", text)
		}
		return uint64(uint32(v)), nil
	case api.ValueTypeI64:
		v, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an i64", text)
		}
		return api.EncodeI64(v), nil
	case api.ValueTypeF32:
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return 0, fmt.Errorf("%q is not an f32", text)
		}
		return api.EncodeF32(float32(v)), nil
	case api.ValueTypeF64:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an f64", text)
		}
		return api.EncodeF64(v), nil
	default:
		return 0, fmt.Errorf("unsupported parameter type %s", api.ValueTypeName(t))
	}
}

func formatResults(values []uint64, types []api.ValueType) string {
	if len(values) == 0 {
		return "(no results)"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		t := api.ValueTypeI64
		if i < len(types) {
			t = types[i]
		}
		switch t {
		case api.ValueTypeI32:
			parts[i] = fmt.Sprintf("%d (%#x)", api.DecodeI32(v), api.DecodeU32(v))
		case api.ValueTypeF32:
			parts[i] = strconv.FormatFloat(float64(api.DecodeF32(v)), 'g', -1, 32)
		case api.ValueTypeF64:
			parts[i] = strconv.FormatFloat(api.DecodeF64(v), 'g', -1, 64)
		default:
			parts[i] = strconv.FormatInt(int64(v), 10)
		}
	}
	return strings.Join(parts, ", ")
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("WASM Bridge"))
	b.WriteString("\n\n")
	b.WriteString(m.ringPanel())
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		if len(m.funcs) == 0 {
			b.WriteString("The guest exports no functions.\n")
			break
		}
		b.WriteString("Select a guest export to call:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatFunc(f)))
			} else {
				b.WriteString("  " + formatFunc(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		help := "↑/↓ select • enter call • q quit"
		if m.running {
			help = "↑/↓ select • enter call • f frame • q quit"
		}
		b.WriteString(helpStyle.Render(help))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(api.ValueTypeName(f.params[i])))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) ringPanel() string {
	s := m.rt.Stats()
	lines := []string{
		fmt.Sprintf("ring    %s", s.Ring.Region),
		fmt.Sprintf("cursor  %d / %d", s.Ring.Cursor, s.Ring.Region.Size),
		fmt.Sprintf("allocs  %d  wraps %d  bytes %d", s.Ring.Allocations, s.Ring.Wraps, s.Ring.Bytes),
		fmt.Sprintf("frames  %d", s.Frames),
	}
	return ringStyle.Render(strings.Join(lines, "\n"))
}

func formatFunc(f exportInfo) string {
	params := make([]string, len(f.params))
	for i, p := range f.params {
		params[i] = typeStyle.Render(api.ValueTypeName(p))
	}
	result := ""
	if len(f.results) > 0 {
		names := make([]string, len(f.results))
		for i, r := range f.results {
			names[i] = api.ValueTypeName(r)
		}
		result = " -> " + typeStyle.Render(strings.Join(names, ", "))
	}
	return funcStyle.Render(f.name) + "(" + strings.Join(params, ", ") + ")" + result
}

func runInteractive(ctx context.Context, rt *runtime.Runtime) error {
	p := tea.NewProgram(newInteractiveModel(ctx, rt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
