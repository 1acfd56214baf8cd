package screen

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
	"github.com/rovshanmuradov/hookswap/internal/ui"
	"github.com/rovshanmuradov/hookswap/internal/ui/router"
	"github.com/rovshanmuradov/hookswap/internal/ui/style"
	"github.com/rovshanmuradov/hookswap/internal/workflow"
)

type stepStatus int

const (
	stepPending stepStatus = iota
	stepRunning
	stepDone
	stepFailed
)

type stepView struct {
	name   string
	status stepStatus
	result *workflow.Result
}

// WorkflowScreen запускает сценарий и показывает прогресс по шагам.
type WorkflowScreen struct {
	width    int
	height   int
	keyMap   ui.KeyMap
	help     help.Model
	spinner  spinner.Model
	services ui.ServiceProvider

	name    string
	steps   []stepView
	running bool
	started time.Time
	elapsed time.Duration
	message string
	failed  bool
}

// NewWorkflowScreen creates the workflow screen
func NewWorkflowScreen(services ui.ServiceProvider) *WorkflowScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = style.RunningStyle
	return &WorkflowScreen{
		keyMap:   ui.DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		services: services,
	}
}

func (w *WorkflowScreen) Init() tea.Cmd {
	return w.spinner.Tick
}

// start запускает шаги в фоне. Результаты шагов приходят через шину (StepResultMsg).
func (w *WorkflowScreen) start(name string, steps []workflow.Step) tea.Cmd {
	if w.running {
		w.message = "another workflow is running"
		return nil
	}
	runner := w.services.Runner()
	if runner == nil || len(steps) == 0 {
		return nil
	}

	w.name = name
	w.steps = make([]stepView, len(steps))
	for i, s := range steps {
		w.steps[i] = stepView{name: s.Name}
	}
	w.steps[0].status = stepRunning
	w.running = true
	w.failed = false
	w.message = ""
	w.started = time.Now()

	ctx := w.services.Context()
	return func() tea.Msg {
		results, err := runner.Run(ctx, name, steps)
		return ui.WorkflowDoneMsg{Name: name, Results: results, Err: err}
	}
}

// Update handles screen updates
func (w *WorkflowScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		scenario := w.services.Scenario()
		switch {
		case key.Matches(msg, w.keyMap.Quit):
			if !w.running {
				return w, tea.Quit
			}
		case scenario == nil:
			return w, nil
		case key.Matches(msg, w.keyMap.RunFull):
			return w, w.start("full", scenario.FullSteps())
		case key.Matches(msg, w.keyMap.Resume):
			return w, w.start("resume", scenario.ResumeSteps())
		case key.Matches(msg, w.keyMap.SwapBtoA):
			return w, w.start("swap_b_to_a", []workflow.Step{scenario.SwapStep(false)})
		}

	case ui.StepResultMsg:
		w.applyResult(msg.Result)

	case ui.WorkflowDoneMsg:
		w.running = false
		w.elapsed = time.Since(w.started)
		if msg.Err != nil {
			w.failed = true
			res := workflow.FromError(msg.Name, msg.Err)
			w.message = res.Summary() + ": " + res.Error
		} else {
			w.message = fmt.Sprintf("%s completed in %s", msg.Name, w.elapsed.Round(time.Millisecond))
		}
		for i := range w.steps {
			if w.steps[i].status == stepRunning {
				w.steps[i].status = stepPending
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd
	}
	return w, nil
}

func (w *WorkflowScreen) applyResult(res workflow.Result) {
	for i := range w.steps {
		if w.steps[i].name != res.Step || w.steps[i].result != nil {
			continue
		}
		r := res
		w.steps[i].result = &r
		if res.Success {
			w.steps[i].status = stepDone
			if i+1 < len(w.steps) {
				w.steps[i+1].status = stepRunning
			}
		} else {
			w.steps[i].status = stepFailed
		}
		return
	}
}

// View renders the workflow screen
func (w *WorkflowScreen) View() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("▶ Workflow"))
	b.WriteString("\n")

	if runner := w.services.Runner(); runner != nil {
		b.WriteString(style.InfoStyle.Render("stage: " + runner.Stage().String()))
		b.WriteString("\n")
	}
	if sc := w.services.Scenario(); sc != nil {
		sess := sc.Session()
		b.WriteString(style.MutedStyle.Render(fmt.Sprintf("mint A %s\nmint B %s\npool   %s",
			keyOrDash(sess.MintA.String(), sess.MintA.IsZero()),
			keyOrDash(sess.MintB.String(), sess.MintB.IsZero()),
			keyOrDash(sess.Pool.String(), sess.Pool.IsZero()))))
		b.WriteString("\n\n")
	}

	if len(w.steps) == 0 {
		b.WriteString(style.MutedStyle.Render("press r to run the full workflow, c to continue from the saved stage"))
		b.WriteString("\n")
	}
	for _, s := range w.steps {
		b.WriteString(w.renderStep(s))
		b.WriteString("\n")
	}

	if w.message != "" {
		b.WriteString("\n")
		if w.failed {
			b.WriteString(style.ErrorStyle.Render(w.message))
		} else {
			b.WriteString(style.SuccessStyle.Render(w.message))
		}
		b.WriteString("\n")
	}

	b.WriteString(w.help.View(w.keyMap.HelpFor(ui.RouteWorkflow)))
	return b.String()
}

func (w *WorkflowScreen) renderStep(s stepView) string {
	switch s.status {
	case stepRunning:
		return fmt.Sprintf("%s %s", w.spinner.View(), style.RunningStyle.Render(s.name))
	case stepDone:
		line := style.SuccessStyle.Render("✓ "+s.name) + " " + style.MutedStyle.Render(s.result.Summary())
		if s.result.Signature != "" {
			line += "\n    " + style.MutedStyle.Render(hookamm.ExplorerTxURL(w.services.Network(), w.services.RPCURL(), s.result.Signature))
		}
		return line
	case stepFailed:
		line := style.ErrorStyle.Render("✗ "+s.name) + " " + style.WarningStyle.Render(s.result.Summary())
		for _, l := range lastLines(s.result.Logs, 3) {
			line += "\n    " + style.MutedStyle.Render(l)
		}
		return line
	default:
		return style.MutedStyle.Render("· " + s.name)
	}
}

// SetSize sets the screen size
func (w *WorkflowScreen) SetSize(width, height int) {
	w.width = width
	w.height = height
	w.help.Width = width
}

func keyOrDash(s string, zero bool) string {
	if zero {
		return "-"
	}
	return s
}

func lastLines(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
