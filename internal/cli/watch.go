package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/razor-1/polylabel/pkg/observability"
	"github.com/razor-1/polylabel/pkg/pipeline"
)

// Messages delivered to the watch model by the search hooks and the
// pipeline goroutine.
type (
	searchStartMsg struct {
		rings  int
		seeded int
	}
	improveMsg struct {
		distance float64
		probes   int
	}
	searchDoneMsg struct {
		distance float64
		probes   int
		duration time.Duration
	}
	pipelineDoneMsg struct {
		result *pipeline.Result
		err    error
	}
)

// programSearchHooks forwards search events into a running bubbletea program.
type programSearchHooks struct {
	p *tea.Program
}

func (h programSearchHooks) OnSearchStart(rings, seeded int) {
	h.p.Send(searchStartMsg{rings: rings, seeded: seeded})
}

func (h programSearchHooks) OnImprove(distance float64, probes int) {
	h.p.Send(improveMsg{distance: distance, probes: probes})
}

func (h programSearchHooks) OnSearchDone(distance float64, probes int, duration time.Duration) {
	h.p.Send(searchDoneMsg{distance: distance, probes: probes, duration: duration})
}

// watchModel renders live progress of the label search.
type watchModel struct {
	started      int
	finished     int
	improvements int
	best         float64
	probes       int
	totalProbes  int
	lastDuration time.Duration

	result *pipeline.Result
	err    error
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.err = context.Canceled
			return m, tea.Quit
		}
	case searchStartMsg:
		m.started++
		m.improvements = 0
		m.best = 0
		m.probes = 0
	case improveMsg:
		m.improvements++
		m.best = msg.distance
		m.probes = msg.probes
	case searchDoneMsg:
		m.finished++
		m.best = msg.distance
		m.totalProbes += msg.probes
		m.lastDuration = msg.duration
	case pipelineDoneMsg:
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m watchModel) View() string {
	s := StyleTitle.Render("polylabel") + "\n\n"
	s += fmt.Sprintf("  %s %s\n",
		StyleDim.Render("features"),
		StyleValue.Render(fmt.Sprintf("%d done / %d started", m.finished, m.started)))
	if m.started > m.finished {
		s += fmt.Sprintf("  %s %s\n",
			StyleDim.Render("best    "),
			StyleHighlight.Render(fmt.Sprintf("%.4f after %d probes", m.best, m.probes)))
	}
	if m.totalProbes > 0 {
		s += fmt.Sprintf("  %s %s\n",
			StyleDim.Render("probes  "),
			StyleValue.Render(fmt.Sprintf("%d total, last search %s", m.totalProbes, m.lastDuration.Round(time.Microsecond))))
	}
	s += "\n" + StyleDim.Render("  q to abort") + "\n"
	return s
}

// runLabelWatch executes the pipeline while a TUI shows search progress.
func runLabelWatch(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	p := tea.NewProgram(watchModel{}, tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	observability.SetSearchHooks(programSearchHooks{p: p})
	defer observability.SetSearchHooks(observability.NoopSearchHooks{})

	go func() {
		result, err := runner.Execute(ctx, opts)
		p.Send(pipelineDoneMsg{result: result, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(watchModel)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}
