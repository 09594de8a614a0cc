// Package console is an interactive terminal front end for the engine. Each
// keypress maps to one engine operation; the screen shows the fleet, the
// queue and the accumulated event log.
package console

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
	"github.com/sharma-sourabh3435/fleet-scheduler/internal/scheduler"
	"github.com/sharma-sourabh3435/fleet-scheduler/internal/storage"
	"github.com/sharma-sourabh3435/fleet-scheduler/pkg/utils"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	maxLogLines   = 500

	// rows taken by the header, the tables and the footer
	chromeHeight = 14
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	headStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	assignStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
)

// Config controls an interactive session
type Config struct {
	// AutoInterval is the delay between cycles while autoplay is on.
	AutoInterval time.Duration
}

type autoStepMsg struct{}

// Model is the bubbletea model of the console
type Model struct {
	engine  *scheduler.Engine
	store   storage.Storage
	logger  *utils.Logger
	runID   string
	config  Config
	log     []string
	logView viewport.Model
	width   int
	height  int
	auto    bool
	status  string
}

// New creates a console over engine. store may be nil.
func New(engine *scheduler.Engine, store storage.Storage, config Config, logger *utils.Logger) *Model {
	if logger == nil {
		logger = utils.NewLogger("console", utils.INFO)
	}
	if config.AutoInterval <= 0 {
		config.AutoInterval = time.Second
	}

	m := &Model{
		engine:  engine,
		store:   store,
		logger:  logger,
		runID:   uuid.NewString(),
		config:  config,
		width:   defaultWidth,
		height:  defaultHeight,
		logView: viewport.New(defaultWidth-4, defaultHeight-chromeHeight),
		status:  "Press s to step, p to autoplay, q to quit",
	}
	m.refreshLog()
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = max(20, msg.Width-4)
		m.logView.Height = max(3, msg.Height-chromeHeight-len(m.engine.Snapshot().Workers))
		m.refreshLog()
		return m, nil

	case autoStepMsg:
		if !m.auto {
			return m, nil
		}
		m.step()
		return m, m.scheduleAuto()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s", "n":
			m.step()
			return m, nil
		case "p":
			m.auto = !m.auto
			if m.auto {
				m.status = "Autoplay on"
				return m, m.scheduleAuto()
			}
			m.status = "Autoplay off"
			return m, nil
		case "c":
			removed := m.engine.ClearCompletedJobs()
			m.admin(fmt.Sprintf("QUEUE CLEANED: %d completed jobs removed", removed))
			return m, nil
		case "r":
			m.reset()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func (m *Model) scheduleAuto() tea.Cmd {
	return tea.Tick(m.config.AutoInterval, func(time.Time) tea.Msg {
		return autoStepMsg{}
	})
}

func (m *Model) step() {
	result := m.engine.Step()
	if m.store != nil {
		record := &models.CycleRecord{
			RunID:      m.runID,
			Cycle:      result.Cycle,
			Efficiency: result.Efficiency,
			Events:     result.Events,
		}
		if err := m.store.RecordCycle(context.Background(), record); err != nil {
			m.logger.Error("Failed to record cycle %d: %v", result.Cycle, err)
		}
	}

	m.append(fmt.Sprintf("--- cycle %d ---", result.Cycle))
	for _, event := range result.Events {
		m.append(event)
	}
	m.status = fmt.Sprintf("Cycle %d: %d events, efficiency %.1f%%", result.Cycle, len(result.Events), result.Efficiency)
}

func (m *Model) reset() {
	m.engine.Reset()
	m.runID = uuid.NewString()
	m.auto = false
	m.log = nil
	m.admin("RESET: simulation restarted")
	m.logger.Info("Console reset, new run %s", m.runID)
}

// admin logs an operator action and stores it best-effort
func (m *Model) admin(message string) {
	m.append(message)
	m.status = message
	if m.store == nil {
		return
	}
	event := &models.Event{
		RunID:   m.runID,
		Cycle:   m.engine.Cycle(),
		Kind:    models.EventKindAdmin,
		Message: message,
	}
	if err := m.store.RecordEvent(context.Background(), event); err != nil {
		m.logger.Error("Failed to record event: %v", err)
	}
}

func (m *Model) append(line string) {
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
	m.refreshLog()
}

func (m *Model) refreshLog() {
	styled := make([]string, len(m.log))
	for i, line := range m.log {
		styled[i] = styleEvent(line)
	}
	m.logView.SetContent(strings.Join(styled, "\n"))
	m.logView.GotoBottom()
}

func styleEvent(line string) string {
	switch {
	case strings.HasPrefix(line, "SUCCESS:"), strings.HasPrefix(line, "DONE:"):
		return successStyle.Render(line)
	case strings.HasPrefix(line, "FAILED:"):
		return failStyle.Render(line)
	case strings.HasPrefix(line, "ASSIGNED:"), strings.HasPrefix(line, "NEW JOB:"):
		return assignStyle.Render(line)
	case strings.HasPrefix(line, "---"):
		return mutedStyle.Render(line)
	}
	return line
}

// View implements tea.Model
func (m *Model) View() string {
	snap := m.engine.Snapshot()
	inner := max(20, m.width-4)

	header := titleStyle.Render(fmt.Sprintf("FLEET SCHEDULER  cycle %d  efficiency %.1f%%", snap.Cycle, snap.Efficiency))
	if m.auto {
		header += "  " + successStyle.Render("[auto]")
	}

	fleet := panelStyle.Width(inner).Render(renderWorkers(snap.Workers))
	queue := panelStyle.Width(inner).Render(renderQueue(snap.Jobs))
	events := panelStyle.Width(inner).Render(headStyle.Render("EVENTS") + "\n" + m.logView.View())
	footer := mutedStyle.Render(m.status + "  |  s step  p autoplay  c clear  r reset  q quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, fleet, queue, events, footer)
}

func renderWorkers(workers []models.Worker) string {
	lines := []string{headStyle.Render(fmt.Sprintf("FLEET (%d)", len(workers)))}
	if len(workers) == 0 {
		return strings.Join(append(lines, mutedStyle.Render("No workers")), "\n")
	}
	for _, w := range workers {
		state := successStyle.Render("idle")
		if !w.Available {
			state = assignStyle.Render("busy")
		}
		lines = append(lines, fmt.Sprintf("%-12s %s  p=%.2f  done=%d  failed=%d  [%s]",
			w.ID, state, w.FailureProbability, w.CompletedCount, w.FailureCount,
			strings.Join(w.Capabilities.Slice(), ", ")))
	}
	return strings.Join(lines, "\n")
}

func renderQueue(jobs []models.Job) string {
	counts := map[models.JobStatus]int{}
	for _, j := range jobs {
		counts[j.Status]++
	}
	lines := []string{headStyle.Render(fmt.Sprintf("QUEUE  pending %d  in progress %d  completed %d",
		counts[models.JobStatusPending], counts[models.JobStatusInProgress], counts[models.JobStatusCompleted]))}

	active := make([]models.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.Status != models.JobStatusCompleted {
			active = append(active, j)
		}
	}
	sort.SliceStable(active, func(a, b int) bool {
		return active[a].Priority > active[b].Priority
	})
	if len(active) == 0 {
		return strings.Join(append(lines, mutedStyle.Render("Queue is empty")), "\n")
	}

	const shown = 5
	for i, j := range active {
		if i == shown {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("... %d more", len(active)-shown)))
			break
		}
		line := fmt.Sprintf("%-8s %-14s prio %d  wait %d", j.ID, j.Capability, j.Priority, j.WaitingTime)
		if j.Status == models.JobStatusInProgress {
			line += fmt.Sprintf("  %3d%% on %s", j.Progress, j.AssignedWorker)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Log returns the accumulated event log
func (m *Model) Log() []string {
	out := make([]string, len(m.log))
	copy(out, m.log)
	return out
}

// RunID returns the id history rows of this session are stored under
func (m *Model) RunID() string {
	return m.runID
}

// Run starts the console in the alternate screen and blocks until quit
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
