package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/playlistinator/internal/models"
	"github.com/desertthunder/playlistinator/internal/tasks"
)

const (
	Title       = "Playlist Generator"
	Description = "Generate your personalized Spotify playlist based on your Last.fm listening history"
	Label       = "Generate Playlist"
	BusyLabel   = "Generating Playlist..."

	historyLimit = 50
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	GenerateView ViewState = iota
	HistoryView
)

// History lists recorded runs, newest first.
type History interface {
	List(criteria map[string]any) ([]*models.Run, error)
}

type toast struct {
	id           int
	notification tasks.Notification
}

// ModelOpts contains the dependencies of a [Model].
type ModelOpts struct {
	Trigger       *tasks.Trigger
	History       History       // optional, enables the history view
	ToastDuration time.Duration // defaults to four seconds
}

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	view          ViewState
	trigger       *tasks.Trigger
	history       History
	width         int
	height        int
	busy          bool
	percent       float64
	spinner       spinner.Model
	progress      progress.Model
	toast         *toast
	toastSeq      int
	toastDuration time.Duration
	historyList   list.Model
	err           error
	help          help.Model
	keys          keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = 4 * time.Second
	}

	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = styles.warn

	historyList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	historyList.Title = "Generation History"
	historyList.SetShowHelp(false)

	return &Model{
		ctx:           ctx,
		view:          GenerateView,
		trigger:       opts.Trigger,
		history:       opts.History,
		spinner:       s,
		progress:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
		toastDuration: opts.ToastDuration,
		historyList:   historyList,
		help:          help.New(),
		keys:          newKeyMap(),
	}
}

// Init has nothing to load; the first generate is user initiated.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Busy reports whether the model is showing a call in flight.
func (m *Model) Busy() bool { return m.busy }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(10, min(msg.Width-16, 60))
		m.historyList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case GenerateView:
			return m.handleGenerateKeys(msg)
		case HistoryView:
			return m.handleHistoryKeys(msg)
		}

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgGenerateSettled:
		outcome := msg.data.(tasks.Outcome)
		m.busy = false
		m.percent = 1
		m.toastSeq++
		m.toast = &toast{id: m.toastSeq, notification: outcome.Notification}
		id := m.toastSeq
		return m, tea.Tick(m.toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg(id) })

	case MsgToastExpired:
		if m.toast != nil && m.toast.id == msg.data.(int) {
			m.toast = nil
		}
		return m, nil

	case MsgHistoryLoaded:
		loaded := msg.data.(historyLoaded)
		m.err = loaded.err
		if loaded.err == nil {
			cmd := m.historyList.SetItems(runItems(loaded.runs))
			return m, cmd
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case GenerateView:
		return m.renderGenerate()
	case HistoryView:
		return m.renderHistory()
	default:
		return ""
	}
}

func (m *Model) handleGenerateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.generate):
		return m, m.startGenerate()
	case key.Matches(msg, m.keys.history):
		if m.history == nil {
			return m, nil
		}
		m.view = HistoryView
		return m, m.loadHistory()
	}
	return m, nil
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.historyList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.historyList, cmd = m.historyList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = GenerateView
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.reload):
		return m, m.loadHistory()
	}

	var cmd tea.Cmd
	m.historyList, cmd = m.historyList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == HistoryView {
		m.historyList, cmd = m.historyList.Update(msg)
	}
	return m, cmd
}

// startGenerate is a no-op while a call is in flight; the button renders disabled.
func (m *Model) startGenerate() tea.Cmd {
	if m.busy || m.trigger == nil || m.trigger.Busy() {
		return nil
	}

	ch, err := m.trigger.Start(m.ctx)
	if err != nil {
		return nil
	}

	m.busy = true
	m.percent = 0
	m.toast = nil
	return tea.Batch(waitForOutcome(ch), m.spinner.Tick)
}

func waitForOutcome(ch <-chan tasks.Outcome) tea.Cmd {
	return func() tea.Msg {
		outcome, ok := <-ch
		if !ok {
			outcome = tasks.Outcome{
				Result:       models.Failed(tasks.UnexpectedFailureMessage),
				Notification: tasks.Notification{Kind: tasks.Negative, Message: tasks.UnexpectedFailureMessage},
			}
		}
		return generateSettledMsg(outcome)
	}
}

func (m *Model) loadHistory() tea.Cmd {
	history := m.history
	return func() tea.Msg {
		runs, err := history.List(map[string]any{"limit": historyLimit})
		return historyLoadedMsg(runs, err)
	}
}

func (m *Model) renderGenerate() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(Title))
	b.WriteString("\n")
	b.WriteString(styles.help.Render(Description))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %3.0f%%\n\n", m.progress.ViewAs(m.percent), m.percent*100))

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.card.Render(fmt.Sprintf("%s\n%s", styles.ok.Render("Last.fm Stats"), "Your listening history from the last 30 days")),
		" ",
		styles.card.Render(fmt.Sprintf("%s\n%s", styles.ok.Render("Spotify Playlist"), "TK - Hot 100")),
	)
	b.WriteString(cards)
	b.WriteString("\n\n")

	b.WriteString(m.renderButton())
	b.WriteString("\n")

	if m.toast != nil {
		b.WriteString("\n")
		b.WriteString(renderToast(m.toast.notification))
		b.WriteString("\n")
	}

	keys := []key.Binding{m.keys.generate, m.keys.quit}
	if m.history != nil {
		keys = []key.Binding{m.keys.generate, m.keys.history, m.keys.quit}
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(keys))

	return b.String()
}

func (m *Model) renderButton() string {
	if m.busy {
		return styles.disabled.Render(fmt.Sprintf("%s %s", m.spinner.View(), BusyLabel))
	}
	return styles.button.Render("♫ " + Label)
}

func renderToast(n tasks.Notification) string {
	if n.Kind == tasks.Positive {
		return styles.toastOK.Render("✓ " + n.Message)
	}
	return styles.toastErr.Render("✗ " + n.Message)
}

func (m *Model) renderHistory() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress esc to go back, q to quit", m.err))
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.reload, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.historyList.View(), m.help.ShortHelpView(helpKeys))
}
