package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/playlistinator/internal/models"
	"github.com/desertthunder/playlistinator/internal/shared"
	"github.com/desertthunder/playlistinator/internal/tasks"
	tu "github.com/desertthunder/playlistinator/internal/testing"
)

type fakeHistory struct {
	runs []*models.Run
	err  error
	seen map[string]any
}

func (f *fakeHistory) List(criteria map[string]any) ([]*models.Run, error) {
	f.seen = criteria
	return f.runs, f.err
}

func newTrigger(gw tu.GatewayFunc) *tasks.Trigger {
	return tasks.NewTrigger(tasks.TriggerOpts{
		Gateway: gw,
		Surface: models.SurfaceTUI,
		Logger:  shared.NewLogger(&bytes.Buffer{}),
	})
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// settle runs cmd (and any batched cmds) until the generate outcome arrives.
func settle(t *testing.T, cmd tea.Cmd) Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}

	switch msg := cmd().(type) {
	case Msg:
		if msg.kind == MsgGenerateSettled {
			return msg
		}
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if m, ok := c().(Msg); ok && m.kind == MsgGenerateSettled {
				return m
			}
		}
	}

	t.Fatal("command did not produce a settled message")
	return Msg{}
}

func TestModel(t *testing.T) {
	t.Run("initial view", func(t *testing.T) {
		m := NewModel(context.Background(), ModelOpts{Trigger: newTrigger(nil)})

		if m.Init() != nil {
			t.Error("Init should not issue a command")
		}

		view := m.View()
		for _, want := range []string{Title, Description, "Last.fm Stats", "Spotify Playlist", "TK - Hot 100", Label, "0%"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q", want)
			}
		}
		if strings.Contains(view, BusyLabel) {
			t.Error("idle view must not show the busy label")
		}
	})

	t.Run("generate success", func(t *testing.T) {
		m := NewModel(context.Background(), ModelOpts{
			Trigger: newTrigger(func(context.Context) models.GenerationResult {
				return models.Succeeded("Playlist created", 25)
			}),
		})

		_, cmd := m.Update(enter)
		if !m.Busy() {
			t.Fatal("model should be busy right after enter")
		}

		_, tick := m.Update(settle(t, cmd))
		if tick == nil {
			t.Error("expected a toast expiry tick")
		}
		if m.Busy() {
			t.Error("model should be idle after settlement")
		}

		view := m.View()
		if !strings.Contains(view, "Playlist created") {
			t.Errorf("expected toast with message, got:\n%s", view)
		}
		if !strings.Contains(view, "100%") {
			t.Errorf("expected progress at 100%%, got:\n%s", view)
		}
		if !strings.Contains(view, Label) {
			t.Error("button should be enabled again")
		}
	})

	t.Run("generate failure shows error toast", func(t *testing.T) {
		m := NewModel(context.Background(), ModelOpts{
			Trigger: newTrigger(func(context.Context) models.GenerationResult {
				return models.Failed("HTTP error! status: 500")
			}),
		})

		_, cmd := m.Update(enter)
		m.Update(settle(t, cmd))

		if m.toast == nil || m.toast.notification.Kind != tasks.Negative {
			t.Fatalf("expected negative toast, got %+v", m.toast)
		}
		if !strings.Contains(m.View(), "HTTP error! status: 500") {
			t.Error("view should show the failure message")
		}
	})

	t.Run("enter is ignored while busy", func(t *testing.T) {
		gw := tu.NewBlockingGateway(models.Succeeded("done", 1))
		tr := tasks.NewTrigger(tasks.TriggerOpts{Gateway: gw, Logger: shared.NewLogger(&bytes.Buffer{})})
		m := NewModel(context.Background(), ModelOpts{Trigger: tr})

		_, cmd := m.Update(enter)
		<-gw.Started()

		if !strings.Contains(m.View(), BusyLabel) {
			t.Error("busy view should show the disabled label")
		}

		if _, again := m.Update(enter); again != nil {
			t.Error("second enter while busy must not issue a command")
		}

		gw.Release()
		m.Update(settle(t, cmd))

		if gw.Calls() != 1 {
			t.Errorf("expected exactly one gateway call, got %d", gw.Calls())
		}
		if strings.Contains(m.View(), BusyLabel) {
			t.Error("busy label should be gone after settlement")
		}
	})

	t.Run("toast expires", func(t *testing.T) {
		m := NewModel(context.Background(), ModelOpts{
			Trigger:       newTrigger(func(context.Context) models.GenerationResult { return models.Succeeded("ok", 1) }),
			ToastDuration: time.Millisecond,
		})

		_, cmd := m.Update(enter)
		m.Update(settle(t, cmd))
		id := m.toast.id

		m.Update(toastExpiredMsg(id - 1))
		if m.toast == nil {
			t.Fatal("a stale expiry must not clear the current toast")
		}

		m.Update(toastExpiredMsg(id))
		if m.toast != nil {
			t.Error("toast should be cleared")
		}
	})

	t.Run("spinner ticks stop when idle", func(t *testing.T) {
		m := NewModel(context.Background(), ModelOpts{Trigger: newTrigger(nil)})

		if _, cmd := m.Update(m.spinner.Tick()); cmd != nil {
			t.Error("idle model should drop spinner ticks")
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := NewModel(context.Background(), ModelOpts{Trigger: newTrigger(nil)})

		_, cmd := m.Update(runeKey('q'))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestHistoryView(t *testing.T) {
	run := models.NewRun(models.SurfaceCLI, models.Succeeded("Playlist created", 25), time.Second)
	run.SetSequence(7)

	t.Run("history key is inert without history", func(t *testing.T) {
		m := NewModel(context.Background(), ModelOpts{Trigger: newTrigger(nil)})

		m.Update(runeKey('h'))
		if m.view != GenerateView {
			t.Error("view should not change")
		}
	})

	t.Run("loads and renders runs", func(t *testing.T) {
		history := &fakeHistory{runs: []*models.Run{run}}
		m := NewModel(context.Background(), ModelOpts{Trigger: newTrigger(nil), History: history})
		m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

		_, cmd := m.Update(runeKey('h'))
		if m.view != HistoryView {
			t.Fatal("expected history view")
		}
		m.Update(cmd())

		if history.seen["limit"] != historyLimit {
			t.Errorf("expected limit criteria, got %v", history.seen)
		}

		items := m.historyList.Items()
		if len(items) != 1 {
			t.Fatalf("expected one item, got %d", len(items))
		}
		if title := items[0].(runItem).Title(); !strings.Contains(title, "#7 Playlist created") {
			t.Errorf("unexpected title %q", title)
		}
		if desc := items[0].(runItem).Description(); !strings.Contains(desc, "25 tracks") || !strings.Contains(desc, "cli") {
			t.Errorf("unexpected description %q", desc)
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != GenerateView {
			t.Error("esc should go back")
		}
	})

	t.Run("load error", func(t *testing.T) {
		history := &fakeHistory{err: errors.New("database is locked")}
		m := NewModel(context.Background(), ModelOpts{Trigger: newTrigger(nil), History: history})

		_, cmd := m.Update(runeKey('h'))
		m.Update(cmd())

		if !strings.Contains(m.View(), "database is locked") {
			t.Error("expected error in view")
		}
	})
}
