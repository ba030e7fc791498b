package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/playlistinator/internal/models"
	"github.com/desertthunder/playlistinator/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgGenerateSettled MsgKind = iota
	MsgToastExpired
	MsgHistoryLoaded
)

// Kind reports which message this is.
func (m Msg) Kind() MsgKind { return m.kind }

// generateSettledMsg is the constructor for [MsgGenerateSettled]
func generateSettledMsg(outcome tasks.Outcome) Msg {
	return Msg{kind: MsgGenerateSettled, data: outcome}
}

// toastExpiredMsg is the constructor for [MsgToastExpired]
func toastExpiredMsg(id int) Msg {
	return Msg{kind: MsgToastExpired, data: id}
}

// historyLoadedMsg is the constructor for [MsgHistoryLoaded]
func historyLoadedMsg(runs []*models.Run, err error) Msg {
	return Msg{
		kind: MsgHistoryLoaded,
		data: historyLoaded{runs, err},
	}
}

type historyLoaded struct {
	runs []*models.Run
	err  error
}
