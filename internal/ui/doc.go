// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is the terminal rendition of the single Playlist Generator page:
//  1. [GenerateView] : title, progress bar, info cards, the generate button and a toast
//  2. [HistoryView] : recorded runs in a [list.Model], newest first
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Pressing enter starts the shared [tasks.Trigger]; the outcome arrives on a channel and is delivered back as a message.
// While a call is in flight the key is ignored and the button renders disabled with a spinner.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, h, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
