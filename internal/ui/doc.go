// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides the pin-picker workflow:
//  1. [SongListView] : Browse (and filter) the calendar's songs
//  2. [ConfirmView] : Confirm pinning the selected song to the target day
//  3. [ResultView] : Show the saved pin
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Saving goes through an injected function so the model never touches the filesystem directly.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
