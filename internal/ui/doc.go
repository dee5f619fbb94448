// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist export:
//  1. [PlaylistListView] : Browse the library and toggle playlists for export
//  2. [ConfirmView] : Review the selection and toggle dry-run mode
//  3. [ExportView] : Monitor real-time progress updates
//  4. [ResultView] : Display the run summary
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ExportEngine, providing non-blocking status reporting while files are copied.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
