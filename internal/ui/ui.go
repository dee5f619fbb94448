package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/pirtoo/extunes/internal/models"
	"github.com/pirtoo/extunes/internal/shared"
	"github.com/pirtoo/extunes/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	ConfirmView
	ExportView
	ResultView
)

type progressUpdateMsg tasks.ProgressUpdate

type exportCompleteMsg struct {
	summary *models.SyncSummary
	err     error
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	cfg    *shared.Config
	snap   *models.LibrarySnapshot
	logger *log.Logger

	view   ViewState
	width  int
	height int

	playlistList list.Model
	selected     map[string]bool
	dryRun       bool

	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	summary      *models.SyncSummary
	err          error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model over a loaded library snapshot.
func NewModel(ctx context.Context, cfg *shared.Config, snap *models.LibrarySnapshot, logger *log.Logger) *Model {
	selected := make(map[string]bool)

	items := make([]list.Item, 0, len(snap.Playlists))
	for i := range snap.Playlists {
		p := &snap.Playlists[i]
		items = append(items, playlistItem{
			name:     p.Name,
			tracks:   len(p.Tracks),
			size:     snap.PlaylistSize(p),
			flags:    p.Flags(),
			selected: selected,
		})
	}

	playlistList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	playlistList.Title = "Library Playlists"

	return &Model{
		ctx:          ctx,
		cfg:          cfg,
		snap:         snap,
		logger:       logger,
		view:         PlaylistListView,
		playlistList: playlistList,
		selected:     selected,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case exportCompleteMsg:
		m.summary = msg.summary
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	if m.view == PlaylistListView {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case ConfirmView:
		return m.renderConfirm()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Filtering grabs the keyboard; let the list have it.
	if m.playlistList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			m.selected[item.name] = !m.selected[item.name]
		}
		return m, nil
	case "enter":
		if len(m.selectedNames()) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.view = PlaylistListView
		return m, nil
	case "d":
		m.dryRun = !m.dryRun
		return m, nil
	case "y":
		m.view = ExportView
		return m, m.startExport()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.summary = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

// selectedNames returns the toggled playlist names in library order.
func (m *Model) selectedNames() []string {
	var names []string
	for i := range m.snap.Playlists {
		if m.selected[m.snap.Playlists[i].Name] {
			names = append(names, m.snap.Playlists[i].Name)
		}
	}
	return names
}

func (m *Model) startExport() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	opts := tasks.Options{
		Playlists: m.selectedNames(),
		DryRun:    m.dryRun,
	}
	engine := tasks.NewExportEngine(m.cfg, m.snap, opts, m.logger, m.progressChan)

	go func() {
		summary, err := engine.Run(m.ctx)
		m.summary = summary
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return exportCompleteMsg{summary: m.summary, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return exportCompleteMsg{summary: m.summary, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.toggle, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	names := m.selectedNames()
	title := styles.title.Render(fmt.Sprintf("Export %d playlists?", len(names)))

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", name)
	}
	mode := "write to destination"
	if m.dryRun {
		mode = styles.warn.Render("dry run, nothing written")
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.dry, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\nMode: %s\n\n%s", title, b.String(), mode, helpView)
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting Playlists")

	var phase string
	switch m.progress.Phase {
	case tasks.SelectPlaylists:
		phase = "Resolving playlists..."
	case tasks.WritePlaylists:
		phase = fmt.Sprintf("Writing playlists (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.CleanPlaylists, tasks.CleanMusic:
		phase = "Removing stale destination files..."
	case tasks.PlanCopies:
		phase = "Planning copies..."
	case tasks.CopyTracks:
		phase = fmt.Sprintf("Copying tracks (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Export failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.summary == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Export Complete!")
	if m.summary.DryRun {
		title = styles.warn.Render("Dry run complete, nothing written")
	}

	info := fmt.Sprintf(
		"\nPlaylists: %d exported, %d empty, %d missing\nTracks: %d/%d copied (%s)\nRemoved: %d files, %d directories",
		len(m.summary.PlaylistsExported),
		len(m.summary.PlaylistsEmpty),
		len(m.summary.PlaylistsMissing),
		m.summary.TracksCopied,
		m.summary.TracksDesired,
		shared.FormatBytes(m.summary.BytesCopied),
		m.summary.FilesRemoved,
		m.summary.DirsRemoved,
	)

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
