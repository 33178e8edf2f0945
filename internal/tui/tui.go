package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"todosync/internal/snapshot"
)

// Run starts the interactive TUI and blocks until the user quits. The
// subscription and snapshot cache are torn down on exit; an in-flight commit
// is allowed to finish or fail in the background, its result discarded.
func Run(deps Deps) error {
	applyColorProfilePreference()
	applyThemePreference()

	cache, err := snapshot.OpenCache(context.Background(), deps.Config.CachePath)
	if err != nil {
		// The cache only buys a faster first paint; run without it.
		deps.Log.Warn().Err(err).Msg("snapshot cache unavailable")
		cache = nil
	}

	m := newAppModel(deps, cache)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()

	if fm, ok := final.(appModel); ok && fm.sub != nil {
		fm.sub.Cancel()
	}
	if cache != nil {
		_ = cache.Close()
	}
	return err
}
