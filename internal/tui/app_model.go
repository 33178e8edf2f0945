package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"todosync/internal/backend"
	"todosync/internal/config"
	"todosync/internal/session"
	"todosync/internal/snapshot"
	"todosync/internal/storage"
)

type view int

const (
	viewList view = iota
	viewDetail
)

type modalKind int

const (
	modalNone modalKind = iota
	modalEdit
	modalConfirmDelete
)

type editModalFocus int

const (
	editFocusContent editModalFocus = iota
	editFocusFile
)

// Deps are the collaborators the TUI drives. All are constructed at startup
// and torn down (subscription cancelled, cache closed) on exit; nothing here
// is ambient package state.
type Deps struct {
	Config  config.Config
	Backend *backend.Client
	Storage *storage.Client
	Log     zerolog.Logger
}

type appModel struct {
	deps    Deps
	mirror  *snapshot.Mirror
	cache   *snapshot.Cache
	sub     *backend.Subscription
	gateway *session.Gateway
	sess    session.Session

	width  int
	height int

	view         view
	detailItemID string

	itemsList list.Model

	// urls maps item id -> resolved attachment URL for the current snapshot.
	// Rebuilt from scratch on every snapshot; resolveSeq discards results that
	// arrive for a superseded snapshot.
	urls       map[string]string
	resolveSeq int

	// liveSeen flips once the first live snapshot arrives; cached snapshots
	// are only applied before that.
	liveSeen bool
	// subErr is set when the subscription terminated fatally. The mirror then
	// stops updating and the status line says so instead of failing silently.
	subErr error

	modal          modalKind
	editFocus      editModalFocus
	confirmFocus   confirmModalFocus
	deleteTargetID string
	textarea       textarea.Model
	fileInput      textinput.Model

	committing bool
	spin       spinner.Model

	statusText  string
	statusError bool

	user string
}

func newAppModel(deps Deps, cache *snapshot.Cache) appModel {
	m := appModel{
		deps:    deps,
		mirror:  snapshot.NewMirror(),
		cache:   cache,
		gateway: session.NewGateway(deps.Backend, deps.Storage, deps.Log),
		urls:    map[string]string{},
		view:    viewList,
		user:    deps.Backend.CurrentUser(),
	}

	m.itemsList = list.New([]list.Item{}, newCompactItemDelegate(), 0, 0)
	m.itemsList.Title = "Todos"
	m.itemsList.SetShowHelp(false)
	m.itemsList.SetShowStatusBar(false)
	m.itemsList.SetFilteringEnabled(true)
	m.itemsList.SetShowFilter(true)

	m.textarea = textarea.New()
	m.textarea.Placeholder = "What needs doing?"
	m.textarea.CharLimit = 0
	m.textarea.SetWidth(56)
	m.textarea.SetHeight(4)
	m.textarea.ShowLineNumbers = false

	m.fileInput = textinput.New()
	m.fileInput.Placeholder = "Photo path (optional)"
	m.fileInput.CharLimit = 400
	m.fileInput.Width = 54

	m.spin = spinner.New()
	m.spin.Spinner = spinner.MiniDot
	m.spin.Style = lipgloss.NewStyle().Foreground(colorAccent)

	return m
}

// refreshItems re-derives the visible list from the mirror. Selection is kept
// on the same item id when it survives the snapshot.
func (m *appModel) refreshItems() {
	var selectedID string
	if it, ok := m.itemsList.SelectedItem().(todoListItem); ok {
		selectedID = it.item.ID
	}

	snap := m.mirror.Items()
	m.itemsList.SetItems(toListItems(snap))

	if selectedID != "" {
		for i, it := range snap {
			if it.ID == selectedID {
				m.itemsList.Select(i)
				break
			}
		}
	}
	if m.itemsList.Index() >= len(snap) && len(snap) > 0 {
		m.itemsList.Select(len(snap) - 1)
	}
}

func (m *appModel) resizeLists() {
	h := m.height - 6 // header, status line, help line
	if h < 3 {
		h = 3
	}
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	m.itemsList.SetSize(w, h)
	m.textarea.SetWidth(modalBodyWidth(m.width) - 2)
	m.fileInput.Width = modalBodyWidth(m.width) - 4
}
