package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"todosync/internal/backend"
	"todosync/internal/model"
	"todosync/internal/session"
	"todosync/internal/snapshot"
)

type (
	subOpenedMsg struct{ sub *backend.Subscription }
	subFailedMsg struct{ err error }
	// subClosedMsg arrives when the snapshot channel closes: either a local
	// cancel (err nil) or a fatal transport termination.
	subClosedMsg struct{ err error }

	snapshotMsg       struct{ snap model.Snapshot }
	cachedSnapshotMsg struct{ snap model.Snapshot }

	urlsMsg struct {
		seq  int
		urls map[string]string
	}

	commitDoneMsg struct {
		res        session.Result
		err        error
		sessClosed bool
	}
	deleteDoneMsg struct {
		id  string
		err error
	}
	toggleDoneMsg struct {
		id  string
		err error
	}
	signedOutMsg struct{ err error }
)

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.loadCachedSnapshot(), m.openSubscription())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case subOpenedMsg:
		m.sub = msg.sub
		return m, waitForSnapshot(m.sub)

	case subFailedMsg:
		m.subErr = msg.err
		m.setStatus(fmt.Sprintf("live updates unavailable: %v", msg.err), true)
		return m, nil

	case subClosedMsg:
		if msg.err != nil {
			m.subErr = msg.err
			m.setStatus("live updates stopped: "+msg.err.Error(), true)
		}
		return m, nil

	case cachedSnapshotMsg:
		// Stale-but-instant render; the first live snapshot supersedes it.
		if m.liveSeen {
			return m, nil
		}
		m.mirror.Replace(msg.snap)
		m.refreshItems()
		m.resolveSeq++
		return m, m.resolveURLs(m.resolveSeq, msg.snap)

	case snapshotMsg:
		m.liveSeen = true
		m.mirror.Replace(msg.snap)
		m.refreshItems()
		m.resolveSeq++
		cmds := []tea.Cmd{
			m.resolveURLs(m.resolveSeq, msg.snap),
			m.saveCache(msg.snap),
		}
		if m.sub != nil {
			cmds = append(cmds, waitForSnapshot(m.sub))
		}
		return m, tea.Batch(cmds...)

	case urlsMsg:
		// A slow resolution for a superseded snapshot is discarded whole.
		if msg.seq != m.resolveSeq {
			return m, nil
		}
		m.urls = msg.urls
		return m, nil

	case commitDoneMsg:
		m.committing = false
		if msg.sessClosed {
			m.sess.Cancel()
			m.closeEditModal()
		}
		switch {
		case msg.err != nil:
			m.setStatus(msg.err.Error(), true)
		case msg.res.Skipped:
			m.setStatus("nothing to save: content is empty", false)
		default:
			m.setStatus("saved", false)
		}
		return m, nil

	case deleteDoneMsg:
		if msg.err != nil {
			m.setStatus("delete failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("deleted "+msg.id, false)
		}
		return m, nil

	case toggleDoneMsg:
		if msg.err != nil {
			m.setStatus("update failed: "+msg.err.Error(), true)
		}
		return m, nil

	case signedOutMsg:
		if msg.err != nil {
			m.setStatus("sign out failed: "+msg.err.Error(), true)
			return m, nil
		}
		return m, tea.Quit

	case spinnerTickMsg:
		if !m.committing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg.inner)
		return m, tickSpinner(cmd)

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m.routeToList(msg)
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalEdit:
		return m.updateEditModal(msg)
	case modalConfirmDelete:
		return m.updateConfirmDeleteModal(msg)
	}

	if m.view == viewDetail {
		switch msg.String() {
		case "esc", "backspace", "q":
			m.view = viewList
			m.detailItemID = ""
			return m, nil
		case "e":
			if it, ok := m.mirror.Find(m.detailItemID); ok {
				return m.openEdit(it)
			}
		}
		return m, nil
	}

	// Let the list's filter input swallow keys while active.
	if m.itemsList.FilterState() == list.Filtering {
		return m.routeToList(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "n":
		return m.openCreate()

	case "e":
		if it, ok := m.selectedItem(); ok {
			return m.openEdit(it)
		}

	case "enter":
		if it, ok := m.selectedItem(); ok {
			m.view = viewDetail
			m.detailItemID = it.ID
		}
		return m, nil

	case "x":
		if it, ok := m.selectedItem(); ok {
			return m, m.toggleDone(it.ID, !it.Done)
		}

	case "d":
		if it, ok := m.selectedItem(); ok {
			m.modal = modalConfirmDelete
			m.confirmFocus = confirmFocusCancel
			m.deleteTargetID = it.ID
		}
		return m, nil

	case "S":
		return m, m.signOut()
	}

	return m.routeToList(msg)
}

func (m appModel) updateEditModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.committing {
		// One commit at a time; only allow bailing out of the wait.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.sess.Cancel()
		m.closeEditModal()
		return m, nil

	case "tab", "shift+tab":
		if m.editFocus == editFocusContent {
			m.editFocus = editFocusFile
			m.textarea.Blur()
			m.fileInput.Focus()
		} else {
			m.editFocus = editFocusContent
			m.fileInput.Blur()
			m.textarea.Focus()
		}
		return m, nil

	case "ctrl+s":
		m.sess.SetContent(m.textarea.Value())
		m.sess.SetFile(m.fileInput.Value())
		if p := m.sess.FilePath(); p != "" {
			if _, err := os.Stat(p); err != nil {
				m.setStatus("photo: "+err.Error(), true)
				return m, nil
			}
		}
		m.committing = true
		return m, tea.Batch(m.commit(), tickSpinner(m.spin.Tick))
	}

	var cmd tea.Cmd
	if m.editFocus == editFocusContent {
		m.textarea, cmd = m.textarea.Update(msg)
		m.sess.SetContent(m.textarea.Value())
	} else {
		m.fileInput, cmd = m.fileInput.Update(msg)
		m.sess.SetFile(m.fileInput.Value())
	}
	return m, cmd
}

func (m appModel) updateConfirmDeleteModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		// Declined: no request is issued.
		m.modal = modalNone
		m.deleteTargetID = ""
		return m, nil

	case "tab", "shift+tab", "left", "right":
		if m.confirmFocus == confirmFocusCancel {
			m.confirmFocus = confirmFocusConfirm
		} else {
			m.confirmFocus = confirmFocusCancel
		}
		return m, nil

	case "y":
		return m.confirmDelete()

	case "enter":
		if m.confirmFocus == confirmFocusConfirm {
			return m.confirmDelete()
		}
		m.modal = modalNone
		m.deleteTargetID = ""
		return m, nil
	}
	return m, nil
}

func (m appModel) confirmDelete() (tea.Model, tea.Cmd) {
	id := m.deleteTargetID
	m.modal = modalNone
	m.deleteTargetID = ""
	if id == "" {
		return m, nil
	}
	return m, m.deleteItem(id)
}

func (m appModel) openCreate() (tea.Model, tea.Cmd) {
	if !m.sess.OpenCreate() {
		return m, nil
	}
	m.modal = modalEdit
	m.editFocus = editFocusContent
	m.textarea.SetValue("")
	m.fileInput.SetValue("")
	m.fileInput.Blur()
	m.textarea.Focus()
	return m, nil
}

func (m appModel) openEdit(it model.Item) (tea.Model, tea.Cmd) {
	if !m.sess.OpenEdit(it) {
		return m, nil
	}
	m.view = viewList
	m.detailItemID = ""
	m.modal = modalEdit
	m.editFocus = editFocusContent
	m.textarea.SetValue(it.Content)
	m.fileInput.SetValue("")
	m.fileInput.Blur()
	m.textarea.Focus()
	return m, nil
}

func (m *appModel) closeEditModal() {
	m.modal = modalNone
	m.textarea.Blur()
	m.fileInput.Blur()
}

func (m *appModel) setStatus(text string, isErr bool) {
	m.statusText = strings.TrimSpace(text)
	m.statusError = isErr
}

func (m appModel) selectedItem() (model.Item, bool) {
	it, ok := m.itemsList.SelectedItem().(todoListItem)
	if !ok {
		return model.Item{}, false
	}
	return it.item, true
}

func (m appModel) routeToList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.modal != modalNone || m.view != viewList {
		return m, nil
	}
	var cmd tea.Cmd
	m.itemsList, cmd = m.itemsList.Update(msg)
	return m, cmd
}

// ---- commands ----

// spinnerTickMsg wraps the spinner's own tick so commit progress doesn't
// interfere with other message routing.
type spinnerTickMsg struct{ inner tea.Msg }

func tickSpinner(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg { return spinnerTickMsg{inner: cmd()} }
}

func (m appModel) loadCachedSnapshot() tea.Cmd {
	cache := m.cache
	if cache == nil {
		return nil
	}
	return func() tea.Msg {
		snap, err := cache.Load(context.Background())
		if err != nil || len(snap) == 0 {
			return nil
		}
		return cachedSnapshotMsg{snap: snap}
	}
}

func (m appModel) openSubscription() tea.Cmd {
	c := m.deps.Backend
	timeout := m.deps.Config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		sub, err := c.Watch(ctx)
		if err != nil {
			return subFailedMsg{err: err}
		}
		return subOpenedMsg{sub: sub}
	}
}

func waitForSnapshot(sub *backend.Subscription) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-sub.Snapshots()
		if !ok {
			return subClosedMsg{err: sub.Err()}
		}
		return snapshotMsg{snap: snap}
	}
}

func (m appModel) resolveURLs(seq int, snap model.Snapshot) tea.Cmd {
	st := m.deps.Storage
	log := m.deps.Log
	timeout := m.deps.Config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return urlsMsg{seq: seq, urls: snapshot.ResolveAttachments(ctx, snap, st, log)}
	}
}

func (m appModel) saveCache(snap model.Snapshot) tea.Cmd {
	cache := m.cache
	if cache == nil {
		return nil
	}
	log := m.deps.Log
	return func() tea.Msg {
		if err := cache.Save(context.Background(), snap); err != nil {
			log.Warn().Err(err).Msg("snapshot cache save failed")
		}
		return nil
	}
}

func (m appModel) commit() tea.Cmd {
	gw := m.gateway
	sess := m.sess
	timeout := m.deps.Config.RequestTimeout
	return func() tea.Msg {
		// Commit covers up to two requests (upload then create/update).
		ctx, cancel := context.WithTimeout(context.Background(), 2*timeout)
		defer cancel()
		res, err := gw.Commit(ctx, &sess)
		return commitDoneMsg{
			res:        res,
			err:        err,
			sessClosed: sess.Mode() == session.Closed,
		}
	}
}

func (m appModel) deleteItem(id string) tea.Cmd {
	gw := m.gateway
	timeout := m.deps.Config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return deleteDoneMsg{id: id, err: gw.Delete(ctx, id)}
	}
}

func (m appModel) toggleDone(id string, done bool) tea.Cmd {
	gw := m.gateway
	timeout := m.deps.Config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := gw.SetDone(ctx, id, done)
		return toggleDoneMsg{id: id, err: err}
	}
}

func (m appModel) signOut() tea.Cmd {
	c := m.deps.Backend
	timeout := m.deps.Config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := c.SignOut(ctx)
		if errors.Is(err, context.DeadlineExceeded) {
			err = nil // local token is cleared regardless
		}
		return signedOutMsg{err: err}
	}
}
