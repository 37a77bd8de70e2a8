package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"nebula/session"
)

// invalidateMsg tells the model to re-read a section of the session
type invalidateMsg struct {
	section session.Section
}

// Notifier forwards session invalidations into a running program. Calls
// made before Attach are dropped; the model snapshots on start anyway.
type Notifier struct {
	mu sync.Mutex
	p  *tea.Program
}

// Attach binds the notifier to p
func (n *Notifier) Attach(p *tea.Program) {
	n.mu.Lock()
	n.p = p
	n.mu.Unlock()
}

// Invalidate implements session.Listener. It must not be called from
// inside the program's Update loop.
func (n *Notifier) Invalidate(s session.Section) {
	n.mu.Lock()
	p := n.p
	n.mu.Unlock()
	if p != nil {
		p.Send(invalidateMsg{section: s})
	}
}
