package view

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// MessagePane shows the open conversation and keeps the newest message in
// view after each render
type MessagePane struct {
	vp    viewport.Model
	title string
}

// NewMessagePane returns an empty pane of the given size
func NewMessagePane(width, height int) *MessagePane {
	return &MessagePane{vp: viewport.New(width, height)}
}

// SetSize resizes the pane and re-pins it to the bottom
func (p *MessagePane) SetSize(width, height int) {
	p.vp.Width = width
	p.vp.Height = height
	p.vp.GotoBottom()
}

// Render replaces the content and scrolls to the bottom
func (p *MessagePane) Render(title string, rows []MessageRow) {
	p.title = title
	p.vp.SetContent(RenderMessages(rows))
	p.vp.GotoBottom()
}

// Update forwards scroll keys and mouse events to the viewport
func (p *MessagePane) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return cmd
}

// AtBottom reports whether the newest message is visible
func (p *MessagePane) AtBottom() bool {
	return p.vp.AtBottom()
}

// View renders the pane
func (p *MessagePane) View() string {
	title := p.title
	if title == "" {
		title = "No conversation open"
	}
	return chatWindowStyle.Width(p.vp.Width).Render(RenderTitle(title) + "\n" + p.vp.View())
}
