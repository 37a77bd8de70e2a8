package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#10B981") // own messages
	mutedColor     = lipgloss.Color("#9CA3AF")
	errorColor     = lipgloss.Color("#EF4444")
	ownerColor     = lipgloss.Color("#F59E0B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(ownerColor).
			Bold(true)

	activeItemStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	ownMessageStyle   = lipgloss.NewStyle().Foreground(secondaryColor)
	otherMessageStyle = lipgloss.NewStyle().Foreground(primaryColor)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	chatWindowStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)
)

const ownerBadge = "OWNER"

func badge(owner bool) string {
	if !owner {
		return ""
	}
	return badgeStyle.Render(ownerBadge) + " "
}

func section(title string, lines []string, empty string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if len(lines) == 0 {
		b.WriteString(mutedStyle.Render(empty))
		return b.String()
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// RenderAccounts lists stored accounts; the active one is highlighted
func RenderAccounts(rows []AccountRow) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		line := fmt.Sprintf("%d. %s%s", r.Index, badge(r.Owner), r.Username)
		if r.Active {
			line = activeItemStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return section("Accounts", lines, "none yet, /register or /login")
}

// RenderFriends lists friends with their ids
func RenderFriends(rows []UserRow) string {
	return section("Friends", userLines(rows), "no friends yet")
}

// RenderSearch lists search hits
func RenderSearch(rows []UserRow) string {
	return section("Search", userLines(rows), "/search <name>")
}

func userLines(rows []UserRow) []string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s%s %s", badge(r.Owner), r.Username,
			mutedStyle.Render(fmt.Sprintf("#%d [%s]", r.ID, r.Action))))
	}
	return lines
}

// RenderRequests lists pending friend requests
func RenderRequests(rows []RequestRow) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s %s", r.FromUsername,
			mutedStyle.Render(fmt.Sprintf("#%d [%s]", r.FromUserID, r.Action))))
	}
	return section("Requests", lines, "no pending requests")
}

// RenderGroups lists groups; the open one is highlighted
func RenderGroups(rows []GroupRow) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		line := fmt.Sprintf("%s %s", r.Name, mutedStyle.Render(fmt.Sprintf("#%d [%s]", r.ID, r.Action)))
		if r.Active {
			line = activeItemStyle.Render("> ") + line
		}
		lines = append(lines, line)
	}
	return section("Groups", lines, "no groups yet")
}

// RenderMessages formats message rows one per line
func RenderMessages(rows []MessageRow) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		style := otherMessageStyle
		if r.Own {
			style = ownMessageStyle
		}
		lines = append(lines, fmt.Sprintf("%s %s%s: %s",
			mutedStyle.Render(r.Time), badge(r.Owner), style.Render(r.Author), r.Content))
	}
	return strings.Join(lines, "\n")
}

// RenderSidebar stacks the sidebar sections in a bordered box
func RenderSidebar(width int, parts ...string) string {
	return sidebarStyle.Width(width).Render(strings.Join(parts, "\n\n"))
}

// RenderStatus shows an error in red, anything else muted
func RenderStatus(text string, isErr bool) string {
	if isErr {
		return errorStyle.Render(text)
	}
	return mutedStyle.Render(text)
}

// RenderTitle styles a heading
func RenderTitle(text string) string {
	return titleStyle.Render(text)
}
