// Package renderer formats Nim boards and game messages for a terminal.
package renderer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
)

var (
	ColorPile   = lipgloss.Color("#20B9B4")
	ColorEmpty  = lipgloss.Color("#2C4A54")
	ColorAgent  = lipgloss.Color("#F4D03F")
	ColorError  = lipgloss.Color("#E74C3C")
	ColorWinner = lipgloss.Color("#2CD7C7")
)

// Styles is the set of styles a BoardRenderer draws with.
type Styles struct {
	Title  lipgloss.Style
	Pile   lipgloss.Style
	Empty  lipgloss.Style
	Agent  lipgloss.Style
	Error  lipgloss.Style
	Result lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true),
		Pile:   lipgloss.NewStyle().Foreground(ColorPile),
		Empty:  lipgloss.NewStyle().Foreground(ColorEmpty),
		Agent:  lipgloss.NewStyle().Foreground(ColorAgent),
		Error:  lipgloss.NewStyle().Foreground(ColorError),
		Result: lipgloss.NewStyle().Bold(true).Foreground(ColorWinner),
	}
}

// PlainStyles renders text unchanged, for non-terminal output and tests.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Title: plain, Pile: plain, Empty: plain, Agent: plain, Error: plain, Result: plain}
}

type BoardRenderer struct {
	styles Styles
}

func NewBoardRenderer(styles Styles) *BoardRenderer {
	return &BoardRenderer{styles: styles}
}

// Piles renders one "Pile i: n" line per pile.
func (r *BoardRenderer) Piles(piles core.Piles) string {
	var sb strings.Builder
	sb.WriteString(r.styles.Title.Render("Piles:"))
	sb.WriteByte('\n')
	for i, n := range piles {
		style := r.styles.Pile
		if n == 0 {
			style = r.styles.Empty
		}
		sb.WriteString(style.Render(fmt.Sprintf("Pile %d: %d", i, n)))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (r *BoardRenderer) Turn(label string) string {
	return r.styles.Title.Render(fmt.Sprintf("%s Turn", label))
}

func (r *BoardRenderer) AgentMove(action core.Action) string {
	return r.styles.Agent.Render(fmt.Sprintf("AI chose to take %d from pile %d.", action.Count, action.Pile))
}

func (r *BoardRenderer) Error(msg string) string {
	return r.styles.Error.Render(msg)
}

func (r *BoardRenderer) GameOver(winner string) string {
	return r.styles.Result.Render("GAME OVER") + "\n" + r.styles.Result.Render(fmt.Sprintf("Winner is %s", winner))
}
