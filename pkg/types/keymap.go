package types

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the viewer key bindings.
// It lives in pkg/types so both front-ends resolve keys the same way.
type KeyMap struct {
	Quit     key.Binding
	NextWork key.Binding
	PrevWork key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Refresh  key.Binding
	Info     key.Binding

	// Drawing position
	Move      key.Binding
	Reset     key.Binding
	FitWidth  key.Binding
	FitHeight key.Binding

	// Page selection
	PageSelect  key.Binding // Opens the page prompt
	PageCancel  key.Binding
	PageDigit   key.Binding
	PageDelete  key.Binding
	PageConfirm key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "\\", "ctrl+c"), key.WithHelp("q", "quit")),
		NextWork: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next directory")),
		PrevWork: key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous directory")),
		NextPage: key.NewBinding(key.WithKeys("x", "right", " "), key.WithHelp("→/x/space", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("z", "left", "pgdown"), key.WithHelp("←/z", "previous page")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Info:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle info")),

		Move:      key.NewBinding(key.WithKeys("h", "j", "k", "l"), key.WithHelp("h/j/k/l", "move image")),
		Reset:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset position")),
		FitWidth:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "fit width")),
		FitHeight: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "fit height")),

		PageSelect:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "go to page")),
		PageCancel:  key.NewBinding(key.WithKeys("esc", "p"), key.WithHelp("esc", "cancel")),
		PageDigit:   key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "page number")),
		PageDelete:  key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "delete digit")),
		PageConfirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "jump")),
	}
}

// Resolve maps a key press to an action. Page-selection keys only apply
// while the page prompt is open; in that state they take precedence.
func (k KeyMap) Resolve(msg fmt.Stringer, pageSelect bool) Action {
	if pageSelect {
		switch {
		case key.Matches(msg, k.PageCancel):
			return PageSelectOff
		case key.Matches(msg, k.PageDigit):
			return PageSelectNum
		case key.Matches(msg, k.PageDelete):
			return PageSelectNumDel
		case key.Matches(msg, k.PageConfirm):
			return PageSelectApply
		}
	}
	switch {
	case key.Matches(msg, k.Quit):
		return QuitApp
	case key.Matches(msg, k.NextWork):
		return NextWork
	case key.Matches(msg, k.PrevWork):
		return PrevWork
	case key.Matches(msg, k.NextPage):
		return NextPage
	case key.Matches(msg, k.PrevPage):
		return PrevPage
	case key.Matches(msg, k.Refresh):
		return RefreshFiles
	case key.Matches(msg, k.Info):
		return ToggleShowInfo
	case key.Matches(msg, k.Move):
		return MoveDrawPos
	case key.Matches(msg, k.Reset):
		return ResetDrawPos
	case key.Matches(msg, k.FitWidth):
		return FitWidth
	case key.Matches(msg, k.FitHeight):
		return FitHeight
	case !pageSelect && key.Matches(msg, k.PageSelect):
		return PageSelectOn
	}
	return None
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.PrevPage, k.NextWork, k.PrevWork, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPage, k.PrevPage, k.NextWork, k.PrevWork},
		{k.Refresh, k.Info, k.PageSelect, k.Quit},
		{k.PageDigit, k.PageDelete, k.PageConfirm, k.PageCancel},
		{k.Move, k.Reset, k.FitWidth, k.FitHeight},
	}
}

// Key is a plain key name usable with Resolve.
type Key string

func (k Key) String() string { return string(k) }
