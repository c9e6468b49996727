//go:build !nogui

package gui

import (
	"strings"

	"fyne.io/fyne/v2"
)

var namedKeys = map[fyne.KeyName]string{
	fyne.KeyDown:      "down",
	fyne.KeyUp:        "up",
	fyne.KeyLeft:      "left",
	fyne.KeyRight:     "right",
	fyne.KeySpace:     " ",
	fyne.KeyPageDown:  "pgdown",
	fyne.KeyPageUp:    "pgup",
	fyne.KeyEscape:    "esc",
	fyne.KeyBackspace: "backspace",
	fyne.KeyReturn:    "enter",
	fyne.KeyEnter:     "enter",
	fyne.KeyBackslash: "\\",
}

// keyName converts a fyne key to the names used by types.KeyMap.
func keyName(k fyne.KeyName) (string, bool) {
	if name, ok := namedKeys[k]; ok {
		return name, true
	}
	s := string(k)
	if len(s) == 1 {
		c := s[0]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return strings.ToLower(s), true
		}
	}
	return "", false
}
