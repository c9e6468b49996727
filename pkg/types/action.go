package types

// Action is a user intent handled by the navigation controller.
type Action int

const (
	None Action = iota
	QuitApp
	NextWork
	PrevWork
	NextPage
	PrevPage
	RefreshFiles
	PageSelectOn
	PageSelectOff
	PageSelectNum
	PageSelectNumDel
	PageSelectApply
	ToggleShowInfo
	MoveDrawPos
	ResetDrawPos
	FitWidth
	FitHeight
)

var actionNames = map[Action]string{
	None:             "none",
	QuitApp:          "quit",
	NextWork:         "next-work",
	PrevWork:         "prev-work",
	NextPage:         "next-page",
	PrevPage:         "prev-page",
	RefreshFiles:     "refresh",
	PageSelectOn:     "page-select-on",
	PageSelectOff:    "page-select-off",
	PageSelectNum:    "page-select-num",
	PageSelectNumDel: "page-select-del",
	PageSelectApply:  "page-select-apply",
	ToggleShowInfo:   "toggle-info",
	MoveDrawPos:      "move-draw-pos",
	ResetDrawPos:     "reset-draw-pos",
	FitWidth:         "fit-width",
	FitHeight:        "fit-height",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ChangesView reports whether the action can change which entry is shown.
// The others only touch overlay state.
func (a Action) ChangesView() bool {
	switch a {
	case NextWork, PrevWork, NextPage, PrevPage, RefreshFiles, PageSelectApply:
		return true
	}
	return false
}

// AdjustsDrawing reports whether the action pans or scales the shown image.
// Drawing state is kept by the front-end, not the controller.
func (a Action) AdjustsDrawing() bool {
	switch a {
	case MoveDrawPos, ResetDrawPos, FitWidth, FitHeight:
		return true
	}
	return false
}
