package settings

// Key binding constants used in handleKey.
const (
	KeyQuit      = "q"
	KeyCtrlC     = "ctrl+c"
	KeySave      = "ctrl+s"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyLeft      = "left"
	KeyRight     = "right"
	KeyJ         = "j"
	KeyK         = "k"
	KeyH         = "h"
	KeyL         = "l"
	KeyEnter     = "enter"
	KeySpace     = " "
	KeyEsc       = "esc"
	KeyBackspace = "backspace"
)
