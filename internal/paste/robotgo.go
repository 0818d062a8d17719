package paste

import (
	"runtime"

	"github.com/go-vgo/robotgo"
)

// SystemClipboard is the real OS clipboard via robotgo.
type SystemClipboard struct{}

func (SystemClipboard) ReadAll() (string, error) {
	return robotgo.ReadAll()
}

func (SystemClipboard) WriteAll(text string) error {
	return robotgo.WriteAll(text)
}

// SystemKeys simulates copy/paste keystrokes via robotgo.
type SystemKeys struct{}

func (SystemKeys) TapPaste() error {
	return robotgo.KeyTap("v", pasteModifier())
}

func (SystemKeys) TapCopy() error {
	return robotgo.KeyTap("c", pasteModifier())
}

// pasteModifier returns the platform clipboard modifier key.
func pasteModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}
