// Command test-paste is a manual test for the clipboard paste workflow.
// It waits 3 seconds, then pastes test text and restores the clipboard.
// Focus a text editor before the countdown finishes.
//
// Usage:
//
//	go run ./cmd/test-paste
package main

import (
	"fmt"
	"time"

	"github.com/chaz8081/godictate/internal/paste"
)

func main() {
	text := "Hello from godictate!"

	fmt.Printf("Will paste %q in 3 seconds...\n", text)
	fmt.Println("Focus a text editor now!")

	for i := 3; i > 0; i-- {
		fmt.Printf("%d...\n", i)
		time.Sleep(time.Second)
	}

	paster := paste.New(paste.SystemClipboard{}, paste.SystemKeys{}, nil)
	if err := paster.PasteText(text); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("\nDone! The previous clipboard contents were restored.")
}
