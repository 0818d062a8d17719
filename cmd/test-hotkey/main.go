// Command test-hotkey is a manual test for the global hotkey monitor.
// Run it, then press Ctrl+Shift+L to toggle the reported state.
// Press Ctrl+C to exit.
//
// Usage:
//
//	go run ./cmd/test-hotkey
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chaz8081/godictate/internal/hotkey"
)

func main() {
	keys := []string{"ctrl", "shift", "l"}
	fmt.Println("Listening for Ctrl+Shift+L...")
	fmt.Println("Press Ctrl+C to exit.")

	monitor := hotkey.NewMonitor(keys, nil)
	monitor.SetCallback(func(recording bool) {
		if recording {
			fmt.Println(">>> ON  (recording)")
		} else {
			fmt.Println("<<< OFF (stopped)")
		}
	})

	monitor.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	fmt.Println("\nShutting down...")
	monitor.Stop()
	os.Exit(0)
}
