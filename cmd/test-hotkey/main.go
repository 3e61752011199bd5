// Command test-hotkey is a manual test for the global hotkey listener.
// Run it, then press the chord to see toggle events.
// Press Ctrl+C to exit.
//
// Usage:
//
//	go run ./cmd/test-hotkey [--hotkey ctrl+shift+r]
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chaz8081/voicetyper/internal/config"
	"github.com/chaz8081/voicetyper/internal/hotkey"
)

func main() {
	chord := flag.String("hotkey", "ctrl+shift+r", "hotkey chord to listen for")
	flag.Parse()

	norm, err := config.NormalizeHotkey(*chord)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Listening for %s (keys: %v)...\n", norm, hotkey.Keys(norm))
	fmt.Println("Press Ctrl+C to exit.")

	listener := hotkey.NewListener(norm)

	// Handle Ctrl+C
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("\nShutting down...")
		listener.Stop()
	}()

	// Read events
	go func() {
		recording := false
		for range listener.Events() {
			recording = !recording
			if recording {
				fmt.Println(">>> TOGGLE (recording)")
			} else {
				fmt.Println("<<< TOGGLE (stopped)")
			}
		}
		fmt.Println("Event channel closed.")
	}()

	// Blocks until stopped
	listener.Start()
	fmt.Println("Done.")
}
