// Command test-inject is a manual test for text typing.
// It waits 3 seconds, then types or pastes test text.
// Focus a text editor before the countdown finishes.
//
// Usage:
//
//	go run ./cmd/test-inject [--method type|paste] [--text "..."]
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chaz8081/voicetyper/internal/inject"
)

func main() {
	method := flag.String("method", inject.MethodType, "typing method: type or paste")
	text := flag.String("text", "Hello from voicetyper! ", "text to type")
	flag.Parse()

	fmt.Printf("Will type %q using %q method in 3 seconds...\n", *text, *method)
	fmt.Println("Focus a text editor now!")

	for i := 3; i > 0; i-- {
		fmt.Printf("%d...\n", i)
		time.Sleep(time.Second)
	}

	typer := inject.NewTyper(*method)
	if err := typer.TypeText(*text); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nDone!")
}
