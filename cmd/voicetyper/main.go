// Command voicetyper is a push-to-toggle dictation tool: press the hotkey to
// start recording, press it again to transcribe and type the text.
//
// Usage:
//
//	voicetyper [run] [--config path] [--engine name] [--hotkey chord] [--language code] [--no-space] [--log-level level]
//	voicetyper setup [--config path] [--download]
//	voicetyper settings [--config path]
//	voicetyper download [--model name] [--compute-type type]
//	voicetyper history [--limit n] [--format text|yaml]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stderr io.Writer) int {
	name := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}

	var err error
	switch name {
	case "run":
		err = runDictation(args, stderr)
	case "setup":
		err = runSetup(args, stderr)
	case "settings":
		err = runSettings(args, stderr)
	case "download":
		err = runDownload(args, stderr)
	case "history":
		err = runHistory(args, stderr)
	case "help":
		usage(stderr)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(stderr)
		return 1
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: voicetyper <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run        start dictation (default)")
	fmt.Fprintln(w, "  setup      answer a few questions and write the config file")
	fmt.Fprintln(w, "  settings   edit the config file interactively")
	fmt.Fprintln(w, "  download   download a whisper model")
	fmt.Fprintln(w, "  history    list recent transcriptions")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'voicetyper <command> -h' for command flags.")
}

// newLogger builds the console logger used by every command.
func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
