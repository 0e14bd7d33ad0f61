// Command corvid is the machine-protocol front-end: one command per line
// on stdin, responses on stdout, matching the teacher's cmd/shell/main.go
// startup shape (config load, zerolog console writer, signal handling)
// but driving uci.Engine's UCI loop instead of shell.ShellController's
// interactive REPL.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/corvidchess/corvid/config"
	_ "github.com/corvidchess/corvid/nn/httpeval"
	_ "github.com/corvidchess/corvid/nn/nulleval"
	_ "github.com/corvidchess/corvid/nn/onnxeval"
	"github.com/corvidchess/corvid/uci"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i any) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(level)
	log.Logger = logger

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	engine := uci.NewEngine(cfg, os.Stdout)
	done := make(chan struct{})
	go func() {
		engine.Loop(os.Stdin)
		close(done)
	}()

	select {
	case <-sig:
		log.Info().Msg("got quit signal, aborting search")
		engine.DispatchLine("quit")
	case <-done:
	}
}
