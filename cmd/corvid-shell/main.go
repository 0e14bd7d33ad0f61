// Command corvid-shell is the human-facing REPL front-end, grounded
// directly on shell.go's readline.NewEx setup and ShellController.Loop's
// Readline/ErrInterrupt/io.EOF handling, driving the same uci.Engine
// commands as cmd/corvid's machine-protocol loop.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"

	"github.com/corvidchess/corvid/config"
	_ "github.com/corvidchess/corvid/nn/httpeval"
	_ "github.com/corvidchess/corvid/nn/nulleval"
	_ "github.com/corvidchess/corvid/nn/onnxeval"
	"github.com/corvidchess/corvid/uci"
)

func filterInput(r rune) (rune, bool) {
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:              "\033[32mcorvid>\033[0m ",
		HistoryFile:         "/tmp/corvid_readline.tmp",
		EOFPrompt:           "exit",
		InterruptPrompt:     "^C",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()

	engine := uci.NewEngine(cfg, os.Stdout)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		engine.DispatchLine("quit")
	}()

	for !engine.Done() {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		engine.DispatchLine(line)
	}
	log.Debug().Msg("exiting corvid-shell")
}
