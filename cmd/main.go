package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/ergochat/readline"

	"github.com/freehour/nibble"
	"github.com/freehour/nibble/stores"
	"github.com/freehour/nibble/utils"
)

type config struct {
	Dir   string `env:"NIBBLE_DIR" envDefault:"nibble-repl"`
	Level string `env:"NIBBLE_LOG" envDefault:"info"`
}

type document struct {
	Profile map[string]any `json:"profile"`
	Tags    []string       `json:"tags"`
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("show"),
	readline.PcItem("initial"),
	readline.PcItem("profile"),
	readline.PcItem("profile!"),
	readline.PcItem("tags"),
	readline.PcItem("tags!"),
	readline.PcItem("history"),
	readline.PcItem("watch"),
	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func show(v any) {
	body, err := json.Marshal(v)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		return
	}
	fmt.Println(string(body))
}

func parseMap(arg string) (map[string]any, error) {
	var m map[string]any
	err := json.Unmarshal([]byte(arg), &m)
	return m, err
}

func parseTags(arg string) ([]string, error) {
	var tags []string
	err := json.Unmarshal([]byte(arg), &tags)
	return tags, err
}

const usage = `show                 print the current document
initial              print the document as it was on first open
profile <json>       merge keys into the profile
profile! <json>      replace the profile
tags <json>          merge a string array into the tags, index-wise
tags! <json>         replace the tags
history <seq>        print the document as of the seq-th update
watch                print every update until exit
exit | quit          leave`

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-2)
	}
	log := utils.NewDefaultLogger(logLevel(cfg.Level))

	store, err := stores.OpenPebble(cfg.Dir, document{
		Profile: map[string]any{},
		Tags:    []string{},
	}, stores.PebbleOptions{Logger: log})
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}

	profile, err := nibble.BindKeyed(store, func(d document) map[string]any {
		return d.Profile
	})
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}
	tags, err := nibble.BindSeq(store, func(d *document) *[]string {
		return &d.Tags
	})
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "nibble> ",
		HistoryFile:     "/tmp/nibble-repl.tmp",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	var unwatch func()
	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		err = nil
		switch cmd {
		case "":
		case "help":
			fmt.Println(usage)
		case "show":
			show(store.Get())
		case "initial":
			show(store.Initial())
		case "profile":
			var m map[string]any
			if m, err = parseMap(arg); err == nil {
				profile.Set(m)
				show(profile.Get())
			}
		case "profile!":
			var m map[string]any
			if m, err = parseMap(arg); err == nil {
				profile.Replace(m)
				show(profile.Get())
			}
		case "tags":
			var ts []string
			if ts, err = parseTags(arg); err == nil {
				tags.Set(ts)
				show(tags.Get())
			}
		case "tags!":
			var ts []string
			if ts, err = parseTags(arg); err == nil {
				tags.Replace(ts)
				show(tags.Get())
			}
		case "history":
			var seq uint64
			if seq, err = strconv.ParseUint(arg, 10, 64); err == nil {
				var at document
				if at, err = store.At(seq); err == nil {
					show(at)
				}
			}
		case "watch":
			if unwatch != nil {
				unwatch()
			}
			unwatch = store.Subscribe(func(next, prev document) {
				show(next)
			})
			fmt.Println("watching, updates will print until exit")
		case "exit", "quit":
			ex := 0
			if err = store.Close(); err != nil {
				_, _ = fmt.Fprintln(os.Stderr, err.Error())
				ex = -1
			}
			os.Exit(ex)
		default:
			_, _ = fmt.Fprintf(os.Stderr, "command unknown: %s\n", cmd)
		}

		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error executing %s: %s\n", cmd, err.Error())
		}
	}
	_ = store.Close()
}
