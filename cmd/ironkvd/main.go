// Command ironkvd is a local REPL over an IronKV store, demonstrating the
// set/get/delete/scan/flush/checkpoint/stats operations against local-file
// collaborators standing in for the real remote page blob and log.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/ironkv/ironkv"
	"github.com/ironkv/ironkv/internal/config"
)

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".ironkv_history"
	}
	return filepath.Join(home, ".ironkv_history")
}

// History is a one-line-per-entry persisted command history.
type History struct {
	path  string
	lines []string
}

func NewHistory(path string) *History {
	return &History{path: path}
}

func (h *History) Load() error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			h.lines = append(h.lines, line)
		}
	}
	return sc.Err()
}

func (h *History) Append(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = fmt.Fprintln(f, line)
	h.lines = append(h.lines, line)
	return err
}

func runCommand(ctx context.Context, store *ironkv.Store, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch strings.ToLower(fields[0]) {
	case "set":
		if len(fields) < 3 {
			fmt.Println("usage: set <key> <value>")
			return
		}
		key := fields[1]
		value := strings.Join(fields[2:], " ")
		if err := store.Set(ctx, key, value); err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Println("OK")

	case "get":
		if len(fields) != 2 {
			fmt.Println("usage: get <key>")
			return
		}
		v, ok, err := store.Get(ctx, fields[1])
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		if !ok {
			fmt.Println("(nil)")
			return
		}
		fmt.Println(v)

	case "delete", "del":
		if len(fields) != 2 {
			fmt.Println("usage: delete <key>")
			return
		}
		ok, err := store.Delete(ctx, fields[1])
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Println(ok)

	case "scan":
		rows, err := store.Scan(ctx)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		for _, row := range rows {
			fmt.Printf("%s = %s\n", row.Key, row.Value)
		}
		fmt.Printf("(%d rows)\n", len(rows))

	case "flush":
		if err := store.Flush(ctx); err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Println("OK")

	case "checkpoint":
		if err := store.Checkpoint(ctx); err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Println("OK")

	case "stats":
		s := store.Stats()
		fmt.Printf("num_keys=%d wal_lsn=%d frames_used=%d frames_dirty=%d frames_pinned=%d\n",
			s.NumKeys, s.WalLSN, s.FramesUsed, s.FramesDirty, s.FramesPinned)

	default:
		fmt.Printf("unknown command: %s\n", fields[0])
	}
}

func isMetaCommand(line string) bool {
	line = strings.TrimSpace(line)
	return line == "quit" || line == "exit" || line == "\\help"
}

func main() {
	var (
		workdir    = flag.String("workdir", "./ironkv-data", "directory for the local page blob and WAL files")
		configPath = flag.String("config", "", "optional YAML config file")
		histPath   = flag.String("history", defaultHistoryPath(), "history file path")
		oneShot    = flag.String("c", "", "run one command and exit, e.g. -c \"get foo\"")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = *loaded
	}

	ctx := context.Background()
	store, err := ironkv.OpenFile(ctx, *workdir, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	if strings.TrimSpace(*oneShot) != "" {
		runCommand(ctx, store, *oneShot)
		return
	}

	h := NewHistory(*histPath)
	_ = h.Load()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ironkv> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	for _, line := range h.lines {
		_ = rl.SaveHistory(line)
	}

	fmt.Printf("ironkv workdir=%s\n", *workdir)
	fmt.Println("commands: set get delete scan flush checkpoint stats quit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println("^C")
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isMetaCommand(line) {
			if line == "quit" || line == "exit" {
				return
			}
			fmt.Println("commands: set get delete scan flush checkpoint stats quit")
			continue
		}

		_ = h.Append(line)
		_ = rl.SaveHistory(line)
		runCommand(ctx, store, line)
	}
}
