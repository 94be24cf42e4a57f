package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amalg/go-mazewalk/internal/config"
	"github.com/amalg/go-mazewalk/internal/game"
	"github.com/amalg/go-mazewalk/internal/logging"
	"github.com/amalg/go-mazewalk/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default: built-in demo maze)")
	logFile := flag.String("log", "", "Log file path (default: discard logs)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}

	// Anything on stderr corrupts the Bubbletea screen, so logs go to a file or nowhere.
	log := logging.New(cfg.Log.File)
	defer log.Sync()

	engine, err := game.NewEngine(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	src := ui.NewLocalSource(engine)
	go engine.Run()
	defer engine.Stop()

	p := tea.NewProgram(ui.NewModel(src), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
