package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amalg/go-mazewalk/internal/discovery"
	"github.com/amalg/go-mazewalk/internal/network"
	"github.com/amalg/go-mazewalk/internal/ui"
)

func main() {
	addr := flag.String("addr", "", "Server address (e.g., 192.168.1.5:9999)")
	name := flag.String("name", "Walker", "Your name")
	browse := flag.Bool("browse", false, "List sessions on the LAN and exit")
	flag.Parse()

	if *browse {
		if err := listSessions(); err != nil {
			fmt.Fprintf(os.Stderr, "Browse failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *addr == "" {
		fmt.Fprintln(os.Stderr, "Usage: client --addr <host:port> [--name <name>]")
		fmt.Fprintln(os.Stderr, "       client --browse")
		os.Exit(1)
	}

	fmt.Printf("Connecting to %s as %s...\n", *addr, *name)

	client, err := network.NewClient(*addr, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	role := "spectator"
	if client.Pilot() {
		role = "pilot"
	}
	fmt.Printf("Connected as %s (%s)\n", client.ClientID(), role)

	p := tea.NewProgram(ui.NewModel(client), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// listSessions listens for one expiry window and prints what it heard.
func listSessions() error {
	l := discovery.NewListener()
	if err := l.Start(); err != nil {
		return err
	}
	defer l.Stop()

	fmt.Println("Searching for sessions...")
	time.Sleep(discovery.BroadcastInterval * 3)

	sessions := l.Sessions()
	if len(sessions) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}
	for _, s := range sessions {
		pilot := "free"
		if s.Piloted {
			pilot = "piloted"
		}
		fmt.Printf("  %-16s %-22s %s, %d client(s), %d viewer(s)\n",
			s.SessionName, s.GameAddr, pilot, s.Clients, s.Spectators)
	}
	return nil
}
