package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/amalg/go-mazewalk/internal/config"
	"github.com/amalg/go-mazewalk/internal/discovery"
	"github.com/amalg/go-mazewalk/internal/game"
	"github.com/amalg/go-mazewalk/internal/logging"
	"github.com/amalg/go-mazewalk/internal/network"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default: built-in demo maze)")
	addr := flag.String("addr", "", "TCP address to listen on (overrides config)")
	wsAddr := flag.String("ws", "", "WebSocket viewer address (overrides config)")
	name := flag.String("name", "", "Session name (overrides config)")
	logFile := flag.String("log", "", "Log file path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *wsAddr != "" {
		cfg.Server.WSAddr = *wsAddr
	}
	if *name != "" {
		cfg.Server.Name = *name
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}

	log := logging.New(cfg.Log.File)
	defer log.Sync()

	engine, err := game.NewEngine(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build world: %v\n", err)
		os.Exit(1)
	}

	server := network.NewServer(cfg.Server.Addr, engine, log)
	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
	defer server.Stop()

	if cfg.Server.WSAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", server.Viewers())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		httpSrv := &http.Server{Addr: cfg.Server.WSAddr, Handler: mux}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("viewer feed stopped", "error", err)
			}
		}()
		defer httpSrv.Close()
	}

	hostName, _ := os.Hostname()
	broadcaster := discovery.NewBroadcaster(discovery.SessionInfo{
		SessionName: cfg.Server.Name,
		HostName:    hostName,
		GameAddr:    server.Addr().String(),
		WSAddr:      cfg.Server.WSAddr,
	}, func(info *discovery.SessionInfo) {
		info.Clients = server.ClientCount()
		info.Spectators = server.Viewers().Len()
		info.Piloted = server.Pilot() != ""
	}, log)
	if err := broadcaster.Start(); err != nil {
		log.Warnw("discovery disabled", "error", err)
	}
	defer broadcaster.Stop()

	fmt.Printf("Maze session %q\n", cfg.Server.Name)
	printLocalAddrs(server.Addr())
	if cfg.Server.WSAddr != "" {
		fmt.Printf("Viewer feed: ws://%s/ws\n", cfg.Server.WSAddr)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	fmt.Println("Shutting down.")
}

// printLocalAddrs prints all local network addresses clients can connect to.
func printLocalAddrs(addr net.Addr) {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return
	}
	fmt.Println("Clients can connect using:")
	fmt.Printf("  127.0.0.1:%d (this machine)\n", tcp.Port)

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				fmt.Printf("  %s:%d\n", ipnet.IP.String(), tcp.Port)
			}
		}
	}
}
