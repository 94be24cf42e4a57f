package discovery

import (
	"encoding/json"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// BroadcastPort is the UDP port used for session discovery.
	BroadcastPort = 9998
	// BroadcastInterval is how often hosts advertise their session.
	BroadcastInterval = 1 * time.Second
	// SessionExpiry is how long a session stays visible after its last broadcast.
	SessionExpiry = 4 * time.Second
)

// SessionInfo describes a walking session on the network.
type SessionInfo struct {
	SessionName string `json:"session_name"`
	HostName    string `json:"host_name"`
	Clients     int    `json:"clients"`
	Spectators  int    `json:"spectators"` // WebSocket viewers
	Piloted     bool   `json:"piloted"`
	GameAddr    string `json:"game_addr"`         // TCP host:port to connect to
	WSAddr      string `json:"ws_addr,omitempty"` // WebSocket feed, if served
}

// --- Broadcaster ---

// Broadcaster periodically sends UDP broadcast packets with session info.
type Broadcaster struct {
	info    SessionInfo
	refresh func(*SessionInfo)
	port    int
	conn    net.PacketConn
	done    chan struct{}
	mu      sync.Mutex
	log     *zap.SugaredLogger
}

// NewBroadcaster creates a new session broadcaster. refresh, if non-nil, is
// called before every advertisement to update live counters.
func NewBroadcaster(info SessionInfo, refresh func(*SessionInfo), log *zap.SugaredLogger) *Broadcaster {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Broadcaster{
		info:    info,
		refresh: refresh,
		port:    BroadcastPort,
		done:    make(chan struct{}),
		log:     log,
	}
}

// Info returns the currently advertised session info.
func (b *Broadcaster) Info() SessionInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.info
}

// Start opens the advert socket, sends the first advert and keeps
// advertising every BroadcastInterval until Stop.
func (b *Broadcaster) Start() error {
	// ListenPacket rather than DialUDP: a dialed socket cannot reach
	// 255.255.255.255 on Linux without SO_BROADCAST.
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("open advert socket: %w", err)
	}
	b.conn = conn

	b.advertise()
	go b.run()
	return nil
}

// Stop stops advertising. Safe to call more than once.
func (b *Broadcaster) Stop() {
	select {
	case <-b.done:
		return
	default:
		close(b.done)
	}
	if b.conn != nil {
		b.conn.Close()
	}
}

func (b *Broadcaster) run() {
	ticker := time.NewTicker(BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.advertise()
		}
	}
}

// advertise sends one fresh advert to every target. Write failures on
// individual targets are expected (firewalled broadcast, interfaces going
// down) and only logged.
func (b *Broadcaster) advertise() {
	data, err := b.payload()
	if err != nil {
		b.log.Warnw("encode session advert", "error", err)
		return
	}

	dsts := targets(b.port)
	failed := 0
	for _, dst := range dsts {
		if _, err := b.conn.WriteTo(data, dst); err != nil {
			failed++
		}
	}
	if failed == len(dsts) {
		b.log.Debugw("session advert reached no target", "targets", len(dsts))
	}
}

// payload refreshes the live counters and encodes the advert.
func (b *Broadcaster) payload() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refresh != nil {
		b.refresh(&b.info)
	}
	return json.Marshal(b.info)
}

// targets lists where an advert goes: loopback for same-machine browsing
// (limited broadcast is often dropped locally), the limited broadcast
// address, then each up interface's subnet broadcast address.
func targets(port int) []net.Addr {
	dsts := []net.Addr{
		&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port},
		&net.UDPAddr{IP: net.IPv4bcast, Port: port},
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return dsts
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagBroadcast == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip, ok := subnetBroadcast(ipnet); ok {
				dsts = append(dsts, &net.UDPAddr{IP: ip, Port: port})
			}
		}
	}
	return dsts
}

// subnetBroadcast returns ip | ^mask for an IPv4 network.
func subnetBroadcast(ipnet *net.IPNet) (net.IP, bool) {
	ip4 := ipnet.IP.To4()
	if ip4 == nil || len(ipnet.Mask) != net.IPv4len {
		return nil, false
	}
	out := make(net.IP, net.IPv4len)
	for i := range out {
		out[i] = ip4[i] | ^ipnet.Mask[i]
	}
	return out, true
}

// --- Listener ---

// seenSession holds a session and when it was last advertised.
type seenSession struct {
	info     SessionInfo
	lastSeen time.Time
}

// Listener collects session adverts and forgets sessions that go quiet.
type Listener struct {
	sessions map[string]seenSession // keyed by GameAddr
	port     int
	mu       sync.RWMutex
	conn     *net.UDPConn
	done     chan struct{}
}

// NewListener creates a new session listener.
func NewListener() *Listener {
	return &Listener{
		sessions: make(map[string]seenSession),
		port:     BroadcastPort,
		done:     make(chan struct{}),
	}
}

// Start binds the advert port and begins collecting sessions.
func (l *Listener) Start() error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: l.port})
	if err != nil {
		return fmt.Errorf("listen UDP on port %d: %w (is another instance browsing?)", l.port, err)
	}
	l.conn = conn

	go l.listenLoop()
	go l.expireLoop()
	return nil
}

// Stop stops the listener. Safe to call more than once.
func (l *Listener) Stop() {
	select {
	case <-l.done:
		return
	default:
		close(l.done)
	}
	if l.conn != nil {
		l.conn.Close()
	}
}

// Sessions returns the visible sessions ordered by name, then address.
func (l *Listener) Sessions() []SessionInfo {
	l.mu.RLock()
	sessions := make([]SessionInfo, 0, len(l.sessions))
	for _, s := range l.sessions {
		sessions = append(sessions, s.info)
	}
	l.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].SessionName != sessions[j].SessionName {
			return sessions[i].SessionName < sessions[j].SessionName
		}
		return sessions[i].GameAddr < sessions[j].GameAddr
	})
	return sessions
}

func (l *Listener) listenLoop() {
	buf := make([]byte, 4096)
	for {
		n, from, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-l.done:
				return
			default:
				continue
			}
		}
		l.observe(buf[:n], from, time.Now())
	}
}

// observe records one advert. Undecodable adverts and adverts without a game
// address are ignored.
func (l *Listener) observe(data []byte, from *net.UDPAddr, now time.Time) bool {
	var info SessionInfo
	if err := json.Unmarshal(data, &info); err != nil || info.GameAddr == "" {
		return false
	}
	info.GameAddr = reachable(info.GameAddr, from)
	if info.WSAddr != "" {
		info.WSAddr = reachable(info.WSAddr, from)
	}

	l.mu.Lock()
	l.sessions[info.GameAddr] = seenSession{info: info, lastSeen: now}
	l.mu.Unlock()
	return true
}

func (l *Listener) expireLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case now := <-ticker.C:
			l.expire(now)
		}
	}
}

// expire drops sessions not heard from within SessionExpiry of now.
func (l *Listener) expire(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for addr, s := range l.sessions {
		if now.Sub(s.lastSeen) > SessionExpiry {
			delete(l.sessions, addr)
		}
	}
}

// reachable swaps a wildcard listen host for the address the packet came from.
func reachable(addr string, from *net.UDPAddr) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || from == nil {
		return addr
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		return net.JoinHostPort(from.IP.String(), port)
	}
	return addr
}
