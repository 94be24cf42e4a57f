package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeUDPPort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	port := conn.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, conn.Close())
	return port
}

func TestBroadcastReachesListener(t *testing.T) {
	port := freeUDPPort(t)

	l := NewListener()
	l.port = port
	require.NoError(t, l.Start())
	defer l.Stop()

	b := NewBroadcaster(SessionInfo{
		SessionName: "maze",
		HostName:    "host",
		GameAddr:    "127.0.0.1:9999",
	}, func(info *SessionInfo) {
		info.Clients = 2
		info.Piloted = true
	}, nil)
	b.port = port
	require.NoError(t, b.Start())
	defer b.Stop()

	require.Eventually(t, func() bool { return len(l.Sessions()) == 1 }, 3*time.Second, 20*time.Millisecond)

	got := l.Sessions()[0]
	assert.Equal(t, "maze", got.SessionName)
	assert.Equal(t, 2, got.Clients)
	assert.True(t, got.Piloted)
	assert.Equal(t, 2, b.Info().Clients)
}

func TestStopIsIdempotent(t *testing.T) {
	b := NewBroadcaster(SessionInfo{GameAddr: "x"}, nil, nil)
	b.Stop()
	b.Stop()

	l := NewListener()
	l.Stop()
	l.Stop()
}

func TestReachableReplacesWildcardHost(t *testing.T) {
	from := &net.UDPAddr{IP: net.IPv4(192, 168, 1, 7), Port: 40000}

	assert.Equal(t, "192.168.1.7:9999", reachable("0.0.0.0:9999", from))
	assert.Equal(t, "192.168.1.7:9997", reachable(":9997", from))
	assert.Equal(t, "10.0.0.2:9999", reachable("10.0.0.2:9999", from))
	assert.Equal(t, "garbage", reachable("garbage", from))
}

func TestSubnetBroadcast(t *testing.T) {
	_, ipnet, err := net.ParseCIDR("192.168.1.7/24")
	require.NoError(t, err)
	ipnet.IP = net.IPv4(192, 168, 1, 7)

	ip, ok := subnetBroadcast(ipnet)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.255", ip.String())

	_, v6, err := net.ParseCIDR("fe80::1/64")
	require.NoError(t, err)
	_, ok = subnetBroadcast(v6)
	assert.False(t, ok)
}

func TestTargetsStartWithLoopback(t *testing.T) {
	dsts := targets(4242)
	require.GreaterOrEqual(t, len(dsts), 2)
	assert.Equal(t, "127.0.0.1:4242", dsts[0].String())
	assert.Equal(t, "255.255.255.255:4242", dsts[1].String())
}

func TestListenerObserveAndExpire(t *testing.T) {
	l := NewListener()
	from := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 5), Port: 50000}
	t0 := time.Unix(1000, 0)

	assert.False(t, l.observe([]byte("not json"), from, t0))
	assert.False(t, l.observe([]byte(`{"session_name":"x"}`), from, t0))

	require.True(t, l.observe([]byte(`{"session_name":"b","game_addr":"0.0.0.0:9999"}`), from, t0))
	require.True(t, l.observe([]byte(`{"session_name":"a","game_addr":"10.0.0.9:9999"}`), from, t0.Add(3*time.Second)))

	got := l.Sessions()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].SessionName)
	assert.Equal(t, "10.0.0.5:9999", got[1].GameAddr)

	l.expire(t0.Add(SessionExpiry + time.Second))
	got = l.Sessions()
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].SessionName)
}

func TestBroadcasterRefreshesEachAdvert(t *testing.T) {
	n := 0
	b := NewBroadcaster(SessionInfo{GameAddr: "x"}, func(info *SessionInfo) {
		n++
		info.Clients = n
	}, nil)

	_, err := b.payload()
	require.NoError(t, err)
	data, err := b.payload()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"clients":2`)
	assert.Equal(t, 2, b.Info().Clients)
}
