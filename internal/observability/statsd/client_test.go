package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricName(t *testing.T) {
	tests := map[string]string{
		" auth/login ": "auth_login",
		"auth..login.": "auth.login",
		"a:b|c":        "a_b_c",
		"":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, metricName(in), in)
	}
}

func TestClient_Line(t *testing.T) {
	c, err := NewClient(Config{Prefix: " .educonnect. ", GlobalTags: map[string]string{"env": "prod", " svc ": " web "}})
	require.NoError(t, err)

	got := c.line("auth.operation", "1", "c", map[string]string{"result": " error ", "env": "stage", "": "x"})
	assert.Equal(t, "educonnect.auth.operation:1|c|#env:stage,result:error,svc:web", got)

	assert.Empty(t, c.line("  ", "1", "c", nil))
}

func TestClient_DisabledDropsMetrics(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	c.Count("x", 1, nil)
	c.Timing("y", time.Second, nil)
	require.NoError(t, c.Close())

	var nilClient *Client
	nilClient.Count("x", 1, nil)
	assert.False(t, nilClient.Enabled())
}

func TestClient_SendsOverUDP(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	c, err := NewClient(Config{Address: pc.LocalAddr().String(), Prefix: "app"})
	require.NoError(t, err)
	defer c.Close()
	require.True(t, c.Enabled())

	c.Timing("auth.duration", 1500*time.Microsecond, map[string]string{"operation": "login"})

	buf := make([]byte, 512)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, "app.auth.duration:1.5|ms|#operation:login", string(buf[:n]))

	require.NoError(t, c.Close())
	assert.False(t, c.Enabled())
}
