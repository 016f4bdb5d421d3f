package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	v1 "github.com/aevon-lab/servicestate/internal/api/v1"
	"github.com/aevon-lab/servicestate/internal/core/state"
	"github.com/aevon-lab/servicestate/internal/core/update"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newStreamServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	hub.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/service-updates/stream" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUpdate(t *testing.T, conn *websocket.Conn) v1.ServiceUpdate {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var u v1.ServiceUpdate
	require.NoError(t, json.Unmarshal(data, &u))
	return u
}

func TestHub_BroadcastsToSubscribers(t *testing.T) {
	hub := NewHub(8, time.Second)
	srv := newStreamServer(t, hub)

	a := dial(t, srv, "")
	b := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), update.StateChanged{ClusterName: "c1name", ServiceName: "HDFS", State: state.Started}))

	for _, conn := range []*websocket.Conn{a, b} {
		u := readUpdate(t, conn)
		require.Equal(t, "c1name", u.ClusterName)
		require.Equal(t, "HDFS", u.ServiceName)
		require.NotNil(t, u.State)
		require.Equal(t, state.Started, *u.State)
	}
}

func TestHub_ClusterFilter(t *testing.T) {
	hub := NewHub(8, time.Second)
	srv := newStreamServer(t, hub)

	conn := dial(t, srv, "?cluster=c2name")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), update.StateChanged{ClusterName: "c1name", ServiceName: "HDFS", State: state.Started}))
	require.NoError(t, hub.Publish(context.Background(), update.MaintenanceChanged{ClusterName: "c2name", ServiceName: "YARN", MaintenanceState: state.MaintenanceOn}))

	u := readUpdate(t, conn)
	require.Equal(t, "c2name", u.ClusterName)
	require.NotNil(t, u.MaintenanceState)
	require.Equal(t, state.MaintenanceOn, *u.MaintenanceState)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(8, time.Second)
	srv := newStreamServer(t, hub)

	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	hub := NewHub(0, 0)
	require.NoError(t, hub.Publish(context.Background(), update.StateChanged{ClusterName: "c", ServiceName: "s", State: state.Installed}))
	hub.Close()
	require.Equal(t, 0, hub.Clients())
}
