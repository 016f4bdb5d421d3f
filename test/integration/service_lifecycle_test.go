//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	v1 "github.com/aevon-lab/servicestate/internal/api/v1"
	"github.com/aevon-lab/servicestate/internal/core/state"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestCoreAPI_E2ELifecycle_StartStopMaintenance(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	require.NoError(t, resetDatabase(t, h.db))

	wsURL := "ws" + strings.TrimPrefix(h.baseURL, "http") + "/v1/service-updates/stream?cluster=" + testClusterName
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return h.hub.Clients() == 1 }, 2*time.Second, 20*time.Millisecond)

	notice := func(s state.ServiceState) v1.ComponentUpdateBatch {
		return v1.ComponentUpdateBatch{Updates: []v1.ComponentUpdateNotice{{
			ClusterID: testClusterID, ServiceName: "ZOOKEEPER", HostID: 1,
			ComponentName: "ZOOKEEPER_SERVER", Category: v1.CategoryMaster, State: s,
		}}}
	}

	t.Run("started is published", func(t *testing.T) {
		status, body := postJSON(t, h.client, h.baseURL+"/v1/component-updates", notice(state.Started))
		require.Equal(t, http.StatusAccepted, status, string(body))

		u := readUpdate(t, conn)
		require.Equal(t, testClusterName, u.ClusterName)
		require.Equal(t, "ZOOKEEPER", u.ServiceName)
		require.NotNil(t, u.State)
		require.Equal(t, state.Started, *u.State)
		require.Nil(t, u.MaintenanceState)
	})

	t.Run("identical batch is suppressed", func(t *testing.T) {
		status, body := postJSON(t, h.client, h.baseURL+"/v1/component-updates", notice(state.Started))
		require.Equal(t, http.StatusAccepted, status, string(body))
		require.Equal(t, 0, decodeSummary(t, body).Published)
	})

	t.Run("stopped is published", func(t *testing.T) {
		status, body := postJSON(t, h.client, h.baseURL+"/v1/component-updates", notice(state.Installed))
		require.Equal(t, http.StatusAccepted, status, string(body))

		u := readUpdate(t, conn)
		require.NotNil(t, u.State)
		require.Equal(t, state.Installed, *u.State)
	})

	t.Run("maintenance is never deduplicated", func(t *testing.T) {
		evt := v1.MaintenanceEvent{
			ClusterID:        testClusterID,
			Service:          &v1.ServiceRef{Name: "ZOOKEEPER"},
			MaintenanceState: state.MaintenanceOn,
		}
		for i := 0; i < 2; i++ {
			status, body := postJSON(t, h.client, h.baseURL+"/v1/maintenance-events", evt)
			require.Equal(t, http.StatusAccepted, status, string(body))

			u := readUpdate(t, conn)
			require.NotNil(t, u.MaintenanceState)
			require.Equal(t, state.MaintenanceOn, *u.MaintenanceState)
			require.Nil(t, u.State)
		}
	})

	t.Run("eviction forces republish", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/v1/service-states/%d/ZOOKEEPER", h.baseURL, testClusterID), nil)
		require.NoError(t, err)
		resp, err := h.client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		status, body := postJSON(t, h.client, h.baseURL+"/v1/component-updates", notice(state.Installed))
		require.Equal(t, http.StatusAccepted, status, string(body))
		require.Equal(t, 1, decodeSummary(t, body).Published)

		u := readUpdate(t, conn)
		require.Equal(t, state.Installed, *u.State)
	})
}

func readUpdate(t *testing.T, conn *websocket.Conn) v1.ServiceUpdate {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var u v1.ServiceUpdate
	require.NoError(t, json.Unmarshal(data, &u))
	return u
}
