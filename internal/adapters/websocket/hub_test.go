package websocket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/IANDYI/pregnancy-service/internal/adapters/websocket"
	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startHub runs a hub behind a test server; the role query parameter picks the client's role
func startHub(t *testing.T, onBroadcast func(int)) (*websocket.Hub, *httptest.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.NewHub(zerolog.Nop(), onBroadcast)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := websocket.NewClient(hub, conn, websocket.ClientInfo{
			UserID: uuid.NewString(),
			Role:   r.URL.Query().Get("role"),
		})
		hub.Register(client)
		client.Start()
	}))

	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, role string) *gws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?role=" + role
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sampleAlert() *domain.FindingAlert {
	return &domain.FindingAlert{
		ProfileID: uuid.New(),
		EntryID:   uuid.New(),
		UserID:    uuid.New(),
		Week:      24,
		Findings: []domain.AbnormalFinding{{
			Field:     domain.FieldBloodPressure,
			Abnormal:  true,
			Severity:  domain.SeveritySevere,
			Condition: domain.ConditionSevereHypertension,
			Value:     165,
		}},
		Severity:  domain.AlertSeverityCritical,
		Timestamp: time.Now().UTC(),
	}
}

func TestHub_BroadcastAlert_ReachesAdmins(t *testing.T) {
	var mu sync.Mutex
	var recipients []int
	hub, server := startHub(t, func(n int) {
		mu.Lock()
		defer mu.Unlock()
		recipients = append(recipients, n)
	})

	admin := dial(t, server, "ADMIN")
	require.Eventually(t, func() bool { return hub.ConnectedAdminCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	alert := sampleAlert()
	hub.BroadcastAlert(alert)

	require.NoError(t, admin.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := admin.ReadMessage()
	require.NoError(t, err)

	var msg websocket.AlertMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, websocket.MessageTypeAlert, msg.Type)
	require.NotNil(t, msg.Alert)
	assert.Equal(t, alert.EntryID, msg.Alert.EntryID)
	assert.Equal(t, domain.AlertSeverityCritical, msg.Alert.Severity)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(recipients) == 1 && recipients[0] == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastAlert_SkipsNonAdmins(t *testing.T) {
	hub, server := startHub(t, nil)

	user := dial(t, server, "USER")
	admin := dial(t, server, "ADMIN")
	require.Eventually(t, func() bool { return hub.ConnectedAdminCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.BroadcastAlert(sampleAlert())

	require.NoError(t, admin.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := admin.ReadMessage()
	require.NoError(t, err)

	require.NoError(t, user.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = user.ReadMessage()
	assert.Error(t, err)
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	hub, server := startHub(t, nil)

	admin := dial(t, server, "ADMIN")
	require.Eventually(t, func() bool { return hub.ConnectedAdminCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, admin.Close())
	assert.Eventually(t, func() bool { return hub.ConnectedAdminCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StoppedHubDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.NewHub(zerolog.Nop(), nil)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	finished := make(chan struct{})
	go func() {
		hub.BroadcastAlert(sampleAlert())
		assert.Equal(t, 0, hub.ConnectedAdminCount())
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("hub calls blocked after shutdown")
	}
}
