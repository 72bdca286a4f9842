package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/screening"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, client *Client) MatchAlert {
	select {
	case data := <-client.Send:
		var alert MatchAlert
		require.NoError(t, json.Unmarshal(data, &alert))
		return alert
	case <-time.After(time.Second):
		t.Fatal("no alert received")
		return MatchAlert{}
	}
}

func record(id uint, origin model.MatchOrigin) model.MatchRecord {
	return model.MatchRecord{
		ID:                  id,
		PersonID:            1,
		BlacklistedPersonID: 2,
		IsMatch:             true,
		Score:               0.9,
		Kind:                screening.MatchFuzzy,
		Origin:              origin,
		SearchDate:          time.Now().UTC(),
	}
}

func TestHub_NotifyMatchesReachesEverySession(t *testing.T) {
	hub := startHub(t)
	first := NewClient(hub, nil, 1)
	second := NewClient(hub, nil, 1)
	hub.Register(first)
	hub.Register(second)
	waitForClients(t, hub, 2)

	hub.NotifyMatches([]model.MatchRecord{record(7, model.OriginPerson)})

	for _, client := range []*Client{first, second} {
		alert := receive(t, client)
		assert.Equal(t, "match", alert.Type)
		assert.EqualValues(t, 7, alert.ID)
		assert.Equal(t, screening.MatchFuzzy, alert.Kind)
	}
}

func TestHub_OriginFilter(t *testing.T) {
	hub := startHub(t)
	client := NewClient(hub, nil, 1)
	hub.Register(client)
	waitForClients(t, hub, 1)

	hub.HandleClientMessage(client, []byte(`{"type":"filter","origin":"blacklist"}`))
	hub.NotifyMatches([]model.MatchRecord{
		record(1, model.OriginPerson),
		record(2, model.OriginBlacklist),
	})

	alert := receive(t, client)
	assert.EqualValues(t, 2, alert.ID)

	// unknown origins leave the current filter alone
	hub.HandleClientMessage(client, []byte(`{"type":"filter","origin":"elsewhere"}`))
	assert.False(t, client.wants(model.OriginPerson))

	hub.HandleClientMessage(client, []byte(`{"type":"filter","origin":""}`))
	assert.True(t, client.wants(model.OriginPerson))
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	client := NewClient(hub, nil, 1)
	hub.Register(client)
	waitForClients(t, hub, 1)

	hub.Unregister(client)
	waitForClients(t, hub, 0)

	_, open := <-client.Send
	assert.False(t, open)
}

func TestClient_PumpsOverRealConnection(t *testing.T) {
	hub := startHub(t)
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, NewConn(conn), 9)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	waitForClients(t, hub, 1)

	hub.NotifyMatches([]model.MatchRecord{record(3, model.OriginBlacklist)})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var alert MatchAlert
	require.NoError(t, conn.ReadJSON(&alert))
	assert.EqualValues(t, 3, alert.ID)
	assert.Equal(t, model.OriginBlacklist, alert.Origin)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_CallsAfterShutdownDoNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := NewClient(hub, nil, 1)
	hub.Register(client)
	waitForClients(t, hub, 1)

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, open := <-client.Send
	assert.False(t, open)

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			hub.Unregister(client)
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after shutdown")
	}

	late := NewClient(hub, nil, 2)
	hub.Register(late)
	_, open = <-late.Send
	assert.False(t, open)
	assert.Zero(t, hub.ClientCount())
}
