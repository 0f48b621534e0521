package utility

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPlayers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/players.json", r.URL.Path)
		w.Write([]byte(`[{"id":1,"name":"Alice"},{"id":7,"name":"Bob"}]`))
	}))
	defer srv.Close()

	c := &ServerStatusCommand{HTTPClient: srv.Client()}
	players, err := c.fetchPlayers(srv.URL + "/players.json")
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Alice", players[0].Name)
	assert.Equal(t, 7, players[1].ID)
}

func TestFetchPlayersHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := &ServerStatusCommand{HTTPClient: srv.Client()}
	_, err := c.fetchPlayers(srv.URL + "/players.json")
	assert.EqualError(t, err, "HTTP 503")
}

func TestPlayerListField(t *testing.T) {
	field := playerListField(nil)
	assert.Equal(t, "There are currently no players online.", field.Value)

	players := make([]fivemPlayer, 30)
	for i := range players {
		players[i] = fivemPlayer{ID: i, Name: "p"}
	}
	field = playerListField(players)
	assert.Contains(t, field.Value, "...and 5 more.")
}
