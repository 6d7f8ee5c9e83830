package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThingSpeakFeeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels/1001/feeds.json", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("results"))
		assert.Equal(t, "read-key", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"channel": {"id": 1001, "name": "Greenhouse", "last_entry_id": 12},
			"feeds": [
				{"created_at": "2026-03-01T12:00:00Z", "entry_id": 11, "field1": "21.5", "field2": null},
				{"created_at": "2026-03-01T12:01:00Z", "entry_id": 12, "field1": " 22 ", "field3": "n/a"}
			]
		}`))
	}))
	defer srv.Close()

	client := NewThingSpeakClient(srv.URL+"/", "read-key")
	feeds, err := client.Feeds(context.Background(), 1001, 20)
	require.NoError(t, err)
	require.Len(t, feeds, 2)

	assert.Equal(t, int64(11), feeds[0].EntryID)
	r := feeds[0].Reading()
	require.NotNil(t, r[0])
	assert.Equal(t, 21.5, *r[0])
	assert.Nil(t, r[1])

	r = feeds[1].Reading()
	require.NotNil(t, r[0])
	assert.Equal(t, 22.0, *r[0])
	assert.Nil(t, r[2], "unparsable values are unreported")
}

func TestThingSpeakFeeds_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewThingSpeakClient(srv.URL, "").Feeds(context.Background(), 1001, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
