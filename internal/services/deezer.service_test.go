package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRadios(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/radio":
			fmt.Fprint(w, `{"data":[{"id":1,"title":"Rock Classics","tracklist":"http://x/1"}]}`)
		case "/genre/152/radios":
			fmt.Fprint(w, `{"data":[{"id":2,"title":"Hard Rock","tracklist":"http://x/2"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	service := NewDeezerService(server.URL)

	radios, err := service.Radios(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, radios, 1)
	assert.Equal(t, "Rock Classics", radios[0].Title)

	radios, err = service.Radios(context.Background(), 152)
	require.NoError(t, err)
	require.Len(t, radios, 1)
	assert.Equal(t, int64(2), radios[0].ID)
}

func TestTracklistRetriesEmptyResponses(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			fmt.Fprint(w, `{"data":[]}`)
			return
		}
		fmt.Fprint(w, `{"data":[
			{"id":10,"title":"Song A","artist":{"id":1,"name":"Band"}},
			{"id":11,"title":"","artist":{"id":2,"name":"Nameless"}},
			{"id":12,"title":"Song C","artist":{"id":0,"name":""}}
		]}`)
	}))
	defer server.Close()

	service := NewDeezerService(server.URL)

	tracks, err := service.Tracklist(context.Background(), server.URL+"/tracklist")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))

	// Tracks without a title or artist are dropped.
	require.Len(t, tracks, 1)
	assert.Equal(t, int64(10), tracks[0].ID)
}

func TestTracklistGivesUpAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer server.Close()

	service := NewDeezerService(server.URL)

	_, err := service.Tracklist(context.Background(), server.URL+"/tracklist")
	assert.Error(t, err)
}

func TestGenreChart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chart/152/tracks", r.URL.Path)
		assert.Equal(t, "300", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"data":[{"id":20,"title":"Riff","bpm":114.8,"gain":-7.8,"artist":{"id":3,"name":"Axe"},"album":{"id":4,"title":"LP","cover_big":"http://img"}}]}`)
	}))
	defer server.Close()

	service := NewDeezerService(server.URL)

	tracks, err := service.GenreChart(context.Background(), 152)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Riff", tracks[0].Title)
	assert.Equal(t, 114.8, tracks[0].BPM)
	assert.Equal(t, "http://img", tracks[0].Album.CoverBig)
}

func TestTrackUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	service := NewDeezerService(server.URL)

	_, err := service.Track(context.Background(), 42)
	assert.Error(t, err)
}
