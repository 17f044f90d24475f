package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	logger "github.com/Bparsons0904/goLogger"
)

// DeezerService is the client for the external catalog/radio provider.
// It is treated as an unreliable, best-effort upstream: tracklist
// fetches re-poll a bounded number of times before giving up.
type DeezerService struct {
	client  *http.Client
	baseURL string
	log     logger.Logger
}

const (
	tracklistRetries    = 5
	tracklistRetryDelay = 500 * time.Millisecond
)

type DeezerRadio struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Tracklist string `json:"tracklist"`
}

type DeezerArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type DeezerAlbum struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	CoverBig string `json:"cover_big"`
}

type DeezerTrack struct {
	ID      int64        `json:"id"`
	Title   string       `json:"title"`
	Preview string       `json:"preview"`
	BPM     float64      `json:"bpm"`
	Gain    float64      `json:"gain"`
	Link    string       `json:"link"`
	Artist  DeezerArtist `json:"artist"`
	Album   DeezerAlbum  `json:"album"`
}

type deezerListResponse[T any] struct {
	Data []T `json:"data"`
}

func NewDeezerService(baseURL string) *DeezerService {
	log := logger.New("DeezerService")
	return &DeezerService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		log:     log,
	}
}

func (d *DeezerService) getJSON(ctx context.Context, url string, out any) error {
	log := d.log.Function("getJSON")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return log.Err("failed to create request", err, "url", url)
	}
	req.Header.Set("User-Agent", "MultiTunes/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return log.Err("failed to make request", err, "url", url)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return log.Error("unexpected response status", "status", resp.StatusCode, "url", url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return log.Err("failed to decode response", err, "url", url)
	}

	return nil
}

// Radios returns the genre's radios, or the global radio list when the
// genre id is zero.
func (d *DeezerService) Radios(ctx context.Context, genreID int) ([]DeezerRadio, error) {
	url := d.baseURL + "/radio"
	if genreID != 0 {
		url = fmt.Sprintf("%s/genre/%d/radios", d.baseURL, genreID)
	}

	var response deezerListResponse[DeezerRadio]
	if err := d.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}

	return response.Data, nil
}

// Tracklist fetches a radio's tracklist URL. The upstream intermittently
// returns empty payloads for fresh radios, so empty results are re-polled
// a few times before failing.
func (d *DeezerService) Tracklist(ctx context.Context, tracklistURL string) ([]DeezerTrack, error) {
	log := d.log.Function("Tracklist")

	for attempt := 0; attempt < tracklistRetries; attempt++ {
		var response deezerListResponse[DeezerTrack]
		if err := d.getJSON(ctx, tracklistURL, &response); err != nil {
			return nil, err
		}

		if len(response.Data) > 0 {
			return filterUsable(response.Data), nil
		}

		log.Debug("Empty tracklist, re-polling", "attempt", attempt+1, "url", tracklistURL)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(tracklistRetryDelay):
		}
	}

	return nil, log.Error("tracklist stayed empty after retries", "url", tracklistURL)
}

// GenreChart returns the chart tracks for a genre (genre id 0 is the
// global chart).
func (d *DeezerService) GenreChart(ctx context.Context, genreID int) ([]DeezerTrack, error) {
	url := fmt.Sprintf("%s/chart/%d/tracks?limit=300", d.baseURL, genreID)

	var response deezerListResponse[DeezerTrack]
	if err := d.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}

	return filterUsable(response.Data), nil
}

// Track fetches a single track's metadata by id.
func (d *DeezerService) Track(ctx context.Context, id int64) (*DeezerTrack, error) {
	url := fmt.Sprintf("%s/track/%d", d.baseURL, id)

	var track DeezerTrack
	if err := d.getJSON(ctx, url, &track); err != nil {
		return nil, err
	}

	return &track, nil
}

// filterUsable drops tracks missing a title or artist; those cannot be
// rendered as answers.
func filterUsable(tracks []DeezerTrack) []DeezerTrack {
	usable := make([]DeezerTrack, 0, len(tracks))
	for _, track := range tracks {
		if track.Title == "" || track.Artist.Name == "" {
			continue
		}
		usable = append(usable, track)
	}
	return usable
}
