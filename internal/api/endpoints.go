package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/llehouerou/rpconsole/internal/playback"
)

// InitResponse is the remote configuration returned for a station.
type InitResponse struct {
	Volume       *int              `json:"volume"`
	Audio        []playback.Source `json:"audio"`
	BufferTimeMs int               `json:"bufferTime"`
	Presets      []string          `json:"presets"`
	History      []string          `json:"history"`
	GUID         string            `json:"guid"`
}

// BufferTime returns the buffering hint, 0 when not provided.
func (r *InitResponse) BufferTime() time.Duration {
	if r.BufferTimeMs <= 0 {
		return 0
	}
	return time.Duration(r.BufferTimeMs) * time.Millisecond
}

// Init fetches the remote configuration for a station.
func (c *Client) Init(ctx context.Context, stationID, stationListPrefix string) (*InitResponse, error) {
	params := url.Values{}
	if stationListPrefix != "" {
		params.Set("stationlistprefix", stationListPrefix)
	}
	reqURL := withQuery(c.endpoints.Init+"init/"+url.PathEscape(stationID), params)

	var resp InitResponse
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("init %s: %w", stationID, err)
	}
	return &resp, nil
}

// Station is one entry of the station directory.
type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"consoleUrl"`
	Logo string `json:"logoUrl"`
}

// UnmarshalJSON accepts both string and numeric station ids.
func (s *Station) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
		URL  string          `json:"consoleUrl"`
		Logo string          `json:"logoUrl"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Name, s.URL, s.Logo = raw.Name, raw.URL, raw.Logo

	var str string
	if err := json.Unmarshal(raw.ID, &str); err == nil {
		s.ID = str
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(raw.ID, &num); err == nil {
		s.ID = num.String()
		return nil
	}
	s.ID = ""
	return nil
}

// StationList fetches the station directory. The service returns either a
// bare array or an object with a "stations" field.
func (c *Client) StationList(ctx context.Context) ([]Station, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, c.endpoints.StationList, &raw); err != nil {
		return nil, fmt.Errorf("station list: %w", err)
	}

	var stations []Station
	if err := json.Unmarshal(raw, &stations); err == nil {
		return stations, nil
	}
	var wrapped struct {
		Stations []Station `json:"stations"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("station list: decode response: %w", err)
	}
	return wrapped.Stations, nil
}

// ODItem describes an on-demand programme.
type ODItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	DurationSec int    `json:"duration"`
}

// Duration returns the programme duration.
func (o *ODItem) Duration() time.Duration {
	return time.Duration(o.DurationSec) * time.Second
}

const (
	odNameSize        = 200
	odDescriptionSize = 200
)

// OnDemand fetches the on-demand item for the given console URL.
func (c *Client) OnDemand(ctx context.Context, odURL string) (*ODItem, error) {
	params := url.Values{}
	params.Set("odUrl", odURL)
	params.Set("nameSize", strconv.Itoa(odNameSize))
	params.Set("descriptionSize", strconv.Itoa(odDescriptionSize))

	var resp struct {
		Results []ODItem `json:"results"`
	}
	if err := c.getJSON(ctx, withQuery(c.endpoints.OnDemand, params), &resp); err != nil {
		return nil, fmt.Errorf("on-demand item: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Results[0], nil
}

// OnAir is what a live station is currently playing.
type OnAir struct {
	Station string `json:"stationName"`
	Artist  string `json:"artistName"`
	Title   string `json:"name"`
}

// OnAir fetches the current now-playing information for a station.
func (c *Client) OnAir(ctx context.Context, stationID string) (*OnAir, error) {
	params := url.Values{}
	params.Set("rpIds", stationID)

	var resp struct {
		Results map[string][]OnAir `json:"results"`
	}
	if err := c.getJSON(ctx, withQuery(c.endpoints.OnAir, params), &resp); err != nil {
		return nil, fmt.Errorf("on air: %w", err)
	}
	items := resp.Results[stationID]
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}
