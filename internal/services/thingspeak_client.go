package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/go-resty/resty/v2"
)

// ThingSpeakFeed is one upstream feed entry. Field values arrive as strings
// and may be null.
type ThingSpeakFeed struct {
	CreatedAt time.Time `json:"created_at"`
	EntryID   int64     `json:"entry_id"`
	Field1    *string   `json:"field1"`
	Field2    *string   `json:"field2"`
	Field3    *string   `json:"field3"`
	Field4    *string   `json:"field4"`
	Field5    *string   `json:"field5"`
	Field6    *string   `json:"field6"`
	Field7    *string   `json:"field7"`
	Field8    *string   `json:"field8"`
}

// Reading parses the string fields; unparsable values count as unreported.
func (f *ThingSpeakFeed) Reading() models.Reading {
	var r models.Reading
	for i, raw := range []*string{f.Field1, f.Field2, f.Field3, f.Field4, f.Field5, f.Field6, f.Field7, f.Field8} {
		if raw == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
		if err != nil {
			continue
		}
		r[i] = &v
	}
	return r
}

type thingSpeakFeedsResponse struct {
	Channel struct {
		ID          uint   `json:"id"`
		Name        string `json:"name"`
		LastEntryID int64  `json:"last_entry_id"`
	} `json:"channel"`
	Feeds []ThingSpeakFeed `json:"feeds"`
}

type ThingSpeakClient struct {
	http   *resty.Client
	apiKey string
}

func NewThingSpeakClient(baseURL, apiKey string) *ThingSpeakClient {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(30*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json")

	return &ThingSpeakClient{http: client, apiKey: apiKey}
}

// Feeds fetches the channel's most recent results entries, oldest first.
func (c *ThingSpeakClient) Feeds(ctx context.Context, channelID uint, results int) ([]ThingSpeakFeed, error) {
	req := c.http.R().
		SetContext(ctx).
		SetPathParam("channel", strconv.FormatUint(uint64(channelID), 10)).
		SetQueryParam("results", strconv.Itoa(results))
	if c.apiKey != "" {
		req.SetQueryParam("api_key", c.apiKey)
	}

	var body thingSpeakFeedsResponse
	resp, err := req.SetResult(&body).Get("/channels/{channel}/feeds.json")
	if err != nil {
		return nil, fmt.Errorf("failed to call thingspeak: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("thingspeak returned %d for channel %d", resp.StatusCode(), channelID)
	}
	return body.Feeds, nil
}
