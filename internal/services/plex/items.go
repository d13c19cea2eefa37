package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"plexmeta/internal/mapper"
	"plexmeta/internal/services"
)

type guidRef struct {
	ID string `json:"id"`
}

type metadata struct {
	RatingKey string    `json:"ratingKey"`
	Title     string    `json:"title"`
	GUID      string    `json:"guid"`
	Guids     []guidRef `json:"Guid"`
}

type itemsResponse struct {
	MediaContainer struct {
		Size     int        `json:"size"`
		Metadata []metadata `json:"Metadata"`
	} `json:"MediaContainer"`
}

var _ mapper.Source = (*Client)(nil)

// Items lists every item of the library section with its native guid and
// alternate provider ids.
func (c *Client) Items(ctx context.Context, library mapper.Library) ([]mapper.Item, error) {
	section, err := c.findSection(ctx, library.Name)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/library/sections/%s/all?%s", url.PathEscape(section.Key), url.Values{"includeGuids": {"1"}}.Encode())
	resp, err := c.get(ctx, "items", path, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload itemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "items", "decode response", err)
	}

	items := make([]mapper.Item, 0, len(payload.MediaContainer.Metadata))
	for _, meta := range payload.MediaContainer.Metadata {
		item := mapper.Item{
			Handle: meta.RatingKey,
			Title:  strings.TrimSpace(meta.Title),
			GUID:   strings.TrimSpace(meta.GUID),
		}
		for _, ref := range meta.Guids {
			if id := strings.TrimSpace(ref.ID); id != "" {
				item.Alternates = append(item.Alternates, id)
			}
		}
		items = append(items, item)
	}
	return items, nil
}
