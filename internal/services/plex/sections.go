package plex

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"plexmeta/internal/ids"
	"plexmeta/internal/logging"
	"plexmeta/internal/mapper"
	"plexmeta/internal/services"
)

// Section is one Plex library section.
type Section struct {
	Key   string
	Title string
	Type  string // "movie", "show", "artist", "photo"
}

// Sections returns the server's library sections. The listing is fetched once
// per client.
func (c *Client) Sections(ctx context.Context) ([]Section, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sections != nil {
		return c.sections, nil
	}

	resp, err := c.get(ctx, "sections", "/library/sections", "application/xml")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	type directory struct {
		Key   string `xml:"key,attr"`
		Title string `xml:"title,attr"`
		Type  string `xml:"type,attr"`
	}
	type mediaContainer struct {
		Directories []directory `xml:"Directory"`
	}

	var container mediaContainer
	if err := xml.NewDecoder(resp.Body).Decode(&container); err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "sections", "decode response", err)
	}

	sections := make([]Section, 0, len(container.Directories))
	for _, dir := range container.Directories {
		if dir.Key == "" || dir.Title == "" {
			continue
		}
		sections = append(sections, Section{Key: dir.Key, Title: dir.Title, Type: dir.Type})
	}
	c.sections = sections
	return sections, nil
}

// Library resolves a configured library name to a movie or show section. An
// exact, case-insensitive title match wins; otherwise the closest fuzzy match
// is used and logged.
func (c *Client) Library(ctx context.Context, name string) (mapper.Library, error) {
	section, err := c.findSection(ctx, name)
	if err != nil {
		return mapper.Library{}, err
	}
	kind, err := ids.ParseKind(section.Type)
	if err != nil {
		return mapper.Library{}, services.Wrap(services.ErrConfiguration, component, "library",
			fmt.Sprintf("library %q has unsupported type %q", section.Title, section.Type), nil)
	}
	return mapper.Library{Name: section.Title, Kind: kind}, nil
}

func (c *Client) findSection(ctx context.Context, name string) (Section, error) {
	sections, err := c.Sections(ctx)
	if err != nil {
		return Section{}, err
	}
	name = strings.TrimSpace(name)
	for _, section := range sections {
		if strings.EqualFold(section.Title, name) {
			return section, nil
		}
	}

	titles := make([]string, len(sections))
	for i, section := range sections {
		titles[i] = section.Title
	}
	ranks := fuzzy.RankFindNormalizedFold(name, titles)
	if len(ranks) == 0 {
		return Section{}, services.Wrap(services.ErrConfiguration, component, "library",
			fmt.Sprintf("library %q not found", name), nil)
	}
	sort.Sort(ranks)
	best := sections[ranks[0].OriginalIndex]
	c.logger.Warn("library matched by approximate title",
		logging.String(logging.FieldEventType, "plex_library_fuzzy_match"),
		logging.String("requested", name),
		logging.String("matched", best.Title),
		logging.String(logging.FieldErrorHint, "set plex.libraries to the exact section title"),
	)
	return best, nil
}
