package sqlitestore

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/harun/pagina/pkg/paginator"
)

// pageNameKey tags each stored page record with its jump-list name.
const pageNameKey = "PaginatorPageName"

// encodePages serializes pages as a JSON array of content objects, each
// carrying its display name (or null) under pageNameKey.
func encodePages(pages []paginator.Page) (string, error) {
	records := make([]map[string]any, len(pages))
	for i, page := range pages {
		record := make(map[string]any, len(page.Content)+1)
		for k, v := range page.Content {
			record[k] = v
		}
		if page.Name != "" {
			record[pageNameKey] = page.Name
		} else {
			record[pageNameKey] = nil
		}
		records[i] = record
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode pages: %w", err)
	}
	return string(data), nil
}

// decodePages restores pages from their stored form; indexes follow
// array positions.
func decodePages(data string) ([]paginator.Page, error) {
	var records []map[string]any
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("decode pages: %w", err)
	}

	pages := make([]paginator.Page, len(records))
	for i, record := range records {
		name, _ := record[pageNameKey].(string)
		delete(record, pageNameKey)
		pages[i] = paginator.Page{
			Index:   i,
			Name:    name,
			Content: paginator.Content(record),
		}
	}
	return pages, nil
}
