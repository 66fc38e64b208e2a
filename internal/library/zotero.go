// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library supplies Documents to the pipeline, either from a
// Zotero library over the Web API or from a local directory of converted
// text files.
package library

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tsato-cnlab/paper-reader/internal/httputil"
	"github.com/tsato-cnlab/paper-reader/pkg/types"
)

// zoteroAPIBase is the Zotero Web API endpoint. Declared as a var so
// tests can substitute an httptest server.
var zoteroAPIBase = "https://api.zotero.org"

// paperItemTypes are the Zotero item types accepted into a batch.
var paperItemTypes = map[string]bool{
	"journalArticle":  true,
	"conferencePaper": true,
	"preprint":        true,
}

// Collection is a Zotero collection reference.
type Collection struct {
	Key  string
	Name string
}

// Item is one paper-type Zotero item with its resolved PDF attachment key.
type Item struct {
	Key           string
	Title         string
	Authors       []string
	Year          string
	AttachmentKey string
}

// Client talks to the Zotero Web API for one library.
type Client struct {
	HTTP *http.Client
	cfg  types.LibraryConfig
}

// NewClient builds a Zotero client from library configuration.
func NewClient(cfg types.LibraryConfig) *Client {
	if cfg.LibraryType == "" {
		cfg.LibraryType = "user"
	}
	return &Client{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// libraryPrefix is /users/{id} or /groups/{id} depending on library type.
func (c *Client) libraryPrefix() string {
	kind := "users"
	if c.cfg.LibraryType == "group" {
		kind = "groups"
	}
	return fmt.Sprintf("%s/%s/%s", zoteroAPIBase, kind, c.cfg.LibraryID)
}

// zoteroItem mirrors the wire format of a Zotero item or collection.
type zoteroItem struct {
	Key  string `json:"key"`
	Data struct {
		Name        string `json:"name"`
		ItemType    string `json:"itemType"`
		ContentType string `json:"contentType"`
		Title       string `json:"title"`
		Date        string `json:"date"`
		Creators    []struct {
			CreatorType string `json:"creatorType"`
			FirstName   string `json:"firstName"`
			LastName    string `json:"lastName"`
		} `json:"creators"`
	} `json:"data"`
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Zotero-API-Version", "3")
	req.Header.Set("Zotero-API-Key", c.cfg.APIKey)
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return fmt.Errorf("Zotero API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Zotero API returned %d for %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding Zotero response: %w", err)
	}
	return nil
}

// Collections lists the library's collections.
func (c *Client) Collections(ctx context.Context) ([]Collection, error) {
	var raw []zoteroItem
	if err := c.get(ctx, c.libraryPrefix()+"/collections", &raw); err != nil {
		return nil, err
	}

	collections := make([]Collection, 0, len(raw))
	for _, item := range raw {
		collections = append(collections, Collection{Key: item.Key, Name: item.Data.Name})
	}
	return collections, nil
}

// CollectionItems lists the paper-type items in a collection and resolves
// each item's PDF attachment key from its children. Zotero stores the PDF
// under the child attachment key, not the parent item key.
func (c *Client) CollectionItems(ctx context.Context, collectionKey string) ([]Item, error) {
	var raw []zoteroItem
	url := fmt.Sprintf("%s/collections/%s/items/top", c.libraryPrefix(), collectionKey)
	if err := c.get(ctx, url, &raw); err != nil {
		return nil, err
	}

	var items []Item
	for _, zi := range raw {
		if !paperItemTypes[zi.Data.ItemType] {
			continue
		}

		item := Item{
			Key:     zi.Key,
			Title:   zi.Data.Title,
			Authors: formatAuthors(zi),
			Year:    yearOf(zi.Data.Date),
		}

		// A failed children fetch leaves the attachment key empty; the
		// document loader reports the item as skipped.
		if key, err := c.pdfAttachmentKey(ctx, zi.Key); err == nil {
			item.AttachmentKey = key
		}

		items = append(items, item)
	}
	return items, nil
}

// pdfAttachmentKey returns the key of the first PDF attachment child.
func (c *Client) pdfAttachmentKey(ctx context.Context, itemKey string) (string, error) {
	var children []zoteroItem
	url := fmt.Sprintf("%s/items/%s/children", c.libraryPrefix(), itemKey)
	if err := c.get(ctx, url, &children); err != nil {
		return "", err
	}

	for _, child := range children {
		if child.Data.ItemType == "attachment" && child.Data.ContentType == "application/pdf" {
			return child.Key, nil
		}
	}
	return "", fmt.Errorf("no PDF attachment for item %s", itemKey)
}

// formatAuthors joins author creators as "LastName FirstName".
func formatAuthors(zi zoteroItem) []string {
	var authors []string
	for _, creator := range zi.Data.Creators {
		if creator.CreatorType != "author" {
			continue
		}
		name := strings.TrimSpace(creator.LastName + " " + creator.FirstName)
		if name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// yearOf extracts a 4-digit year prefix from a Zotero date string.
func yearOf(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return "N/A"
}
