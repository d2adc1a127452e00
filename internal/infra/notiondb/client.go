// Package notiondb talks to a Notion database through jomei/notionapi.
package notiondb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/sleroq/stickies-to-notion/internal/domain/stickies"
)

// QueryPageSize is the largest page size the query endpoint accepts.
const QueryPageSize = 100

// PropertyNames are the database column names the client reads and writes.
type PropertyNames struct {
	Title       string
	Created     string
	Modified    string
	Fingerprint string
	Color       string
}

func DefaultPropertyNames() PropertyNames {
	return PropertyNames{
		Title:       "Name",
		Created:     "Created",
		Modified:    "Modified",
		Fingerprint: "Hash",
		Color:       "Color",
	}
}

type Client struct {
	api    *notionapi.Client
	props  PropertyNames
	logger *slog.Logger
}

func New(token string, props PropertyNames, logger *slog.Logger, opts ...notionapi.ClientOption) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:    notionapi.NewClient(notionapi.Token(token), opts...),
		props:  props,
		logger: logger,
	}
}

func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (stickies.DatabaseInfo, error) {
	db, err := c.api.Database.Get(ctx, notionapi.DatabaseID(databaseID))
	if err != nil {
		return stickies.DatabaseInfo{}, fmt.Errorf("retrieve database %s: %w", databaseID, err)
	}
	return stickies.DatabaseInfo{
		ID:    string(db.ID),
		Title: plainText(db.Title),
	}, nil
}

// QueryPages fetches one page of database rows starting at cursor. An empty
// cursor starts from the beginning.
func (c *Client) QueryPages(ctx context.Context, databaseID, cursor string) (stickies.PageBatch, error) {
	resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), &notionapi.DatabaseQueryRequest{
		StartCursor: notionapi.Cursor(cursor),
		PageSize:    QueryPageSize,
	})
	if err != nil {
		return stickies.PageBatch{}, fmt.Errorf("query database %s: %w", databaseID, err)
	}

	batch := stickies.PageBatch{
		Pages:      make([]stickies.IndexedPage, 0, len(resp.Results)),
		NextCursor: string(resp.NextCursor),
		HasMore:    resp.HasMore,
	}
	for _, page := range resp.Results {
		batch.Pages = append(batch.Pages, stickies.IndexedPage{
			PageID:      string(page.ID),
			Fingerprint: textProperty(page.Properties[c.props.Fingerprint]),
		})
	}
	c.logger.Debug("queried database", "database_id", databaseID, "rows", len(batch.Pages), "has_more", batch.HasMore)
	return batch, nil
}

// CreatePage adds a row to the database with the given properties and
// initial body. It returns the new page id.
func (c *Client) CreatePage(ctx context.Context, databaseID string, props stickies.PageProperties, children []stickies.ContentBlock) (string, error) {
	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: c.properties(props),
		Children:   Blocks(children),
	})
	if err != nil {
		return "", fmt.Errorf("create page %q: %w", props.Title, err)
	}
	return string(page.ID), nil
}

func (c *Client) UpdatePage(ctx context.Context, pageID string, props stickies.PageProperties) error {
	if _, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: c.properties(props),
	}); err != nil {
		return fmt.Errorf("update page %s: %w", pageID, err)
	}
	return nil
}

func (c *Client) AppendChildren(ctx context.Context, pageID string, children []stickies.ContentBlock) error {
	if _, err := c.api.Block.AppendChildren(ctx, notionapi.BlockID(pageID), &notionapi.AppendBlockChildrenRequest{
		Children: Blocks(children),
	}); err != nil {
		return fmt.Errorf("append %d blocks to %s: %w", len(children), pageID, err)
	}
	return nil
}

func (c *Client) properties(p stickies.PageProperties) notionapi.Properties {
	props := notionapi.Properties{
		c.props.Title: notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{textSpan(p.Title)},
		},
		c.props.Created:     dateProperty(p.Created),
		c.props.Modified:    dateProperty(p.Modified),
		c.props.Fingerprint: richTextProperty(p.Fingerprint),
	}
	if p.Color != stickies.ColorNone && c.props.Color != "" {
		props[c.props.Color] = richTextProperty(string(p.Color))
	}
	return props
}

// textProperty reads the plain text of a rich_text or title property.
func textProperty(p notionapi.Property) string {
	switch v := p.(type) {
	case *notionapi.RichTextProperty:
		return plainText(v.RichText)
	case notionapi.RichTextProperty:
		return plainText(v.RichText)
	case *notionapi.TitleProperty:
		return plainText(v.Title)
	case notionapi.TitleProperty:
		return plainText(v.Title)
	}
	return ""
}

func plainText(parts []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range parts {
		if rt.PlainText != "" {
			b.WriteString(rt.PlainText)
		} else if rt.Text != nil {
			b.WriteString(rt.Text.Content)
		}
	}
	return b.String()
}
