// Package sheets talks to a Google spreadsheet through a service account.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Client is a spreadsheet reachable with a service-account credentials file.
type Client struct {
	srv *gsheets.Service
	id  string
}

// New builds a client for one spreadsheet.
func New(ctx context.Context, spreadsheetID, credentialsFile string) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}
	srv, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{srv: srv, id: spreadsheetID}, nil
}

func (c *Client) Read(ctx context.Context, rng string) ([][]string, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.id, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rng, err)
	}
	return fromValues(resp.Values), nil
}

func (c *Client) Write(ctx context.Context, rng string, rows [][]string) error {
	_, err := c.srv.Spreadsheets.Values.
		Update(c.id, rng, &gsheets.ValueRange{Values: toValues(rows)}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) Append(ctx context.Context, rng string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := c.srv.Spreadsheets.Values.
		Append(c.id, rng, &gsheets.ValueRange{Values: toValues(rows)}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	return nil
}

func (c *Client) Title(ctx context.Context) (string, error) {
	ss, err := c.srv.Spreadsheets.Get(c.id).Fields("properties.title").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get spreadsheet: %w", err)
	}
	if ss.Properties == nil {
		return "", nil
	}
	return ss.Properties.Title, nil
}

func (c *Client) URL() string {
	return URL(c.id)
}

// URL is the browser link of a spreadsheet.
func URL(spreadsheetID string) string {
	return "https://docs.google.com/spreadsheets/d/" + spreadsheetID
}

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		out = append(out, cells)
	}
	return out
}

func fromValues(values [][]interface{}) [][]string {
	out := make([][]string, 0, len(values))
	for _, row := range values {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				continue
			}
			if s, ok := v.(string); ok {
				cells[i] = s
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		out = append(out, cells)
	}
	return out
}
