package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// resources are emptied in order. Users go first so their deletion cascades
// do not touch tasks that are about to be deleted anyway.
var resources = []string{"users", "tasks"}

// cleaner deletes every document of each resource through the API.
type cleaner struct {
	baseURL string
	client  *http.Client
	workers int
	logger  *slog.Logger
}

func newCleaner(baseURL string, client *http.Client, workers int, logger *slog.Logger) *cleaner {
	return &cleaner{baseURL: baseURL, client: client, workers: workers, logger: logger}
}

// Run empties every resource.
func (c *cleaner) Run(ctx context.Context) error {
	for _, resource := range resources {
		n, err := c.deleteAll(ctx, resource)
		if err != nil {
			return err
		}
		c.logger.Info("resource emptied", slog.String("resource", resource), slog.Int("deleted", n))
	}
	return nil
}

// deleteAll lists and deletes ids until a listing comes back empty. A round
// in which nothing could be deleted is an error.
func (c *cleaner) deleteAll(ctx context.Context, resource string) (int, error) {
	total := 0
	for {
		ids, err := c.listIDs(ctx, resource)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}

		deleted := runPool(ctx, c.workers, ids, func(ctx context.Context, id string) error {
			err := c.delete(ctx, resource, id)
			if err != nil {
				c.logger.Warn("delete failed",
					slog.String("resource", resource),
					slog.String("id", id),
					slog.String("error", err.Error()))
			}
			return err
		})
		if err := ctx.Err(); err != nil {
			return total + deleted, err
		}
		if deleted == 0 {
			return total, fmt.Errorf("could not delete any of %d %s", len(ids), resource)
		}
		total += deleted
		c.logger.Debug("deleted batch", slog.String("resource", resource), slog.Int("count", deleted))
	}
}

func (c *cleaner) listIDs(ctx context.Context, resource string) ([]string, error) {
	u := fmt.Sprintf("%s/api/%s?select=%s", c.baseURL, resource, url.QueryEscape(`{"_id":1}`))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", resource, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list %s: status %d", resource, resp.StatusCode)
	}

	var body struct {
		Data []struct {
			ID string `json:"_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode %s listing: %w", resource, err)
	}

	ids := make([]string, 0, len(body.Data))
	for _, item := range body.Data {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

func (c *cleaner) delete(ctx context.Context, resource, id string) error {
	u := fmt.Sprintf("%s/api/%s/%s", c.baseURL, resource, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("status %d", resp.StatusCode)
	}
}
