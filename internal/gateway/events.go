package gateway

import (
	"context"
	"fmt"
	"net/http"

	"booking-portal/models"
)

func (c *Client) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.doJSON(ctx, "events.list", http.MethodGet, "/events/", "", nil, &events); err != nil {
		return nil, fmt.Errorf("ListEvents: %w", err)
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := c.doJSON(ctx, "events.get", http.MethodGet, "/events/"+id, "", nil, &event); err != nil {
		return nil, fmt.Errorf("GetEvent: %w", err)
	}
	return &event, nil
}

func (c *Client) CreateEvent(ctx context.Context, token string, event *models.Event) (*models.Event, error) {
	var created models.Event
	if err := c.doJSON(ctx, "events.create", http.MethodPost, "/events/", token, event, &created); err != nil {
		return nil, fmt.Errorf("CreateEvent: %w", err)
	}
	return &created, nil
}

func (c *Client) UpdateEvent(ctx context.Context, token, id string, event *models.Event) (*models.Event, error) {
	var updated models.Event
	if err := c.doJSON(ctx, "events.update", http.MethodPut, "/events/"+id, token, event, &updated); err != nil {
		return nil, fmt.Errorf("UpdateEvent: %w", err)
	}
	return &updated, nil
}

// CancelEvent terminally marks an event cancelled; the platform keeps
// the record.
func (c *Client) CancelEvent(ctx context.Context, token, id, reason string) error {
	body := map[string]string{"reason": reason}
	if err := c.doJSON(ctx, "events.cancel", http.MethodPost, "/events/"+id+"/cancel", token, body, nil); err != nil {
		return fmt.Errorf("CancelEvent: %w", err)
	}
	return nil
}
