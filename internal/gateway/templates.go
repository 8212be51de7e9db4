package gateway

import (
	"context"
	"fmt"
	"net/http"

	"booking-portal/models"
)

func (c *Client) ListTemplates(ctx context.Context, token string) ([]models.EventTemplate, error) {
	var templates []models.EventTemplate
	if err := c.doJSON(ctx, "templates.list", http.MethodGet, "/templates/", token, nil, &templates); err != nil {
		return nil, fmt.Errorf("ListTemplates: %w", err)
	}
	return templates, nil
}

func (c *Client) GetTemplate(ctx context.Context, token, id string) (*models.EventTemplate, error) {
	var template models.EventTemplate
	if err := c.doJSON(ctx, "templates.get", http.MethodGet, "/templates/"+id, token, nil, &template); err != nil {
		return nil, fmt.Errorf("GetTemplate: %w", err)
	}
	return &template, nil
}

func (c *Client) SaveTemplate(ctx context.Context, token, name string, details *models.TemplateDetails) (*models.EventTemplate, error) {
	body := map[string]any{
		"name":          name,
		"event_details": details,
	}

	var template models.EventTemplate
	if err := c.doJSON(ctx, "templates.create", http.MethodPost, "/templates/", token, body, &template); err != nil {
		return nil, fmt.Errorf("SaveTemplate: %w", err)
	}
	return &template, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, token, id string) error {
	if err := c.doJSON(ctx, "templates.delete", http.MethodDelete, "/templates/"+id, token, nil, nil); err != nil {
		return fmt.Errorf("DeleteTemplate: %w", err)
	}
	return nil
}
