package gateway

import (
	"context"
	"fmt"
	"net/http"

	"booking-portal/models"
)

func (c *Client) ListLocationPresets(ctx context.Context, token string) ([]models.LocationPreset, error) {
	var presets []models.LocationPreset
	if err := c.doJSON(ctx, "presets.locations.list", http.MethodGet, "/presets/locations", token, nil, &presets); err != nil {
		return nil, fmt.Errorf("ListLocationPresets: %w", err)
	}
	return presets, nil
}

func (c *Client) AddLocationPreset(ctx context.Context, token, name, mapURL string) (*models.LocationPreset, error) {
	body := map[string]string{"name": name, "map_url": mapURL}

	var preset models.LocationPreset
	if err := c.doJSON(ctx, "presets.locations.add", http.MethodPost, "/presets/locations", token, body, &preset); err != nil {
		return nil, fmt.Errorf("AddLocationPreset: %w", err)
	}
	return &preset, nil
}

func (c *Client) DeleteLocationPreset(ctx context.Context, token, id string) error {
	if err := c.doJSON(ctx, "presets.locations.delete", http.MethodDelete, "/presets/locations/"+id, token, nil, nil); err != nil {
		return fmt.Errorf("DeleteLocationPreset: %w", err)
	}
	return nil
}

func (c *Client) ListInstructorPresets(ctx context.Context, token string) ([]models.InstructorPreset, error) {
	var presets []models.InstructorPreset
	if err := c.doJSON(ctx, "presets.instructors.list", http.MethodGet, "/presets/instructors", token, nil, &presets); err != nil {
		return nil, fmt.Errorf("ListInstructorPresets: %w", err)
	}
	return presets, nil
}

func (c *Client) AddInstructorPreset(ctx context.Context, token, name, profileURL string) (*models.InstructorPreset, error) {
	body := map[string]string{"name": name, "profile_url": profileURL}

	var preset models.InstructorPreset
	if err := c.doJSON(ctx, "presets.instructors.add", http.MethodPost, "/presets/instructors", token, body, &preset); err != nil {
		return nil, fmt.Errorf("AddInstructorPreset: %w", err)
	}
	return &preset, nil
}

func (c *Client) DeleteInstructorPreset(ctx context.Context, token, id string) error {
	if err := c.doJSON(ctx, "presets.instructors.delete", http.MethodDelete, "/presets/instructors/"+id, token, nil, nil); err != nil {
		return fmt.Errorf("DeleteInstructorPreset: %w", err)
	}
	return nil
}
