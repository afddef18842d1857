package api

import (
	"context"
	"net/http"

	"notesportal/internal/session"
)

type Stats struct {
	TotalNotes     int `json:"totalNotes"`
	TotalStudents  int `json:"totalStudents"`
	TotalAdmins    int `json:"totalAdmins"`
	TotalDownloads int `json:"totalDownloads"`
}

func (c *Client) AdminStats(ctx context.Context) (Stats, error) {
	var out struct {
		Stats Stats `json:"stats"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/admin/stats", nil, nil, &out); err != nil {
		return Stats{}, err
	}
	return out.Stats, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]session.User, error) {
	var out struct {
		Users []session.User `json:"users"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/admin/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/admin/users/"+userID, nil, nil, nil)
}
