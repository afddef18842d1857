package api

import (
	"context"
	"net/http"

	"notesportal/internal/session"
)

type AuthResult struct {
	User  session.User `json:"user"`
	Token string       `json:"token"`
}

type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Semester   int    `json:"semester"`
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	var out AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", nil, req, &out); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}
