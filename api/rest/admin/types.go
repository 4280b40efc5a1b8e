package admin

import "context"

type QuotaResetter interface {
	Reset(ctx context.Context, userID string) error
}

type ResetResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}
