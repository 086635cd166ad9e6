package http

import (
	"time"

	"github.com/nekogravitycat/wellness-booking-backend/internal/clienterror"
)

type ReportBody struct {
	Type      string         `json:"error_type" binding:"max=128"`
	Message   string         `json:"error_message" binding:"required,max=4096"`
	Stack     *string        `json:"error_stack" binding:"omitempty,max=16384"`
	UserCode  *string        `json:"user_code" binding:"omitempty,max=64"`
	PageURL   *string        `json:"page_url" binding:"omitempty,max=2048"`
	UserAgent *string        `json:"user_agent" binding:"omitempty,max=512"`
	Extra     map[string]any `json:"extra_data"`
}

type ListQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

type ClientErrorResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"error_type"`
	Message   string         `json:"error_message"`
	Stack     *string        `json:"error_stack,omitempty"`
	UserCode  *string        `json:"user_code"`
	PageURL   *string        `json:"page_url,omitempty"`
	UserAgent *string        `json:"user_agent,omitempty"`
	Extra     map[string]any `json:"extra_data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewClientErrorResponse(e *clienterror.ClientError) ClientErrorResponse {
	return ClientErrorResponse{
		ID:        e.ID,
		Type:      e.Type,
		Message:   e.Message,
		Stack:     e.Stack,
		UserCode:  e.UserCode,
		PageURL:   e.PageURL,
		UserAgent: e.UserAgent,
		Extra:     e.Extra,
		CreatedAt: e.CreatedAt,
	}
}
