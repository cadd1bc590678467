package dto

import (
	"time"

	"github.com/yigit/svitlms/internal/pkg/listing"
)

// APIResponse is the envelope of every resource endpoint.
type APIResponse struct {
	Success    bool            `json:"success" example:"true"`
	Message    string          `json:"message,omitempty" example:"Operation completed successfully"`
	Data       interface{}     `json:"data,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
	Error      *ErrorDetail    `json:"error,omitempty"`
	Timestamp  time.Time       `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// PaginationInfo describes the page returned by a list endpoint.
type PaginationInfo struct {
	CurrentPage int `json:"currentPage" example:"1"`
	TotalPages  int `json:"totalPages" example:"3"`
	PageSize    int `json:"pageSize" example:"10"`
	TotalItems  int `json:"totalItems" example:"27"`
}

// NewPaginationInfo converts a listing page description.
func NewPaginationInfo(p listing.PageInfo) *PaginationInfo {
	return &PaginationInfo{
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		PageSize:    p.PageSize,
		TotalItems:  p.TotalItems,
	}
}

// NewSuccessResponse wraps data in a successful envelope.
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewPaginatedResponse wraps one page of a listing.
func NewPaginatedResponse(data interface{}, page listing.PageInfo) APIResponse {
	resp := NewSuccessResponse(data, "")
	resp.Pagination = NewPaginationInfo(page)
	return resp
}

// SuccessResponse is the body of endpoints that only acknowledge.
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
}
