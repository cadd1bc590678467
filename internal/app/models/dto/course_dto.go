package dto

import (
	applisting "github.com/yigit/svitlms/internal/app/listing"
	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/pkg/listing"
)

// ListQuery is the query string shared by every list endpoint. Filters that
// do not apply to a resource are ignored.
type ListQuery struct {
	Search     string `form:"search"`
	Sort       string `form:"sort"`
	Status     string `form:"status"`
	Department string `form:"department"`
	Type       string `form:"type"`
	Course     string `form:"course"`
	Starred    string `form:"starred"`
	Term       string `form:"term"`
	Scope      string `form:"scope" binding:"omitempty,oneof=enrolled teaching all"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Size       int    `form:"size" binding:"omitempty,min=1,max=100"`
}

// Query converts the request into a listing query.
func (q ListQuery) Query() listing.Query {
	filters := map[string]string{
		applisting.FilterStatus:     q.Status,
		applisting.FilterDepartment: q.Department,
		applisting.FilterType:       q.Type,
		applisting.FilterCourse:     q.Course,
		applisting.FilterStarred:    q.Starred,
		applisting.FilterTerm:       q.Term,
	}
	for k, v := range filters {
		if v == "" {
			delete(filters, k)
		}
	}
	return listing.Query{Search: q.Search, Filters: filters, Sort: q.Sort}
}

// CourseRequest creates or updates a course.
type CourseRequest struct {
	Code        string              `json:"code" binding:"required,coursecode"`
	Title       string              `json:"title" binding:"required,min=3,max=255"`
	Description string              `json:"description" binding:"max=2000"`
	Department  string              `json:"department" binding:"max=100"`
	Status      models.CourseStatus `json:"status" binding:"omitempty,oneof=active upcoming completed archived draft"`
	Visibility  string              `json:"visibility" binding:"omitempty,oneof=visible hidden"`
	Credits     int                 `json:"credits" binding:"min=0,max=10"`
	StartDate   string              `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate     string              `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	NextClass   string              `json:"nextClass" binding:"max=100"`
	CoverImage  string              `json:"coverImage" binding:"omitempty,url"`
}

// ModuleRequest creates or updates a course module.
type ModuleRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"max=2000"`
	Position    int    `json:"position" binding:"min=0"`
}

// AnnouncementRequest posts a course announcement.
type AnnouncementRequest struct {
	Title       string              `json:"title" binding:"required,max=255"`
	Content     string              `json:"content" binding:"required"`
	Important   bool                `json:"important"`
	Attachments []models.Attachment `json:"attachments"`
}

// CourseDetailResponse is a course with the caller's standing in it.
type CourseDetailResponse struct {
	*models.Course
	Enrolled bool `json:"enrolled"`
}
