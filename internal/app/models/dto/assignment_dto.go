package dto

// SubmitAssignmentRequest hands in an assignment.
type SubmitAssignmentRequest struct {
	Content string `json:"content" binding:"max=10000"`
	FileURL string `json:"fileUrl" binding:"omitempty,url"`
}
