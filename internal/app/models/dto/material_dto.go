package dto

// UploadMaterialForm is the multipart form of a material upload. The file
// travels in the "file" part.
type UploadMaterialForm struct {
	Title       string `form:"title"`
	Description string `form:"description" binding:"max=2000"`
	CourseID    int64  `form:"courseId" binding:"required,min=1"`
	ModuleID    int64  `form:"moduleId" binding:"min=0"`
	Type        string `form:"type" binding:"omitempty,oneof=pdf video document presentation audio other"`
}

// UpdateMaterialRequest edits a material's metadata.
type UpdateMaterialRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"max=2000"`
	Type        string `json:"type" binding:"required,oneof=pdf video document presentation audio other"`
	CourseID    int64  `json:"courseId" binding:"required,min=1"`
	ModuleID    int64  `json:"moduleId" binding:"min=0"`
	Duration    string `json:"duration" binding:"max=20"`
}

// MaterialProgressRequest records how far the user got.
type MaterialProgressRequest struct {
	Progress int `json:"progress" binding:"min=0,max=100"`
}

// ReportIssueRequest files a problem against a material.
type ReportIssueRequest struct {
	IssueType   string `json:"issueType" binding:"required,max=50"`
	Description string `json:"description" binding:"max=2000"`
}

// DownloadResponse points the client at a material's file.
type DownloadResponse struct {
	URL string `json:"url"`
}

// StarResponse reports the caller's star after a toggle.
type StarResponse struct {
	Starred bool `json:"starred"`
}
