package dto

import (
	"strings"
	"time"

	"aptcare/backend/internal/model"
)

// ── actor ──

// Caller identity of the user performing an operation, taken from the access token
type Caller struct {
	UserID string
	Role   model.Role
}

// IsResident caller is a resident
func (c Caller) IsResident() bool { return c.Role == model.RoleResident }

// HasRole caller holds one of roles
func (c Caller) HasRole(roles ...model.Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// ── uploads ──

// FileUpload file received from a multipart form
type FileUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// IsPDF the upload declares a PDF content type
func (f *FileUpload) IsPDF() bool {
	if f == nil {
		return false
	}
	ct := strings.ToLower(strings.TrimSpace(f.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct == "application/pdf"
}

// IsImage the upload declares an image content type
func (f *FileUpload) IsImage() bool {
	return f != nil && strings.HasPrefix(strings.ToLower(f.ContentType), "image/")
}

// MediaResponse attachment
type MediaResponse struct {
	ID          string `json:"id"`
	FilePath    string `json:"file_path"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// ── paging ──

// PaginationRequest common paging parameters
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage page number with default
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize page size with default
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset row offset of the page
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// DateRange optional inclusive creation window
type DateRange struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to"   time_format:"2006-01-02"`
}

// Inverted from is after to
func (r DateRange) Inverted() bool {
	return r.From != nil && r.To != nil && r.From.After(*r.To)
}
