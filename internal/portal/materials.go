package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/yigit/svitlms/internal/app/models"
	"github.com/yigit/svitlms/internal/app/models/dto"
	"github.com/yigit/svitlms/internal/pkg/apiclient"
)

// ErrDownloadFailed is returned when the server refuses a download.
var ErrDownloadFailed = errors.New("Download failed")

// MaterialService reads, uploads and tracks study materials.
type MaterialService struct {
	api  *apiclient.Client
	http *http.Client
}

// UploadRequest is the metadata sent with an uploaded file.
type UploadRequest struct {
	Title       string
	Description string
	CourseID    int64
	ModuleID    int64
	Type        string
}

func (r UploadRequest) fields() map[string]string {
	fields := map[string]string{
		"title":       r.Title,
		"description": r.Description,
		"courseId":    strconv.FormatInt(r.CourseID, 10),
		"type":        r.Type,
	}
	if r.ModuleID > 0 {
		fields["moduleId"] = strconv.FormatInt(r.ModuleID, 10)
	}
	return fields
}

// Download is the outcome of a download request: a link to fetch the file
// from, or the file itself.
type Download struct {
	URL  string
	Data []byte
}

func materialPath(materialID int64) string {
	return "/materials/" + pathID(materialID)
}

// List returns one page of materials. Recognised params are search, type,
// course, starred, sort, page and size.
func (s *MaterialService) List(ctx context.Context, params Params) (*Page[models.Material], error) {
	return getPage[models.Material](ctx, s.api, "/materials", params)
}

func (s *MaterialService) Get(ctx context.Context, materialID int64) (*models.Material, error) {
	return getData[*models.Material](ctx, s.api, materialPath(materialID))
}

// Upload sends file with its metadata. onProgress receives whole
// percentages of the request body sent.
func (s *MaterialService) Upload(ctx context.Context, file apiclient.Upload, req UploadRequest, onProgress func(int)) (*models.Material, error) {
	var env Envelope[*models.Material]
	if err := s.api.UploadFile(ctx, "/materials/upload", file, req.fields(), onProgress, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (s *MaterialService) Update(ctx context.Context, materialID int64, req dto.UpdateMaterialRequest) (*models.Material, error) {
	return send[models.Material](ctx, s.api, http.MethodPut, materialPath(materialID), req)
}

func (s *MaterialService) Delete(ctx context.Context, materialID int64) error {
	_, err := acknowledge(ctx, s.api, http.MethodDelete, materialPath(materialID), nil)
	return err
}

// Download asks the server for a material. A JSON body with a url yields a
// link; any other body is returned as the file contents.
func (s *MaterialService) Download(ctx context.Context, materialID int64) (*Download, error) {
	var raw []byte
	if err := s.api.Get(ctx, materialPath(materialID)+"/download", &raw); err != nil {
		if apiclient.StatusOf(err) != 0 {
			return nil, ErrDownloadFailed
		}
		return nil, err
	}

	var link dto.DownloadResponse
	if json.Unmarshal(raw, &link) == nil && link.URL != "" {
		return &Download{URL: link.URL}, nil
	}
	return &Download{Data: raw}, nil
}

// Save writes a download to w, fetching the file when d is a link.
func (s *MaterialService) Save(ctx context.Context, d *Download, w io.Writer) (int64, error) {
	if d.URL == "" {
		n, err := w.Write(d.Data)
		return int64(n), err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("build download request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return 0, &apiclient.NetworkError{Message: "GET " + d.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, ErrDownloadFailed
	}
	return io.Copy(w, resp.Body)
}

// Related lists other materials of the same course, most downloaded first.
func (s *MaterialService) Related(ctx context.Context, materialID int64) ([]models.Material, error) {
	return getData[[]models.Material](ctx, s.api, materialPath(materialID)+"/related")
}

func (s *MaterialService) MarkViewed(ctx context.Context, materialID int64) error {
	_, err := acknowledge(ctx, s.api, http.MethodPost, materialPath(materialID)+"/view", nil)
	return err
}

// UpdateProgress records how far, 0 to 100, the user got through a material.
func (s *MaterialService) UpdateProgress(ctx context.Context, materialID int64, progress int) error {
	_, err := acknowledge(ctx, s.api, http.MethodPost, materialPath(materialID)+"/progress", dto.MaterialProgressRequest{Progress: progress})
	return err
}

// ToggleStar flips the caller's star and returns the new state.
func (s *MaterialService) ToggleStar(ctx context.Context, materialID int64) (bool, error) {
	star, err := send[dto.StarResponse](ctx, s.api, http.MethodPost, materialPath(materialID)+"/star", nil)
	if err != nil {
		return false, err
	}
	return star != nil && star.Starred, nil
}

func (s *MaterialService) Starred(ctx context.Context) ([]models.Material, error) {
	return getData[[]models.Material](ctx, s.api, "/materials/starred")
}

func (s *MaterialService) ReportIssue(ctx context.Context, materialID int64, req dto.ReportIssueRequest) (*models.MaterialIssue, error) {
	return send[models.MaterialIssue](ctx, s.api, http.MethodPost, materialPath(materialID)+"/issue", req)
}
