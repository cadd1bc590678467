package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"sync"
)

// Upload messages surfaced to users.
const (
	UploadFailedMessage  = "Upload failed"
	UploadNetworkMessage = "Network error during upload"
)

// Upload is a file to send as the "file" multipart part.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UploadFile posts file and metadata as multipart/form-data. onProgress, when
// set, receives rounded percentages of the request body sent, each value once
// and in increasing order. Only the bearer header is set; the multipart
// content type is chosen by the encoder.
func (c *Client) UploadFile(ctx context.Context, endpoint string, file Upload, metadata map[string]string, onProgress func(int), out interface{}) error {
	body, contentType, err := encodeMultipart(file, metadata)
	if err != nil {
		return fmt.Errorf("encode upload: %w", err)
	}

	var reader io.Reader = bytes.NewReader(body)
	if onProgress != nil {
		reader = &progressReader{r: reader, total: int64(len(body)), report: onProgress, last: -1}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", contentType)
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("endpoint", endpoint).Msg("Upload request failed")
		return &NetworkError{Message: UploadNetworkMessage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Message: UploadNetworkMessage, Err: err}
	}

	if !isSuccess(resp.StatusCode) {
		var data map[string]interface{}
		if json.Unmarshal(raw, &data) != nil {
			data = nil
		}
		return &APIError{
			Status:  resp.StatusCode,
			Message: messageFrom(data, UploadFailedMessage),
			Data:    data,
		}
	}

	if out == nil {
		return nil
	}
	if json.Valid(raw) {
		if assignRaw(out, raw) == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode upload response: %w", err)
		}
		return nil
	}
	if w, isWriter := out.(io.Writer); isWriter {
		_, err := w.Write(raw)
		return err
	}
	_ = assignRaw(out, raw)
	return nil
}

func encodeMultipart(file Upload, metadata map[string]string) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if file.Body != nil {
		if _, err := io.Copy(part, file.Body); err != nil {
			return nil, "", err
		}
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, metadata[k]); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

// progressReader reports the share of the body read so far.
type progressReader struct {
	r      io.Reader
	total  int64
	report func(int)

	mu   sync.Mutex
	sent int64
	last int
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.mu.Lock()
		p.sent += int64(n)
		pct := int(math.Round(float64(p.sent) / float64(p.total) * 100))
		emit := pct > p.last
		if emit {
			p.last = pct
		}
		p.mu.Unlock()
		if emit {
			p.report(pct)
		}
	}
	return n, err
}
