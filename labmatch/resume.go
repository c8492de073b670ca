package labmatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// maxResumeBytes caps the upload; resumes are a few pages at most.
const maxResumeBytes = 10 << 20

// ValidateResume checks that data is a readable PDF and returns its page count.
func ValidateResume(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("resume is empty")
	}
	if len(data) > maxResumeBytes {
		return 0, fmt.Errorf("resume is larger than %d MB", maxResumeBytes>>20)
	}
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	if ctx.PageCount == 0 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	return ctx.PageCount, nil
}

// ParseResume uploads a PDF resume and returns the backend's summary of it.
func (c *Client) ParseResume(ctx context.Context, filename string, r io.Reader) (ResumeSummary, error) {
	var out ResumeSummary
	data, err := io.ReadAll(io.LimitReader(r, maxResumeBytes+1))
	if err != nil {
		return out, fmt.Errorf("read resume: %w", err)
	}
	if len(data) == 0 {
		return out, fmt.Errorf("resume is empty")
	}
	if len(data) > maxResumeBytes {
		return out, fmt.Errorf("resume is larger than %d MB", maxResumeBytes>>20)
	}
	// The backend has the final say on what it can read.
	if pages, err := ValidateResume(data); err != nil {
		c.logf("resume %s did not validate locally, uploading anyway: %v", filepath.Base(filename), err)
	} else {
		c.logf("uploading resume %s (%d pages)", filepath.Base(filename), pages)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, resumeFilename(filename)))
	hdr.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return out, fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return out, fmt.Errorf("write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return out, fmt.Errorf("close form: %w", err)
	}
	err = c.doJSON(ctx, "parse resume", http.MethodPost, "/parse-resume", &body, mw.FormDataContentType(), &out)
	out.Summary = strings.TrimSpace(out.Summary)
	return out, err
}

func resumeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "resume.pdf"
	}
	return base
}
