package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityagirishh/company-resource-consolidator/common"
	"github.com/adityagirishh/company-resource-consolidator/pipelines/video"
)

// videoRun writes a fake video and reports one slide of progress
func videoRun(seen chan<- common.PipelineConfig) RunFunc {
	return func(ctx context.Context, cfg common.PipelineConfig, progress video.ProgressFunc) (*RunResult, error) {
		if seen != nil {
			seen <- cfg
		}
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return nil, err
		}
		path := filepath.Join(cfg.OutputDir, "acme_placement_video.mp4")
		if err := os.WriteFile(path, []byte("video-bytes"), 0644); err != nil {
			return nil, err
		}
		progress(1, 1)
		return &RunResult{
			Company:   "Acme",
			OutputDir: cfg.OutputDir,
			VideoPath: path,
			Slides:    1,
			Metrics:   &video.MetricsSnapshot{TotalSlides: 1, ProcessedSlides: 1},
		}, nil
	}
}

func newTestServer(t *testing.T, run RunFunc) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(common.PipelineConfig{OutputDir: t.TempDir(), Template: "tech-forward"}, 2, run, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Shutdown(context.Background())
	})
	return s, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url+"/generate", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func submitJSON(t *testing.T, url string, body any) string {
	t.Helper()
	resp := postJSON(t, url, body)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, StatusQueued, out["status"])
	_, err := uuid.Parse(out["job_id"])
	require.NoError(t, err)
	return out["job_id"]
}

func waitForStatus(t *testing.T, url, id string) JobStatus {
	t.Helper()
	var status JobStatus
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/status?id=" + id)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		status = JobStatus{}
		if json.NewDecoder(resp.Body).Decode(&status) != nil {
			return false
		}
		return status.Status == StatusCompleted || status.Status == StatusFailed
	}, 5*time.Second, 10*time.Millisecond)
	return status
}

func TestServer_GenerateAndDownload(t *testing.T) {
	seen := make(chan common.PipelineConfig, 1)
	_, ts := newTestServer(t, videoRun(seen))

	id := submitJSON(t, ts.URL, map[string]any{
		"email":    "Acme is hiring interns",
		"template": "colorful",
		"phone":    "+1 555 0100",
		"speed":    1.25,
	})

	cfg := <-seen
	assert.Equal(t, "Acme is hiring interns", cfg.EmailText)
	assert.Equal(t, "colorful", cfg.Template)
	assert.Equal(t, "+1 555 0100", cfg.Phone)
	assert.Equal(t, 1.25, cfg.Speed)
	assert.True(t, strings.HasSuffix(cfg.OutputDir, "output_"+id))

	status := waitForStatus(t, ts.URL, id)
	assert.Equal(t, StatusCompleted, status.Status)
	assert.Equal(t, "Acme", status.Company)
	assert.Equal(t, 1, status.SlidesDone)
	assert.Equal(t, 1, status.SlidesTotal)
	require.NotNil(t, status.DoneAt)

	resp, err := http.Get(ts.URL + "/download?id=" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "video-bytes", string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "acme_placement_video.mp4")
}

func TestServer_FailedJob(t *testing.T) {
	_, ts := newTestServer(t, func(context.Context, common.PipelineConfig, video.ProgressFunc) (*RunResult, error) {
		return nil, errors.New("research: quota exceeded")
	})

	id := submitJSON(t, ts.URL, map[string]string{"email": "hello"})
	status := waitForStatus(t, ts.URL, id)
	assert.Equal(t, StatusFailed, status.Status)
	assert.Equal(t, "research: quota exceeded", status.Error)

	resp, err := http.Get(ts.URL + "/download?id=" + id)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestServer_MultipartUpload(t *testing.T) {
	seen := make(chan common.PipelineConfig, 1)
	_, ts := newTestServer(t, videoRun(seen))

	upload := func(name, content string) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("email", name)
		require.NoError(t, err)
		fw.Write([]byte(content))
		mw.WriteField("skip_video", "true")
		require.NoError(t, mw.Close())

		resp, err := http.Post(ts.URL+"/generate", mw.FormDataContentType(), &buf)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := upload("offer.txt", "Dear student, Acme invites you")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	cfg := <-seen
	assert.True(t, cfg.SkipVideo)
	assert.Empty(t, cfg.EmailText)
	assert.Equal(t, ".txt", filepath.Ext(cfg.EmailPath))
	data, err := os.ReadFile(cfg.EmailPath)
	require.NoError(t, err)
	assert.Equal(t, "Dear student, Acme invites you", string(data))

	resp = upload("offer.docx", "nope")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_BadRequests(t *testing.T) {
	_, ts := newTestServer(t, videoRun(nil))

	resp := postJSON(t, ts.URL, map[string]string{"email": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	r, err := http.Post(ts.URL+"/generate", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)

	tests := []struct {
		path string
		want int
	}{
		{"/generate", http.StatusMethodNotAllowed},
		{"/status", http.StatusBadRequest},
		{"/status?id=missing", http.StatusNotFound},
		{"/download?id=missing", http.StatusNotFound},
		{"/nope", http.StatusNotFound},
		{"/", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	_, ts := newTestServer(t, videoRun(nil))

	id := submitJSON(t, ts.URL, map[string]string{"email": "hello"})
	waitForStatus(t, ts.URL, id)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(2), health["workers"])

	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return strings.Contains(string(body), "crc_jobs_completed_total 1\n") &&
			strings.Contains(string(body), "crc_slides_processed_total 1\n")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_GenerateAfterShutdown(t *testing.T) {
	s, ts := newTestServer(t, videoRun(nil))
	s.Shutdown(context.Background())

	resp := postJSON(t, ts.URL, map[string]string{"email": "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), ErrPoolClosed.Error())
}
