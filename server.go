package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adityagirishh/company-resource-consolidator/common"
	"github.com/adityagirishh/company-resource-consolidator/pipelines/video"
)

// RunFunc executes one pipeline run for a job
type RunFunc func(ctx context.Context, cfg common.PipelineConfig, progress video.ProgressFunc) (*RunResult, error)

var (
	ErrQueueFull  = errors.New("job queue is full")
	ErrPoolClosed = errors.New("worker pool is shut down")
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type JobStatus struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Company     string     `json:"company,omitempty"`
	OutputDir   string     `json:"output_dir,omitempty"`
	SlidesDone  int        `json:"slides_done"`
	SlidesTotal int        `json:"slides_total"`
	Result      *RunResult `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	DoneAt      *time.Time `json:"done_at,omitempty"`
}

type Job struct {
	ID     string
	Config common.PipelineConfig
}

type WorkerPool struct {
	jobs       chan *Job
	results    map[string]*JobStatus
	mu         sync.RWMutex
	wg         sync.WaitGroup
	numWorkers int
	run        RunFunc
	history    *common.History
	closed     bool // guarded by mu; jobs is closed once set

	ctx    context.Context
	cancel context.CancelFunc

	completed atomic.Int64
	failed    atomic.Int64
	slides    atomic.Int64
	skipped   atomic.Int64
}

func NewWorkerPool(numWorkers, bufferSize int, run RunFunc, history *common.History) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		jobs:       make(chan *Job, bufferSize),
		results:    make(map[string]*JobStatus),
		numWorkers: numWorkers,
		run:        run,
		history:    history,
		ctx:        ctx,
		cancel:     cancel,
	}
	pool.Start()
	return pool
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.Printf("[SERVER] Started %d workers", p.numWorkers)
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		log.Printf("[Worker %d] Processing job %s", id, job.ID)
		p.processJob(job)
	}
	log.Printf("[Worker %d] Shutting down", id)
}

func (p *WorkerPool) processJob(job *Job) {
	p.update(job.ID, func(s *JobStatus) { s.Status = StatusProcessing })

	started := time.Now()
	progress := func(done, total int) {
		p.update(job.ID, func(s *JobStatus) {
			s.SlidesDone = done
			s.SlidesTotal = total
		})
	}
	res, err := p.run(p.ctx, job.Config, progress)
	recordRun(p.ctx, p.history, job.ID, job.Config, started, res, err)

	if res != nil && res.Metrics != nil {
		p.slides.Add(res.Metrics.ProcessedSlides)
		p.skipped.Add(res.Metrics.FailedSlides)
	}

	now := time.Now()
	p.update(job.ID, func(s *JobStatus) {
		s.Result = res
		s.DoneAt = &now
		if res != nil {
			s.Company = res.Company
		}
		if err != nil {
			s.Status = StatusFailed
			s.Error = err.Error()
		} else {
			s.Status = StatusCompleted
		}
	})

	if err != nil {
		p.failed.Add(1)
		log.Printf("[Job %s] Failed: %v", job.ID, err)
	} else {
		p.completed.Add(1)
		log.Printf("[Job %s] Completed successfully", job.ID)
	}
}

func (p *WorkerPool) update(jobID string, fn func(*JobStatus)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if job, exists := p.results[jobID]; exists {
		fn(job)
	}
}

// Submit queues a job without blocking. It fails once the pool is shut down.
func (p *WorkerPool) Submit(job *Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}

	// workers take mu before touching results, so registering after the
	// send is still seen first
	select {
	case p.jobs <- job:
	default:
		return ErrQueueFull
	}
	p.results[job.ID] = &JobStatus{
		ID:        job.ID,
		Status:    StatusQueued,
		OutputDir: job.Config.OutputDir,
		StartedAt: time.Now(),
	}
	return nil
}

// GetStatus returns a copy of the job's status
func (p *WorkerPool) GetStatus(jobID string) (JobStatus, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	status, ok := p.results[jobID]
	if !ok {
		return JobStatus{}, false
	}
	return *status, true
}

// Shutdown stops accepting jobs and waits for running ones. Jobs still
// running when ctx expires are cancelled.
func (p *WorkerPool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		p.cancel()
		<-done
	}
	p.cancel()
}

type generateRequest struct {
	Email     string  `json:"email"`
	Template  string  `json:"template,omitempty"`
	Language  string  `json:"language,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	SkipVideo bool    `json:"skip_video,omitempty"`
}

type Server struct {
	pool      *WorkerPool
	base      common.PipelineConfig
	uploadDir string
}

func NewServer(base common.PipelineConfig, numWorkers int, run RunFunc, history *common.History) *Server {
	uploadDir := filepath.Join(base.OutputDir, "uploads")
	os.MkdirAll(uploadDir, 0755)

	return &Server{
		pool:      NewWorkerPool(numWorkers, 100, run, history),
		base:      base,
		uploadDir: uploadDir,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/generate", s.handleGenerate)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/download", s.handleDownload)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/", s.catchAllHandler)
	return mux
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := NewRunID()
	cfg := s.base
	cfg.OutputDir = filepath.Join(s.base.OutputDir, "output_"+jobID)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		path, err := s.saveUpload(r, jobID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cfg.EmailPath = path
		applyFormOptions(&cfg, r)
	} else {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Email) == "" {
			http.Error(w, "email is required", http.StatusBadRequest)
			return
		}
		cfg.EmailText = req.Email
		cfg.EmailPath = ""
		applyRequestOptions(&cfg, req)
	}

	if err := s.pool.Submit(&Job{ID: jobID, Config: cfg}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"job_id":  jobID,
		"status":  StatusQueued,
		"message": "E-mail queued for processing",
	})
}

var uploadExts = map[string]bool{".pdf": true, ".txt": true, ".eml": true}

func (s *Server) saveUpload(r *http.Request, jobID string) (string, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return "", fmt.Errorf("invalid form: %w", err)
	}
	file, header, err := r.FormFile("email")
	if err != nil {
		return "", fmt.Errorf("missing 'email' file field: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !uploadExts[ext] {
		return "", fmt.Errorf("only .pdf, .txt and .eml files are accepted")
	}

	path := filepath.Join(s.uploadDir, jobID+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return path, nil
}

func applyRequestOptions(cfg *common.PipelineConfig, req generateRequest) {
	if req.Template != "" {
		cfg.Template = req.Template
	}
	if req.Language != "" {
		cfg.Language = req.Language
	}
	if req.Speed > 0 {
		cfg.Speed = req.Speed
	}
	if req.Phone != "" {
		cfg.Phone = req.Phone
	}
	cfg.SkipVideo = cfg.SkipVideo || req.SkipVideo
}

func applyFormOptions(cfg *common.PipelineConfig, r *http.Request) {
	req := generateRequest{
		Template:  r.FormValue("template"),
		Language:  r.FormValue("language"),
		Phone:     r.FormValue("phone"),
		SkipVideo: r.FormValue("skip_video") == "true",
	}
	fmt.Sscanf(r.FormValue("speed"), "%g", &req.Speed)
	applyRequestOptions(cfg, req)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		http.Error(w, "Missing job id", http.StatusBadRequest)
		return
	}

	status, ok := s.pool.GetStatus(jobID)
	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("id")
	status, ok := s.pool.GetStatus(jobID)
	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if status.Status != StatusCompleted || status.Result == nil {
		http.Error(w, "Job is "+status.Status, http.StatusConflict)
		return
	}

	path := status.Result.VideoPath
	if r.URL.Query().Get("file") == "dossier" || path == "" {
		path = status.Result.DossierPath
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "ok",
		"workers":     s.pool.numWorkers,
		"goroutines":  runtime.NumGoroutine(),
		"queued_jobs": len(s.pool.jobs),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "crc_jobs_queued %d\n", len(s.pool.jobs))
	fmt.Fprintf(w, "crc_jobs_completed_total %d\n", s.pool.completed.Load())
	fmt.Fprintf(w, "crc_jobs_failed_total %d\n", s.pool.failed.Load())
	fmt.Fprintf(w, "crc_slides_processed_total %d\n", s.pool.slides.Load())
	fmt.Fprintf(w, "crc_slides_skipped_total %d\n", s.pool.skipped.Load())
	fmt.Fprintf(w, "crc_workers %d\n", s.pool.numWorkers)
	fmt.Fprintf(w, "crc_goroutines %d\n", runtime.NumGoroutine())
}

func (s *Server) catchAllHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message":  "Company Resource Consolidator",
		"generate": "POST /generate with JSON {\"email\": \"...\"} or multipart field 'email' (.pdf, .txt, .eml)",
		"status":   "GET /status?id=<job_id>",
		"download": "GET /download?id=<job_id>[&file=dossier]",
		"health":   "GET /health",
		"metrics":  "GET /metrics",
	})
}

func (s *Server) Shutdown(ctx context.Context) {
	s.pool.Shutdown(ctx)
}

// StartServer serves until ctx is cancelled, then drains the worker pool
func StartServer(ctx context.Context, addr string, numWorkers int, base common.PipelineConfig, run RunFunc, history *common.History) error {
	server := NewServer(base, numWorkers, run, history)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[SERVER] Listening on %s with %d workers", addr, numWorkers)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		server.Shutdown(context.Background())
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("[SERVER] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[SERVER] HTTP shutdown: %v", err)
	}
	server.Shutdown(shutdownCtx)
	return nil
}
