package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mbari-org/dettrackd/internal/apierr"
	"github.com/mbari-org/dettrackd/internal/catalog"
	"github.com/mbari-org/dettrackd/internal/domain"
	"github.com/mbari-org/dettrackd/internal/logger"
	"github.com/mbari-org/dettrackd/internal/store"
	"github.com/mbari-org/dettrackd/internal/videoprobe"
	"github.com/mbari-org/dettrackd/internal/wordlist"
)

// writeError renders an apierr taxonomy error as the JSON body shape every
// ControlPlane error response uses: {"message": "..."}.
func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"message": err.Error()})
}

// Store is the subset of internal/store.Store the control plane needs.
// Defined here so handler tests can supply a fake without pulling in
// sqlite.
type Store interface {
	InsertJob(ctx context.Context, j domain.Job, videoURL string) (int64, error)
	JobByID(ctx context.Context, id int64) (domain.Job, []domain.Media, error)
	JobByName(ctx context.Context, name string) (domain.Job, []domain.Media, error)
	ListJobs(ctx context.Context) ([]store.JobSummary, error)
	Ping(ctx context.Context) error
}

// Handlers implements the five ControlPlane operations of §4.1.
type Handlers struct {
	store   Store
	catalog *catalog.Catalog
	prober  *videoprobe.Prober
	engine  string
	version string
	log     logger.Interface
}

// NewHandlers wires the ControlPlane's dependencies.
func NewHandlers(store Store, cat *catalog.Catalog, prober *videoprobe.Prober, engine, version string, log logger.Interface) *Handlers {
	return &Handlers{store: store, catalog: cat, prober: prober, engine: engine, version: version, log: log}
}

// Register mounts every route on router.
func (h *Handlers) Register(router *gin.Engine) {
	router.GET("/", h.liveness)
	router.GET("/health", h.health)
	router.GET("/models", h.models)
	router.POST("/predict", h.predict)
	router.GET("/status_by_id/:id", h.statusByID)
	router.GET("/status_by_name/:name", h.statusByName)
	router.GET("/status", h.statusAll)
}

func (h *Handlers) liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "dettrackd " + h.version})
}

// health refreshes the catalog as a side effect and reports 503 when the
// catalog is empty or the store is unreachable, per §4.1.
func (h *Handlers) health(c *gin.Context) {
	if err := h.catalog.Refresh(c.Request.Context()); err != nil {
		h.log.Warn("health: catalog refresh failed", "error", err)
	}
	if h.catalog.Empty() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "no models available"})
		return
	}
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "job store unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

func (h *Handlers) models(c *gin.Context) {
	if err := h.catalog.Refresh(c.Request.Context()); err != nil {
		h.log.Warn("models: catalog refresh failed", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"model": h.catalog.Names()})
}

type predictRequest struct {
	Model    string         `json:"model" binding:"required"`
	Video    string         `json:"video" binding:"required"`
	Metadata map[string]any `json:"metadata"`
	Args     string         `json:"args"`
	Email    string         `json:"email"`
}

func (h *Handlers) predict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx := c.Request.Context()

	if err := h.catalog.Refresh(ctx); err != nil {
		h.log.Warn("predict: catalog refresh failed", "error", err)
	}
	modelURI, ok := h.catalog.Lookup(req.Model)
	if !ok {
		writeError(c, http.StatusNotFound, apierr.NewNotFound(req.Model))
		return
	}

	if !h.prober.Reachable(ctx, req.Video) {
		writeError(c, http.StatusNotFound, apierr.NewNotFound(req.Video))
		return
	}

	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			writeError(c, http.StatusBadRequest, apierr.NewInvalidInput("invalid email: %s", req.Email))
			return
		}
	}

	adj, state := wordlist.Draw()
	name := req.Model + " " + videoStem(req.Video) + " " + adj + " " + state

	metadataBlob, err := domain.EncodeMetadata(req.Metadata)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid metadata"})
		return
	}

	job := domain.Job{
		Name:     name,
		Engine:   h.engine,
		Model:    modelURI,
		Args:     req.Args,
		Metadata: metadataBlob,
		Kind:     domain.DockerJobKind,
	}

	id, err := h.store.InsertJob(ctx, job, req.Video)
	if err != nil {
		h.log.Error("predict: insert job failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "queued", "job_id": id, "job_name": name})
}

// statusPayload is the shape returned by status_by_id/status_by_name. The
// result-enrichment fields (§4.1) are surfaced at the top level, separate
// from caller-supplied metadata, even though JobStore merges them into the
// same underlying blob (§3 "Metadata blob encoding").
type statusPayload struct {
	ID                    int64              `json:"id"`
	Name                  string             `json:"name"`
	Status                domain.MediaStatus `json:"status"`
	CreatedAt             string             `json:"created_at"`
	UpdatedAt             string             `json:"updated_at"`
	Video                 string             `json:"video"`
	Model                 string             `json:"model"`
	Args                  string             `json:"args"`
	Metadata              map[string]any     `json:"metadata"`
	S3Path                string             `json:"s3_path,omitempty"`
	NumTracks             int                `json:"num_tracks,omitempty"`
	ProcessingTimeSeconds int64              `json:"processing_time_seconds,omitempty"`
}

func buildStatusPayload(job domain.Job, media []domain.Media) (statusPayload, error) {
	status := domain.DerivedStatus(media)
	payload := statusPayload{
		ID:        job.ID,
		Name:      job.Name,
		Status:    status,
		CreatedAt: job.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Model:     job.Model,
		Args:      job.Args,
	}

	var decoded map[string]any
	var err error
	if len(media) > 0 {
		payload.Video = media[0].Name
		payload.UpdatedAt = media[0].UpdatedAt.Format("2006-01-02T15:04:05Z07:00")
		decoded, err = domain.DecodeMetadata(media[0].Metadata)
	} else {
		decoded, err = domain.DecodeMetadata(job.Metadata)
	}
	if err != nil {
		return statusPayload{}, err
	}

	if uri, ok := decoded["result_uri"].(string); ok {
		payload.S3Path = uri
		delete(decoded, "result_uri")
	}
	if n, ok := decoded["num_tracks"].(float64); ok {
		payload.NumTracks = int(n)
		delete(decoded, "num_tracks")
	}
	if secs, ok := decoded["processing_time_seconds"].(float64); ok {
		payload.ProcessingTimeSeconds = int64(secs)
		delete(decoded, "processing_time_seconds")
	}

	payload.Metadata = decoded
	return payload, nil
}

func (h *Handlers) statusByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return
	}
	job, media, err := h.store.JobByID(c.Request.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	payload, err := buildStatusPayload(job, media)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handlers) statusByName(c *gin.Context) {
	job, media, err := h.store.JobByName(c.Request.Context(), c.Param("name"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	payload, err := buildStatusPayload(job, media)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handlers) statusAll(c *gin.Context) {
	jobs, err := h.store.ListJobs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// videoStem returns the final path segment of a video URL without its
// extension, used in job-name generation (§4.1 step 4).
func videoStem(videoURL string) string {
	stem := videoURL
	for i := len(stem) - 1; i >= 0; i-- {
		if stem[i] == '/' {
			stem = stem[i+1:]
			break
		}
	}
	for i := len(stem) - 1; i >= 0; i-- {
		if stem[i] == '.' {
			return stem[:i]
		}
	}
	return stem
}
