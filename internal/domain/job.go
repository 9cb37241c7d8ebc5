// Package domain holds the Job/Media data model shared by the control plane
// and the dispatcher daemon.
package domain

import "time"

// JobKind enumerates the kinds of work a Job can represent. Only DOCKER is
// in scope; the column exists so the schema can grow without a migration.
type JobKind string

// DockerJobKind is the only JobKind implemented.
const DockerJobKind JobKind = "DOCKER"

// MediaStatus is the lifecycle state of a single Media row.
type MediaStatus string

const (
	MediaQueued  MediaStatus = "QUEUED"
	MediaRunning MediaStatus = "RUNNING"
	MediaSuccess MediaStatus = "SUCCESS"
	MediaFailed  MediaStatus = "FAILED"
	MediaUnknown MediaStatus = "UNKNOWN"
)

// Terminal reports whether the status permits no further transitions.
func (s MediaStatus) Terminal() bool {
	return s == MediaSuccess || s == MediaFailed
}

// Job is a persistent unit of work tied to one model invocation over one (or
// in principle several) input videos. Jobs are created by the control plane
// on admission and mutated only by the Scheduler.
type Job struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Engine    string    `db:"engine" json:"engine"`
	Model     string    `db:"model" json:"model"`
	Args      string    `db:"args" json:"args"`
	Metadata  []byte    `db:"metadata" json:"-"` // base64(JSON), see EncodeMetadata
	Kind      JobKind   `db:"kind" json:"kind"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Media represents one input video belonging to a Job. The schema allows
// many Media rows per Job; current usage always inserts exactly one.
type Media struct {
	ID        int64       `db:"id" json:"id"`
	JobID     int64       `db:"job_id" json:"job_id"`
	Name      string      `db:"name" json:"name"` // source video URL
	Status    MediaStatus `db:"status" json:"status"`
	Metadata  []byte      `db:"metadata" json:"-"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// ResultMetadata is the enrichment merged into a Media's metadata blob when
// a job reaches SUCCESS.
type ResultMetadata struct {
	ResultURI             string `json:"result_uri,omitempty"`
	NumTracks             int    `json:"num_tracks,omitempty"`
	ProcessingTimeSeconds int64  `json:"processing_time_seconds,omitempty"`
}

// DerivedStatus computes a Job's effective status purely from its Media
// rows, per the derivation table:
//
//	FAILED   if any media FAILED
//	RUNNING  if any media RUNNING and none FAILED
//	QUEUED   if any media QUEUED and none RUNNING/FAILED
//	SUCCESS  if all media SUCCESS
//	UNKNOWN  otherwise
func DerivedStatus(media []Media) MediaStatus {
	if len(media) == 0 {
		return MediaUnknown
	}

	var anyFailed, anyRunning, anyQueued, allSuccess bool
	allSuccess = true
	for _, m := range media {
		switch m.Status {
		case MediaFailed:
			anyFailed = true
			allSuccess = false
		case MediaRunning:
			anyRunning = true
			allSuccess = false
		case MediaQueued:
			anyQueued = true
			allSuccess = false
		case MediaSuccess:
			// contributes only to allSuccess, already true by default
		default:
			allSuccess = false
		}
	}

	switch {
	case anyFailed:
		return MediaFailed
	case anyRunning:
		return MediaRunning
	case anyQueued:
		return MediaQueued
	case allSuccess:
		return MediaSuccess
	default:
		return MediaUnknown
	}
}
