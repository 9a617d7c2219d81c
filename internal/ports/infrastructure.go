package ports

import (
	"context"
	"time"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

// DetectRequest asks the vision service to analyze one stored image.
type DetectRequest struct {
	// ImageID is the caller's identifier for the image. Concurrent requests
	// for the same ImageID may be collapsed into one detector call.
	ImageID string
	// ImagePath is the path of the image as seen by the vision service.
	ImagePath string
	// ClassroomID is forwarded so the vision service can tag its output.
	ClassroomID domain.ClassroomID
	// UseOpenVocabulary enables the open-vocabulary model in addition to
	// the closed-set detector.
	UseOpenVocabulary bool
}

// DetectResult is the raw output of the vision service.
type DetectResult struct {
	Detections         []domain.Detection
	AnnotatedImagePath string
	// UpstreamTotal is the total the vision service computed itself, if it
	// reported one. It is informational only and never stored.
	UpstreamTotal *float64
	UpstreamRating string
}

// Detector runs object detection against the external vision service.
type Detector interface {
	// Detect returns the detections for one image. Transport failures come
	// back classified so errors.Is works against the sentinels in this
	// package.
	Detect(ctx context.Context, req DetectRequest) (*DetectResult, error)

	// GetModel names the backend, e.g. "yolov8@http://vision:5000".
	GetModel() string
}

// ScoreQuery selects stored cleanliness scores.
type ScoreQuery struct {
	// Window bounds AnalyzedAt. The zero window matches everything.
	Window domain.TimeWindow
	// ClassroomID restricts results to one classroom when non-empty.
	ClassroomID domain.ClassroomID
	// GradeLevel restricts results to classrooms of one grade when non-empty.
	GradeLevel string
	// Limit caps the number of rows returned, newest first. Zero means no cap.
	Limit int
}

// ScoreRepository persists cleanliness scores. Scores are append-only: a
// re-analysis of the same classroom inserts a new row.
type ScoreRepository interface {
	// Save inserts a new score. Saving a score whose ID already exists is
	// an error.
	Save(ctx context.Context, score domain.CleanlinessScore) error

	// Find returns scores matching the query ordered by AnalyzedAt
	// descending.
	Find(ctx context.Context, q ScoreQuery) ([]domain.CleanlinessScore, error)
}

// ClassroomRepository stores descriptive classroom data.
type ClassroomRepository interface {
	// Get returns a classroom or an error wrapping domain.ErrNotFound.
	Get(ctx context.Context, id domain.ClassroomID) (domain.Classroom, error)

	// List returns classrooms ordered by ID, optionally filtered by grade.
	List(ctx context.Context, gradeLevel string) ([]domain.Classroom, error)

	// Create inserts a classroom and returns it with its assigned ID.
	Create(ctx context.Context, c domain.Classroom) (domain.Classroom, error)
}

// UserRepository stores portal accounts.
type UserRepository interface {
	// FindByUsername returns a user or an error wrapping domain.ErrNotFound.
	FindByUsername(ctx context.Context, username string) (domain.User, error)

	// Create inserts a user and returns it with its assigned ID.
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

// MetricsCollector records analysis metrics. Metric names are unprefixed;
// the Prometheus adapter adds the namespace.
type MetricsCollector interface {
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter adds value to a counter such as analyses_total.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets a gauge such as analyses_in_flight.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram observes one sample, e.g. a total score or a
	// detection count.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// ConfigLoader fills an *AppConfig from files and the environment.
type ConfigLoader interface {
	// Load decodes into config, which must be a pointer.
	Load(ctx context.Context, config any) error

	// Watch reloads config whenever the backing file changes and hands
	// each successfully validated copy to callback. Calling stop ends the
	// watch; so does cancelling ctx.
	Watch(ctx context.Context, config any, callback func(any)) (stop func(), err error)
}
