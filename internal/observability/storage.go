package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"aboutme/internal/models"
	"aboutme/internal/storage"
)

// InstrumentedStorage wraps a storage.Storage implementation with
// OpenTelemetry tracing and metrics instrumentation.
type InstrumentedStorage struct {
	inner    storage.Storage
	tracer   trace.Tracer
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// NewInstrumentedStorage creates a new storage wrapper that records trace spans,
// operation latency histograms, and error counters for every storage method call.
func NewInstrumentedStorage(inner storage.Storage) (*InstrumentedStorage, error) {
	tracer := otel.Tracer("aboutme/storage")
	meter := otel.Meter("aboutme/storage")

	duration, err := meter.Float64Histogram(
		"storage.operation.duration",
		metric.WithDescription("Duration of storage operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errCounter, err := meter.Int64Counter(
		"storage.operation.errors",
		metric.WithDescription("Number of storage operation errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedStorage{
		inner:    inner,
		tracer:   tracer,
		duration: duration,
		errors:   errCounter,
	}, nil
}

func (s *InstrumentedStorage) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, "storage."+operation,
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("storage.operation", operation),
		}, attrs...)...),
	)
	return ctx, span
}

func (s *InstrumentedStorage) record(ctx context.Context, span trace.Span, operation string, start time.Time, err error) {
	elapsed := time.Since(start).Seconds()
	attrs := metric.WithAttributes(attribute.String("operation", operation))

	s.duration.Record(ctx, elapsed, attrs)

	if err != nil {
		s.errors.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

func (s *InstrumentedStorage) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	ctx, span := s.startSpan(ctx, "GetProfileByID", attribute.String("profile_id", id))
	start := time.Now()
	result, err := s.inner.GetProfileByID(ctx, id)
	s.record(ctx, span, "GetProfileByID", start, err)
	return result, err
}

func (s *InstrumentedStorage) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	ctx, span := s.startSpan(ctx, "GetProfileByUsername", attribute.String("username", username))
	start := time.Now()
	result, err := s.inner.GetProfileByUsername(ctx, username)
	s.record(ctx, span, "GetProfileByUsername", start, err)
	return result, err
}

func (s *InstrumentedStorage) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	ctx, span := s.startSpan(ctx, "GetProfileByUserID", attribute.String("user_id", userID))
	start := time.Now()
	result, err := s.inner.GetProfileByUserID(ctx, userID)
	s.record(ctx, span, "GetProfileByUserID", start, err)
	return result, err
}

func (s *InstrumentedStorage) SaveProfile(ctx context.Context, profile *models.Profile) error {
	ctx, span := s.startSpan(ctx, "SaveProfile",
		attribute.String("profile_id", profile.ID),
		attribute.String("username", profile.Username),
	)
	start := time.Now()
	err := s.inner.SaveProfile(ctx, profile)
	s.record(ctx, span, "SaveProfile", start, err)
	return err
}

func (s *InstrumentedStorage) UsernameExists(ctx context.Context, username string) (bool, error) {
	ctx, span := s.startSpan(ctx, "UsernameExists", attribute.String("username", username))
	start := time.Now()
	result, err := s.inner.UsernameExists(ctx, username)
	s.record(ctx, span, "UsernameExists", start, err)
	return result, err
}

func (s *InstrumentedStorage) CreateUser(ctx context.Context, user *models.User) error {
	ctx, span := s.startSpan(ctx, "CreateUser", attribute.String("user_id", user.ID))
	start := time.Now()
	err := s.inner.CreateUser(ctx, user)
	s.record(ctx, span, "CreateUser", start, err)
	return err
}

func (s *InstrumentedStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	start := time.Now()
	result, err := s.inner.GetUserByEmail(ctx, email)
	s.record(ctx, span, "GetUserByEmail", start, err)
	return result, err
}

func (s *InstrumentedStorage) InsertAccessLog(ctx context.Context, entry *models.AccessLogEntry) error {
	ctx, span := s.startSpan(ctx, "InsertAccessLog", attribute.String("profile_id", entry.ProfileID))
	start := time.Now()
	err := s.inner.InsertAccessLog(ctx, entry)
	s.record(ctx, span, "InsertAccessLog", start, err)
	return err
}

func (s *InstrumentedStorage) AccessLogStats(ctx context.Context, profileID string) (*models.AccessLogStats, error) {
	ctx, span := s.startSpan(ctx, "AccessLogStats", attribute.String("profile_id", profileID))
	start := time.Now()
	result, err := s.inner.AccessLogStats(ctx, profileID)
	s.record(ctx, span, "AccessLogStats", start, err)
	return result, err
}

func (s *InstrumentedStorage) RecentAccessLogs(ctx context.Context, profileID string, limit int) ([]*models.AccessLogEntry, error) {
	ctx, span := s.startSpan(ctx, "RecentAccessLogs",
		attribute.String("profile_id", profileID),
		attribute.Int("limit", limit),
	)
	start := time.Now()
	result, err := s.inner.RecentAccessLogs(ctx, profileID, limit)
	s.record(ctx, span, "RecentAccessLogs", start, err)
	return result, err
}

func (s *InstrumentedStorage) Close() error {
	return s.inner.Close()
}
