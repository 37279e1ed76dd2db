package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/tip-favorites/internal/favorite/domain"
)

var tracer = otel.Tracer("favorite-store")

// TracingStore wraps a FavoriteStore with OpenTelemetry spans
type TracingStore struct {
	next domain.FavoriteStore
}

var _ domain.FavoriteStore = (*TracingStore)(nil)

// NewTracingStore creates a store decorator that records one span per call
func NewTracingStore(next domain.FavoriteStore) *TracingStore {
	return &TracingStore{next: next}
}

func (s *TracingStore) Get(ctx context.Context, userID, tipID string) (*domain.Favorite, error) {
	ctx, span := tracer.Start(ctx, "store.Get", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("tip.id", tipID),
	))
	defer span.End()

	favorite, err := s.next.Get(ctx, userID, tipID)
	recordError(span, err)
	return favorite, err
}

func (s *TracingStore) Add(ctx context.Context, favorite *domain.Favorite) error {
	ctx, span := tracer.Start(ctx, "store.Add", trace.WithAttributes(
		attribute.String("user.id", favorite.UserID),
		attribute.String("tip.id", favorite.TipID),
	))
	defer span.End()

	err := s.next.Add(ctx, favorite)
	recordError(span, err)
	return err
}

func (s *TracingStore) Remove(ctx context.Context, userID, tipID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "store.Remove", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("tip.id", tipID),
	))
	defer span.End()

	removed, err := s.next.Remove(ctx, userID, tipID)
	recordError(span, err)
	span.SetAttributes(attribute.Bool("result.removed", removed))
	return removed, err
}

func (s *TracingStore) Search(ctx context.Context, userID string, criteria domain.SearchCriteria) ([]string, int64, error) {
	ctx, span := tracer.Start(ctx, "store.Search", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("query.page_number", criteria.PageNumber),
		attribute.Int("query.page_size", criteria.PageSize),
	))
	defer span.End()

	tipIDs, total, err := s.next.Search(ctx, userID, criteria)
	recordError(span, err)
	span.SetAttributes(
		attribute.Int("result.count", len(tipIDs)),
		attribute.Int64("result.total", total),
	)
	return tipIDs, total, err
}

func (s *TracingStore) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	ctx, span := tracer.Start(ctx, "store.ListByUser", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	favorites, err := s.next.ListByUser(ctx, userID)
	recordError(span, err)
	span.SetAttributes(attribute.Int("result.count", len(favorites)))
	return favorites, err
}

func (s *TracingStore) ExistingSubset(ctx context.Context, userID string, tipIDs []string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "store.ExistingSubset", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("query.candidates", len(tipIDs)),
	))
	defer span.End()

	existing, err := s.next.ExistingSubset(ctx, userID, tipIDs)
	recordError(span, err)
	span.SetAttributes(attribute.Int("result.count", len(existing)))
	return existing, err
}

func (s *TracingStore) AddBatch(ctx context.Context, userID string, tipIDs []string, addedAt time.Time) (int, error) {
	ctx, span := tracer.Start(ctx, "store.AddBatch", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("batch.size", len(tipIDs)),
	))
	defer span.End()

	committed, err := s.next.AddBatch(ctx, userID, tipIDs, addedAt)
	recordError(span, err)
	span.SetAttributes(attribute.Int("batch.committed", committed))
	return committed, err
}

func (s *TracingStore) RemoveAllForUser(ctx context.Context, userID string) (int, error) {
	ctx, span := tracer.Start(ctx, "store.RemoveAllForUser", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	removed, err := s.next.RemoveAllForUser(ctx, userID)
	recordError(span, err)
	span.SetAttributes(attribute.Int("batch.removed", removed))
	return removed, err
}

// recordError marks the span failed; not-found lookups are normal outcomes
func recordError(span trace.Span, err error) {
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
