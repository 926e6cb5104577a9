package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/events"
	"github.com/spec-kit/lostfound-service/internal/matching"
	"github.com/spec-kit/lostfound-service/internal/repository"
	"github.com/spec-kit/lostfound-service/internal/search"
	"github.com/spec-kit/lostfound-service/internal/storage"
	"github.com/spec-kit/lostfound-service/internal/validation"
	apperrors "github.com/spec-kit/lostfound-service/pkg/util/errorutil"
)

// ItemService coordinates item reports, moderation and matching.
type ItemService struct {
	items      repository.ItemRepository
	users      repository.UserRepository
	images     storage.ImageStore
	engine     *matching.Engine
	dispatcher events.Dispatcher
	metrics    Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// ItemDependencies bundles collaborators for the item service.
type ItemDependencies struct {
	ItemRepo       repository.ItemRepository
	UserRepo       repository.UserRepository
	Images         storage.ImageStore
	Dispatcher     events.Dispatcher
	Metrics        Metrics
	Logger         *zap.Logger
	MatchThreshold float64
}

// ItemInput describes a new report.
type ItemInput struct {
	Description  string
	Location     string
	Type         domain.ItemType
	Category     string
	ImageURL     string
	ReportedDate *time.Time
}

// AdminItemInput lets administrators pick status and reporter.
type AdminItemInput struct {
	ItemInput
	Status     domain.ItemStatus
	ReportedBy *int64
}

// ItemUpdate carries optional item changes. Nil fields are kept.
type ItemUpdate struct {
	Description *string
	Location    *string
	Type        *domain.ItemType
	Category    *string
	ImageURL    *string
	Status      *domain.ItemStatus
}

// ItemQuery is a filtered, paginated listing request.
type ItemQuery struct {
	Filter   search.Filter
	Page     int
	PageSize int
}

// ItemPage is one page of a listing.
type ItemPage struct {
	Items    []domain.Item
	Total    int
	Page     int
	PageSize int
}

// ReportResult is a stored report and the potential matches it produced.
type ReportResult struct {
	Item    *domain.Item
	Matches []domain.Item
}

// NewItemService constructs the service.
func NewItemService(deps ItemDependencies) *ItemService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	s := &ItemService{
		items:      deps.ItemRepo,
		users:      deps.UserRepo,
		images:     deps.Images,
		dispatcher: deps.Dispatcher,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
	var opts []matching.Option
	if deps.MatchThreshold > 0 {
		opts = append(opts, matching.WithThreshold(deps.MatchThreshold))
	}
	s.engine = matching.NewEngine(matchPublisher{s}, logger, opts...)
	return s
}

// matchPublisher turns engine matches into match_found events.
type matchPublisher struct {
	s *ItemService
}

func (p matchPublisher) NotifyPotentialMatch(ctx context.Context, lost, found domain.Item) error {
	publishEvent(ctx, p.s.dispatcher, p.s.now(), events.Event{
		Type:   events.EventMatchFound,
		ItemID: found.ID,
		Payload: events.MatchFoundPayload{
			LostItemID:       lost.ID,
			FoundItemID:      found.ID,
			LostOwnerID:      lost.ReportedByUserID,
			FoundDescription: found.Description,
		},
	})
	return nil
}

func repoFilter(f search.Filter) repository.ItemFilter {
	return repository.ItemFilter{
		ReportedBy: f.ReportedBy,
		Types:      f.Types,
		Statuses:   f.Statuses,
		Categories: f.Categories,
	}
}

// List returns one page of items accepted by the query filter.
func (s *ItemService) List(ctx context.Context, q ItemQuery) (*ItemPage, error) {
	items, err := s.items.List(ctx, repoFilter(q.Filter))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	filtered := search.Apply(items, q.Filter)
	page := q.Page
	if page <= 0 {
		page = 1
	}
	return &ItemPage{
		Items:    search.Paginate(filtered, page, q.PageSize),
		Total:    len(filtered),
		Page:     page,
		PageSize: q.PageSize,
	}, nil
}

// Search matches keyword against description and location, plus category
// in admin scope. An empty keyword returns everything.
func (s *ItemService) Search(ctx context.Context, keyword string, scope search.Scope) ([]domain.Item, error) {
	items, err := s.items.List(ctx, repository.ItemFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return search.Apply(items, search.Filter{Keyword: keyword, Scope: scope}), nil
}

// Get fetches one item.
func (s *ItemService) Get(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.NewItemNotFound(id))
	}
	return item, nil
}

// Report stores a new pending report and runs matching against the
// opposite type in the same category.
func (s *ItemService) Report(ctx context.Context, reporterID int64, in ItemInput) (*ReportResult, error) {
	return s.create(ctx, reporterID, in, domain.ItemStatusPending)
}

// AdminCreate stores an item on behalf of any user.
func (s *ItemService) AdminCreate(ctx context.Context, adminID int64, in AdminItemInput) (*ReportResult, error) {
	reporter := adminID
	if in.ReportedBy != nil {
		if _, err := s.users.GetByID(ctx, *in.ReportedBy); err != nil {
			return nil, notFound(err, apperrors.NewUserNotFound(*in.ReportedBy))
		}
		reporter = *in.ReportedBy
	}
	status := in.Status
	if status == "" {
		status = domain.ItemStatusPending
	}
	return s.create(ctx, reporter, in.ItemInput, status)
}

func (s *ItemService) create(ctx context.Context, reporterID int64, in ItemInput, status domain.ItemStatus) (*ReportResult, error) {
	if err := validationError(validation.ValidateItem(validation.ItemInput{
		Description: in.Description,
		Location:    in.Location,
		Type:        in.Type,
		Category:    in.Category,
		Status:      status,
	})); err != nil {
		return nil, err
	}

	now := s.now()
	reported := now
	if in.ReportedDate != nil && !in.ReportedDate.IsZero() {
		reported = *in.ReportedDate
	}
	item := &domain.Item{
		Description:      strings.TrimSpace(in.Description),
		Location:         strings.TrimSpace(in.Location),
		ReportedDate:     reported,
		Status:           status,
		Type:             in.Type,
		Category:         domain.NormalizeCategory(in.Category),
		ImageURL:         strings.TrimSpace(in.ImageURL),
		ReportedByUserID: reporterID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.metrics.RecordItemReported(string(item.Type))
	publishEvent(ctx, s.dispatcher, now, events.Event{
		Type:    events.EventItemReported,
		ItemID:  item.ID,
		ActorID: reporterID,
		Payload: events.ItemReportedPayload{
			ReporterID:  reporterID,
			Type:        item.Type,
			Category:    item.Category,
			Description: item.Description,
		},
	})

	matches, err := s.findMatches(ctx, *item, true)
	if err != nil {
		s.logger.Warn("matching after report failed", zap.Int64("item_id", item.ID), zap.Error(err))
		matches = []domain.Item{}
	}
	return &ReportResult{Item: item, Matches: matches}, nil
}

// Matches returns the current potential matches of an item without
// notifying anyone.
func (s *ItemService) Matches(ctx context.Context, id int64) ([]domain.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.findMatches(ctx, *item, false)
}

func (s *ItemService) findMatches(ctx context.Context, item domain.Item, notify bool) ([]domain.Item, error) {
	opposite := domain.ItemTypeFound
	if item.Type == domain.ItemTypeFound {
		opposite = domain.ItemTypeLost
	}
	candidates, err := s.items.List(ctx, repository.ItemFilter{
		Types:      []domain.ItemType{opposite},
		Categories: []string{item.Category},
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !notify {
		return s.engine.Match(item, candidates), nil
	}
	matches := s.engine.FindPotentialMatches(ctx, item, candidates)
	s.metrics.RecordMatches(len(matches))
	return matches, nil
}

// UpdateAsOwner lets the reporter edit their own report. Status stays
// under administrator control.
func (s *ItemService) UpdateAsOwner(ctx context.Context, actorID, id int64, in ItemUpdate) (*domain.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.ReportedByUserID != actorID {
		return nil, apperrors.NewForbidden("only the reporter can edit this item")
	}
	in.Status = nil
	return s.apply(ctx, actorID, item, in)
}

// AdminUpdate edits any field, status included.
func (s *ItemService) AdminUpdate(ctx context.Context, adminID, id int64, in ItemUpdate) (*domain.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, adminID, item, in)
}

func (s *ItemService) apply(ctx context.Context, actorID int64, item *domain.Item, in ItemUpdate) (*domain.Item, error) {
	oldStatus := item.Status
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.Location != nil {
		item.Location = strings.TrimSpace(*in.Location)
	}
	if in.Type != nil {
		item.Type = *in.Type
	}
	if in.Category != nil {
		item.Category = domain.NormalizeCategory(*in.Category)
	}
	if in.ImageURL != nil {
		item.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Status != nil {
		item.Status = *in.Status
	}
	if err := validationError(validation.ValidateItem(validation.ItemInput{
		Description: item.Description,
		Location:    item.Location,
		Type:        item.Type,
		Category:    item.Category,
		Status:      item.Status,
	})); err != nil {
		return nil, err
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, notFound(err, apperrors.NewItemNotFound(item.ID))
	}
	if item.Status != oldStatus {
		s.publishStatusChange(ctx, actorID, item, oldStatus)
	}
	return item, nil
}

// UpdateStatus moves an item to status.
func (s *ItemService) UpdateStatus(ctx context.Context, adminID, id int64, status domain.ItemStatus) (*domain.Item, error) {
	if !status.Valid() {
		return nil, validationError(validation.Errors{{Field: "status", Message: "unknown status"}})
	}
	return s.AdminUpdate(ctx, adminID, id, ItemUpdate{Status: &status})
}

// Approve marks a pending report as approved.
func (s *ItemService) Approve(ctx context.Context, adminID, id int64) (*domain.Item, error) {
	return s.UpdateStatus(ctx, adminID, id, domain.ItemStatusApproved)
}

// Reject marks a report as rejected.
func (s *ItemService) Reject(ctx context.Context, adminID, id int64) (*domain.Item, error) {
	return s.UpdateStatus(ctx, adminID, id, domain.ItemStatusRejected)
}

func (s *ItemService) publishStatusChange(ctx context.Context, actorID int64, item *domain.Item, oldStatus domain.ItemStatus) {
	publishEvent(ctx, s.dispatcher, s.now(), events.Event{
		Type:    events.EventItemStatusChanged,
		ItemID:  item.ID,
		ActorID: actorID,
		Payload: events.ItemStatusChangedPayload{
			ReporterID:  item.ReportedByUserID,
			Description: item.Description,
			OldStatus:   oldStatus,
			NewStatus:   item.Status,
		},
	})
}

// Claim records that claimerID owns the item.
func (s *ItemService) Claim(ctx context.Context, claimerID, id int64) (*domain.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status == domain.ItemStatusClaimed || item.Status == domain.ItemStatusReturned {
		return nil, apperrors.NewConflict("item already claimed", map[string]any{"item_id": id, "status": item.Status})
	}

	now := s.now()
	item, err = s.items.Claim(ctx, id, claimerID, now)
	if errors.Is(err, repository.ErrConflict) {
		return nil, apperrors.NewConflict("item already claimed", map[string]any{"item_id": id})
	}
	if err != nil {
		return nil, notFound(err, apperrors.NewItemNotFound(id))
	}

	publishEvent(ctx, s.dispatcher, now, events.Event{
		Type:    events.EventItemClaimed,
		ItemID:  item.ID,
		ActorID: claimerID,
		Payload: events.ItemClaimedPayload{
			ReporterID:  item.ReportedByUserID,
			ClaimedBy:   claimerID,
			Description: item.Description,
		},
	})
	return item, nil
}

// Cancel removes a report. Only its reporter may cancel it.
func (s *ItemService) Cancel(ctx context.Context, actorID, id int64) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.ReportedByUserID != actorID {
		return apperrors.NewForbidden("only the reporter can cancel this item")
	}
	return s.remove(ctx, actorID, item, false)
}

// Delete removes any item.
func (s *ItemService) Delete(ctx context.Context, adminID, id int64) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, adminID, item, true)
}

func (s *ItemService) remove(ctx context.Context, actorID int64, item *domain.Item, byAdmin bool) error {
	if err := s.items.Delete(ctx, item.ID); err != nil {
		return notFound(err, apperrors.NewItemNotFound(item.ID))
	}
	publishEvent(ctx, s.dispatcher, s.now(), events.Event{
		Type:    events.EventItemDeleted,
		ItemID:  item.ID,
		ActorID: actorID,
		Payload: events.ItemDeletedPayload{ReporterID: item.ReportedByUserID, ByAdmin: byAdmin},
	})
	return nil
}

// UploadImage stores an item photo and returns its URL.
func (s *ItemService) UploadImage(ctx context.Context, r io.Reader, filename, contentType string, size int64) (string, error) {
	if s.images == nil {
		return "", apperrors.NewInternalError(errNoImageStore)
	}
	if err := storage.ValidateImage(contentType, size); err != nil {
		return "", apperrors.NewValidationError(err.Error(), map[string]any{"image": err.Error()})
	}
	url, err := s.images.Upload(ctx, r, filename, contentType, size)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return url, nil
}
