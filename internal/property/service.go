package property

import (
	"context"
	"errors"
	"fmt"
	"io"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/config"
	"estate_market_backend/internal/review"
	"estate_market_backend/internal/shared"
	"estate_market_backend/internal/storage"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFeaturedLimit = 6
	defaultSearchLimit   = 20
)

var errNotOwner = common.ErrForbidden.WithDetails("You do not have permission to modify this property.")

// ImageStore is the object storage used for uploaded property images.
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, contentType, folder string) (*storage.UploadResult, error)
	Delete(ctx context.Context, key string) bool
	ExtractKeyFromURL(rawURL string) (string, bool)
}

// ImageUpload adds an image either from an uploaded file or an existing URL.
type ImageUpload struct {
	File        io.Reader
	ContentType string
	URL         string
	AltText     string
	IsPrimary   bool
}

// Service defines the property operations.
type Service interface {
	ListProperties(ctx context.Context, filters []Filter, limit, offset int) ([]PropertyWithStats, error)
	GetFeaturedProperties(ctx context.Context) ([]PropertyWithStats, error)
	SearchProperties(ctx context.Context, q string) ([]PropertyWithStats, error)
	GetUserProperties(ctx context.Context, ownerID string, limit, offset int) ([]PropertyWithStats, error)
	ListByIDs(ctx context.Context, ids []uint) ([]PropertyWithStats, error)
	GetProperty(ctx context.Context, id uint) (*PropertyDetail, error)

	CreateProperty(ctx context.Context, ownerID string, req CreatePropertyRequest) (*PropertyWithStats, error)
	UpdateProperty(ctx context.Context, callerID string, id uint, req UpdatePropertyRequest) (*PropertyWithStats, error)
	DeleteProperty(ctx context.Context, callerID string, id uint) error
	AdminDeleteProperty(ctx context.Context, id uint) error
	SetFeatured(ctx context.Context, id uint, featured bool) (*PropertyWithStats, error)

	AddImage(ctx context.Context, callerID string, propertyID uint, in ImageUpload) (*PropertyImage, error)
	DeleteImage(ctx context.Context, callerID string, imageID uint) error
	SetPrimaryImage(ctx context.Context, callerID string, imageID uint) error
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo    Repository
	reviews review.Service
	users   shared.Service
	images  ImageStore
	indexer Indexer
	cfg     *config.Config
	logger  *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new property service.
func NewService(
	repo Repository,
	reviews review.Service,
	users shared.Service,
	images ImageStore,
	indexer Indexer,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:    repo,
		reviews: reviews,
		users:   users,
		images:  images,
		indexer: indexer,
		cfg:     cfg,
		logger:  logger.Named("PropertyService"),
	}
}

// ListProperties returns one page of available properties matching every filter.
func (s *ServiceImplementation) ListProperties(ctx context.Context, filters []Filter, limit, offset int) ([]PropertyWithStats, error) {
	return s.repo.List(ctx, PropertyQuery{Filters: filters, Limit: limit, Offset: offset})
}

// GetFeaturedProperties returns the properties flagged featured. When none are
// flagged it falls back to the newest available properties.
func (s *ServiceImplementation) GetFeaturedProperties(ctx context.Context) ([]PropertyWithStats, error) {
	limit := defaultFeaturedLimit
	if s.cfg != nil && s.cfg.FeaturedPropertiesLimit > 0 {
		limit = s.cfg.FeaturedPropertiesLimit
	}
	featured, err := s.repo.List(ctx, PropertyQuery{Filters: []Filter{FeaturedFilter{}}, Limit: limit})
	if err != nil {
		return nil, err
	}
	if len(featured) > 0 {
		return featured, nil
	}
	return s.repo.List(ctx, PropertyQuery{Limit: limit})
}

// SearchProperties matches q against the location fields only.
func (s *ServiceImplementation) SearchProperties(ctx context.Context, q string) ([]PropertyWithStats, error) {
	limit := defaultSearchLimit
	if s.cfg != nil && s.cfg.SearchResultsLimit > 0 {
		limit = s.cfg.SearchResultsLimit
	}
	return s.repo.List(ctx, PropertyQuery{Filters: []Filter{LocationFilter{Term: q}}, Limit: limit})
}

// GetUserProperties returns every property of an owner, available or not.
func (s *ServiceImplementation) GetUserProperties(ctx context.Context, ownerID string, limit, offset int) ([]PropertyWithStats, error) {
	return s.repo.List(ctx, PropertyQuery{
		Filters:            []Filter{OwnerFilter{OwnerID: ownerID}},
		IncludeUnavailable: true,
		Limit:              limit,
		Offset:             offset,
	})
}

// ListByIDs returns the listed properties, including unavailable ones.
func (s *ServiceImplementation) ListByIDs(ctx context.Context, ids []uint) ([]PropertyWithStats, error) {
	if len(ids) == 0 {
		return []PropertyWithStats{}, nil
	}
	return s.repo.List(ctx, PropertyQuery{
		Filters:            []Filter{IDsFilter{IDs: ids}},
		IncludeUnavailable: true,
		Limit:              len(ids),
	})
}

// GetProperty loads a property and fetches its images, reviews, owner and stats
// concurrently.
func (s *ServiceImplementation) GetProperty(ctx context.Context, id uint) (*PropertyDetail, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		images  map[uint][]PropertyImage
		reviews []review.ReviewWithAuthor
		owner   *shared.User
		avg     float64
		count   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		images, err = s.repo.ListImages(gctx, []uint{id})
		return err
	})
	g.Go(func() (err error) {
		reviews, err = s.reviews.ListForProperty(gctx, id)
		return err
	})
	g.Go(func() error {
		u, err := s.users.GetUserByID(gctx, p.OwnerID)
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("Property owner row is missing", zap.Uint("propertyID", id), zap.String("ownerID", p.OwnerID))
			return nil
		}
		owner = u
		return err
	})
	g.Go(func() (err error) {
		avg, count, err = s.repo.GetStats(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail := &PropertyDetail{
		PropertyWithStats: PropertyWithStats{Property: *p, AverageRating: avg, ReviewCount: count},
		Reviews:           reviews,
		Owner:             owner,
	}
	attachImages(&detail.PropertyWithStats, images[id])
	return detail, nil
}

// CreateProperty stores a new property owned by ownerID. Available defaults to true.
func (s *ServiceImplementation) CreateProperty(ctx context.Context, ownerID string, req CreatePropertyRequest) (*PropertyWithStats, error) {
	p := &Property{
		Title:        req.Title,
		Slug:         slug.Make(req.Title),
		Description:  req.Description,
		Price:        req.Price,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.ZipCode,
		PropertyType: req.PropertyType,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		SquareFeet:   req.SquareFeet,
		YearBuilt:    req.YearBuilt,
		Parking:      req.Parking,
		Pool:         req.Pool,
		Gym:          req.Gym,
		PetFriendly:  req.PetFriendly,
		Furnished:    req.Furnished,
		Available:    true,
		OwnerID:      ownerID,
	}
	if req.Available != nil {
		p.Available = *req.Available
	}

	images := make([]PropertyImage, 0, len(req.Images))
	primarySeen := false
	for _, in := range req.Images {
		img := PropertyImage{URL: in.URL, AltText: in.AltText, IsPrimary: in.IsPrimary && !primarySeen}
		primarySeen = primarySeen || img.IsPrimary
		if key, ok := s.images.ExtractKeyFromURL(in.URL); ok {
			img.StorageKey = &key
		}
		images = append(images, img)
	}

	if err := s.repo.Create(ctx, p, images); err != nil {
		s.logger.Error("Failed to create property", zap.Error(err), zap.String("ownerID", ownerID))
		return nil, err
	}
	s.logger.Info("Property created", zap.Uint("propertyID", p.ID), zap.String("ownerID", ownerID))
	s.reindex(ctx, p)

	created := &PropertyWithStats{Property: *p}
	attachImages(created, images)
	return created, nil
}

// UpdateProperty applies a partial update. Only the owner may update; a missing
// property is reported the same way as a foreign one.
func (s *ServiceImplementation) UpdateProperty(ctx context.Context, callerID string, id uint, req UpdatePropertyRequest) (*PropertyWithStats, error) {
	p, err := s.ownedProperty(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(p, req)
	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("Failed to update property", zap.Error(err), zap.Uint("propertyID", id))
		return nil, err
	}
	s.reindex(ctx, p)
	return s.reload(ctx, id)
}

func applyUpdate(p *Property, req UpdatePropertyRequest) {
	if req.Title != nil {
		p.Title = *req.Title
		p.Slug = slug.Make(*req.Title)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.State != nil {
		p.State = *req.State
	}
	if req.ZipCode != nil {
		p.ZipCode = *req.ZipCode
	}
	if req.PropertyType != nil {
		p.PropertyType = *req.PropertyType
	}
	if req.Bedrooms != nil {
		p.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		p.Bathrooms = *req.Bathrooms
	}
	if req.SquareFeet != nil {
		p.SquareFeet = req.SquareFeet
	}
	if req.YearBuilt != nil {
		p.YearBuilt = req.YearBuilt
	}
	if req.Parking != nil {
		p.Parking = *req.Parking
	}
	if req.Pool != nil {
		p.Pool = *req.Pool
	}
	if req.Gym != nil {
		p.Gym = *req.Gym
	}
	if req.PetFriendly != nil {
		p.PetFriendly = *req.PetFriendly
	}
	if req.Furnished != nil {
		p.Furnished = *req.Furnished
	}
	if req.Available != nil {
		p.Available = *req.Available
	}
}

// DeleteProperty removes an owned property and all of its dependents.
func (s *ServiceImplementation) DeleteProperty(ctx context.Context, callerID string, id uint) error {
	if _, err := s.ownedProperty(ctx, callerID, id); err != nil {
		return err
	}
	return s.deleteProperty(ctx, id)
}

// AdminDeleteProperty removes any property.
func (s *ServiceImplementation) AdminDeleteProperty(ctx context.Context, id uint) error {
	return s.deleteProperty(ctx, id)
}

func (s *ServiceImplementation) deleteProperty(ctx context.Context, id uint) error {
	images, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		return err
	}
	s.logger.Info("Property deleted", zap.Uint("propertyID", id), zap.Int("images", len(images)))
	for _, img := range images {
		s.deleteBlob(ctx, img)
	}
	if err := s.indexer.Remove(ctx, id); err != nil {
		s.logger.Warn("Failed to remove property from search index", zap.Error(err), zap.Uint("propertyID", id))
	}
	return nil
}

// SetFeatured toggles the featured flag.
func (s *ServiceImplementation) SetFeatured(ctx context.Context, id uint, featured bool) (*PropertyWithStats, error) {
	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{"featured": featured}); err != nil {
		return nil, err
	}
	updated, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, &updated.Property)
	return updated, nil
}

// AddImage attaches an image to an owned property, uploading the file when one is given.
func (s *ServiceImplementation) AddImage(ctx context.Context, callerID string, propertyID uint, in ImageUpload) (*PropertyImage, error) {
	if _, err := s.ownedProperty(ctx, callerID, propertyID); err != nil {
		return nil, err
	}

	img := &PropertyImage{PropertyID: propertyID, AltText: in.AltText, IsPrimary: in.IsPrimary}
	switch {
	case in.File != nil:
		res, err := s.images.Upload(ctx, in.File, in.ContentType, fmt.Sprintf("properties/%d", propertyID))
		if err != nil {
			return nil, err
		}
		img.URL = res.URL
		img.StorageKey = &res.Key
	case in.URL != "":
		img.URL = in.URL
		if key, ok := s.images.ExtractKeyFromURL(in.URL); ok {
			img.StorageKey = &key
		}
	default:
		return nil, common.ErrBadRequest.WithDetails("An image file or url is required.")
	}

	if err := s.repo.CreateImage(ctx, img); err != nil {
		if img.StorageKey != nil && in.File != nil {
			s.images.Delete(ctx, *img.StorageKey)
		}
		return nil, err
	}
	return img, nil
}

// DeleteImage removes an image of an owned property. A missing image is a 404.
func (s *ServiceImplementation) DeleteImage(ctx context.Context, callerID string, imageID uint) error {
	img, err := s.repo.FindImageByID(ctx, imageID)
	if err != nil {
		return err
	}
	if _, err := s.ownedProperty(ctx, callerID, img.PropertyID); err != nil {
		return err
	}
	if err := s.repo.DeleteImage(ctx, imageID); err != nil {
		return err
	}
	s.deleteBlob(ctx, *img)
	return nil
}

// SetPrimaryImage flags one image as primary and clears its siblings.
func (s *ServiceImplementation) SetPrimaryImage(ctx context.Context, callerID string, imageID uint) error {
	img, err := s.repo.FindImageByID(ctx, imageID)
	if err != nil {
		return err
	}
	if _, err := s.ownedProperty(ctx, callerID, img.PropertyID); err != nil {
		return err
	}
	return s.repo.SetPrimaryImage(ctx, img.PropertyID, imageID)
}

func (s *ServiceImplementation) ownedProperty(ctx context.Context, callerID string, id uint) (*Property, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errNotOwner
		}
		return nil, err
	}
	if p.OwnerID != callerID {
		s.logger.Warn("Rejected property mutation by non-owner", zap.Uint("propertyID", id), zap.String("callerID", callerID))
		return nil, errNotOwner
	}
	return p, nil
}

func (s *ServiceImplementation) reload(ctx context.Context, id uint) (*PropertyWithStats, error) {
	list, err := s.repo.List(ctx, PropertyQuery{Filters: []Filter{IDsFilter{IDs: []uint{id}}}, IncludeUnavailable: true, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.ErrNotFound.WithDetails("Property not found.")
	}
	return &list[0], nil
}

// deleteBlob removes the stored object behind an image. Failures are logged only.
func (s *ServiceImplementation) deleteBlob(ctx context.Context, img PropertyImage) {
	key := ""
	if img.StorageKey != nil {
		key = *img.StorageKey
	} else if k, ok := s.images.ExtractKeyFromURL(img.URL); ok {
		key = k
	}
	if key == "" {
		return
	}
	if !s.images.Delete(ctx, key) {
		s.logger.Warn("Stored image could not be deleted", zap.String("key", key), zap.Uint("imageID", img.ID))
	}
}

func (s *ServiceImplementation) reindex(ctx context.Context, p *Property) {
	if err := s.indexer.Index(ctx, p); err != nil {
		s.logger.Warn("Failed to index property", zap.Error(err), zap.Uint("propertyID", p.ID))
	}
}

// OwnerLookup resolves property owners for packages that cannot import the
// property service.
type OwnerLookup struct {
	repo Repository
}

var _ shared.PropertyLookup = (*OwnerLookup)(nil)

func NewOwnerLookup(repo Repository) *OwnerLookup {
	return &OwnerLookup{repo: repo}
}

func (l *OwnerLookup) GetPropertyOwnerID(ctx context.Context, propertyID uint) (string, error) {
	p, err := l.repo.FindByID(ctx, propertyID)
	if err != nil {
		return "", err
	}
	return p.OwnerID, nil
}
