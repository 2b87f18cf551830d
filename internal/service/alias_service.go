package service

import (
	"context"
	"strings"

	"github.com/zeebo/errs"

	"github.com/darkodi/url-alias/internal/alias"
	"github.com/darkodi/url-alias/internal/logger"
	"github.com/darkodi/url-alias/internal/model"
	"github.com/darkodi/url-alias/internal/repository"
)

// Cache stores lookUp results. Implemented by cache.RedisCache.
// Key is taken before the index is read so an Invalidate in between
// strands whatever is stored under it.
type Cache interface {
	Key(ctx context.Context, path, languageCode string) (string, error)
	Get(ctx context.Context, key string) (*model.URLAlias, error)
	Set(ctx context.Context, key string, a model.URLAlias) error
	Invalidate(ctx context.Context) error
}

// Resolution is the outcome of resolving a public path.
// RedirectTo is set when the path is a history or forwarding alias.
type Resolution struct {
	Alias      model.URLAlias `json:"alias"`
	RedirectTo string         `json:"redirect_to,omitempty"`
}

// AliasService handles business logic around the alias index
type AliasService struct {
	index     *alias.Index
	locations *repository.LocationRepository
	contents  *repository.ContentRepository
	cache     Cache // nil disables caching
	log       *logger.Logger
}

// NewAliasService creates a new service instance. cache may be nil.
func NewAliasService(
	index *alias.Index,
	locations *repository.LocationRepository,
	contents *repository.ContentRepository,
	cache Cache,
	log *logger.Logger,
) *AliasService {
	return &AliasService{
		index:     index,
		locations: locations,
		contents:  contents,
		cache:     cache,
		log:       log.With("service", "AliasService"),
	}
}

// ============ ALIASES ============

// CreateAlias creates a custom alias for a location or a global alias for a resource
func (s *AliasService) CreateAlias(ctx context.Context, req model.CreateAliasRequest) (model.URLAlias, error) {
	var (
		created model.URLAlias
		err     error
	)
	if req.Resource != "" {
		created, err = s.index.CreateGlobalURLAlias(ctx, req.Resource, req.Path, req.LanguageCode, req.Forward, req.AlwaysAvailable)
	} else {
		var location *model.Location
		location, err = s.locations.LoadLocation(ctx, req.LocationID)
		if err != nil {
			return model.URLAlias{}, err
		}
		created, err = s.index.CreateURLAlias(*location, req.Path, req.LanguageCode, req.Forward, req.AlwaysAvailable)
	}
	if err != nil {
		return model.URLAlias{}, err
	}

	s.log.Info("alias created", "id", created.ID, "path", created.Path, "type", created.Type.String())
	s.invalidate(ctx)
	return created, nil
}

// LookUp returns the alias for path, going through the cache when configured
func (s *AliasService) LookUp(ctx context.Context, path, languageCode string) (model.URLAlias, error) {
	key := s.cacheKey(ctx, path, languageCode)
	if key != "" {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("cache get failed", "path", path, "error", err)
		} else if cached != nil {
			return *cached, nil
		}
	}

	found, err := s.index.LookUp(path, languageCode)
	if err != nil {
		return model.URLAlias{}, err
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, found); err != nil {
			s.log.Warn("cache set failed", "path", path, "error", err)
		}
	}
	return found, nil
}

// Resolve looks up path and works out where a client should be sent.
// History aliases and forwarding location aliases redirect to the location's
// current autogenerated alias in the same language.
func (s *AliasService) Resolve(ctx context.Context, path, languageCode string) (*Resolution, error) {
	found, err := s.LookUp(ctx, path, languageCode)
	if err != nil {
		return nil, err
	}

	res := &Resolution{Alias: found}
	if found.Type != model.TypeLocation || (!found.IsHistory && !found.Forward) {
		return res, nil
	}

	lang := languageCode
	if lang == "" && len(found.LanguageCodes) > 0 {
		lang = found.LanguageCodes[0]
	}
	current := s.index.ListLocationAliases(model.Location{ID: found.LocationID}, false, lang)
	if len(current) > 0 && current[0].Path != found.Path {
		res.RedirectTo = current[0].Path
	}
	return res, nil
}

// Load returns the alias with the given id
func (s *AliasService) Load(id int64) (model.URLAlias, error) {
	return s.index.Load(id)
}

// ListLocationAliases lists the custom or autogenerated aliases of a location
func (s *AliasService) ListLocationAliases(ctx context.Context, locationID int64, custom bool, languageCode string) ([]model.URLAlias, error) {
	location, err := s.locations.LoadLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return s.index.ListLocationAliases(*location, custom, languageCode), nil
}

// ListGlobalAliases lists resource aliases, a page at a time
func (s *AliasService) ListGlobalAliases(languageCode string, offset, limit int) []model.URLAlias {
	return s.index.ListGlobalAliases(languageCode, offset, limit)
}

// RemoveAlias removes a custom alias by id
func (s *AliasService) RemoveAlias(ctx context.Context, id int64) error {
	a, err := s.index.Load(id)
	if err != nil {
		return err
	}
	if _, err := s.index.RemoveAliases([]model.URLAlias{a}); err != nil {
		return err
	}

	s.log.Info("alias removed", "id", id, "path", a.Path)
	s.invalidate(ctx)
	return nil
}

// RemoveLocationAliases removes the custom aliases of a location
func (s *AliasService) RemoveLocationAliases(ctx context.Context, locationID int64) error {
	location, err := s.locations.LoadLocation(ctx, locationID)
	if err != nil {
		return err
	}
	if _, err := s.index.RemoveAliasesForLocation(*location); err != nil {
		return err
	}

	s.log.Info("location aliases removed", "location_id", locationID)
	s.invalidate(ctx)
	return nil
}

// ReverseLookup finds the alias of a location. Always unsupported.
func (s *AliasService) ReverseLookup(ctx context.Context, locationID int64, languageCode string) (model.URLAlias, error) {
	location, err := s.locations.LoadLocation(ctx, locationID)
	if err != nil {
		return model.URLAlias{}, err
	}
	return s.index.ReverseLookup(*location, languageCode)
}

// Count returns the number of alias records
func (s *AliasService) Count() int {
	return s.index.Len()
}

// Rollback restores the alias index to the snapshot it was loaded from.
// Content and locations are not touched.
func (s *AliasService) Rollback(ctx context.Context) error {
	if err := s.index.Rollback(); err != nil {
		return err
	}
	s.log.Warn("alias index rolled back", "records", s.index.Len())
	s.invalidate(ctx)
	return nil
}

// ============ CONTENT TREE ============

// CreateContent creates a draft content object. Drafts get no aliases.
func (s *AliasService) CreateContent(ctx context.Context, req model.CreateContentRequest) (*model.Content, error) {
	content, err := s.contents.Create(ctx, req.MainLanguageCode, req.AlwaysAvailable, req.Names)
	if err != nil {
		return nil, err
	}
	s.log.Info("content created", "content_id", content.VersionInfo.ContentInfo.ID)
	return content, nil
}

// PublishContent publishes content and regenerates the aliases of all its locations.
// When the aliases cannot be generated the previous content state is restored.
func (s *AliasService) PublishContent(ctx context.Context, contentID int64, req model.PublishContentRequest) (*model.Content, error) {
	previous, err := s.contents.LoadContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	content, err := s.contents.Publish(ctx, contentID, req.Names)
	if err != nil {
		return nil, err
	}

	if err := s.index.CreateAliasesForVersion(ctx, content.VersionInfo); err != nil {
		s.log.Warn("alias generation failed, restoring content", "content_id", contentID, "error", err)
		if restoreErr := s.contents.Restore(ctx, previous); restoreErr != nil {
			s.log.Error("content restore failed", "content_id", contentID, "error", restoreErr)
			return nil, errs.Combine(err, restoreErr)
		}
		return nil, err
	}

	s.log.Info("content published",
		"content_id", contentID,
		"version", content.VersionInfo.VersionNo,
	)
	s.invalidate(ctx)
	return content, nil
}

// CreateLocation places content in the tree and generates the location's aliases.
// The location is removed again when its aliases cannot be generated.
func (s *AliasService) CreateLocation(ctx context.Context, req model.CreateLocationRequest) (*model.Location, error) {
	if _, err := s.contents.LoadContent(ctx, req.ContentID); err != nil {
		return nil, err
	}

	location, err := s.locations.Create(ctx, req.ParentLocationID, req.ContentID)
	if err != nil {
		return nil, err
	}

	if err := s.index.CreateAliasesForLocation(ctx, *location); err != nil {
		s.log.Warn("alias generation failed, removing location", "location_id", location.ID, "error", err)
		if deleteErr := s.locations.Delete(ctx, location.ID); deleteErr != nil {
			s.log.Error("location removal failed", "location_id", location.ID, "error", deleteErr)
			return nil, errs.Combine(err, deleteErr)
		}
		return nil, err
	}

	s.log.Info("location created", "location_id", location.ID, "parent_location_id", location.ParentLocationID)
	s.invalidate(ctx)
	return location, nil
}

// MoveLocation moves a location under a new parent and regenerates the
// aliases of the moved subtree in one step. When that fails the move is undone.
func (s *AliasService) MoveLocation(ctx context.Context, locationID int64, req model.MoveLocationRequest) (*model.Location, error) {
	current, err := s.locations.LoadLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	moved, err := s.locations.Move(ctx, locationID, req.ParentLocationID)
	if err != nil {
		return nil, err
	}

	subtree, err := s.subtree(ctx, *moved)
	if err == nil {
		err = s.index.CreateAliasesForLocations(ctx, subtree)
	}
	if err != nil {
		s.log.Warn("alias regeneration failed, undoing move",
			"location_id", locationID,
			"parent_location_id", req.ParentLocationID,
			"error", err,
		)
		if _, undoErr := s.locations.Move(ctx, locationID, current.ParentLocationID); undoErr != nil {
			s.log.Error("undoing move failed", "location_id", locationID, "error", undoErr)
			return nil, errs.Combine(err, undoErr)
		}
		return nil, err
	}

	s.log.Info("location moved",
		"location_id", locationID,
		"parent_location_id", moved.ParentLocationID,
		"regenerated", len(subtree),
	)
	s.invalidate(ctx)
	return moved, nil
}

// ============ HELPERS ============

// subtree returns root and its descendants, parents before children
func (s *AliasService) subtree(ctx context.Context, root model.Location) ([]model.Location, error) {
	locations := []model.Location{root}
	for i := 0; i < len(locations); i++ {
		children, err := s.locations.Children(ctx, locations[i].ID)
		if err != nil {
			return nil, err
		}
		locations = append(locations, children...)
	}
	return locations, nil
}

// cacheKey returns "" when caching is off or the key cannot be read
func (s *AliasService) cacheKey(ctx context.Context, path, languageCode string) string {
	if s.cache == nil {
		return ""
	}
	key, err := s.cache.Key(ctx, path, languageCode)
	if err != nil {
		s.log.Warn("cache key failed", "path", path, "error", err)
		return ""
	}
	return key
}

func (s *AliasService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("cache invalidation failed", "error", err)
	}
}

// NormalizePath turns a request path into alias form: leading slash, no trailing slash
func NormalizePath(path string) string {
	path = strings.TrimRight(path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
