// Package alias maintains the URL alias index over the content tree.
//
// The index is an in-memory table of alias records. Autogenerated aliases are
// derived from content names whenever content is published or a location is
// created or moved; custom and global aliases are added explicitly. Superseded
// autogenerated aliases are kept as history records so old paths keep
// resolving.
//
// Collaborators are always called before the index lock is taken, and every
// mutation is applied to a copy of the table that replaces the live one only
// when the whole operation succeeded.
package alias

import (
	"context"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/darkodi/url-alias/internal/lazy"
	"github.com/darkodi/url-alias/internal/model"
)

const (
	nodeIdentifier    = "eznode"
	contentViewPrefix = "module:content/view/full/"
	modulePrefix      = "module:"
)

var resourcePattern = regexp.MustCompile(`^([a-zA-Z0-9_]+):(.+)$`)

// LocationLoader loads locations from the content tree
type LocationLoader interface {
	LoadLocation(ctx context.Context, id int64) (*model.Location, error)
	LoadLocations(ctx context.Context, contentInfo model.ContentInfo) ([]model.Location, error)
}

// ContentLoader loads the current version of a content object
type ContentLoader interface {
	LoadContent(ctx context.Context, contentID int64) (*model.Content, error)
}

// PathGenerator turns a name into a path segment
type PathGenerator interface {
	Generate(name string) string
}

// Index is the URL alias index. It is safe for concurrent use.
type Index struct {
	locations LocationLoader
	contents  ContentLoader
	paths     PathGenerator
	fixture   *lazy.Value[model.AliasFixture]

	mu sync.RWMutex
	t  *table
}

// New creates an index loaded from fixture. The fixture is kept and reused by Rollback.
func New(locations LocationLoader, contents ContentLoader, paths PathGenerator, fixture *lazy.Value[model.AliasFixture]) (*Index, error) {
	ix := &Index{
		locations: locations,
		contents:  contents,
		paths:     paths,
		fixture:   fixture,
	}
	if err := ix.Rollback(); err != nil {
		return nil, err
	}
	return ix, nil
}

// Rollback discards all state and reloads the fixture snapshot
func (ix *Index) Rollback() error {
	fixture, err := ix.fixture.Get()
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.t = newTable(fixture)
	return nil
}

// Len returns the number of records, history included
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.t.len()
}

// CreateURLAlias creates a custom alias for location.
func (ix *Index) CreateURLAlias(location model.Location, path, languageCode string, forward, alwaysAvailable bool) (model.URLAlias, error) {
	var created model.URLAlias
	err := ix.mutate(func(t *table) error {
		if err := checkAliasNotExists(t, path, languageCode, true); err != nil {
			return err
		}
		created = model.URLAlias{
			ID:              t.allocID(),
			Type:            model.TypeLocation,
			LocationID:      location.ID,
			Path:            path,
			LanguageCodes:   []string{languageCode},
			AlwaysAvailable: alwaysAvailable,
			IsCustom:        true,
			Forward:         forward,
		}
		t.put(created)
		return nil
	})
	if err != nil {
		return model.URLAlias{}, err
	}
	return created.Clone(), nil
}

// CreateGlobalURLAlias creates a custom alias for a resource given as identifier:value.
//
// eznode:<location id> and module:content/view/full/.../<location id> resources
// are location aliases and go through CreateURLAlias.
func (ix *Index) CreateGlobalURLAlias(ctx context.Context, resource, path, languageCode string, forward, alwaysAvailable bool) (model.URLAlias, error) {
	m := resourcePattern.FindStringSubmatch(resource)
	if m == nil {
		return model.URLAlias{}, ErrInvalidResource.New("resource %q is not of the form identifier:value", resource)
	}

	if m[1] == nodeIdentifier || strings.HasPrefix(resource, contentViewPrefix) {
		raw := m[2]
		if m[1] != nodeIdentifier {
			raw = raw[strings.LastIndex(raw, "/")+1:]
		}
		locationID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return model.URLAlias{}, ErrInvalidResource.New("resource %q does not name a location id", resource)
		}
		location, err := ix.locations.LoadLocation(ctx, locationID)
		if err != nil {
			return model.URLAlias{}, err
		}
		return ix.CreateURLAlias(*location, path, languageCode, forward, alwaysAvailable)
	}

	var created model.URLAlias
	err := ix.mutate(func(t *table) error {
		if err := checkAliasNotExists(t, path, languageCode, true); err != nil {
			return err
		}
		created = model.URLAlias{
			ID:              t.allocID(),
			Type:            model.TypeResource,
			Resource:        strings.TrimPrefix(resource, modulePrefix),
			Path:            path,
			LanguageCodes:   []string{languageCode},
			AlwaysAvailable: alwaysAvailable,
			IsCustom:        true,
			Forward:         forward,
		}
		t.put(created)
		return nil
	})
	if err != nil {
		return model.URLAlias{}, err
	}
	return created.Clone(), nil
}

// ListLocationAliases lists the active custom or autogenerated aliases of location.
// An empty languageCode lists all languages. When languageCode matches nothing
// the list is retried once without the language filter.
func (ix *Index) ListLocationAliases(location model.Location, custom bool, languageCode string) []model.URLAlias {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return listLocationAliases(ix.t, location.ID, custom, filterFor(languageCode))
}

// ListGlobalAliases lists resource aliases. A negative limit means no limit.
func (ix *Index) ListGlobalAliases(languageCode string, offset, limit int) []model.URLAlias {
	ix.mu.RLock()
	aliases := ix.t.filter(func(a model.URLAlias) bool {
		return a.Type == model.TypeResource && (languageCode == "" || a.HasLanguage(languageCode))
	})
	ix.mu.RUnlock()

	offset = max(offset, 0)
	if offset >= len(aliases) {
		return []model.URLAlias{}
	}
	aliases = aliases[offset:]
	if limit >= 0 && limit < len(aliases) {
		aliases = aliases[:limit]
	}
	return aliases
}

// RemoveAliases deletes custom aliases. If any alias in the list is
// autogenerated nothing is removed and ErrInvalidArgument is returned.
func (ix *Index) RemoveAliases(aliases []model.URLAlias) (bool, error) {
	err := ix.mutate(func(t *table) error {
		return removeAliases(t, aliases)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// LookUp returns the alias with the exact path url. Active aliases win over
// history ones; among equals the first in iteration order is returned.
// An empty languageCode matches any language.
func (ix *Index) LookUp(url, languageCode string) (model.URLAlias, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var history *model.URLAlias
	for _, id := range ix.t.order {
		a := ix.t.records[id]
		if a.Path != url || (languageCode != "" && !a.HasLanguage(languageCode)) {
			continue
		}
		if !a.IsHistory {
			return a.Clone(), nil
		}
		if history == nil {
			h := a.Clone()
			history = &h
		}
	}
	if history != nil {
		return *history, nil
	}
	return model.URLAlias{}, ErrNotFound.New("no alias for URL %q in language %q could be found", url, languageCode)
}

// Load returns the alias with the given id
func (ix *Index) Load(id int64) (model.URLAlias, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	a, ok := ix.t.get(id)
	if !ok {
		return model.URLAlias{}, ErrNotFound.New("no alias with id %d", id)
	}
	return a.Clone(), nil
}

// ReverseLookup is not implemented and always fails with ErrUnsupported.
func (ix *Index) ReverseLookup(location model.Location, languageCode string) (model.URLAlias, error) {
	return model.URLAlias{}, ErrUnsupported.New("reverse lookup of location %d is not implemented", location.ID)
}

// CreateAliasesForVersion regenerates the aliases of every location of the
// version's content. Old aliases are moved to history first, even when the
// content turns out not to be published.
func (ix *Index) CreateAliasesForVersion(ctx context.Context, versionInfo model.VersionInfo) error {
	locations, err := ix.locations.LoadLocations(ctx, versionInfo.ContentInfo)
	if err != nil {
		return err
	}

	plans := make([]*generation, 0, len(locations))
	for _, location := range locations {
		p, err := ix.prepare(ctx, location)
		if err != nil {
			return err
		}
		plans = append(plans, p)
	}

	return ix.mutate(func(t *table) error {
		for _, p := range plans {
			obsoleteOldAliases(t, p.location.ID)
			if err := ix.generate(t, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateAliasesForLocation autogenerates the aliases of location from its
// content's current names. Previous autogenerated aliases become history.
// Nothing happens unless the content is published.
func (ix *Index) CreateAliasesForLocation(ctx context.Context, location model.Location) error {
	return ix.CreateAliasesForLocations(ctx, []model.Location{location})
}

// CreateAliasesForLocations runs CreateAliasesForLocation for each location in
// order as one operation: either every location gets its new aliases or the
// index is left unchanged. Parents must come before their children.
func (ix *Index) CreateAliasesForLocations(ctx context.Context, locations []model.Location) error {
	plans := make([]*generation, 0, len(locations))
	for _, location := range locations {
		p, err := ix.prepare(ctx, location)
		if err != nil {
			return err
		}
		if p.content != nil {
			plans = append(plans, p)
		}
	}
	if len(plans) == 0 {
		return nil
	}

	return ix.mutate(func(t *table) error {
		for _, p := range plans {
			if err := ix.generate(t, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveAliasesForLocation deletes the custom aliases of location.
// Autogenerated aliases are not listed and therefore stay.
func (ix *Index) RemoveAliasesForLocation(location model.Location) (bool, error) {
	err := ix.mutate(func(t *table) error {
		return removeAliases(t, listLocationAliases(t, location.ID, true, filterFor("")))
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// generation is what CreateAliasesForLocation needs from collaborators.
// content is nil for unpublished content.
type generation struct {
	location model.Location
	parent   *model.Location
	content  *model.Content
}

func (ix *Index) prepare(ctx context.Context, location model.Location) (*generation, error) {
	p := &generation{location: location}

	content, err := ix.contents.LoadContent(ctx, location.ContentID)
	if err != nil {
		return nil, err
	}
	if content.VersionInfo.Status != model.StatusPublished {
		return p, nil
	}
	p.content = content

	if hasParentPath(location) {
		parent, err := ix.locations.LoadLocation(ctx, location.ParentLocationID)
		if err != nil {
			return nil, err
		}
		p.parent = parent
	}
	return p, nil
}

func (ix *Index) generate(t *table, p *generation) error {
	if p.content == nil {
		return nil
	}

	versionInfo := p.content.VersionInfo
	contentInfo := versionInfo.ContentInfo

	obsoleteOldAliases(t, p.location.ID)

	languages := make([]string, 0, len(versionInfo.Names))
	for languageCode := range versionInfo.Names {
		languages = append(languages, languageCode)
	}
	slices.Sort(languages)

	for _, languageCode := range languages {
		path, err := ix.createURLAliasPath(t, p.parent, versionInfo.Names[languageCode], languageCode)
		if err != nil {
			return err
		}
		if err := checkAliasNotExists(t, path, languageCode, false); err != nil {
			return err
		}
		t.put(model.URLAlias{
			ID:              t.allocID(),
			Type:            model.TypeLocation,
			LocationID:      p.location.ID,
			Path:            path,
			LanguageCodes:   []string{languageCode},
			AlwaysAvailable: contentInfo.MainLanguageCode == languageCode && contentInfo.AlwaysAvailable,
		})
	}
	return nil
}

// createURLAliasPath composes parent path and name segment. Children of the
// root get no parent path.
func (ix *Index) createURLAliasPath(t *table, parent *model.Location, name, languageCode string) (string, error) {
	parentPath := ""
	if parent != nil {
		candidates := listLocationAliases(t, parent.ID, false, filterFor(""))
		p, err := ResolveParent(candidates, languageCode)
		if err != nil {
			return "", ErrResolution.New("location %d has no autogenerated alias to compose under", parent.ID)
		}
		parentPath = p.Path
	}
	return parentPath + "/" + ix.paths.Generate(name), nil
}

func (ix *Index) mutate(fn func(t *table) error) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	work := ix.t.clone()
	if err := fn(work); err != nil {
		return err
	}
	ix.t = work
	return nil
}

func hasParentPath(location model.Location) bool {
	return location.ID != model.RootLocationID && location.ParentLocationID != model.RootLocationID
}

func listLocationAliases(t *table, locationID int64, custom bool, f languageFilter) []model.URLAlias {
	aliases := t.filter(func(a model.URLAlias) bool {
		return a.PointsTo(locationID) && a.IsCustom == custom && f.matches(a) && !a.IsHistory
	})
	if len(aliases) == 0 {
		if next, ok := f.fallback(); ok {
			return listLocationAliases(t, locationID, custom, next)
		}
	}
	return aliases
}

func removeAliases(t *table, aliases []model.URLAlias) error {
	for _, a := range aliases {
		if !a.IsCustom {
			return ErrInvalidArgument.New("alias %d is autogenerated and cannot be removed", a.ID)
		}
	}
	for _, a := range aliases {
		t.delete(a.ID)
	}
	return nil
}

// obsoleteOldAliases moves the active autogenerated aliases of a location to history
func obsoleteOldAliases(t *table, locationID int64) {
	for _, a := range listLocationAliases(t, locationID, false, filterFor("")) {
		obsoleteAlias(t, a)
	}
}

// obsoleteAlias replaces a by its history version under the same id, dropping
// any older history generation of the same path first.
func obsoleteAlias(t *table, a model.URLAlias) {
	purgeObsoleteAliases(t, a.Path)
	t.delete(a.ID)
	t.put(a.Historized())
}

// purgeObsoleteAliases deletes autogenerated history records for path
func purgeObsoleteAliases(t *table, path string) {
	stale := t.filter(func(a model.URLAlias) bool {
		return a.Path == path && a.IsHistory && !a.IsCustom
	})
	for _, a := range stale {
		t.delete(a.ID)
	}
}

// checkAliasNotExists rejects path in languageCode when an active alias holds it.
// A custom alias may not take any active path; an autogenerated one only
// collides with other autogenerated aliases.
func checkAliasNotExists(t *table, path, languageCode string, custom bool) error {
	for _, id := range t.order {
		a := t.records[id]
		if a.IsHistory || a.Path != path || !a.HasLanguage(languageCode) {
			continue
		}
		if custom || !a.IsCustom {
			return ErrDuplicatePath.New("an alias for path %q in language %q already exists", path, languageCode)
		}
	}
	return nil
}
