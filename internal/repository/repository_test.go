package repository

import (
	"context"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkodi/url-alias/internal/config"
	"github.com/darkodi/url-alias/internal/model"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	// Use in-memory SQLite for tests
	db, err := Open(&config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_SeedsRoot(t *testing.T) {
	db := setupTestDB(t)
	locations := NewLocationRepository(db)

	root, err := locations.LoadLocation(context.Background(), model.RootLocationID)
	require.NoError(t, err)
	assert.Equal(t, model.RootLocationID, root.ID)
	assert.Equal(t, "sqlite3", db.Driver())
}

func TestLocationRepository(t *testing.T) {
	ctx := context.Background()
	locations := NewLocationRepository(setupTestDB(t))

	home, err := locations.Create(ctx, model.RootLocationID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), home.ID)

	contact, err := locations.Create(ctx, home.ID, 11)
	require.NoError(t, err)
	second, err := locations.Create(ctx, model.RootLocationID, 11)
	require.NoError(t, err)

	loaded, err := locations.LoadLocation(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, *contact, *loaded)

	byContent, err := locations.LoadLocations(ctx, model.ContentInfo{ID: 11})
	require.NoError(t, err)
	assert.Equal(t, []model.Location{*contact, *second}, byContent)

	children, err := locations.Children(ctx, model.RootLocationID)
	require.NoError(t, err)
	assert.Equal(t, []model.Location{*home, *second}, children)

	_, err = locations.LoadLocation(ctx, 99)
	assert.True(t, ErrNotFound.Has(err))

	_, err = locations.Create(ctx, 99, 12)
	assert.True(t, ErrNotFound.Has(err))
}

func TestPlaceholderFor(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"sqlite3", "SELECT id FROM locations WHERE id = ?"},
		{"postgres", "SELECT id FROM locations WHERE id = $1"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			sqlStr, _, err := sq.StatementBuilder.PlaceholderFormat(placeholderFor(tt.driver)).
				Select("id").From("locations").Where(sq.Eq{"id": 1}).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.want, sqlStr)
		})
	}
}

func TestLocationRepository_Delete(t *testing.T) {
	ctx := context.Background()
	locations := NewLocationRepository(setupTestDB(t))

	parent, err := locations.Create(ctx, model.RootLocationID, 10)
	require.NoError(t, err)
	child, err := locations.Create(ctx, parent.ID, 11)
	require.NoError(t, err)

	assert.True(t, ErrInvalidMove.Has(locations.Delete(ctx, parent.ID)))
	assert.True(t, ErrInvalidMove.Has(locations.Delete(ctx, model.RootLocationID)))

	require.NoError(t, locations.Delete(ctx, child.ID))
	_, err = locations.LoadLocation(ctx, child.ID)
	assert.True(t, ErrNotFound.Has(err))
	assert.True(t, ErrNotFound.Has(locations.Delete(ctx, child.ID)))
}

func TestLocationRepository_Move(t *testing.T) {
	ctx := context.Background()
	locations := NewLocationRepository(setupTestDB(t))

	a, err := locations.Create(ctx, model.RootLocationID, 10)
	require.NoError(t, err)
	b, err := locations.Create(ctx, a.ID, 11)
	require.NoError(t, err)
	c, err := locations.Create(ctx, b.ID, 12)
	require.NoError(t, err)

	moved, err := locations.Move(ctx, c.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, moved.ParentLocationID)

	loaded, err := locations.LoadLocation(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, loaded.ParentLocationID)

	tests := []struct {
		name      string
		id        int64
		newParent int64
		check     func(error) bool
	}{
		{"below itself", a.ID, a.ID, ErrInvalidMove.Has},
		{"below descendant", a.ID, b.ID, ErrInvalidMove.Has},
		{"root", model.RootLocationID, a.ID, ErrInvalidMove.Has},
		{"unknown parent", b.ID, 99, ErrNotFound.Has},
		{"unknown location", 99, a.ID, ErrNotFound.Has},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := locations.Move(ctx, tt.id, tt.newParent)
			require.Error(t, err)
			assert.True(t, tt.check(err), err)
		})
	}
}

func TestContentRepository(t *testing.T) {
	ctx := context.Background()
	contents := NewContentRepository(setupTestDB(t))

	created, err := contents.Create(ctx, "eng-GB", true, map[string]string{"eng-GB": "Home", "ger-DE": "Startseite"})
	require.NoError(t, err)

	info := created.VersionInfo
	assert.Equal(t, int64(1), info.ContentInfo.ID)
	assert.Equal(t, "eng-GB", info.ContentInfo.MainLanguageCode)
	assert.True(t, info.ContentInfo.AlwaysAvailable)
	assert.Equal(t, model.StatusDraft, info.Status)
	assert.Equal(t, 1, info.VersionNo)
	assert.Equal(t, map[string]string{"eng-GB": "Home", "ger-DE": "Startseite"}, info.Names)

	published, err := contents.Publish(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, published.VersionInfo.Status)
	assert.Equal(t, 1, published.VersionInfo.VersionNo)
	assert.Equal(t, info.Names, published.VersionInfo.Names)

	republished, err := contents.Publish(ctx, 1, map[string]string{"eng-GB": "Welcome"})
	require.NoError(t, err)
	assert.Equal(t, 2, republished.VersionInfo.VersionNo)
	assert.Equal(t, map[string]string{"eng-GB": "Welcome"}, republished.VersionInfo.Names)

	loaded, err := contents.LoadContent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, republished, loaded)

	_, err = contents.LoadContent(ctx, 42)
	assert.True(t, ErrNotFound.Has(err))
	_, err = contents.Publish(ctx, 42, nil)
	assert.True(t, ErrNotFound.Has(err))
}

func TestContentRepository_Restore(t *testing.T) {
	ctx := context.Background()
	contents := NewContentRepository(setupTestDB(t))

	_, err := contents.Create(ctx, "eng-GB", false, map[string]string{"eng-GB": "News"})
	require.NoError(t, err)
	published, err := contents.Publish(ctx, 1, nil)
	require.NoError(t, err)

	_, err = contents.Publish(ctx, 1, map[string]string{"eng-GB": "Latest", "ger-DE": "Neuigkeiten"})
	require.NoError(t, err)

	require.NoError(t, contents.Restore(ctx, published))
	loaded, err := contents.LoadContent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, published, loaded)

	missing := &model.Content{VersionInfo: model.VersionInfo{ContentInfo: model.ContentInfo{ID: 42}}}
	assert.True(t, ErrNotFound.Has(contents.Restore(ctx, missing)))
}

func TestAliasRepository(t *testing.T) {
	ctx := context.Background()
	aliases := NewAliasRepository(setupTestDB(t))

	empty, err := aliases.LoadFixture(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Aliases)
	assert.Zero(t, empty.NextID)

	stored := []model.URLAlias{
		{ID: 3, Type: model.TypeLocation, LocationID: 2, Path: "/Home", LanguageCodes: []string{"eng-GB", "ger-DE"}, AlwaysAvailable: true},
		{ID: 7, Type: model.TypeResource, Resource: "content/search", Path: "/search", LanguageCodes: []string{"eng-GB"}, IsCustom: true, Forward: true},
		{ID: 5, Type: model.TypeLocation, LocationID: 2, Path: "/Old-Home", LanguageCodes: []string{"eng-GB"}, IsHistory: true},
	}
	require.NoError(t, aliases.Insert(ctx, stored...))

	fixture, err := aliases.LoadFixture(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), fixture.NextID)
	assert.Equal(t, []model.URLAlias{stored[0], stored[2], stored[1]}, fixture.Aliases)
}

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	seeded, err := SeedDemo(ctx, db)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = SeedDemo(ctx, db)
	require.NoError(t, err)
	assert.False(t, seeded)

	fixture, err := NewAliasRepository(db).LoadFixture(ctx)
	require.NoError(t, err)
	assert.Len(t, fixture.Aliases, 3)

	content, err := NewContentRepository(db).LoadContent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, content.VersionInfo.Status)
	assert.Equal(t, "Kontakt", content.VersionInfo.Names["ger-DE"])

	loc, err := NewLocationRepository(db).LoadLocation(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), loc.ParentLocationID)
}
