package repository

import (
	"context"
	"database/sql"

	"github.com/darkodi/url-alias/internal/model"
)

// SeedDemo fills an empty database with a small published tree and its
// autogenerated aliases. It reports whether anything was written.
//
//	1 root
//	└── 2 Home
//	    └── 3 Contact Us / Kontakt
func SeedDemo(ctx context.Context, db *DB) (bool, error) {
	empty := true
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		id, err := nextID(ctx, tx, db.sb, "contents")
		if err != nil {
			return err
		}
		if id != 1 {
			empty = false
			return nil
		}

		contents := []struct {
			id       int64
			main     string
			names    map[string]string
			location model.Location
		}{
			{1, "eng-GB", map[string]string{"eng-GB": "Home"}, model.Location{ID: 2, ParentLocationID: model.RootLocationID, ContentID: 1}},
			{2, "eng-GB", map[string]string{"eng-GB": "Contact Us", "ger-DE": "Kontakt"}, model.Location{ID: 3, ParentLocationID: 2, ContentID: 2}},
		}

		contentRepo := &ContentRepository{db: db}
		for _, c := range contents {
			err := exec(ctx, tx, db.sb.Insert("contents").
				Columns("id", "main_language_code", "always_available", "version_no", "status").
				Values(c.id, c.main, true, 1, int(model.StatusPublished)))
			if err != nil {
				return err
			}
			if err := contentRepo.replaceNames(ctx, tx, c.id, c.names); err != nil {
				return err
			}
			err = exec(ctx, tx, db.sb.Insert("locations").
				Columns(locationColumns...).
				Values(c.location.ID, c.location.ParentLocationID, c.location.ContentID))
			if err != nil {
				return err
			}
		}

		aliases := []model.URLAlias{
			{ID: 1, Type: model.TypeLocation, LocationID: 2, Path: "/Home", LanguageCodes: []string{"eng-GB"}, AlwaysAvailable: true},
			{ID: 2, Type: model.TypeLocation, LocationID: 3, Path: "/Home/Contact-Us", LanguageCodes: []string{"eng-GB"}, AlwaysAvailable: true},
			{ID: 3, Type: model.TypeLocation, LocationID: 3, Path: "/Home/Kontakt", LanguageCodes: []string{"ger-DE"}},
		}
		insert := db.sb.Insert("url_aliases").Columns(aliasColumns...)
		for _, a := range aliases {
			insert = insert.Values(aliasValues(a)...)
		}
		return exec(ctx, tx, insert)
	})
	if err != nil {
		return false, err
	}
	return empty, nil
}
