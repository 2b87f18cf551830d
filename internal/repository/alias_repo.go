package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/darkodi/url-alias/internal/model"
)

var aliasColumns = []string{
	"id", "type", "location_id", "resource", "path", "language_codes",
	"always_available", "is_custom", "is_history", "forward",
}

// AliasRepository holds the alias fixture the index starts from
type AliasRepository struct {
	db *DB
}

// NewAliasRepository creates a repository over db
func NewAliasRepository(db *DB) *AliasRepository {
	return &AliasRepository{db: db}
}

// LoadFixture reads every stored alias in id order
func (r *AliasRepository) LoadFixture(ctx context.Context) (model.AliasFixture, error) {
	sqlStr, args, err := r.db.sb.Select(aliasColumns...).
		From("url_aliases").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return model.AliasFixture{}, Error.Wrap(err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return model.AliasFixture{}, Error.New("list aliases: %v", err)
	}
	defer rows.Close()

	fixture := model.AliasFixture{Aliases: []model.URLAlias{}}
	for rows.Next() {
		var (
			a         model.URLAlias
			aliasType int
			languages string
		)
		err := rows.Scan(&a.ID, &aliasType, &a.LocationID, &a.Resource, &a.Path, &languages,
			&a.AlwaysAvailable, &a.IsCustom, &a.IsHistory, &a.Forward)
		if err != nil {
			return model.AliasFixture{}, Error.New("scan alias: %v", err)
		}
		a.Type = model.Type(aliasType)
		a.LanguageCodes = splitLanguages(languages)

		fixture.Aliases = append(fixture.Aliases, a)
		fixture.NextID = max(fixture.NextID, a.ID)
	}
	if err := rows.Err(); err != nil {
		return model.AliasFixture{}, Error.New("iterate aliases: %v", err)
	}
	return fixture, nil
}

// Insert stores aliases as part of the fixture
func (r *AliasRepository) Insert(ctx context.Context, aliases ...model.URLAlias) error {
	if len(aliases) == 0 {
		return nil
	}
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		insert := r.db.sb.Insert("url_aliases").Columns(aliasColumns...)
		for _, a := range aliases {
			insert = insert.Values(aliasValues(a)...)
		}
		return exec(ctx, tx, insert)
	})
}

func aliasValues(a model.URLAlias) []any {
	return []any{
		a.ID, int(a.Type), a.LocationID, a.Resource, a.Path, strings.Join(a.LanguageCodes, ","),
		a.AlwaysAvailable, a.IsCustom, a.IsHistory, a.Forward,
	}
}

func splitLanguages(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
