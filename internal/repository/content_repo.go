package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/darkodi/url-alias/internal/model"
)

// ContentRepository stores content objects and their names
type ContentRepository struct {
	db *DB
}

// NewContentRepository creates a repository over db
func NewContentRepository(db *DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// LoadContent returns the current version of a content object
func (r *ContentRepository) LoadContent(ctx context.Context, contentID int64) (*model.Content, error) {
	return r.load(ctx, r.db, contentID)
}

// Create stores a new draft with the given names
func (r *ContentRepository) Create(ctx context.Context, mainLanguageCode string, alwaysAvailable bool, names map[string]string) (*model.Content, error) {
	var content *model.Content
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		id, err := nextID(ctx, tx, r.db.sb, "contents")
		if err != nil {
			return err
		}

		err = exec(ctx, tx, r.db.sb.Insert("contents").
			Columns("id", "main_language_code", "always_available", "version_no", "status").
			Values(id, mainLanguageCode, alwaysAvailable, 1, int(model.StatusDraft)))
		if err != nil {
			return err
		}
		if err := r.replaceNames(ctx, tx, id, names); err != nil {
			return err
		}

		content, err = r.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// Publish marks the content published. A draft keeps its version number,
// republishing bumps it. Non-empty names replace the current ones.
func (r *ContentRepository) Publish(ctx context.Context, contentID int64, names map[string]string) (*model.Content, error) {
	var content *model.Content
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		current, err := r.load(ctx, tx, contentID)
		if err != nil {
			return err
		}

		versionNo := current.VersionInfo.VersionNo
		if current.VersionInfo.Status != model.StatusDraft {
			versionNo++
		}

		err = exec(ctx, tx, r.db.sb.Update("contents").
			Set("status", int(model.StatusPublished)).
			Set("version_no", versionNo).
			Where(sq.Eq{"id": contentID}))
		if err != nil {
			return err
		}

		if len(names) > 0 {
			if err := r.replaceNames(ctx, tx, contentID, names); err != nil {
				return err
			}
		}

		content, err = r.load(ctx, tx, contentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// Restore writes back a previously loaded state of content: status, version
// number and names.
func (r *ContentRepository) Restore(ctx context.Context, content *model.Content) error {
	info := content.VersionInfo
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := r.load(ctx, tx, info.ContentInfo.ID); err != nil {
			return err
		}
		err := exec(ctx, tx, r.db.sb.Update("contents").
			Set("status", int(info.Status)).
			Set("version_no", info.VersionNo).
			Where(sq.Eq{"id": info.ContentInfo.ID}))
		if err != nil {
			return err
		}
		return r.replaceNames(ctx, tx, info.ContentInfo.ID, info.Names)
	})
}

func (r *ContentRepository) replaceNames(ctx context.Context, q querier, contentID int64, names map[string]string) error {
	if err := exec(ctx, q, r.db.sb.Delete("content_names").Where(sq.Eq{"content_id": contentID})); err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}

	insert := r.db.sb.Insert("content_names").Columns("content_id", "language_code", "name")
	for languageCode, name := range names {
		insert = insert.Values(contentID, languageCode, name)
	}
	return exec(ctx, q, insert)
}

func (r *ContentRepository) load(ctx context.Context, q querier, contentID int64) (*model.Content, error) {
	sqlStr, args, err := r.db.sb.Select("id", "main_language_code", "always_available", "version_no", "status").
		From("contents").
		Where(sq.Eq{"id": contentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, Error.Wrap(err)
	}

	var (
		info      model.ContentInfo
		versionNo int
		status    int
	)
	err = q.QueryRowContext(ctx, sqlStr, args...).Scan(&info.ID, &info.MainLanguageCode, &info.AlwaysAvailable, &versionNo, &status)
	if err != nil {
		return nil, notFound(err, "content %d", contentID)
	}

	names, err := r.names(ctx, q, contentID)
	if err != nil {
		return nil, err
	}

	return &model.Content{VersionInfo: model.VersionInfo{
		VersionNo:   versionNo,
		Status:      model.VersionStatus(status),
		Names:       names,
		ContentInfo: info,
	}}, nil
}

func (r *ContentRepository) names(ctx context.Context, q querier, contentID int64) (map[string]string, error) {
	sqlStr, args, err := r.db.sb.Select("language_code", "name").
		From("content_names").
		Where(sq.Eq{"content_id": contentID}).
		ToSql()
	if err != nil {
		return nil, Error.Wrap(err)
	}

	rows, err := q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, Error.New("list content names: %v", err)
	}
	defer rows.Close()

	names := map[string]string{}
	for rows.Next() {
		var languageCode, name string
		if err := rows.Scan(&languageCode, &name); err != nil {
			return nil, Error.New("scan content name: %v", err)
		}
		names[languageCode] = name
	}
	if err := rows.Err(); err != nil {
		return nil, Error.New("iterate content names: %v", err)
	}
	return names, nil
}
