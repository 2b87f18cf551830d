package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/darkodi/url-alias/internal/model"
)

var locationColumns = []string{"id", "parent_location_id", "content_id"}

// LocationRepository stores the content tree
type LocationRepository struct {
	db *DB
}

// NewLocationRepository creates a repository over db
func NewLocationRepository(db *DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// LoadLocation returns the location with the given id
func (r *LocationRepository) LoadLocation(ctx context.Context, id int64) (*model.Location, error) {
	sqlStr, args, err := r.db.sb.Select(locationColumns...).
		From("locations").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, Error.Wrap(err)
	}

	loc := &model.Location{}
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&loc.ID, &loc.ParentLocationID, &loc.ContentID)
	if err != nil {
		return nil, notFound(err, "location %d", id)
	}
	return loc, nil
}

// LoadLocations returns every location of a content, ordered by id
func (r *LocationRepository) LoadLocations(ctx context.Context, contentInfo model.ContentInfo) ([]model.Location, error) {
	return r.list(ctx, sq.Eq{"content_id": contentInfo.ID})
}

// Children returns the direct children of a location, ordered by id
func (r *LocationRepository) Children(ctx context.Context, id int64) ([]model.Location, error) {
	return r.list(ctx, sq.And{sq.Eq{"parent_location_id": id}, sq.NotEq{"id": id}})
}

// Create adds a location for contentID under parentID
func (r *LocationRepository) Create(ctx context.Context, parentID, contentID int64) (*model.Location, error) {
	if _, err := r.LoadLocation(ctx, parentID); err != nil {
		return nil, err
	}

	var loc *model.Location
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		id, err := nextID(ctx, tx, r.db.sb, "locations")
		if err != nil {
			return err
		}
		loc = &model.Location{ID: id, ParentLocationID: parentID, ContentID: contentID}
		return exec(ctx, tx, r.db.sb.Insert("locations").
			Columns(locationColumns...).
			Values(loc.ID, loc.ParentLocationID, loc.ContentID))
	})
	if err != nil {
		return nil, err
	}
	return loc, nil
}

// Move puts a location under newParentID. A location cannot be moved below
// itself or one of its descendants, and the root cannot be moved.
func (r *LocationRepository) Move(ctx context.Context, id, newParentID int64) (*model.Location, error) {
	if id == model.RootLocationID {
		return nil, ErrInvalidMove.New("the root location cannot be moved")
	}

	loc, err := r.LoadLocation(ctx, id)
	if err != nil {
		return nil, err
	}

	// walk up from the new parent to the root looking for loc
	for cur := newParentID; ; {
		if cur == id {
			return nil, ErrInvalidMove.New("location %d cannot be moved below itself", id)
		}
		parent, err := r.LoadLocation(ctx, cur)
		if err != nil {
			return nil, err
		}
		if cur == model.RootLocationID {
			break
		}
		cur = parent.ParentLocationID
	}

	err = exec(ctx, r.db, r.db.sb.Update("locations").
		Set("parent_location_id", newParentID).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	loc.ParentLocationID = newParentID
	return loc, nil
}

// Delete removes a leaf location. Locations with children and the root are refused.
func (r *LocationRepository) Delete(ctx context.Context, id int64) error {
	if id == model.RootLocationID {
		return ErrInvalidMove.New("the root location cannot be deleted")
	}
	children, err := r.Children(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return ErrInvalidMove.New("location %d still has %d children", id, len(children))
	}

	sqlStr, args, err := r.db.sb.Delete("locations").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Error.Wrap(err)
	}
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return Error.New("delete location %d: %v", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound.New("location %d", id)
	}
	return nil
}

func (r *LocationRepository) list(ctx context.Context, where sq.Sqlizer) ([]model.Location, error) {
	sqlStr, args, err := r.db.sb.Select(locationColumns...).
		From("locations").
		Where(where).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, Error.Wrap(err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, Error.New("list locations: %v", err)
	}
	defer rows.Close()

	locations := []model.Location{}
	for rows.Next() {
		var loc model.Location
		if err := rows.Scan(&loc.ID, &loc.ParentLocationID, &loc.ContentID); err != nil {
			return nil, Error.New("scan location: %v", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, Error.New("iterate locations: %v", err)
	}
	return locations, nil
}
