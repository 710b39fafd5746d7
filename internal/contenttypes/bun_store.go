package contenttypes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunStore persists each content type in its own table named after
// Type.Table. All kinds share the Item columns.
type BunStore struct {
	db *bun.DB
}

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// EnsureSchema creates the type table and its (page_id, region) index.
func (s *BunStore) EnsureSchema(ctx context.Context, t *Type) error {
	if s.db == nil {
		return ErrStoreUnavailable
	}
	if _, err := s.db.NewCreateTable().
		Model(t.NewRecord()).
		ModelTableExpr("?", bun.Ident(t.Table())).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create table %s: %w", t.Table(), err)
	}
	if _, err := s.db.NewCreateIndex().
		Table(t.Table()).
		Index(t.Table() + "_page_region_idx").
		Column("page_id", "region", "ordering").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create index %s: %w", t.Table(), err)
	}
	return nil
}

func (s *BunStore) List(ctx context.Context, t *Type, pageID uuid.UUID, region string) ([]Content, error) {
	set := t.NewRecordSet()
	err := s.db.NewSelect().
		Model(set.Model()).
		ModelTableExpr(s.aliased(t)).
		Where("?TableAlias.page_id = ?", pageID).
		Where("?TableAlias.region = ?", region).
		OrderExpr("?TableAlias.ordering ASC").
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.Table(), err)
	}
	return set.Items(), nil
}

func (s *BunStore) ListByPage(ctx context.Context, t *Type, pageID uuid.UUID) ([]Content, error) {
	set := t.NewRecordSet()
	err := s.db.NewSelect().
		Model(set.Model()).
		ModelTableExpr(s.aliased(t)).
		Where("?TableAlias.page_id = ?", pageID).
		OrderExpr("?TableAlias.region ASC").
		OrderExpr("?TableAlias.ordering ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s by page: %w", t.Table(), err)
	}
	return set.Items(), nil
}

func (s *BunStore) Get(ctx context.Context, t *Type, id uuid.UUID) (Content, error) {
	record := t.NewRecord()
	err := s.db.NewSelect().
		Model(record).
		ModelTableExpr(s.aliased(t)).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &ItemNotFoundError{Type: t.Name(), ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", t.Table(), err)
	}
	return record, nil
}

func (s *BunStore) Create(ctx context.Context, t *Type, record Content) (Content, error) {
	if !t.Owns(record) {
		return nil, ErrItemTypeMismatch
	}
	if _, err := s.db.NewInsert().
		Model(record).
		ModelTableExpr("?", bun.Ident(t.Table())).
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert %s: %w", t.Table(), err)
	}
	return record, nil
}

func (s *BunStore) Update(ctx context.Context, t *Type, record Content) (Content, error) {
	if !t.Owns(record) {
		return nil, ErrItemTypeMismatch
	}
	id := record.ContentItem().ID
	result, err := s.db.NewUpdate().
		Model(record).
		ModelTableExpr("?", bun.Ident(t.Table())).
		ExcludeColumn("id", "created_at").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", t.Table(), err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, &ItemNotFoundError{Type: t.Name(), ID: id.String()}
	}
	return record, nil
}

func (s *BunStore) Delete(ctx context.Context, t *Type, id uuid.UUID) error {
	result, err := s.db.NewDelete().
		Model(t.NewRecord()).
		ModelTableExpr("?", bun.Ident(t.Table())).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.Table(), err)
	}
	affected, err := rowsAffected(result, t.Table())
	if err != nil {
		return err
	}
	if affected == 0 {
		return &ItemNotFoundError{Type: t.Name(), ID: id.String()}
	}
	return nil
}

func (s *BunStore) DeleteByPages(ctx context.Context, t *Type, pageIDs []uuid.UUID) (int, error) {
	if len(pageIDs) == 0 {
		return 0, nil
	}
	result, err := s.db.NewDelete().
		Model(t.NewRecord()).
		ModelTableExpr("?", bun.Ident(t.Table())).
		Where("page_id IN (?)", bun.In(pageIDs)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete %s by page: %w", t.Table(), err)
	}
	affected, err := rowsAffected(result, t.Table())
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func rowsAffected(result sql.Result, table string) (int64, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s: rows affected: %w", table, err)
	}
	return affected, nil
}

// aliased renders "<table> AS <model alias>" for selects, where bun qualifies
// every column with the model alias. Writes address the bare table.
func (s *BunStore) aliased(t *Type) (string, any, any) {
	table := s.db.Table(reflect.TypeOf(t.NewRecord()).Elem())
	return "? AS ?", bun.Ident(t.Table()), bun.Safe(string(table.SQLAlias))
}
