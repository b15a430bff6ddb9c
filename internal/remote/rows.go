package remote

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
)

// Row is the remote store's row shape: snake_case column names, driver-typed
// values (strings, numbers, time.Time, jsonb bytes).
type Row = map[string]any

type Op string

const (
	OpEq    Op = "eq"
	OpIn    Op = "in"
	OpILike Op = "ilike"
)

type Cond struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Cond {
	return Cond{Column: column, Op: OpEq, Value: value}
}

func In(column string, values []string) Cond {
	return Cond{Column: column, Op: OpIn, Value: values}
}

func ILike(column, pattern string) Cond {
	return Cond{Column: column, Op: OpILike, Value: pattern}
}

type Order struct {
	Column    string
	Ascending bool
}

// ErrNotFound covers both "no such row" and driver-level not-found; callers
// treat lookup errors and misses identically and fall back to local data.
var ErrNotFound = errors.New("remote: row not found")

// Rows is the narrow row CRUD surface the repositories consume. It is the
// boundary to the hosted relational store; nothing above it sees gorm.
type Rows interface {
	Select(ctx context.Context, table string, conds []Cond, order *Order) ([]Row, error)
	SelectOne(ctx context.Context, table string, conds []Cond) (Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table string, id string, patch Row) (Row, error)
	Delete(ctx context.Context, table string, conds []Cond) (int64, error)
}

type Client struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClient(dsn string, baseLog *logger.Logger) (*Client, error) {
	clientLog := baseLog.With("client", "RemoteRows")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return &Client{db: db, log: clientLog}, nil
}

// NewClientWithDB wires an existing gorm handle (tests, pooled setups).
func NewClientWithDB(db *gorm.DB, baseLog *logger.Logger) *Client {
	return &Client{db: db, log: baseLog.With("client", "RemoteRows")}
}

func (c *Client) scope(ctx context.Context, table string, conds []Cond) *gorm.DB {
	tx := c.db.WithContext(ctx).Table(table)
	for _, cond := range conds {
		switch cond.Op {
		case OpIn:
			tx = tx.Where(cond.Column+" IN ?", cond.Value)
		case OpILike:
			tx = tx.Where(cond.Column+" ILIKE ?", cond.Value)
		default:
			tx = tx.Where(cond.Column+" = ?", cond.Value)
		}
	}
	return tx
}

func (c *Client) Select(ctx context.Context, table string, conds []Cond, order *Order) ([]Row, error) {
	tx := c.scope(ctx, table, conds)
	if order != nil {
		direction := "DESC"
		if order.Ascending {
			direction = "ASC"
		}
		tx = tx.Order(order.Column + " " + direction)
	}
	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) SelectOne(ctx context.Context, table string, conds []Cond) (Row, error) {
	row := map[string]any{}
	if err := c.scope(ctx, table, conds).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row, nil
}

// Insert stores the row and returns the canonical stored copy. When no id is
// supplied it assigns a fresh UUID, standing in for the table's
// uuid_generate_v4() column default, then re-reads so callers observe
// server-applied defaults.
func (c *Client) Insert(ctx context.Context, table string, row Row) (Row, error) {
	stored := make(map[string]any, len(row)+1)
	for k, v := range row {
		stored[k] = v
	}
	if id, _ := stored["id"].(string); id == "" {
		stored["id"] = uuid.NewString()
	}
	if err := c.db.WithContext(ctx).Table(table).Create(stored).Error; err != nil {
		return nil, err
	}
	return c.SelectOne(ctx, table, []Cond{Eq("id", stored["id"])})
}

func (c *Client) Update(ctx context.Context, table string, id string, patch Row) (Row, error) {
	res := c.db.WithContext(ctx).Table(table).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return c.SelectOne(ctx, table, []Cond{Eq("id", id)})
}

func (c *Client) Delete(ctx context.Context, table string, conds []Cond) (int64, error) {
	res := c.scope(ctx, table, conds).Delete(nil)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
