package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ontoptea/orderhub/internal/adapter/storage"
	"github.com/ontoptea/orderhub/internal/core/domain"
	"github.com/ontoptea/orderhub/internal/core/port"
)

type Repository struct {
	db *storage.DB
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

var orderColumns = []string{
	"id", "order_no", "user_id", "session_id", "items",
	"total_amount", "discount_amount", "final_amount",
	"remark", "status", "created_at", "updated_at",
}

// CreateOrder inserts the order and decrements stock for every line item in
// one transaction. The decrement is conditional on remaining stock, so a
// concurrent order racing for the last units fails the whole transaction
// with ErrInsufficientStock instead of losing the update.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		orderSt := r.db.QueryBuilder.
			Insert("orders").
			Columns("order_no", "user_id", "session_id", "items",
				"total_amount", "discount_amount", "final_amount",
				"remark", "status", "created_at", "updated_at").
			Values(order.Number, order.UserID, nullString(order.SessionID), string(itemsJSON),
				order.TotalAmount, order.DiscountAmount, order.FinalAmount,
				nullString(order.Remark), order.Status, order.CreatedAt, order.CreatedAt).
			Suffix("returning id, created_at, updated_at")

		sql, args, err := orderSt.ToSql()
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, sql, args...).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}

		for _, item := range order.Items {
			statement := r.db.QueryBuilder.
				Update("products").
				Set("stock", sq.Expr("stock - ?", item.Quantity)).
				Set("available", sq.Expr("available AND stock - ? > 0", item.Quantity)).
				Set("updated_at", sq.Expr("now()")).
				Where(sq.Eq{"id": item.ProductID}).
				Where(sq.Expr("stock >= ?", item.Quantity))

			sql, args, err := statement.ToSql()
			if err != nil {
				return err
			}

			tag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return domain.ErrInsufficientStock
			}
		}

		return nil
	})
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}

	return order, nil
}

func (r *Repository) ReadOrder(ctx context.Context, orderID uint64) (*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": orderID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	return r.scanOrder(r.db.QueryRow(ctx, sql, args...))
}

func (r *Repository) UpdateOrderStatus(ctx context.Context, orderID uint64, status domain.OrderStatus) (*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Update("orders").
		Set("status", status).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": orderID}).
		Suffix("returning " + strings.Join(orderColumns, ", "))

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	return r.scanOrder(r.db.QueryRow(ctx, sql, args...))
}

func (r *Repository) ListOrders(ctx context.Context, filter port.OrderFilter) ([]*domain.Order, int, error) {
	conditions := make([]sq.Sqlizer, 0, 4)
	if filter.Status != "" {
		conditions = append(conditions, sq.Eq{"status": filter.Status})
	}
	if filter.SessionID != "" {
		conditions = append(conditions, sq.Eq{"session_id": filter.SessionID})
	}
	if filter.UserID != 0 {
		conditions = append(conditions, sq.Eq{"user_id": filter.UserID})
	}
	if !filter.CreatedAfter.IsZero() {
		conditions = append(conditions, sq.GtOrEq{"created_at": filter.CreatedAfter})
	}

	countSt := r.db.QueryBuilder.Select("count(*)").From("orders")
	listSt := r.db.QueryBuilder.Select(orderColumns...).From("orders")
	for _, c := range conditions {
		countSt = countSt.Where(c)
		listSt = listSt.Where(c)
	}

	sql, args, err := countSt.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := uint64(0)
	if filter.Page > 1 {
		offset = uint64(filter.Page-1) * uint64(filter.PageSize)
	}
	listSt = listSt.
		OrderBy("created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(offset)

	sql, args, err = listSt.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := r.scanOrderRow(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *Repository) DeleteOrdersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	statement := r.db.QueryBuilder.
		Delete("orders").
		Where(sq.Lt{"created_at": cutoff})

	sql, args, err := statement.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) ReadProduct(ctx context.Context, productID uint64) (*domain.Product, error) {
	statement := r.db.QueryBuilder.
		Select("id", "name", "image", "category", "price", "stock", "available", "updated_at").
		From("products").
		Where(sq.Eq{"id": productID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	product := domain.Product{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&product.ID,
		&product.Name,
		&product.Image,
		&product.Category,
		&product.Price,
		&product.Stock,
		&product.Available,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	return &product, nil
}

// RestoreStock adds cancelled quantities back. A product that was delisted
// because it sold out comes back on sale when its stock leaves zero.
func (r *Repository) RestoreStock(ctx context.Context, productID uint64, quantity int) error {
	statement := r.db.QueryBuilder.
		Update("products").
		Set("stock", sq.Expr("stock + ?", quantity)).
		Set("available", sq.Expr("available OR (stock = 0 AND ? > 0)", quantity)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": productID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDataNotFound
	}
	return nil
}

func (r *Repository) ReadSpecGroup(ctx context.Context, groupID uint64) (*domain.SpecGroup, error) {
	statement := r.db.QueryBuilder.
		Select("id", "name").
		From("spec_groups").
		Where(sq.Eq{"id": groupID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	group := domain.SpecGroup{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&group.ID, &group.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	return &group, nil
}

func (r *Repository) ReadSpecItem(ctx context.Context, itemID uint64) (*domain.SpecItem, error) {
	statement := r.db.QueryBuilder.
		Select("id", "group_id", "value").
		From("spec_items").
		Where(sq.Eq{"id": itemID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	item := domain.SpecItem{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&item.ID, &item.GroupID, &item.Value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	return &item, nil
}

func (r *Repository) ReadPrincipal(ctx context.Context, id uint64) (*domain.Principal, error) {
	statement := r.db.QueryBuilder.
		Select("id", "username", "nickname", "is_guest", "created_at").
		From("users").
		Where(sq.Eq{"id": id})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	return r.scanPrincipal(r.db.QueryRow(ctx, sql, args...))
}

func (r *Repository) FindGuestBySession(ctx context.Context, sessionID string) (*domain.Principal, error) {
	statement := r.db.QueryBuilder.
		Select("id", "username", "nickname", "is_guest", "created_at").
		From("users").
		Where(sq.Eq{"session_id": sessionID, "is_guest": true})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	return r.scanPrincipal(r.db.QueryRow(ctx, sql, args...))
}

func (r *Repository) CreateGuest(ctx context.Context, guest *domain.Principal) (*domain.Principal, error) {
	statement := r.db.QueryBuilder.
		Insert("users").
		Columns("username", "nickname", "is_guest", "session_id").
		Values(guest.Username, guest.Nickname, true, nullString(guest.SessionID)).
		Suffix("returning id, created_at")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&guest.ID, &guest.CreatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}

	guest.Guest = true
	return guest, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanOrder(row rowScanner) (*domain.Order, error) {
	order, err := r.scanOrderRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *Repository) scanOrderRow(row rowScanner) (*domain.Order, error) {
	order := domain.Order{}
	var sessionID, remark, itemsJSON *string

	err := row.Scan(
		&order.ID,
		&order.Number,
		&order.UserID,
		&sessionID,
		&itemsJSON,
		&order.TotalAmount,
		&order.DiscountAmount,
		&order.FinalAmount,
		&remark,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sessionID != nil {
		order.SessionID = *sessionID
	}
	if remark != nil {
		order.Remark = *remark
	}
	if itemsJSON != nil && *itemsJSON != "" {
		if err := json.Unmarshal([]byte(*itemsJSON), &order.Items); err != nil {
			return nil, err
		}
	}

	return &order, nil
}

func (r *Repository) scanPrincipal(row rowScanner) (*domain.Principal, error) {
	p := domain.Principal{}
	err := row.Scan(&p.ID, &p.Username, &p.Nickname, &p.Guest, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}
	return &p, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
