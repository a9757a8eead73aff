package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/iurnickita/grabmarket/internal/model"
	"github.com/iurnickita/grabmarket/internal/store/config"
)

// Store - журнал расчетов. Одна строка на заказ, статус меняется по ходу
// платежа. Записи со статусом CHARGED_UNSETTLED - работа для поддержки
type Store interface {
	OrderPost(ctx context.Context, order model.Order) error
	OrderSetState(ctx context.Context, number string, state string, message string) error
	OrderSetPayment(ctx context.Context, number string, txHash string, paymentRef string) error
	OrderGet(ctx context.Context, customer string) ([]model.Order, error)
	OrderGetUnsettled(ctx context.Context) ([]model.Order, error)
}

var (
	ErrNoRows        = errors.New("no rows")
	ErrAlreadyExists = errors.New("already exists")
)

type store struct {
	database *sql.DB
}

func NewStore(cfg config.Config) (Store, error) {
	db, err := sql.Open("pgx", cfg.DBDsn)
	if err != nil {
		return nil, err
	}

	// Журнал заказов/расчетов
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS settlement_order (" +
			" number VARCHAR (36) PRIMARY KEY," +
			" customer VARCHAR (36) NOT NULL," +
			" restaurant VARCHAR (36) NOT NULL," +
			" food_offer VARCHAR (36) NOT NULL," +
			" quantity INTEGER NOT NULL," +
			" unit_price NUMERIC (20, 6) NOT NULL," +
			" total_price NUMERIC (20, 6) NOT NULL," +
			" asset VARCHAR (64) NOT NULL," +
			" tx_hash VARCHAR (128) NOT NULL DEFAULT ''," +
			" payment_ref VARCHAR (128) NOT NULL DEFAULT ''," +
			" state VARCHAR (20) NOT NULL," +
			" state_message VARCHAR (500) NOT NULL DEFAULT ''," +
			" created_at TIMESTAMP NOT NULL," +
			" updated_at TIMESTAMP NOT NULL" +
			" );")
	if err != nil {
		return nil, err
	}

	return &store{
		database: db,
	}, nil
}

func (store *store) OrderPost(ctx context.Context, order model.Order) error {
	_, err := store.database.ExecContext(ctx,
		"INSERT INTO settlement_order"+
			" (number, customer, restaurant, food_offer, quantity, unit_price, total_price, asset, state, created_at, updated_at)"+
			" VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)",
		order.Number,
		order.Data.Customer,
		order.Data.Restaurant,
		order.Data.FoodOffer,
		order.Data.Quantity,
		order.Data.UnitPrice,
		order.Data.TotalPrice,
		order.Data.Asset,
		order.Data.State,
		order.Data.CreatedAt,
		order.Data.CreatedAt)
	if err != nil {
		// Проверка: уже существует
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return ErrAlreadyExists
			}
		}
		return err
	}
	return nil
}

func (store *store) OrderSetState(ctx context.Context, number string, state string, message string) error {
	result, err := store.database.ExecContext(ctx,
		"UPDATE settlement_order"+
			" SET state = $1, state_message = $2, updated_at = $3"+
			" WHERE number = $4",
		state,
		message,
		time.Now(),
		number)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoRows
	}
	return nil
}

func (store *store) OrderSetPayment(ctx context.Context, number string, txHash string, paymentRef string) error {
	result, err := store.database.ExecContext(ctx,
		"UPDATE settlement_order"+
			" SET tx_hash = $1, payment_ref = $2, updated_at = $3"+
			" WHERE number = $4",
		txHash,
		paymentRef,
		time.Now(),
		number)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoRows
	}
	return nil
}

func (store *store) OrderGet(ctx context.Context, customer string) ([]model.Order, error) {
	rows, err := store.database.QueryContext(ctx,
		"SELECT number, customer, restaurant, food_offer, quantity, unit_price, total_price,"+
			" asset, tx_hash, payment_ref, state, state_message, created_at, updated_at"+
			" FROM settlement_order"+
			" WHERE customer = $1"+
			" ORDER BY created_at",
		customer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrders(rows)
}

// OrderGetUnsettled - заказы, где деньги списаны, а бэкенд заказ не принял
func (store *store) OrderGetUnsettled(ctx context.Context) ([]model.Order, error) {
	rows, err := store.database.QueryContext(ctx,
		"SELECT number, customer, restaurant, food_offer, quantity, unit_price, total_price,"+
			" asset, tx_hash, payment_ref, state, state_message, created_at, updated_at"+
			" FROM settlement_order"+
			" WHERE state = $1"+
			" ORDER BY created_at",
		model.OrderStateChargedUnsettled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrders(rows)
}

func scanOrders(rows *sql.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		var orderRow model.Order
		err := rows.Scan(&orderRow.Number,
			&orderRow.Data.Customer,
			&orderRow.Data.Restaurant,
			&orderRow.Data.FoodOffer,
			&orderRow.Data.Quantity,
			&orderRow.Data.UnitPrice,
			&orderRow.Data.TotalPrice,
			&orderRow.Data.Asset,
			&orderRow.Data.TxHash,
			&orderRow.Data.PaymentRef,
			&orderRow.Data.State,
			&orderRow.Data.StateMessage,
			&orderRow.Data.CreatedAt,
			&orderRow.Data.UpdatedAt)
		if err != nil {
			return nil, err
		}
		orders = append(orders, orderRow)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
