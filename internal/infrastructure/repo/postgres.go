package repo

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
)

// PostgresStore implements the store interfaces over database/sql with the
// pq driver. Checkout runs inside a transaction so the order insert and
// the cart clear commit or roll back together.
type PostgresStore struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresStore(db *sql.DB, log *logrus.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: log}
}

// Open connects and pings the database.
func Open(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

// Bootstrap creates the schema if it does not exist yet.
func (s *PostgresStore) Bootstrap() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			firstname TEXT,
			lastname TEXT,
			email TEXT UNIQUE,
			password_hash TEXT,
			role TEXT,
			created_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT,
			active BOOLEAN DEFAULT TRUE
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT,
			description TEXT,
			price DOUBLE PRECISION,
			stock INT,
			image_url TEXT,
			category_id TEXT,
			active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS carts (
			user_id TEXT PRIMARY KEY,
			id TEXT,
			total_price DOUBLE PRECISION DEFAULT 0,
			updated_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			cart_user_id TEXT REFERENCES carts(user_id) ON DELETE CASCADE,
			product_id TEXT,
			product_name TEXT,
			price DOUBLE PRECISION,
			quantity INT,
			image_url TEXT,
			PRIMARY KEY (cart_user_id, product_id)
		);`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			order_number TEXT UNIQUE,
			user_id TEXT,
			recipient_name TEXT,
			phone_number TEXT,
			street TEXT,
			city TEXT,
			state TEXT,
			postal_code TEXT,
			country TEXT,
			order_date TIMESTAMPTZ,
			total_price DOUBLE PRECISION,
			status TEXT,
			razorpay_order_id TEXT,
			razorpay_payment_id TEXT,
			razorpay_signature TEXT,
			shiprocket_order_id TEXT,
			shiprocket_shipment_id TEXT,
			shiprocket_awb TEXT,
			shiprocket_tracking_url TEXT,
			updated_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id TEXT REFERENCES orders(id) ON DELETE CASCADE,
			product_id TEXT,
			product_name TEXT,
			price DOUBLE PRECISION,
			quantity INT
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) CreateUser(u *domain.User) error {
	_, err := s.db.Exec(`INSERT INTO users (id,firstname,lastname,email,password_hash,role,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Firstname, u.Lastname, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("user with email %s already exists", u.Email)
	}
	return err
}

func (s *PostgresStore) UserByID(id string) (*domain.User, bool) {
	return s.scanUser(s.db.QueryRow(`SELECT id,firstname,lastname,email,password_hash,role,created_at,updated_at FROM users WHERE id=$1`, id))
}

func (s *PostgresStore) UserByEmail(email string) (*domain.User, bool) {
	return s.scanUser(s.db.QueryRow(`SELECT id,firstname,lastname,email,password_hash,role,created_at,updated_at FROM users WHERE email=$1`, email))
}

func (s *PostgresStore) scanUser(row *sql.Row) (*domain.User, bool) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Firstname, &u.Lastname, &u.Email, &u.PasswordHash, (*string)(&u.Role), &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Errorf("Failed to scan user: %v", err)
		}
		return nil, false
	}
	return &u, true
}

func (s *PostgresStore) SaveProduct(p *domain.Product) error {
	_, err := s.db.Exec(`INSERT INTO products (id,name,description,price,stock,image_url,category_id,active,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET name=$2,description=$3,price=$4,stock=$5,image_url=$6,category_id=$7,active=$8,updated_at=$10`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.CategoryID, p.Active, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *PostgresStore) ProductByID(id string) (*domain.Product, bool) {
	var p domain.Product
	err := s.db.QueryRow(`SELECT id,name,description,price,stock,image_url,category_id,active,created_at,updated_at FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.CategoryID, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, false
	}
	return &p, true
}

func (s *PostgresStore) ListProducts(activeOnly bool) ([]domain.Product, error) {
	query := `SELECT id,name,description,price,stock,image_url,category_id,active,created_at,updated_at FROM products`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name ASC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	defer rows.Close()
	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.CategoryID, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveCategory(c *domain.Category) error {
	_, err := s.db.Exec(`INSERT INTO categories (id,name,active) VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET name=$2,active=$3`, c.ID, c.Name, c.Active)
	return err
}

func (s *PostgresStore) CategoryByID(id string) (*domain.Category, bool) {
	var c domain.Category
	err := s.db.QueryRow(`SELECT id,name,active FROM categories WHERE id=$1`, id).Scan(&c.ID, &c.Name, &c.Active)
	if err != nil {
		return nil, false
	}
	return &c, true
}

func (s *PostgresStore) ListCategories(activeOnly bool) ([]domain.Category, error) {
	query := `SELECT id,name,active FROM categories`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name ASC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	defer rows.Close()
	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Active); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CartByUser(userID string) (*domain.Cart, bool) {
	var c domain.Cart
	err := s.db.QueryRow(`SELECT id,user_id,total_price,updated_at FROM carts WHERE user_id=$1`, userID).
		Scan(&c.ID, &c.UserID, &c.TotalPrice, &c.UpdatedAt)
	if err != nil {
		return nil, false
	}
	rows, err := s.db.Query(`SELECT product_id,product_name,price,quantity,image_url FROM cart_items WHERE cart_user_id=$1`, userID)
	if err != nil {
		s.log.Errorf("Failed to load cart items for user %s: %v", userID, err)
		return nil, false
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Price, &it.Quantity, &it.ImageURL); err != nil {
			return nil, false
		}
		c.Items = append(c.Items, it)
	}
	return &c, true
}

func (s *PostgresStore) SaveCart(c *domain.Cart) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}
	defer s.finishTx(tx, &err)

	_, err = tx.Exec(`INSERT INTO carts (user_id,id,total_price,updated_at) VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id) DO UPDATE SET total_price=$3,updated_at=$4`,
		c.UserID, c.ID, c.TotalPrice, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not save cart: %w", err)
	}
	if _, err = tx.Exec(`DELETE FROM cart_items WHERE cart_user_id=$1`, c.UserID); err != nil {
		return fmt.Errorf("could not clear cart items: %w", err)
	}
	for i := range c.Items {
		it := &c.Items[i]
		_, err = tx.Exec(`INSERT INTO cart_items (cart_user_id,product_id,product_name,price,quantity,image_url) VALUES ($1,$2,$3,$4,$5,$6)`,
			c.UserID, it.ProductID, it.ProductName, it.Price, it.Quantity, it.ImageURL)
		if err != nil {
			return fmt.Errorf("could not save cart item %s: %w", it.ProductID, err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateOrderAndClearCart(o *domain.Order) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}
	defer s.finishTx(tx, &err)

	_, err = tx.Exec(`INSERT INTO orders (id,order_number,user_id,recipient_name,phone_number,street,city,state,postal_code,country,order_date,total_price,status,razorpay_order_id,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		o.ID, o.OrderNumber, o.UserID,
		o.Address.RecipientName, o.Address.PhoneNumber, o.Address.Street, o.Address.City, o.Address.State, o.Address.PostalCode, o.Address.Country,
		o.OrderDate, o.TotalPrice, string(o.Status), o.RazorpayOrderID, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not create order entry: %w", err)
	}
	for i := range o.Items {
		it := &o.Items[i]
		_, err = tx.Exec(`INSERT INTO order_items (order_id,product_id,product_name,price,quantity) VALUES ($1,$2,$3,$4,$5)`,
			o.ID, it.ProductID, it.ProductName, it.Price, it.Quantity)
		if err != nil {
			return fmt.Errorf("could not create order item (product %s): %w", it.ProductID, err)
		}
	}
	if _, err = tx.Exec(`DELETE FROM cart_items WHERE cart_user_id=$1`, o.UserID); err != nil {
		return fmt.Errorf("could not clear cart items: %w", err)
	}
	if _, err = tx.Exec(`UPDATE carts SET total_price=0, updated_at=$2 WHERE user_id=$1`, o.UserID, o.UpdatedAt); err != nil {
		return fmt.Errorf("could not reset cart total: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveOrder(o *domain.Order) error {
	// Line items are immutable after creation; only the mutable
	// correlation and status fields are written back.
	_, err := s.db.Exec(`UPDATE orders SET status=$2, razorpay_order_id=$3, razorpay_payment_id=$4, razorpay_signature=$5,
		shiprocket_order_id=$6, shiprocket_shipment_id=$7, shiprocket_awb=$8, shiprocket_tracking_url=$9, updated_at=$10
		WHERE id=$1`,
		o.ID, string(o.Status), o.RazorpayOrderID, o.RazorpayPaymentID, o.RazorpaySignature,
		o.ShiprocketOrderID, o.ShiprocketShipmentID, o.ShiprocketAwb, o.ShiprocketTrackingURL, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not update order %s: %w", o.ID, err)
	}
	return nil
}

const orderColumns = `id,order_number,user_id,recipient_name,phone_number,street,city,state,postal_code,country,order_date,total_price,status,
	COALESCE(razorpay_order_id,''),COALESCE(razorpay_payment_id,''),COALESCE(razorpay_signature,''),
	COALESCE(shiprocket_order_id,''),COALESCE(shiprocket_shipment_id,''),COALESCE(shiprocket_awb,''),COALESCE(shiprocket_tracking_url,''),updated_at`

func (s *PostgresStore) OrderByID(id string) (*domain.Order, bool) {
	return s.queryOrder(`SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (s *PostgresStore) OrderByRazorpayID(razorpayOrderID string) (*domain.Order, bool) {
	if razorpayOrderID == "" {
		return nil, false
	}
	return s.queryOrder(`SELECT `+orderColumns+` FROM orders WHERE razorpay_order_id=$1`, razorpayOrderID)
}

func (s *PostgresStore) OrderByNumber(orderNumber string) (*domain.Order, bool) {
	return s.queryOrder(`SELECT `+orderColumns+` FROM orders WHERE order_number=$1`, orderNumber)
}

func (s *PostgresStore) queryOrder(query string, arg any) (*domain.Order, bool) {
	o, err := scanOrder(s.db.QueryRow(query, arg))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Errorf("Failed to load order: %v", err)
		}
		return nil, false
	}
	if err := s.loadOrderItems(o); err != nil {
		s.log.Errorf("Failed to load items for order %s: %v", o.ID, err)
		return nil, false
	}
	return o, true
}

func (s *PostgresStore) OrdersByUser(userID string) ([]domain.Order, error) {
	return s.queryOrders(`SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY order_date DESC`, userID)
}

func (s *PostgresStore) AllOrders() ([]domain.Order, error) {
	return s.queryOrders(`SELECT ` + orderColumns + ` FROM orders ORDER BY order_date DESC`)
}

func (s *PostgresStore) queryOrders(query string, args ...any) ([]domain.Order, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list orders: %w", err)
	}
	defer rows.Close()
	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadOrderItems(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStore) loadOrderItems(o *domain.Order) error {
	rows, err := s.db.Query(`SELECT product_id,product_name,price,quantity FROM order_items WHERE order_id=$1`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Price, &it.Quantity); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID,
		&o.Address.RecipientName, &o.Address.PhoneNumber, &o.Address.Street, &o.Address.City, &o.Address.State, &o.Address.PostalCode, &o.Address.Country,
		&o.OrderDate, &o.TotalPrice, (*string)(&o.Status),
		&o.RazorpayOrderID, &o.RazorpayPaymentID, &o.RazorpaySignature,
		&o.ShiprocketOrderID, &o.ShiprocketShipmentID, &o.ShiprocketAwb, &o.ShiprocketTrackingURL, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PostgresStore) finishTx(tx *sql.Tx, err *error) {
	if p := recover(); p != nil {
		_ = tx.Rollback()
		panic(p)
	}
	if *err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Errorf("Failed to rollback transaction: %v", rbErr)
		}
		return
	}
	if cErr := tx.Commit(); cErr != nil {
		*err = fmt.Errorf("failed to commit transaction: %w", cErr)
	}
}
