package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"sop-platform/tenant-svc/internal/domain"
	"sop-platform/tenant-svc/internal/service"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

var _ service.Store = (*PostgresRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

// mapError translates driver errors into domain errors.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return fmt.Errorf("%w: %s", domain.ErrConflict, pqErr.Detail)
		case "foreign_key_violation":
			return fmt.Errorf("%w: %s", domain.ErrInvalidReference, pqErr.Detail)
		}
	}
	return err
}

func (r *PostgresRepository) requireRestaurant(ctx context.Context, id int) error {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM restaurants WHERE id = $1)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

const restaurantColumns = `id, name, slug, logo, cover_image, plan_id, status, address, phone, email,
	currency, theme_color, font_family, social_links, reservation_settings, created_at`

func scanRestaurant(row rowScanner) (*domain.Restaurant, error) {
	var (
		rest     domain.Restaurant
		social   []byte
		settings []byte
	)
	err := row.Scan(&rest.ID, &rest.Name, &rest.Slug, &rest.Logo, &rest.CoverImage, &rest.PlanID, &rest.Status,
		&rest.Address, &rest.Phone, &rest.Email, &rest.Currency, &rest.ThemeColor, &rest.FontFamily,
		&social, &settings, &rest.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(social) > 0 {
		if err := json.Unmarshal(social, &rest.SocialLinks); err != nil {
			return nil, fmt.Errorf("decode social_links: %w", err)
		}
	}
	if len(settings) > 0 {
		var rs domain.ReservationSettings
		if err := json.Unmarshal(settings, &rs); err != nil {
			return nil, fmt.Errorf("decode reservation_settings: %w", err)
		}
		rest.ReservationSettings = &rs
	}
	return &rest, nil
}

func encodeRestaurantJSON(rest *domain.Restaurant) (social []byte, settings []byte, err error) {
	links := rest.SocialLinks
	if links == nil {
		links = []domain.SocialLink{}
	}
	if social, err = json.Marshal(links); err != nil {
		return nil, nil, err
	}
	if rest.ReservationSettings != nil {
		if settings, err = json.Marshal(rest.ReservationSettings); err != nil {
			return nil, nil, err
		}
	}
	return social, settings, nil
}

func (r *PostgresRepository) CreateRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	social, settings, err := encodeRestaurantJSON(rest)
	if err != nil {
		return err
	}
	err = r.DB.QueryRowContext(ctx, `
		INSERT INTO restaurants (name, slug, logo, cover_image, plan_id, status, address, phone, email,
			currency, theme_color, font_family, social_links, reservation_settings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		rest.Name, rest.Slug, rest.Logo, rest.CoverImage, rest.PlanID, rest.Status, rest.Address, rest.Phone,
		rest.Email, rest.Currency, rest.ThemeColor, rest.FontFamily, social, settings, rest.CreatedAt,
	).Scan(&rest.ID)
	return mapError(err)
}

func (r *PostgresRepository) GetRestaurant(ctx context.Context, id int) (*domain.Restaurant, error) {
	rest, err := scanRestaurant(r.DB.QueryRowContext(ctx,
		"SELECT "+restaurantColumns+" FROM restaurants WHERE id = $1", id))
	if err != nil {
		return nil, mapError(err)
	}
	return rest, nil
}

func (r *PostgresRepository) GetRestaurantBySlug(ctx context.Context, slug string) (*domain.Restaurant, error) {
	rest, err := scanRestaurant(r.DB.QueryRowContext(ctx,
		"SELECT "+restaurantColumns+" FROM restaurants WHERE slug = $1", slug))
	if err != nil {
		return nil, mapError(err)
	}
	return rest, nil
}

func (r *PostgresRepository) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+restaurantColumns+" FROM restaurants ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	restaurants := []domain.Restaurant{}
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *rest)
	}
	return restaurants, rows.Err()
}

func (r *PostgresRepository) UpdateRestaurant(ctx context.Context, id int, fn func(*domain.Restaurant) error) (*domain.Restaurant, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := scanRestaurant(tx.QueryRowContext(ctx,
		"SELECT "+restaurantColumns+" FROM restaurants WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		return nil, mapError(err)
	}
	draft := cloneRestaurant(*current)
	if err := fn(&draft); err != nil {
		return nil, err
	}
	if draft.ID != current.ID || draft.Slug != current.Slug {
		return nil, fmt.Errorf("%w: id and slug are immutable", domain.ErrInvalidOperation)
	}

	social, settings, err := encodeRestaurantJSON(&draft)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE restaurants SET name = $2, logo = $3, cover_image = $4, plan_id = $5, status = $6, address = $7,
			phone = $8, email = $9, currency = $10, theme_color = $11, font_family = $12, social_links = $13,
			reservation_settings = $14
		WHERE id = $1`,
		id, draft.Name, draft.Logo, draft.CoverImage, draft.PlanID, draft.Status, draft.Address, draft.Phone,
		draft.Email, draft.Currency, draft.ThemeColor, draft.FontFamily, social, settings)
	if err != nil {
		return nil, mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &draft, nil
}

// DeleteRestaurant removes the tenant and all of its records in one
// transaction.
func (r *PostgresRepository) DeleteRestaurant(ctx context.Context, id int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var locked int
	if err := tx.QueryRowContext(ctx, "SELECT id FROM restaurants WHERE id = $1 FOR UPDATE", id).Scan(&locked); err != nil {
		return mapError(err)
	}

	cascade := []string{
		"DELETE FROM order_items WHERE order_id IN (SELECT id FROM orders WHERE restaurant_id = $1)",
		"DELETE FROM orders WHERE restaurant_id = $1",
		"DELETE FROM reservations WHERE restaurant_id = $1",
		"DELETE FROM ratings WHERE restaurant_id = $1",
		"DELETE FROM dishes WHERE restaurant_id = $1",
		"DELETE FROM categories WHERE restaurant_id = $1",
		"DELETE FROM restaurants WHERE id = $1",
	}
	for _, stmt := range cascade {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const platformSettingsColumns = `site_name, support_email, support_phone, facebook_url, twitter_url,
	instagram_url, footer_text, is_maintenance_mode`

func scanPlatformSettings(row rowScanner) (domain.PlatformSettings, error) {
	var s domain.PlatformSettings
	err := row.Scan(&s.SiteName, &s.SupportEmail, &s.SupportPhone, &s.FacebookURL, &s.TwitterURL,
		&s.InstagramURL, &s.FooterText, &s.IsMaintenanceMode)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultPlatformSettings(), nil
	}
	return s, err
}

func (r *PostgresRepository) GetPlatformSettings(ctx context.Context) (domain.PlatformSettings, error) {
	return scanPlatformSettings(r.DB.QueryRowContext(ctx,
		"SELECT "+platformSettingsColumns+" FROM platform_settings WHERE id = 1"))
}

func (r *PostgresRepository) UpdatePlatformSettings(ctx context.Context, fn func(*domain.PlatformSettings)) (domain.PlatformSettings, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.PlatformSettings{}, err
	}
	defer tx.Rollback()

	settings, err := scanPlatformSettings(tx.QueryRowContext(ctx,
		"SELECT "+platformSettingsColumns+" FROM platform_settings WHERE id = 1 FOR UPDATE"))
	if err != nil {
		return domain.PlatformSettings{}, err
	}
	fn(&settings)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO platform_settings (id, `+platformSettingsColumns+`)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET site_name = $1, support_email = $2, support_phone = $3,
			facebook_url = $4, twitter_url = $5, instagram_url = $6, footer_text = $7, is_maintenance_mode = $8`,
		settings.SiteName, settings.SupportEmail, settings.SupportPhone, settings.FacebookURL, settings.TwitterURL,
		settings.InstagramURL, settings.FooterText, settings.IsMaintenanceMode)
	if err != nil {
		return domain.PlatformSettings{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.PlatformSettings{}, err
	}
	return settings, nil
}

const categoryColumns = "id, restaurant_id, name, name_en, sort_order"

func scanCategory(row rowScanner) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.NameEn, &c.SortOrder); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO categories (restaurant_id, name, name_en, sort_order)
		SELECT $1, $2, $3, $4 WHERE EXISTS (SELECT 1 FROM restaurants WHERE id = $1)
		RETURNING id`,
		category.RestaurantID, category.Name, category.NameEn, category.SortOrder).Scan(&category.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: restaurant %d", domain.ErrInvalidReference, category.RestaurantID)
	}
	return mapError(err)
}

func (r *PostgresRepository) GetCategory(ctx context.Context, restaurantID, categoryID int) (*domain.Category, error) {
	c, err := scanCategory(r.DB.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = $1 AND restaurant_id = $2", categoryID, restaurantID))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context, restaurantID int) ([]domain.Category, error) {
	if err := r.requireRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE restaurant_id = $1 ORDER BY sort_order, id", restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, restaurantID, categoryID int, fn func(*domain.Category) error) (*domain.Category, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := scanCategory(tx.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = $1 AND restaurant_id = $2 FOR UPDATE", categoryID, restaurantID))
	if err != nil {
		return nil, mapError(err)
	}
	draft := *current
	if err := fn(&draft); err != nil {
		return nil, err
	}
	if draft.ID != current.ID || draft.RestaurantID != current.RestaurantID {
		return nil, fmt.Errorf("%w: category owner is immutable", domain.ErrInvalidOperation)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE categories SET name = $3, name_en = $4, sort_order = $5 WHERE id = $1 AND restaurant_id = $2",
		categoryID, restaurantID, draft.Name, draft.NameEn, draft.SortOrder); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &draft, nil
}

// DeleteCategory removes the category and its dishes in one transaction.
func (r *PostgresRepository) DeleteCategory(ctx context.Context, restaurantID, categoryID int) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var locked int
	if err := tx.QueryRowContext(ctx,
		"SELECT id FROM categories WHERE id = $1 AND restaurant_id = $2 FOR UPDATE", categoryID, restaurantID).
		Scan(&locked); err != nil {
		return 0, mapError(err)
	}
	result, err := tx.ExecContext(ctx,
		"DELETE FROM dishes WHERE category_id = $1 AND restaurant_id = $2", categoryID, restaurantID)
	if err != nil {
		return 0, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM categories WHERE id = $1 AND restaurant_id = $2", categoryID, restaurantID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(removed), nil
}

const dishColumns = `id, restaurant_id, category_id, name, name_en, description, price, image, is_available,
	preparation_time, allergens`

func scanDish(row rowScanner) (*domain.Dish, error) {
	var d domain.Dish
	err := row.Scan(&d.ID, &d.RestaurantID, &d.CategoryID, &d.Name, &d.NameEn, &d.Description, &d.Price,
		&d.Image, &d.IsAvailable, &d.PreparationTime, pq.Array(&d.Allergens))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDish locks the restaurant row so the plan ceiling check and the
// insert cannot interleave with another insert for the same tenant.
func (r *PostgresRepository) CreateDish(ctx context.Context, dish *domain.Dish, maxDishes int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var locked int
	err = tx.QueryRowContext(ctx, "SELECT id FROM restaurants WHERE id = $1 FOR UPDATE", dish.RestaurantID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: restaurant %d", domain.ErrInvalidReference, dish.RestaurantID)
	}
	if err != nil {
		return err
	}

	var categoryOK bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND restaurant_id = $2)",
		dish.CategoryID, dish.RestaurantID).Scan(&categoryOK); err != nil {
		return err
	}
	if !categoryOK {
		return fmt.Errorf("%w: category %d", domain.ErrInvalidReference, dish.CategoryID)
	}

	if maxDishes > 0 {
		var count int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM dishes WHERE restaurant_id = $1", dish.RestaurantID).Scan(&count); err != nil {
			return err
		}
		if count >= maxDishes {
			return fmt.Errorf("%w: plan allows at most %d dishes", domain.ErrForbidden, maxDishes)
		}
	}

	if err := tx.QueryRowContext(ctx, `
		INSERT INTO dishes (restaurant_id, category_id, name, name_en, description, price, image, is_available,
			preparation_time, allergens)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		dish.RestaurantID, dish.CategoryID, dish.Name, dish.NameEn, dish.Description, dish.Price, dish.Image,
		dish.IsAvailable, dish.PreparationTime, pq.Array(dish.Allergens)).Scan(&dish.ID); err != nil {
		return mapError(err)
	}
	return tx.Commit()
}

func (r *PostgresRepository) GetDish(ctx context.Context, restaurantID, dishID int) (*domain.Dish, error) {
	d, err := scanDish(r.DB.QueryRowContext(ctx,
		"SELECT "+dishColumns+" FROM dishes WHERE id = $1 AND restaurant_id = $2", dishID, restaurantID))
	if err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

func (r *PostgresRepository) ListDishes(ctx context.Context, restaurantID int) ([]domain.Dish, error) {
	if err := r.requireRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+dishColumns+" FROM dishes WHERE restaurant_id = $1 ORDER BY id", restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dishes := []domain.Dish{}
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		dishes = append(dishes, *d)
	}
	return dishes, rows.Err()
}

func (r *PostgresRepository) UpdateDish(ctx context.Context, restaurantID, dishID int, fn func(*domain.Dish) error) (*domain.Dish, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := scanDish(tx.QueryRowContext(ctx,
		"SELECT "+dishColumns+" FROM dishes WHERE id = $1 AND restaurant_id = $2 FOR UPDATE", dishID, restaurantID))
	if err != nil {
		return nil, mapError(err)
	}
	draft := cloneDish(*current)
	if err := fn(&draft); err != nil {
		return nil, err
	}
	if draft.ID != current.ID || draft.RestaurantID != current.RestaurantID {
		return nil, fmt.Errorf("%w: dish owner is immutable", domain.ErrInvalidOperation)
	}
	if draft.CategoryID != current.CategoryID {
		var categoryOK bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND restaurant_id = $2)",
			draft.CategoryID, restaurantID).Scan(&categoryOK); err != nil {
			return nil, err
		}
		if !categoryOK {
			return nil, fmt.Errorf("%w: category %d", domain.ErrInvalidReference, draft.CategoryID)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE dishes SET category_id = $3, name = $4, name_en = $5, description = $6, price = $7, image = $8,
			is_available = $9, preparation_time = $10, allergens = $11
		WHERE id = $1 AND restaurant_id = $2`,
		dishID, restaurantID, draft.CategoryID, draft.Name, draft.NameEn, draft.Description, draft.Price,
		draft.Image, draft.IsAvailable, draft.PreparationTime, pq.Array(draft.Allergens)); err != nil {
		return nil, mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *PostgresRepository) DeleteDish(ctx context.Context, restaurantID, dishID int) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM dishes WHERE id = $1 AND restaurant_id = $2", dishID, restaurantID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const orderColumns = "id, restaurant_id, order_number, customer_name, customer_phone, total, status, created_at"

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.RestaurantID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &o.Total,
		&o.Status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder bumps the restaurant's order sequence and writes the order with
// its items in one transaction.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRowContext(ctx,
		"UPDATE restaurants SET order_seq = order_seq + 1 WHERE id = $1 RETURNING order_seq", order.RestaurantID).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: restaurant %d", domain.ErrInvalidReference, order.RestaurantID)
	}
	if err != nil {
		return err
	}
	order.OrderNumber = fmt.Sprintf("ORD-%d", seq)

	if err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (restaurant_id, order_number, customer_name, customer_phone, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		order.RestaurantID, order.OrderNumber, order.CustomerName, order.CustomerPhone, order.Total, order.Status,
		order.CreatedAt).Scan(&order.ID); err != nil {
		return mapError(err)
	}

	for i, item := range order.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, dish_id, dish_name, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, i, item.DishID, item.DishName, item.Quantity, item.Price); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// loadItems fills the items of orders with a single query.
func loadItems(ctx context.Context, q querier, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int]int, len(orders))
	for i, o := range orders {
		ids[i] = int64(o.ID)
		index[o.ID] = i
		orders[i].Items = []domain.OrderItem{}
	}

	rows, err := q.QueryContext(ctx, `
		SELECT order_id, dish_id, dish_name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID int
			item    domain.OrderItem
		)
		if err := rows.Scan(&orderID, &item.DishID, &item.DishName, &item.Quantity, &item.Price); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) GetOrder(ctx context.Context, restaurantID, orderID int) (*domain.Order, error) {
	o, err := scanOrder(r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 AND restaurant_id = $2", orderID, restaurantID))
	if err != nil {
		return nil, mapError(err)
	}
	orders := []domain.Order{*o}
	if err := loadItems(ctx, r.DB, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *PostgresRepository) ListOrders(ctx context.Context, restaurantID int, status domain.OrderStatus) ([]domain.Order, error) {
	if err := r.requireRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE restaurant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC`, restaurantID, string(status))
	if err != nil {
		return nil, err
	}
	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadItems(ctx, r.DB, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) UpdateOrder(ctx context.Context, restaurantID, orderID int, fn func(*domain.Order) error) (*domain.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := scanOrder(tx.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 AND restaurant_id = $2 FOR UPDATE", orderID, restaurantID))
	if err != nil {
		return nil, mapError(err)
	}
	orders := []domain.Order{*current}
	if err := loadItems(ctx, tx, orders); err != nil {
		return nil, err
	}
	draft := cloneOrder(orders[0])
	if err := fn(&draft); err != nil {
		return nil, err
	}
	if draft.ID != current.ID || draft.RestaurantID != current.RestaurantID {
		return nil, fmt.Errorf("%w: order owner is immutable", domain.ErrInvalidOperation)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $3, customer_name = $4, customer_phone = $5 WHERE id = $1 AND restaurant_id = $2",
		orderID, restaurantID, draft.Status, draft.CustomerName, draft.CustomerPhone); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	draft.Items = orders[0].Items
	return &draft, nil
}

const reservationColumns = "id, restaurant_id, customer_name, customer_phone, date, time, guests, status, created_at"

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(&res.ID, &res.RestaurantID, &res.CustomerName, &res.CustomerPhone, &res.Date, &res.Time,
		&res.Guests, &res.Status, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *PostgresRepository) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO reservations (restaurant_id, customer_name, customer_phone, date, time, guests, status, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8 WHERE EXISTS (SELECT 1 FROM restaurants WHERE id = $1)
		RETURNING id`,
		res.RestaurantID, res.CustomerName, res.CustomerPhone, res.Date, res.Time, res.Guests, res.Status,
		res.CreatedAt).Scan(&res.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: restaurant %d", domain.ErrInvalidReference, res.RestaurantID)
	}
	return mapError(err)
}

func (r *PostgresRepository) GetReservation(ctx context.Context, restaurantID, reservationID int) (*domain.Reservation, error) {
	res, err := scanReservation(r.DB.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = $1 AND restaurant_id = $2", reservationID, restaurantID))
	if err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

func (r *PostgresRepository) queryReservations(ctx context.Context, restaurantID int, where string, arg any) ([]domain.Reservation, error) {
	if err := r.requireRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE restaurant_id = $1 AND "+where+
			" ORDER BY date, time, id", restaurantID, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := []domain.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

func (r *PostgresRepository) ListReservations(ctx context.Context, restaurantID int, status domain.ReservationStatus) ([]domain.Reservation, error) {
	return r.queryReservations(ctx, restaurantID, "($2 = '' OR status = $2)", string(status))
}

func (r *PostgresRepository) FindReservationsByPhone(ctx context.Context, restaurantID int, phone string) ([]domain.Reservation, error) {
	return r.queryReservations(ctx, restaurantID, "customer_phone = $2", phone)
}

func (r *PostgresRepository) UpdateReservation(ctx context.Context, restaurantID, reservationID int, fn func(*domain.Reservation) error) (*domain.Reservation, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := scanReservation(tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = $1 AND restaurant_id = $2 FOR UPDATE",
		reservationID, restaurantID))
	if err != nil {
		return nil, mapError(err)
	}
	draft := *current
	if err := fn(&draft); err != nil {
		return nil, err
	}
	if draft.ID != current.ID || draft.RestaurantID != current.RestaurantID {
		return nil, fmt.Errorf("%w: reservation owner is immutable", domain.ErrInvalidOperation)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE reservations SET customer_name = $3, customer_phone = $4, date = $5, time = $6, guests = $7, status = $8
		WHERE id = $1 AND restaurant_id = $2`,
		reservationID, restaurantID, draft.CustomerName, draft.CustomerPhone, draft.Date, draft.Time, draft.Guests,
		draft.Status); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &draft, nil
}

const ratingColumns = "id, restaurant_id, dish_id, customer_name, rating, comment, is_approved, created_at"

func scanRating(row rowScanner) (*domain.Rating, error) {
	var (
		rating domain.Rating
		dishID sql.NullInt64
	)
	err := row.Scan(&rating.ID, &rating.RestaurantID, &dishID, &rating.CustomerName, &rating.Rating,
		&rating.Comment, &rating.IsApproved, &rating.CreatedAt)
	if err != nil {
		return nil, err
	}
	if dishID.Valid {
		id := int(dishID.Int64)
		rating.DishID = &id
	}
	return &rating, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func (r *PostgresRepository) CreateRating(ctx context.Context, rating *domain.Rating) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO ratings (restaurant_id, dish_id, customer_name, rating, comment, is_approved, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE EXISTS (SELECT 1 FROM restaurants WHERE id = $1)
			AND ($2::int IS NULL OR EXISTS (SELECT 1 FROM dishes WHERE id = $2 AND restaurant_id = $1))
		RETURNING id`,
		rating.RestaurantID, nullableInt(rating.DishID), rating.CustomerName, rating.Rating, rating.Comment,
		rating.IsApproved, rating.CreatedAt).Scan(&rating.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: restaurant %d or its dish", domain.ErrInvalidReference, rating.RestaurantID)
	}
	return mapError(err)
}

func (r *PostgresRepository) GetRating(ctx context.Context, restaurantID, ratingID int) (*domain.Rating, error) {
	rating, err := scanRating(r.DB.QueryRowContext(ctx,
		"SELECT "+ratingColumns+" FROM ratings WHERE id = $1 AND restaurant_id = $2", ratingID, restaurantID))
	if err != nil {
		return nil, mapError(err)
	}
	return rating, nil
}

func (r *PostgresRepository) ListRatings(ctx context.Context, restaurantID int, approvedOnly bool) ([]domain.Rating, error) {
	if err := r.requireRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+ratingColumns+` FROM ratings
		WHERE restaurant_id = $1 AND (NOT $2 OR is_approved)
		ORDER BY created_at DESC, id DESC`, restaurantID, approvedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := []domain.Rating{}
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, *rating)
	}
	return ratings, rows.Err()
}

func (r *PostgresRepository) UpdateRating(ctx context.Context, restaurantID, ratingID int, fn func(*domain.Rating) error) (*domain.Rating, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := scanRating(tx.QueryRowContext(ctx,
		"SELECT "+ratingColumns+" FROM ratings WHERE id = $1 AND restaurant_id = $2 FOR UPDATE", ratingID, restaurantID))
	if err != nil {
		return nil, mapError(err)
	}
	draft := cloneRating(*current)
	if err := fn(&draft); err != nil {
		return nil, err
	}
	if draft.ID != current.ID || draft.RestaurantID != current.RestaurantID {
		return nil, fmt.Errorf("%w: rating owner is immutable", domain.ErrInvalidOperation)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE ratings SET is_approved = $3, comment = $4 WHERE id = $1 AND restaurant_id = $2",
		ratingID, restaurantID, draft.IsApproved, draft.Comment); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *PostgresRepository) DeleteRating(ctx context.Context, restaurantID, ratingID int) (*domain.Rating, error) {
	rating, err := scanRating(r.DB.QueryRowContext(ctx,
		"DELETE FROM ratings WHERE id = $1 AND restaurant_id = $2 RETURNING "+ratingColumns, ratingID, restaurantID))
	if err != nil {
		return nil, mapError(err)
	}
	return rating, nil
}
