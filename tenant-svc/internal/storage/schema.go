package storage

import "context"

// schema has no ON DELETE CASCADE: cascades are explicit so they run inside
// the repository's transactions.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS restaurants (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		logo TEXT NOT NULL DEFAULT '',
		cover_image TEXT NOT NULL DEFAULT '',
		plan_id INT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		address TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		currency TEXT NOT NULL DEFAULT '',
		theme_color TEXT NOT NULL DEFAULT '',
		font_family TEXT NOT NULL DEFAULT '',
		social_links JSONB NOT NULL DEFAULT '[]',
		reservation_settings JSONB,
		order_seq INT NOT NULL DEFAULT 1000,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		restaurant_id INT NOT NULL REFERENCES restaurants(id),
		name TEXT NOT NULL,
		name_en TEXT NOT NULL DEFAULT '',
		sort_order INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS dishes (
		id SERIAL PRIMARY KEY,
		restaurant_id INT NOT NULL REFERENCES restaurants(id),
		category_id INT NOT NULL REFERENCES categories(id),
		name TEXT NOT NULL,
		name_en TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
		image TEXT NOT NULL DEFAULT '',
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		preparation_time INT NOT NULL DEFAULT 0,
		allergens TEXT[]
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id SERIAL PRIMARY KEY,
		restaurant_id INT NOT NULL REFERENCES restaurants(id),
		order_number TEXT NOT NULL,
		customer_name TEXT NOT NULL DEFAULT '',
		customer_phone TEXT NOT NULL DEFAULT '',
		total DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (restaurant_id, order_number)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_id INT NOT NULL REFERENCES orders(id),
		position INT NOT NULL,
		dish_id INT NOT NULL,
		dish_name TEXT NOT NULL,
		quantity INT NOT NULL CHECK (quantity >= 1),
		price DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (order_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id SERIAL PRIMARY KEY,
		restaurant_id INT NOT NULL REFERENCES restaurants(id),
		customer_name TEXT NOT NULL DEFAULT '',
		customer_phone TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		guests INT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS reservations_phone_idx ON reservations (restaurant_id, customer_phone)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id SERIAL PRIMARY KEY,
		restaurant_id INT NOT NULL REFERENCES restaurants(id),
		dish_id INT,
		customer_name TEXT NOT NULL DEFAULT '',
		rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment TEXT NOT NULL DEFAULT '',
		is_approved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS platform_settings (
		id INT PRIMARY KEY,
		site_name TEXT NOT NULL,
		support_email TEXT NOT NULL DEFAULT '',
		support_phone TEXT NOT NULL DEFAULT '',
		facebook_url TEXT NOT NULL DEFAULT '',
		twitter_url TEXT NOT NULL DEFAULT '',
		instagram_url TEXT NOT NULL DEFAULT '',
		footer_text TEXT NOT NULL DEFAULT '',
		is_maintenance_mode BOOLEAN NOT NULL DEFAULT FALSE
	)`,
}

// EnsureSchema creates the tables when they do not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
