package repos

import (
	_ "embed"
	"encoding/json"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"snackstack/internal/domain"
)

//go:embed seed/catalog.toml
var seedTOML []byte

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	seed, err := loadSeed()
	if err != nil {
		return nil, err
	}
	// Seed catalog, packs and order history if DB is empty
	if err := seedIfEmpty(db, seed); err != nil {
		return nil, err
	}
	// Ensure users exist (idempotent; safe to run every start)
	if err := seedUsers(db, seed); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Products (reference data; list-valued attributes as JSON)
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  brand TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  image TEXT NOT NULL DEFAULT '',
  images_json TEXT NOT NULL DEFAULT '[]',
  description TEXT NOT NULL DEFAULT '',
  tags_json TEXT NOT NULL DEFAULT '[]',
  nutrition_json TEXT,
  variants_json TEXT NOT NULL DEFAULT '[]',
  position INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_name     ON products(LOWER(name));

-- Inventory
CREATE TABLE IF NOT EXISTS inventory(
  product_id TEXT PRIMARY KEY REFERENCES products(id) ON DELETE CASCADE,
  qty INTEGER NOT NULL DEFAULT 0 CHECK (qty >= 0),
  updated_at TEXT
);

-- Variety packs
CREATE TABLE IF NOT EXISTS variety_packs(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  product_ids_json TEXT NOT NULL,
  item_count INTEGER NOT NULL,
  tags_json TEXT NOT NULL DEFAULT '[]',
  savings NUMERIC NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0
);

-- Carts
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  product_json TEXT NOT NULL,        -- snapshot at first add
  qty INTEGER NOT NULL CHECK (qty >= 1),
  price_at_add NUMERIC NOT NULL,
  original_price NUMERIC,
  discount_pct NUMERIC,
  combo_id TEXT,
  created_at TEXT,
  updated_at TEXT,
  seq INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (cart_id, product_id)
);

-- Order history (one row per purchased product)
CREATE TABLE IF NOT EXISTS orders(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_email TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'PLACED',
  order_date TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_email ON orders(LOWER(user_email));

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Browser-local state documents (upsellSeen, replenishmentNudgeSeen)
CREATE TABLE IF NOT EXISTS local_state(
  owner TEXT NOT NULL,
  key TEXT NOT NULL,
  value TEXT NOT NULL,
  updated_at TEXT,
  PRIMARY KEY (owner, key)
);

-- Nudge outcomes for the admin report
CREATE TABLE IF NOT EXISTS nudge_events(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  outcome TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nudge_events_kind ON nudge_events(kind, outcome);

-- Telemetry received on POST /api/v1/user/nudge
CREATE TABLE IF NOT EXISTS nudge_telemetry(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_email TEXT NOT NULL,
  product_name TEXT NOT NULL,
  nudge_type TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`
	_, err := db.Exec(schema)
	return err
}

type seedUser struct {
	ID        string `toml:"id"`
	Email     string `toml:"email"`
	FirstName string `toml:"first_name"`
	LastName  string `toml:"last_name"`
	Role      string `toml:"role"`
	Password  string `toml:"password"`
}

type seedOrder struct {
	UserEmail   string  `toml:"user_email"`
	ProductName string  `toml:"product_name"`
	Quantity    int     `toml:"quantity"`
	Price       float64 `toml:"price"`
	Status      string  `toml:"status"`
	DaysAgo     int     `toml:"days_ago"`
}

type seedData struct {
	Categories []struct {
		ID   string `toml:"id"`
		Name string `toml:"name"`
	} `toml:"categories"`
	Products []domain.Product     `toml:"products"`
	Stock    map[string]int       `toml:"stock"`
	Packs    []domain.VarietyPack `toml:"packs"`
	Users    []seedUser           `toml:"users"`
	Orders   []seedOrder          `toml:"orders"`
}

func loadSeed() (seedData, error) {
	var s seedData
	err := toml.Unmarshal(seedTOML, &s)
	return s, err
}

func jsonText(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func seedIfEmpty(db *sqlx.DB, s seedData) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products/packs/orders")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, c := range s.Categories {
		tx.MustExec(`INSERT INTO categories(id,name) VALUES(?,?)`, c.ID, c.Name)
	}
	for i, p := range s.Products {
		var nutrition any
		if p.Nutrition != nil {
			nutrition = jsonText(p.Nutrition)
		}
		tx.MustExec(`INSERT INTO products(id,category_id,name,brand,price,image,images_json,description,tags_json,nutrition_json,variants_json,position)
		  VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
			p.ID, p.Category, p.Name, p.Brand, p.Price, p.Image, jsonText(nonNil(p.Images)), p.Description,
			jsonText(nonNil(p.Tags)), nutrition, jsonText(nonNilVariants(p.Variants)), i)
		tx.MustExec(`INSERT INTO inventory(product_id,qty,updated_at) VALUES(?,?,CURRENT_TIMESTAMP)`, p.ID, s.Stock[p.ID])
	}
	for i, v := range s.Packs {
		tx.MustExec(`INSERT INTO variety_packs(id,name,description,price,image,product_ids_json,item_count,tags_json,savings,position)
		  VALUES(?,?,?,?,?,?,?,?,?,?)`,
			v.ID, v.Name, v.Description, v.Price, v.Image, jsonText(nonNil(v.ProductIDs)), v.ItemCount, jsonText(nonNil(v.Tags)), v.Savings, i)
	}
	now := time.Now().UTC()
	for _, o := range s.Orders {
		at := now.AddDate(0, 0, -o.DaysAgo).Format(time.RFC3339)
		tx.MustExec(`INSERT INTO orders(user_email,product_name,quantity,price,total_price,status,order_date) VALUES(?,?,?,?,?,?,?)`,
			o.UserEmail, o.ProductName, o.Quantity, o.Price, o.Price*float64(o.Quantity), o.Status, at)
	}

	return tx.Commit()
}

// seedUsers ensures the demo shoppers and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB, s seedData) error {
	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, u := range s.Users {
		var exists int
		if err := tx.Get(&exists, `SELECT COUNT(*) FROM users WHERE LOWER(email)=LOWER(?)`, u.Email); err != nil {
			return err
		}
		if exists > 0 {
			continue
		}
		h, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,first_name,last_name,password_hash,role)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, u.ID, u.Email, u.FirstName, u.LastName, string(h), u.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilVariants(v []domain.Variant) []domain.Variant {
	if v == nil {
		return []domain.Variant{}
	}
	return v
}
