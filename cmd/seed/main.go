package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// Demo seeding targets enough history for the forecasting pipeline.
const (
	demoHistoryDays       = 30
	demoMinTransactions   = 100
	demoTargetTotal       = 150
	demoProductLimit      = 5
	demoWeekendMultiplier = 1.3
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing seed CSV files",
		Value:   "./data/seeds",
		EnvVars: []string{"SEED_DATA_DIR"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with initial data",
		Commands: []*cli.Command{
			{
				Name:   "master",
				Usage:  "Seed suppliers and products from CSV",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: seedMaster,
			},
			{
				Name:   "transactions",
				Usage:  "Load inventory transactions from CSV",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: seedTransactions,
			},
			{
				Name:   "demo",
				Usage:  "Generate synthetic transaction history for forecasting demos",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: seedDemo,
			},
			{
				Name:  "all",
				Usage: "Seed master data, transactions, and demo history",
				Flags: []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: func(c *cli.Context) error {
					if err := seedMaster(c); err != nil {
						return fmt.Errorf("error seeding master data: %w", err)
					}
					if err := seedTransactions(c); err != nil {
						return fmt.Errorf("error seeding transactions: %w", err)
					}
					if err := seedDemo(c); err != nil {
						return fmt.Errorf("error seeding demo history: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func seedMaster(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	dataDir := c.String("data-dir")
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Defer a rollback in case anything fails.
	defer tx.Rollback()

	log.Println("Starting master data seeding...")

	if err := seedSuppliers(ctx, tx, filepath.Join(dataDir, "suppliers.csv")); err != nil {
		return fmt.Errorf("failed to seed suppliers: %w", err)
	}

	if err := seedProducts(ctx, tx, filepath.Join(dataDir, "products.csv")); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Master data seeding completed successfully!")
	return nil
}

func seedSuppliers(ctx context.Context, tx *sql.Tx, path string) error {
	log.Printf("Seeding suppliers from %s\n", path)

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols, err := requireColumns(header, "name", "lead_time_days", "reliability_score")
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO suppliers (name, lead_time_days, reliability_score)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			lead_time_days = EXCLUDED.lead_time_days,
			reliability_score = EXCLUDED.reliability_score
	`

	count := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		leadTime, err := strconv.Atoi(strings.TrimSpace(record[cols["lead_time_days"]]))
		if err != nil {
			return fmt.Errorf("invalid lead_time_days in record %v: %w", record, err)
		}

		reliability, err := strconv.ParseFloat(strings.TrimSpace(record[cols["reliability_score"]]), 64)
		if err != nil {
			return fmt.Errorf("invalid reliability_score in record %v: %w", record, err)
		}

		if _, err := tx.ExecContext(ctx, query,
			strings.TrimSpace(record[cols["name"]]),
			leadTime,
			reliability,
		); err != nil {
			return fmt.Errorf("failed to upsert supplier: %w", err)
		}

		count++
	}

	log.Printf("Successfully seeded %d suppliers\n", count)
	return nil
}

func seedProducts(ctx context.Context, tx *sql.Tx, path string) error {
	log.Printf("Seeding products from %s\n", path)

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols, err := requireColumns(header,
		"name", "sku", "category", "unit_cost", "current_stock", "reorder_point", "supplier_name")
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO products (name, sku, category, unit_cost, current_stock, reorder_point, supplier_id)
		VALUES ($1, $2, $3, $4, $5, $6, (SELECT id FROM suppliers WHERE name = $7))
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			unit_cost = EXCLUDED.unit_cost,
			current_stock = EXCLUDED.current_stock,
			reorder_point = EXCLUDED.reorder_point,
			supplier_id = EXCLUDED.supplier_id
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare product statement: %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		sku := strings.TrimSpace(record[cols["sku"]])

		unitCost, err := strconv.ParseFloat(strings.TrimSpace(record[cols["unit_cost"]]), 64)
		if err != nil {
			return fmt.Errorf("invalid unit_cost for sku %s: %w", sku, err)
		}

		reorderPoint, err := strconv.Atoi(strings.TrimSpace(record[cols["reorder_point"]]))
		if err != nil {
			return fmt.Errorf("invalid reorder_point for sku %s: %w", sku, err)
		}

		currentStock, err := parseNullableInt(record[cols["current_stock"]])
		if err != nil {
			return fmt.Errorf("invalid current_stock for sku %s: %w", sku, err)
		}

		if _, err := stmt.ExecContext(ctx,
			strings.TrimSpace(record[cols["name"]]),
			sku,
			strings.TrimSpace(record[cols["category"]]),
			unitCost,
			currentStock,
			reorderPoint,
			nullIfEmpty(strings.TrimSpace(record[cols["supplier_name"]])),
		); err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", sku, err)
		}

		count++
	}

	log.Printf("Successfully seeded %d products\n", count)
	return nil
}

func seedTransactions(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	path := filepath.Join(c.String("data-dir"), "transactions.csv")
	log.Printf("Loading transactions from %s\n", path)

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols, err := requireColumns(header,
		"sku", "type", "quantity", "reference_number", "notes", "created_at")
	if err != nil {
		return err
	}

	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The ledger is append-only, so this inserts without conflict handling.
	const query = `
		INSERT INTO inventory_transactions (product_id, type, quantity, reference_number, notes, created_at)
		SELECT p.id, $2, $3, $4, $5, $6
		FROM products p
		WHERE p.sku = $1
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	skipped := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		sku := strings.TrimSpace(record[cols["sku"]])

		quantity, err := strconv.Atoi(strings.TrimSpace(record[cols["quantity"]]))
		if err != nil {
			return fmt.Errorf("invalid quantity for sku %s: %w", sku, err)
		}

		createdAt, err := parseTimestamp(record[cols["created_at"]])
		if err != nil {
			return fmt.Errorf("invalid created_at for sku %s: %w", sku, err)
		}

		res, err := stmt.ExecContext(ctx,
			sku,
			strings.TrimSpace(record[cols["type"]]),
			quantity,
			strings.TrimSpace(record[cols["reference_number"]]),
			strings.TrimSpace(record[cols["notes"]]),
			createdAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction for sku %s: %w", sku, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read insert result: %w", err)
		}
		if affected == 0 {
			log.Printf("warning: unknown sku %s, skipping transaction", sku)
			skipped++
			continue
		}

		inserted++
		if inserted%5000 == 0 {
			log.Printf("Loaded %d transactions...", inserted)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Successfully loaded %d transactions (%d skipped)\n", inserted, skipped)
	return nil
}

// seedDemo generates synthetic outbound history so the forecasting
// pipeline has something to work with on a fresh database. Products that
// already carry substantial history are left alone.
func seedDemo(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	var existing int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inventory_transactions").Scan(&existing); err != nil {
		return fmt.Errorf("failed to count transactions: %w", err)
	}

	if existing >= demoMinTransactions {
		log.Printf("Found %d existing transactions, sufficient for forecasting\n", existing)
		return nil
	}

	rows, err := db.QueryContext(ctx,
		"SELECT id, name, category FROM products ORDER BY id LIMIT $1", demoProductLimit)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	defer rows.Close()

	type demoProduct struct {
		id       int64
		name     string
		category string
	}

	var products []demoProduct
	for rows.Next() {
		var p demoProduct
		if err := rows.Scan(&p.id, &p.name, &p.category); err != nil {
			return fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate products: %w", err)
	}

	if len(products) == 0 {
		return fmt.Errorf("no products found, seed master data first")
	}

	target := demoTargetTotal - existing
	log.Printf("Adding up to %d demo transactions...\n", target)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO inventory_transactions (product_id, type, quantity, reference_number, notes, created_at)
		VALUES ($1, 'outbound', $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare demo statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	added := 0

products:
	for _, p := range products {
		for day := 0; day < demoHistoryDays; day++ {
			createdAt := now.AddDate(0, 0, -(demoHistoryDays - day))

			demand := demoDemand(p.category)
			if wd := createdAt.Weekday(); wd == time.Saturday || wd == time.Sunday {
				demand = int(float64(demand) * demoWeekendMultiplier)
			}

			if _, err := stmt.ExecContext(ctx,
				p.id,
				demand,
				fmt.Sprintf("TXN-%d", rand.Intn(9000)+1000),
				fmt.Sprintf("Daily demand for %s", p.name),
				createdAt,
			); err != nil {
				return fmt.Errorf("failed to insert demo transaction: %w", err)
			}

			added++
			if added >= target {
				break products
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Successfully added %d demo transactions\n", added)
	return nil
}

// demoDemand picks a daily demand level matching the category's typical
// sales volume.
func demoDemand(category string) int {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "electronics":
		return rand.Intn(8) + 5
	case "accessories":
		return rand.Intn(6) + 3
	default:
		return rand.Intn(5) + 2
	}
}

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseNullableInt(value string) (sql.NullInt64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullInt64{}, nil
	}

	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("invalid integer value %s: %w", value, err)
	}

	return sql.NullInt64{Int64: num, Valid: true}, nil
}

// parseTimestamp accepts RFC3339 timestamps and bare dates.
func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %s", value)
	}
	return t, nil
}

func requireColumns(header []string, names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	for _, name := range names {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing column %q in header %v", name, header)
		}
	}

	return idx, nil
}
