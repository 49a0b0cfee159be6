package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedConcrete(db)
	seedMortar(db)

	log.Println("Seeding completed successfully!")
}

type tierPrices struct {
	Normal  float64
	Pump    *float64
	Tremie1 *float64
	Tremie2 *float64
	Tremie3 *float64
}

func f(v float64) *float64 { return &v }

func seedConcrete(db *sql.DB) {
	products := []struct {
		Name    string
		Slug    string
		Grade   string
		Desc    string
		Stock   int
		Prices  tierPrices
	}{
		{"Ready-Mix Concrete N10", "ready-mix-concrete-n10", "N10", "Lean mix for blinding and levelling works.", 500,
			tierPrices{Normal: 190}},
		{"Ready-Mix Concrete N15", "ready-mix-concrete-n15", "N15", "General purpose mix for footpaths and kerbs.", 500,
			tierPrices{Normal: 210, Pump: f(235)}},
		{"Ready-Mix Concrete N20", "ready-mix-concrete-n20", "N20", "Standard structural mix for slabs and driveways.", 400,
			tierPrices{Normal: 230, Pump: f(255), Tremie1: f(245)}},
		{"Ready-Mix Concrete N25", "ready-mix-concrete-n25", "N25", "Structural mix for beams, columns and suspended slabs.", 400,
			tierPrices{Normal: 250, Pump: f(275), Tremie1: f(265), Tremie2: f(270)}},
		{"Ready-Mix Concrete N30", "ready-mix-concrete-n30", "N30", "High strength mix for heavily loaded structural elements.", 300,
			tierPrices{Normal: 270, Pump: f(295), Tremie1: f(285), Tremie2: f(290), Tremie3: f(298)}},
		{"Ready-Mix Concrete N35", "ready-mix-concrete-n35", "N35", "High strength mix for piling and marine works.", 200,
			tierPrices{Normal: 295, Pump: f(320), Tremie1: f(310), Tremie2: f(315), Tremie3: f(325)}},
		{"Ready-Mix Concrete N40", "ready-mix-concrete-n40", "N40", "Premium mix for high-rise columns and transfer plates.", 150,
			tierPrices{Normal: 320, Pump: f(345), Tremie1: f(335), Tremie2: f(340), Tremie3: f(350)}},
	}

	fmt.Println("Seeding concrete products...")
	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (name, slug, description, category, product_type, grade,
				normal_price, pump_price, tremie_1_price, tremie_2_price, tremie_3_price,
				unit, stock_quantity)
			VALUES ($1, $2, $3, 'concrete', 'concrete', $4, $5, $6, $7, $8, $9, 'm3', $10)
			ON CONFLICT (slug) DO UPDATE SET
				normal_price = EXCLUDED.normal_price,
				pump_price = EXCLUDED.pump_price,
				tremie_1_price = EXCLUDED.tremie_1_price,
				tremie_2_price = EXCLUDED.tremie_2_price,
				tremie_3_price = EXCLUDED.tremie_3_price,
				stock_quantity = EXCLUDED.stock_quantity;
		`, p.Name, p.Slug, p.Desc, p.Grade,
			p.Prices.Normal, p.Prices.Pump, p.Prices.Tremie1, p.Prices.Tremie2, p.Prices.Tremie3,
			p.Stock)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Slug, err)
		}
	}
}

func seedMortar(db *sql.DB) {
	products := []struct {
		Name  string
		Slug  string
		Ratio string
		Desc  string
		Stock int
		Price float64
	}{
		{"Cement Mortar 1:3", "cement-mortar-1-3", "1:3", "Rich mix for load-bearing brickwork and rendering.", 600, 180},
		{"Cement Mortar 1:4", "cement-mortar-1-4", "1:4", "General purpose mix for internal and external walls.", 600, 165},
		{"Cement Mortar 1:5", "cement-mortar-1-5", "1:5", "Economical mix for non-structural partition walls.", 600, 150},
		{"Cement Mortar 1:6", "cement-mortar-1-6", "1:6", "Lean mix for bedding and general masonry fill.", 600, 140},
		{"Cement Mortar 2:5", "cement-mortar-2-5", "2:5", "Richer blend for exposed and weather-facing brickwork.", 400, 195},
	}

	fmt.Println("Seeding mortar products...")
	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (name, slug, description, category, product_type, mortar_ratio,
				normal_price, unit, stock_quantity)
			VALUES ($1, $2, $3, 'mortar', 'mortar', $4, $5, 'm3', $6)
			ON CONFLICT (slug) DO UPDATE SET
				normal_price = EXCLUDED.normal_price,
				stock_quantity = EXCLUDED.stock_quantity;
		`, p.Name, p.Slug, p.Desc, p.Ratio, p.Price, p.Stock)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Slug, err)
		}
	}
}
