// Command orderdesk-seed loads products and orders from a YAML file into the
// sql docstore, for local development and demos.
package main

import (
	"context"
	"flag"
	"log"

	"orderdesk/config"
	"orderdesk/docstore/sqldoc"
	"orderdesk/store"
)

func main() {
	configPath := flag.String("config", "orderdesk.yaml", "path to config file")
	seedPath := flag.String("file", "seed.yaml", "path to seed file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	f, err := sqldoc.LoadSeed(*seedPath)
	if err != nil {
		log.Fatalf("load seed: %v", err)
	}
	products, orders, err := sqldoc.New(db).Seed(context.Background(), f)
	if err != nil {
		log.Fatalf("seed (after %d products, %d orders): %v", products, orders, err)
	}
	log.Printf("seed: inserted %d products and %d orders into %s", products, orders, cfg.Database.Driver)
}
