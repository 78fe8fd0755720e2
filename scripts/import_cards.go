package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/emberdeck/duelist/internal/sim"
)

// Converts a spreadsheet export of cards into a catalog file for
// simulation.catalog_path.
//
//	go run ./scripts/import_cards.go data/cards.csv config/cards.yaml
func main() {
	csvPath := "data/cards.csv"
	outPath := "config/cards.yaml"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	absPath, err := filepath.Abs(csvPath)
	if err != nil {
		log.Fatalf("Failed to get absolute path: %v", err)
	}
	fmt.Println("=== Card Catalog Import ===")
	fmt.Printf("CSV file: %s\n", absPath)

	file, err := os.Open(absPath)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	defs, err := sim.ReadCardsCSV(file)
	if err != nil {
		log.Fatalf("Failed to parse cards: %v", err)
	}
	data, err := sim.MarshalCatalog(defs)
	if err != nil {
		log.Fatalf("Catalog is invalid: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		log.Fatalf("Failed to write catalog: %v", err)
	}

	monsters := 0
	for _, d := range defs {
		if d.Kind == "monster" || d.Kind == "" {
			monsters++
		}
	}
	fmt.Printf("Wrote %d cards (%d monsters, %d spells) to %s\n", len(defs), monsters, len(defs)-monsters, outPath)
}
