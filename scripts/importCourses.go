package main

import (
	"context"
	"encoding/csv"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"yideng/config"
	"yideng/database"
	"yideng/ledger"
	"yideng/utils"
)

// Imports a course catalog CSV with the header web2CourseId,name,price.
// Usage: go run ./scripts/importCourses.go [courses.csv]
func main() {
	config.LoadConfig()
	database.ConnectDb()

	path := "courses.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	ctx := context.Background()
	l, err := utils.NewLedger(ctx, database.Database.Db, config.AppConfig)
	if err != nil {
		log.Fatalf("Failed to start ledger: %v", err)
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.TrimSpace(h)] = i
	}
	log.Printf("Total rows to import: %d", len(records)-1)

	inserted, existing, skipped := 0, 0, 0
	for i, row := range records[1:] {
		id := getField(row, headerIndex, "web2CourseId")
		name := getField(row, headerIndex, "name")
		price, err := strconv.ParseUint(getField(row, headerIndex, "price"), 10, 64)
		if id == "" || name == "" || err != nil {
			log.Printf("Skipping row %d: incomplete course", i+2)
			skipped++
			continue
		}

		_, err = l.Market.AddCourse(ctx, l.Deployer(), id, name, price)
		switch {
		case errors.Is(err, ledger.ErrCourseExists):
			existing++
		case err != nil:
			log.Printf("Error adding course %s: %v", id, err)
			skipped++
		default:
			inserted++
		}
	}

	log.Printf("=== Import Complete ===")
	log.Printf("Inserted: %d", inserted)
	log.Printf("Already present: %d", existing)
	log.Printf("Skipped: %d", skipped)
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
