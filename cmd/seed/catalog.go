package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// Workbook layout. Every sheet starts with a header row and keys its rows by owner email.
const (
	sheetRestaurants = "Restaurants"
	sheetTables      = "Tables"
	sheetMeals       = "Meals"
)

// Restaurants: owner_email, owner_name, name, address, phone, opening_hours, categories, description
// Tables:      owner_email, table_number, capacity
// Meals:       owner_email, name, price, category, description

type restaurantSeed struct {
	OwnerEmail string
	OwnerName  string
	Restaurant model.Restaurant
	Tables     []model.Table
	Meals      []model.Meal
}

func readCatalog(r io.Reader) ([]restaurantSeed, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetRestaurants)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheetRestaurants, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no restaurants found in XLSX file")
	}

	var seeds []restaurantSeed
	byOwner := make(map[string]int)
	skipped := 0

	for i, row := range rows[1:] {
		row = padRow(row, 8)
		email := strings.ToLower(strings.TrimSpace(row[0]))
		name := strings.TrimSpace(row[2])
		if email == "" || name == "" {
			skipped++
			continue
		}
		if _, dup := byOwner[email]; dup {
			return nil, fmt.Errorf("%s row %d: owner %s already has a restaurant", sheetRestaurants, i+2, email)
		}

		categories := lo.Uniq(lo.Compact(lo.Map(strings.Split(row[6], ","), func(c string, _ int) string {
			return strings.ToLower(strings.TrimSpace(c))
		})))

		byOwner[email] = len(seeds)
		seeds = append(seeds, restaurantSeed{
			OwnerEmail: email,
			OwnerName:  strings.ToLower(strings.TrimSpace(row[1])),
			Restaurant: model.Restaurant{
				Name:         name,
				Address:      strings.TrimSpace(row[3]),
				Phone:        strings.TrimSpace(row[4]),
				OpeningHours: strings.TrimSpace(row[5]),
				Categories:   model.StringArray(categories),
				Description:  strings.TrimSpace(row[7]),
			},
		})
	}

	tableRows, err := optionalRows(f, sheetTables)
	if err != nil {
		return nil, err
	}
	for i, row := range tableRows {
		row = padRow(row, 3)
		idx, ok := byOwner[strings.ToLower(strings.TrimSpace(row[0]))]
		if !ok {
			skipped++
			continue
		}
		number, errNumber := strconv.Atoi(strings.TrimSpace(row[1]))
		capacity, errCapacity := strconv.Atoi(strings.TrimSpace(row[2]))
		if errNumber != nil || errCapacity != nil || number <= 0 || capacity <= 0 {
			return nil, fmt.Errorf("%s row %d: table number and capacity must be positive integers", sheetTables, i+2)
		}
		seeds[idx].Tables = append(seeds[idx].Tables, model.Table{TableNumber: number, Capacity: capacity})
	}

	mealRows, err := optionalRows(f, sheetMeals)
	if err != nil {
		return nil, err
	}
	for i, row := range mealRows {
		row = padRow(row, 5)
		idx, ok := byOwner[strings.ToLower(strings.TrimSpace(row[0]))]
		if !ok {
			skipped++
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("%s row %d: invalid price %q", sheetMeals, i+2, row[2])
		}
		seeds[idx].Meals = append(seeds[idx].Meals, model.Meal{
			Name:        strings.TrimSpace(row[1]),
			Price:       price,
			Category:    strings.ToLower(strings.TrimSpace(row[3])),
			Description: strings.TrimSpace(row[4]),
		})
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Restaurants: %d\n", len(seeds))
	fmt.Printf("  Skipped rows: %d\n", skipped)

	return seeds, nil
}

// optionalRows returns the data rows of a sheet, or nothing when the sheet is absent.
func optionalRows(f *excelize.File, sheet string) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}
	return rows[1:], nil
}

// excelize trims trailing empty cells
func padRow(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}
