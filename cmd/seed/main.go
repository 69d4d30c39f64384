package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tabletime/tabletime-backend/config"
	"github.com/tabletime/tabletime-backend/internal/app/model"
	"github.com/tabletime/tabletime-backend/internal/app/repository"
	"github.com/tabletime/tabletime-backend/internal/db"
	"github.com/tabletime/tabletime-backend/pkg/util"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	file, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	catalog, err := readCatalog(file)
	file.Close()
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Restaurants to import: %d\n", len(catalog))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	password := os.Getenv("SEED_OWNER_PASSWORD")
	if password == "" {
		password = "changeme123"
	}

	store := repository.NewStore(db.GetDB())
	if err := importCatalog(context.Background(), store, catalog, password); err != nil {
		log.Fatal("Failed to import catalog:", err)
	}

	fmt.Println("Import completed successfully!")
}

// importCatalog writes every restaurant with its confirmed owner account in one transaction.
func importCatalog(ctx context.Context, store *repository.Store, catalog []restaurantSeed, ownerPassword string) error {
	hash, err := util.HashPassword(ownerPassword)
	if err != nil {
		return fmt.Errorf("hash owner password: %w", err)
	}

	return store.Transaction(ctx, func(tx *repository.Store) error {
		for i, seed := range catalog {
			owner := &model.User{
				Name:         seed.OwnerName,
				Email:        seed.OwnerEmail,
				PasswordHash: hash,
				Role:         model.RoleRestaurantOwner,
				IsConfirmed:  true,
			}
			if err := tx.Users.Insert(ctx, owner); err != nil {
				return fmt.Errorf("owner %s: %w", seed.OwnerEmail, err)
			}

			restaurant := seed.Restaurant
			restaurant.OwnerID = owner.ID
			if err := tx.Restaurants.Insert(ctx, &restaurant); err != nil {
				return fmt.Errorf("restaurant %s: %w", restaurant.Name, err)
			}
			if err := tx.Users.UpdateByID(ctx, owner.ID, map[string]interface{}{"restaurant_id": restaurant.ID}); err != nil {
				return err
			}

			for _, table := range seed.Tables {
				table.RestaurantID = restaurant.ID
				table.Status = model.TableAvailable
				if err := tx.Tables.Insert(ctx, &table); err != nil {
					return fmt.Errorf("table %d of %s: %w", table.TableNumber, restaurant.Name, err)
				}
			}
			for _, meal := range seed.Meals {
				meal.RestaurantID = restaurant.ID
				if err := tx.Meals.Insert(ctx, &meal); err != nil {
					return fmt.Errorf("meal %s of %s: %w", meal.Name, restaurant.Name, err)
				}
			}

			fmt.Printf("Imported %d/%d: %s (%d tables, %d meals)\n",
				i+1, len(catalog), restaurant.Name, len(seed.Tables), len(seed.Meals))
		}
		return nil
	})
}
