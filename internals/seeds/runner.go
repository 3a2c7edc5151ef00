package seeds

import (
	"log"
	"path/filepath"

	levels "soalku_backend/internals/seeds/master/levels"
	users "soalku_backend/internals/seeds/users"

	"gorm.io/gorm"
)

// RunAllSeeds dijalankan saat SEED_ON_START=true. dir = folder internals/seeds.
// Seeder idempoten: baris yang sudah ada dilewati.
func RunAllSeeds(db *gorm.DB, dir string) {

	//* User awal (admin, kontributor, validator)
	if n, err := users.SeedUsersFromJSON(db, filepath.Join(dir, "users", "data_users.json")); err != nil {
		log.Printf("❌ Seed users: %v", err)
	} else {
		log.Printf("🌱 Seed users: %d baru", n)
	}

	//* Master
	if n, err := levels.SeedLevelsFromJSON(db, filepath.Join(dir, "master", "levels", "data_levels.json")); err != nil {
		log.Printf("❌ Seed levels: %v", err)
	} else {
		log.Printf("🌱 Seed levels: %d baru", n)
	}
}
