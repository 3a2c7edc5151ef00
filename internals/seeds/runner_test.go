package seeds

import (
	"testing"

	database "soalku_backend/internals/databases"
	levelModel "soalku_backend/internals/features/master/levels/model"
	userModel "soalku_backend/internals/features/users/user/model"
)

func TestRunAllSeedsIsIdempotent(t *testing.T) {
	db := database.OpenTestDB(t)

	RunAllSeeds(db, ".")
	RunAllSeeds(db, ".")

	var users []userModel.UserModel
	if err := db.Order("email").Find(&users).Error; err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Fatalf("users = %d, want 3", len(users))
	}
	roles := map[string]bool{}
	for _, u := range users {
		roles[u.Role] = true
		if u.Password == nil || *u.Password == "" {
			t.Fatalf("user %s tanpa password hash", u.Email)
		}
	}
	for _, r := range []string{userModel.RoleAdmin, userModel.RoleContributor, userModel.RoleValidator} {
		if !roles[r] {
			t.Errorf("role %s tidak ter-seed", r)
		}
	}

	var nLevels int64
	db.Model(&levelModel.LevelModel{}).Count(&nLevels)
	if nLevels != 5 {
		t.Fatalf("levels = %d, want 5", nLevels)
	}
}
