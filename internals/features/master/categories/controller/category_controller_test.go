package controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	database "soalku_backend/internals/databases"
	"soalku_backend/internals/features/master/categories/model"
	subjectModel "soalku_backend/internals/features/master/subjects/model"
	helper "soalku_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

func newApp(t *testing.T) (*fiber.App, *CategoryController) {
	t.Helper()
	ctrl := NewCategoryController(database.OpenTestDB(t), nil)
	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler})
	app.Get("/categories/:id", ctrl.Detail)
	app.Post("/categories", ctrl.Create)
	app.Delete("/categories/:id", ctrl.Delete)
	return app, ctrl
}

func send(t *testing.T, app *fiber.App, method, path, body string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode
}

func TestCreate_DuplicateNameIsConflict(t *testing.T) {
	app, _ := newApp(t)

	if code := send(t, app, http.MethodPost, "/categories", `{"category_name":"Sains"}`); code != fiber.StatusCreated {
		t.Fatalf("first create: %d", code)
	}
	if code := send(t, app, http.MethodPost, "/categories", `{"category_name":"Sains"}`); code != fiber.StatusConflict {
		t.Fatalf("duplicate: want 409, got %d", code)
	}
	if code := send(t, app, http.MethodPost, "/categories", `{"category_name":""}`); code != fiber.StatusBadRequest {
		t.Fatalf("empty name: want 400, got %d", code)
	}
}

func TestDelete_InUseIsConflict(t *testing.T) {
	app, ctrl := newApp(t)

	cat := model.CategoryModel{CategoryName: "Bahasa"}
	if err := ctrl.DB.Create(&cat).Error; err != nil {
		t.Fatal(err)
	}
	subj := subjectModel.SubjectModel{SubjectCategoryID: cat.CategoryID, SubjectName: "Inggris"}
	if err := ctrl.DB.Create(&subj).Error; err != nil {
		t.Fatal(err)
	}

	path := "/categories/" + cat.CategoryID.String()
	if code := send(t, app, http.MethodDelete, path, ""); code != fiber.StatusConflict {
		t.Fatalf("in use: want 409, got %d", code)
	}
	if err := ctrl.DB.Delete(&subj).Error; err != nil {
		t.Fatal(err)
	}
	if code := send(t, app, http.MethodDelete, path, ""); code != fiber.StatusOK {
		t.Fatalf("delete: want 200, got %d", code)
	}
	if code := send(t, app, http.MethodGet, path, ""); code != fiber.StatusNotFound {
		t.Fatalf("after delete: want 404, got %d", code)
	}
	if code := send(t, app, http.MethodGet, "/categories/bukan-uuid", ""); code != fiber.StatusBadRequest {
		t.Fatalf("bad id: want 400, got %d", code)
	}
}
