package controller

import (
	"strings"

	"soalku_backend/internals/features/questions/soal/dto"
	"soalku_backend/internals/features/questions/soal/model"
	"soalku_backend/internals/features/questions/soal/service"
	helper "soalku_backend/internals/helpers"
	"soalku_backend/internals/helpers/upload"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type QuestionController struct {
	Service   *service.QuestionService
	Validator *validator.Validate
	Uploader  *upload.Uploader
}

func NewQuestionController(svc *service.QuestionService, up *upload.Uploader) *QuestionController {
	return &QuestionController{Service: svc, Validator: helper.NewValidator(), Uploader: up}
}

func optionalUUIDQuery(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" tidak valid")
	}
	return &id, nil
}

// filterFromQuery ?status=&subject_id=&topic_id=&level_id=&q=&page=&per_page=
func filterFromQuery(c *fiber.Ctx) (service.ListFilter, helper.Paging, error) {
	p := helper.ResolvePaging(c, 20, 100)
	f := service.ListFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Q:      c.Query("q"),
		Offset: p.Offset,
		Limit:  p.Limit,
	}
	if f.Status != "" && !model.QuestionStatus(f.Status).Valid() {
		return f, p, fiber.NewError(fiber.StatusBadRequest, "status tidak valid")
	}
	var err error
	if f.SubjectID, err = optionalUUIDQuery(c, "subject_id"); err != nil {
		return f, p, err
	}
	if f.TopicID, err = optionalUUIDQuery(c, "topic_id"); err != nil {
		return f, p, err
	}
	if f.LevelID, err = optionalUUIDQuery(c, "level_id"); err != nil {
		return f, p, err
	}
	return f, p, nil
}

func (h *QuestionController) respondList(c *fiber.Ctx, f service.ListFilter, p helper.Paging) error {
	rows, total, err := h.Service.List(c.UserContext(), f)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "Daftar soal", dto.FromModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

/* =========================
   Contributor
========================= */

// POST /contributor/questions
func (h *QuestionController) Create(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	m, err := h.Service.Create(c.UserContext(), userID, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Soal berhasil dibuat", dto.FromModel(m))
}

// GET /contributor/questions
func (h *QuestionController) ListMine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	f, p, err := filterFromQuery(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	f.ContributorID = &userID
	return h.respondList(c, f, p)
}

// GET /contributor/questions/:id
func (h *QuestionController) DetailMine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromError(c, err)
	}
	if m.QuestionContributorID != userID {
		return helper.FromError(c, service.ErrQuestionNotFound)
	}
	return helper.JsonOK(c, "Detail soal", dto.FromModel(m))
}

// PATCH /contributor/questions/:id
func (h *QuestionController) Update(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	m, err := h.Service.Update(c.UserContext(), id, userID, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Soal berhasil diperbarui", dto.FromModel(m))
}

// POST /contributor/questions/:id/image (multipart field question_image)
func (h *QuestionController) UploadImage(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	url, err := h.Uploader.FromForm(c, "question_image")
	if err != nil {
		return helper.FromError(c, err)
	}
	if url == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "File question_image wajib diunggah")
	}
	m, old, err := h.Service.SetImage(c.UserContext(), id, userID, url)
	if err != nil {
		h.Uploader.Remove(c.UserContext(), &url)
		return helper.FromError(c, err)
	}
	h.Uploader.Remove(c.UserContext(), old)
	return helper.JsonUpdated(c, "Gambar soal diperbarui", dto.FromModel(m))
}

// POST /contributor/questions/:id/submit
func (h *QuestionController) Submit(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Submit(c.UserContext(), id, userID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Soal dikirim untuk direview", dto.FromModel(m))
}

// DELETE /contributor/questions/:id
func (h *QuestionController) DeleteMine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.DeleteOwnDraft(c.UserContext(), id, userID)
	if err != nil {
		return helper.FromError(c, err)
	}
	if h.Uploader != nil {
		h.Uploader.Remove(c.UserContext(), m.QuestionImageURL)
	}
	return helper.JsonDeleted(c, "Soal dihapus", fiber.Map{"question_id": m.QuestionID})
}

/* =========================
   Validator
========================= */

// GET /validator/questions (default status=submitted)
func (h *QuestionController) ListForReview(c *fiber.Ctx) error {
	f, p, err := filterFromQuery(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	if f.Status == "" {
		f.Status = string(model.QuestionStatusSubmitted)
	}
	return h.respondList(c, f, p)
}

// GET /validator/questions/:id, GET /admin/questions/:id
func (h *QuestionController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Detail soal", dto.FromModel(m))
}

// POST /validator/questions/:id/approve
func (h *QuestionController) Approve(c *fiber.Ctx) error {
	validatorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Review(c.UserContext(), id, validatorID, service.ActionApprove, nil)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Soal disetujui", dto.FromModel(m))
}

// POST /validator/questions/:id/reject {note}
func (h *QuestionController) Reject(c *fiber.Ctx) error {
	validatorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	note := strings.TrimSpace(req.Note)
	m, err := h.Service.Review(c.UserContext(), id, validatorID, service.ActionReject, &note)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Soal ditolak", dto.FromModel(m))
}

/* =========================
   Admin
========================= */

// GET /admin/questions
func (h *QuestionController) ListAll(c *fiber.Ctx) error {
	f, p, err := filterFromQuery(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	if f.ContributorID, err = optionalUUIDQuery(c, "contributor_id"); err != nil {
		return helper.FromError(c, err)
	}
	return h.respondList(c, f, p)
}

// DELETE /admin/questions/:id
func (h *QuestionController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Delete(c.UserContext(), id)
	if err != nil {
		return helper.FromError(c, err)
	}
	if h.Uploader != nil {
		h.Uploader.Remove(c.UserContext(), m.QuestionImageURL)
	}
	return helper.JsonDeleted(c, "Soal dihapus", fiber.Map{"question_id": m.QuestionID})
}
