package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	levelModel "soalku_backend/internals/features/master/levels/model"
	subjectModel "soalku_backend/internals/features/master/subjects/model"
	topicModel "soalku_backend/internals/features/master/topics/model"
	"soalku_backend/internals/features/questions/soal/dto"
	"soalku_backend/internals/features/questions/soal/model"
	"soalku_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrQuestionNotFound = fiber.NewError(fiber.StatusNotFound, "Soal tidak ditemukan")
	ErrNotEditable      = fiber.NewError(fiber.StatusConflict, "Soal hanya bisa diubah saat berstatus draft atau rejected")
	ErrNotDeletable     = fiber.NewError(fiber.StatusConflict, "Hanya soal draft yang bisa dihapus kontributor")
)

/* =========================
   Review workflow
========================= */

type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// NextStatus transisi yang sah:
// draft|rejected -submit-> submitted, submitted -approve-> approved, submitted -reject-> rejected.
func NextStatus(cur model.QuestionStatus, a Action) (model.QuestionStatus, error) {
	switch a {
	case ActionSubmit:
		if cur == model.QuestionStatusDraft || cur == model.QuestionStatusRejected {
			return model.QuestionStatusSubmitted, nil
		}
	case ActionApprove:
		if cur == model.QuestionStatusSubmitted {
			return model.QuestionStatusApproved, nil
		}
	case ActionReject:
		if cur == model.QuestionStatusSubmitted {
			return model.QuestionStatusRejected, nil
		}
	default:
		return "", fiber.NewError(fiber.StatusBadRequest, "Aksi tidak dikenal")
	}
	return "", fiber.NewError(fiber.StatusConflict, "Soal berstatus "+string(cur)+" tidak bisa di-"+string(a))
}

// ValidateOptions: minimal 2 opsi, tepat satu benar, teks tidak kosong & tidak kembar
// (jawaban dicocokkan lewat teks persis).
func ValidateOptions(opts []dto.OptionInput) error {
	if len(opts) < 2 {
		return fiber.NewError(fiber.StatusBadRequest, "Soal minimal punya 2 opsi jawaban")
	}
	seen := make(map[string]bool, len(opts))
	correct := 0
	for _, o := range opts {
		if strings.TrimSpace(o.Text) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Teks opsi tidak boleh kosong")
		}
		if seen[o.Text] {
			return fiber.NewError(fiber.StatusBadRequest, "Teks opsi tidak boleh kembar: "+o.Text)
		}
		seen[o.Text] = true
		if o.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return fiber.NewError(fiber.StatusBadRequest, "Harus ada tepat satu opsi yang benar")
	}
	return nil
}

/* =========================
   Service
========================= */

type QuestionService struct {
	DB    *gorm.DB
	Clock dbtime.Clock
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{DB: db, Clock: dbtime.SystemClock}
}

func (s *QuestionService) now() time.Time {
	if s.Clock == nil {
		return dbtime.SystemClock()
	}
	return s.Clock().UTC()
}

// Get soal + opsi (urut).
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.QuestionModel, error) {
	var m model.QuestionModel
	err := s.DB.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("answer_option_order ASC") }).
		First(&m, "question_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// getOwned milik kontributor lain dianggap tidak ada.
func (s *QuestionService) getOwned(ctx context.Context, id, contributorID uuid.UUID) (*model.QuestionModel, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.QuestionContributorID != contributorID {
		return nil, ErrQuestionNotFound
	}
	return m, nil
}

// checkRefs subject wajib ada; topic (kalau diisi) harus terhubung ke subject; level harus ada.
func (s *QuestionService) checkRefs(ctx context.Context, db *gorm.DB, subjectID uuid.UUID, topicID, levelID *uuid.UUID) error {
	var n int64
	if err := db.WithContext(ctx).Model(&subjectModel.SubjectModel{}).Where("subject_id = ?", subjectID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Subject tidak ditemukan")
	}
	if topicID != nil {
		if err := db.WithContext(ctx).Model(&topicModel.TopicSubjectModel{}).
			Where("topic_subject_topic_id = ? AND topic_subject_subject_id = ?", *topicID, subjectID).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Topik tidak ditemukan pada subject ini")
		}
	}
	if levelID != nil {
		if err := db.WithContext(ctx).Model(&levelModel.LevelModel{}).Where("level_id = ?", *levelID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Level tidak ditemukan")
		}
	}
	return nil
}

// Create soal baru berstatus draft beserta opsinya.
func (s *QuestionService) Create(ctx context.Context, contributorID uuid.UUID, req dto.CreateQuestionRequest) (*model.QuestionModel, error) {
	req.Normalize()
	if err := ValidateOptions(req.Options); err != nil {
		return nil, err
	}
	m := &model.QuestionModel{
		QuestionSubjectID:     req.SubjectID,
		QuestionTopicID:       req.TopicID,
		QuestionLevelID:       req.LevelID,
		QuestionText:          req.Text,
		QuestionExplanation:   req.Explanation,
		QuestionStatus:        model.QuestionStatusDraft,
		QuestionContributorID: contributorID,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkRefs(ctx, tx, req.SubjectID, req.TopicID, req.LevelID); err != nil {
			return err
		}
		if err := tx.Omit("Options").Create(m).Error; err != nil {
			return err
		}
		m.Options = dto.ToOptionModels(m.QuestionID, req.Options)
		return tx.Create(&m.Options).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[QUESTION] dibuat id=%s contributor=%s", m.QuestionID, contributorID)
	return m, nil
}

// Update soal milik sendiri yang masih draft/rejected. Options non-nil diganti seluruhnya.
func (s *QuestionService) Update(ctx context.Context, id, contributorID uuid.UUID, req dto.UpdateQuestionRequest) (*model.QuestionModel, error) {
	m, err := s.getOwned(ctx, id, contributorID)
	if err != nil {
		return nil, err
	}
	if !m.QuestionStatus.Editable() {
		return nil, ErrNotEditable
	}
	if req.Options != nil {
		if err := ValidateOptions(req.Options); err != nil {
			return nil, err
		}
	}

	if req.SubjectID != nil {
		m.QuestionSubjectID = *req.SubjectID
	}
	if req.TopicID != nil {
		if *req.TopicID == uuid.Nil {
			m.QuestionTopicID = nil
		} else {
			m.QuestionTopicID = req.TopicID
		}
	}
	if req.LevelID != nil {
		if *req.LevelID == uuid.Nil {
			m.QuestionLevelID = nil
		} else {
			m.QuestionLevelID = req.LevelID
		}
	}
	if req.Text != nil {
		m.QuestionText = strings.TrimSpace(*req.Text)
	}
	if req.Explanation != nil {
		m.QuestionExplanation = req.Explanation
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkRefs(ctx, tx, m.QuestionSubjectID, m.QuestionTopicID, m.QuestionLevelID); err != nil {
			return err
		}
		// guard status: review bisa berjalan paralel
		res := tx.Model(&model.QuestionModel{}).
			Where("question_id = ? AND question_status IN ?", m.QuestionID,
				[]model.QuestionStatus{model.QuestionStatusDraft, model.QuestionStatusRejected}).
			Updates(map[string]any{
				"question_subject_id":  m.QuestionSubjectID,
				"question_topic_id":    m.QuestionTopicID,
				"question_level_id":    m.QuestionLevelID,
				"question_text":        m.QuestionText,
				"question_explanation": m.QuestionExplanation,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotEditable
		}
		if req.Options == nil {
			return nil
		}
		if err := tx.Where("answer_option_question_id = ?", m.QuestionID).Delete(&model.AnswerOptionModel{}).Error; err != nil {
			return err
		}
		m.Options = dto.ToOptionModels(m.QuestionID, req.Options)
		return tx.Create(&m.Options).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, m.QuestionID)
}

// SetImage mengganti URL gambar; kembalikan URL lama supaya file lama bisa dihapus.
func (s *QuestionService) SetImage(ctx context.Context, id, contributorID uuid.UUID, url string) (*model.QuestionModel, *string, error) {
	m, err := s.getOwned(ctx, id, contributorID)
	if err != nil {
		return nil, nil, err
	}
	if !m.QuestionStatus.Editable() {
		return nil, nil, ErrNotEditable
	}
	old := m.QuestionImageURL
	if err := s.DB.WithContext(ctx).Model(&model.QuestionModel{}).
		Where("question_id = ?", m.QuestionID).
		Update("question_image_url", url).Error; err != nil {
		return nil, nil, err
	}
	m.QuestionImageURL = &url
	return m, old, nil
}

// DeleteOwnDraft kontributor hanya boleh menghapus draft miliknya.
func (s *QuestionService) DeleteOwnDraft(ctx context.Context, id, contributorID uuid.UUID) (*model.QuestionModel, error) {
	m, err := s.getOwned(ctx, id, contributorID)
	if err != nil {
		return nil, err
	}
	if m.QuestionStatus != model.QuestionStatusDraft {
		return nil, ErrNotDeletable
	}
	return m, s.delete(ctx, m.QuestionID)
}

// Delete oleh admin; soal yang sudah dipakai paket -> 409.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) (*model.QuestionModel, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return m, s.delete(ctx, m.QuestionID)
}

func (s *QuestionService) delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Table("package_questions").Where("package_question_question_id = ?", id).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return fiber.NewError(fiber.StatusConflict, "Soal masih digunakan di paket")
		}
		if err := tx.Where("answer_option_question_id = ?", id).Delete(&model.AnswerOptionModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.QuestionModel{}, "question_id = ?", id).Error
	})
}

// Submit kontributor mengirim soal ke antrian review.
func (s *QuestionService) Submit(ctx context.Context, id, contributorID uuid.UUID) (*model.QuestionModel, error) {
	m, err := s.getOwned(ctx, id, contributorID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, m, ActionSubmit, nil, nil)
}

// Review dipakai validator: approve atau reject (note wajib untuk reject).
func (s *QuestionService) Review(ctx context.Context, id, validatorID uuid.UUID, a Action, note *string) (*model.QuestionModel, error) {
	if a != ActionApprove && a != ActionReject {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Aksi review tidak dikenal")
	}
	if a == ActionReject && (note == nil || strings.TrimSpace(*note) == "") {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Catatan penolakan wajib diisi")
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, m, a, &validatorID, note)
}

func (s *QuestionService) transition(ctx context.Context, m *model.QuestionModel, a Action, validatorID *uuid.UUID, note *string) (*model.QuestionModel, error) {
	next, err := NextStatus(m.QuestionStatus, a)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"question_status": next}
	if validatorID != nil {
		now := s.now()
		updates["question_validator_id"] = *validatorID
		updates["question_reviewed_at"] = now
		updates["question_review_note"] = note
		m.QuestionValidatorID = validatorID
		m.QuestionReviewedAt = &now
		m.QuestionReviewNote = note
	}

	// WHERE status lama: dua reviewer bersamaan -> yang kalah dapat 409
	res := s.DB.WithContext(ctx).Model(&model.QuestionModel{}).
		Where("question_id = ? AND question_status = ?", m.QuestionID, m.QuestionStatus).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fiber.NewError(fiber.StatusConflict, "Status soal sudah berubah, muat ulang data")
	}
	log.Printf("[QUESTION] %s id=%s %s -> %s", a, m.QuestionID, m.QuestionStatus, next)
	m.QuestionStatus = next
	return m, nil
}

/* =========================
   Listing
========================= */

type ListFilter struct {
	Status        string
	SubjectID     *uuid.UUID
	TopicID       *uuid.UUID
	LevelID       *uuid.UUID
	ContributorID *uuid.UUID
	Q             string
	Offset, Limit int
}

func (s *QuestionService) List(ctx context.Context, f ListFilter) ([]model.QuestionModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.QuestionModel{})
	if f.Status != "" {
		q = q.Where("question_status = ?", f.Status)
	}
	if f.SubjectID != nil {
		q = q.Where("question_subject_id = ?", *f.SubjectID)
	}
	if f.TopicID != nil {
		q = q.Where("question_topic_id = ?", *f.TopicID)
	}
	if f.LevelID != nil {
		q = q.Where("question_level_id = ?", *f.LevelID)
	}
	if f.ContributorID != nil {
		q = q.Where("question_contributor_id = ?", *f.ContributorID)
	}
	if kw := strings.TrimSpace(f.Q); kw != "" {
		q = q.Where("LOWER(question_text) LIKE ?", "%"+strings.ToLower(kw)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.QuestionModel
	err := q.Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("answer_option_order ASC") }).
		Order("question_created_at DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&rows).Error
	return rows, total, err
}
