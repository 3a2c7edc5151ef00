package service

import (
	"context"
	"errors"
	"log"
	"time"

	"soalku_backend/internals/features/exams/attempts/model"
	packageModel "soalku_backend/internals/features/exams/packages/model"
	subService "soalku_backend/internals/features/finance/subscriptions/service"
	soalModel "soalku_backend/internals/features/questions/soal/model"
	"soalku_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAttemptNotFound    = fiber.NewError(fiber.StatusNotFound, "Attempt tidak ditemukan")
	ErrAttemptFinished    = fiber.NewError(fiber.StatusConflict, "Attempt sudah disubmit")
	ErrPackageNotFound    = fiber.NewError(fiber.StatusNotFound, "Paket tidak ditemukan")
	ErrPackageInactive    = fiber.NewError(fiber.StatusForbidden, "Paket tidak aktif")
	ErrSubscriptionNeeded = fiber.NewError(fiber.StatusForbidden, "Anda belum berlangganan paket ini")
)

type AttemptService struct {
	DB       *gorm.DB
	Clock    dbtime.Clock
	Location *time.Location
}

func NewAttemptService(db *gorm.DB, loc *time.Location) *AttemptService {
	return &AttemptService{DB: db, Clock: dbtime.SystemClock, Location: loc}
}

func (s *AttemptService) now() time.Time {
	if s.Clock == nil {
		return dbtime.SystemClock()
	}
	return s.Clock().UTC()
}

/* =========================
   Access
========================= */

// CheckAccess: paket harus aktif; paket berbayar butuh grant aktif.
func (s *AttemptService) CheckAccess(ctx context.Context, subscriberID, packageID uuid.UUID) (*packageModel.PackageModel, error) {
	var pkg packageModel.PackageModel
	if err := s.DB.WithContext(ctx).First(&pkg, "package_id = ?", packageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	if pkg.PackageStatus != packageModel.PackageStatusActive {
		return nil, ErrPackageInactive
	}
	if pkg.IsFree() {
		return &pkg, nil
	}

	today := dbtime.DateOf(s.now(), s.Location)
	ok, err := subService.HasActiveSubscription(ctx, s.DB, subscriberID, packageID, today)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSubscriptionNeeded
	}
	return &pkg, nil
}

/* =========================
   Attempt Manager
========================= */

// GetOrCreateOpenAttempt mengembalikan attempt terbuka untuk subscriber+paket,
// atau membuat yang baru. Bentrok dengan request paralel diselesaikan oleh
// unique index uq_attempts_open: insert yang kalah dibaca ulang.
func (s *AttemptService) GetOrCreateOpenAttempt(ctx context.Context, subscriberID, packageID uuid.UUID) (*model.AttemptModel, error) {
	db := s.DB.WithContext(ctx)

	if a, err := findOpenAttempt(db, subscriberID, packageID); err == nil {
		return a, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	a := model.AttemptModel{
		AttemptSubscriberID: subscriberID,
		AttemptPackageID:    packageID,
		AttemptStartedAt:    s.now(),
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&a)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[ATTEMPT] baru attempt=%s subscriber=%s package=%s", a.AttemptID, subscriberID, packageID)
		return &a, nil
	}
	return findOpenAttempt(db, subscriberID, packageID)
}

func findOpenAttempt(db *gorm.DB, subscriberID, packageID uuid.UUID) (*model.AttemptModel, error) {
	var a model.AttemptModel
	err := db.
		Where("attempt_subscriber_id = ? AND attempt_package_id = ? AND attempt_finished_at IS NULL", subscriberID, packageID).
		Take(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetOwnedAttempt attempt milik subscriber; attempt orang lain dianggap tidak ada.
func (s *AttemptService) GetOwnedAttempt(ctx context.Context, attemptID, subscriberID uuid.UUID, withAnswers bool) (*model.AttemptModel, error) {
	q := s.DB.WithContext(ctx)
	if withAnswers {
		q = q.Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_record_package_question_id ASC")
		})
	}
	var a model.AttemptModel
	if err := q.First(&a, "attempt_id = ? AND attempt_subscriber_id = ?", attemptID, subscriberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	return &a, nil
}

/* =========================
   Slots
========================= */

// LoadSlots soal-soal paket dalam urutan slot, beserta opsinya.
func LoadSlots(ctx context.Context, db *gorm.DB, packageID uuid.UUID) ([]Slot, error) {
	var rows []packageModel.PackageQuestionModel
	err := db.WithContext(ctx).
		Preload("Question").
		Preload("Question.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_option_order ASC")
		}).
		Where("package_question_package_id = ?", packageID).
		Order("package_question_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, 0, len(rows))
	for _, r := range rows {
		slot := Slot{PackageQuestionID: r.PackageQuestionID, QuestionID: r.PackageQuestionQuestionID}
		if r.Question != nil {
			slot.Options = toSlotOptions(r.Question.Options)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func toSlotOptions(opts []soalModel.AnswerOptionModel) []SlotOption {
	out := make([]SlotOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, SlotOption{ID: o.AnswerOptionID, Text: o.AnswerOptionText, IsCorrect: o.AnswerOptionIsCorrect})
	}
	return out
}

/* =========================
   Answer Recorder
========================= */

// RecordAnswers mengganti seluruh jawaban tercatat attempt dengan set baru.
func (s *AttemptService) RecordAnswers(ctx context.Context, attempt *model.AttemptModel, answers map[string]string) ([]model.AnswerRecordModel, error) {
	slots, err := LoadSlots(ctx, s.DB, attempt.AttemptPackageID)
	if err != nil {
		return nil, err
	}
	matches := MatchAnswers(slots, answers)
	records := buildRecords(attempt, matches, s.now())

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureOpen(tx, attempt.AttemptID); err != nil {
			return err
		}
		return replaceRecords(tx, attempt.AttemptID, records)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

/* =========================
   Scorer
========================= */

type SubmitResult struct {
	Attempt *model.AttemptModel `json:"attempt"`
	ScoreResult
}

// Submit menilai dan menutup attempt.
// answers != nil: jawaban direkam ulang dulu (full replace).
// answers == nil: nilai dihitung dari jawaban yang sudah tercatat.
func (s *AttemptService) Submit(ctx context.Context, attempt *model.AttemptModel, answers map[string]string) (*SubmitResult, error) {
	if attempt.IsFinished() {
		return nil, ErrAttemptFinished
	}
	slots, err := LoadSlots(ctx, s.DB, attempt.AttemptPackageID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	var result ScoreResult
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureOpen(tx, attempt.AttemptID); err != nil {
			return err
		}

		if answers != nil {
			matches := MatchAnswers(slots, answers)
			if err := replaceRecords(tx, attempt.AttemptID, buildRecords(attempt, matches, now)); err != nil {
				return err
			}
			result = ScoreMatches(matches, len(slots))
		} else {
			r, err := scoreStored(tx, attempt.AttemptID, slots)
			if err != nil {
				return err
			}
			result = r
		}

		res := tx.Model(&model.AttemptModel{}).
			Where("attempt_id = ? AND attempt_finished_at IS NULL", attempt.AttemptID).
			Updates(map[string]any{
				"attempt_finished_at":     now,
				"attempt_score":           result.Score,
				"attempt_correct":         result.Correct,
				"attempt_wrong":           result.Wrong,
				"attempt_unanswered":      result.Unanswered,
				"attempt_total_questions": result.TotalQuestions,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAttemptFinished
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	score := result.Score
	attempt.AttemptFinishedAt = &now
	attempt.AttemptScore = &score
	attempt.AttemptCorrect = result.Correct
	attempt.AttemptWrong = result.Wrong
	attempt.AttemptUnanswered = result.Unanswered
	attempt.AttemptTotalQuestions = result.TotalQuestions

	log.Printf("[ATTEMPT] submit attempt=%s score=%d correct=%d/%d", attempt.AttemptID, result.Score, result.Correct, result.TotalQuestions)
	return &SubmitResult{Attempt: attempt, ScoreResult: result}, nil
}

// scoreStored menghitung nilai dari answer_records yang ada.
// Record untuk slot yang sudah tidak ada di paket diabaikan.
func scoreStored(tx *gorm.DB, attemptID uuid.UUID, slots []Slot) (ScoreResult, error) {
	var records []model.AnswerRecordModel
	if err := tx.Where("answer_record_attempt_id = ?", attemptID).Find(&records).Error; err != nil {
		return ScoreResult{}, err
	}
	inPackage := make(map[uint]bool, len(slots))
	for _, sl := range slots {
		inPackage[sl.PackageQuestionID] = true
	}
	matched, correct := 0, 0
	for _, r := range records {
		if !inPackage[r.AnswerRecordPackageQuestionID] {
			continue
		}
		matched++
		if r.AnswerRecordPoints > 0 {
			correct++
		}
	}
	return ComputeScore(matched, correct, len(slots)), nil
}

/* =========================
   Helpers
========================= */

func ensureOpen(tx *gorm.DB, attemptID uuid.UUID) error {
	var a model.AttemptModel
	if err := tx.Select("attempt_id", "attempt_finished_at").First(&a, "attempt_id = ?", attemptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttemptNotFound
		}
		return err
	}
	if a.IsFinished() {
		return ErrAttemptFinished
	}
	return nil
}

func buildRecords(attempt *model.AttemptModel, matches []Match, at time.Time) []model.AnswerRecordModel {
	records := make([]model.AnswerRecordModel, 0, len(matches))
	for _, m := range matches {
		records = append(records, model.AnswerRecordModel{
			AnswerRecordAttemptID:         attempt.AttemptID,
			AnswerRecordSubscriberID:      attempt.AttemptSubscriberID,
			AnswerRecordPackageQuestionID: m.Slot.PackageQuestionID,
			AnswerRecordAnswerOptionID:    m.Option.ID,
			AnswerRecordValue:             m.Value,
			AnswerRecordPoints:            m.Points(),
			AnswerRecordAnsweredAt:        at,
		})
	}
	return records
}

func replaceRecords(tx *gorm.DB, attemptID uuid.UUID, records []model.AnswerRecordModel) error {
	if err := tx.Where("answer_record_attempt_id = ?", attemptID).Delete(&model.AnswerRecordModel{}).Error; err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	return tx.CreateInBatches(&records, 100).Error
}
