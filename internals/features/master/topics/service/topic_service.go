package service

import (
	"context"
	"errors"
	"strings"

	subjectModel "soalku_backend/internals/features/master/subjects/model"
	"soalku_backend/internals/features/master/topics/dto"
	"soalku_backend/internals/features/master/topics/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTopicNotFound = fiber.NewError(fiber.StatusNotFound, "Topik tidak ditemukan")

// Topik & tautan subject-nya selalu ditulis dalam satu transaksi.
type TopicService struct {
	DB *gorm.DB
}

func NewTopicService(db *gorm.DB) *TopicService { return &TopicService{DB: db} }

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != uuid.Nil && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func ensureSubjects(tx *gorm.DB, ids []uuid.UUID) error {
	var n int64
	if err := tx.Model(&subjectModel.SubjectModel{}).Where("subject_id IN ?", ids).Count(&n).Error; err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return fiber.NewError(fiber.StatusBadRequest, "Sebagian subject_ids tidak ditemukan")
	}
	return nil
}

func linkSubjects(tx *gorm.DB, topicID uuid.UUID, ids []uuid.UUID) ([]model.TopicSubjectModel, error) {
	rows := make([]model.TopicSubjectModel, 0, len(ids))
	for _, sid := range ids {
		rows = append(rows, model.TopicSubjectModel{TopicSubjectTopicID: topicID, TopicSubjectSubjectID: sid})
	}
	if len(rows) == 0 {
		return rows, nil
	}
	return rows, tx.Create(&rows).Error
}

func (s *TopicService) Get(ctx context.Context, id uuid.UUID) (*model.TopicModel, error) {
	var m model.TopicModel
	err := s.DB.WithContext(ctx).Preload("Subjects").First(&m, "topic_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *TopicService) Create(ctx context.Context, req dto.CreateTopicRequest) (*model.TopicModel, error) {
	ids := uniqueIDs(req.SubjectIDs)
	if len(ids) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "subject_ids wajib diisi")
	}
	m := &model.TopicModel{
		TopicName:        strings.TrimSpace(req.TopicName),
		TopicDescription: req.TopicDescription,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSubjects(tx, ids); err != nil {
			return err
		}
		if err := tx.Omit("Subjects").Create(m).Error; err != nil {
			return err
		}
		rows, err := linkSubjects(tx, m.TopicID, ids)
		m.Subjects = rows
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *TopicService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateTopicRequest) (*model.TopicModel, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.TopicName != nil {
		m.TopicName = strings.TrimSpace(*req.TopicName)
	}
	if req.TopicDescription != nil {
		m.TopicDescription = req.TopicDescription
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.TopicModel{}).Where("topic_id = ?", m.TopicID).Updates(map[string]any{
			"topic_name":        m.TopicName,
			"topic_description": m.TopicDescription,
		}).Error; err != nil {
			return err
		}
		if req.SubjectIDs == nil {
			return nil
		}
		ids := uniqueIDs(req.SubjectIDs)
		if len(ids) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "subject_ids tidak boleh kosong")
		}
		if err := ensureSubjects(tx, ids); err != nil {
			return err
		}
		// soal yang memakai topik ini harus tetap berada di subject yang tertaut
		var orphan int64
		if err := tx.Table("questions").
			Where("question_topic_id = ? AND question_subject_id NOT IN ?", m.TopicID, ids).
			Count(&orphan).Error; err != nil {
			return err
		}
		if orphan > 0 {
			return fiber.NewError(fiber.StatusConflict, "Masih ada soal pada subject yang akan dilepas dari topik ini")
		}
		if err := tx.Where("topic_subject_topic_id = ?", m.TopicID).Delete(&model.TopicSubjectModel{}).Error; err != nil {
			return err
		}
		rows, err := linkSubjects(tx, m.TopicID, ids)
		m.Subjects = rows
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Delete tautan subject lalu topik; topik yang dipakai soal -> 409 (FK).
func (s *TopicService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("topic_subject_topic_id = ?", id).Delete(&model.TopicSubjectModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.TopicModel{}, "topic_id = ?", id).Error
	})
}

func (s *TopicService) List(ctx context.Context, subjectID *uuid.UUID, keyword string, offset, limit int) ([]model.TopicModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.TopicModel{})
	if subjectID != nil {
		q = q.Where("topic_id IN (?)",
			s.DB.Model(&model.TopicSubjectModel{}).Select("topic_subject_topic_id").Where("topic_subject_subject_id = ?", *subjectID))
	}
	if kw := strings.TrimSpace(keyword); kw != "" {
		q = q.Where("LOWER(topic_name) LIKE ?", "%"+strings.ToLower(kw)+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.TopicModel
	err := q.Preload("Subjects").Order("topic_name ASC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}
