package dto

import (
	"strings"
	"time"

	"soalku_backend/internals/features/exams/packages/model"
	soalModel "soalku_backend/internals/features/questions/soal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

/* =========================
   Request
========================= */

type CreatePackageRequest struct {
	PackageName         string  `json:"package_name" validate:"required,min=3,max=150"`
	PackageDescription  *string `json:"package_description"`
	PackagePriceIDR     int     `json:"package_price_idr" validate:"gte=0"`
	PackageDiscountIDR  int     `json:"package_discount_idr" validate:"gte=0"`
	PackageDuration     int     `json:"package_duration" validate:"required,gt=0"`
	PackageDurationUnit string  `json:"package_duration_unit" validate:"required"`
	PackageStatus       string  `json:"package_status" validate:"omitempty,oneof=active inactive"`
}

// ToModel: duration_unit dinormalisasi ke enum, ejaan tak dikenal -> 400.
func (r *CreatePackageRequest) ToModel() (*model.PackageModel, error) {
	unit, err := model.ParseDurationUnit(r.PackageDurationUnit)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if r.PackageDiscountIDR > r.PackagePriceIDR {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Diskon tidak boleh melebihi harga")
	}
	m := &model.PackageModel{
		PackageName:         strings.TrimSpace(r.PackageName),
		PackageDescription:  r.PackageDescription,
		PackagePriceIDR:     r.PackagePriceIDR,
		PackageDiscountIDR:  r.PackageDiscountIDR,
		PackageDuration:     r.PackageDuration,
		PackageDurationUnit: unit,
		PackageStatus:       model.PackageStatus(r.PackageStatus),
	}
	return m, nil
}

type UpdatePackageRequest struct {
	PackageName         *string `json:"package_name" validate:"omitempty,min=3,max=150"`
	PackageDescription  *string `json:"package_description"`
	PackagePriceIDR     *int    `json:"package_price_idr" validate:"omitempty,gte=0"`
	PackageDiscountIDR  *int    `json:"package_discount_idr" validate:"omitempty,gte=0"`
	PackageDuration     *int    `json:"package_duration" validate:"omitempty,gt=0"`
	PackageDurationUnit *string `json:"package_duration_unit"`
	PackageStatus       *string `json:"package_status" validate:"omitempty,oneof=active inactive"`
}

// Apply menerapkan patch ke model; validasi silang dilakukan setelah semua field diterapkan.
func (r *UpdatePackageRequest) Apply(m *model.PackageModel) error {
	if r.PackageName != nil {
		m.PackageName = strings.TrimSpace(*r.PackageName)
	}
	if r.PackageDescription != nil {
		m.PackageDescription = r.PackageDescription
	}
	if r.PackagePriceIDR != nil {
		m.PackagePriceIDR = *r.PackagePriceIDR
	}
	if r.PackageDiscountIDR != nil {
		m.PackageDiscountIDR = *r.PackageDiscountIDR
	}
	if r.PackageDuration != nil {
		m.PackageDuration = *r.PackageDuration
	}
	if r.PackageDurationUnit != nil {
		unit, err := model.ParseDurationUnit(*r.PackageDurationUnit)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		m.PackageDurationUnit = unit
	}
	if r.PackageStatus != nil {
		m.PackageStatus = model.PackageStatus(*r.PackageStatus)
	}
	if m.PackageDiscountIDR > m.PackagePriceIDR {
		return fiber.NewError(fiber.StatusBadRequest, "Diskon tidak boleh melebihi harga")
	}
	return nil
}

type AddQuestionsRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids" validate:"required,min=1,dive,required"`
}

/* =========================
   Response
========================= */

type PackageResponse struct {
	PackageID           uuid.UUID `json:"package_id"`
	PackageName         string    `json:"package_name"`
	PackageDescription  *string   `json:"package_description,omitempty"`
	PackageCoverURL     *string   `json:"package_cover_url,omitempty"`
	PackagePriceIDR     int       `json:"package_price_idr"`
	PackageDiscountIDR  int       `json:"package_discount_idr"`
	PackagePayableIDR   int       `json:"package_payable_idr"`
	PackageDuration     int       `json:"package_duration"`
	PackageDurationUnit string    `json:"package_duration_unit"`
	PackageStatus       string    `json:"package_status"`
	QuestionCount       *int64    `json:"question_count,omitempty"`
	PackageCreatedAt    time.Time `json:"package_created_at"`
	PackageUpdatedAt    time.Time `json:"package_updated_at"`
}

func FromModel(m *model.PackageModel) PackageResponse {
	return PackageResponse{
		PackageID:           m.PackageID,
		PackageName:         m.PackageName,
		PackageDescription:  m.PackageDescription,
		PackageCoverURL:     m.PackageCoverURL,
		PackagePriceIDR:     m.PackagePriceIDR,
		PackageDiscountIDR:  m.PackageDiscountIDR,
		PackagePayableIDR:   m.PayableIDR(),
		PackageDuration:     m.PackageDuration,
		PackageDurationUnit: string(m.PackageDurationUnit),
		PackageStatus:       string(m.PackageStatus),
		PackageCreatedAt:    m.PackageCreatedAt,
		PackageUpdatedAt:    m.PackageUpdatedAt,
	}
}

func FromModels(rows []model.PackageModel) []PackageResponse {
	out := make([]PackageResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

type SlotOptionResponse struct {
	AnswerOptionID uuid.UUID `json:"answer_option_id"`
	Text           string    `json:"text"`
	IsCorrect      *bool     `json:"is_correct,omitempty"`
}

type SlotResponse struct {
	Index             int                  `json:"index"`
	PackageQuestionID uint                 `json:"package_question_id"`
	QuestionID        uuid.UUID            `json:"question_id"`
	QuestionText      string               `json:"question_text"`
	QuestionImageURL  *string              `json:"question_image_url,omitempty"`
	Explanation       *string              `json:"explanation,omitempty"`
	Options           []SlotOptionResponse `json:"options"`
}

// FromSlots: withKey=true untuk admin (is_correct + pembahasan ikut tampil).
func FromSlots(rows []model.PackageQuestionModel, withKey bool) []SlotResponse {
	out := make([]SlotResponse, 0, len(rows))
	for i, r := range rows {
		s := SlotResponse{Index: i, PackageQuestionID: r.PackageQuestionID, QuestionID: r.PackageQuestionQuestionID}
		if q := r.Question; q != nil {
			s.QuestionText = q.QuestionText
			s.QuestionImageURL = q.QuestionImageURL
			if withKey {
				s.Explanation = q.QuestionExplanation
			}
			s.Options = fromOptions(q.Options, withKey)
		}
		out = append(out, s)
	}
	return out
}

func fromOptions(opts []soalModel.AnswerOptionModel, withKey bool) []SlotOptionResponse {
	out := make([]SlotOptionResponse, 0, len(opts))
	for _, o := range opts {
		r := SlotOptionResponse{AnswerOptionID: o.AnswerOptionID, Text: o.AnswerOptionText}
		if withKey {
			v := o.AnswerOptionIsCorrect
			r.IsCorrect = &v
		}
		out = append(out, r)
	}
	return out
}
