package model

import (
	"fmt"
	"strings"
	"time"

	soalModel "soalku_backend/internals/features/questions/soal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Duration unit (closed enum)
========================= */

type DurationUnit string

const (
	DurationDays   DurationUnit = "days"
	DurationWeeks  DurationUnit = "weeks"
	DurationMonths DurationUnit = "months"
	DurationYears  DurationUnit = "years"
)

func (u DurationUnit) Valid() bool {
	switch u {
	case DurationDays, DurationWeeks, DurationMonths, DurationYears:
		return true
	}
	return false
}

// ParseDurationUnit menormalisasi input unit durasi ke enum.
// Ejaan lama (mis. "Hari", "2 minggu", "Bulan", "tahun") diterima lewat
// pencocokan substring; selain itu ditolak.
func ParseDurationUnit(s string) (DurationUnit, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return "", fmt.Errorf("duration unit wajib diisi")
	}
	if u := DurationUnit(v); u.Valid() {
		return u, nil
	}
	switch {
	case strings.Contains(v, "day"), strings.Contains(v, "hari"):
		return DurationDays, nil
	case strings.Contains(v, "week"), strings.Contains(v, "minggu"):
		return DurationWeeks, nil
	case strings.Contains(v, "month"), strings.Contains(v, "bulan"):
		return DurationMonths, nil
	case strings.Contains(v, "year"), strings.Contains(v, "tahun"):
		return DurationYears, nil
	}
	return "", fmt.Errorf("duration unit tidak dikenal: %q", s)
}

/* =========================
   Package
========================= */

type PackageStatus string

const (
	PackageStatusActive   PackageStatus = "active"
	PackageStatusInactive PackageStatus = "inactive"
)

type PackageModel struct {
	PackageID           uuid.UUID     `gorm:"column:package_id;type:uuid;primaryKey" json:"package_id"`
	PackageName         string        `gorm:"column:package_name;size:150;not null;uniqueIndex:uq_packages_name" json:"package_name"`
	PackageDescription  *string       `gorm:"column:package_description;type:text" json:"package_description,omitempty"`
	PackageCoverURL     *string       `gorm:"column:package_cover_url" json:"package_cover_url,omitempty"`
	PackagePriceIDR     int           `gorm:"column:package_price_idr;not null;default:0" json:"package_price_idr"`
	PackageDiscountIDR  int           `gorm:"column:package_discount_idr;not null;default:0" json:"package_discount_idr"`
	PackageDuration     int           `gorm:"column:package_duration;not null" json:"package_duration"`
	PackageDurationUnit DurationUnit  `gorm:"column:package_duration_unit;type:varchar(10);not null" json:"package_duration_unit"`
	PackageStatus       PackageStatus `gorm:"column:package_status;type:varchar(10);not null;default:'active';index" json:"package_status"`
	PackageCreatedAt    time.Time     `gorm:"column:package_created_at;autoCreateTime" json:"package_created_at"`
	PackageUpdatedAt    time.Time     `gorm:"column:package_updated_at;autoUpdateTime" json:"package_updated_at"`
}

func (PackageModel) TableName() string { return "packages" }

func (m *PackageModel) BeforeCreate(tx *gorm.DB) error {
	if m.PackageID == uuid.Nil {
		m.PackageID = uuid.New()
	}
	if m.PackageStatus == "" {
		m.PackageStatus = PackageStatusActive
	}
	return nil
}

// PayableIDR harga setelah diskon, tidak pernah negatif.
func (m *PackageModel) PayableIDR() int {
	n := m.PackagePriceIDR - m.PackageDiscountIDR
	if n < 0 {
		return 0
	}
	return n
}

func (m *PackageModel) IsFree() bool { return m.PayableIDR() == 0 }

/* =========================
   Question slot
========================= */

// PackageQuestionModel slot soal dalam paket. Urutan slot = urutan ID.
type PackageQuestionModel struct {
	PackageQuestionID         uint      `gorm:"column:package_question_id;primaryKey;autoIncrement" json:"package_question_id"`
	PackageQuestionPackageID  uuid.UUID `gorm:"column:package_question_package_id;type:uuid;not null;uniqueIndex:uq_package_questions_pair" json:"package_question_package_id"`
	PackageQuestionQuestionID uuid.UUID `gorm:"column:package_question_question_id;type:uuid;not null;uniqueIndex:uq_package_questions_pair" json:"package_question_question_id"`
	PackageQuestionCreatedAt  time.Time `gorm:"column:package_question_created_at;autoCreateTime" json:"package_question_created_at"`

	Package  *PackageModel            `gorm:"foreignKey:PackageQuestionPackageID;references:PackageID;constraint:OnDelete:CASCADE" json:"-"`
	Question *soalModel.QuestionModel `gorm:"foreignKey:PackageQuestionQuestionID;references:QuestionID;constraint:OnDelete:RESTRICT" json:"question,omitempty"`
}

func (PackageQuestionModel) TableName() string { return "package_questions" }
