package school

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AdminAccount is the first school admin created together with a school
type AdminAccount struct {
	Username    string `json:"username" binding:"required,min=3,max=100"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	DisplayName string `json:"display_name" binding:"omitempty,max=200"`
}

// CreateSchoolRequest creates a school and its first administrator
type CreateSchoolRequest struct {
	Code    string       `json:"code" binding:"required,min=2,max=50"`
	Name    string       `json:"name" binding:"required,notblank,max=200"`
	Address string       `json:"address" binding:"omitempty,max=500"`
	Phone   string       `json:"phone" binding:"omitempty,max=50"`
	Email   string       `json:"email" binding:"omitempty,email,max=200"`
	Admin   AdminAccount `json:"admin" binding:"required"`
}

// UpdateSchoolRequest changes the school profile
type UpdateSchoolRequest struct {
	Name    string `json:"name" binding:"required,notblank,max=200"`
	Address string `json:"address" binding:"omitempty,max=500"`
	Phone   string `json:"phone" binding:"omitempty,max=50"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
}

// SchoolListFilter filters the school list
type SchoolListFilter struct {
	shared.PageQuery
	Status string `form:"status" binding:"omitempty,oneof=active suspended inactive"`
}

// GradeBandDTO is one band of a grading scale
type GradeBandDTO struct {
	Grade      string          `json:"grade" binding:"required,max=5"`
	MinPercent decimal.Decimal `json:"min_percent"`
}

// SettingsDTO carries school settings in both directions
type SettingsDTO struct {
	AcademicYear string         `json:"academic_year" binding:"omitempty,max=20"`
	CurrentTerm  string         `json:"current_term" binding:"omitempty,max=50"`
	Currency     string         `json:"currency" binding:"omitempty,len=3"`
	Timezone     string         `json:"timezone" binding:"omitempty,max=64"`
	GradingScale []GradeBandDTO `json:"grading_scale" binding:"omitempty,dive"`
	Preferences  map[string]any `json:"preferences"`
}

// SchoolResponse is a school in API responses
type SchoolResponse struct {
	ID        uuid.UUID   `json:"id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Address   string      `json:"address"`
	Phone     string      `json:"phone"`
	Email     string      `json:"email"`
	Status    string      `json:"status"`
	Settings  SettingsDTO `json:"settings"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CreateSchoolResult is returned by Create
type CreateSchoolResult struct {
	School  SchoolResponse `json:"school"`
	AdminID uuid.UUID      `json:"admin_id"`
}

// ToSchoolResponse converts a domain school
func ToSchoolResponse(s *school.School) SchoolResponse {
	return SchoolResponse{
		ID:        s.ID,
		Code:      s.Code,
		Name:      s.Name,
		Address:   s.Address,
		Phone:     s.Phone,
		Email:     s.Email,
		Status:    string(s.Status),
		Settings:  ToSettingsDTO(s.Settings),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ToSettingsDTO converts domain settings
func ToSettingsDTO(s school.Settings) SettingsDTO {
	bands := make([]GradeBandDTO, len(s.GradingScale))
	for i, b := range s.GradingScale {
		bands[i] = GradeBandDTO{Grade: b.Grade, MinPercent: b.MinPercent}
	}
	return SettingsDTO{
		AcademicYear: s.AcademicYear,
		CurrentTerm:  s.CurrentTerm,
		Currency:     s.Currency,
		Timezone:     s.Timezone,
		GradingScale: bands,
		Preferences:  s.Preferences,
	}
}

func (d SettingsDTO) toDomain() school.Settings {
	var scale school.GradingScale
	for _, b := range d.GradingScale {
		scale = append(scale, school.GradeBand{Grade: b.Grade, MinPercent: b.MinPercent})
	}
	return school.Settings{
		AcademicYear: d.AcademicYear,
		CurrentTerm:  d.CurrentTerm,
		Currency:     d.Currency,
		Timezone:     d.Timezone,
		GradingScale: scale,
		Preferences:  d.Preferences,
	}
}
