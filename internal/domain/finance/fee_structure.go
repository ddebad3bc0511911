package finance

import (
	"strings"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Frequency is how often a fee is charged
type Frequency string

const (
	FrequencyOneTime  Frequency = "one_time"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyTermly   Frequency = "termly"
	FrequencyAnnually Frequency = "annually"
)

// ParseFrequency validates a fee frequency
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FrequencyOneTime, FrequencyMonthly, FrequencyTermly, FrequencyAnnually:
		return f, nil
	}
	return "", shared.NewDomainError("INVALID_FREQUENCY", "Frequency must be one_time, monthly, termly or annually")
}

// DefaultDueDays is the payment window used when a structure does not set one
const DefaultDueDays = 30

// FeeDetails carries the editable fields of a fee structure
type FeeDetails struct {
	Name         string
	ClassID      *uuid.UUID // nil applies to the whole school
	Amount       decimal.Decimal
	Frequency    Frequency
	AcademicYear string
	Term         string
	DueDays      int
	Description  string
}

// FeeStructure is a chargeable fee the school bills students for
type FeeStructure struct {
	shared.TenantAggregateRoot
	FeeDetails
	IsActive bool
}

// NewFeeStructure creates an active fee structure
func NewFeeStructure(tenantID uuid.UUID, details FeeDetails) (*FeeStructure, error) {
	details, err := details.normalize()
	if err != nil {
		return nil, err
	}
	f := &FeeStructure{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FeeDetails:          details,
		IsActive:            true,
	}
	f.AddDomainEvent(NewFeeStructureEvent(EventTypeFeeStructureCreated, f))
	return f, nil
}

// Update replaces the editable fields
func (f *FeeStructure) Update(details FeeDetails) error {
	details, err := details.normalize()
	if err != nil {
		return err
	}
	f.FeeDetails = details
	f.Touch()
	f.AddDomainEvent(NewFeeStructureEvent(EventTypeFeeStructureUpdated, f))
	return nil
}

// Activate makes the structure available for billing
func (f *FeeStructure) Activate() error {
	if f.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Fee structure is already active")
	}
	f.IsActive = true
	f.Touch()
	f.AddDomainEvent(NewFeeStructureEvent(EventTypeFeeStructureUpdated, f))
	return nil
}

// Deactivate withdraws the structure from billing
func (f *FeeStructure) Deactivate() error {
	if !f.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Fee structure is already inactive")
	}
	f.IsActive = false
	f.Touch()
	f.AddDomainEvent(NewFeeStructureEvent(EventTypeFeeStructureUpdated, f))
	return nil
}

func (d FeeDetails) normalize() (FeeDetails, error) {
	var err error
	if d.Name, err = shared.RequireText("INVALID_NAME", "Name", d.Name, 200); err != nil {
		return d, err
	}
	if err = shared.RequireNonNegative("INVALID_AMOUNT", "Amount", d.Amount); err != nil {
		return d, err
	}
	d.Amount = d.Amount.Round(2)
	if d.Frequency == "" {
		d.Frequency = FrequencyTermly
	}
	if d.Frequency, err = ParseFrequency(string(d.Frequency)); err != nil {
		return d, err
	}
	if d.DueDays == 0 {
		d.DueDays = DefaultDueDays
	}
	if d.DueDays < 0 {
		return d, shared.NewDomainError("INVALID_DUE_DAYS", "Due days must be non-negative")
	}
	if d.AcademicYear, err = shared.OptionalText("INVALID_ACADEMIC_YEAR", "Academic year", d.AcademicYear, 20); err != nil {
		return d, err
	}
	if d.Term, err = shared.OptionalText("INVALID_TERM", "Term", d.Term, 50); err != nil {
		return d, err
	}
	if d.Description, err = shared.OptionalText("INVALID_DESCRIPTION", "Description", d.Description, 1000); err != nil {
		return d, err
	}
	if d.ClassID != nil && *d.ClassID == uuid.Nil {
		d.ClassID = nil
	}
	return d, nil
}
