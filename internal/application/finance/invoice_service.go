package finance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/finance"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// numberAttempts bounds how often a new invoice draws a fresh number after a collision
const numberAttempts = 3

// InvoiceServiceDeps collects the collaborators of InvoiceService
type InvoiceServiceDeps struct {
	InvoiceRepo    finance.InvoiceRepository
	FeeRepo        finance.FeeStructureRepository
	StudentRepo    people.StudentRepository
	ClassRepo      academic.ClassRepository
	SchoolRepo     school.Repository
	Printer        *printing.Printer // nil disables PDFs
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// InvoiceService bills students and records their payments
type InvoiceService struct {
	invoiceRepo    finance.InvoiceRepository
	feeRepo        finance.FeeStructureRepository
	studentRepo    people.StudentRepository
	classRepo      academic.ClassRepository
	schoolRepo     school.Repository
	printer        *printing.Printer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(deps InvoiceServiceDeps) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    deps.InvoiceRepo,
		feeRepo:        deps.FeeRepo,
		studentRepo:    deps.StudentRepo,
		classRepo:      deps.ClassRepo,
		schoolRepo:     deps.SchoolRepo,
		printer:        deps.Printer,
		eventPublisher: deps.EventPublisher,
		logger:         deps.Logger,
	}
}

// Create bills a student. The invoice stays a draft unless req.Issue is set.
func (s *InvoiceService) Create(ctx context.Context, actor identity.Actor, req InvoiceRequest) (*InvoiceResponse, error) {
	student, err := s.findStudent(ctx, actor.TenantID, req.StudentID)
	if err != nil {
		return nil, err
	}
	sch := s.loadSchool(ctx, actor.TenantID)
	draft, err := s.draft(ctx, actor.TenantID, sch, req)
	if err != nil {
		return nil, err
	}

	inv, err := s.saveNew(ctx, actor, draft, req.Issue)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("student_id", student.ID.String()),
		zap.String("total", inv.TotalAmount.StringFixed(2)))

	resp := ToInvoiceResponse(inv)
	resp.StudentName = student.FullName()
	return &resp, nil
}

// Get returns an invoice
func (s *InvoiceService) Get(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	if student, err := s.studentRepo.FindByID(ctx, tenantID, inv.StudentID); err == nil {
		resp.StudentName = student.FullName()
	}
	return &resp, nil
}

// List lists invoices
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	list, total, err := s.invoiceRepo.FindAll(ctx, tenantID, listFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return s.responses(ctx, tenantID, list), total, nil
}

// Update replaces the contents of a draft invoice
func (s *InvoiceService) Update(ctx context.Context, tenantID, id uuid.UUID, req InvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != finance.InvoiceStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Only draft invoices can be edited")
	}
	if req.StudentID != inv.StudentID {
		if _, err := s.findStudent(ctx, tenantID, req.StudentID); err != nil {
			return nil, err
		}
	}
	draft, err := s.draft(ctx, tenantID, s.loadSchool(ctx, tenantID), req)
	if err != nil {
		return nil, err
	}
	if err := inv.UpdateDraft(draft); err != nil {
		return nil, err
	}
	if req.Issue {
		if err := inv.Issue(); err != nil {
			return nil, err
		}
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(ctx, inv)

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Issue sends a draft invoice to the payer
func (s *InvoiceService) Issue(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, tenantID, id, "issued", (*finance.Invoice).Issue)
}

// Cancel voids an invoice that has not been paid against
func (s *InvoiceService) Cancel(ctx context.Context, tenantID, id uuid.UUID, req CancelInvoiceRequest) (*InvoiceResponse, error) {
	return s.transition(ctx, tenantID, id, "cancelled", func(inv *finance.Invoice) error {
		return inv.Cancel(req.Reason)
	})
}

// RecordPayment applies a payment and moves the invoice to partially paid or paid
func (s *InvoiceService) RecordPayment(ctx context.Context, actor identity.Actor, id uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	inv, err := s.find(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	var paidAt time.Time
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	recordedBy := actor.UserID
	payment, err := inv.RecordPayment(req.Amount, finance.PaymentMethod(req.Method), req.Reference, paidAt, &recordedBy)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(ctx, inv)

	s.logger.Info("Payment recorded",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("method", string(payment.Method)),
		zap.String("status", string(inv.Status)))

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Delete removes a draft invoice
func (s *InvoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	inv, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !inv.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be deleted; cancel it instead")
	}
	if err := s.invoiceRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	inv.AddDomainEvent(finance.NewInvoiceEvent(finance.EventTypeInvoiceDeleted, inv))
	s.publish(ctx, inv)

	s.logger.Info("Invoice deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_number", inv.InvoiceNumber))
	return nil
}

// GenerateForClass bills every active student of a class from a fee structure.
// Students already holding a non-cancelled invoice for the structure and term are skipped.
func (s *InvoiceService) GenerateForClass(ctx context.Context, actor identity.Actor, req GenerateInvoicesRequest) (*GenerateInvoicesResult, error) {
	fee, err := findFeeStructure(ctx, s.feeRepo, actor.TenantID, req.FeeStructureID)
	if err != nil {
		return nil, err
	}
	if !fee.IsActive {
		return nil, shared.NewDomainError("FEE_STRUCTURE_INACTIVE", "Fee structure is not active")
	}

	classID := fee.ClassID
	if req.ClassID != nil && *req.ClassID != uuid.Nil {
		if classID != nil && *classID != *req.ClassID {
			return nil, shared.NewDomainError("INVALID_INPUT", "Fee structure belongs to a different class")
		}
		classID = req.ClassID
	}
	if classID == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "A class is required for school-wide fee structures")
	}
	class, err := s.classRepo.FindByID(ctx, actor.TenantID, *classID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CLASS_NOT_FOUND", "Class not found")
		}
		return nil, err
	}
	if !class.IsActive {
		return nil, shared.NewDomainError("CLASS_INACTIVE", "Class is not active")
	}

	sch := s.loadSchool(ctx, actor.TenantID)
	year, term := fee.AcademicYear, fee.Term
	if sch != nil {
		if year == "" {
			year = sch.Settings.AcademicYear
		}
		if term == "" {
			term = sch.Settings.CurrentTerm
		}
	}
	issueDate := today(sch)
	if t := req.IssueDate.TimePtr(); t != nil {
		issueDate = *t
	}

	students, err := s.studentRepo.FindByClass(ctx, actor.TenantID, class.ID, true)
	if err != nil {
		return nil, err
	}
	invoiced, err := s.invoiceRepo.InvoicedStudents(ctx, actor.TenantID, fee.ID, term)
	if err != nil {
		return nil, err
	}

	result := &GenerateInvoicesResult{Invoices: []InvoiceResponse{}}
	for _, student := range students {
		if invoiced[student.ID] {
			result.Skipped++
			continue
		}
		item, err := finance.NewInvoiceItem(fee.Name, fee.Amount)
		if err != nil {
			return nil, err
		}
		feeID := fee.ID
		inv, err := s.saveNew(ctx, actor, finance.InvoiceDraft{
			StudentID:      student.ID,
			FeeStructureID: &feeID,
			AcademicYear:   year,
			Term:           term,
			Items:          []finance.InvoiceItem{item},
			IssueDate:      issueDate,
			DueDate:        issueDate.AddDate(0, 0, fee.DueDays),
		}, req.Issue)
		if err != nil {
			return nil, err
		}
		resp := ToInvoiceResponse(inv)
		resp.StudentName = student.FullName()
		result.Invoices = append(result.Invoices, resp)
		result.Created++
	}

	s.logger.Info("Invoices generated",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("fee_structure_id", fee.ID.String()),
		zap.String("class_id", class.ID.String()),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// MarkOverdue flags every unpaid invoice past its due date, school by school.
// Each school's date is taken in its own timezone. A failing school does not stop the sweep.
func (s *InvoiceService) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.schoolRepo.FindActiveIDs(ctx)
	if err != nil {
		return 0, err
	}
	var errs []error
	marked := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return marked, err
		}
		n, err := s.markOverdue(ctx, id, now)
		marked += n
		if err != nil {
			s.logger.Error("Overdue sweep failed for school", zap.String("tenant_id", id.String()), zap.Error(err))
			errs = append(errs, err)
		}
	}
	if marked > 0 {
		s.logger.Info("Invoices marked overdue", zap.Int("count", marked), zap.Int("schools", len(ids)))
	}
	return marked, errors.Join(errs...)
}

func (s *InvoiceService) markOverdue(ctx context.Context, tenantID uuid.UUID, now time.Time) (int, error) {
	loc := time.UTC
	if sch := s.loadSchool(ctx, tenantID); sch != nil {
		loc = sch.Settings.Location()
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

	candidates, err := s.invoiceRepo.FindOverdueCandidates(ctx, tenantID, day)
	if err != nil {
		return 0, err
	}
	marked := 0
	for _, inv := range candidates {
		if !inv.MarkOverdue(day) {
			continue
		}
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				// paid in the meantime
				continue
			}
			return marked, err
		}
		s.publish(ctx, inv)
		marked++
	}
	return marked, nil
}

// ListForStudent returns a student's invoices to staff, the student or their parent
func (s *InvoiceService) ListForStudent(ctx context.Context, actor identity.Actor, studentID uuid.UUID) (*StudentInvoicesResponse, error) {
	student, err := s.findStudent(ctx, actor.TenantID, studentID)
	if err != nil {
		return nil, err
	}
	if !student.VisibleTo(actor) {
		return nil, shared.NewDomainError("FORBIDDEN", "You cannot view this student's invoices")
	}
	groups, err := s.groupByStudent(ctx, actor.TenantID, []*people.Student{student}, false)
	if err != nil {
		return nil, err
	}
	return &groups[0], nil
}

// ListMine returns the invoices of the signed-in student or of each child of the signed-in parent
func (s *InvoiceService) ListMine(ctx context.Context, actor identity.Actor, outstandingOnly bool) ([]StudentInvoicesResponse, error) {
	var students []*people.Student
	switch actor.Role {
	case identity.RoleStudent:
		student, err := s.studentRepo.FindByStudentUser(ctx, actor.TenantID, actor.UserID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return []StudentInvoicesResponse{}, nil
			}
			return nil, err
		}
		students = []*people.Student{student}
	case identity.RoleParent:
		children, err := s.studentRepo.FindByParentUser(ctx, actor.TenantID, actor.UserID)
		if err != nil {
			return nil, err
		}
		students = children
	default:
		return nil, shared.NewDomainError("FORBIDDEN", "Only students and parents have personal invoices")
	}
	return s.groupByStudent(ctx, actor.TenantID, students, outstandingOnly)
}

func (s *InvoiceService) groupByStudent(ctx context.Context, tenantID uuid.UUID, students []*people.Student, outstandingOnly bool) ([]StudentInvoicesResponse, error) {
	out := make([]StudentInvoicesResponse, len(students))
	if len(students) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, len(students))
	index := make(map[uuid.UUID]int, len(students))
	for i, st := range students {
		ids[i] = st.ID
		index[st.ID] = i
		out[i] = StudentInvoicesResponse{StudentID: st.ID, StudentName: st.FullName(), Invoices: []InvoiceResponse{}}
	}
	invoices, err := s.invoiceRepo.FindByStudents(ctx, tenantID, ids, outstandingOnly)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		i, ok := index[inv.StudentID]
		if !ok {
			continue
		}
		resp := ToInvoiceResponse(inv)
		resp.StudentName = out[i].StudentName
		out[i].Invoices = append(out[i].Invoices, resp)
		if outstanding(inv) {
			out[i].Outstanding = out[i].Outstanding.Add(inv.Balance())
		}
	}
	return out, nil
}

// saveNew numbers and stores a new invoice, drawing a fresh number when another
// request took the same one first.
func (s *InvoiceService) saveNew(ctx context.Context, actor identity.Actor, draft finance.InvoiceDraft, issue bool) (*finance.Invoice, error) {
	at := draft.IssueDate
	if at.IsZero() {
		at = time.Now()
	}
	prefix := finance.InvoiceNumberPrefix(at)

	var lastErr error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		seq, err := s.invoiceRepo.NextSequence(ctx, actor.TenantID, prefix)
		if err != nil {
			return nil, err
		}
		inv, err := finance.NewInvoice(actor.TenantID, finance.FormatInvoiceNumber(at, seq), draft)
		if err != nil {
			return nil, err
		}
		if issue {
			if err := inv.Issue(); err != nil {
				return nil, err
			}
		}
		inv.SetCreatedBy(actor.UserID)

		err = s.invoiceRepo.Save(ctx, inv)
		if err == nil {
			s.publish(ctx, inv)
			return inv, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		lastErr = err
		s.logger.Debug("Invoice number taken, retrying", zap.String("invoice_number", inv.InvoiceNumber))
	}
	return nil, lastErr
}

func (s *InvoiceService) draft(ctx context.Context, tenantID uuid.UUID, sch *school.School, req InvoiceRequest) (finance.InvoiceDraft, error) {
	items := make([]finance.InvoiceItem, 0, len(req.Items))
	for _, it := range req.Items {
		item, err := finance.NewInvoiceItem(it.Description, it.Amount)
		if err != nil {
			return finance.InvoiceDraft{}, err
		}
		items = append(items, item)
	}
	d := finance.InvoiceDraft{
		StudentID:      req.StudentID,
		FeeStructureID: req.FeeStructureID,
		AcademicYear:   req.AcademicYear,
		Term:           req.Term,
		Items:          items,
		IssueDate:      today(sch),
		Notes:          req.Notes,
	}
	if t := req.IssueDate.TimePtr(); t != nil {
		d.IssueDate = *t
	}
	if t := req.DueDate.TimePtr(); t != nil {
		d.DueDate = *t
	}

	if req.FeeStructureID != nil && *req.FeeStructureID != uuid.Nil {
		fee, err := findFeeStructure(ctx, s.feeRepo, tenantID, *req.FeeStructureID)
		if err != nil {
			return finance.InvoiceDraft{}, err
		}
		if d.DueDate.IsZero() {
			d.DueDate = d.IssueDate.AddDate(0, 0, fee.DueDays)
		}
		if d.AcademicYear == "" {
			d.AcademicYear = fee.AcademicYear
		}
		if d.Term == "" {
			d.Term = fee.Term
		}
	} else {
		d.FeeStructureID = nil
	}
	if sch != nil {
		if d.AcademicYear == "" {
			d.AcademicYear = sch.Settings.AcademicYear
		}
		if d.Term == "" {
			d.Term = sch.Settings.CurrentTerm
		}
	}
	return d, nil
}

func (s *InvoiceService) transition(ctx context.Context, tenantID, id uuid.UUID, what string, fn func(*finance.Invoice) error) (*InvoiceResponse, error) {
	inv, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(inv); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(ctx, inv)

	s.logger.Info("Invoice "+what,
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_number", inv.InvoiceNumber))

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

func (s *InvoiceService) responses(ctx context.Context, tenantID uuid.UUID, list []*finance.Invoice) []InvoiceResponse {
	names := s.studentNames(ctx, tenantID, list)
	out := make([]InvoiceResponse, len(list))
	for i, inv := range list {
		out[i] = ToInvoiceResponse(inv)
		out[i].StudentName = names[inv.StudentID]
	}
	return out
}

func (s *InvoiceService) studentNames(ctx context.Context, tenantID uuid.UUID, list []*finance.Invoice) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string)
	ids := make([]uuid.UUID, 0, len(list))
	for _, inv := range list {
		if _, ok := names[inv.StudentID]; !ok {
			names[inv.StudentID] = ""
			ids = append(ids, inv.StudentID)
		}
	}
	if len(ids) == 0 {
		return names
	}
	students, err := s.studentRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		s.logger.Warn("Failed to load student names", zap.Error(err))
		return names
	}
	for _, st := range students {
		names[st.ID] = st.FullName()
	}
	return names
}

func (s *InvoiceService) find(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
		}
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceService) findStudent(ctx context.Context, tenantID, id uuid.UUID) (*people.Student, error) {
	student, err := s.studentRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("STUDENT_NOT_FOUND", "Student not found")
		}
		return nil, err
	}
	return student, nil
}

func (s *InvoiceService) loadSchool(ctx context.Context, tenantID uuid.UUID) *school.School {
	sch, err := s.schoolRepo.FindByID(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to load school settings", zap.Error(err))
		}
		return nil
	}
	return sch
}

func (s *InvoiceService) publish(ctx context.Context, inv *finance.Invoice) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, inv); err != nil {
		s.logger.Warn("Failed to publish invoice events", zap.Error(err))
	}
}

func listFilter(filter InvoiceListFilter) shared.Filter {
	f := filter.PageQuery.Filter().With("status", filter.Status)
	if filter.StudentID != nil {
		f = f.With("student_id", *filter.StudentID)
	}
	if filter.FeeStructureID != nil {
		f = f.With("fee_structure_id", *filter.FeeStructureID)
	}
	if t := filter.From.TimePtr(); t != nil {
		f = f.With("from", *t)
	}
	if t := filter.To.TimePtr(); t != nil {
		f = f.With("to", *t)
	}
	return f
}

// today is the school's current date, or the UTC date when the school is unknown
func today(sch *school.School) time.Time {
	if sch != nil {
		return sch.Today()
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
