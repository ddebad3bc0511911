package exams

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/academic"
	"github.com/schoolhub/backend/internal/domain/attendance"
	"github.com/schoolhub/backend/internal/domain/exams"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/people"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type resultFixture struct {
	exams      *MockExamRepository
	results    *MockResultRepository
	students   *MockStudentRepository
	subjects   *MockSubjectRepository
	classes    *MockClassRepository
	schools    *MockSchoolRepository
	attendance *MockAttendanceRepository
	renderer   *stubRenderer
	svc        *ResultService
	school     *school.School
}

func newResultFixture(t *testing.T) *resultFixture {
	t.Helper()
	sch, err := school.NewSchool("GREEN", "Greenfield High")
	require.NoError(t, err)

	engine, err := printing.NewTemplateEngine()
	require.NoError(t, err)

	f := &resultFixture{
		exams:      new(MockExamRepository),
		results:    new(MockResultRepository),
		students:   new(MockStudentRepository),
		subjects:   new(MockSubjectRepository),
		classes:    new(MockClassRepository),
		schools:    new(MockSchoolRepository),
		attendance: new(MockAttendanceRepository),
		renderer:   &stubRenderer{},
		school:     sch,
	}
	f.svc = NewResultService(ResultServiceDeps{
		ExamRepo:       f.exams,
		ResultRepo:     f.results,
		StudentRepo:    f.students,
		SubjectRepo:    f.subjects,
		ClassRepo:      f.classes,
		SchoolRepo:     f.schools,
		AttendanceRepo: f.attendance,
		Printer:        printing.NewPrinter(engine, f.renderer),
		Logger:         zap.NewNop(),
	})
	f.schools.On("FindByID", mock.Anything, sch.ID).Return(sch, nil).Maybe()
	return f
}

func (f *resultFixture) student(t *testing.T, classID uuid.UUID) *people.Student {
	t.Helper()
	st, err := people.NewStudent(f.school.ID, "ADM-"+uuid.NewString()[:6], people.StudentProfile{FirstName: "Amy", LastName: "Lee"})
	require.NoError(t, err)
	require.NoError(t, st.AssignClass(&classID))
	return st
}

func TestResultService_RecordResults(t *testing.T) {
	ctx := context.Background()

	t.Run("grades new marks and regrades existing ones", func(t *testing.T) {
		f := newResultFixture(t)
		actor := identity.Actor{TenantID: f.school.ID, UserID: uuid.New(), Role: identity.RoleTeacher}
		classID := uuid.New()
		exam := newExam(t, f.school.ID, classID, uuid.New())
		amy, ben := f.student(t, classID), f.student(t, classID)

		old, err := exams.NewResult(exam, ben.ID, decimal.NewFromInt(10), "", school.DefaultGradingScale())
		require.NoError(t, err)

		f.exams.On("FindByID", ctx, f.school.ID, exam.ID).Return(exam, nil)
		f.students.On("FindByIDs", ctx, f.school.ID, []uuid.UUID{amy.ID, ben.ID}).Return([]*people.Student{amy, ben}, nil)
		f.results.On("FindByExamAndStudents", ctx, f.school.ID, exam.ID, []uuid.UUID{amy.ID, ben.ID}).Return([]*exams.Result{old}, nil)
		f.results.On("Upsert", ctx, mock.MatchedBy(func(rs []*exams.Result) bool {
			return len(rs) == 2 && rs[1] == old
		})).Return(nil)

		resp, err := f.svc.RecordResults(ctx, actor, exam.ID, RecordResultsRequest{Results: []ResultEntry{
			{StudentID: amy.ID, Marks: decimal.NewFromInt(45)},
			{StudentID: ben.ID, Marks: decimal.NewFromInt(20)},
		}})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Recorded)

		assert.Equal(t, "A", resp.Results[0].Grade)
		assert.True(t, resp.Results[0].Passed)
		assert.True(t, decimal.NewFromInt(90).Equal(resp.Results[0].Percentage))

		assert.Equal(t, old.ID, resp.Results[1].ID)
		assert.Equal(t, "F", resp.Results[1].Grade)
		assert.False(t, resp.Results[1].Passed)
		assert.Equal(t, actor.UserID, *resp.Results[1].RecordedBy)
	})

	t.Run("cancelled exam", func(t *testing.T) {
		f := newResultFixture(t)
		actor := identity.Actor{TenantID: f.school.ID, UserID: uuid.New(), Role: identity.RoleTeacher}
		exam := newExam(t, f.school.ID, uuid.New(), uuid.New())
		require.NoError(t, exam.Cancel())
		f.exams.On("FindByID", ctx, f.school.ID, exam.ID).Return(exam, nil)

		_, err := f.svc.RecordResults(ctx, actor, exam.ID, RecordResultsRequest{Results: []ResultEntry{{StudentID: uuid.New()}}})
		requireCode(t, err, "INVALID_STATE")
	})

	t.Run("marks above max", func(t *testing.T) {
		f := newResultFixture(t)
		actor := identity.Actor{TenantID: f.school.ID, UserID: uuid.New(), Role: identity.RoleTeacher}
		classID := uuid.New()
		exam := newExam(t, f.school.ID, classID, uuid.New())
		amy := f.student(t, classID)
		f.exams.On("FindByID", ctx, f.school.ID, exam.ID).Return(exam, nil)
		f.students.On("FindByIDs", ctx, f.school.ID, []uuid.UUID{amy.ID}).Return([]*people.Student{amy}, nil)
		f.results.On("FindByExamAndStudents", ctx, f.school.ID, exam.ID, []uuid.UUID{amy.ID}).Return([]*exams.Result{}, nil)

		_, err := f.svc.RecordResults(ctx, actor, exam.ID, RecordResultsRequest{Results: []ResultEntry{
			{StudentID: amy.ID, Marks: decimal.NewFromInt(51)},
		}})
		requireCode(t, err, "INVALID_MARKS")
		f.results.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("student outside the class", func(t *testing.T) {
		f := newResultFixture(t)
		actor := identity.Actor{TenantID: f.school.ID, UserID: uuid.New(), Role: identity.RoleTeacher}
		exam := newExam(t, f.school.ID, uuid.New(), uuid.New())
		stray := f.student(t, uuid.New())
		f.exams.On("FindByID", ctx, f.school.ID, exam.ID).Return(exam, nil)
		f.students.On("FindByIDs", ctx, f.school.ID, []uuid.UUID{stray.ID}).Return([]*people.Student{stray}, nil)

		_, err := f.svc.RecordResults(ctx, actor, exam.ID, RecordResultsRequest{Results: []ResultEntry{
			{StudentID: stray.ID, Marks: decimal.NewFromInt(30)},
		}})
		requireCode(t, err, "STUDENT_NOT_IN_CLASS")
	})
}

func TestResultService_ReportCard(t *testing.T) {
	ctx := context.Background()
	f := newResultFixture(t)

	class, err := academic.NewClass(f.school.ID, academic.ClassDetails{Name: "Grade 6", GradeLevel: 6, Section: "B"})
	require.NoError(t, err)
	maths, err := academic.NewSubject(f.school.ID, "MATH", "Mathematics", "")
	require.NoError(t, err)
	amy := f.student(t, class.ID)
	parent := uuid.New()
	amy.LinkUsers(nil, &parent)

	quiz := newExam(t, f.school.ID, class.ID, maths.ID)
	final := newExam(t, f.school.ID, class.ID, maths.ID)
	r1, err := exams.NewResult(quiz, amy.ID, decimal.NewFromInt(40), "", school.DefaultGradingScale())
	require.NoError(t, err)
	r2, err := exams.NewResult(final, amy.ID, decimal.NewFromInt(30), "", school.DefaultGradingScale())
	require.NoError(t, err)

	var att attendance.Summary
	att.Add(attendance.StatusPresent, 9)
	att.Add(attendance.StatusAbsent, 1)

	f.students.On("FindByID", ctx, f.school.ID, amy.ID).Return(amy, nil)
	f.results.On("FindByStudent", ctx, f.school.ID, amy.ID, "Term 1").Return([]*exams.Result{r1, r2}, nil)
	f.exams.On("FindByIDs", ctx, f.school.ID, []uuid.UUID{quiz.ID, final.ID}).Return([]*exams.Exam{quiz, final}, nil)
	f.subjects.On("FindByID", ctx, f.school.ID, maths.ID).Return(maths, nil)
	f.classes.On("FindByID", ctx, f.school.ID, class.ID).Return(class, nil)
	f.attendance.On("Summarize", ctx, f.school.ID, mock.Anything).Return(att, nil)

	parentActor := identity.Actor{TenantID: f.school.ID, UserID: parent, Role: identity.RoleParent}

	card, err := f.svc.ReportCard(ctx, parentActor, amy.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Term 1", card.Term)
	require.Len(t, card.Subjects, 1)
	assert.Equal(t, 2, card.Subjects[0].Exams)
	assert.True(t, decimal.NewFromInt(70).Equal(card.OverallAverage), card.OverallAverage.String())
	assert.Equal(t, "B", card.OverallGrade)
	assert.Equal(t, "Grade 6 B", card.ClassName)
	assert.True(t, decimal.NewFromInt(90).Equal(card.AttendanceRate))

	doc, err := f.svc.ReportCardPDF(ctx, parentActor, amy.ID, "")
	require.NoError(t, err)
	assert.Contains(t, doc.FileName, amy.AdmissionNumber)
	assert.Contains(t, f.renderer.last.HTML, "Mathematics")
	assert.Contains(t, f.renderer.last.HTML, "Greenfield High")

	stranger := identity.Actor{TenantID: f.school.ID, UserID: uuid.New(), Role: identity.RoleParent}
	_, err = f.svc.ReportCard(ctx, stranger, amy.ID, "")
	requireCode(t, err, "FORBIDDEN")

	missing := uuid.New()
	f.students.On("FindByID", ctx, f.school.ID, missing).Return(nil, shared.ErrNotFound)
	_, err = f.svc.ReportCard(ctx, parentActor, missing, "")
	requireCode(t, err, "STUDENT_NOT_FOUND")
}

func TestResultService_ReportCardPDFWithoutPrinter(t *testing.T) {
	svc := NewResultService(ResultServiceDeps{Logger: zap.NewNop()})
	_, err := svc.ReportCardPDF(context.Background(), identity.Actor{}, uuid.New(), "")
	requireCode(t, err, "PDF_UNAVAILABLE")
}
