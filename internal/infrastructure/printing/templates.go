package printing

// Template names
const (
	TemplateInvoice    = "invoice"
	TemplateReportCard = "report_card"
)

const baseLayout = `{{define "layout"}}<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{template "title" .}}</title>
<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 11pt; color: #222; }
h1 { font-size: 18pt; margin: 0 0 4px 0; }
.muted { color: #666; font-size: 9pt; }
.header { display: flex; justify-content: space-between; border-bottom: 2px solid #1f4e79; padding-bottom: 8px; margin-bottom: 16px; }
table { width: 100%; border-collapse: collapse; margin-top: 12px; }
th, td { padding: 6px 8px; border-bottom: 1px solid #ddd; text-align: left; }
th { background: #f2f5f9; }
td.num, th.num { text-align: right; }
.totals td { border: none; }
.badge { display: inline-block; padding: 2px 8px; border-radius: 4px; background: #eef; font-size: 9pt; }
</style></head>
<body>
<div class="header">
  <div><h1>{{.School.Name}}</h1>
  <div class="muted">{{.School.Address}}</div>
  <div class="muted">{{.School.Phone}} {{.School.Email}}</div></div>
  <div>{{template "heading" .}}</div>
</div>
{{template "body" .}}
<p class="muted">Generated {{date .GeneratedAt}}</p>
</body></html>{{end}}`

var builtinTemplates = map[string]string{
	TemplateInvoice: `
{{define "title"}}Invoice {{.Number}}{{end}}
{{define "heading"}}<h1>INVOICE</h1>
<div>No. <strong>{{.Number}}</strong></div>
<div>Issued {{date .IssueDate}} · Due {{date .DueDate}}</div>
<div class="badge">{{status .Status}}</div>{{end}}
{{define "body"}}
<p><strong>Bill to:</strong> {{.Student.Name}} ({{.Student.AdmissionNumber}}){{if .Student.ClassName}}, {{.Student.ClassName}}{{end}}</p>
{{if .Term}}<p class="muted">{{.AcademicYear}} {{.Term}}</p>{{end}}
<table>
<tr><th>#</th><th>Description</th><th class="num">Amount</th></tr>
{{range $i, $item := .Items}}<tr><td>{{inc $i}}</td><td>{{$item.Description}}</td><td class="num">{{money $.Currency $item.Amount}}</td></tr>
{{end}}</table>
<table class="totals">
<tr><td></td><td class="num">Total</td><td class="num"><strong>{{money .Currency .Total}}</strong></td></tr>
<tr><td></td><td class="num">Paid</td><td class="num">{{money .Currency .Paid}}</td></tr>
<tr><td></td><td class="num">Balance</td><td class="num"><strong>{{money .Currency .Balance}}</strong></td></tr>
</table>
{{if .Payments}}<h3>Payments</h3>
<table>
<tr><th>Date</th><th>Method</th><th>Reference</th><th class="num">Amount</th></tr>
{{range .Payments}}<tr><td>{{date .PaidAt}}</td><td>{{status .Method}}</td><td>{{.Reference}}</td><td class="num">{{money $.Currency .Amount}}</td></tr>
{{end}}</table>{{end}}
{{if .Notes}}<p class="muted">{{.Notes}}</p>{{end}}
{{end}}`,

	TemplateReportCard: `
{{define "title"}}Report card {{.Student.Name}}{{end}}
{{define "heading"}}<h1>REPORT CARD</h1>
<div>{{.AcademicYear}} {{.Term}}</div>{{end}}
{{define "body"}}
<p><strong>{{title .Student.Name}}</strong> ({{.Student.AdmissionNumber}}){{if .Student.ClassName}}, {{.Student.ClassName}}{{end}}</p>
<table>
<tr><th>Subject</th><th class="num">Assessments</th><th class="num">Average</th><th class="num">Grade</th></tr>
{{range .Subjects}}<tr><td>{{.Subject}}</td><td class="num">{{.Assessments}}</td><td class="num">{{percent .Average}}</td><td class="num">{{.Grade}}</td></tr>
{{else}}<tr><td colspan="4" class="muted">No results recorded for this term.</td></tr>
{{end}}</table>
<table class="totals">
<tr><td class="num">Overall average</td><td class="num"><strong>{{percent .OverallAverage}}</strong></td></tr>
<tr><td class="num">Overall grade</td><td class="num"><strong>{{.OverallGrade}}</strong></td></tr>
<tr><td class="num">Attendance</td><td class="num">{{percent .AttendanceRate}}</td></tr>
</table>
{{if .Remarks}}<p>{{.Remarks}}</p>{{end}}
{{end}}`,
}
