package handler

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/employee-admin/internal/client"
	"github.com/noah-isme/employee-admin/internal/console"
	"github.com/noah-isme/employee-admin/internal/models"
	"github.com/noah-isme/employee-admin/pkg/export"
	"github.com/noah-isme/employee-admin/pkg/storage"
)

// SessionCookie names the cookie that binds a browser to its console view.
const SessionCookie = "employee_console_session"

//go:embed templates/*.html
var templatesFS embed.FS

var draftFields = []string{"firstName", "lastName", "email", "department", "position", "salary", "hireDate", "phone"}

type modeOption struct {
	Value    string
	Label    string
	Selected bool
}

type consolePage struct {
	console.Snapshot
	Modes          []modeOption
	Banner         string
	Problems       []string
	Confirm        *models.Employee
	ConfirmMessage string
}

// ConsoleHandler serves the employee admin console.
type ConsoleHandler struct {
	sessions *console.Sessions
	tmpl     *template.Template
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	secure   bool
	now      func() time.Time
}

// NewConsoleHandler constructs ConsoleHandler. secure marks the session
// cookie Secure.
func NewConsoleHandler(sessions *console.Sessions, logger *zap.Logger, secure bool) *ConsoleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleHandler{
		sessions: sessions,
		tmpl:     ConsoleTemplates(),
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		secure:   secure,
		now:      time.Now,
	}
}

// ConsoleTemplates parses the embedded console templates.
func ConsoleTemplates() *template.Template {
	funcs := template.FuncMap{
		"salary": console.FormatSalary,
		"empty":  func(list []models.Employee) bool { return len(list) == 0 },
	}
	return template.Must(template.New("console").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
}

// Register mounts the console routes and its templates on r.
func (h *ConsoleHandler) Register(r *gin.Engine) {
	r.SetHTMLTemplate(h.tmpl)
	r.GET("/", h.Index)
	r.POST("/filter", h.SelectMode)
	r.POST("/search", h.Search)
	r.POST("/clear", h.Clear)
	r.GET("/employees/new", h.New)
	r.GET("/employees/:id/edit", h.Edit)
	r.POST("/employees/save", h.Save)
	r.POST("/employees/cancel", h.Cancel)
	r.GET("/employees/:id/delete", h.ConfirmDelete)
	r.POST("/employees/:id/delete", h.Delete)
	r.GET("/export.csv", h.ExportCSV)
	r.GET("/export.pdf", h.ExportPDF)
}

func (h *ConsoleHandler) view(c *gin.Context) *console.View {
	current, _ := c.Cookie(SessionCookie)
	view, id := h.sessions.Get(current)
	if id != current {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, 0, "/", "", h.secure, true)
	}
	return view
}

func (h *ConsoleHandler) render(c *gin.Context, status int, view *console.View, page consolePage) {
	page.Snapshot = view.Snapshot()
	page.Modes = modeOptions(page.Snapshot.Filter.Mode())
	c.Header("Cache-Control", "no-store")
	c.HTML(status, "index", page)
}

func (h *ConsoleHandler) fail(c *gin.Context, view *console.View, err error) {
	_ = c.Error(err)
	h.render(c, failureStatus(err), view, consolePage{Banner: describeFailure(err), Problems: console.DraftProblems(err)})
}

func (h *ConsoleHandler) back(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

// Index mounts the view on first visit and renders it.
func (h *ConsoleHandler) Index(c *gin.Context) {
	view := h.view(c)
	if err := view.Mount(c.Request.Context()); err != nil {
		h.fail(c, view, err)
		return
	}
	h.render(c, http.StatusOK, view, consolePage{})
}

// SelectMode switches the filter mode.
func (h *ConsoleHandler) SelectMode(c *gin.Context) {
	view := h.view(c)
	mode, err := console.ParseFilterMode(c.PostForm("mode"))
	if err != nil {
		h.render(c, http.StatusBadRequest, view, consolePage{Banner: "Unknown filter."})
		return
	}
	view.SelectMode(mode)
	h.back(c)
}

// Search stores the query and runs the active filter. A mode field, when
// present, is applied first.
func (h *ConsoleHandler) Search(c *gin.Context) {
	view := h.view(c)
	if raw, ok := c.GetPostForm("mode"); ok {
		mode, err := console.ParseFilterMode(raw)
		if err != nil {
			h.render(c, http.StatusBadRequest, view, consolePage{Banner: "Unknown filter."})
			return
		}
		if mode != view.Snapshot().Filter.Mode() {
			view.SelectMode(mode)
		}
	}
	view.SetQuery(c.PostForm("query"))
	if err := view.Search(c.Request.Context()); err != nil {
		h.fail(c, view, err)
		return
	}
	h.back(c)
}

// Clear reloads every employee and resets the filter.
func (h *ConsoleHandler) Clear(c *gin.Context) {
	view := h.view(c)
	if err := view.Clear(c.Request.Context()); err != nil {
		h.fail(c, view, err)
		return
	}
	h.back(c)
}

// New opens a blank form.
func (h *ConsoleHandler) New(c *gin.Context) {
	view := h.view(c)
	view.OpenCreate()
	h.render(c, http.StatusOK, view, consolePage{})
}

// Edit opens the form for a displayed employee.
func (h *ConsoleHandler) Edit(c *gin.Context) {
	view := h.view(c)
	if err := view.OpenEdit(c.Param("id")); err != nil {
		h.render(c, http.StatusNotFound, view, consolePage{Banner: "That employee is not in the current list."})
		return
	}
	h.render(c, http.StatusOK, view, consolePage{})
}

// Save copies the posted fields into the draft and submits it.
func (h *ConsoleHandler) Save(c *gin.Context) {
	view := h.view(c)
	if !view.Snapshot().Form.Open {
		h.back(c)
		return
	}
	var problems []string
	for _, field := range draftFields {
		if err := view.SetField(field, c.PostForm(field)); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		h.render(c, http.StatusUnprocessableEntity, view, consolePage{Problems: problems})
		return
	}
	if err := view.Submit(c.Request.Context()); err != nil {
		if errors.Is(err, console.ErrInvalidDraft) {
			h.render(c, http.StatusUnprocessableEntity, view, consolePage{Problems: console.DraftProblems(err)})
			return
		}
		h.fail(c, view, err)
		return
	}
	h.back(c)
}

// Cancel closes the form.
func (h *ConsoleHandler) Cancel(c *gin.Context) {
	h.view(c).Cancel()
	h.back(c)
}

// ConfirmDelete asks before deleting a displayed employee.
func (h *ConsoleHandler) ConfirmDelete(c *gin.Context) {
	view := h.view(c)
	employee, ok := view.Displayed(c.Param("id"))
	if !ok {
		h.render(c, http.StatusNotFound, view, consolePage{Banner: "That employee is not in the current list."})
		return
	}
	h.render(c, http.StatusOK, view, consolePage{Confirm: &employee, ConfirmMessage: console.DeleteConfirmation})
}

// Delete deletes an employee when the posted form confirms it.
func (h *ConsoleHandler) Delete(c *gin.Context) {
	view := h.view(c)
	confirmed := console.ConfirmFunc(func(string) bool { return c.PostForm("confirm") == "yes" })
	if err := view.Delete(c.Request.Context(), c.Param("id"), confirmed); err != nil {
		h.fail(c, view, err)
		return
	}
	h.back(c)
}

// ExportCSV downloads the displayed list as CSV.
func (h *ConsoleHandler) ExportCSV(c *gin.Context) {
	list, ok := h.displayed(c)
	if !ok {
		return
	}
	data, err := h.csv.Render(export.EmployeeDataset(list, export.PlainSalary))
	if err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	h.attachment(c, "csv", "text/csv; charset=utf-8", data)
}

// ExportPDF downloads the displayed list as PDF.
func (h *ConsoleHandler) ExportPDF(c *gin.Context) {
	list, ok := h.displayed(c)
	if !ok {
		return
	}
	data, err := h.pdf.Render(export.EmployeeDataset(list, console.FormatSalary), "Employees")
	if err != nil {
		h.logger.Error("pdf export failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	h.attachment(c, "pdf", "application/pdf", data)
}

// displayed mounts the view like Index would, so a fresh session exports the
// full list rather than an empty one.
func (h *ConsoleHandler) displayed(c *gin.Context) ([]models.Employee, bool) {
	view := h.view(c)
	if err := view.Mount(c.Request.Context()); err != nil {
		h.fail(c, view, err)
		return nil, false
	}
	return view.Snapshot().Employees, true
}

func (h *ConsoleHandler) attachment(c *gin.Context, ext, contentType string, data []byte) {
	name := storage.ExportName("employees", ext, h.now())
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func modeOptions(active console.FilterMode) []modeOption {
	labels := map[console.FilterMode]string{
		console.FilterNone:         "All employees",
		console.FilterByName:       "Name or email",
		console.FilterByDepartment: "Department",
		console.FilterByID:         "Employee ID",
	}
	out := make([]modeOption, 0, len(labels))
	for _, mode := range console.Modes() {
		out = append(out, modeOption{Value: mode.String(), Label: labels[mode], Selected: mode == active})
	}
	return out
}

func describeFailure(err error) string {
	var netErr *client.NetworkError
	switch {
	case errors.Is(err, console.ErrInvalidDraft):
		return "Please correct the highlighted fields."
	case errors.Is(err, client.ErrNotFound):
		return "That employee no longer exists."
	case errors.Is(err, client.ErrValidation):
		return "The employee service rejected these details."
	case errors.As(err, &netErr):
		return "The employee service could not be reached."
	default:
		return "The employee service returned an error."
	}
}

func failureStatus(err error) int {
	switch {
	case errors.Is(err, console.ErrInvalidDraft), errors.Is(err, client.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, client.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
