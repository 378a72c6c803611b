package console

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/employee-admin/internal/models"
)

// ErrNotDisplayed is returned when an action names an employee that is not in
// the displayed list.
var ErrNotDisplayed = errors.New("employee is not in the displayed list")

// Snapshot is a copy of a view's state taken for rendering.
type Snapshot struct {
	Employees []models.Employee
	Filter    Filter
	Form      Form
	Alert     string
	Loaded    bool
}

// View is the single owner of one session's displayed list. Every action holds
// the view lock until it returns, so a mutation and the reload that follows it
// are never interleaved with another action on the same view.
type View struct {
	mu     sync.Mutex
	api    API
	logger *zap.Logger

	store  Store
	filter *FilterController
	form   *FormController
	alert  string
	loaded bool
}

// ViewOption customises a View.
type ViewOption func(*viewOptions)

type viewOptions struct {
	logger   *zap.Logger
	validate *validator.Validate
}

// WithViewLogger sets the logger shared by the view and its controllers.
func WithViewLogger(l *zap.Logger) ViewOption {
	return func(o *viewOptions) { o.logger = l }
}

// WithValidator shares one validator across views.
func WithValidator(v *validator.Validate) ViewOption {
	return func(o *viewOptions) { o.validate = v }
}

// NewView builds an unloaded view over api.
func NewView(api API, opts ...ViewOption) *View {
	o := viewOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &View{
		api:    api,
		logger: o.logger,
		filter: NewFilterController(api, o.logger),
		form:   NewFormController(api, o.validate, o.logger),
	}
}

// Snapshot copies the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	return Snapshot{
		Employees: v.store.Employees(),
		Filter:    v.filter.Filter(),
		Form:      v.form.Form(),
		Alert:     v.alert,
		Loaded:    v.loaded,
	}
}

// Mount loads the full list the first time the view is shown. A view that
// already holds a list, including a search result from an earlier action, is
// left alone, and a mode selected before mounting survives.
func (v *View) Mount(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loaded {
		return nil
	}
	list, err := v.api.ListAll(ctx)
	if err != nil {
		v.logger.Error("employee list load failed", zap.Error(err))
		return err
	}
	v.store.Replace(list)
	v.loaded = true
	return nil
}

// Reload fetches the full list and resets the filter. When the fetch fails the
// filter is still reset and the stale list stays displayed.
func (v *View) Reload(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reloadLocked(ctx)
}

// Clear is Reload under the name the filter bar uses.
func (v *View) Clear(ctx context.Context) error { return v.Reload(ctx) }

func (v *View) reloadLocked(ctx context.Context) error {
	v.filter.Reset()
	v.alert = ""
	list, err := v.api.ListAll(ctx)
	if err != nil {
		v.logger.Error("employee list reload failed", zap.Error(err))
		return err
	}
	v.store.Replace(list)
	v.loaded = true
	return nil
}

// SelectMode switches the filter mode. The displayed list is untouched.
func (v *View) SelectMode(mode FilterMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.SelectMode(mode)
}

// SetQuery stores the query text for the active mode.
func (v *View) SetQuery(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.SetQuery(text)
}

// Search runs the active filter and replaces the displayed list with its result.
func (v *View) Search(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	result, err := v.filter.Search(ctx)
	if err != nil {
		return err
	}
	if !result.Applied {
		return nil
	}
	v.store.Replace(result.Employees)
	v.alert = result.Alert
	v.loaded = true
	return nil
}

// OpenCreate opens a blank form.
func (v *View) OpenCreate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form.OpenCreate()
}

// OpenEdit opens the form seeded from the displayed employee id.
func (v *View) OpenEdit(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	employee, ok := v.store.Find(id)
	if !ok {
		return ErrNotDisplayed
	}
	v.form.OpenEdit(employee)
	return nil
}

// SetField sets one field of the open draft.
func (v *View) SetField(name, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.form.SetField(name, value)
}

// SetDraft replaces the open draft.
func (v *View) SetDraft(draft models.EmployeeDraft) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form.SetDraft(draft)
}

// Cancel closes the form without any request.
func (v *View) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form.Cancel()
}

// Submit saves the draft, then reloads the full list. A failed save leaves the
// form open and skips the reload.
func (v *View) Submit(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, err := v.form.Submit(ctx); err != nil {
		return err
	}
	return v.reloadLocked(ctx)
}

// Delete asks confirm, deletes id and reloads the full list. A declined
// confirmation changes nothing.
func (v *View) Delete(ctx context.Context, id string, confirm Confirmer) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	deleted, err := v.form.Delete(ctx, id, confirm)
	if err != nil || !deleted {
		return err
	}
	return v.reloadLocked(ctx)
}

// Displayed returns the employee id from the displayed list.
func (v *View) Displayed(id string) (models.Employee, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.store.Find(id)
}
