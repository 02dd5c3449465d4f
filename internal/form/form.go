package form

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strconv"
	"strings"

	"github.com/aman-churiwal/mailing-lists/internal/i18n"
	"github.com/aman-churiwal/mailing-lists/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const DefaultCSSClass = "ml-subscription-form"

var cssClassInvalid = regexp.MustCompile(`[^A-Za-z0-9_-]`)

type ListFinder interface {
	FindByID(ctx context.Context, id uint) (*models.List, error)
}

type TokenSource interface {
	FormToken(listID uint) (string, error)
}

// Attributes are the embed options. Only ListID is required.
type Attributes struct {
	ListID   string `form:"list_id"`
	Title    string `form:"title"`
	BtnText  string `form:"btn_text"`
	CSSClass string `form:"css_class"`
}

// State carries the outcome of a submission back into the form.
type State struct {
	Message string
	Success bool
	Name    string
	Surname string
	Email   string
}

// RenderContext spans one rendered page. The stylesheet is emitted once per context.
type RenderContext struct {
	cssPrinted bool
}

func NewRenderContext() *RenderContext {
	return &RenderContext{}
}

type Renderer struct {
	tmpl   *template.Template
	lists  ListFinder
	tokens TokenSource
}

func NewRenderer(lists ListFinder, tokens TokenSource) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse form templates: %w", err)
	}

	return &Renderer{tmpl: tmpl, lists: lists, tokens: tokens}, nil
}

type labels struct {
	Name     string
	Surname  string
	Email    string
	Honeypot string
}

type formView struct {
	ListID     uint
	Action     string
	Title      string
	BtnText    string
	CSSClass   string
	Nonce      string
	Message    string
	Success    bool
	Name       string
	Surname    string
	Email      string
	Labels     labels
	IncludeCSS bool
}

// Render returns the form fragment for attrs. A missing or unknown list renders an inline error
// instead of a form.
func (r *Renderer) Render(ctx context.Context, rc *RenderContext, attrs Attributes, state State, msgs *i18n.Catalog) (template.HTML, error) {
	raw := strings.TrimSpace(attrs.ListID)
	if raw == "" {
		return r.renderError(msgs.T(i18n.FormListMissing))
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return r.renderError(msgs.T(i18n.FormListNotFound))
	}

	list, err := r.lists.FindByID(ctx, uint(id))
	if err != nil {
		return "", fmt.Errorf("failed to load list: %w", err)
	}
	if list == nil {
		return r.renderError(msgs.T(i18n.FormListNotFound))
	}

	nonce, err := r.tokens.FormToken(list.ID)
	if err != nil {
		return "", err
	}

	view := formView{
		ListID:   list.ID,
		Action:   fmt.Sprintf("/subscribe/%d", list.ID),
		Title:    orDefault(attrs.Title, msgs.T(i18n.FormTitle)),
		BtnText:  orDefault(attrs.BtnText, msgs.T(i18n.FormButton)),
		CSSClass: cssClass(attrs.CSSClass),
		Nonce:    nonce,
		Message:  state.Message,
		Success:  state.Success,
		Labels: labels{
			Name:     msgs.T(i18n.FormName),
			Surname:  msgs.T(i18n.FormSurname),
			Email:    msgs.T(i18n.FormEmail),
			Honeypot: msgs.T(i18n.FormHoneypot),
		},
	}
	// Posted values stay in the form until a submission is accepted
	if !state.Success {
		view.Name = state.Name
		view.Surname = state.Surname
		view.Email = state.Email
	}
	if !rc.cssPrinted {
		view.IncludeCSS = true
		rc.cssPrinted = true
	}

	return r.execute("form", view)
}

type pageView struct {
	Lang      string
	Title     string
	Fragments []template.HTML
}

// Page wraps rendered fragments in a standalone document.
func (r *Renderer) Page(msgs *i18n.Catalog, title string, fragments ...template.HTML) (template.HTML, error) {
	return r.execute("page", pageView{
		Lang:      msgs.Lang(),
		Title:     orDefault(title, msgs.T(i18n.FormTitle)),
		Fragments: fragments,
	})
}

func (r *Renderer) renderError(message string) (template.HTML, error) {
	return r.execute("error", message)
}

func (r *Renderer) execute(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	// Output of html/template is already escaped
	return template.HTML(buf.String()), nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func cssClass(value string) string {
	if c := cssClassInvalid.ReplaceAllString(value, ""); c != "" {
		return c
	}
	return DefaultCSSClass
}
