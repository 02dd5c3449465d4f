package handler

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/aman-churiwal/mailing-lists/internal/form"
	"github.com/aman-churiwal/mailing-lists/internal/i18n"
	"github.com/aman-churiwal/mailing-lists/internal/security"
	"github.com/aman-churiwal/mailing-lists/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const htmlContentType = "text/html; charset=utf-8"

// FormHandler serves the public subscription forms.
type FormHandler struct {
	renderer      *form.Renderer
	subscriptions *service.SubscriptionService
	catalogs      *i18n.Catalogs
	logger        *zap.Logger
}

func NewFormHandler(renderer *form.Renderer, subscriptions *service.SubscriptionService, catalogs *i18n.Catalogs, logger *zap.Logger) *FormHandler {
	return &FormHandler{
		renderer:      renderer,
		subscriptions: subscriptions,
		catalogs:      catalogs,
		logger:        logger.Named("form_handler"),
	}
}

// Show renders a single form as a standalone page.
func (h *FormHandler) Show(c *gin.Context) {
	msgs := h.catalog(c)
	attrs := h.attributes(c)

	fragment, err := h.renderer.Render(c.Request.Context(), form.NewRenderContext(), attrs, form.State{}, msgs)
	if err != nil {
		h.renderFailed(c, err)
		return
	}

	h.page(c, http.StatusOK, msgs, attrs.Title, fragment)
}

// ShowMany renders one form per list_id query value on the same page.
func (h *FormHandler) ShowMany(c *gin.Context) {
	msgs := h.catalog(c)
	attrs := h.attributes(c)

	ids := c.QueryArray("list_id")
	if len(ids) == 0 {
		ids = []string{""}
	}

	rc := form.NewRenderContext()
	fragments := make([]template.HTML, 0, len(ids))
	for _, id := range ids {
		attrs.ListID = id
		fragment, err := h.renderer.Render(c.Request.Context(), rc, attrs, form.State{}, msgs)
		if err != nil {
			h.renderFailed(c, err)
			return
		}
		fragments = append(fragments, fragment)
	}

	h.page(c, http.StatusOK, msgs, attrs.Title, fragments...)
}

// Embed returns the bare form fragment for inclusion in another page.
func (h *FormHandler) Embed(c *gin.Context) {
	msgs := h.catalog(c)

	fragment, err := h.renderer.Render(c.Request.Context(), form.NewRenderContext(), h.attributes(c), form.State{}, msgs)
	if err != nil {
		h.renderFailed(c, err)
		return
	}

	c.Data(http.StatusOK, htmlContentType, []byte(fragment))
}

// Submit processes a posted form and re-renders it with the outcome.
// A token failure stops with a bare 403 message.
func (h *FormHandler) Submit(c *gin.Context) {
	msgs := h.catalog(c)
	attrs := h.attributes(c)
	wantsJSON := c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON

	listID, err := strconv.ParseUint(strings.TrimSpace(attrs.ListID), 10, 32)
	if err != nil || listID == 0 {
		if wantsJSON {
			c.JSON(http.StatusNotFound, gin.H{"error": msgs.T(i18n.FormListNotFound)})
			return
		}
		h.Show(c)
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ip := security.ClientIP(c.Request.Header, c.Request.RemoteAddr)
	req, ok := form.ParseSubmission(c.Request.PostForm, uint(listID), ip)
	if !ok {
		// Posted for another form on the page
		if wantsJSON {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgs.T(i18n.FormIncomplete)})
			return
		}
		h.Show(c)
		return
	}

	result := h.subscriptions.Subscribe(c.Request.Context(), req, msgs)
	status := statusFor(result.Outcome)

	if wantsJSON {
		c.JSON(status, result)
		return
	}

	if result.Outcome == service.OutcomeSecurity {
		c.Data(status, "text/plain; charset=utf-8", []byte(result.Message))
		return
	}

	fragment, err := h.renderer.Render(c.Request.Context(), form.NewRenderContext(), attrs, form.StateFor(req, result), msgs)
	if err != nil {
		h.renderFailed(c, err)
		return
	}

	h.page(c, status, msgs, attrs.Title, fragment)
}

func (h *FormHandler) catalog(c *gin.Context) *i18n.Catalog {
	return h.catalogs.Match(c.Query("lang"), c.GetHeader("Accept-Language"))
}

// attributes reads the embed options from the query string. A list_id path parameter wins.
func (h *FormHandler) attributes(c *gin.Context) form.Attributes {
	var attrs form.Attributes
	_ = c.ShouldBindQuery(&attrs)

	if id := c.Param("list_id"); id != "" {
		attrs.ListID = id
	}
	return attrs
}

func (h *FormHandler) page(c *gin.Context, status int, msgs *i18n.Catalog, title string, fragments ...template.HTML) {
	html, err := h.renderer.Page(msgs, title, fragments...)
	if err != nil {
		h.renderFailed(c, err)
		return
	}

	c.Data(status, htmlContentType, []byte(html))
}

func (h *FormHandler) renderFailed(c *gin.Context, err error) {
	h.logger.Error("failed to render form", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render form"})
}

func statusFor(outcome service.Outcome) int {
	switch outcome {
	case service.OutcomeAccepted:
		return http.StatusOK
	case service.OutcomeSecurity:
		return http.StatusForbidden
	case service.OutcomeThrottled:
		return http.StatusTooManyRequests
	case service.OutcomeDuplicate:
		return http.StatusConflict
	case service.OutcomeFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
