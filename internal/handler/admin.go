package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aman-churiwal/mailing-lists/internal/i18n"
	"github.com/aman-churiwal/mailing-lists/internal/mail"
	"github.com/aman-churiwal/mailing-lists/internal/security"
	"github.com/aman-churiwal/mailing-lists/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Export query parameters
const (
	paramExport     = "ml_export"
	paramListFilter = "ml_list_filter"
	paramNonce      = "ml_nonce"
)

var tokenActions = map[string]string{
	"bulk-email": security.ActionBulkEmail,
	"export":     security.ActionExport,
}

// AdminHandler serves the staff API. Routes sit behind RequireAuth.
type AdminHandler struct {
	lists    service.ListStore
	bulk     *service.BulkEmailService
	exports  *service.ExportService
	stats    *service.StatsService
	tokens   *security.TokenIssuer
	catalogs *i18n.Catalogs
	logger   *zap.Logger

	fromName    string
	fromAddress string
}

func NewAdminHandler(
	lists service.ListStore,
	bulk *service.BulkEmailService,
	exports *service.ExportService,
	stats *service.StatsService,
	tokens *security.TokenIssuer,
	catalogs *i18n.Catalogs,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		lists:    lists,
		bulk:     bulk,
		exports:  exports,
		stats:    stats,
		tokens:   tokens,
		catalogs: catalogs,
		logger:   logger.Named("admin_handler"),
	}
}

// SetDefaultSender fills in the sender for campaigns posted without one.
func (h *AdminHandler) SetDefaultSender(name, address string) {
	h.fromName = name
	h.fromAddress = address
}

func (h *AdminHandler) Lists(c *gin.Context) {
	lists, err := h.lists.Summaries(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load lists", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lists)
}

// Token issues a CSRF token for the bulk-email or export action, bound to the caller.
func (h *AdminHandler) Token(c *gin.Context) {
	action, ok := tokenActions[c.Param("action")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown action"})
		return
	}

	token, err := h.tokens.Create(action, userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AdminHandler) BulkEmail(c *gin.Context) {
	msgs := h.catalog(c)

	var req struct {
		service.Campaign
		Nonce string `json:"ml_nonce"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.tokens.Verify(req.Nonce, security.ActionBulkEmail, userID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": msgs.T(i18n.SecurityError)})
		return
	}

	campaign := req.Campaign
	if campaign.FromAddress == "" {
		campaign.FromName = h.fromName
		campaign.FromAddress = h.fromAddress
	}
	campaign.UserID = userID(c)
	campaign.IP = security.ClientIP(c.Request.Header, c.Request.RemoteAddr)

	result, err := h.bulk.Send(c.Request.Context(), campaign)
	switch {
	case errors.Is(err, service.ErrCampaignIncomplete),
		errors.Is(err, service.ErrInvalidSender),
		errors.Is(err, mail.ErrUnknownBodyFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrListNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgs.T(i18n.ExportListNotFound)})
		return
	case err != nil:
		h.logger.Error("bulk email failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":  result,
		"message": msgs.T(i18n.BulkSent, result.Sent, result.Total),
	})
}

// Export streams the subscriber download as an attachment.
func (h *AdminHandler) Export(c *gin.Context) {
	msgs := h.catalog(c)

	if !h.tokens.Verify(c.Query(paramNonce), security.ActionExport, userID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": msgs.T(i18n.SecurityError)})
		return
	}

	var listID uint64
	if raw := c.Query(paramListFilter); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{msgs.T(i18n.ExportListNotFound)}})
			return
		}
		listID = id
	}

	export, err := h.exports.Prepare(c.Request.Context(), uint(listID), c.Query(paramExport), msgs)
	if err != nil {
		var paramsErr *service.ExportParamsError
		if errors.As(err, &paramsErr) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": exportMessages(paramsErr, msgs)})
			return
		}
		h.logger.Error("failed to prepare export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Header("Cache-Control", "must-revalidate")
	c.Header("Pragma", "public")
	c.Status(http.StatusOK)

	ip := security.ClientIP(c.Request.Header, c.Request.RemoteAddr)
	if err := h.exports.Write(c.Request.Context(), c.Writer, export, msgs, userID(c), ip); err != nil {
		// Headers are already sent
		h.logger.Error("failed to write export", zap.Error(err))
	}
}

func (h *AdminHandler) CampaignLog(c *gin.Context) {
	entries, err := h.stats.RecentCampaigns(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *AdminHandler) ActivityLog(c *gin.Context) {
	entries, err := h.stats.RecentActivity(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Summary(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to compute stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) catalog(c *gin.Context) *i18n.Catalog {
	return h.catalogs.Match(c.Query("lang"), c.GetHeader("Accept-Language"))
}

func exportMessages(err *service.ExportParamsError, msgs *i18n.Catalog) []string {
	out := make([]string, 0, len(err.Errors))
	for _, e := range err.Errors {
		switch {
		case errors.Is(e, service.ErrInvalidFormat):
			out = append(out, msgs.T(i18n.ExportInvalidFmt))
		case errors.Is(e, service.ErrListNotFound):
			out = append(out, msgs.T(i18n.ExportListNotFound))
		default:
			out = append(out, e.Error())
		}
	}
	return out
}

func userID(c *gin.Context) string {
	id, _ := c.Get("user_id")
	s, _ := id.(string)
	return s
}

func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}
