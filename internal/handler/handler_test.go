package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aman-churiwal/mailing-lists/internal/activity"
	"github.com/aman-churiwal/mailing-lists/internal/events"
	"github.com/aman-churiwal/mailing-lists/internal/form"
	"github.com/aman-churiwal/mailing-lists/internal/i18n"
	"github.com/aman-churiwal/mailing-lists/internal/mail"
	"github.com/aman-churiwal/mailing-lists/internal/models"
	"github.com/aman-churiwal/mailing-lists/internal/security"
	"github.com/aman-churiwal/mailing-lists/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memSubscribers struct {
	byList map[uint][]models.Subscriber
}

func (m *memSubscribers) ExistsInList(ctx context.Context, email string, listID uint) (bool, error) {
	for _, s := range m.byList[listID] {
		if s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memSubscribers) CreateWithList(ctx context.Context, subscriber *models.Subscriber, listID uint) error {
	m.byList[listID] = append(m.byList[listID], *subscriber)
	return nil
}

func (m *memSubscribers) FindByList(ctx context.Context, listID uint) ([]models.Subscriber, error) {
	return m.byList[listID], nil
}

func (m *memSubscribers) FindAll(ctx context.Context, listID uint) ([]models.Subscriber, error) {
	return m.byList[listID], nil
}

func (m *memSubscribers) Count(ctx context.Context) (int64, error) {
	var n int64
	for _, subs := range m.byList {
		n += int64(len(subs))
	}
	return n, nil
}

type memLists map[uint]*models.List

func (m memLists) FindByID(ctx context.Context, id uint) (*models.List, error) {
	return m[id], nil
}

func (m memLists) Summaries(ctx context.Context) ([]models.ListSummary, error) {
	var out []models.ListSummary
	for _, l := range m {
		out = append(out, models.ListSummary{List: *l})
	}
	return out, nil
}

type openLimiter struct{}

func (openLimiter) Allow(ctx context.Context, ip string) (bool, error) { return true, nil }
func (openLimiter) Increment(ctx context.Context, ip string) error     { return nil }

type memOptions map[string][]byte

func (m memOptions) Get(ctx context.Context, name string, dst interface{}) (bool, error) {
	raw, ok := m[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m memOptions) Set(ctx context.Context, name string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m[name] = raw
	return nil
}

type recordingTransport struct {
	sent []mail.Message
}

func (r *recordingTransport) Send(ctx context.Context, msg mail.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

type fixture struct {
	router      *gin.Engine
	tokens      *security.TokenIssuer
	subs        *service.SubscriptionService
	subscribers *memSubscribers
	transport   *recordingTransport
	logs        *activity.Logs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	lists := memLists{4: {ID: 4, Name: "Novas"}, 5: {ID: 5, Name: "Eventos"}}
	subscribers := &memSubscribers{byList: make(map[uint][]models.Subscriber)}
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	logs := activity.NewLogs(memOptions{}, 100, 500)
	catalogs := i18n.New("gl")
	transport := &recordingTransport{}

	subs := service.NewSubscriptionService(tokens, openLimiter{}, subscribers, events.NewHooks(logger), logs, logger)
	renderer, err := form.NewRenderer(lists, subs)
	require.NoError(t, err)

	bulk := service.NewBulkEmailService(subscribers, lists, transport, logs, 0, logger)
	exports := service.NewExportService(subscribers, lists, logs, logger)
	stats := service.NewStatsService(subscribers, lists, logs)

	forms := NewFormHandler(renderer, subs, catalogs, logger)
	admin := NewAdminHandler(lists, bulk, exports, stats, tokens, catalogs, logger)

	r := gin.New()
	r.GET("/subscribe", forms.ShowMany)
	r.GET("/subscribe/:list_id", forms.Show)
	r.POST("/subscribe/:list_id", forms.Submit)
	r.GET("/embed/:list_id", forms.Embed)

	group := r.Group("/admin", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Next()
	})
	group.GET("/lists", admin.Lists)
	group.GET("/tokens/:action", admin.Token)
	group.POST("/bulk-email", admin.BulkEmail)
	group.GET("/export", admin.Export)
	group.GET("/logs/activity", admin.ActivityLog)

	return &fixture{
		router:      r,
		tokens:      tokens,
		subs:        subs,
		subscribers: subscribers,
		transport:   transport,
		logs:        logs,
	}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) post(t *testing.T, path string, values url.Values, accept string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return f.do(req)
}

func (f *fixture) formValues(t *testing.T, listID uint) url.Values {
	t.Helper()

	nonce, err := f.subs.FormToken(listID)
	require.NoError(t, err)

	return url.Values{
		"ml_name":     {"Ana"},
		"ml_surname":  {"Pérez"},
		"ml_mail":     {"Ana@Example.org"},
		"ml_list_id":  {"4"},
		"ml_nonce":    {nonce},
		"ml_honeypot": {""},
	}
}

func TestShow_RendersPage(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/subscribe/4?title=Novidades", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, w.Body.String(), "<h3>Novidades</h3>")
}

func TestShowMany_PrintsStylesOnce(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/subscribe?list_id=4&list_id=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `id="ml-form-4"`)
	assert.Contains(t, body, `id="ml-form-5"`)
	assert.Equal(t, 1, strings.Count(body, "<style>"))
}

func TestEmbed_UnknownList(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/embed/99", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, w.Body.String(), "Erro: A lista especificada non existe.")
}

func TestSubmit_AcceptedJSON(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, "/subscribe/4?lang=en", f.formValues(t, 4), "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var result service.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, service.OutcomeAccepted, result.Outcome)
	assert.Equal(t, "Thank you! Your subscription has been processed.", result.Message)

	require.Len(t, f.subscribers.byList[4], 1)
	assert.Equal(t, "ana@example.org", f.subscribers.byList[4][0].Email)
}

func TestSubmit_DuplicateKeepsValues(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.post(t, "/subscribe/4", f.formValues(t, 4), "").Code)

	w := f.post(t, "/subscribe/4", f.formValues(t, 4), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Este correo xa está subscrito a esta lista.")
	assert.Contains(t, w.Body.String(), `value="Ana"`)
}

func TestSubmit_BadNonceStops(t *testing.T) {
	f := newFixture(t)

	values := f.formValues(t, 4)
	values.Set("ml_nonce", "forged")

	w := f.post(t, "/subscribe/4", values, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Erro de seguridade. Por favor, inténteo de novo.", w.Body.String())
	assert.Empty(t, f.subscribers.byList[4])
}

func TestSubmit_OtherFormIgnored(t *testing.T) {
	f := newFixture(t)

	values := f.formValues(t, 4)
	values.Set("ml_list_id", "5")

	w := f.post(t, "/subscribe/4", values, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `class="ml-message"`)
	assert.NotContains(t, w.Body.String(), `value="Ana"`)
	assert.Empty(t, f.subscribers.byList[4])
}

func TestSubmit_HoneypotShownInForm(t *testing.T) {
	f := newFixture(t)

	values := f.formValues(t, 4)
	values.Set("ml_honeypot", "http://spam.example")

	w := f.post(t, "/subscribe/4", values, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `class="ml-message"`)
	assert.Contains(t, w.Body.String(), "Detección de spam. Solicitude rexeitada.")
	assert.Contains(t, w.Body.String(), `id="ml-form-4"`)
	assert.Empty(t, f.subscribers.byList[4])
}

func TestSubmit_Incomplete(t *testing.T) {
	f := newFixture(t)

	values := f.formValues(t, 4)
	values.Del("ml_surname")

	w := f.post(t, "/subscribe/4?lang=es", values, "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Datos del formulario incompletos.")
}

func (f *fixture) adminToken(t *testing.T, action string) string {
	t.Helper()

	w := f.do(httptest.NewRequest(http.MethodGet, "/admin/tokens/"+action, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Token
}

func TestToken_UnknownAction(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/admin/tokens/delete", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExport_Download(t *testing.T) {
	f := newFixture(t)
	f.subscribers.byList[4] = []models.Subscriber{{Name: "Ana", Surname: "Pérez", Email: "ana@example.org"}}

	token := f.adminToken(t, "export")
	w := f.do(httptest.NewRequest(http.MethodGet, "/admin/export?ml_export=csv&ml_list_filter=4&ml_nonce="+url.QueryEscape(token), nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="suscriptores-novas-`)
	assert.Equal(t, "must-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "public", w.Header().Get("Pragma"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "\xEF\xBB\xBF"))
	assert.Contains(t, w.Body.String(), "ana@example.org")
}

func TestExport_Rejections(t *testing.T) {
	f := newFixture(t)
	token := f.adminToken(t, "export")

	w := f.do(httptest.NewRequest(http.MethodGet, "/admin/export?ml_export=csv&ml_nonce=nope", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A bulk-email token does not open the export
	bulkToken := f.adminToken(t, "bulk-email")
	w = f.do(httptest.NewRequest(http.MethodGet, "/admin/export?ml_export=csv&ml_nonce="+url.QueryEscape(bulkToken), nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(httptest.NewRequest(http.MethodGet, "/admin/export?lang=en&ml_export=pdf&ml_list_filter=99&ml_nonce="+url.QueryEscape(token), nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"Invalid export format.", "The specified list does not exist."}, body.Errors)
}

func TestBulkEmail(t *testing.T) {
	f := newFixture(t)
	f.subscribers.byList[4] = []models.Subscriber{
		{Name: "Ana", Surname: "Pérez", Email: "ana@example.org"},
		{Name: "Brais", Surname: "Lema", Email: "brais@example.org"},
	}

	payload := map[string]interface{}{
		"list_id":      4,
		"from_name":    "Novas",
		"from_address": "news@example.org",
		"subject":      "Ola",
		"body":         "Ola {{nome}}",
		"ml_nonce":     f.adminToken(t, "bulk-email"),
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/admin/bulk-email?lang=en", strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Result  service.BulkResult `json:"result"`
		Message string             `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Result.Sent)
	assert.Equal(t, "2 of 2 emails sent.", body.Message)
	require.Len(t, f.transport.sent, 2)
	assert.Contains(t, f.transport.sent[0].HTML, "Ola Ana")

	entries, err := f.logs.Campaigns.All(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "user-1", entries[0].UserID)
}

func TestBulkEmail_RequiresToken(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/bulk-email", strings.NewReader(`{"list_id":4,"ml_nonce":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, f.transport.sent)
}
