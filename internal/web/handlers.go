package web

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Makhnitskiy-gpt/channel2pdf/internal/analytics"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/domain"
	"github.com/Makhnitskiy-gpt/channel2pdf/internal/usecase/report"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const dateLayout = "2006-01-02"

// Handler обслуживает веб-интерфейс генерации отчётов.
type Handler struct {
	service      *report.Service
	sink         *analytics.Sink
	outputDir    string
	analyticsLog string
	production   bool
	log          zerolog.Logger
}

// NewHandler создаёт обработчики веб-интерфейса.
func NewHandler(service *report.Service, sink *analytics.Sink, outputDir, analyticsLog string, production bool, log zerolog.Logger) *Handler {
	return &Handler{
		service:      service,
		sink:         sink,
		outputDir:    outputDir,
		analyticsLog: analyticsLog,
		production:   production,
		log:          log,
	}
}

// Routes монтирует маршруты на роутер.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.index)
	r.Post("/generate", h.generate)
	r.Get("/files/{name}", h.download)
	r.Get("/lang/{lang}", h.switchLang)
	r.Get("/admin/analytics", h.adminAnalytics)
	r.Get("/health", h.health)
}

// indexData — данные главной страницы; поля формы возвращаются как есть,
// чтобы при ошибке пользователь не терял ввод.
type indexData struct {
	Lang     string
	DemoMode bool
	Error    string

	Success       bool
	PDFFilename   string
	SortTypeName  string
	DirectionName string

	Channel   string
	DateFrom  string
	DateTo    string
	SortType  string
	Direction string
	Filename  string
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	h.sink.PageView(r)
	h.renderIndex(w, indexData{
		Lang:      analytics.Language(r),
		DemoMode:  h.service.DemoMode(),
		SortType:  "date",
		Direction: "desc",
	})
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "некорректная форма", http.StatusBadRequest)
		return
	}

	data := indexData{
		Lang:      analytics.Language(r),
		DemoMode:  h.service.DemoMode(),
		Channel:   strings.TrimSpace(r.PostFormValue("channel")),
		DateFrom:  strings.TrimSpace(r.PostFormValue("date_from")),
		DateTo:    strings.TrimSpace(r.PostFormValue("date_to")),
		SortType:  r.PostFormValue("sort_type"),
		Direction: r.PostFormValue("direction"),
		Filename:  strings.TrimSpace(r.PostFormValue("filename")),
	}

	if data.Channel == "" {
		data.Error = "Канал не может быть пустым"
		h.renderIndex(w, data)
		return
	}
	dateFrom, err := time.ParseInLocation(dateLayout, data.DateFrom, time.UTC)
	if err != nil {
		data.Error = "Неверный формат даты начала. Используйте формат ГГГГ-ММ-ДД"
		h.renderIndex(w, data)
		return
	}
	dateTo, err := time.ParseInLocation(dateLayout, data.DateTo, time.UTC)
	if err != nil {
		data.Error = "Неверный формат даты окончания. Используйте формат ГГГГ-ММ-ДД"
		h.renderIndex(w, data)
		return
	}
	if dateTo.Before(dateFrom) {
		data.Error = "Дата окончания не может быть раньше даты начала"
		h.renderIndex(w, data)
		return
	}
	sortKey := domain.SortKey(data.SortType)
	if !sortKey.Valid() {
		data.Error = "Неверный тип сортировки: " + data.SortType
		h.renderIndex(w, data)
		return
	}
	if data.Direction != "asc" && data.Direction != "desc" {
		data.Error = "Неверное направление сортировки: " + data.Direction
		h.renderIndex(w, data)
		return
	}

	h.sink.ExportStarted(r, data.Channel, data.DateFrom, data.DateTo)

	req := domain.ReportRequest{
		Channel:   data.Channel,
		DateFrom:  dateFrom,
		DateTo:    dateTo,
		Sort:      sortKey,
		Ascending: data.Direction == "asc",
		Filename:  data.Filename,
	}
	path, err := h.service.Generate(r.Context(), req)
	if err != nil {
		kind := domain.KindOf(err)
		h.sink.ExportFailed(r, data.Channel, kind.String())
		h.log.Warn().Err(err).Str("kind", kind.String()).Str("channel", data.Channel).Msg("web: генерация не удалась")
		data.Error = userMessage(kind, err)
		h.renderIndex(w, data)
		return
	}

	h.sink.ExportSuccess(r, data.Channel, 0)

	data.Success = true
	data.PDFFilename = filepath.Base(path)
	data.SortTypeName = sortTypeNames[sortKey]
	if req.Ascending {
		data.DirectionName = "по возрастанию"
	} else {
		data.DirectionName = "по убыванию"
	}
	h.renderIndex(w, data)
}

var sortTypeNames = map[domain.SortKey]string{
	domain.SortByDate:      "по дате",
	domain.SortByReactions: "по количеству реакций",
	domain.SortByViews:     "по количеству просмотров",
}

func userMessage(kind domain.ErrorKind, err error) string {
	switch kind {
	case domain.ErrInvalidParameter, domain.ErrEmptyResult:
		return err.Error()
	case domain.ErrChannelUnavailable:
		return "Канал не найден: " + err.Error()
	case domain.ErrSourceUnavailable:
		return "Ошибка подключения к Telegram: " + err.Error()
	default:
		return "Ошибка генерации отчёта: " + err.Error()
	}
}

// download отдаёт сгенерированный PDF. Имя не должно содержать
// разделителей пути, а итоговый путь обязан остаться в outputDir.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		http.Error(w, "недопустимое имя файла", http.StatusForbidden)
		return
	}

	dir, err := filepath.Abs(h.outputDir)
	if err != nil {
		http.Error(w, "файл не найден", http.StatusNotFound)
		return
	}
	path := filepath.Join(dir, name)
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		http.Error(w, "файл не найден", http.StatusNotFound)
		return
	}
	resolvedDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		http.Error(w, "файл не найден", http.StatusNotFound)
		return
	}
	if resolved != resolvedDir && !strings.HasPrefix(resolved, resolvedDir+string(filepath.Separator)) {
		http.Error(w, "доступ запрещён", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}

func (h *Handler) switchLang(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	if lang != "ru" && lang != "en" {
		lang = "ru"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     analytics.LanguageCookie,
		Value:    lang,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: false,
	})
	h.sink.LangChanged(r, lang)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type adminData struct {
	Env           string
	Report        *analytics.Report
	Started       int
	Success       int
	Failed        int
	HasConversion bool
	Conversion    float64
	Daily         []analytics.DailyEntry
	Errors        []analytics.ErrorCount
	TopChannels   []analytics.ChannelCount
}

// adminAnalytics — внутренняя страница статистики; в боевом окружении
// маршрут отвечает 404.
func (h *Handler) adminAnalytics(w http.ResponseWriter, r *http.Request) {
	if h.production {
		http.NotFound(w, r)
		return
	}

	rep, err := analytics.ParseLogFile(h.analyticsLog)
	if err != nil {
		h.log.Error().Err(err).Msg("web: не удалось прочитать лог аналитики")
		http.Error(w, "не удалось прочитать лог аналитики", http.StatusInternalServerError)
		return
	}

	daily := rep.DailySorted(true)
	if len(daily) > 30 {
		daily = daily[:30]
	}
	data := adminData{
		Env:         envName(h.production),
		Report:      rep,
		Started:     rep.Events[analytics.EventExportStarted],
		Success:     rep.Events[analytics.EventExportSuccess],
		Failed:      rep.Events[analytics.EventExportFailed],
		Daily:       daily,
		Errors:      rep.ErrorsSorted(),
		TopChannels: rep.TopChannels(10),
	}
	data.Conversion, data.HasConversion = rep.ConversionRate()

	if err := templates.ExecuteTemplate(w, "admin.html", data); err != nil {
		h.log.Error().Err(err).Msg("web: рендер admin.html")
	}
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *Handler) renderIndex(w http.ResponseWriter, data indexData) {
	if err := templates.ExecuteTemplate(w, "index.html", data); err != nil {
		h.log.Error().Err(err).Msg("web: рендер index.html")
	}
}

func envName(production bool) string {
	if production {
		return "production"
	}
	return "dev"
}
