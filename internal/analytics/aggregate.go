package analytics

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// event — минимальная проекция строки лога, нужная агрегатору.
type event struct {
	Timestamp string `json:"timestamp"`
	EventType string `json:"event_type"`
	Lang      string `json:"lang"`
	Extra     struct {
		ErrorType    string `json:"error_type"`
		ChannelInput string `json:"channel_input"`
	} `json:"extra"`
}

// DayStats — счётчики экспортов за один день.
type DayStats struct {
	Started int
	Success int
	Failed  int
}

// Report — агрегированная статистика по логу аналитики.
type Report struct {
	TotalLines  int
	ValidEvents int
	Events      map[string]int
	Languages   map[string]int
	Errors      map[string]int
	Daily       map[string]*DayStats
	Channels    map[string]int
}

// NewReport создаёт пустой отчёт.
func NewReport() *Report {
	return &Report{
		Events:    make(map[string]int),
		Languages: make(map[string]int),
		Errors:    make(map[string]int),
		Daily:     make(map[string]*DayStats),
		Channels:  make(map[string]int),
	}
}

// ParseLogFile агрегирует файл лога. Отсутствующий файл — пустой отчёт.
func ParseLogFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewReport(), nil
		}
		return nil, err
	}
	defer f.Close()
	return ParseLog(f), nil
}

// ParseLog читает лог построчно; строки, не являющиеся JSON-событием,
// пропускаются.
func ParseLog(r io.Reader) *Report {
	report := NewReport()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		report.TotalLines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		if e.EventType == "" {
			continue
		}
		report.add(e)
	}
	return report
}

func (r *Report) add(e event) {
	r.ValidEvents++
	r.Events[e.EventType]++

	lang := e.Lang
	if lang == "" {
		lang = "unknown"
	}
	r.Languages[lang]++

	switch e.EventType {
	case EventExportStarted, EventExportSuccess, EventExportFailed:
		day, _, _ := strings.Cut(e.Timestamp, "T")
		if day != "" {
			stats := r.Daily[day]
			if stats == nil {
				stats = &DayStats{}
				r.Daily[day] = stats
			}
			switch e.EventType {
			case EventExportStarted:
				stats.Started++
			case EventExportSuccess:
				stats.Success++
			case EventExportFailed:
				stats.Failed++
			}
		}
	}

	if e.EventType == EventExportFailed {
		errorType := e.Extra.ErrorType
		if errorType == "" {
			errorType = "UnknownError"
		}
		r.Errors[errorType]++
	}
	if e.EventType == EventExportStarted && e.Extra.ChannelInput != "" {
		r.Channels[e.Extra.ChannelInput]++
	}
}

// ConversionRate возвращает долю успешных экспортов в процентах;
// ok == false, если экспортов ещё не было.
func (r *Report) ConversionRate() (float64, bool) {
	started := r.Events[EventExportStarted]
	if started == 0 {
		return 0, false
	}
	return float64(r.Events[EventExportSuccess]) / float64(started) * 100, true
}

// DailyEntry — статистика одного дня для отсортированного вывода.
type DailyEntry struct {
	Date  string
	Stats DayStats
}

// DailySorted возвращает статистику по дням; newestFirst задаёт порядок.
func (r *Report) DailySorted(newestFirst bool) []DailyEntry {
	entries := make([]DailyEntry, 0, len(r.Daily))
	for day, stats := range r.Daily {
		entries = append(entries, DailyEntry{Date: day, Stats: *stats})
	}
	sort.Slice(entries, func(i, j int) bool {
		if newestFirst {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].Date < entries[j].Date
	})
	return entries
}

// ChannelCount — канал и количество его экспортов.
type ChannelCount struct {
	Channel string
	Count   int
}

// TopChannels возвращает до n каналов по убыванию количества экспортов.
func (r *Report) TopChannels(n int) []ChannelCount {
	entries := make([]ChannelCount, 0, len(r.Channels))
	for channel, count := range r.Channels {
		entries = append(entries, ChannelCount{Channel: channel, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Channel < entries[j].Channel
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// ErrorCount — тип ошибки и количество её появлений.
type ErrorCount struct {
	ErrorType string
	Count     int
}

// ErrorsSorted возвращает ошибки по убыванию количества.
func (r *Report) ErrorsSorted() []ErrorCount {
	entries := make([]ErrorCount, 0, len(r.Errors))
	for errorType, count := range r.Errors {
		entries = append(entries, ErrorCount{ErrorType: errorType, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].ErrorType < entries[j].ErrorType
	})
	return entries
}

// FormatReport строит текстовый отчёт для консоли.
func FormatReport(r *Report, maxChannels int) string {
	var b strings.Builder
	line := strings.Repeat("=", 70)
	thin := strings.Repeat("-", 70)

	fmt.Fprintf(&b, "%s\nАНАЛИТИКА CHANNEL2PDF\n%s\n\n", line, line)
	fmt.Fprintf(&b, "Всего строк в логе: %d\n", r.TotalLines)
	fmt.Fprintf(&b, "Валидных событий аналитики: %d\n\n", r.ValidEvents)

	fmt.Fprintf(&b, "%s\nСВОДКА ПО СОБЫТИЯМ\n%s\n", thin, thin)
	fmt.Fprintf(&b, "export_started:  %6d\n", r.Events[EventExportStarted])
	fmt.Fprintf(&b, "export_success:  %6d\n", r.Events[EventExportSuccess])
	fmt.Fprintf(&b, "export_failed:   %6d\n\n", r.Events[EventExportFailed])

	if rate, ok := r.ConversionRate(); ok {
		fmt.Fprintf(&b, "Конверсия (success/started): %.2f%%\n\n", rate)
	} else {
		fmt.Fprintf(&b, "Конверсия: нет данных\n\n")
	}

	fmt.Fprintf(&b, "%s\nОШИБКИ ПО ТИПАМ\n%s\n", thin, thin)
	errors := r.ErrorsSorted()
	if len(errors) == 0 {
		fmt.Fprintf(&b, "Ошибок пока не было\n")
	}
	for _, e := range errors {
		fmt.Fprintf(&b, "%-40s — %d\n", e.ErrorType, e.Count)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s\nСТАТИСТИКА ПО ДНЯМ\n%s\n", thin, thin)
	daily := r.DailySorted(true)
	if len(daily) == 0 {
		fmt.Fprintf(&b, "Нет данных по дням\n")
	}
	for _, d := range daily {
		fmt.Fprintf(&b, "%s: started=%d, success=%d, failed=%d\n", d.Date, d.Stats.Started, d.Stats.Success, d.Stats.Failed)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s\nТОП-%d КАНАЛОВ ПО ЭКСПОРТАМ\n%s\n", thin, maxChannels, thin)
	channels := r.TopChannels(maxChannels)
	if len(channels) == 0 {
		fmt.Fprintf(&b, "Нет данных о каналах\n")
	}
	for _, c := range channels {
		fmt.Fprintf(&b, "%-40s — %d экспортов\n", c.Channel, c.Count)
	}
	b.WriteString("\n")
	b.WriteString(line)
	b.WriteString("\n")
	return b.String()
}
