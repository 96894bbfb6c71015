package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
	"github.com/central-university-dev/go-linkchecker/internal/session"
	"github.com/central-university-dev/go-linkchecker/internal/store"
)

var levelMarks = map[models.AdvisoryLevel]string{
	models.LevelInfo:    "[i]",
	models.LevelSuccess: "[+]",
	models.LevelWarning: "[!]",
	models.LevelError:   "[x]",
}

// reporter печатает события сессии в текстовом виде.
type reporter struct {
	out io.Writer
}

func (r *reporter) OnEvent(event session.Event) {
	switch event.Kind {
	case session.EventAdvisory:
		fmt.Fprintf(r.out, "%s %s\n", levelMarks[event.Advisory.Level], event.Advisory.Text)
	case session.EventProgress:
		fmt.Fprintf(r.out, "    прогресс: %d/%d (%.0f%%)\n",
			event.Checked, event.Total, models.Progress(event.Checked, event.Total)*100)
	case session.EventBatch:
		fmt.Fprintf(r.out, "    пачка %d: работают %d, не работают %d, ожидают %d\n",
			event.Batch, event.Counts.Success, event.Counts.Error, event.Counts.Pending)
	}
}

func (r *reporter) breakdown(counts map[models.MediaType]int) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Тип", "Ссылок"})

	for _, mediaType := range models.MediaTypes {
		if counts[mediaType] > 0 {
			t.AppendRow(table.Row{mediaType, counts[mediaType]})
		}
	}

	t.Render()
}

func (r *reporter) summary(counts models.Counts) {
	fmt.Fprintf(r.out, "\nВсего: %d  работают: %d  не работают: %d  ожидают: %d\n",
		counts.Total, counts.Success, counts.Error, counts.Pending)
}

func (r *reporter) page(p store.Page) {
	if len(p.Items) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"URL", "Тип", "Код", "Метод", "Время", "Ошибка", "Источник"})

	for _, link := range p.Items {
		code := "-"
		if link.StatusCode != nil {
			code = fmt.Sprint(*link.StatusCode)
		}

		elapsed := "-"
		if link.ResponseTime != nil {
			elapsed = fmt.Sprintf("%dms", *link.ResponseTime)
		}

		t.AppendRow(table.Row{link.URL, link.Type, code, link.Method, elapsed, link.Error, link.Source})
	}

	t.SetCaption("Страница %d из %d", p.Number, p.TotalPages)
	t.Render()
}

func (r *reporter) broken(urls []string) {
	if len(urls) == 0 {
		fmt.Fprintln(r.out, "Неработающих ссылок нет")
		return
	}

	fmt.Fprintln(r.out, "Неработающие ссылки:")

	for _, u := range urls {
		fmt.Fprintln(r.out, u)
	}
}
