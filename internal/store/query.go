package store

import (
	"strings"

	domainerrors "github.com/central-university-dev/go-linkchecker/internal/domain/errors"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

const DefaultPageSize = 50

// DisplayFilter фильтр отображения: все записи, один статус или один тип.
type DisplayFilter struct {
	status    models.LinkStatus
	mediaType models.MediaType
}

func AllFilter() DisplayFilter {
	return DisplayFilter{}
}

func StatusFilter(status models.LinkStatus) DisplayFilter {
	return DisplayFilter{status: status}
}

func TypeFilter(t models.MediaType) DisplayFilter {
	if t == models.AllTypes {
		return AllFilter()
	}

	return DisplayFilter{mediaType: t}
}

func ParseDisplayFilter(raw string) (DisplayFilter, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" || raw == string(models.AllTypes) {
		return AllFilter(), nil
	}

	if status, ok := models.ParseLinkStatus(raw); ok {
		return StatusFilter(status), nil
	}

	if t, ok := models.ParseMediaType(raw); ok {
		return TypeFilter(t), nil
	}

	return DisplayFilter{}, &domainerrors.ErrInvalidValue{FieldName: "filter", Value: raw}
}

func (f DisplayFilter) Matches(link *models.Link) bool {
	switch {
	case f.status != "":
		return link.Status == f.status
	case f.mediaType != "":
		return link.Type == f.mediaType
	default:
		return true
	}
}

func (f DisplayFilter) String() string {
	switch {
	case f.status != "":
		return string(f.status)
	case f.mediaType != "":
		return string(f.mediaType)
	default:
		return string(models.AllTypes)
	}
}

// Visible оставляет записи, прошедшие и выбор типов, и фильтр отображения. Порядок сохраняется.
func Visible(links []*models.Link, selection TypeSelection, filter DisplayFilter) []*models.Link {
	out := make([]*models.Link, 0, len(links))

	for _, link := range links {
		if selection.Includes(link.Type) && filter.Matches(link) {
			out = append(out, link)
		}
	}

	return out
}

type Page struct {
	Items      []*models.Link
	Number     int
	TotalPages int
	TotalItems int
}

func (p Page) HasPrev() bool {
	return p.Number > 1
}

func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// TotalPages число страниц; для пустого списка 0.
func TotalPages(totalItems, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return (totalItems + pageSize - 1) / pageSize
}

// Paginate нарезает страницу. Номер страницы приводится к [1, TotalPages].
func Paginate(links []*models.Link, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := TotalPages(len(links), pageSize)

	if page > total {
		page = total
	}

	if page < 1 {
		page = 1
	}

	p := Page{
		Number:     page,
		TotalPages: total,
		TotalItems: len(links),
		Items:      []*models.Link{},
	}

	if total == 0 {
		return p
	}

	start := (page - 1) * pageSize

	end := start + pageSize
	if end > len(links) {
		end = len(links)
	}

	p.Items = links[start:end]

	return p
}
