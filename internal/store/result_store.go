package store

import (
	"sync"

	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

// ResultStore хранит записи ссылок в порядке извлечения с индексом по URL.
// Наружу отдаются только копии записей.
type ResultStore struct {
	mu    sync.RWMutex
	links []*models.Link
	index map[string]int
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		index: make(map[string]int),
	}
}

func (s *ResultStore) Replace(links []*models.Link) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.links = make([]*models.Link, 0, len(links))
	s.index = make(map[string]int, len(links))

	for _, link := range links {
		if _, exists := s.index[link.URL]; exists {
			continue
		}

		s.index[link.URL] = len(s.links)
		s.links = append(s.links, link.Clone())
	}
}

func (s *ResultStore) Clear() {
	s.Replace(nil)
}

func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.links)
}

func (s *ResultStore) All() []*models.Link {
	return s.Filter(nil)
}

// Filter возвращает копии записей, для которых keep вернул true. nil означает все записи.
func (s *ResultStore) Filter(keep func(*models.Link) bool) []*models.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Link, 0, len(s.links))

	for _, link := range s.links {
		if keep == nil || keep(link) {
			out = append(out, link.Clone())
		}
	}

	return out
}

func (s *ResultStore) Get(url string) (*models.Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[url]
	if !ok {
		return nil, false
	}

	return s.links[i].Clone(), true
}

// Apply заменяет запись с тем же URL. Записи с неизвестным URL игнорируются.
func (s *ResultStore) Apply(result *models.Link) bool {
	if result == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[result.URL]
	if !ok {
		return false
	}

	s.links[i] = result.Clone()

	return true
}

// ResetPending возвращает указанные записи в pending и отдаёт их копии в исходном порядке.
func (s *ResultStore) ResetPending(urls []string) []*models.Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		want[u] = struct{}{}
	}

	out := make([]*models.Link, 0, len(want))

	for _, link := range s.links {
		if _, ok := want[link.URL]; !ok {
			continue
		}

		link.ResetPending()
		out = append(out, link.Clone())
	}

	return out
}

// Counts считает статусы среди записей, попадающих в выбор типов.
func (s *ResultStore) Counts(selection TypeSelection) models.Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c models.Counts

	for _, link := range s.links {
		if !selection.Includes(link.Type) {
			continue
		}

		c.Total++

		switch link.Status {
		case models.StatusSuccess:
			c.Success++
		case models.StatusError:
			c.Error++
		case models.StatusPending:
			c.Pending++
		}
	}

	return c
}

// Breakdown число записей по каждому типу.
func (s *ResultStore) Breakdown() map[models.MediaType]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[models.MediaType]int)
	for _, link := range s.links {
		out[link.Type]++
	}

	return out
}
