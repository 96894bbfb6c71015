package store

import (
	"strings"

	domainerrors "github.com/central-university-dev/go-linkchecker/internal/domain/errors"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

// TypeSelection множество выбранных типов ссылок. Нулевое значение означает "все типы".
type TypeSelection struct {
	types []models.MediaType
}

func AllTypesSelection() TypeSelection {
	return TypeSelection{}
}

func NewTypeSelection(types ...models.MediaType) TypeSelection {
	var s TypeSelection
	for _, t := range types {
		if t == models.AllTypes {
			return AllTypesSelection()
		}

		if !s.has(t) {
			s.types = append(s.types, t)
		}
	}

	return s
}

// ParseTypeSelection разбирает список типов через запятую, например "image,youtube".
func ParseTypeSelection(raw string) (TypeSelection, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AllTypesSelection(), nil
	}

	var types []models.MediaType

	for _, part := range strings.Split(raw, ",") {
		t, ok := models.ParseMediaType(strings.TrimSpace(strings.ToLower(part)))
		if !ok {
			return TypeSelection{}, &domainerrors.ErrUnknownMediaType{Type: part}
		}

		types = append(types, t)
	}

	return NewTypeSelection(types...), nil
}

func (s TypeSelection) IsAll() bool {
	return len(s.types) == 0
}

func (s TypeSelection) Includes(t models.MediaType) bool {
	return s.IsAll() || s.has(t)
}

// Types возвращает выбранные типы; для "всех" это [all].
func (s TypeSelection) Types() []models.MediaType {
	if s.IsAll() {
		return []models.MediaType{models.AllTypes}
	}

	out := make([]models.MediaType, len(s.types))
	copy(out, s.types)

	return out
}

// Toggle: выбор all сбрасывает набор; выбор типа убирает all;
// снятие последнего типа возвращает all.
func (s TypeSelection) Toggle(t models.MediaType) TypeSelection {
	if t == models.AllTypes {
		return AllTypesSelection()
	}

	if !s.has(t) {
		next := make([]models.MediaType, 0, len(s.types)+1)
		next = append(next, s.types...)

		return TypeSelection{types: append(next, t)}
	}

	next := make([]models.MediaType, 0, len(s.types))
	for _, existing := range s.types {
		if existing != t {
			next = append(next, existing)
		}
	}

	return TypeSelection{types: next}
}

func (s TypeSelection) String() string {
	types := s.Types()
	parts := make([]string, len(types))

	for i, t := range types {
		parts[i] = string(t)
	}

	return strings.Join(parts, ",")
}

func (s TypeSelection) has(t models.MediaType) bool {
	for _, existing := range s.types {
		if existing == t {
			return true
		}
	}

	return false
}
