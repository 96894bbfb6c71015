package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

type LinkChecker struct {
	mock.Mock
}

func (m *LinkChecker) CheckOne(ctx context.Context, link *models.Link) *models.Link {
	args := m.Called(ctx, link)

	result, _ := args.Get(0).(*models.Link)

	return result
}

type HealthProber struct {
	mock.Mock
}

func (m *HealthProber) Health(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

type ProgressObserver struct {
	mock.Mock
}

func (m *ProgressObserver) OnProgress(checked, total int) {
	m.Called(checked, total)
}

func (m *ProgressObserver) OnBatchComplete(batchNum int, counts models.Counts) {
	m.Called(batchNum, counts)
}
