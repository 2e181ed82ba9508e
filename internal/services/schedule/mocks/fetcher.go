package mocks

import (
	"context"
	"time"

	"github.com/BearBump/FlightBoard/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchDate(ctx context.Context, typ models.FlightType, date time.Time) ([]models.Flight, error) {
	args := m.Called(ctx, typ, date)
	var flights []models.Flight
	if args.Get(0) != nil {
		flights = args.Get(0).([]models.Flight)
	}
	return flights, args.Error(1)
}
