package schedule

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	cachemocks "github.com/BearBump/FlightBoard/internal/cache/mocks"
	"github.com/BearBump/FlightBoard/internal/models"
	schedulemocks "github.com/BearBump/FlightBoard/internal/services/schedule/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ServiceSuite struct {
	suite.Suite

	fetcher *schedulemocks.MockFetcher
	cache   *cachemocks.MockBytesCache
	svc     *Service

	now time.Time
}

func (s *ServiceSuite) SetupTest() {
	s.fetcher = &schedulemocks.MockFetcher{}
	s.cache = &cachemocks.MockBytesCache{}
	s.now = time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	s.svc = New(s.fetcher, s.cache, 3*time.Hour, 4)
	s.svc.now = func() time.Time { return s.now }
}

func flightFixture(id, origin, destination, date string) models.Flight {
	return models.Flight{
		FlightID:        id,
		OriginIATA:      origin,
		DestinationIATA: destination,
		DepartureDate:   date,
		ArrivalDate:     date,
	}
}

func (s *ServiceSuite) aggregateBytes(flights ...models.Flight) []byte {
	b, err := json.Marshal(flights)
	s.Require().NoError(err)
	return b
}

func (s *ServiceSuite) TestQuery_ValidationErrors() {
	ctx := context.Background()

	_, err := s.svc.Query(ctx, "", "BCN", "2024-03-10")
	s.Require().Error(err)
	var ve *ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Equal("origin", ve.Param)

	_, err = s.svc.Query(ctx, "PMI", "", "2024-03-10")
	s.Require().ErrorAs(err, &ve)
	s.Equal("destination", ve.Param)

	_, err = s.svc.Query(ctx, "PMI", "BCN", "")
	s.Require().ErrorAs(err, &ve)
	s.Equal("date", ve.Param)

	_, err = s.svc.Query(ctx, "PMI", "BCN", "10.03.2024")
	s.Require().ErrorAs(err, &ve)
	s.Equal("date", ve.Param)

	// No scrape or cache I/O on rejected requests.
	s.cache.AssertNotCalled(s.T(), "Get", mock.Anything, mock.Anything)
	s.fetcher.AssertNotCalled(s.T(), "FetchDate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestQuery_DateOutOfRange() {
	ctx := context.Background()

	for _, date := range []string{"2024-03-09", "2024-03-14", "2023-12-31", "2025-01-01"} {
		_, err := s.svc.Query(ctx, "PMI", "BCN", date)
		var re *DateRangeError
		s.Require().ErrorAs(err, &re, "date %s", date)
		s.Equal("2024-03-10", re.From)
		s.Equal("2024-03-13", re.To)
	}

	s.cache.AssertNotCalled(s.T(), "Get", mock.Anything, mock.Anything)
	s.fetcher.AssertNotCalled(s.T(), "FetchDate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestQuery_CacheHitFilters() {
	agg := s.aggregateBytes(
		flightFixture("FR1_2024-03-10", "PMI", "BCN", "2024-03-10"),
		flightFixture("U22_2024-03-10", "PMI", "LGW", "2024-03-10"),
		flightFixture("FR3_2024-03-11", "PMI", "BCN", "2024-03-11"),
		flightFixture("VY4_2024-03-10", "BCN", "PMI", "2024-03-10"),
	)
	s.cache.On("Get", mock.Anything, AllFlightsKey).Return(agg, true, nil).Once()

	out, err := s.svc.Query(context.Background(), "PMI", "BCN", "2024-03-10")
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal("FR1_2024-03-10", out[0].FlightID)
	s.fetcher.AssertNotCalled(s.T(), "FetchDate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestQuery_FilterIsOrderIndependent() {
	a := flightFixture("FR1_2024-03-10", "PMI", "BCN", "2024-03-10")
	b := flightFixture("U22_2024-03-10", "PMI", "LGW", "2024-03-10")
	c := flightFixture("FR3_2024-03-10", "PMI", "BCN", "2024-03-10")

	s.cache.On("Get", mock.Anything, AllFlightsKey).Return(s.aggregateBytes(a, b, c), true, nil).Once()
	first, err := s.svc.Query(context.Background(), "PMI", "BCN", "2024-03-10")
	s.Require().NoError(err)

	s.cache.On("Get", mock.Anything, AllFlightsKey).Return(s.aggregateBytes(c, b, a), true, nil).Once()
	second, err := s.svc.Query(context.Background(), "PMI", "BCN", "2024-03-10")
	s.Require().NoError(err)

	s.Require().Len(first, 2)
	s.ElementsMatch(first, second)
}

func (s *ServiceSuite) TestQuery_MissTriggersSingleRefreshThenHit() {
	match := flightFixture("FR1_2024-03-10", "PMI", "BCN", "2024-03-10")
	agg := s.aggregateBytes(match)

	s.cache.On("Get", mock.Anything, AllFlightsKey).Return(nil, false, nil).Once()
	s.fetcher.On("FetchDate", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Flight{match}, nil)
	s.cache.On("Set", mock.Anything, AllFlightsKey, mock.Anything, 3*time.Hour).Return(nil).Once()
	s.cache.On("Get", mock.Anything, AllFlightsKey).Return(agg, true, nil).Once()

	out, err := s.svc.Query(context.Background(), "PMI", "BCN", "2024-03-10")
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal("FR1_2024-03-10", out[0].FlightID)
	s.cache.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestQuery_MissThenEmptyRefreshFailsBounded() {
	// Refresh yields nothing: no cache write happens, the second read still
	// misses, and the query must stop rather than refresh again.
	s.cache.On("Get", mock.Anything, AllFlightsKey).Return(nil, false, nil).Twice()
	s.fetcher.On("FetchDate", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Flight{}, nil).Times(8)

	_, err := s.svc.Query(context.Background(), "PMI", "BCN", "2024-03-10")
	s.Require().ErrorIs(err, ErrUnavailable)

	s.cache.AssertExpectations(s.T())
	s.fetcher.AssertExpectations(s.T())
	s.cache.AssertNotCalled(s.T(), "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestQuery_MissThenZeroMatchesReturnsEmptyList() {
	other := flightFixture("VY9_2024-03-10", "BCN", "MAD", "2024-03-10")

	s.cache.On("Get", mock.Anything, AllFlightsKey).Return(nil, false, nil).Once()
	s.fetcher.On("FetchDate", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Flight{other}, nil)
	s.cache.On("Set", mock.Anything, AllFlightsKey, mock.Anything, 3*time.Hour).Return(nil).Once()
	s.cache.On("Get", mock.Anything, AllFlightsKey).Return(s.aggregateBytes(other), true, nil).Once()

	out, err := s.svc.Query(context.Background(), "PMI", "BCN", "2024-03-10")
	s.Require().NoError(err)
	s.Empty(out)
}

func (s *ServiceSuite) TestQuery_CacheErrorPropagates() {
	s.cache.On("Get", mock.Anything, AllFlightsKey).
		Return(nil, false, context.DeadlineExceeded).Once()

	_, err := s.svc.Query(context.Background(), "PMI", "BCN", "2024-03-10")
	s.Require().ErrorIs(err, context.DeadlineExceeded)
	s.fetcher.AssertNotCalled(s.T(), "FetchDate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestRefresh_FansOutAllTypeDatePairs() {
	s.fetcher.On("FetchDate", mock.Anything, models.FlightTypeArrivals, mock.Anything).
		Return([]models.Flight{flightFixture("A", "BCN", "PMI", "2024-03-10")}, nil).Times(4)
	s.fetcher.On("FetchDate", mock.Anything, models.FlightTypeDepartures, mock.Anything).
		Return([]models.Flight{flightFixture("D", "PMI", "BCN", "2024-03-10")}, nil).Times(4)
	s.cache.On("Set", mock.Anything, AllFlightsKey, mock.Anything, 3*time.Hour).Return(nil).Once()

	count, err := s.svc.Refresh(context.Background())
	s.Require().NoError(err)
	s.Equal(8, count)
	s.fetcher.AssertExpectations(s.T())
	s.cache.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestRefresh_EmptyResultSkipsWrite() {
	s.fetcher.On("FetchDate", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Flight{}, nil).Times(8)

	count, err := s.svc.Refresh(context.Background())
	s.Require().NoError(err)
	s.Zero(count)
	s.cache.AssertNotCalled(s.T(), "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestRefresh_DedupeDropsRepeatedFlightIDs() {
	dup := flightFixture("FR1_2024-03-10", "PMI", "BCN", "2024-03-10")
	s.fetcher.On("FetchDate", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Flight{dup}, nil).Times(8)

	var written []models.Flight
	s.cache.On("Set", mock.Anything, AllFlightsKey, mock.Anything, 3*time.Hour).
		Run(func(args mock.Arguments) {
			s.Require().NoError(json.Unmarshal(args.Get(2).([]byte), &written))
		}).
		Return(nil).Once()

	count, err := s.svc.WithDedupe(true).Refresh(context.Background())
	s.Require().NoError(err)
	s.Equal(1, count)
	s.Require().Len(written, 1)
	s.Equal("FR1_2024-03-10", written[0].FlightID)
}

func (s *ServiceSuite) TestRefresh_DuplicatesPreservedByDefault() {
	dup := flightFixture("FR1_2024-03-10", "PMI", "BCN", "2024-03-10")
	s.fetcher.On("FetchDate", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Flight{dup}, nil).Times(8)
	s.cache.On("Set", mock.Anything, AllFlightsKey, mock.Anything, 3*time.Hour).Return(nil).Once()

	count, err := s.svc.Refresh(context.Background())
	s.Require().NoError(err)
	s.Equal(8, count)
}

func (s *ServiceSuite) TestRefresh_CacheWriteErrorPropagates() {
	s.fetcher.On("FetchDate", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Flight{flightFixture("A", "BCN", "PMI", "2024-03-10")}, nil).Times(8)
	s.cache.On("Set", mock.Anything, AllFlightsKey, mock.Anything, 3*time.Hour).
		Return(context.DeadlineExceeded).Once()

	_, err := s.svc.Refresh(context.Background())
	s.Require().ErrorIs(err, context.DeadlineExceeded)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
