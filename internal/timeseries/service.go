package timeseries

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/blockful/anticapture-sub000/internal/adapter"
	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/store"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

const (
	DefaultLimit = 365
	MaxLimit     = 1000
)

var hundred = decimal.NewFromInt(100)

// MetricsReader reads the day buckets produced by the aggregation engine
//
//go:generate mockgen -source=service.go -destination=../mocks/timeseries.go -package=mocks -mock_names=MetricsReader=MockMetricsReader,Service=MockTimeSeriesService
type MetricsReader interface {
	GetDaoMetricsByDateRange(ctx context.Context, filter store.MetricsQueryFilter) ([]schema.DaoMetricsDayBucket, error)
	GetLastMetricValueBefore(ctx context.Context, dao domain.DaoID, metricType domain.MetricType, before time.Time) (*schema.DaoMetricsDayBucket, error)
}

// Service serves dense daily series reconstructed from sparse day buckets
type Service interface {
	// GetDelegationPercentage returns the share of the total supply that is delegated, per day
	GetDelegationPercentage(ctx context.Context, dao domain.DaoID, filters Filters) (*Page, error)

	// GetRatioSeries returns numerator / denominator as a percentage, per day
	GetRatioSeries(ctx context.Context, dao domain.DaoID, numerator, denominator domain.MetricType, filters Filters) (*Page, error)
}

// Filters selects a page of a daily series.
// Dates and cursors are Unix seconds; After and Before are exclusive, StartDate and EndDate inclusive.
type Filters struct {
	After          *string
	Before         *string
	StartDate      *string
	EndDate        *string
	OrderDirection store.Order
	Limit          int
}

// Item is one day of a series
type Item struct {
	Date string `json:"date"`
	High string `json:"high"`
}

// PageInfo describes the position of a page in the series
type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

// Page is a page of a daily series
type Page struct {
	Items      []Item   `json:"items"`
	TotalCount int      `json:"totalCount"`
	PageInfo   PageInfo `json:"pageInfo"`
}

type service struct {
	reader MetricsReader
	clock  adapter.Clock
}

// NewService creates a new time series service
func NewService(reader MetricsReader, clock adapter.Clock) Service {
	return &service{reader: reader, clock: clock}
}

// query is Filters parsed into days
type query struct {
	after     *time.Time
	before    *time.Time
	startDate *time.Time
	endDate   *time.Time
	order     store.Order
	limit     int
}

type point struct {
	date  time.Time
	value string
}

func (s *service) GetDelegationPercentage(ctx context.Context, dao domain.DaoID, filters Filters) (*Page, error) {
	return s.GetRatioSeries(ctx, dao, domain.MetricTypeDelegatedSupply, domain.MetricTypeTotalSupply, filters)
}

func (s *service) GetRatioSeries(ctx context.Context, dao domain.DaoID, numerator, denominator domain.MetricType, filters Filters) (*Page, error) {
	q, err := parseFilters(filters)
	if err != nil {
		return nil, err
	}

	end := domain.DayStart(s.clock.Now())
	if q.endDate != nil {
		end = *q.endDate
	}

	rows, err := s.reader.GetDaoMetricsByDateRange(ctx, store.MetricsQueryFilter{
		DaoID:       dao,
		MetricTypes: []domain.MetricType{numerator, denominator},
		StartDate:   q.startDate,
		EndDate:     &end,
		Order:       store.OrderAsc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get dao metrics: %w", err)
	}

	// last close of each metric per day
	closes := make(map[domain.MetricType]map[int64]*big.Int, 2)
	closes[numerator] = make(map[int64]*big.Int)
	closes[denominator] = make(map[int64]*big.Int)
	var firstDate *time.Time
	for _, row := range rows {
		day := domain.DayStart(row.Date)
		if firstDate == nil || day.Before(*firstDate) {
			firstDate = &day
		}
		if m, ok := closes[row.MetricType]; ok {
			m[day.Unix()] = row.Close.BigInt()
		}
	}

	var start time.Time
	initial := map[domain.MetricType]*big.Int{numerator: new(big.Int), denominator: new(big.Int)}

	if q.startDate != nil {
		found := false
		for metric := range initial {
			if value, ok := s.initialValue(ctx, dao, metric, *q.startDate); ok {
				initial[metric] = value
				found = true
			}
		}
		switch {
		case found:
			start = *q.startDate
		case firstDate != nil:
			// nothing before the requested start: begin at the first real data point
			start = *firstDate
		default:
			return emptyPage(), nil
		}
	} else {
		if firstDate == nil {
			return emptyPage(), nil
		}
		start = *firstDate
	}

	series := buildSeries(start, end, initial[numerator], initial[denominator], closes[numerator], closes[denominator])
	return paginate(series, q), nil
}

// initialValue returns the close of the last bucket before date.
// Lookup failures are logged and treated as a missing value.
func (s *service) initialValue(ctx context.Context, dao domain.DaoID, metric domain.MetricType, date time.Time) (*big.Int, bool) {
	bucket, err := s.reader.GetLastMetricValueBefore(ctx, dao, metric, date)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to get initial metric value, using zero",
			logger.DAO(dao),
			zap.String("metricType", string(metric)),
			zap.Time("before", date),
			zap.Error(err))
		return nil, false
	}
	if bucket == nil {
		return nil, false
	}
	return bucket.Close.BigInt(), true
}

func buildSeries(start, end time.Time, num, den *big.Int, nums, dens map[int64]*big.Int) []point {
	var series []point
	for day := start; !day.After(end); day = day.Add(domain.ONE_DAY) {
		if v, ok := nums[day.Unix()]; ok {
			num = v
		}
		if v, ok := dens[day.Unix()]; ok {
			den = v
		}
		series = append(series, point{date: day, value: Percentage(num, den)})
	}
	return series
}

// Percentage returns num/den*100 rounded to two decimals, "0.00" when den is zero
func Percentage(num, den *big.Int) string {
	if den == nil || den.Sign() == 0 || num == nil {
		return "0.00"
	}
	d := decimal.NewFromBigInt(num, 0).Mul(hundred)
	return d.DivRound(decimal.NewFromBigInt(den, 0), 2).StringFixed(2)
}

func paginate(series []point, q query) *Page {
	var window []point
	hasPrevious := false
	for _, p := range series {
		if q.after != nil && !p.date.After(*q.after) {
			if q.order == store.OrderAsc {
				hasPrevious = true
			}
			continue
		}
		if q.before != nil && !p.date.Before(*q.before) {
			if q.order == store.OrderDesc {
				hasPrevious = true
			}
			continue
		}
		window = append(window, p)
	}

	if q.order == store.OrderDesc {
		sort.Slice(window, func(i, j int) bool { return window[i].date.After(window[j].date) })
	}

	hasNext := len(window) > q.limit
	if hasNext {
		window = window[:q.limit]
	}

	page := &Page{
		Items:      make([]Item, 0, len(window)),
		TotalCount: len(series),
		PageInfo: PageInfo{
			HasNextPage:     hasNext,
			HasPreviousPage: hasPrevious,
		},
	}
	for _, p := range window {
		page.Items = append(page.Items, Item{Date: formatDate(p.date), High: p.value})
	}
	if len(page.Items) > 0 {
		first := page.Items[0].Date
		last := page.Items[len(page.Items)-1].Date
		page.PageInfo.StartCursor = &first
		page.PageInfo.EndCursor = &last
	}
	return page
}

func emptyPage() *Page {
	return &Page{Items: []Item{}}
}

func parseFilters(filters Filters) (query, error) {
	q := query{order: filters.OrderDirection, limit: filters.Limit}

	switch q.order {
	case "":
		q.order = store.OrderAsc
	case store.OrderAsc, store.OrderDesc:
	default:
		return q, fmt.Errorf("%w: order direction %q", domain.ErrInvalidFilter, filters.OrderDirection)
	}

	switch {
	case q.limit == 0:
		q.limit = DefaultLimit
	case q.limit < 0:
		return q, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidFilter)
	case q.limit > MaxLimit:
		q.limit = MaxLimit
	}

	var err error
	if q.after, err = parseDate("after", filters.After); err != nil {
		return q, err
	}
	if q.before, err = parseDate("before", filters.Before); err != nil {
		return q, err
	}
	if q.startDate, err = parseDate("startDate", filters.StartDate); err != nil {
		return q, err
	}
	if q.endDate, err = parseDate("endDate", filters.EndDate); err != nil {
		return q, err
	}
	if q.startDate != nil && q.endDate != nil && q.startDate.After(*q.endDate) {
		return q, fmt.Errorf("%w: startDate after endDate", domain.ErrInvalidFilter)
	}
	return q, nil
}

func parseDate(name string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	seconds, err := strconv.ParseInt(*value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a unix timestamp", domain.ErrInvalidFilter, name, *value)
	}
	day := domain.DayStart(time.Unix(seconds, 0))
	return &day, nil
}

func formatDate(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
