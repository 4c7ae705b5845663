package rest

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blockful/anticapture-sub000/internal/store"
	"github.com/blockful/anticapture-sub000/internal/timeseries"
)

// DelegationPercentageQueryParams holds query parameters for GET /daos/:dao/delegation-percentage.
// Dates and cursors are Unix seconds.
type DelegationPercentageQueryParams struct {
	After          *string `form:"after"`
	Before         *string `form:"before"`
	StartDate      *string `form:"startDate"`
	EndDate        *string `form:"endDate"`
	OrderDirection string  `form:"orderDirection,default=asc"`
	Limit          int     `form:"limit,default=365"`
}

// ProposalsQueryParams holds query parameters for GET /daos/:dao/proposals
type ProposalsQueryParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ParseDelegationPercentageQuery parses query parameters for GET /daos/:dao/delegation-percentage
func ParseDelegationPercentageQuery(c *gin.Context) (*DelegationPercentageQueryParams, error) {
	var params DelegationPercentageQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}
	params.OrderDirection = strings.ToLower(params.OrderDirection)
	return &params, nil
}

// Validate checks the parameters
func (p *DelegationPercentageQueryParams) Validate() error {
	if p.After != nil && p.Before != nil {
		return fmt.Errorf("after and before cannot be used together")
	}
	if p.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	return nil
}

// Filters converts the parameters to time series filters
func (p *DelegationPercentageQueryParams) Filters() timeseries.Filters {
	return timeseries.Filters{
		After:          p.After,
		Before:         p.Before,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		OrderDirection: store.Order(p.OrderDirection),
		Limit:          p.Limit,
	}
}

// ParseProposalsQuery parses query parameters for GET /daos/:dao/proposals
func ParseProposalsQuery(c *gin.Context) (*ProposalsQueryParams, error) {
	var params ProposalsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}
	return &params, nil
}

// Validate checks the parameters
func (p *ProposalsQueryParams) Validate() error {
	if p.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	if p.Offset < 0 {
		return fmt.Errorf("offset must not be negative")
	}
	return nil
}
