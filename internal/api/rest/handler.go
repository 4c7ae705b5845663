package rest

import (
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/proposals"
	"github.com/blockful/anticapture-sub000/internal/timeseries"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// GetDelegationPercentage returns the daily share of the supply that is delegated
	// GET /api/v1/daos/:dao/delegation-percentage?after=<ts>&before=<ts>&startDate=<ts>&endDate=<ts>&orderDirection=<asc|desc>&limit=<limit>
	GetDelegationPercentage(c *gin.Context)

	// ListProposals lists proposals newest first
	// GET /api/v1/daos/:dao/proposals?limit=<limit>&offset=<offset>
	ListProposals(c *gin.Context)

	// GetProposal retrieves a proposal by its on-chain id
	// GET /api/v1/daos/:dao/proposals/:id
	GetProposal(c *gin.Context)

	// GetGovernanceParameters reads the governor settings of a DAO
	// GET /api/v1/daos/:dao/governance
	GetGovernanceParameters(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

type handler struct {
	daos       map[domain.DaoID]bool
	timeseries timeseries.Service
	proposals  proposals.Service
}

// NewHandler creates a REST handler serving the given DAOs
func NewHandler(daos []domain.DaoID, ts timeseries.Service, ps proposals.Service) Handler {
	known := make(map[domain.DaoID]bool, len(daos))
	for _, dao := range daos {
		known[dao] = true
	}
	return &handler{
		daos:       known,
		timeseries: ts,
		proposals:  ps,
	}
}

// dao resolves the :dao path parameter, responding 404 for DAOs not served
func (h *handler) dao(c *gin.Context) (domain.DaoID, bool) {
	dao := domain.ParseDaoID(c.Param("dao"))
	if !h.daos[dao] {
		respondNotFound(c, "DAO not found", c.Param("dao"))
		return "", false
	}
	return dao, true
}

func (h *handler) GetDelegationPercentage(c *gin.Context) {
	dao, ok := h.dao(c)
	if !ok {
		return
	}

	queryParams, err := ParseDelegationPercentageQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if err := queryParams.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	page, err := h.timeseries.GetDelegationPercentage(c.Request.Context(), dao, queryParams.Filters())
	if err != nil {
		respondServiceError(c, err, "Failed to get delegation percentage", logger.DAO(dao))
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *handler) ListProposals(c *gin.Context) {
	dao, ok := h.dao(c)
	if !ok {
		return
	}

	queryParams, err := ParseProposalsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if err := queryParams.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	page, err := h.proposals.ListProposals(c.Request.Context(), dao, queryParams.Limit, queryParams.Offset)
	if err != nil {
		respondServiceError(c, err, "Failed to list proposals", logger.DAO(dao))
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *handler) GetProposal(c *gin.Context) {
	dao, ok := h.dao(c)
	if !ok {
		return
	}

	// proposal ids are uint256 in base 10
	id := c.Param("id")
	if _, ok := new(big.Int).SetString(id, 10); !ok {
		respondBadRequest(c, "Invalid proposal id", id)
		return
	}

	proposal, err := h.proposals.GetProposal(c.Request.Context(), dao, id)
	if err != nil {
		respondServiceError(c, err, "Failed to get proposal", logger.DAO(dao), zap.String("proposalID", id))
		return
	}

	c.JSON(http.StatusOK, proposal)
}

func (h *handler) GetGovernanceParameters(c *gin.Context) {
	dao, ok := h.dao(c)
	if !ok {
		return
	}

	params, err := h.proposals.GetGovernanceParameters(c.Request.Context(), dao)
	if err != nil {
		respondServiceError(c, err, "Failed to get governance parameters", logger.DAO(dao))
		return
	}

	c.JSON(http.StatusOK, params)
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "anticapture-api",
	})
}
