package proposals

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/blockful/anticapture-sub000/internal/block"
	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/governor"
	"github.com/blockful/anticapture-sub000/internal/logger"
	"github.com/blockful/anticapture-sub000/internal/store"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Reader reads the proposals persisted by the aggregation engine
//
//go:generate mockgen -source=service.go -destination=../mocks/proposals.go -package=mocks -mock_names=Reader=MockProposalReader,Service=MockProposalService
type Reader interface {
	GetProposal(ctx context.Context, dao domain.DaoID, proposalID string) (*schema.ProposalOnchain, error)
	GetProposals(ctx context.Context, filter store.ProposalQueryFilter) ([]schema.ProposalOnchain, uint64, error)
}

// Service serves proposals with their status recomputed at the current chain height
type Service interface {
	// GetProposal returns a proposal, domain.ErrProposalNotFound when it does not exist
	GetProposal(ctx context.Context, dao domain.DaoID, proposalID string) (*Proposal, error)

	// ListProposals returns proposals newest first
	ListProposals(ctx context.Context, dao domain.DaoID, limit, offset int) (*Page, error)

	// GetGovernanceParameters reads the current governance settings of a DAO
	GetGovernanceParameters(ctx context.Context, dao domain.DaoID) (*GovernanceParameters, error)
}

// Proposal is a proposal as served to readers
type Proposal struct {
	ID           string                `json:"id"`
	DaoID        domain.DaoID          `json:"daoId"`
	TxHash       string                `json:"txHash"`
	Proposer     string                `json:"proposer"`
	Description  string                `json:"description"`
	Targets      datatypes.JSON        `json:"targets"`
	Values       datatypes.JSON        `json:"values"`
	Signatures   datatypes.JSON        `json:"signatures"`
	Calldatas    datatypes.JSON        `json:"calldatas"`
	StartBlock   uint64                `json:"startBlock"`
	EndBlock     uint64                `json:"endBlock"`
	EndTimestamp *time.Time            `json:"endTimestamp,omitempty"`
	Status       domain.ProposalStatus `json:"status"`
	ForVotes     string                `json:"forVotes"`
	AgainstVotes string                `json:"againstVotes"`
	AbstainVotes string                `json:"abstainVotes"`
	Timestamp    time.Time             `json:"timestamp"`
}

// Page is a page of proposals
type Page struct {
	Items      []Proposal `json:"items"`
	TotalCount uint64     `json:"totalCount"`
}

// GovernanceParameters are the settings read from the governor contract.
// Amounts are base-10 strings; Quorum is nil when the governor cannot report it.
type GovernanceParameters struct {
	DaoID             domain.DaoID `json:"daoId"`
	VotingDelay       string       `json:"votingDelay"`
	VotingPeriod      string       `json:"votingPeriod"`
	ProposalThreshold string       `json:"proposalThreshold"`
	TimelockDelay     string       `json:"timelockDelay"`
	Quorum            *string      `json:"quorum"`
	CurrentBlock      uint64       `json:"currentBlock"`
}

type service struct {
	reader    Reader
	governors governor.Resolver
	blocks    block.Registry
	policy    governor.Policy
}

// NewService creates a proposal service that recomputes statuses with policy
func NewService(reader Reader, governors governor.Resolver, blocks block.Registry, policy governor.Policy) Service {
	return &service{
		reader:    reader,
		governors: governors,
		blocks:    blocks,
		policy:    policy,
	}
}

// statusReader recomputes statuses of one DAO, reading the chain head at most once
type statusReader struct {
	gov      governor.Governor
	provider block.BlockProvider
	policy   governor.Policy
	head     *uint64
}

func (s *service) statusReader(dao domain.DaoID) (*statusReader, error) {
	gov, err := s.governors.Governor(dao)
	if err != nil {
		return nil, err
	}
	provider, err := s.blocks.Provider(dao)
	if err != nil {
		return nil, err
	}
	return &statusReader{gov: gov, provider: provider, policy: s.policy}, nil
}

func (r *statusReader) status(ctx context.Context, p *schema.ProposalOnchain) (domain.ProposalStatus, error) {
	if p.Status.IsFinal() {
		return p.Status, nil
	}

	if r.head == nil {
		head, err := r.provider.GetLatestBlock(ctx)
		if err != nil {
			return "", err
		}
		r.head = &head
	}

	return governor.ProposalStatus(ctx, r.gov, governor.Proposal{
		ID:         p.ID,
		Status:     p.Status,
		StartBlock: p.StartBlock,
		EndBlock:   p.EndBlock,
		Votes:      p.Tally(),
	}, *r.head, r.policy)
}

func (s *service) GetProposal(ctx context.Context, dao domain.DaoID, proposalID string) (*Proposal, error) {
	reader, err := s.statusReader(dao)
	if err != nil {
		return nil, err
	}

	p, err := s.reader.GetProposal(ctx, dao, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProposalNotFound, proposalID)
	}

	status, err := reader.status(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to compute status of proposal %s: %w", proposalID, err)
	}

	proposal := toProposal(p, status)
	endTime, err := reader.provider.GetBlockTime(ctx, p.EndBlock)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to get proposal end time",
			logger.DAO(dao),
			zap.String("proposalID", proposalID),
			zap.Error(err))
	} else {
		proposal.EndTimestamp = endTime
	}

	return proposal, nil
}

func (s *service) ListProposals(ctx context.Context, dao domain.DaoID, limit, offset int) (*Page, error) {
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit < 0:
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidFilter)
	case limit > MaxLimit:
		limit = MaxLimit
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidFilter)
	}

	reader, err := s.statusReader(dao)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.reader.GetProposals(ctx, store.ProposalQueryFilter{
		DaoID:  dao,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get proposals: %w", err)
	}

	page := &Page{Items: make([]Proposal, 0, len(rows)), TotalCount: total}
	for i := range rows {
		status, err := reader.status(ctx, &rows[i])
		if err != nil {
			return nil, fmt.Errorf("failed to compute status of proposal %s: %w", rows[i].ID, err)
		}
		page.Items = append(page.Items, *toProposal(&rows[i], status))
	}
	return page, nil
}

func (s *service) GetGovernanceParameters(ctx context.Context, dao domain.DaoID) (*GovernanceParameters, error) {
	gov, err := s.governors.Governor(dao)
	if err != nil {
		return nil, err
	}
	provider, err := s.blocks.Provider(dao)
	if err != nil {
		return nil, err
	}

	params := &GovernanceParameters{DaoID: dao}
	reads := []struct {
		name   string
		read   func(context.Context) (*big.Int, error)
		target *string
	}{
		{"voting delay", gov.GetVotingDelay, &params.VotingDelay},
		{"voting period", gov.GetVotingPeriod, &params.VotingPeriod},
		{"proposal threshold", gov.GetProposalThreshold, &params.ProposalThreshold},
		{"timelock delay", gov.GetTimelockDelay, &params.TimelockDelay},
	}
	for _, r := range reads {
		value, err := r.read(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", r.name, err)
		}
		*r.target = value.String()
	}

	head, err := provider.GetLatestBlock(ctx)
	if err != nil {
		return nil, err
	}
	params.CurrentBlock = head

	params.Quorum = s.currentQuorum(ctx, dao, gov)
	return params, nil
}

// currentQuorum reads the quorum of the latest proposal.
// Governors with a per-proposal quorum have none before the first proposal.
func (s *service) currentQuorum(ctx context.Context, dao domain.DaoID, gov governor.Governor) *string {
	var proposalID string
	latest, _, err := s.reader.GetProposals(ctx, store.ProposalQueryFilter{DaoID: dao, Limit: 1})
	if err != nil {
		logger.WarnCtx(ctx, "Failed to get latest proposal", logger.DAO(dao), zap.Error(err))
	} else if len(latest) > 0 {
		proposalID = latest[0].ID
	}

	quorum, err := gov.GetQuorum(ctx, proposalID)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to get quorum", logger.DAO(dao), zap.String("proposalID", proposalID), zap.Error(err))
		return nil
	}
	value := quorum.String()
	return &value
}

func toProposal(p *schema.ProposalOnchain, status domain.ProposalStatus) *Proposal {
	return &Proposal{
		ID:           p.ID,
		DaoID:        p.DaoID,
		TxHash:       p.TxHash,
		Proposer:     p.Proposer,
		Description:  p.Description,
		Targets:      p.Targets,
		Values:       p.Values,
		Signatures:   p.Signatures,
		Calldatas:    p.Calldatas,
		StartBlock:   p.StartBlock,
		EndBlock:     p.EndBlock,
		Status:       status,
		ForVotes:     p.ForVotes.String(),
		AgainstVotes: p.AgainstVotes.String(),
		AbstainVotes: p.AbstainVotes.String(),
		Timestamp:    p.Timestamp,
	}
}
