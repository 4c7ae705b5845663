package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/blockful/anticapture-sub000/internal/domain"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

// CursorStore defines the interface for storing and retrieving block cursors
//
//go:generate mockgen -source=cursor_store.go -destination=../mocks/cursor_store.go -package=mocks -mock_names=CursorStore=MockCursorStore
type CursorStore interface {
	// GetBlockCursor retrieves the last processed block number of a DAO, 0 when none
	GetBlockCursor(ctx context.Context, dao domain.DaoID) (uint64, error)
	// SetBlockCursor stores the last processed block number of a DAO
	SetBlockCursor(ctx context.Context, dao domain.DaoID, blockNumber uint64) error
}

type cursorStore struct {
	db *gorm.DB
}

// NewCursorStore creates a new cursor store
func NewCursorStore(db *gorm.DB) CursorStore {
	return &cursorStore{db: db}
}

func cursorKey(dao domain.DaoID) string {
	return fmt.Sprintf("block_cursor:%s", dao)
}

// GetBlockCursor retrieves the last processed block number of a DAO
func (s *cursorStore) GetBlockCursor(ctx context.Context, dao domain.DaoID) (uint64, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", cursorKey(dao)).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}

	blockNumber, err := strconv.ParseUint(kv.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse block cursor: %w", err)
	}

	return blockNumber, nil
}

// SetBlockCursor stores the last processed block number of a DAO
func (s *cursorStore) SetBlockCursor(ctx context.Context, dao domain.DaoID, blockNumber uint64) error {
	kv := schema.KeyValueStore{
		Key:   cursorKey(dao),
		Value: strconv.FormatUint(blockNumber, 10),
	}

	if err := s.db.WithContext(ctx).Save(&kv).Error; err != nil {
		return fmt.Errorf("failed to set block cursor: %w", err)
	}

	return nil
}
