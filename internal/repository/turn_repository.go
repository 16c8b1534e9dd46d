package repository

import (
	"soul-lifter-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TurnRepository 定义了归档轮次的持久化操作接口。
type TurnRepository interface {
	Create(turn *model.ArchivedTurn) error
	// FindBySessionID 按创建时间升序分页返回某会话的归档轮次。
	FindBySessionID(sessionID string, offset, limit int) ([]model.ArchivedTurn, error)
	CountBySessionID(sessionID string) (int64, error)
}

type turnRepository struct {
	db *gorm.DB
}

// NewTurnRepository 创建一个新的 TurnRepository 实例。
func NewTurnRepository(db *gorm.DB) TurnRepository {
	return &turnRepository{db: db}
}

// Create 插入一条归档轮次；TurnID 冲突时忽略（消费者重试场景下保证幂等）。
func (r *turnRepository) Create(turn *model.ArchivedTurn) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(turn).Error
}

func (r *turnRepository) FindBySessionID(sessionID string, offset, limit int) ([]model.ArchivedTurn, error) {
	var turns []model.ArchivedTurn
	err := r.db.Where("session_id = ?", sessionID).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&turns).Error
	return turns, err
}

func (r *turnRepository) CountBySessionID(sessionID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.ArchivedTurn{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}
