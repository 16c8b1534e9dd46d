// Package pipeline 定义了对话轮次归档的核心流程。
package pipeline

import (
	"context"
	"fmt"

	"soul-lifter-go/internal/config"
	"soul-lifter-go/internal/model"
	"soul-lifter-go/internal/repository"
	"soul-lifter-go/pkg/es"
	"soul-lifter-go/pkg/log"
	"soul-lifter-go/pkg/tasks"
)

// Processor 封装了轮次归档的所有依赖和逻辑。
// 它消费 Kafka 中的归档任务，落库到 MySQL 并写入 Elasticsearch 索引。
type Processor struct {
	turnRepo repository.TurnRepository
	esCfg    config.ElasticsearchConfig
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(turnRepo repository.TurnRepository, esCfg config.ElasticsearchConfig) *Processor {
	return &Processor{
		turnRepo: turnRepo,
		esCfg:    esCfg,
	}
}

// Process 是轮次归档的主函数。
// 落库使用 TurnID 幂等写入，消费者重试不会产生重复记录。
func (p *Processor) Process(ctx context.Context, task tasks.TurnArchiveTask) error {
	log.Infof("[Processor] 开始归档轮次, TurnID: %s, SessionID: %s, Emotion: %s", task.TurnID, task.SessionID, task.Emotion)

	// 1. 写入 MySQL
	turn := &model.ArchivedTurn{
		TurnID:     task.TurnID,
		SessionID:  task.SessionID,
		Timestamp:  task.Timestamp,
		UserInput:  task.UserInput,
		Response:   task.Response,
		Emotion:    task.Emotion,
		Score:      task.Score,
		KeywordHit: task.KeywordHit,
	}
	if err := p.turnRepo.Create(turn); err != nil {
		log.Errorf("[Processor] 轮次落库失败, TurnID: %s, Error: %v", task.TurnID, err)
		return fmt.Errorf("轮次落库失败: %w", err)
	}

	// 2. 写入 Elasticsearch，供仪表盘聚合查询
	doc := model.EsTurnDocument{
		TurnID:     task.TurnID,
		SessionID:  task.SessionID,
		Timestamp:  task.Timestamp,
		UserInput:  task.UserInput,
		Response:   task.Response,
		Emotion:    task.Emotion,
		Score:      task.Score,
		KeywordHit: task.KeywordHit,
	}
	if err := es.IndexTurn(ctx, p.esCfg.IndexName, doc); err != nil {
		log.Errorf("[Processor] 轮次索引失败, TurnID: %s, Error: %v", task.TurnID, err)
		return fmt.Errorf("轮次索引失败: %w", err)
	}

	log.Infof("[Processor] 轮次归档完成, TurnID: %s", task.TurnID)
	return nil
}
