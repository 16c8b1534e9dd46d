// Package repository 提供了数据访问层的实现。
package repository

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"soul-lifter-go/internal/model"
	"soul-lifter-go/pkg/log"
)

// KeywordRepository 定义了关键词应答表与敏感词表的只读访问接口。
// 两张表都在进程启动时加载一次，此后不再变更。
type KeywordRepository interface {
	// Lookup 在输入中查找已加载的关键词（大小写不敏感的子串匹配）。
	// 按加载顺序扫描，第一个命中的关键词生效；无命中返回 false。
	Lookup(input string) (*model.KeywordEntry, bool)
	// ContainsOffensiveTerm 判断输入是否包含任一敏感词。
	// 注意：当前聊天链路不消费该结果，策略留待产品决策。
	ContainsOffensiveTerm(input string) bool
	// KeywordCount 返回加载成功的关键词数量。
	KeywordCount() int
	// OffensiveTermCount 返回加载成功的敏感词数量。
	OffensiveTermCount() int
}

type csvKeywordRepository struct {
	entries        []model.KeywordEntry
	offensiveTerms []string
}

// NewKeywordRepository 从 CSV 文件加载关键词应答表和敏感词表。
// 任一文件缺失或格式错误都降级为空表继续启动，只记录日志，不中断进程。
func NewKeywordRepository(keywordFile, offensiveFile string) KeywordRepository {
	repo := &csvKeywordRepository{}

	entries, err := loadKeywordEntries(keywordFile)
	if err != nil {
		log.Warnf("加载关键词应答表失败，降级为空表: %v", err)
	} else {
		repo.entries = entries
	}

	terms, err := loadOffensiveTerms(offensiveFile)
	if err != nil {
		log.Warnf("加载敏感词表失败，降级为空表: %v", err)
	} else {
		repo.offensiveTerms = terms
	}

	log.Infof("静态数据加载完成: %d 个关键词, %d 个敏感词", len(repo.entries), len(repo.offensiveTerms))
	return repo
}

// loadKeywordEntries 解析 keyword,response,helpline 三列的 CSV。
// 缺少任一字段的行被丢弃；关键词小写并去除首尾空白；重复关键词只保留首次出现。
func loadKeywordEntries(path string) ([]model.KeywordEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	col := columnIndex(header)

	var entries []model.KeywordEntry
	seen := make(map[string]struct{})
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// 单行解析失败只跳过该行
			log.Warnf("跳过无法解析的关键词行: %v", err)
			continue
		}

		keyword := strings.ToLower(strings.TrimSpace(field(record, col["keyword"])))
		response := strings.TrimSpace(field(record, col["response"]))
		helpline := strings.TrimSpace(field(record, col["helpline"]))
		if keyword == "" || response == "" || helpline == "" {
			continue
		}
		if _, dup := seen[keyword]; dup {
			continue
		}
		seen[keyword] = struct{}{}
		entries = append(entries, model.KeywordEntry{
			Keyword:  keyword,
			Response: response,
			Helpline: helpline,
		})
	}
	return entries, nil
}

// loadOffensiveTerms 解析单列 offensive_term 的 CSV，统一小写。
func loadOffensiveTerms(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil { // 跳过表头
		return nil, err
	}

	var terms []string
	seen := make(map[string]struct{})
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		term := strings.ToLower(strings.TrimSpace(field(record, 0)))
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms, nil
}

// columnIndex 将表头映射为列下标，容忍列顺序变化。
func columnIndex(header []string) map[string]int {
	col := map[string]int{"keyword": 0, "response": 1, "helpline": 2}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := col[name]; ok {
			col[name] = i
		}
	}
	return col
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// Lookup 按加载顺序扫描关键词表，命中第一个出现在输入中的关键词。
func (r *csvKeywordRepository) Lookup(input string) (*model.KeywordEntry, bool) {
	lower := strings.ToLower(input)
	for i := range r.entries {
		if strings.Contains(lower, r.entries[i].Keyword) {
			return &r.entries[i], true
		}
	}
	return nil, false
}

// ContainsOffensiveTerm 判断输入是否包含任一敏感词（子串匹配）。
func (r *csvKeywordRepository) ContainsOffensiveTerm(input string) bool {
	lower := strings.ToLower(input)
	for _, term := range r.offensiveTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func (r *csvKeywordRepository) KeywordCount() int {
	return len(r.entries)
}

func (r *csvKeywordRepository) OffensiveTermCount() int {
	return len(r.offensiveTerms)
}
