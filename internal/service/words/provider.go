package words

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Provider 为每一轮抽取秘密词语，可被多个房间并发使用
type Provider struct {
	pools map[string][]string
	// random 分类合并所有分类的词语
	merged []string

	mu   sync.Mutex
	intn func(n int) int
}

func New() *Provider {
	return NewWithPools(builtinPools)
}

// NewWithPools 使用自定义词库，必须包含 random 分类
func NewWithPools(pools map[string][]string) *Provider {
	p := &Provider{
		pools: make(map[string][]string, len(pools)),
		intn:  rand.IntN,
	}

	for category, words := range pools {
		p.pools[category] = slices.Clone(words)
	}

	for _, category := range p.orderedCategories() {
		p.merged = append(p.merged, p.pools[category]...)
	}

	zap.L().Debug(
		"词库已加载",
		zap.Int("categories", len(p.pools)),
		zap.Int("words", len(p.merged)),
	)

	return p
}

// resolve 返回分类对应的词库，未知分类退回 random 分类
func (p *Provider) resolve(category string) []string {
	if category == CATEGORY_RANDOM {
		return p.merged
	}

	if pool, ok := p.pools[category]; ok {
		return pool
	}

	zap.L().Debug("未知的词语分类，使用随机分类", zap.String("category", category))
	return p.pools[CATEGORY_RANDOM]
}

// Next 从分类词库和房间的自定义词语中等概率抽取一个
func (p *Provider) Next(category string, custom []string) string {
	pool := p.resolve(category)

	candidates := pool
	if len(custom) > 0 {
		candidates = make([]string, 0, len(pool)+len(custom))
		candidates = append(candidates, pool...)
		for _, w := range custom {
			if w = strings.TrimSpace(w); w != "" {
				candidates = append(candidates, w)
			}
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	p.mu.Lock()
	idx := p.intn(len(candidates))
	p.mu.Unlock()

	return candidates[idx]
}

func (p *Provider) Categories() []Category {
	out := make([]Category, 0, len(p.pools))

	for _, id := range p.orderedCategories() {
		size := len(p.pools[id])
		if id == CATEGORY_RANDOM {
			size = len(p.merged)
		}

		out = append(out, Category{
			ID:    id,
			Emoji: categoryEmoji[id],
			Size:  size,
		})
	}

	return out
}

// HasCategory 判断分类是否存在，房间设置据此拒绝未知分类
func (p *Provider) HasCategory(category string) bool {
	if category == CATEGORY_RANDOM {
		return true
	}

	_, ok := p.pools[category]
	return ok
}

// orderedCategories 先按内置顺序，再按字母序列出其余分类
func (p *Provider) orderedCategories() []string {
	ids := make([]string, 0, len(p.pools))
	for _, id := range categoryOrder {
		if _, ok := p.pools[id]; ok {
			ids = append(ids, id)
		}
	}

	var extra []string
	for id := range p.pools {
		if !slices.Contains(categoryOrder, id) {
			extra = append(extra, id)
		}
	}
	slices.Sort(extra)

	return append(ids, extra...)
}
