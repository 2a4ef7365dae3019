package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/SamOhrenberg/AboutSamuel/internal/model"
)

type ChatExchangeRepository struct {
	db *gorm.DB
}

func NewChatExchangeRepository(db *gorm.DB) *ChatExchangeRepository {
	return &ChatExchangeRepository{db: db}
}

// ChatSession groups the exchanges that share a session tracking id. Exchanges
// logged without one form a session of their own.
type ChatSession struct {
	SessionKey string               `json:"session_key"`
	HasError   bool                 `json:"has_error"`
	Exchanges  []model.ChatExchange `json:"exchanges"`
}

type SessionQuery struct {
	Page       int
	PageSize   int
	ErrorsOnly bool
}

func (r *ChatExchangeRepository) Create(ctx context.Context, exchange *model.ChatExchange) error {
	if err := r.db.WithContext(ctx).Create(exchange).Error; err != nil {
		return fmt.Errorf("create chat exchange failed: %w", err)
	}
	return nil
}

// ListSessions pages through sessions ordered by their latest exchange.
func (r *ChatExchangeRepository) ListSessions(ctx context.Context, q SessionQuery) ([]ChatSession, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}

	grouped := r.sessionGroups()
	if q.ErrorsOnly {
		grouped = grouped.Having("MAX(CASE WHEN error = ? THEN 1 ELSE 0 END) = 1", true)
	}

	var total int64
	if err := r.db.WithContext(ctx).Table("(?) AS s", grouped).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count chat sessions failed: %w", err)
	}
	if total == 0 {
		return []ChatSession{}, 0, nil
	}

	var keys []string
	if err := r.db.WithContext(ctx).Table("(?) AS s", grouped).
		Order("last_at DESC").Order("session_key ASC").
		Limit(q.PageSize).Offset((q.Page-1)*q.PageSize).
		Pluck("session_key", &keys).Error; err != nil {
		return nil, 0, fmt.Errorf("list chat session keys failed: %w", err)
	}
	if len(keys) == 0 {
		return []ChatSession{}, total, nil
	}

	var exchanges []model.ChatExchange
	if err := r.db.WithContext(ctx).
		Where("session_tracking_id IN ? OR (session_tracking_id IS NULL AND id IN ?)", keys, keys).
		Order("received_at ASC").Find(&exchanges).Error; err != nil {
		return nil, 0, fmt.Errorf("list chat exchanges failed: %w", err)
	}

	return groupSessions(keys, exchanges), total, nil
}

// ChatStats summarises recorded chat traffic for the admin dashboard.
type ChatStats struct {
	TotalMessages int64   `json:"total_messages"`
	TotalSessions int64   `json:"total_sessions"`
	ErrorCount    int64   `json:"error_count"`
	MessagesToday int64   `json:"messages_today"`
	AvgResponseMs float64 `json:"avg_response_ms"`
}

// Stats counts exchanges, sessions and errors. MessagesToday counts exchanges
// received at or after since.
func (r *ChatExchangeRepository) Stats(ctx context.Context, since time.Time) (*ChatStats, error) {
	var stats ChatStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.ChatExchange{}).Count(&stats.TotalMessages).Error; err != nil {
		return nil, fmt.Errorf("count chat exchanges failed: %w", err)
	}
	if stats.TotalMessages == 0 {
		return &stats, nil
	}
	if err := db.Model(&model.ChatExchange{}).Where("error = ?", true).Count(&stats.ErrorCount).Error; err != nil {
		return nil, fmt.Errorf("count chat errors failed: %w", err)
	}
	if err := db.Model(&model.ChatExchange{}).Where("received_at >= ?", since).Count(&stats.MessagesToday).Error; err != nil {
		return nil, fmt.Errorf("count recent chat exchanges failed: %w", err)
	}
	if err := db.Table("(?) AS s", r.sessionGroups()).Count(&stats.TotalSessions).Error; err != nil {
		return nil, fmt.Errorf("count chat sessions failed: %w", err)
	}

	var avg float64
	if err := db.Model(&model.ChatExchange{}).
		Select("COALESCE(AVG(response_took_ms), 0)").Row().Scan(&avg); err != nil {
		return nil, fmt.Errorf("average chat response time failed: %w", err)
	}
	stats.AvgResponseMs = math.Round(avg*10) / 10
	return &stats, nil
}

// sessionGroups yields one row per session key with its latest exchange time.
func (r *ChatExchangeRepository) sessionGroups() *gorm.DB {
	return r.db.Model(&model.ChatExchange{}).
		Select("COALESCE(session_tracking_id, id) AS session_key, MAX(received_at) AS last_at").
		Group("COALESCE(session_tracking_id, id)")
}

func groupSessions(keys []string, exchanges []model.ChatExchange) []ChatSession {
	rank := make(map[string]int, len(keys))
	for i, k := range keys {
		rank[k] = i
	}

	byKey := make(map[string]*ChatSession, len(keys))
	for _, ex := range exchanges {
		key := ex.ID.String()
		if ex.SessionTrackingID != nil {
			key = ex.SessionTrackingID.String()
		}
		s, ok := byKey[key]
		if !ok {
			s = &ChatSession{SessionKey: key}
			byKey[key] = s
		}
		s.Exchanges = append(s.Exchanges, ex)
		s.HasError = s.HasError || ex.Error
	}

	sessions := make([]ChatSession, 0, len(byKey))
	for _, s := range byKey {
		sessions = append(sessions, *s)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return rank[sessions[i].SessionKey] < rank[sessions[j].SessionKey]
	})
	return sessions
}
