package dto

import (
	"time"

	"github.com/noah-isme/codecoach-api/pkg/news"
)

// NewsQuery holds the parameters of GET /news.
type NewsQuery struct {
	Days         int  `json:"days" validate:"gte=1,lte=365"`
	Limit        int  `json:"limit" validate:"gte=1,lte=1000"`
	ForceRefresh bool `json:"force_refresh"`
}

// NewsResponse is the aggregated article list.
type NewsResponse struct {
	Articles    []news.Article `json:"articles"`
	TotalCount  int            `json:"total_count"`
	LastUpdated time.Time      `json:"last_updated"`
}
