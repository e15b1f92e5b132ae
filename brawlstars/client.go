// Package brawlstars — клиент официального Brawl Stars API. Сервисный слой
// зависит от него только через интерфейс services.GameAPI, поэтому в тестах
// клиент подменяется фейком.
package brawlstars

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Dosada05/brawl-tournament-system/models"
)

var (
	// ErrNotFound — тег/профиль не существует.
	ErrNotFound = errors.New("brawl stars api: resource not found")
	// ErrMaintenance — API недоступен (технические работы). Клиент не
	// ретраит сам: политика повторов — забота вызывающего.
	ErrMaintenance = errors.New("brawl stars api: under maintenance")
	// ErrUnauthorized — неверный или просроченный API-ключ.
	ErrUnauthorized = errors.New("brawl stars api: invalid api key")
)

const defaultBaseURL = "https://api.brawlstars.com/v1"

type ClientConfig struct {
	BaseURL string
	APIKey  string
	// HTTPClient опционален; по умолчанию клиент с таймаутом 10 секунд.
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("brawl stars api key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// NormalizeTag приводит тег к каноническому виду: без ведущего '#',
// в верхнем регистре.
func NormalizeTag(tag string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

// GetProfile загружает профиль игрока по тегу.
func (c *Client) GetProfile(ctx context.Context, tag string) (*models.PlayerProfile, error) {
	var profile models.PlayerProfile
	path := fmt.Sprintf("/players/%s", url.PathEscape("#"+NormalizeTag(tag)))
	if err := c.get(ctx, path, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetBattleLog загружает историю боёв игрока. API отдаёт самые свежие бои
// первыми; порядок не меняется — хронологию восстанавливает вызывающий.
func (c *Client) GetBattleLog(ctx context.Context, tag string) ([]models.BattleLogItem, error) {
	var battleLog models.BattleLog
	path := fmt.Sprintf("/players/%s/battlelog", url.PathEscape("#"+NormalizeTag(tag)))
	if err := c.get(ctx, path, &battleLog); err != nil {
		return nil, err
	}
	return battleLog.Items, nil
}

func (c *Client) get(ctx context.Context, path string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusServiceUnavailable:
		return ErrMaintenance
	default:
		return fmt.Errorf("brawl stars api: unexpected status %d for %s", resp.StatusCode, path)
	}
}
