// abs/client.go
package abs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"absopds/models"
)

const defaultTimeout = 15 * time.Second

// Client клиент HTTP API сервера Audiobookshelf
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenCache
}

// NewClient создает клиент для сервера baseURL. Токены, полученные при входе,
// хранятся в tokens; nil означает кэш со временем жизни по умолчанию.
func NewClient(baseURL string, tokens *TokenCache) *Client {
	if tokens == nil {
		tokens = NewTokenCache(DefaultTokenTTL)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
	}
}

// Login выполняет вход на сервер. Токен берется из кэша, если он еще действует.
func (c *Client) Login(ctx context.Context, username, password string) (models.InternalUser, error) {
	if token, ok := c.tokens.Get(username, password); ok {
		return models.InternalUser{Name: username, APIKey: token}, nil
	}

	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return models.InternalUser{}, fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return models.InternalUser{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.InternalUser{}, fmt.Errorf("%w: login: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return models.InternalUser{}, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return models.InternalUser{}, fmt.Errorf("%w: login: status %d", ErrUpstream, resp.StatusCode)
	}

	var data models.AbsLoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return models.InternalUser{}, fmt.Errorf("%w: login: %v", ErrUpstream, err)
	}

	token := data.User.AccessToken
	if token == "" {
		token = data.User.Token
	}
	if token == "" {
		return models.InternalUser{}, fmt.Errorf("%w: login: empty token", ErrUpstream)
	}

	c.tokens.Put(username, password, token)
	log.Debug("ABS: вход выполнен", "user", username)

	name := data.User.Username
	if name == "" {
		name = username
	}
	return models.InternalUser{Name: name, APIKey: token}, nil
}

// Libraries возвращает список библиотек, доступных пользователю
func (c *Client) Libraries(ctx context.Context, user models.InternalUser) ([]models.Library, error) {
	var data models.AbsLibrariesResponse
	if err := c.get(ctx, user, "/api/libraries", &data); err != nil {
		return nil, err
	}
	return data.Libraries, nil
}

// Library возвращает описание одной библиотеки
func (c *Client) Library(ctx context.Context, user models.InternalUser, libraryID string) (models.Library, error) {
	var lib models.Library
	if err := c.get(ctx, user, libraryPath(libraryID), &lib); err != nil {
		return models.Library{}, err
	}
	return lib, nil
}

// Items возвращает все записи библиотеки
func (c *Client) Items(ctx context.Context, user models.InternalUser, libraryID string) ([]models.AbsItem, error) {
	raw, err := c.ItemsRaw(ctx, user, libraryID)
	if err != nil {
		return nil, err
	}
	return DecodeItems(raw)
}

// ItemsRaw возвращает тело ответа со списком записей без разбора
func (c *Client) ItemsRaw(ctx context.Context, user models.InternalUser, libraryID string) ([]byte, error) {
	return c.rawGet(ctx, user, libraryPath(libraryID)+"/items")
}

// DecodeItems разбирает ответ со списком записей библиотеки
func DecodeItems(raw []byte) ([]models.AbsItem, error) {
	var data models.AbsItemsResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: items: %v", ErrUpstream, err)
	}
	return data.Results, nil
}

func libraryPath(libraryID string) string {
	return "/api/libraries/" + url.PathEscape(libraryID)
}

func (c *Client) get(ctx context.Context, user models.InternalUser, path string, target any) error {
	raw, err := c.rawGet(ctx, user, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpstream, path, err)
	}
	return nil
}

func (c *Client) rawGet(ctx context.Context, user models.InternalUser, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+user.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	log.Debug("ABS: запрос", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s: status %d", ErrUpstream, path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, path, err)
	}
	return body, nil
}
