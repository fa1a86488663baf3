package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"crm-voice-server/internal/model"
)

// Compile-time check
var _ ContactCreator = (*ContactClient)(nil)

// ContactClient talks to the external CRM contact endpoint. Contact creation
// goes through this server-side validated resource by design, unlike leads,
// events and follow-ups which are owned by this service.
type ContactClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// ContactClientConfig holds settings for the contact endpoint client.
type ContactClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewContactClient(cfg ContactClientConfig, logger *zap.Logger) *ContactClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &ContactClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("ContactClient"),
	}
}

// ContactAPIError preserves the endpoint's error payload verbatim so the
// executor can put it into the diagnostic draft untouched.
type ContactAPIError struct {
	StatusCode int
	Body       string
}

func (e *ContactAPIError) Error() string {
	return fmt.Sprintf("contact endpoint returned %d: %s", e.StatusCode, e.Body)
}

type createContactRequest struct {
	OrgID     string  `json:"orgId"`
	Type      string  `json:"type"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Notes     string  `json:"notes"`
}

func (c *ContactClient) CreateContact(ctx context.Context, orgID string, payload *model.CreateContactPayload) (*model.Contact, error) {
	firstName, lastName := splitName(payload.Name)
	reqBody := createContactRequest{
		OrgID:     orgID,
		Type:      "client",
		FirstName: firstName,
		LastName:  lastName,
		Phone:     payload.Phone,
		Email:     payload.Email,
		Notes:     "Utworzono z notatki głosowej",
	}
	reqData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize contact request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contacts", bytes.NewBuffer(reqData))
	if err != nil {
		return nil, fmt.Errorf("failed to create contact request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contact request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read contact response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Contact endpoint rejected request",
			zap.Int("status", resp.StatusCode),
			zap.String("name", payload.Name))
		return nil, &ContactAPIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var contact model.Contact
	if err := json.Unmarshal(body, &contact); err != nil {
		return nil, fmt.Errorf("failed to parse contact response: %w", err)
	}
	if contact.Name == "" {
		contact.Name = payload.Name
	}
	c.logger.Info("Contact created", zap.String("contactID", contact.ID), zap.String("name", contact.Name))
	return &contact, nil
}

// splitName separates a spoken full name into first and last parts; a single
// token becomes the first name with an empty last name.
func splitName(full string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(full))
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
