package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vivaha/backend/internal/models"
)

const defaultRequestTimeout = 15 * time.Second

// Client is the HTTP implementation of API speaking the envelope contract.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultRequestTimeout},
	}
}

func (c *Client) SendMessage(ctx context.Context, req models.SendMessageRequest) error {
	if req.DeviceType == "" {
		req.DeviceType = "web"
	}
	_, err := c.do(ctx, http.MethodPost, "/api/chat/messages", req)
	return err
}

func (c *Client) MarkConversationRead(ctx context.Context, conversationID string) error {
	_, err := c.do(ctx, http.MethodPut, "/api/chat/conversations/"+conversationID+"/read", nil)
	return err
}

func (c *Client) UploadImage(ctx context.Context, conversationID, dataURL string) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/chat/upload-image", models.UploadImageRequest{
		Image:          dataURL,
		ConversationID: conversationID,
	})
	if err != nil {
		return "", err
	}

	var payload struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if payload.ImageURL == "" {
		return "", &APIError{Message: "upload response missing imageUrl"}
	}
	return payload.ImageURL, nil
}

func (c *Client) ReportConversation(ctx context.Context, conversationID string, reason models.ReportReason, description string) error {
	req := models.CreateReportRequest{Reason: reason}
	if description != "" {
		req.Description = &description
	}
	_, err := c.do(ctx, http.MethodPost, "/api/chat/conversations/"+conversationID+"/report", req)
	return err
}

func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/chat/conversations/"+conversationID, nil)
	return err
}

// do performs one envelope request. A success=false body becomes *APIError;
// anything else that prevents a well-formed envelope is a transport failure.
func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Code    string          `json:"code"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("server returned %d with unreadable body: %w", resp.StatusCode, err)
	}

	if !envelope.Success {
		return nil, &APIError{Code: envelope.Code, Message: envelope.Message}
	}

	return envelope.Data, nil
}
