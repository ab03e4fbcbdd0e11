// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
)

// HTTPClientConfig carries the settings for the REST document store client.
type HTTPClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// HTTPDocumentStore is the REST implementation of [DocumentStore]. It also
// manages the bearer token handed over by the authentication provider.
type HTTPDocumentStore struct {
	client *resty.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPDocumentStore builds a [DocumentStore] speaking the remote store's
// REST dialect:
//
//	GET    /api/collections/{collection}?owner_id={id}  list owner documents
//	POST   /api/collections/{collection}                create, returns {"id": ...}
//	PUT    /api/collections/{collection}/{remoteId}     update
//	DELETE /api/collections/{collection}/{remoteId}     delete
//
// Timeouts are enforced by the underlying client; the sync core imposes none
// of its own.
func NewHTTPDocumentStore(cfg HTTPClientConfig) *HTTPDocumentStore {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &HTTPDocumentStore{client: cli}
}

// SetToken stores the bearer token attached to all subsequent requests. It
// is called after the authentication provider has produced a session.
func (h *HTTPDocumentStore) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token returns the currently stored bearer token, or an empty string.
func (h *HTTPDocumentStore) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// OwnerFromToken extracts the owner identifier (the "sub" claim) from the
// stored bearer token without verifying the signature; verification is the
// remote store's job.
func (h *HTTPDocumentStore) OwnerFromToken() (string, error) {
	tokenString := h.Token()
	if tokenString == "" {
		return "", ErrUnauthorized
	}

	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("parse bearer token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("token subject: %w", err)
	}
	if sub == "" {
		return "", errors.New("empty token subject")
	}

	return sub, nil
}

func (h *HTTPDocumentStore) QueryByOwner(ctx context.Context, collection, ownerID string) ([]RemoteDocument, error) {
	resp, err := h.authedRequest(ctx).
		SetQueryParam("owner_id", ownerID).
		Get("/api/collections/" + collection)
	if err != nil {
		return nil, fmt.Errorf("query %s request: %w", collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var docs []RemoteDocument
	if err = json.Unmarshal(resp.Body(), &docs); err != nil {
		return nil, fmt.Errorf("decode %s query response: %w", collection, err)
	}

	return docs, nil
}

func (h *HTTPDocumentStore) CreateDocument(ctx context.Context, collection string, fields Document) (string, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(fields).
		Post("/api/collections/" + collection)
	if err != nil {
		return "", fmt.Errorf("create %s document request: %w", collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err = json.Unmarshal(resp.Body(), &created); err != nil {
		return "", fmt.Errorf("decode create %s response: %w", collection, err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("create %s document: empty id in response", collection)
	}

	return created.ID, nil
}

func (h *HTTPDocumentStore) UpdateDocument(ctx context.Context, collection, remoteID string, fields Document) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(fields).
		Put("/api/collections/" + collection + "/" + remoteID)
	if err != nil {
		return fmt.Errorf("update %s document request: %w", collection, err)
	}

	return mapHTTPError(resp)
}

func (h *HTTPDocumentStore) DeleteDocument(ctx context.Context, collection, remoteID string) error {
	resp, err := h.authedRequest(ctx).
		Delete("/api/collections/" + collection + "/" + remoteID)
	if err != nil {
		return fmt.Errorf("delete %s document request: %w", collection, err)
	}

	return mapHTTPError(resp)
}

func (h *HTTPDocumentStore) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode() == http.StatusNotFound {
		return ErrNotFound
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
}
