package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"HavenGo/models"
)

// RemoteStore is the hosted document store as the sync engine sees it:
// idempotent upsert-by-id, delete-by-id, and an ordered collection query.
type RemoteStore interface {
	UpsertDocument(ctx context.Context, col models.Collection, id string, doc any) error
	DeleteDocument(ctx context.Context, col models.Collection, id string) error
	QueryDocuments(ctx context.Context, col models.Collection, filter map[string]string, out any) error
}

// RESTRemoteStore talks JSON to the hosted backend. Documents live under
// per-user collections keyed by the client-generated identifier; dates are
// ISO-8601 strings on the wire.
type RESTRemoteStore struct {
	baseURL string
	token   string
	userID  string
	client  *http.Client
}

func NewRESTRemoteStore(baseURL, token, userID string, timeout time.Duration) *RESTRemoteStore {
	return &RESTRemoteStore{
		baseURL: baseURL,
		token:   token,
		userID:  userID,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *RESTRemoteStore) collectionURL(col models.Collection) string {
	return fmt.Sprintf("%s/v1/users/%s/%s",
		r.baseURL, url.PathEscape(r.userID), url.PathEscape(string(col)))
}

func (r *RESTRemoteStore) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("remote store %s %s: status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, body)
	}
	return body, nil
}

func (r *RESTRemoteStore) UpsertDocument(ctx context.Context, col models.Collection, id string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", col, err)
	}

	u := r.collectionURL(col) + "/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	_, err = r.do(req)
	return err
}

func (r *RESTRemoteStore) DeleteDocument(ctx context.Context, col models.Collection, id string) error {
	u := r.collectionURL(col) + "/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	_, err = r.do(req)
	return err
}

// QueryDocuments fetches a collection ordered by creation time, optionally
// narrowed by equality filters, and decodes it into out (a pointer to a
// slice of document DTOs).
func (r *RESTRemoteStore) QueryDocuments(ctx context.Context, col models.Collection, filter map[string]string, out any) error {
	values := url.Values{"orderBy": {"createdAt"}}
	for field, want := range filter {
		values.Set(field, want)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.collectionURL(col)+"?"+values.Encode(), nil)
	if err != nil {
		return err
	}
	body, err := r.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s query: %w", col, err)
	}
	return nil
}
