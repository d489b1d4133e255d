package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/olehvasylenko/contacts-api/internal/domain/entity"
	repo "github.com/olehvasylenko/contacts-api/internal/domain/repository"
)

// ContactService wraps the owner-scoped contact repository and keeps the
// Elasticsearch suggest index in sync. Indexing is best-effort and never
// fails the primary operation.
type ContactService struct {
	Repo    repo.ContactRepository
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewContactService(r repo.ContactRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *ContactService {
	return &ContactService{Repo: r, Logger: logger, ES: es, ESIndex: esIndex}
}

func (s *ContactService) Create(ctx context.Context, fields repo.ContactFields, ownerID string) (*entity.Contact, error) {
	c, err := s.Repo.Create(ctx, fields, ownerID)
	if err != nil {
		return nil, err
	}
	s.indexContact(ctx, c)
	return c, nil
}

func (s *ContactService) List(ctx context.Context, limit, offset int, ownerID string) ([]entity.Contact, error) {
	return s.Repo.List(ctx, limit, offset, ownerID)
}

func (s *ContactService) GetByID(ctx context.Context, id, ownerID string) (*entity.Contact, error) {
	return s.Repo.GetByID(ctx, id, ownerID)
}

func (s *ContactService) Update(ctx context.Context, id string, fields repo.ContactFields, ownerID string) (*entity.Contact, error) {
	c, err := s.Repo.Update(ctx, id, fields, ownerID)
	if err != nil {
		return nil, err
	}
	s.indexContact(ctx, c)
	return c, nil
}

func (s *ContactService) Delete(ctx context.Context, id, ownerID string) (*entity.Contact, error) {
	c, err := s.Repo.Delete(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	s.removeFromIndex(ctx, c.ID)
	return c, nil
}

func (s *ContactService) UpcomingBirthdays(ctx context.Context, days int, ownerID string) ([]entity.Contact, error) {
	return s.Repo.UpcomingBirthdays(ctx, days, ownerID)
}

func (s *ContactService) Search(ctx context.Context, f repo.SearchFilter, ownerID string) ([]entity.Contact, error) {
	return s.Repo.Search(ctx, f, ownerID)
}

func (s *ContactService) indexContact(ctx context.Context, c *entity.Contact) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":           c.ID,
		"first_name":   c.FirstName,
		"last_name":    c.LastName,
		"email":        c.Email,
		"phone_number": c.PhoneNumber,
		"user_id":      c.UserID,
		"updated_at":   c.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: c.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	cx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(cx, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("contact_id", c.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("contact_id", c.ID).Warn("es index response error")
	}
}

func (s *ContactService) removeFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	cx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(cx, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("contact_id", id).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}

// Suggest performs a multi_match lookup over the caller's indexed contacts.
// Results are raw index documents; the SQL-backed Search remains the
// authoritative filter.
func (s *ContactService) Suggest(ctx context.Context, q, ownerID string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"first_name^2", "last_name^2", "email", "phone_number"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": ownerID},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	cx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(cx), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
