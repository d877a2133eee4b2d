package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/VentixeEventManagement/AccountServiceProvider/internal/domain/entity"
	repo "github.com/VentixeEventManagement/AccountServiceProvider/internal/domain/repository"
)

// SearchIndexer mirrors account state into Elasticsearch. Search is an
// operator convenience; every write here is best effort and never fails the
// mutation that triggered it. A nil indexer disables the mirror entirely.
type SearchIndexer struct {
	ES     *elasticsearch.Client
	Index  string
	Roles  repo.RoleRepository
	Logger *logrus.Logger
}

func NewSearchIndexer(es *elasticsearch.Client, index string, roles repo.RoleRepository, logger *logrus.Logger) *SearchIndexer {
	return &SearchIndexer{ES: es, Index: index, Roles: roles, Logger: logger}
}

func (x *SearchIndexer) enabled() bool {
	return x != nil && x.ES != nil && x.Index != ""
}

// documentFor builds the indexed document. Callers that do not know the
// account's role pass ""; the current assignment is then resolved from the
// registry so a document rewrite does not strip role_name.
func (x *SearchIndexer) documentFor(ctx context.Context, a *entity.Account, roleName string) map[string]any {
	if roleName == "" && x.Roles != nil {
		if roles, err := x.Roles.RolesOf(ctx, a.ID); err != nil {
			if x.Logger != nil {
				x.Logger.WithError(err).WithField("account_id", a.ID).Warn("role lookup for index failed")
			}
		} else if len(roles) > 0 {
			roleName = roles[0]
		}
	}
	doc := map[string]any{
		"account_id":      a.ID,
		"email":           a.Email,
		"user_name":       a.UserName,
		"phone_number":    a.PhoneNumber,
		"email_confirmed": a.EmailConfirmed,
		"updated_at":      a.UpdatedAt.Format(time.RFC3339Nano),
	}
	if roleName != "" {
		doc["role_name"] = roleName
	}
	return doc
}

// IndexAccount writes the account document, replacing any previous version.
func (x *SearchIndexer) IndexAccount(ctx context.Context, a *entity.Account, roleName string) {
	if !x.enabled() {
		return
	}
	b, _ := json.Marshal(x.documentFor(ctx, a, roleName))
	req := esapi.IndexRequest{Index: x.Index, DocumentID: a.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		if x.Logger != nil {
			x.Logger.WithError(err).WithField("account_id", a.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && x.Logger != nil {
		x.Logger.WithField("status", res.Status()).WithField("account_id", a.ID).Warn("es index response error")
	}
}

// RemoveAccount deletes the account document.
func (x *SearchIndexer) RemoveAccount(ctx context.Context, id string) {
	if !x.enabled() {
		return
	}
	req := esapi.DeleteRequest{Index: x.Index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		if x.Logger != nil {
			x.Logger.WithError(err).WithField("account_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// SearchAccounts performs a simple multi_match search on email and user name.
func (x *SearchIndexer) SearchAccounts(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if !x.enabled() {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "user_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Index), x.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, unexpected(err)
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
		return nil, unexpected(err)
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
