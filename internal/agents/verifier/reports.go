// internal/agents/verifier/reports.go
package verifier

import (
	"bytes"
	"context"
	"encoding/json"

	commonerrors "scam-analyzer/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
)

// ReportCounter returns the number of user-filed scam reports naming a
// subject. A zero count is a meaningful "nothing on file" answer.
type ReportCounter interface {
	Count(ctx context.Context, subject string) (int, error)
}

// ESReportIndex counts reports in an Elasticsearch index. Documents carry
// "company" and "domain" fields written by the report ingestion side.
type ESReportIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewESReportIndex(client *elasticsearch.Client, index string) *ESReportIndex {
	return &ESReportIndex{client: client, index: index}
}

func (r *ESReportIndex) Count(ctx context.Context, subject string) (int, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"match": map[string]interface{}{"company": subject}},
					map[string]interface{}{"match": map[string]interface{}{"domain": subject}},
				},
				"minimum_should_match": 1,
			},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return 0, commonerrors.NewReportQueryFailedError(err)
	}

	res, err := r.client.Count(
		r.client.Count.WithContext(ctx),
		r.client.Count.WithIndex(r.index),
		r.client.Count.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return 0, commonerrors.NewReportIndexUnavailableError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, commonerrors.NewReportQueryFailedError(
			&statusError{status: res.Status()})
	}

	var out struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, commonerrors.NewReportQueryFailedError(err)
	}
	return out.Count, nil
}

type statusError struct{ status string }

func (e *statusError) Error() string { return "report index returned " + e.status }
