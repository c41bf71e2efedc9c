package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/infrastructure/config"
)

// NoticeDocument is the record kept in the hosted index for one notice.
type NoticeDocument struct {
	ObjectID          string `json:"objectID"`
	Title             string `json:"title"`
	FileName          string `json:"fileName"`
	Status            string `json:"status"`
	BuildingComplexID uint   `json:"buildingComplexId"`
	OrganisationID    uint   `json:"organisationId"`
	CreatedAt         int64  `json:"createdAt"`
}

// ObjectIDFor returns the index object id of a notice.
func ObjectIDFor(noticeID uint) string {
	return strconv.FormatUint(uint64(noticeID), 10)
}

// Index is the subset of the hosted search API the service uses.
type Index interface {
	SaveNotice(ctx context.Context, doc NoticeDocument) error
	UpdateNoticeStatus(ctx context.Context, noticeID uint, status string) error
	DeleteNotice(ctx context.Context, noticeID uint) error
	Search(ctx context.Context, buildingComplexID uint, query string, limit int) ([]NoticeDocument, error)
}

type hostedIndex struct {
	httpClient *resty.Client
	indexName  string
	logger     *zap.Logger
}

type queryResponse struct {
	Hits []NoticeDocument `json:"hits"`
}

// NewHostedIndex returns an Index backed by the hosted search REST API.
func NewHostedIndex(cfg *config.Config, logger *zap.Logger) Index {
	client := resty.New().
		SetBaseURL(cfg.SearchBaseURL).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("X-Algolia-Application-Id", cfg.SearchAppID).
		SetHeader("X-Algolia-API-Key", cfg.SearchAPIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &hostedIndex{
		httpClient: client,
		indexName:  cfg.SearchIndex,
		logger:     logger,
	}
}

func (i *hostedIndex) objectPath(objectID string) string {
	return "/1/indexes/" + url.PathEscape(i.indexName) + "/" + url.PathEscape(objectID)
}

func (i *hostedIndex) SaveNotice(ctx context.Context, doc NoticeDocument) error {
	resp, err := i.httpClient.R().
		SetContext(ctx).
		SetBody(doc).
		Put(i.objectPath(doc.ObjectID))
	return i.check("save", doc.ObjectID, resp, err)
}

func (i *hostedIndex) UpdateNoticeStatus(ctx context.Context, noticeID uint, status string) error {
	objectID := ObjectIDFor(noticeID)
	resp, err := i.httpClient.R().
		SetContext(ctx).
		SetQueryParam("createIfNotExists", "false").
		SetBody(map[string]string{"status": status}).
		Post(i.objectPath(objectID) + "/partial")
	return i.check("partial update", objectID, resp, err)
}

func (i *hostedIndex) DeleteNotice(ctx context.Context, noticeID uint) error {
	objectID := ObjectIDFor(noticeID)
	resp, err := i.httpClient.R().
		SetContext(ctx).
		Delete(i.objectPath(objectID))
	if err == nil && resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	return i.check("delete", objectID, resp, err)
}

func (i *hostedIndex) Search(ctx context.Context, buildingComplexID uint, query string, limit int) ([]NoticeDocument, error) {
	var result queryResponse
	resp, err := i.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"query":       query,
			"filters":     fmt.Sprintf("buildingComplexId=%d", buildingComplexID),
			"hitsPerPage": limit,
		}).
		SetResult(&result).
		Post("/1/indexes/" + url.PathEscape(i.indexName) + "/query")
	if err := i.check("query", "", resp, err); err != nil {
		return nil, err
	}
	if result.Hits == nil {
		result.Hits = []NoticeDocument{}
	}
	return result.Hits, nil
}

func (i *hostedIndex) check(op, objectID string, resp *resty.Response, err error) error {
	if err != nil {
		i.logger.Error("search API call failed",
			zap.String("op", op),
			zap.String("object_id", objectID),
			zap.Error(err))
		return fmt.Errorf("search %s: %w", op, err)
	}
	if resp.IsError() {
		i.logger.Error("search API returned error",
			zap.String("op", op),
			zap.String("object_id", objectID),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("body", resp.String()))
		return fmt.Errorf("search %s: unexpected status %d", op, resp.StatusCode())
	}
	return nil
}
