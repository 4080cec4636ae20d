package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path"

	"github.com/diaglab/apiserver/internal/storage"
	"github.com/diaglab/apiserver/types"
	"github.com/google/uuid"
)

// ErrNoReport is returned when a result has no uploaded report yet.
var ErrNoReport = errors.New("no report attached")

// ResultRepository defines persistence operations for results.
type ResultRepository interface {
	List(ctx context.Context) ([]types.Result, error)
	ListByEmail(ctx context.Context, email string) ([]types.Result, error)
	Get(ctx context.Context, id int) (types.Result, error)
	Create(ctx context.Context, result types.Result) (types.Result, error)
	SetReportKey(ctx context.Context, id int, key string) error
}

// ResultService encapsulates result use-cases, including report files
// kept in object storage.
type ResultService struct {
	repo     ResultRepository
	reports  *storage.Storage
	notifier Notifier
}

func NewResultService(repo ResultRepository, reports *storage.Storage, notifier Notifier) *ResultService {
	return &ResultService{repo: repo, reports: reports, notifier: notifier}
}

func (s *ResultService) List(ctx context.Context) ([]types.Result, error) {
	return s.repo.List(ctx)
}

func (s *ResultService) ListByEmail(ctx context.Context, email string) ([]types.Result, error) {
	return s.repo.ListByEmail(ctx, email)
}

func (s *ResultService) Get(ctx context.Context, id int) (types.Result, error) {
	return s.repo.Get(ctx, id)
}

// Create stores the result and publishes a result.ready event so the
// patient can be notified that their report is available.
func (s *ResultService) Create(ctx context.Context, result types.Result) (types.Result, error) {
	created, err := s.repo.Create(ctx, result)
	if err != nil {
		return types.Result{}, err
	}

	if s.notifier != nil {
		payload, _ := json.Marshal(created)
		attrs := map[string]string{"email": created.Email}
		if _, err := s.notifier.Publish(ctx, ChannelResultReady, payload, attrs); err != nil {
			log.Printf("publish %s for result %d: %v", ChannelResultReady, created.ID, err)
		}
	}
	return created, nil
}

// AttachReport uploads the report file for a result and records its
// object key. The key embeds a fresh UUID so re-uploads never clobber
// a report another reader is streaming.
func (s *ResultService) AttachReport(ctx context.Context, id int, filename, contentType string, data []byte) (types.Result, error) {
	result, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Result{}, err
	}
	if s.reports == nil {
		return types.Result{}, errors.New("report storage is not configured")
	}

	key := fmt.Sprintf("reports/%s%s", uuid.NewString(), path.Ext(filename))
	if err := s.reports.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return types.Result{}, err
	}

	if err := s.repo.SetReportKey(ctx, result.ID, key); err != nil {
		return types.Result{}, err
	}
	result.ReportKey = key
	return result, nil
}

// OpenReport opens the stored report for streaming to the caller.
func (s *ResultService) OpenReport(ctx context.Context, id int) (io.ReadCloser, error) {
	result, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.ReportKey == "" {
		return nil, ErrNoReport
	}
	if s.reports == nil {
		return nil, errors.New("report storage is not configured")
	}
	return s.reports.Get(ctx, result.ReportKey)
}
