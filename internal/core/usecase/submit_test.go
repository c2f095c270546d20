package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
)

type storageFake struct {
	saved map[string][]byte
	err   error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[key] = raw
	return int64(len(raw)), nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.saved[key]
	if !ok {
		return nil, errors.New("missing key")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type queueFake struct {
	published []domain.Submission
	err       error
}

func (f *queueFake) PublishContractSubmitted(_ context.Context, sub domain.Submission) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, sub)
	return nil
}

func (f *queueFake) SubscribeContractSubmitted(context.Context, func(context.Context, domain.Submission) error) error {
	return nil
}

func TestSubmitCreatesPendingRecordAndPublishes(t *testing.T) {
	repo := &processRepoFake{}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewSubmitContractUseCase(repo, storage, queue)

	rec, err := uc.Submit(context.Background(), "MSA final.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected assigned contract id")
	}
	if rec.Status != domain.StatusPending || rec.Progress != 0 {
		t.Fatalf("expected pending record with zero progress, got %s/%d", rec.Status, rec.Progress)
	}
	if rec.FileSize != int64(len("%PDF-1.4")) {
		t.Fatalf("unexpected file size %d", rec.FileSize)
	}
	if !strings.Contains(rec.StoragePath, "MSA_final.pdf") {
		t.Fatalf("expected sanitized storage key, got %s", rec.StoragePath)
	}
	if len(queue.published) != 1 {
		t.Fatalf("expected one published submission, got %d", len(queue.published))
	}
	if queue.published[0].ContractID != rec.ID || queue.published[0].StoragePath != rec.StoragePath {
		t.Fatalf("unexpected submission payload: %+v", queue.published[0])
	}
}

func TestSubmitFailsWhenStorageFails(t *testing.T) {
	repo := &processRepoFake{}
	storage := &storageFake{err: errors.New("disk full")}
	queue := &queueFake{}
	uc := NewSubmitContractUseCase(repo, storage, queue)

	_, err := uc.Submit(context.Background(), "a.pdf", "application/pdf", strings.NewReader("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(queue.published) != 0 {
		t.Fatalf("expected no publication after storage failure")
	}
}

func TestSanitizeFilenameStripsUnsafeRunes(t *testing.T) {
	got := sanitizeFilename("../weird name!?.pdf")
	if got != "weird_name__.pdf" {
		t.Fatalf("unexpected sanitized name: %s", got)
	}
}
