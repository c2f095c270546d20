package pdftext

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
)

type storageFake struct {
	data    map[string][]byte
	openErr error
}

func (s *storageFake) Save(_ context.Context, _ string, _ io.Reader) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	data, ok := s.data[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func TestExtractStorageFailurePropagates(t *testing.T) {
	openErr := errors.New("disk gone")
	extractor := New(&storageFake{openErr: openErr})

	_, err := extractor.Extract(context.Background(), "abc_contract.pdf")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, openErr) {
		t.Errorf("error = %v, want wrapped storage error", err)
	}
	if domain.IsKind(err, domain.ErrUnreadableDocument) {
		t.Errorf("storage failure must not be classified unreadable: %v", err)
	}
}

func TestExtractGarbageBytesIsUnreadable(t *testing.T) {
	storage := &storageFake{data: map[string][]byte{
		"abc_contract.pdf": []byte("this is not a pdf at all"),
	}}
	extractor := New(storage)

	_, err := extractor.Extract(context.Background(), "abc_contract.pdf")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrUnreadableDocument) {
		t.Errorf("error = %v, want unreadable document kind", err)
	}
}

func TestExtractEmptyFileIsUnreadable(t *testing.T) {
	storage := &storageFake{data: map[string][]byte{
		"abc_contract.pdf": {},
	}}
	extractor := New(storage)

	_, err := extractor.Extract(context.Background(), "abc_contract.pdf")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrUnreadableDocument) {
		t.Errorf("error = %v, want unreadable document kind", err)
	}
}
