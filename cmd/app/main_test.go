package main

import (
	"context"
	"errors"
	"testing"

	"github.com/wichananm65/clickshop-backend/internal/order"
)

type stubPublisher struct{ closeErr error }

func (stubPublisher) PublishOrderCreated(context.Context, order.Order) error { return nil }
func (s stubPublisher) Close() error                                         { return s.closeErr }

type stubCloser struct {
	err    error
	closed bool
}

func (s *stubCloser) Close() error {
	s.closed = true
	return s.err
}

func TestClosingPublisher_ReportsBothErrors(t *testing.T) {
	chErr := errors.New("channel close")
	connErr := errors.New("connection close")
	conn := &stubCloser{err: connErr}

	err := closingPublisher{Publisher: stubPublisher{closeErr: chErr}, conn: conn}.Close()
	if !conn.closed {
		t.Fatalf("connection must be closed even when the channel fails")
	}
	if !errors.Is(err, chErr) || !errors.Is(err, connErr) {
		t.Fatalf("expected both close errors, got %v", err)
	}
}

func TestClosingPublisher_Clean(t *testing.T) {
	conn := &stubCloser{}
	if err := (closingPublisher{Publisher: stubPublisher{}, conn: conn}).Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
