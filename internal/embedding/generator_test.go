package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pactly/contract-analyzer/internal/common"
)

// fakeGateway returns one-element vectors encoding the input position, with
// each batch's items deliberately reversed to exercise reordering.
type fakeGateway struct {
	calls   int
	failN   int
	offset  int
	badSize bool
}

func (g *fakeGateway) Name() string  { return "fake" }
func (g *fakeGateway) Model() string { return "fake-embedding" }

func (g *fakeGateway) EmbedBatch(_ context.Context, texts []string) ([]BatchItem, error) {
	g.calls++
	if g.failN > 0 {
		g.failN--
		return nil, common.Transient(errors.New("rate limited"))
	}
	if g.badSize {
		return []BatchItem{{Index: 0, Vector: []float32{0}}}, nil
	}
	items := make([]BatchItem, 0, len(texts))
	for i := len(texts) - 1; i >= 0; i-- {
		items = append(items, BatchItem{Index: i, Vector: []float32{float32(g.offset + i)}})
	}
	g.offset += len(texts)
	return items, nil
}

func fastRetry() common.RetryConfig {
	return common.RetryConfig{MaxAttempts: 3, BaseDelay: time.Nanosecond, MaxDelay: time.Nanosecond}
}

func TestEmbed_Empty(t *testing.T) {
	gen := NewGenerator(&fakeGateway{}, 10, nil)
	out, err := gen.Embed(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Errorf("Embed(nil) = %v, want nil", out)
	}
}

func TestEmbed_OrderPreservedAcrossBatches(t *testing.T) {
	gw := &fakeGateway{}
	gen := NewGenerator(gw, 3, nil)
	gen.retry = fastRetry()

	texts := make([]string, 8)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk %d", i)
	}

	out, err := gen.Embed(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(out), len(texts))
	}
	for i, v := range out {
		if len(v) != 1 || v[0] != float32(i) {
			t.Errorf("vector %d = %v, want [%d]", i, v, i)
		}
	}
	if gw.calls != 3 {
		t.Errorf("gateway calls = %d, want 3", gw.calls)
	}
}

func TestEmbed_RetriesTransientThenSucceeds(t *testing.T) {
	gw := &fakeGateway{failN: 2}
	gen := NewGenerator(gw, 10, nil)
	gen.retry = fastRetry()

	out, err := gen.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d vectors, want 2", len(out))
	}
	if gw.calls != 3 {
		t.Errorf("gateway calls = %d, want 3 (2 failures + 1 success)", gw.calls)
	}
}

func TestEmbed_ExhaustedRetriesPropagates(t *testing.T) {
	gw := &fakeGateway{failN: 10}
	gen := NewGenerator(gw, 10, nil)
	gen.retry = fastRetry()

	if _, err := gen.Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error after retry exhaustion")
	}
	if gw.calls != 3 {
		t.Errorf("gateway calls = %d, want 3", gw.calls)
	}
}

func TestEmbed_CountMismatchErrors(t *testing.T) {
	gen := NewGenerator(&fakeGateway{badSize: true}, 10, nil)
	gen.retry = fastRetry()

	if _, err := gen.Embed(context.Background(), []string{"a", "b", "c"}); err == nil {
		t.Fatal("expected error on vector count mismatch")
	}
}
