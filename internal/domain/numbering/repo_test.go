package numbering

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Spok95/erp-backend/internal/infra/db"
	"github.com/Spok95/erp-backend/internal/infra/db/dbtest"
	"github.com/Spok95/erp-backend/internal/infra/logger"
	"github.com/Spok95/erp-backend/internal/infra/metrics"
	"github.com/jackc/pgx/v5"
)

func TestRepoConcurrentIncrement(t *testing.T) {
	pool := dbtest.Open(t)
	repo := NewRepo(pool)
	ctx := context.Background()

	const n = 40
	var wg sync.WaitGroup
	results := make([]int64, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := repo.Increment(ctx, nil, "WT")
			if err != nil {
				t.Errorf("increment: %v", err)
				return
			}
			results[i] = seq
		}()
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, seq := range results {
		if seq <= 0 || seq > n {
			t.Fatalf("sequence out of range: %d", seq)
		}
		if seen[seq] {
			t.Fatalf("duplicate sequence %d", seq)
		}
		seen[seq] = true
	}
	cur, err := repo.Current(ctx, "WT")
	if err != nil || cur != n {
		t.Fatalf("current = %d, err = %v", cur, err)
	}
}

func TestRepoIncrementRollsBackWithTx(t *testing.T) {
	pool := dbtest.Open(t)
	repo := NewRepo(pool)
	iss := NewIssuer(repo, time.Second, logger.Nop(), metrics.New())
	ctx := context.Background()

	boom := errors.New("items insert failed")
	err := db.InTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := iss.NextTx(ctx, tx, KindCashInvoice); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected rollback error, got %v", err)
	}

	num, err := iss.Next(ctx, KindCashInvoice)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if num != "CI000001" {
		t.Fatalf("rolled back number must not be consumed, got %s", num)
	}
}

func TestRepoSeedNeverMovesBack(t *testing.T) {
	pool := dbtest.Open(t)
	repo := NewRepo(pool)
	ctx := context.Background()

	if cur, err := repo.Current(ctx, "CU"); err != nil || cur != 0 {
		t.Fatalf("fresh counter: %d %v", cur, err)
	}
	if got, err := repo.Seed(ctx, "CU", 500); err != nil || got != 500 {
		t.Fatalf("seed: %d %v", got, err)
	}
	if got, err := repo.Seed(ctx, "CU", 10); err != nil || got != 500 {
		t.Fatalf("seed must not lower counter: %d %v", got, err)
	}
	seq, err := repo.Increment(ctx, nil, "CU")
	if err != nil || seq != 501 {
		t.Fatalf("increment after seed: %d %v", seq, err)
	}

	var viaProc string
	if err := pool.QueryRow(ctx, `SELECT generate_customer_code()`).Scan(&viaProc); err != nil {
		t.Fatalf("procedure: %v", err)
	}
	if viaProc != "CU000502" {
		t.Fatalf("procedure must share the counter, got %s", viaProc)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 || list[0].CurrentCode != 502 {
		t.Fatalf("list: %+v %v", list, err)
	}
}

func TestBarcodeProcedureMatchesGo(t *testing.T) {
	pool := dbtest.Open(t)
	ctx := context.Background()

	var code string
	if err := pool.QueryRow(ctx, `SELECT generate_barcode()`).Scan(&code); err != nil {
		t.Fatalf("generate_barcode: %v", err)
	}
	want, _ := EAN13(1)
	if code != want {
		t.Fatalf("sql barcode %s != go barcode %s", code, want)
	}
}
