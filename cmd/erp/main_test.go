package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Spok95/erp-backend/internal/domain/numbering"
)

func TestVersionNeedsNoConfig(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--config", "/nonexistent.yaml"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out.String()) != version {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestCommandsRegistered(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "reconcile", "counters", "version"} {
		c, _, err := root.Find([]string{name})
		if err != nil || c.Name() != name {
			t.Fatalf("command %s not registered: %v", name, err)
		}
	}
	rc, _, _ := root.Find([]string{"reconcile"})
	if rc.Flags().Lookup("fix") == nil {
		t.Fatalf("reconcile must have --fix")
	}
	if sc, _, err := root.Find([]string{"counters", "show"}); err != nil || sc.Name() != "show" {
		t.Fatalf("counters show not registered: %v", err)
	}
	if root.Flags().Lookup("skip-migrate") == nil {
		t.Fatalf("root must accept serve flags")
	}
}

func TestMissingConfigFails(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"migrate", "--config", "/nonexistent.yaml"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected config error")
	}
}

func TestDescribeCounter(t *testing.T) {
	ci, _ := numbering.SeriesFor(numbering.KindCashInvoice)
	if got := describeCounter(ci, 0); got != "CI current=0 next=CI000001" {
		t.Fatalf("fresh series: %q", got)
	}
	if got := describeCounter(ci, 41); got != "CI current=41 next=CI000042" {
		t.Fatalf("used series: %q", got)
	}
	bc, _ := numbering.SeriesFor(numbering.KindBarcode)
	want, _ := numbering.EAN13(1)
	if got := describeCounter(bc, 0); !strings.HasSuffix(got, "next="+want) {
		t.Fatalf("barcode series: %q", got)
	}
}
