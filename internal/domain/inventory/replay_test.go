package inventory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestReplayRunningBalance(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	moves := []Move{
		{TransactionID: 1, Date: day, Direction: DirIn, Quantity: d("50")},
		{TransactionID: 2, Date: day.AddDate(0, 0, 1), Direction: DirOut, Quantity: d("20")},
		{TransactionID: 3, Date: day.AddDate(0, 0, 2), Direction: DirOut, Quantity: d("0.5")},
	}
	card := Replay(d("0"), moves)

	want := []string{"50", "30", "29.5"}
	if len(card.Lines) != len(want) {
		t.Fatalf("lines = %d", len(card.Lines))
	}
	for i, w := range want {
		if !card.Lines[i].Balance.Equal(d(w)) {
			t.Fatalf("line %d balance = %s, want %s", i, card.Lines[i].Balance, w)
		}
	}
	if !card.Closing.Equal(d("29.5")) {
		t.Fatalf("closing = %s", card.Closing)
	}
}

func TestReplayStartsFromOpening(t *testing.T) {
	card := Replay(d("12.5"), nil)
	if !card.Closing.Equal(d("12.5")) || len(card.Lines) != 0 {
		t.Fatalf("empty history must keep opening, got %+v", card)
	}
	card = Replay(d("5"), []Move{{Direction: DirOut, Quantity: d("8")}})
	if !card.Closing.Equal(d("-3")) {
		t.Fatalf("replay must not clamp negatives, got %s", card.Closing)
	}
}

func TestDirectionSign(t *testing.T) {
	if !DirOut.Sign(d("3")).Equal(d("-3")) || !DirIn.Sign(d("3")).Equal(d("3")) {
		t.Fatalf("bad sign")
	}
	if Direction("sideways").Valid() {
		t.Fatalf("unknown direction must be invalid")
	}
}
