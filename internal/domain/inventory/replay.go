package inventory

import "github.com/shopspring/decimal"

// Replay пересчитывает остаток по истории. moves должны идти по (date, id),
// так их отдаёт Repo.Moves. Итог обязан совпасть со stock_balances.
func Replay(opening decimal.Decimal, moves []Move) Card {
	card := Card{Opening: opening, Lines: make([]CardLine, 0, len(moves))}
	bal := opening
	for _, m := range moves {
		bal = bal.Add(m.Direction.Sign(m.Quantity))
		card.Lines = append(card.Lines, CardLine{Move: m, Balance: bal})
	}
	card.Closing = bal
	return card
}
