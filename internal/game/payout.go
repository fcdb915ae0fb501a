package game

type Payout struct {
	Bank       int64 `json:"bank"`
	Commission int64 `json:"commission"`
	Prize      int64 `json:"prize"`
}

// Commission is the house cut: one percent of the bank, rounded down.
func Commission(bank int64) int64 {
	if bank <= 0 {
		return 0
	}
	return bank / 100
}

func ComputePayout(bank int64) Payout {
	c := Commission(bank)
	return Payout{Bank: bank, Commission: c, Prize: bank - c}
}
