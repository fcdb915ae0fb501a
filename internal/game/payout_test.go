package game

import "testing"

func TestCommissionFloors(t *testing.T) {
	cases := []struct {
		bank int64
		want int64
	}{
		{0, 0},
		{99, 0},
		{100, 1},
		{120, 1},
		{199, 1},
		{200, 2},
		{12345, 123},
	}
	for _, c := range cases {
		if got := Commission(c.bank); got != c.want {
			t.Fatalf("Commission(%d) = %d, want %d", c.bank, got, c.want)
		}
	}
}

func TestComputePayoutConserves(t *testing.T) {
	for _, bank := range []int64{20, 100, 119, 120, 999, 1001} {
		p := ComputePayout(bank)
		if p.Prize+p.Commission != bank {
			t.Fatalf("bank %d: prize %d + commission %d", bank, p.Prize, p.Commission)
		}
	}
}
