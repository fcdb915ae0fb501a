package game

import (
	"context"
	"testing"
)

func TestSeededRollerRange(t *testing.T) {
	r := NewSeededRoller("fixed-seed")
	counts := map[int]int{}
	for i := 0; i < 6000; i++ {
		v, err := r.Roll(context.Background(), int64(i%7))
		if err != nil {
			t.Fatalf("roll: %v", err)
		}
		if v < 1 || v > 6 {
			t.Fatalf("roll out of range: %d", v)
		}
		counts[v]++
	}
	for face := 1; face <= 6; face++ {
		if counts[face] < 800 {
			t.Fatalf("face %d rolled only %d times", face, counts[face])
		}
	}
}

func TestSeededRollerDeterministic(t *testing.T) {
	a := NewSeededRoller("seed")
	b := NewSeededRoller("seed")
	for i := 0; i < 20; i++ {
		va, _ := a.Roll(context.Background(), 5)
		vb, _ := b.Roll(context.Background(), 5)
		if va != vb {
			t.Fatalf("roll %d differs: %d vs %d", i, va, vb)
		}
	}
}

func TestSeededRollerRotateRevealsSeed(t *testing.T) {
	r := NewSeededRoller("first")
	hash, _ := r.Commitment()
	if revealed := r.Rotate(); revealed != "first" {
		t.Fatalf("revealed %q", revealed)
	}
	next, _ := r.Commitment()
	if next == hash || next == "" {
		t.Fatalf("commitment not rotated")
	}
}

func TestRollProofVerifiesAfterReveal(t *testing.T) {
	r := NewSeededRoller("revealed-later")
	commitment, _ := r.Commitment()
	type rolled struct {
		userID int64
		value  int
		proof  RollProof
	}
	var rolls []rolled
	for i := 0; i < 50; i++ {
		uid := int64(i % 3)
		v, proof, err := r.RollWithProof(context.Background(), uid)
		if err != nil {
			t.Fatalf("roll: %v", err)
		}
		if proof.SeedHash != commitment {
			t.Fatalf("proof hash %q, commitment %q", proof.SeedHash, commitment)
		}
		rolls = append(rolls, rolled{userID: uid, value: v, proof: proof})
	}

	seed := r.Rotate()
	if SeedHash(seed) != commitment {
		t.Fatalf("revealed seed does not match commitment")
	}
	for i, rl := range rolls {
		v, ok := VerifyRoll(seed, rl.userID, rl.proof.Nonce)
		if !ok || v != rl.value {
			t.Fatalf("roll %d: verify=%d ok=%v, rolled %d", i, v, ok, rl.value)
		}
	}
	if i := len(rolls) - 1; rolls[i].proof.Nonce <= rolls[0].proof.Nonce {
		t.Fatalf("nonces must increase")
	}
}
