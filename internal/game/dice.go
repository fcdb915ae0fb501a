package game

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"sync"
	"time"
)

// RollerFunc adapts a function to Roller.
type RollerFunc func(ctx context.Context, userID int64) (int, error)

func (f RollerFunc) Roll(ctx context.Context, userID int64) (int, error) { return f(ctx, userID) }

// SeededRoller derives die values from HMAC-SHA256(serverSeed, "user:nonce").
// The SHA-256 of the server seed is published as a commitment and the seed is
// revealed when rotated.
type SeededRoller struct {
	mu         sync.Mutex
	serverSeed string
	hash       string
	rotatedAt  time.Time
	nonce      uint64
}

func NewSeededRoller(serverSeed string) *SeededRoller {
	r := &SeededRoller{}
	r.reset(serverSeed)
	return r
}

// RollProof identifies the seed commitment and nonce behind a die value.
// Once the seed is revealed, VerifyRoll recomputes the value from it.
type RollProof struct {
	SeedHash string `json:"seed_hash"`
	Nonce    uint64 `json:"nonce"`
}

// ProvableRoller is a Roller that reports the proof of every value it returns.
type ProvableRoller interface {
	Roller
	RollWithProof(ctx context.Context, userID int64) (int, RollProof, error)
}

func (r *SeededRoller) Roll(ctx context.Context, userID int64) (int, error) {
	v, _, err := r.RollWithProof(ctx, userID)
	return v, err
}

func (r *SeededRoller) RollWithProof(_ context.Context, userID int64) (int, RollProof, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		r.nonce++
		if v, ok := faceFromDigest(rollDigest(r.serverSeed, userID, r.nonce)); ok {
			return v, RollProof{SeedHash: r.hash, Nonce: r.nonce}, nil
		}
	}
}

// Commitment returns the hash of the active server seed.
func (r *SeededRoller) Commitment() (string, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hash, r.rotatedAt
}

// Rotate installs a fresh random seed and returns the previous one.
func (r *SeededRoller) Rotate() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.serverSeed
	r.reset("")
	return prev
}

func (r *SeededRoller) reset(seed string) {
	if seed == "" {
		seed = generateSeed()
	}
	r.serverSeed = seed
	r.hash = SeedHash(seed)
	r.rotatedAt = time.Now()
	r.nonce = 0
}

// VerifyRoll recomputes the die value a revealed seed produced for userID at
// nonce. It reports false when that nonce was skipped by rejection sampling.
func VerifyRoll(serverSeed string, userID int64, nonce uint64) (int, bool) {
	return faceFromDigest(rollDigest(serverSeed, userID, nonce))
}

// SeedHash is the commitment published for serverSeed.
func SeedHash(serverSeed string) string {
	sum := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(sum[:])
}

// faceFromDigest maps a digest to a die face. Rejection sampling keeps the six
// faces uniform.
func faceFromDigest(digest []byte) (int, bool) {
	const limit = (1<<32 - 1) / 6 * 6
	v := binary.BigEndian.Uint32(digest)
	if v >= limit {
		return 0, false
	}
	return int(v%6) + 1, true
}

func rollDigest(serverSeed string, userID int64, nonce uint64) []byte {
	h := hmac.New(sha256.New, []byte(serverSeed))
	h.Write([]byte(strconv.FormatInt(userID, 10) + ":" + strconv.FormatUint(nonce, 10)))
	return h.Sum(nil)
}

func generateSeed() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
