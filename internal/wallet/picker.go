package wallet

import (
	"hash/fnv"
	"math/rand"
)

// Picker chooses which shard an increment lands on.
type Picker func(shards int) int

// PickRandom spreads writers uniformly. Hot-spotting is reduced
// probabilistically, not eliminated.
func PickRandom(shards int) int {
	return rand.Intn(shards)
}

// PickByActor pins a given actor to one shard, so one busy actor never
// collides with the others.
func PickByActor(actor string) Picker {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actor))
	sum := h.Sum32()
	return func(shards int) int {
		return int(sum % uint32(shards))
	}
}
