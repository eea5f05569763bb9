package engine

import "math/rand/v2"

// Dice is the injectable source of dice rolls
type Dice interface {
	Roll() (int, int)
}

// RandomDice rolls two six-sided dice from a seeded source
type RandomDice struct {
	rng *rand.Rand
}

// NewRandomDice creates dice seeded for reproducible games
func NewRandomDice(seed uint64) *RandomDice {
	return &RandomDice{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Roll returns two faces in 1..6
func (d *RandomDice) Roll() (int, int) {
	return d.rng.IntN(DieFaces) + 1, d.rng.IntN(DieFaces) + 1
}

// Rand exposes the underlying source so deck shuffles share the seed
func (d *RandomDice) Rand() *rand.Rand {
	return d.rng
}

// FixedDice replays a scripted list of rolls and then repeats the last one
type FixedDice struct {
	rolls [][2]int
	next  int
}

// NewFixedDice creates dice that return rolls in order
func NewFixedDice(rolls ...[2]int) *FixedDice {
	return &FixedDice{rolls: rolls}
}

// Roll returns the next scripted roll, or 1,2 when nothing was scripted
func (d *FixedDice) Roll() (int, int) {
	if len(d.rolls) == 0 {
		return 1, 2
	}
	i := d.next
	if i >= len(d.rolls) {
		i = len(d.rolls) - 1
	} else {
		d.next++
	}
	return d.rolls[i][0], d.rolls[i][1]
}
