// Package seed populates an empty registry with a well-known test record and
// a large synthetic population, without blocking the request path.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/userbase-hq/userbase/internal/users"
)

var firstNames = []string{
	"john", "jane", "michael", "emily", "david", "sarah", "james", "emma",
	"robert", "olivia", "william", "sophia", "richard", "ava", "joseph",
	"isabella", "thomas", "mia", "charles", "charlotte",
}

var lastNames = []string{
	"smith", "johnson", "williams", "brown", "jones", "garcia", "miller",
	"davis", "rodriguez", "martinez", "hernandez", "lopez", "gonzalez",
	"wilson", "anderson", "thomas", "taylor", "moore", "jackson", "martin",
}

var (
	birthDateMin = time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)
	birthDateMax = time.Date(2005, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Generator produces synthetic registry records. Email and phone uniqueness
// comes from a monotonic counter owned by the generator instance, not from
// randomness, so a single run can never collide with itself. Names and birth
// dates are random; collisions there are harmless.
type Generator struct {
	counter int64
	rng     *rand.Rand
	caser   cases.Caser
}

// NewGenerator builds a generator whose counter starts at zero.
func NewGenerator(rngSeed int64) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewSource(rngSeed)),
		caser: cases.Title(language.English),
	}
}

// Next produces one synthetic record and advances the counter.
func (g *Generator) Next(now time.Time) users.NewUser {
	n := g.counter
	g.counter++

	first := firstNames[g.rng.Intn(len(firstNames))]
	last := lastNames[g.rng.Intn(len(lastNames))]
	name := fmt.Sprintf("%s %d", g.caser.String(first+" "+last), g.rng.Intn(1_000_000))

	phoneDigits := fmt.Sprintf("%010d", n)
	return users.NewUser{
		Name:      name,
		Email:     fmt.Sprintf("user%d@example.com", n),
		Phone:     "+380" + phoneDigits[len(phoneDigits)-9:],
		BirthDate: g.randomBirthDate(),
		CreatedAt: now,
	}
}

// Batch produces size records sharing one creation timestamp.
func (g *Generator) Batch(size int, now time.Time) []users.NewUser {
	batch := make([]users.NewUser, 0, size)
	for i := 0; i < size; i++ {
		batch = append(batch, g.Next(now))
	}
	return batch
}

func (g *Generator) randomBirthDate() time.Time {
	span := birthDateMax.Unix() - birthDateMin.Unix()
	return time.Unix(birthDateMin.Unix()+g.rng.Int63n(span), 0).UTC()
}
