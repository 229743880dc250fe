package seeder

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// WindowStart is the beginning of the historical window timestamps are drawn from.
var WindowStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// DataGenerator produces random field values. Every text value it returns is
// safe for the bulk text format: no commas, backslashes or line breaks.
type DataGenerator struct {
	rand    *rand.Rand
	now     time.Time
	counter int
}

// NewDataGenerator seeds a generator whose clock is now cut to whole seconds,
// the precision every generated timestamp carries.
func NewDataGenerator(seed int64, now time.Time) *DataGenerator {
	return &DataGenerator{
		rand: rand.New(rand.NewSource(seed)),
		now:  now.UTC().Truncate(time.Second),
	}
}

func (g *DataGenerator) Now() time.Time {
	return g.now
}

// Chance reports true with the given probability in percent.
func (g *DataGenerator) Chance(percent int) bool {
	return g.rand.Intn(100) < percent
}

// Between returns a uniform integer in [lo, hi].
func (g *DataGenerator) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rand.Intn(hi-lo+1)
}

func (g *DataGenerator) Index(n int) int {
	return g.rand.Intn(n)
}

func (g *DataGenerator) Digits(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + g.rand.Intn(10)))
	}
	return b.String()
}

func (g *DataGenerator) Hex(n int) string {
	const alphabet = "0123456789abcdef"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[g.rand.Intn(len(alphabet))]
	}
	return string(b)
}

// Moment returns a timestamp between WindowStart and now, at second precision.
func (g *DataGenerator) Moment() time.Time {
	span := int64(g.now.Sub(WindowStart) / time.Second)
	if span <= 0 {
		return WindowStart
	}
	return WindowStart.Add(time.Duration(g.rand.Int63n(span+1)) * time.Second)
}

// Amount returns a whole-unit decimal in [lo, hi].
func (g *DataGenerator) Amount(lo, hi int) decimal.Decimal {
	return decimal.NewFromInt(int64(g.Between(lo, hi)))
}

// Cents returns a two-decimal amount between lo and hi hundredths.
func (g *DataGenerator) Cents(lo, hi int) decimal.Decimal {
	return decimal.New(int64(g.Between(lo, hi)), -2)
}

// Format replaces every '#' in pattern with a random digit.
func (g *DataGenerator) Format(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	for _, r := range pattern {
		if r == '#' {
			b.WriteByte(byte('0' + g.rand.Intn(10)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func pick[T any](g *DataGenerator, items []T) T {
	return items[g.rand.Intn(len(items))]
}

var (
	firstNames = []string{
		"Jan", "Petr", "Pavel", "Tomas", "Martin", "Jana", "Eva", "Hana", "Lucie", "Katerina",
		"John", "Jane", "Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry",
	}
	lastNames = []string{
		"Novak", "Svoboda", "Dvorak", "Cerny", "Prochazka", "Kucera", "Vesely", "Horak",
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	}
	companyStems = []string{
		"Alpha", "Beta", "Gamma", "Delta", "Vltava", "Morava", "Sumava", "Krkonose", "Orion", "Atlas",
	}
	companySuffixes = []string{"s.r.o.", "a.s.", "Group", "Telecom", "Systems", "Holding"}
	emailDomains    = []string{"seznam.cz", "email.cz", "centrum.cz", "gmail.com", "outlook.com"}
	cities          = []string{
		"Praha", "Brno", "Ostrava", "Plzen", "Liberec", "Olomouc", "Ceske Budejovice", "Hradec Kralove",
		"Pardubice", "Zlin", "Usti nad Labem", "Karlovy Vary",
	}
	streets = []string{
		"Hlavni", "Nadrazni", "Skolni", "Zahradni", "Masarykova", "Husova", "Palackeho", "Komenskeho",
		"Lesni", "Polni", "Kvetna", "Smetanova",
	}
)

func (g *DataGenerator) generateFirstName() string {
	return pick(g, firstNames)
}

func (g *DataGenerator) generateName() string {
	return pick(g, firstNames) + " " + pick(g, lastNames)
}

func (g *DataGenerator) generateCompany() string {
	return pick(g, companyStems) + " " + pick(g, lastNames) + " " + pick(g, companySuffixes)
}

func (g *DataGenerator) generateEmail() string {
	g.counter++
	local := strings.ToLower(pick(g, firstNames) + "." + pick(g, lastNames))
	return fmt.Sprintf("%s%d@%s", local, g.counter, pick(g, emailDomains))
}

func (g *DataGenerator) generatePhone() string {
	return g.Format("+420 6## ### ###")
}

func (g *DataGenerator) generateCity() string {
	return pick(g, cities)
}

func (g *DataGenerator) generateStreet() string {
	return pick(g, streets)
}
