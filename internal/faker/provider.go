package faker

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// DateLayout formato de fechas de pasaporte ("02 JAN 2006" en mayúsculas)
const DateLayout = "02 Jan 2006"

// Provider fuente de valores falsos para los campos de un pasaporte
type Provider interface {
	Identifier() string
	OwnerName(gender string) (first, last string)
	BirthDate() time.Time
	IssueAndExpiryDates(birth time.Time) (dob, issue, expiry string)
	AdministrativeUnit() string
}

// Passport proveedor basado en gofakeit. La semilla es explícita: con 0 la
// secuencia no es reproducible.
type Passport struct {
	faker *gofakeit.Faker
	now   func() time.Time
}

// Option configura el proveedor
type Option func(*Passport)

// WithClock fija el "hoy" usado para edades y vigencias
func WithClock(now func() time.Time) Option {
	return func(p *Passport) { p.now = now }
}

// NewPassport crea un proveedor con la semilla dada
func NewPassport(seed uint64, opts ...Option) *Passport {
	p := &Passport{
		faker: gofakeit.New(seed),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Identifier número de pasaporte de 9 dígitos
func (p *Passport) Identifier() string {
	return p.faker.Numerify("#########")
}

// OwnerName nombre y apellido acordes al género ("M" o "F")
func (p *Passport) OwnerName(gender string) (string, string) {
	var names []string
	switch gender {
	case "M":
		names = maleNames
	case "F":
		names = femaleNames
	default:
		names = append(append([]string{}, maleNames...), femaleNames...)
	}
	return p.faker.RandomString(names), p.faker.LastName()
}

// BirthDate fecha de nacimiento de hasta 115 años atrás
func (p *Passport) BirthDate() time.Time {
	today := day(p.now())
	return day(p.between(today.AddDate(-115, 0, 0), today))
}

// IssueAndExpiryDates deriva emisión y vencimiento coherentes con la fecha de
// nacimiento. Menores de 16 reciben 5 años de vigencia; desde los 21 (y todos
// los mayores de 26) 10 años. La emisión siempre es posterior al nacimiento.
func (p *Passport) IssueAndExpiryDates(birth time.Time) (string, string, string) {
	birth = day(birth)
	today := day(p.now())
	age := int(today.Sub(birth).Hours() / 24 / 365)

	fiveYearsAgo := today.AddDate(0, 0, -(5*365 - 1))

	var issue time.Time
	years := 5
	switch {
	case age < 5:
		issue = p.between(birth.AddDate(0, 0, 1), today)
	case age < 16:
		issue = p.between(fiveYearsAgo, today)
	case age < 21:
		issue = p.between(fiveYearsAgo, birth.AddDate(0, 0, 16*365-1))
	case age < 26:
		issue = p.between(fiveYearsAgo, today)
		years = 10
	default:
		issue = p.between(today.AddDate(0, 0, -(10*365-1)), today)
		years = 10
	}

	issue = day(issue)
	if !issue.After(birth) {
		issue = birth.AddDate(0, 0, 1)
	}
	expiry := issue.AddDate(years, 0, 0)

	return FormatDate(birth), FormatDate(issue), FormatDate(expiry)
}

// AdministrativeUnit estado de EE.UU.
func (p *Passport) AdministrativeUnit() string {
	return p.faker.State()
}

func (p *Passport) between(start, end time.Time) time.Time {
	if !end.After(start) {
		return start
	}
	return p.faker.DateRange(start, end)
}

// FormatDate fecha al estilo del pasaporte: "07 MAR 1988"
func FormatDate(t time.Time) string {
	return strings.ToUpper(t.Format(DateLayout))
}

// ParseDate inversa de FormatDate
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
