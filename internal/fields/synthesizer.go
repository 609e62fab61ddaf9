package fields

import (
	"fmt"
	"math/rand/v2"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/YY-OhioU/Passport-Generator/internal/faker"
)

// Claves de campo del pasaporte
const (
	KeyType             = "type"
	KeyIssuingState     = "USA"
	KeyID               = "p_id"
	KeyFirstName        = "first_name"
	KeyLastName         = "last_name"
	KeyCountryFull      = "country_full"
	KeyDOB              = "dob"
	KeyDateOfIssue      = "date_of_issue"
	KeyPlaceOfBirth     = "place_of_birth"
	KeyValidThrough     = "valid_through"
	KeyExtraInformation = "extra_information"
	KeyBarLineOne       = "bar_line_one"
	KeyBarLineTwo       = "bar_line_two"
	KeyGender           = "gender"
	KeyAuthority        = "authority"
)

// FieldSet valores de una muestra. Una cadena vacía significa "sin contenido".
type FieldSet map[string]string

// Constants campos fijos de todos los pasaportes generados
func Constants() FieldSet {
	return FieldSet{
		KeyType:             "P",
		KeyIssuingState:     "USA",
		KeyID:               "",
		KeyFirstName:        "",
		KeyLastName:         "",
		KeyCountryFull:      "UNITED STATES OF AMERICA",
		KeyDOB:              "",
		KeyDateOfIssue:      "",
		KeyPlaceOfBirth:     "",
		KeyValidThrough:     "",
		KeyExtraInformation: "",
		KeyBarLineOne:       "",
		KeyBarLineTwo:       "",
		KeyGender:           "",
		KeyAuthority:        "United States",
	}
}

// Genders valores de género soportados por la plantilla
var Genders = [2]string{"M", "F"}

// Synthesizer produce un FieldSet por muestra
type Synthesizer struct {
	provider faker.Provider
	rng      *rand.Rand
	upper    cases.Caser
	mrz      bool
}

// Option configura el sintetizador
type Option func(*Synthesizer)

// WithMRZ rellena las dos líneas de zona de lectura mecánica
func WithMRZ(enabled bool) Option {
	return func(s *Synthesizer) { s.mrz = enabled }
}

// NewSynthesizer crea un sintetizador. El género se sortea con rng, no con
// el proveedor, que podría devolver valores no soportados.
func NewSynthesizer(p faker.Provider, rng *rand.Rand, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		provider: p,
		rng:      rng,
		upper:    cases.Upper(language.AmericanEnglish),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize genera los valores de una muestra
func (s *Synthesizer) Synthesize() (FieldSet, error) {
	fs := Constants()

	fs[KeyID] = s.provider.Identifier()

	gender := Genders[s.rng.IntN(len(Genders))]
	fs[KeyGender] = gender

	fs[KeyFirstName], fs[KeyLastName] = s.provider.OwnerName(gender)

	birth := s.provider.BirthDate()
	fs[KeyDOB], fs[KeyDateOfIssue], fs[KeyValidThrough] = s.provider.IssueAndExpiryDates(birth)

	fs[KeyPlaceOfBirth] = s.upper.String(s.provider.AdministrativeUnit()) + ",U.S.A"

	if s.mrz {
		one, two, err := MachineReadableZone(fs)
		if err != nil {
			return nil, fmt.Errorf("mrz: %w", err)
		}
		fs[KeyBarLineOne], fs[KeyBarLineTwo] = one, two
	}

	return fs, nil
}
