package fields

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/YY-OhioU/Passport-Generator/internal/faker"
)

// MRZLineWidth columnas de cada línea TD3
const MRZLineWidth = 44

const filler = "<"

var mrzUpper = cases.Upper(language.Und)

// MachineReadableZone construye las dos líneas TD3 (ICAO 9303) a partir de
// los campos ya sintetizados.
func MachineReadableZone(fs FieldSet) (string, string, error) {
	dob, err := faker.ParseDate(fs[KeyDOB])
	if err != nil {
		return "", "", fmt.Errorf("dob: %w", err)
	}
	expiry, err := faker.ParseDate(fs[KeyValidThrough])
	if err != nil {
		return "", "", fmt.Errorf("valid_through: %w", err)
	}

	state := mrzText(fs[KeyIssuingState])
	names := mrzText(fs[KeyLastName]) + filler + filler + mrzText(fs[KeyFirstName])
	one := padLine("P" + filler + padRight(state, 3) + names)

	number := padRight(mrzText(fs[KeyID]), 9)
	birth := dob.Format("060102")
	exp := expiry.Format("060102")
	sex := fs[KeyGender]
	if sex != "M" && sex != "F" {
		sex = filler
	}
	personal := strings.Repeat(filler, 14)

	composite := number + CheckDigit(number) +
		birth + CheckDigit(birth) +
		exp + CheckDigit(exp) +
		personal + CheckDigit(personal)

	two := number + CheckDigit(number) +
		padRight(state, 3) +
		birth + CheckDigit(birth) +
		sex +
		exp + CheckDigit(exp) +
		personal + CheckDigit(personal) +
		CheckDigit(composite)

	return one, padLine(two), nil
}

// CheckDigit dígito de control 7-3-1 sobre dígitos, letras y relleno
func CheckDigit(s string) string {
	weights := [3]int{7, 3, 1}
	sum := 0
	for i, ch := range s {
		var v int
		switch {
		case ch >= '0' && ch <= '9':
			v = int(ch - '0')
		case ch >= 'A' && ch <= 'Z':
			v = int(ch-'A') + 10
		default:
			v = 0
		}
		sum += v * weights[i%3]
	}
	return fmt.Sprintf("%d", sum%10)
}

// mrzText mayúsculas y todo lo que no sea A-Z/0-9 como relleno
func mrzText(s string) string {
	s = mrzUpper.String(s)
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		} else {
			b.WriteString(filler)
		}
	}
	return b.String()
}

func padRight(s string, width int) string {
	s = runewidth.Truncate(s, width, "")
	return strings.ReplaceAll(runewidth.FillRight(s, width), " ", filler)
}

func padLine(s string) string {
	return padRight(s, MRZLineWidth)
}
