package medschedule

// ValidationCode identifica una regla de envío incumplida.
type ValidationCode string

const (
	// CodeSpecificDaysWithoutTimes: días concretos (1 a 6) sin ninguna hora.
	CodeSpecificDaysWithoutTimes ValidationCode = "SPECIFIC_DAYS_WITHOUT_TIMES"
)

// ValidationResult se devuelve como valor; no es un error.
type ValidationResult struct {
	Codes []ValidationCode
}

func (r ValidationResult) OK() bool { return len(r.Codes) == 0 }

func (r ValidationResult) Has(code ValidationCode) bool {
	for _, c := range r.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// ValidateSubmission es la guarda previa a guardar un calendario.
// Vacío sin horas (a demanda) y completo sin horas son válidos.
func ValidateSubmission(s Schedule) ValidationResult {
	var res ValidationResult
	if s.Days.IsProperSubset() && len(s.Times) == 0 {
		res.Codes = append(res.Codes, CodeSpecificDaysWithoutTimes)
	}
	return res
}
