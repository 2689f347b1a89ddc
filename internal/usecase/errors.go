package usecase

// DomainError: regra de negócio impediu a operação (lead inexistente,
// rodízio vazio sem fallback). O chamador decide o que mostrar.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError: falha de infraestrutura depois de esgotadas as
// retentativas (banco fora, etc). O lead fica como está e o próximo
// job de lote tenta de novo.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}
