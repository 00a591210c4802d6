package enums

type Agreement string

const (
	AgreementUndecided Agreement = "undecided"
	AgreementAgreed    Agreement = "agreed"
	AgreementDeclined  Agreement = "declined"
)
