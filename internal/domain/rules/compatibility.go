package rules

import "github.com/ZoeWilliams/donationswap/internal/domain/model"

type RejectReason string

const (
	RejectNone        RejectReason = ""
	RejectSameCharity RejectReason = "same_charity"
	RejectSameCountry RejectReason = "same_country"
	RejectSameEmail   RejectReason = "same_email"
)

// Compatible reports whether two offers may be paired into a match and, if
// not, why. Two offers are incompatible when they point at the same
// charity, come from the same country, or belong to the same person.
// Amounts are deliberately not compared yet: pledges of very different
// sizes still pair up until cross-currency comparability lands.
func Compatible(a, b model.Offer) (bool, RejectReason) {
	if a.CharityID == b.CharityID {
		return false, RejectSameCharity
	}
	if a.CountryID == b.CountryID {
		return false, RejectSameCountry
	}
	if a.Email == b.Email {
		return false, RejectSameEmail
	}
	return true, RejectNone
}
