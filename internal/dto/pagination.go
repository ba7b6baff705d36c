package dto

// MaxPageLimit is the hard upper bound accepted for list endpoints.
const MaxPageLimit = 1000

// PageQuery carries skip/limit pagination parameters.
type PageQuery struct {
	Skip  int `json:"skip" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=1,lte=1000"`
}
