package domain

// Principal is the caller identity as resolved by the upstream identity
// service. The booking core never sees credentials or tokens.
type Principal struct {
	UserID   string
	IsActive bool
	IsAdmin  bool
}
