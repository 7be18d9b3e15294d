package handlers

// SetPasswordCost lowers the bcrypt cost for tests and returns a restore func.
func SetPasswordCost(cost int) func() {
	prev := passwordCost
	passwordCost = cost
	return func() { passwordCost = prev }
}
