package usecase

import "time"

const (
	// DefaultOperationTimeout bounds a single load-mutate-persist cycle.
	DefaultOperationTimeout = 10 * time.Second

	// Operation names used in logs and metrics.
	OpRegister       = "register"
	OpLogin          = "login"
	OpDeposit        = "deposit"
	OpWithdraw       = "withdraw"
	OpTransfer       = "transfer"
	OpLoan           = "loan"
	OpRepay          = "repay"
	OpInterest       = "interest"
	OpUpdateProfile  = "update_profile"
	OpChangePassword = "change_password"
)
