package constant

// Order lifecycle status. Created PENDING, moved to PAID by a success
// callback, SETTLED by the reconciler or a settlement callback. SETTLED is
// terminal and must never be overwritten.
const (
	OrderPending = "PENDING"
	OrderPaid    = "PAID"
	OrderSettled = "SETTLED"
	OrderExpired = "EXPIRED"
	OrderFailed  = "FAILED"
)

// Withdrawal lifecycle status.
const (
	WithdrawPending   = "PENDING"
	WithdrawCompleted = "COMPLETED"
	WithdrawFailed    = "FAILED"
)

// Provider identifiers, also stored as Order.channel / SubMerchant.provider.
const (
	ProviderHilogate = "hilogate"
	ProviderOY       = "oy"
	ProviderGidi     = "gidi"
	Provider2C2P     = "2c2p"
	ProviderGV       = "gv"
)

// IsTerminalOrderStatus reports whether no further transition is allowed.
func IsTerminalOrderStatus(s string) bool {
	return s == OrderSettled || s == OrderFailed || s == OrderExpired
}
