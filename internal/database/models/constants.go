package models

// Session status bits.
const (
	BitOn  = 1
	BitOff = 0
)

const (
	UserStatusInReview        = "in review"
	UserStatusPending         = "pending"
	UserStatusActive          = "active"
	UserStatusSelfDeactivated = "self_deactivated"
	UserStatusDeleted         = "deleted"
	UserStatusSuspended       = "suspended"
	UserStatusDeactivated     = "deactivated"
	UserStatusHidden          = "hidden"
)

const (
	ItemStatusActive      = "active"
	ItemStatusDeactivated = "deactivated"
	ItemStatusDeleted     = "deleted"
)

const (
	ProductStatusActive      = "active"
	ProductStatusDeactivated = "deactivated"
	ProductStatusSuspended   = "suspended"
	ProductStatusBanned      = "banned"
	ProductStatusDeleted     = "deleted"
)

const (
	PasswordStatusActive      = "active"
	PasswordStatusDeactivated = "deactivated"
	PasswordStatusCompromised = "compromised"
	PasswordStatusBlacklisted = "blacklisted"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

const (
	InvoiceStatusPaid     = "paid"
	InvoiceStatusPending  = "pending"
	InvoiceStatusReturned = "returned"
)

const (
	RoleAdmin       = "admin"
	RoleSuperAdmin  = "super admin"
	RoleStoreKeeper = "store keeper"
	RoleCashier     = "cashier"
	RoleAccountant  = "accountant"
	RoleAttendant   = "attendant"
)

const (
	OTPStatusActive      = "active"
	OTPStatusDeactivated = "deactivated"
	OTPStatusUsed        = "used"
	OTPStatusBarred      = "barred"
)

const (
	OTPTypeLogin          = "login"
	OTPTypePasswordUpdate = "password update"
	OTPTypeEmailReset     = "email reset"
	OTPTypeAccountReset   = "account reset"
)

// Named sequence counters.
const (
	SequenceProductCode = "product_code"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSuperAdmin, RoleStoreKeeper, RoleCashier, RoleAccountant, RoleAttendant:
		return true
	}
	return false
}
