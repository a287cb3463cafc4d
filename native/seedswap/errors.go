package seedswap

import "errors"

var (
	errNilState   = errors.New("seedswap engine: state not configured")
	errNilGateway = errors.New("seedswap engine: gateway not configured")
	errNilAccess  = errors.New("seedswap engine: access gate not configured")
	errOverflow   = errors.New("seedswap engine: arithmetic overflow")

	// ErrNotInitialised is returned before Init has stored sale parameters.
	ErrNotInitialised = errors.New("seedswap: not initialised")
	// ErrAlreadyInitialised guards Init against running twice.
	ErrAlreadyInitialised = errors.New("seedswap: already initialised")
	// ErrRecordNotFound is returned for ids past the end of the log.
	ErrRecordNotFound = errors.New("seedswap: record not found")
)

// Rejection reasons. The strings are stable and returned unwrapped so callers
// can compare either the value or its text.
var (
	ErrInvalidToken = errors.New("constructor: invalid token")

	ErrZeroAmount              = errors.New("onlyCanSwap: amount is 0")
	ErrNotStarted              = errors.New("onlyCanSwap: not started yet")
	ErrSaleEnded               = errors.New("onlyCanSwap: already ended")
	ErrHardCapReached          = errors.New("onlyCanSwap: HARD_CAP reached")
	ErrOutsideIndividualCap    = errors.New("onlyCanSwap: eth amount must be within individual cap")
	ErrMaxIndividualCapReached = errors.New("capSwap: max individual cap reached")
	ErrNotWhitelisted          = errors.New("onlyCanSwap: sender is not whitelisted")
	ErrNotEnoughTokenToSwap    = errors.New("capSwap: not enough token to swap")

	ErrPaused          = errors.New("paused")
	ErrNotOwner        = errors.New("Ownable: caller is not the owner")
	ErrNotAdmin        = errors.New("WhitelistAdminRole: caller does not have the WhitelistAdmin role")
	ErrNotEnded        = errors.New("not ended yet")
	ErrPercentageRange = errors.New("percentage out of range")

	ErrNotEnoughTokenToDistribute = errors.New("Distribute: not enough token to distribute")
	ErrInvalidID                  = errors.New("Distribute: invalid id")
	ErrIndicesNotInOrder          = errors.New("Distribute: indices are not in order")

	ErrEstimateNotEnoughBalance = errors.New("Estimate: not enough token balance")
	ErrEstimateIDOutOfRange     = errors.New("Estimate: id out of range")
	ErrEstimateDuplicatedIDs    = errors.New("Estimate: duplicated ids")

	ErrEmergencyNotOpen        = errors.New("Emergency: not open for emergency withdrawal")
	ErrEmergencyClaimedAll     = errors.New("Emergency: user has claimed all tokens")
	ErrEmergencyNotEnoughToken = errors.New("Emergency: not enough token to distribute")

	ErrAlreadyStarted         = errors.New("already started")
	ErrAlreadyEnded           = errors.New("already ended")
	ErrInvalidStartTime       = errors.New("Times: invalid start time")
	ErrInvalidStartAndEndTime = errors.New("Times: invalid start and end time")
	ErrRateTooLow             = errors.New("Rates: new rate too low")
	ErrRateTooHigh            = errors.New("Rates: new rate too high")
	ErrInvalidRecipient       = errors.New("Receipient: invalid eth recipient address")
)
