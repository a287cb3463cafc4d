package rpc

import (
	"errors"
	"net/http"

	"seedswap/native/access"
	"seedswap/native/bank"
	"seedswap/native/seedswap"
)

var permissionErrors = []error{
	seedswap.ErrNotOwner,
	seedswap.ErrNotAdmin,
	access.ErrNotOwner,
	access.ErrNotAdmin,
}

// rejectionErrors are expected outcomes of a well-formed call. Their message
// is the stable reason string.
var rejectionErrors = []error{
	seedswap.ErrInvalidToken,
	seedswap.ErrZeroAmount,
	seedswap.ErrNotStarted,
	seedswap.ErrSaleEnded,
	seedswap.ErrHardCapReached,
	seedswap.ErrOutsideIndividualCap,
	seedswap.ErrMaxIndividualCapReached,
	seedswap.ErrNotWhitelisted,
	seedswap.ErrNotEnoughTokenToSwap,
	seedswap.ErrPaused,
	seedswap.ErrNotEnded,
	seedswap.ErrPercentageRange,
	seedswap.ErrNotEnoughTokenToDistribute,
	seedswap.ErrInvalidID,
	seedswap.ErrIndicesNotInOrder,
	seedswap.ErrEstimateNotEnoughBalance,
	seedswap.ErrEstimateIDOutOfRange,
	seedswap.ErrEstimateDuplicatedIDs,
	seedswap.ErrEmergencyNotOpen,
	seedswap.ErrEmergencyClaimedAll,
	seedswap.ErrEmergencyNotEnoughToken,
	seedswap.ErrAlreadyStarted,
	seedswap.ErrAlreadyEnded,
	seedswap.ErrInvalidStartTime,
	seedswap.ErrInvalidStartAndEndTime,
	seedswap.ErrRateTooLow,
	seedswap.ErrRateTooHigh,
	seedswap.ErrInvalidRecipient,
	seedswap.ErrNotInitialised,
	access.ErrPaused,
	access.ErrNotPaused,
	access.ErrZeroOwner,
	bank.ErrUnknownToken,
	bank.ErrInsufficientBalance,
	bank.ErrInsufficientAllowance,
	bank.ErrNegativeAmount,
	bank.ErrZeroAddress,
}

var notFoundErrors = []error{
	seedswap.ErrRecordNotFound,
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorResponse maps a ledger error onto an HTTP status and JSON-RPC error.
func errorResponse(err error) (int, *RPCError) {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return http.StatusBadRequest, rpcErr
	}
	switch {
	case matchesAny(err, permissionErrors):
		return http.StatusForbidden, &RPCError{Code: codeUnauthorized, Message: err.Error()}
	case matchesAny(err, notFoundErrors):
		return http.StatusNotFound, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	case matchesAny(err, rejectionErrors):
		return http.StatusConflict, &RPCError{Code: codeRejected, Message: err.Error()}
	default:
		return http.StatusInternalServerError, &RPCError{Code: codeServerError, Message: "internal error", Data: err.Error()}
	}
}

func invalidParams(message string, data interface{}) *RPCError {
	return &RPCError{Code: codeInvalidParams, Message: message, Data: data}
}
