package model

import "errors"

var (
	// ErrAlertNotFound indicates an explicit lookup by alert id missed.
	ErrAlertNotFound = errors.New("alert not found")
	// ErrAlertResolved indicates a transition was attempted on a terminal alert.
	ErrAlertResolved = errors.New("alert already resolved")
	// ErrRuleNotFound indicates an unknown rule id on an admin operation.
	ErrRuleNotFound = errors.New("alert rule not found")
	// ErrInvalidRule indicates a rule failed validation on add/update.
	ErrInvalidRule = errors.New("invalid alert rule")
	// ErrDispatchFailed indicates at least one notification channel failed.
	ErrDispatchFailed = errors.New("notification dispatch failed")
)
