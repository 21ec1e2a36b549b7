package main

import (
	"errors"

	"leaderkill/pkg/killer"
	"leaderkill/pkg/leader"
	"leaderkill/pkg/nodeid"
	"leaderkill/pkg/storage"
)

// Exit codes, one per terminal failure kind.
const (
	exitOK                  = 0
	exitUsage               = 1
	exitStoreUnavailable    = 2
	exitLeaderRecordMissing = 3
	exitSignalFailed        = 4
	exitNodeIdentity        = 5
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, killer.ErrNodeIdentity), errors.Is(err, nodeid.ErrUnavailable):
		return exitNodeIdentity
	case errors.Is(err, killer.ErrSignalDeliveryFailed):
		return exitSignalFailed
	case errors.Is(err, killer.ErrLeaderRecordMissing), errors.Is(err, leader.ErrRecordMissing):
		return exitLeaderRecordMissing
	case errors.Is(err, killer.ErrStoreUnavailable),
		errors.Is(err, leader.ErrStoreUnavailable),
		errors.Is(err, storage.ErrNoSuchStore),
		errors.Is(err, storage.ErrUnavailable):
		return exitStoreUnavailable
	default:
		return exitUsage
	}
}
