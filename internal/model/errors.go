package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserExists = errors.New("username already exists")
	ErrAuthFailed = errors.New("authentication failed")

	// Room errors
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")

	// Snapshot errors
	ErrNoSnapshot = errors.New("no snapshot record")
)
