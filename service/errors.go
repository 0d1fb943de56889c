package service

import (
	"errors"

	"tenderpack-backend/assembler"
)

var (
	ErrPackNotFound        = errors.New("pack not found")
	ErrVaultFileNotFound   = errors.New("vault file not found")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrDetectorUnavailable = errors.New("annexure detector not configured")
	ErrDetectionFailed     = errors.New("failed to detect annexures")

	// ErrTemplateNotFound is shared with the assembler so callers match one
	// value whichever layer failed the lookup.
	ErrTemplateNotFound = assembler.ErrTemplateNotFound
)
