package civ6save

import "errors"

var (
	ErrInvalidMagic      = errors.New("civ6save: invalid magic")
	ErrUnexpectedEOF     = errors.New("civ6save: unexpected end of buffer")
	ErrConstantMismatch  = errors.New("civ6save: constant mismatch")
	ErrUnknownDataType   = errors.New("civ6save: unknown data type")
	ErrChunkSizeExceeded = errors.New("civ6save: chunk size exceeded")
	ErrInflate           = errors.New("civ6save: inflate failed")
	ErrTrailingBytes     = errors.New("civ6save: trailing bytes after final section")
	ErrLimitExceeded     = errors.New("civ6save: limit exceeded")
	ErrValidation        = errors.New("civ6save: validation failed")
)
