// Package status defines the fixed vocabulary of result codes shared by every
// layer of the storage engine, in place of ad hoc error strings or exceptions.
package status

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code identifies one outcome from the engine's external interface.
type Code int

const (
	OK Code = iota
	NotFound
	IsNotDirectory
	CreateDirectoryFailed
	DestroyDirectoryFailed
	DestroyFileFailed
	Existed
	OpenFileError
	IOError
	CloseFileError
	RenameFileError
	MakestempError
	FilterBlockError
	FooterBlockError
	UnsupportedFormat
	DBClosed
	StatFileError
	MmapError
	OutOfRange
	BadLevel
	BadRevision
	BadFileMeta
	BadRecord
	FileEOF
	ChecksumError
	NoexceptSize
	BadFilePath
	BadCurrentFile
	NewSSTableError
	CreateFileFailed
	Unimplemented
)

var names = map[Code]string{
	OK:                     "OK",
	NotFound:               "NOT_FOUND",
	IsNotDirectory:         "IS_NOT_DIRECTORY",
	CreateDirectoryFailed:  "CREATE_DIRECTORY_FAILED",
	DestroyDirectoryFailed: "DESTROY_DIRECTORY_FAILED",
	DestroyFileFailed:      "DESTROY_FILE_FAILED",
	Existed:                "EXISTED",
	OpenFileError:          "OPEN_FILE_ERROR",
	IOError:                "IO_ERROR",
	CloseFileError:         "CLOSE_FILE_ERROR",
	RenameFileError:        "RENAME_FILE_ERROR",
	MakestempError:         "MAKESTEMP_ERROR",
	FilterBlockError:       "FILTER_BLOCK_ERROR",
	FooterBlockError:       "FOOTER_BLOCK_ERROR",
	UnsupportedFormat:      "UN_SUPPORTED_FORMAT",
	DBClosed:               "DB_CLOSED",
	StatFileError:          "STAT_FILE_ERROR",
	MmapError:              "MMAP_ERROR",
	OutOfRange:             "OUT_OF_RANGE",
	BadLevel:               "BAD_LEVEL",
	BadRevision:            "BAD_REVISION",
	BadFileMeta:            "BAD_FILE_META",
	BadRecord:              "BAD_RECORD",
	FileEOF:                "FILE_EOF",
	ChecksumError:          "CHECK_SUM_ERROR",
	NoexceptSize:           "NOEXCEPT_SIZE",
	BadFilePath:            "BAD_FILE_PATH",
	BadCurrentFile:         "BAD_CURRENT_FILE",
	NewSSTableError:        "NEW_SSTABLE_ERROR",
	CreateFileFailed:       "CREATE_FILE_FAILED",
	Unimplemented:          "UN_IMPLEMENTED",
}

func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("UNKNOWN_CODE(%d)", int(c))
}

// Error is a code-carrying error. Two Errors compare equal under errors.Is
// when their codes match, regardless of message or wrapped cause.
type Error struct {
	code  Code
	msg   string
	cause error
}

func (e *Error) Error() string {
	switch {
	case e.cause != nil && e.msg != "":
		return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.cause)
	case e.cause != nil:
		return fmt.Sprintf("%s: %v", e.code, e.cause)
	case e.msg != "":
		return fmt.Sprintf("%s: %s", e.code, e.msg)
	default:
		return e.code.String()
	}
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.code == e.code
}

// Of returns the sentinel error for code, with no message or cause attached.
func Of(code Code) error { return &Error{code: code} }

// Wrap attaches code and a message to cause, keeping cause reachable via
// errors.Unwrap/errors.As. cause is first wrapped with a stack trace via
// pkg/errors (errors.WithStack), so the original I/O failure site survives
// logging at the outermost caller.
func Wrap(code Code, cause error, msg string) error {
	if cause == nil {
		return &Error{code: code, msg: msg}
	}
	return &Error{code: code, msg: msg, cause: errors.WithStack(cause)}
}

// CodeOf extracts the Code carried by err, if any, and reports whether one was found.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.code, true
	}
	return OK, false
}

// Is reports whether err (or anything it wraps) carries code.
func Is(err error, code Code) bool {
	return errors.Is(err, Of(code))
}

// Sentinels for the logical, non-wrapped outcomes callers compare against directly.
var (
	ErrNotFound           = Of(NotFound)
	ErrFileEOF            = Of(FileEOF)
	ErrExisted            = Of(Existed)
	ErrBadRecord          = Of(BadRecord)
	ErrChecksum           = Of(ChecksumError)
	ErrUnsupportedFormat  = Of(UnsupportedFormat)
	ErrOutOfRange         = Of(OutOfRange)
	ErrDBClosed           = Of(DBClosed)
	ErrFilterBlockError   = Of(FilterBlockError)
	ErrFooterBlockError   = Of(FooterBlockError)
	ErrBadFileMeta        = Of(BadFileMeta)
	ErrUnimplemented      = Of(Unimplemented)
)
