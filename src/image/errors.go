package image

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput    = errors.New("no images to process")
	ErrUnknownFormat = errors.New("unknown image format")
)

// DecodeError reports a file that could not be read or is not an image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Path, e.Err.Error())
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports a failed write of an output file.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("encode: %s", e.Err.Error())
	}
	return fmt.Sprintf("encode %s: %s", e.Path, e.Err.Error())
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// IndexError reports an out of range position in a sequence.
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0,%d)", e.Index, e.Length)
}
