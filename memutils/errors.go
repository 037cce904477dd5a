package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// AlignmentError is returned from validation when a size or address is not a multiple of the heap alignment
var AlignmentError error = errors.New("value is not aligned")

// ConservationError is returned from validation when the blocks of a heap no longer add up to its size
var ConservationError error = errors.New("block sizes do not add up to the heap size")

// ContiguityError is returned from validation when the block chain has a gap, an overlap, or a broken link
var ContiguityError error = errors.New("block chain is not contiguous")
