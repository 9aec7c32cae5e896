package main

import "github.com/pkg/errors"

// wrapf is a thin convenience around errors.Wrapf for the handful of
// call sites in this package that build up multi-step context (open
// file, parse, fit) before handing an error to cobra.
func wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
