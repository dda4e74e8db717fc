// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the input is not a readable AIFF stream.
	ErrNotAiffFile = errors.New("not an AIFF file")

	ErrBitDepth = errors.New("unsupported AIFF bit depth")
)
