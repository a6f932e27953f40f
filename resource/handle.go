// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import "sync/atomic"

var nextID atomic.Uint64

// newID returns a process-unique handle identity.
func newID() uint64 { return nextID.Add(1) }
