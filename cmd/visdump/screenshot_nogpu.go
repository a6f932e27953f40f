// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

package main

import "errors"

func screenshot(*scene, string, int, int) error {
	return errors.New("visdump: built with nogpu, -o is unavailable")
}
