// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package artifact

import "errors"

// ErrNotFound marks a Load against an artifact that has not been
// written yet. Match with errors.Is.
var ErrNotFound = errors.New("artifact not found")
