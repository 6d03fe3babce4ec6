// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package recommend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/interleaflabs/interleaf/internal/artifact"
)

// ErrRegistryEmpty marks a request served before any snapshot was
// published, i.e. the initial load failed and no retrain has run.
var ErrRegistryEmpty = errors.New("no models loaded")

// NotReadyError reports a domain whose required model families are
// only partially available. Missing lists the absent families so the
// serving layer can tell the caller what to train.
type NotReadyError struct {
	Domain  artifact.Domain
	Missing []artifact.Family
}

func (e *NotReadyError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("models not ready for %s: missing %s", e.Domain, strings.Join(names, ", "))
}
