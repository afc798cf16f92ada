// Package namegen produces unique entity names for a test run. Names
// compose an environment prefix, a semantic label, the current timestamp,
// and a process-wide counter, so concurrent actors never submit identical
// names even within the same millisecond.
package namegen

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

var seq atomic.Uint64

// ProjectName returns a unique project name, e.g.
// QA2_Load_Project_VU12_1724900000000_42.
func ProjectName(envPrefix, label string) string {
	return build(envPrefix, "Project", label)
}

// SpecName returns a unique spec name.
func SpecName(envPrefix, label string) string {
	return build(envPrefix, "Spec", label)
}

func build(envPrefix, kind, label string) string {
	parts := []string{envPrefix, "Load", kind}
	if label != "" {
		parts = append(parts, label)
	}
	parts = append(parts,
		fmt.Sprintf("%d", time.Now().UnixMilli()),
		fmt.Sprintf("%d", seq.Add(1)))
	return strings.Join(parts, "_")
}
